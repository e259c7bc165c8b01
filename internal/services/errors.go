package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yukikurage/task-user-api/internal/repository"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrTransaction = errors.New("transaction failed")
)

// FieldError is one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every rejected field of one input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a Task or User id that does not resolve.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s [%s] does not exist", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func taskNotFound(id string) error { return &NotFoundError{Resource: "Task", ID: id} }
func userNotFound(id string) error { return &NotFoundError{Resource: "User", ID: id} }

// ConflictError reports a uniqueness or reference violation. IDs lists every
// offending value, never only the first.
type ConflictError struct {
	Message string
	IDs     []string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func emailConflict(email string) error {
	return &ConflictError{
		Message: fmt.Sprintf("Email [%s] already exists", email),
		IDs:     []string{email},
	}
}

func pendingTasksConflict(ids []string) error {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return &ConflictError{
		Message: fmt.Sprintf("PendingTasks [%s] completed, occupied, or do not exist", strings.Join(sorted, ", ")),
		IDs:     sorted,
	}
}

// TransactionKind classifies a store failure for the HTTP layer.
type TransactionKind int

const (
	// KindInternal is an unexpected store fault
	KindInternal TransactionKind = iota
	// KindData is a store rejection of the data itself, such as a unique index
	// or an unevaluable filter
	KindData
	// KindRetryable is a write conflict with a concurrent transaction
	KindRetryable
)

// TransactionError wraps a store error raised while running op.
type TransactionError struct {
	Op   string
	Kind TransactionKind
	Err  error
}

func (e *TransactionError) Error() string {
	if e.Kind == KindRetryable {
		return fmt.Sprintf("%s: write conflict, retry the request: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

func (e *TransactionError) Is(target error) bool { return target == ErrTransaction }

// storeError wraps a repository error into the service taxonomy. Errors that
// already belong to the taxonomy pass through unchanged.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) || errors.Is(err, ErrTransaction) {
		return err
	}

	kind := KindInternal
	switch {
	case errors.Is(err, repository.ErrWriteConflict):
		kind = KindRetryable
	case errors.Is(err, repository.ErrDuplicateKey), errors.Is(err, repository.ErrInvalidQuery):
		kind = KindData
	}
	return &TransactionError{Op: op, Kind: kind, Err: err}
}
