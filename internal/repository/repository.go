package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/task-user-api/internal/models"
	"github.com/yukikurage/task-user-api/internal/query"
)

var (
	// ErrNotFound is returned when a document lookup by id or key matches nothing.
	ErrNotFound = errors.New("repository: document not found")
	// ErrDuplicateKey is returned when a unique constraint rejects a write.
	ErrDuplicateKey = errors.New("repository: duplicate key")
	// ErrWriteConflict is returned when the store aborted a transaction because
	// of a concurrent write. The operation can be retried.
	ErrWriteConflict = errors.New("repository: write conflict")
	// ErrInvalidQuery is returned when a filter or sort cannot be evaluated.
	ErrInvalidQuery = query.ErrInvalidQuery
)

// Store is the document store holding the tasks and users collections.
type Store interface {
	// Tasks returns a reader/writer outside any transaction
	Tasks() TaskRepository

	// Users returns a reader/writer outside any transaction
	Users() UserRepository

	// StartSession opens a transaction. The caller must End the session.
	StartSession(ctx context.Context) (Session, error)

	// Ping checks that the store is reachable
	Ping(ctx context.Context) error

	// Close releases the underlying connections
	Close(ctx context.Context) error
}

// Session is one open transaction. Repositories obtained from a session read
// and write through the transaction.
type Session interface {
	Tasks() TaskRepository
	Users() UserRepository

	// Commit applies every write made through the session
	Commit(ctx context.Context) error

	// Abort discards every write made through the session
	Abort(ctx context.Context) error

	// End releases the session, aborting it if still open
	End(ctx context.Context)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by id
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// FindByIDs returns the tasks among ids that exist
	FindByIDs(ctx context.Context, ids []string) ([]models.Task, error)

	// List retrieves tasks matching the listing
	List(ctx context.Context, list query.List) ([]models.Task, error)

	// Count counts tasks matching the filter
	Count(ctx context.Context, filter query.Filter) (int64, error)

	// Update replaces a stored task with the given document
	Update(ctx context.Context, task *models.Task) error

	// Delete removes a task
	Delete(ctx context.Context, id string) error

	// Assign points every task in ids at the user
	Assign(ctx context.Context, ids []string, userID, userName string) error

	// Release unassigns the tasks in ids that are assigned to the user
	Release(ctx context.Context, userID string, ids []string) error

	// ReleaseAll unassigns every task assigned to the user
	ReleaseAll(ctx context.Context, userID string) error

	// RenameAssignee rewrites assignedUserName on every task assigned to the user
	RenameAssignee(ctx context.Context, userID, userName string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create inserts a new user together with its pending task set
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by id
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves users matching the listing
	List(ctx context.Context, list query.List) ([]models.User, error)

	// Count counts users matching the filter
	Count(ctx context.Context, filter query.Filter) (int64, error)

	// Update replaces a stored user, including its pending task set
	Update(ctx context.Context, user *models.User) error

	// Delete removes a user
	Delete(ctx context.Context, id string) error

	// PushPendingTask adds taskID to the user's pending set
	PushPendingTask(ctx context.Context, userID, taskID string) error

	// PullPendingTask removes taskID from the user's pending set
	PullPendingTask(ctx context.Context, userID, taskID string) error
}
