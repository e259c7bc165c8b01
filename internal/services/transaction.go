package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-user-api/internal/repository"
)

// TxFunc is one unit of work. Repositories must be taken from the session.
type TxFunc func(ctx context.Context, session repository.Session) error

// Transactor runs units of work inside store transactions. It is the only
// place sessions are committed or aborted.
type Transactor struct {
	store repository.Store
	log   *logrus.Logger
}

// NewTransactor creates a new Transactor
func NewTransactor(store repository.Store, log *logrus.Logger) *Transactor {
	return &Transactor{store: store, log: log}
}

// Run starts a session, runs fn and commits. Any error or panic from fn aborts
// the transaction; a panic is re-raised after the abort. The session is always
// ended.
func (t *Transactor) Run(ctx context.Context, op string, fn TxFunc) (err error) {
	logger := t.log.WithField("operation", op)

	session, err := t.store.StartSession(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to start transaction")
		return storeError(op, err)
	}
	defer session.End(ctx)

	defer func() {
		if p := recover(); p != nil {
			if abortErr := session.Abort(ctx); abortErr != nil {
				logger.WithError(abortErr).Error("Failed to abort transaction after panic")
			}
			panic(p)
		}
	}()

	if err := fn(ctx, session); err != nil {
		if abortErr := session.Abort(ctx); abortErr != nil {
			logger.WithError(abortErr).Error("Failed to abort transaction")
		}
		logger.WithError(err).Debug("Transaction aborted")
		return storeError(op, err)
	}

	if err := session.Commit(ctx); err != nil {
		logger.WithError(err).Error("Failed to commit transaction")
		return storeError(op, fmt.Errorf("commit: %w", err))
	}

	logger.Debug("Transaction committed")
	return nil
}
