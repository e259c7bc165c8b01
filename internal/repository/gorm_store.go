package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// GormStore is a Store backed by a relational database through GORM. Each
// collection is a table; pendingTasks lives in the pending_tasks table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GormStore
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying connection, used by migrations and tests.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Tasks() TaskRepository {
	return NewTaskRepository(s.db)
}

func (s *GormStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

// StartSession begins a database transaction
func (s *GormStore) StartSession(ctx context.Context) (Session, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", translateError(tx.Error))
	}
	return &gormSession{tx: tx}, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormSession struct {
	tx   *gorm.DB
	done bool
}

func (s *gormSession) Tasks() TaskRepository {
	return NewTaskRepository(s.tx)
}

func (s *gormSession) Users() UserRepository {
	return NewUserRepository(s.tx)
}

func (s *gormSession) Commit(ctx context.Context) error {
	if s.done {
		return errors.New("transaction already finished")
	}
	s.done = true
	return translateError(s.tx.Commit().Error)
}

func (s *gormSession) Abort(ctx context.Context) error {
	if s.done {
		return nil
	}
	s.done = true
	return translateError(s.tx.Rollback().Error)
}

func (s *gormSession) End(ctx context.Context) {
	if !s.done {
		s.done = true
		s.tx.Rollback()
	}
}

// translateError maps driver errors onto the repository error set.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %v", ErrWriteConflict, err)
		case "23505":
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1213, 1205:
			return fmt.Errorf("%w: %v", ErrWriteConflict, err)
		case 1062:
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
	}

	return err
}
