package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-user-api/internal/logger"
	"github.com/yukikurage/task-user-api/internal/repository"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Tasks() repository.TaskRepository { return nil }
func (m *mockStore) Users() repository.UserRepository { return nil }

func (m *mockStore) StartSession(ctx context.Context) (repository.Session, error) {
	args := m.Called(ctx)
	session, _ := args.Get(0).(repository.Session)
	return session, args.Error(1)
}

func (m *mockStore) Ping(ctx context.Context) error  { return nil }
func (m *mockStore) Close(ctx context.Context) error { return nil }

type mockSession struct {
	mock.Mock
}

func (m *mockSession) Tasks() repository.TaskRepository { return nil }
func (m *mockSession) Users() repository.UserRepository { return nil }

func (m *mockSession) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockSession) Abort(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockSession) End(ctx context.Context) {
	m.Called(ctx)
}

func newMockTransactor() (*Transactor, *mockStore, *mockSession) {
	store := &mockStore{}
	session := &mockSession{}
	store.On("StartSession", mock.Anything).Return(session, nil)
	session.On("End", mock.Anything).Return()
	return NewTransactor(store, logger.Discard()), store, session
}

func TestTransactorCommitsOnSuccess(t *testing.T) {
	tx, store, session := newMockTransactor()
	session.On("Commit", mock.Anything).Return(nil).Once()

	calls := 0
	err := tx.Run(context.Background(), "op", func(ctx context.Context, s repository.Session) error {
		calls++
		assert.Same(t, session, s)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	store.AssertExpectations(t)
	session.AssertExpectations(t)
	session.AssertNotCalled(t, "Abort", mock.Anything)
}

func TestTransactorAbortsOnError(t *testing.T) {
	tx, _, session := newMockTransactor()
	session.On("Abort", mock.Anything).Return(nil).Once()

	err := tx.Run(context.Background(), "op", func(ctx context.Context, s repository.Session) error {
		return userNotFound("abc")
	})

	assert.ErrorIs(t, err, ErrNotFound)
	session.AssertExpectations(t)
	session.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestTransactorAbortsAndRepanics(t *testing.T) {
	tx, _, session := newMockTransactor()
	session.On("Abort", mock.Anything).Return(nil).Once()

	assert.PanicsWithValue(t, "boom", func() {
		_ = tx.Run(context.Background(), "op", func(ctx context.Context, s repository.Session) error {
			panic("boom")
		})
	})

	session.AssertExpectations(t)
	session.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestTransactorClassifiesStoreErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind TransactionKind
	}{
		{"write conflict", repository.ErrWriteConflict, KindRetryable},
		{"duplicate key", repository.ErrDuplicateKey, KindData},
		{"invalid query", repository.ErrInvalidQuery, KindData},
		{"other", errors.New("connection reset"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, _, session := newMockTransactor()
			session.On("Abort", mock.Anything).Return(nil).Once()

			err := tx.Run(context.Background(), "op", func(ctx context.Context, s repository.Session) error {
				return tt.err
			})

			var txErr *TransactionError
			require.ErrorAs(t, err, &txErr)
			assert.Equal(t, tt.kind, txErr.Kind)
			assert.Equal(t, "op", txErr.Op)
			assert.ErrorIs(t, err, tt.err)
			assert.ErrorIs(t, err, ErrTransaction)
		})
	}
}

func TestTransactorCommitFailure(t *testing.T) {
	tx, _, session := newMockTransactor()
	session.On("Commit", mock.Anything).Return(repository.ErrWriteConflict).Once()

	err := tx.Run(context.Background(), "op", func(ctx context.Context, s repository.Session) error {
		return nil
	})

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, KindRetryable, txErr.Kind)
	session.AssertExpectations(t)
}

func TestTransactorStartFailure(t *testing.T) {
	store := &mockStore{}
	store.On("StartSession", mock.Anything).Return(nil, errors.New("no replica set"))
	tx := NewTransactor(store, logger.Discard())

	called := false
	err := tx.Run(context.Background(), "op", func(ctx context.Context, s repository.Session) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrTransaction)
	assert.False(t, called)
}

func TestDiffReferences(t *testing.T) {
	removed, added := diffReferences([]string{"a", "b", "c"}, []string{"c", "d", "a", "d"})
	assert.Equal(t, []string{"b"}, removed)
	assert.Equal(t, []string{"d"}, added)

	removed, added = diffReferences(nil, []string{"x"})
	assert.Empty(t, removed)
	assert.Equal(t, []string{"x"}, added)

	removed, added = diffReferences([]string{"x"}, []string{"x"})
	assert.Empty(t, removed)
	assert.Empty(t, added)
}

func TestPendingTasksConflictListsAllIDs(t *testing.T) {
	err := pendingTasksConflict([]string{"b", "a"})
	assert.Equal(t, "PendingTasks [a, b] completed, occupied, or do not exist", err.Error())
	assert.ErrorIs(t, err, ErrConflict)
}
