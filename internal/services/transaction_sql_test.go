package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-user-api/internal/database"
	"github.com/yukikurage/task-user-api/internal/logger"
	"github.com/yukikurage/task-user-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/postgres"
)

var taskColumns = []string{
	"id", "name", "description", "deadline", "completed",
	"assigned_user", "assigned_user_name", "date_created",
}

func newSQLMockTaskService(t *testing.T) (*TaskService, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	log := logger.Discard()
	db, err := database.Open(postgres.New(postgres.Config{Conn: conn}), log)
	require.NoError(t, err)

	store := repository.NewGormStore(db)
	return NewTaskService(store, NewTransactor(store, log), log, 100), mock
}

func TestDeleteTaskRollsBackWhenTaskMissing(t *testing.T) {
	svc, mock := newSQLMockTaskService(t)
	id := primitive.NewObjectID().Hex()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows(taskColumns))
	mock.ExpectRollback()

	err := svc.DeleteTask(context.Background(), id)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTaskRollsBackWhenPullFails(t *testing.T) {
	svc, mock := newSQLMockTaskService(t)
	id := primitive.NewObjectID().Hex()
	userID := primitive.NewObjectID().Hex()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(id, "T1", "", now, false, userID, "Alice", now))
	mock.ExpectExec(`DELETE FROM "tasks"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "pending_tasks"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := svc.DeleteTask(context.Background(), id)

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, KindInternal, txErr.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTaskSerializationFailureIsRetryable(t *testing.T) {
	svc, mock := newSQLMockTaskService(t)
	id := primitive.NewObjectID().Hex()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(id, "T1", "", now, false, "", "unassigned", now))
	mock.ExpectExec(`DELETE FROM "tasks"`).
		WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})
	mock.ExpectRollback()

	err := svc.DeleteTask(context.Background(), id)

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, KindRetryable, txErr.Kind)
	assert.ErrorIs(t, err, repository.ErrWriteConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTaskCommitsOnce(t *testing.T) {
	svc, mock := newSQLMockTaskService(t)
	id := primitive.NewObjectID().Hex()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(id, "T1", "", now, true, primitive.NewObjectID().Hex(), "Alice", now))
	mock.ExpectExec(`DELETE FROM "tasks"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// completed tasks are not in any pendingTasks set, so nothing is pulled
	require.NoError(t, svc.DeleteTask(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}
