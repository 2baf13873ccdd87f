package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	discardDeeperStatement = `DELETE FROM flow_saved_states WHERE flow_id = \$1 AND depth > \$2`
	upsertStatement        = `INSERT INTO flow_saved_states`
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// replaceState is the two-statement write a SQL saved-state store performs.
func replaceState(flowID uuid.UUID, depth int, payload string) TxFn {
	return func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM flow_saved_states WHERE flow_id = $1 AND depth > $2", flowID, depth); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO flow_saved_states (flow_id, depth, state) VALUES ($1, $2, $3)", flowID, depth, payload)
		return err
	}
}

func TestRunInTransaction_CommitsStateReplacement(t *testing.T) {
	db, mock := newMockDB(t)
	flowID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(discardDeeperStatement).WithArgs(flowID, 0).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(upsertStatement).WithArgs(flowID, 0, `{}`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, RunInTransaction(context.Background(), db, replaceState(flowID, 0, `{}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransaction_FailedUpsertRollsBackDiscard(t *testing.T) {
	db, mock := newMockDB(t)
	flowID := uuid.New()
	upsertErr := errors.New("check constraint violated")

	mock.ExpectBegin()
	mock.ExpectExec(discardDeeperStatement).WithArgs(flowID, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upsertStatement).WillReturnError(upsertErr)
	mock.ExpectRollback()

	err := RunInTransaction(context.Background(), db, replaceState(flowID, 1, `{}`))
	assert.ErrorIs(t, err, upsertErr)
	assert.NoError(t, mock.ExpectationsWereMet(), "the deeper states must not be committed")
}

func TestRunInTransaction_BeginFails(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	called := false
	err := RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
		called = true
		return nil
	})

	assert.ErrorContains(t, err, "failed to begin transaction")
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransaction_CommitFails(t *testing.T) {
	db, mock := newMockDB(t)
	flowID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(discardDeeperStatement).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(upsertStatement).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := RunInTransaction(context.Background(), db, replaceState(flowID, 0, `{}`))
	assert.ErrorContains(t, err, "failed to commit transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransaction_RollbackFails(t *testing.T) {
	db, mock := newMockDB(t)
	discardErr := errors.New("relation does not exist")

	mock.ExpectBegin()
	mock.ExpectExec(discardDeeperStatement).WillReturnError(discardErr)
	mock.ExpectRollback().WillReturnError(errors.New("connection lost"))

	err := RunInTransaction(context.Background(), db, replaceState(uuid.New(), 0, `{}`))
	assert.ErrorIs(t, err, discardErr)
	assert.ErrorContains(t, err, "connection lost")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransaction_PanicRollsBackAndPropagates(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "corrupt snapshot", func() {
		_ = RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
			panic("corrupt snapshot")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
