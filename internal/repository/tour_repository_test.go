package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryReserveSlotsTxSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTourRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tours").
		WithArgs(uint32(3), uint64(7), uint32(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.TryReserveSlotsTx(context.Background(), tx, 7, 3))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryReserveSlotsTxInsufficient(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTourRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tours").
		WithArgs(uint32(5), uint64(7), uint32(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT max_participants - booked_slots").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"remaining"}).AddRow(3))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.TryReserveSlotsTx(context.Background(), tx, 7, 5)
	require.NoError(t, tx.Rollback())

	var capErr *InsufficientCapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, uint32(3), capErr.Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryReserveSlotsTxMissingTour(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTourRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tours").
		WithArgs(uint32(1), uint64(99), uint32(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT max_participants - booked_slots").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"remaining"}))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.TryReserveSlotsTx(context.Background(), tx, 99, 1)
	require.NoError(t, tx.Rollback())

	assert.True(t, errors.Is(err, ErrTourNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseSlotsTxUnderflow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTourRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tours").
		WithArgs(uint32(4), uint64(7), uint32(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.ReleaseSlotsTx(context.Background(), tx, 7, 4)
	require.NoError(t, tx.Rollback())

	assert.True(t, errors.Is(err, ErrSlotUnderflow))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseSlotsTxSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTourRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tours").
		WithArgs(uint32(2), uint64(7), uint32(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.ReleaseSlotsTx(context.Background(), tx, 7, 2))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
