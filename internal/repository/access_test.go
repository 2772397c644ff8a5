package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/FaultKeeper/internal/access"
	"github.com/atinyakov/FaultKeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accessCols = []string{"user_id", "plan", "quota_used", "quota_limit", "last_reset_date", "charged"}

func setupAccessMock(t *testing.T) (*PostgresAccessRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresAccessRepository(db), mock
}

func expectCreate(mock sqlmock.Sqlmock, initial access.State) {
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (user_id) DO NOTHING`)).
		WithArgs(testUser, string(initial.Plan), initial.QuotaUsed, initial.QuotaLimit, initial.LastResetDate, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestAccessMutateNewUser(t *testing.T) {
	repo, mock := setupAccessMock(t)

	initial := access.New("", 10, "2024-03-01")
	reset := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	expectCreate(mock, initial)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_access WHERE user_id = $1 FOR UPDATE`)).
		WithArgs(testUser).
		WillReturnRows(sqlmock.NewRows(accessCols).
			AddRow(testUser, "free", int64(0), int64(10), reset, []byte(`{}`)))
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (user_id) DO UPDATE`)).
		WithArgs(testUser, "free", 1, 10, "2024-03-01", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.Mutate(context.Background(), testUser, initial, func(s access.State) access.State {
		assert.Equal(t, testUser, s.UserID)
		return access.IncrementQuota(s)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.QuotaUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessMutateExistingUser(t *testing.T) {
	repo, mock := setupAccessMock(t)
	reset := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	initial := access.New("", 10, "2024-03-01")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (user_id) DO NOTHING`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(testUser).
		WillReturnRows(sqlmock.NewRows(accessCols).
			AddRow(testUser, "pro", int64(4), int64(10), reset, []byte(`{f1,f2}`)))
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (user_id) DO UPDATE`)).
		WithArgs(testUser, "pro", 4, 10, "2024-02-29", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.Mutate(context.Background(), testUser, initial, func(s access.State) access.State {
		return s
	})
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, got.Plan)
	assert.Equal(t, "2024-02-29", got.LastResetDate)
	assert.Equal(t, []string{"f1", "f2"}, got.Charged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessMutateLoadErrorRollsBack(t *testing.T) {
	repo, mock := setupAccessMock(t)

	mock.ExpectBegin()
	expectCreate(mock, access.State{})
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(testUser).
		WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	called := false
	_, err := repo.Mutate(context.Background(), testUser, access.State{}, func(s access.State) access.State {
		called = true
		return s
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load access state")
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessMutateSaveError(t *testing.T) {
	repo, mock := setupAccessMock(t)

	reset := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	expectCreate(mock, access.New("", 10, "2024-03-01"))
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows(accessCols).
			AddRow(testUser, "free", int64(0), int64(10), reset, []byte(`{}`)))
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (user_id) DO UPDATE`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Mutate(context.Background(), testUser, access.New("", 10, "2024-03-01"), func(s access.State) access.State { return s })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save access state")
}

func TestAccessMutateCreatesRowBeforeLocking(t *testing.T) {
	repo, mock := setupAccessMock(t)
	mock.MatchExpectationsInOrder(true)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (user_id) DO NOTHING`)).
		WithArgs(testUser, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("conn reset"))
	mock.ExpectRollback()

	called := false
	_, err := repo.Mutate(context.Background(), testUser, access.New("", 10, "2024-03-01"), func(s access.State) access.State {
		called = true
		return s
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create access state")
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessMutateWithoutDB(t *testing.T) {
	repo := NewPostgresAccessRepository(nil)
	_, err := repo.Mutate(context.Background(), testUser, access.State{}, func(s access.State) access.State { return s })
	assert.ErrorIs(t, err, ErrUnavailable)
}
