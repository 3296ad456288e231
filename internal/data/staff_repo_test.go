package data

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	apperrors "github.com/hotelbooking/hotelweb/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStaffRepo(t *testing.T) (*StaffRepo, sqlmock.Sqlmock, time.Time) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return NewStaffRepoWithClock(db, func() time.Time { return now }), mock, now
}

func TestStaffRepo_Lookup(t *testing.T) {
	repo, mock, _ := newMockStaffRepo(t)

	mock.ExpectQuery("SELECT hotel_id FROM hotel_staff").
		WithArgs("op-1").
		WillReturnRows(sqlmock.NewRows([]string{"hotel_id"}).AddRow(" 42 "))

	tenant, err := repo.Lookup(context.Background(), " op-1 ")
	require.NoError(t, err)
	assert.Equal(t, domainauth.TenantID("42"), tenant)
}

func TestStaffRepo_Lookup_NotAssigned(t *testing.T) {
	repo, mock, _ := newMockStaffRepo(t)

	mock.ExpectQuery("SELECT hotel_id FROM hotel_staff").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Lookup(context.Background(), "ghost")
	assert.ErrorIs(t, err, domainauth.ErrTenantNotAssigned)
}

func TestStaffRepo_Lookup_ConnectionFailure(t *testing.T) {
	repo, mock, _ := newMockStaffRepo(t)

	mock.ExpectQuery("SELECT hotel_id FROM hotel_staff").
		WithArgs("op-1").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ConnectionFailure})

	_, err := repo.Lookup(context.Background(), "op-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestStaffRepo_Lookup_RequiresUser(t *testing.T) {
	repo, _, _ := newMockStaffRepo(t)
	_, err := repo.Lookup(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrUserIDRequired)
}

func TestStaffRepo_Assign(t *testing.T) {
	repo, mock, now := newMockStaffRepo(t)

	mock.ExpectExec("INSERT INTO hotel_staff").
		WithArgs("op-1", "42", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Assign(context.Background(), "op-1", " 42"))
}

func TestStaffRepo_Assign_Validation(t *testing.T) {
	repo, _, _ := newMockStaffRepo(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Assign(ctx, "", "42"), ErrUserIDRequired)
	assert.ErrorIs(t, repo.Assign(ctx, "op-1", " "), ErrHotelIDRequired)
}

func TestStaffRepo_Assign_CheckViolation(t *testing.T) {
	repo, mock, now := newMockStaffRepo(t)

	mock.ExpectExec("INSERT INTO hotel_staff").
		WithArgs("op-1", "42", now).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "hotel_staff_hotel_id_check", TableName: "hotel_staff"})

	err := repo.Assign(context.Background(), "op-1", "42")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestStaffRepo_Remove(t *testing.T) {
	repo, mock, _ := newMockStaffRepo(t)

	mock.ExpectExec("DELETE FROM hotel_staff").WithArgs("op-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM hotel_staff").WithArgs("op-2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Remove(context.Background(), "op-1"))
	assert.ErrorIs(t, repo.Remove(context.Background(), "op-2"), domainauth.ErrTenantNotAssigned)
}

func TestStaffRepo_List(t *testing.T) {
	repo, mock, now := newMockStaffRepo(t)

	mock.ExpectQuery("SELECT user_id, hotel_id, created_at FROM hotel_staff ORDER BY user_id").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "hotel_id", "created_at"}).
			AddRow("a", "1", now).
			AddRow("b", "2", now.Add(time.Minute)))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].UserID)
	assert.Equal(t, domainauth.TenantID("2"), list[1].HotelID)
	assert.Equal(t, now.Add(time.Minute), list[1].CreatedAt)
}

func TestStaffRepo_List_QueryError(t *testing.T) {
	repo, mock, _ := newMockStaffRepo(t)

	mock.ExpectQuery("SELECT user_id").WillReturnError(errors.New("boom"))

	_, err := repo.List(context.Background())
	assert.ErrorContains(t, err, "boom")
}
