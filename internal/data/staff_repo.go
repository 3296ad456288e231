package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	apperrors "github.com/hotelbooking/hotelweb/internal/errors"
	"github.com/hotelbooking/hotelweb/internal/ports"
)

// StaffRepo stores which hotel each hotel-role user administers (table hotel_staff).
type StaffRepo struct {
	DB  *sql.DB
	now func() time.Time
}

var _ ports.TenantDirectory = (*StaffRepo)(nil)

// NewStaffRepo creates a StaffRepo backed by db.
func NewStaffRepo(db *sql.DB) *StaffRepo {
	return &StaffRepo{DB: db, now: time.Now}
}

// NewStaffRepoWithClock stamps assignments with now() instead of the wall clock.
func NewStaffRepoWithClock(db *sql.DB, now func() time.Time) *StaffRepo {
	return &StaffRepo{DB: db, now: now}
}

// Lookup returns the hotel assigned to userID, or domainauth.ErrTenantNotAssigned.
func (r *StaffRepo) Lookup(ctx context.Context, userID string) (domainauth.TenantID, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrUserIDRequired
	}

	var hotelID string
	err := r.DB.QueryRowContext(ctx, `SELECT hotel_id FROM hotel_staff WHERE user_id = $1`, userID).Scan(&hotelID)
	if err != nil {
		mapped := apperrors.MapDBError(err)
		if apperrors.IsNotFound(mapped) {
			return "", domainauth.ErrTenantNotAssigned
		}
		return "", fmt.Errorf("lookup hotel_staff: %w", mapped)
	}
	return domainauth.ParseTenantID(hotelID), nil
}

// Assign creates or replaces the assignment for userID.
func (r *StaffRepo) Assign(ctx context.Context, userID string, hotelID domainauth.TenantID) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	hotelID = domainauth.ParseTenantID(hotelID.String())
	if hotelID.IsZero() {
		return ErrHotelIDRequired
	}

	q := `
		INSERT INTO hotel_staff (user_id, hotel_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET hotel_id = EXCLUDED.hotel_id`
	if _, err := r.DB.ExecContext(ctx, q, userID, hotelID.String(), r.now().UTC()); err != nil {
		return fmt.Errorf("upsert hotel_staff: %w", apperrors.MapDBError(err))
	}
	return nil
}

// Remove deletes the assignment for userID. Removing a missing assignment
// reports domainauth.ErrTenantNotAssigned.
func (r *StaffRepo) Remove(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM hotel_staff WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete hotel_staff: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domainauth.ErrTenantNotAssigned
	}
	return nil
}

// List returns every assignment ordered by user id.
func (r *StaffRepo) List(ctx context.Context) (out []ports.StaffAssignment, err error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT user_id, hotel_id, created_at FROM hotel_staff ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list hotel_staff: %w", apperrors.MapDBError(err))
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", cerr))
		}
	}()

	for rows.Next() {
		var (
			a       ports.StaffAssignment
			hotelID string
		)
		if err := rows.Scan(&a.UserID, &hotelID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan hotel_staff: %w", err)
		}
		a.HotelID = domainauth.TenantID(hotelID)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hotel_staff: %w", err)
	}
	return out, nil
}
