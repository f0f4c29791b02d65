package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/academyhq/academy-api/internal/models"
)

// StaffRepository manages admin-panel staff accounts.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// FindByEmail fetches a staff account by email. Returns sql.ErrNoRows when
// the account does not exist.
func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*models.StaffAccount, error) {
	const query = `SELECT id, email, password_hash, full_name, active, last_login, created_at
        FROM staff_accounts WHERE email = $1`
	var account models.StaffAccount
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateLastLogin records a successful login timestamp.
func (r *StaffRepository) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	const query = `UPDATE staff_accounts SET last_login = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
