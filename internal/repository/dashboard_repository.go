package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/academyhq/academy-api/internal/models"
)

// DashboardRepository runs the schedule aggregation query behind the admin
// dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// ScheduleRows returns every slot joined with its branch and enrolled
// students. Left joins keep slots without a branch or without students in the
// result set so the aggregation can surface empty groups. A non-nil branchID
// restricts the result to one branch.
func (r *DashboardRepository) ScheduleRows(ctx context.Context, branchID *int64) ([]models.ScheduleRow, error) {
	query := `SELECT s.id AS slot_id, s.day, s.st_time, s.end_time,
            b.branch_name, u.id AS user_id, u.username, sd.photo_url
        FROM slots s
        LEFT JOIN branches b ON b.id = s.branch_id
        LEFT JOIN user_slots us ON us.slot_id = s.id
        LEFT JOIN users u ON u.id = us.user_id AND u.role = 'student'
        LEFT JOIN student_details sd ON sd.user_id = u.id`
	args := []interface{}{}
	if branchID != nil {
		query += " WHERE s.branch_id = $1"
		args = append(args, *branchID)
	}
	query += " ORDER BY s.id, u.id"

	var rows []models.ScheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("dashboard schedule rows: %w", err)
	}
	return rows, nil
}
