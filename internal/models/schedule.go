package models

import "time"

// Branch is a physical teaching location.
type Branch struct {
	ID         int64     `db:"id" json:"id"`
	BranchName string    `db:"branch_name" json:"branch_name"`
	Currency   string    `db:"currency" json:"currency"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Slot is a weekly class occurrence owned by a branch.
type Slot struct {
	ID        int64  `db:"id" json:"id"`
	Day       string `db:"day" json:"day"`
	StTime    string `db:"st_time" json:"st_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	BranchID  *int64 `db:"branch_id" json:"branch_id"`
	CourseID  *int64 `db:"course_id" json:"course_id"`
	GradeID   *int64 `db:"grade_id" json:"grade_id"`
}

// BranchSummary is the {id, branch_name} projection of the reference query.
type BranchSummary struct {
	ID         int64  `db:"id" json:"id"`
	BranchName string `db:"branch_name" json:"branch_name"`
}

// ScheduleRow is one row of the dashboard join: a slot, its branch if any, and
// at most one enrolled student. Slots without enrolments still yield a row
// with the student columns null.
type ScheduleRow struct {
	SlotID     int64   `db:"slot_id"`
	Day        string  `db:"day"`
	StTime     string  `db:"st_time"`
	EndTime    string  `db:"end_time"`
	BranchName *string `db:"branch_name"`
	UserID     *int64  `db:"user_id"`
	Username   *string `db:"username"`
	PhotoURL   *string `db:"photo_url"`
}
