package models

// Grade is an academic grade reference entity.
type Grade struct {
	ID        int64  `db:"id" json:"id"`
	GradeName string `db:"grade_name" json:"grade_name"`
	CourseID  *int64 `db:"course_id" json:"course_id"`
}

// GradeSummary is the projection returned by the student grades query.
type GradeSummary struct {
	ID        int64  `db:"id" json:"id"`
	GradeName string `db:"grade_name" json:"grade_name"`
	CourseID  *int64 `db:"course_id" json:"course_id"`
}
