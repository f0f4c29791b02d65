package models

import "time"

// Role is the closed set of account roles. Every student-only side effect in
// the workflows dispatches on this type rather than raw strings.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// ParseRole validates a raw role value against the closed set.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleStudent, RoleTeacher:
		return Role(raw), true
	default:
		return "", false
	}
}

// Status is the account lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// User is the identity record shared by students and teachers.
type User struct {
	ID          int64     `db:"id" json:"id"`
	Name        *string   `db:"name" json:"name"`
	FirstName   *string   `db:"first_name" json:"first_name"`
	LastName    *string   `db:"last_name" json:"last_name"`
	Username    *string   `db:"username" json:"username"`
	Email       *string   `db:"email" json:"email"`
	PhnNum      *string   `db:"phn_num" json:"phn_num"`
	Gender      *string   `db:"gender" json:"gender"`
	DateOfBirth *string   `db:"date_of_birth" json:"date_of_birth"`
	Address     *string   `db:"address" json:"address"`
	Role        Role      `db:"role" json:"role"`
	Status      Status    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// UserPatch carries a partial user update. Nil fields are left untouched,
// matching the legacy semantics where an undefined column is a no-op.
type UserPatch struct {
	Name        *string `json:"name"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	PhnNum      *string `json:"phn_num"`
	Gender      *string `json:"gender"`
	DateOfBirth *string `json:"date_of_birth"`
	Address     *string `json:"address"`
	Role        *string `json:"role"`
	Status      *string `json:"status"`
}
