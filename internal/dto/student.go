package dto

import "github.com/academyhq/academy-api/internal/models"

// RegistrationResult is returned by the registration workflow.
type RegistrationResult struct {
	UserID   int64       `json:"user_id"`
	Role     models.Role `json:"role"`
	PhotoURL string      `json:"photo_url"`
}

// ProfileCreateResult is returned when a student profile is created for an
// existing user.
type ProfileCreateResult struct {
	Profile  models.StudentDetails `json:"student_profile"`
	PhotoURL string                `json:"photo_url"`
}

// ProfileUpdateResult reports the effective photo and role after an update.
// PhotoURL is empty when the photo was left untouched.
type ProfileUpdateResult struct {
	PhotoURL string      `json:"photo_url"`
	Role     models.Role `json:"role"`
}
