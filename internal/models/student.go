package models

import "time"

// StudentDetails is the 1:1 student extension of a User.
type StudentDetails struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	StudentNo  string    `db:"student_no" json:"student_no"`
	Salutation *string   `db:"salutation" json:"salutation"`
	ICEContact *string   `db:"ice_contact" json:"ice_contact"`
	PhotoURL   string    `db:"photo_url" json:"photo_url"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetailsPatch is a partial student_details update. A nil PhotoURL
// means the photo_url key was absent from the request and the column is left
// untouched.
type StudentDetailsPatch struct {
	StudentNo  *string `json:"student_no"`
	Salutation *string `json:"salutation"`
	ICEContact *string `json:"ice_contact"`
	PhotoURL   *string `json:"photo_url"`
}

// StudentProfile is a User with its nested StudentDetails, the payload of the
// profile getter.
type StudentProfile struct {
	User
	StudentDetail *StudentDetails `json:"StudentDetail"`
}

// RegistrationParams groups every row written by the registration
// transaction.
type RegistrationParams struct {
	User      User
	Details   *StudentDetails
	GradeIDs  []int64
	SlotIDs   []int64
	BranchIDs []int64
}

// ProfileUpdateParams groups the writes of the update transaction.
type ProfileUpdateParams struct {
	UserID int64
	User   UserPatch
	// Role and Status resolved against the stored row; always written.
	EffectiveRole   Role
	EffectiveStatus Status
	Details         StudentDetailsPatch
	// AsStudent gates the student_details / assignment writes (new or prior
	// role is student). PriorRoleStudent distinguishes a missing profile row
	// (error) from a role promotion (profile created on the fly).
	AsStudent        bool
	PriorRoleStudent bool
	GradeIDs         []int64
	SlotIDs          []int64
	// DefaultPhotoURL seeds photo_url when a promotion creates the details
	// row and the request carried no photo.
	DefaultPhotoURL string
}

// RosterRow is one line of the exported student roster.
type RosterRow struct {
	StudentNo string  `db:"student_no"`
	Username  *string `db:"username"`
	Email     *string `db:"email"`
	Status    Status  `db:"status"`
}
