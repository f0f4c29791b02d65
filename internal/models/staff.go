package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StaffAccount is an admin-panel login account. Separate from User: students
// and teachers never authenticate against this API.
type StaffAccount struct {
	ID           int64      `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// LoginRequest is the staff login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and account info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	Staff       StaffInfo `json:"staff"`
}

// StaffInfo is the public projection of a staff account.
type StaffInfo struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// JWTClaims are the registered claims plus staff identity.
type JWTClaims struct {
	StaffID  int64  `json:"staff_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}
