package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleDean      UserRole = "DEAN"
	RoleHead      UserRole = "HEAD"
	RoleProfessor UserRole = "PROFESSOR"
	RoleStudent   UserRole = "STUDENT"
)

// User represents an application user stored in the users table.
// DepartmentID is set for HEAD and PROFESSOR accounts and scopes their reads.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	DepartmentID *string   `db:"department_id" json:"department_id,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// JWTClaims carries the identity information embedded in access tokens.
type JWTClaims struct {
	UserID       string   `json:"uid"`
	Role         UserRole `json:"role"`
	DepartmentID string   `json:"dept,omitempty"`
	jwt.RegisteredClaims
}

// LoginRequest is the credential payload for the auth boundary.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse returns the issued access token and user profile.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}
