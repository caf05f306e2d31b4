package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignupRequest carries the self-registration form. The service validates
// it as a whole so that every problem is reported at once.
type SignupRequest struct {
	FirstName     string `json:"firstName" validate:"notblank"`
	MiddleName    string `json:"middleName"`
	LastName      string `json:"lastName" validate:"notblank"`
	ContactNumber string `json:"contactNumber" validate:"notblank,contact_number"`
	Email         string `json:"email" validate:"notblank"`
	Handle        string `json:"userId" validate:"notblank"`
	Age           int    `json:"age" validate:"gt=0"`
	Gender        string `json:"gender" validate:"notblank"`
	Password      string `json:"password" validate:"notblank"`
}

// LoginRequest authenticates a citizen. Identifier accepts either the email
// address or the contact number.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"notblank"`
	Password   string `json:"password" validate:"notblank"`
}

// AdminLoginRequest authenticates the administrator account.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// UserInfo describes the authenticated user in login responses.
type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
}

// LoginResponse returns the issued bearer token and basic profile.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	IssuedAt  time.Time `json:"issued_at"`
	User      *UserInfo `json:"user,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id,omitempty"`
	Email  string   `json:"email,omitempty"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
