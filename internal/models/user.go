package models

import "time"

// UserRole distinguishes citizen accounts from the administrator session.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleCitizen UserRole = "CITIZEN"
)

// User represents a citizen account stored in the users table. The password
// hash never leaves the API: it is excluded from JSON serialization.
type User struct {
	ID            string    `db:"id" json:"id"`
	FirstName     string    `db:"first_name" json:"firstName"`
	MiddleName    *string   `db:"middle_name" json:"middleName,omitempty"`
	LastName      string    `db:"last_name" json:"lastName"`
	Handle        string    `db:"handle" json:"userId"`
	Email         string    `db:"email" json:"email"`
	ContactNumber string    `db:"contact_number" json:"contactNumber"`
	Age           int       `db:"age" json:"age"`
	Gender        string    `db:"gender" json:"gender"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Verified      bool      `db:"verified" json:"verified"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// UserCounts aggregates account totals for the admin dashboard.
type UserCounts struct {
	Total    int `db:"total" json:"total"`
	Verified int `db:"verified" json:"verified"`
	Pending  int `db:"pending" json:"pending"`
}
