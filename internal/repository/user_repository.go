package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gramseva/office-portal-api/internal/models"
)

const userColumns = `id, first_name, middle_name, last_name, handle, email, contact_number, age, gender, password_hash, verified, created_at, updated_at`

// UserRepository provides database access for citizen accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindByIdentifier returns a user whose email or contact number matches the
// supplied identifier.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 OR contact_number = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, identifier); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by identifier: %w", err)
	}
	return &user, nil
}

// FindConflict reports which unique field (email, userId or contactNumber)
// an existing account already claims. Empty string means no conflict.
func (r *UserRepository) FindConflict(ctx context.Context, email, handle, contactNumber string) (string, error) {
	const query = `SELECT email, handle, contact_number FROM users WHERE email = $1 OR handle = $2 OR contact_number = $3 LIMIT 1`
	var existing struct {
		Email         string `db:"email"`
		Handle        string `db:"handle"`
		ContactNumber string `db:"contact_number"`
	}
	if err := r.db.GetContext(ctx, &existing, query, email, handle, contactNumber); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("check unique fields: %w", err)
	}
	switch {
	case strings.EqualFold(existing.Email, email):
		return "email", nil
	case existing.ContactNumber == contactNumber:
		return "contactNumber", nil
	default:
		return "userId", nil
	}
}

// List returns every user ordered by signup time, oldest first. The admin
// review queue works through signups in arrival order.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at ASC`, userColumns)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create inserts a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, first_name, middle_name, last_name, handle, email, contact_number, age, gender, password_hash, verified, created_at, updated_at)
VALUES (:id, :first_name, :middle_name, :last_name, :handle, :email, :contact_number, :age, :gender, :password_hash, :verified, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Verify marks the user as verified. The update is unconditional so
// re-verifying an already-verified account is a harmless no-op.
func (r *UserRepository) Verify(ctx context.Context, id string, verifiedAt time.Time) error {
	const query = `UPDATE users SET verified = TRUE, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, verifiedAt)
	if err != nil {
		return fmt.Errorf("verify user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("verify user rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Counts aggregates account totals for the dashboard.
func (r *UserRepository) Counts(ctx context.Context) (*models.UserCounts, error) {
	const query = `SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE verified) AS verified,
COUNT(*) FILTER (WHERE NOT verified) AS pending
FROM users`
	var counts models.UserCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	return &counts, nil
}
