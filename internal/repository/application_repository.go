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

const applicationColumns = `id, full_name, age, contact_number, gender, district, revenue_circle, category, village_ward, remarks, document_url, status, user_id, created_at, updated_at`

// ApplicationRepository provides persistence for citizen applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository creates the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now

	const query = `INSERT INTO applications (id, full_name, age, contact_number, gender, district, revenue_circle, category, village_ward, remarks, document_url, status, user_id, created_at, updated_at)
VALUES (:id, :full_name, :age, :contact_number, :gender, :district, :revenue_circle, :category, :village_ward, :remarks, :document_url, :status, :user_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// FindByID returns an application by identifier.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1 LIMIT 1`, applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return &app, nil
}

// List returns applications, optionally restricted to one owner. The sort
// contract lives here: callers get created_at ordering with a documented
// descending default instead of re-sorting client side.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM applications%s ORDER BY created_at %s", applicationColumns, whereClause, sortOrder)
	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// UpdateStatus persists a status transition and reports sql.ErrNoRows when
// the application does not exist.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, updatedAt time.Time) error {
	const query = `UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateDocumentURL attaches an uploaded document to an application.
func (r *ApplicationRepository) UpdateDocumentURL(ctx context.Context, id, documentURL string, updatedAt time.Time) error {
	const query = `UPDATE applications SET document_url = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, documentURL, updatedAt)
	if err != nil {
		return fmt.Errorf("update application document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application document rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Counts aggregates lifecycle totals for the dashboard.
func (r *ApplicationRepository) Counts(ctx context.Context) (*models.ApplicationCounts, error) {
	const query = `SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE status = 'Pending') AS pending,
COUNT(*) FILTER (WHERE status = 'Approved') AS approved,
COUNT(*) FILTER (WHERE status = 'Rejected') AS rejected
FROM applications`
	var counts models.ApplicationCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	return &counts, nil
}
