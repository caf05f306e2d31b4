package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gramseva/office-portal-api/internal/models"
)

// NotificationRepository persists broadcast notifications and their push
// delivery outbox records.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now

	const query = `INSERT INTO notifications (id, title, content, created_at, updated_at)
VALUES (:id, :title, :content, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// List returns every notification, newest first. Descending creation order
// is the contract here, not an artifact of storage iteration.
func (r *NotificationRepository) List(ctx context.Context) ([]models.Notification, error) {
	const query = `SELECT id, title, content, created_at, updated_at FROM notifications ORDER BY created_at DESC`
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// Delete removes a notification, reporting sql.ErrNoRows when absent.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete notification rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateDelivery inserts a PENDING outbox row for a broadcast.
func (r *NotificationRepository) CreateDelivery(ctx context.Context, d *models.PushDelivery) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	if d.Status == "" {
		d.Status = models.DeliveryPending
	}

	const query = `INSERT INTO push_deliveries (id, notification_id, topic, status, attempts, last_error, sent_at, created_at, updated_at)
VALUES (:id, :notification_id, :topic, :status, :attempts, :last_error, :sent_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, d); err != nil {
		return fmt.Errorf("create push delivery: %w", err)
	}
	return nil
}

// MarkDeliverySent records a successful broadcast.
func (r *NotificationRepository) MarkDeliverySent(ctx context.Context, id string, sentAt time.Time) error {
	const query = `UPDATE push_deliveries SET status = $2, attempts = attempts + 1, sent_at = $3, last_error = NULL, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.DeliverySent, sentAt); err != nil {
		return fmt.Errorf("mark delivery sent: %w", err)
	}
	return nil
}

// MarkDeliveryFailed records a failed broadcast attempt with its error.
func (r *NotificationRepository) MarkDeliveryFailed(ctx context.Context, id string, lastError string, failedAt time.Time) error {
	const query = `UPDATE push_deliveries SET status = $2, attempts = attempts + 1, last_error = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.DeliveryFailed, lastError, failedAt); err != nil {
		return fmt.Errorf("mark delivery failed: %w", err)
	}
	return nil
}

// FindDeliveryByNotification returns the outbox row for a notification.
func (r *NotificationRepository) FindDeliveryByNotification(ctx context.Context, notificationID string) (*models.PushDelivery, error) {
	const query = `SELECT id, notification_id, topic, status, attempts, last_error, sent_at, created_at, updated_at
FROM push_deliveries WHERE notification_id = $1 ORDER BY created_at DESC LIMIT 1`
	var delivery models.PushDelivery
	if err := r.db.GetContext(ctx, &delivery, query, notificationID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find push delivery: %w", err)
	}
	return &delivery, nil
}
