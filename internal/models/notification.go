package models

import "time"

// Notification is a broadcast announcement visible to every citizen.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// DeliveryStatus tracks the outcome of a broadcast push attempt.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "PENDING"
	DeliverySent    DeliveryStatus = "SENT"
	DeliveryFailed  DeliveryStatus = "FAILED"
)

// PushDelivery is the outbox record for one broadcast. Push failures are
// recorded here instead of being surfaced to the notification author.
type PushDelivery struct {
	ID             string         `db:"id" json:"id"`
	NotificationID string         `db:"notification_id" json:"notificationId"`
	Topic          string         `db:"topic" json:"topic"`
	Status         DeliveryStatus `db:"status" json:"status"`
	Attempts       int            `db:"attempts" json:"attempts"`
	LastError      *string        `db:"last_error" json:"lastError,omitempty"`
	SentAt         *time.Time     `db:"sent_at" json:"sentAt,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}
