package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gramseva/office-portal-api/internal/models"
	appErrors "github.com/gramseva/office-portal-api/pkg/errors"
	"github.com/gramseva/office-portal-api/pkg/jobs"
	"github.com/gramseva/office-portal-api/pkg/push"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context) ([]models.Notification, error)
	Delete(ctx context.Context, id string) error
	CreateDelivery(ctx context.Context, d *models.PushDelivery) error
	MarkDeliverySent(ctx context.Context, id string, sentAt time.Time) error
	MarkDeliveryFailed(ctx context.Context, id string, lastError string, failedAt time.Time) error
	FindDeliveryByNotification(ctx context.Context, notificationID string) (*models.PushDelivery, error)
}

type broadcaster interface {
	Enqueue(job jobs.Job) error
}

// CreateNotificationRequest is the broadcast payload.
type CreateNotificationRequest struct {
	Title   string `json:"title" validate:"notblank"`
	Content string `json:"content" validate:"notblank"`
}

// NotificationConfig tunes push broadcast behaviour.
type NotificationConfig struct {
	PushEnabled bool
	TopicARN    string
	SendTimeout time.Duration
}

// broadcastJob is the queue payload for one push delivery.
type broadcastJob struct {
	DeliveryID     string
	NotificationID string
	Title          string
	Content        string
}

// NotificationService persists announcements and fans them out to the
// broadcast topic through the outbox queue. The database write alone decides
// the caller-visible outcome; push failures stay on the delivery record.
type NotificationService struct {
	repo      notificationRepository
	validator *validator.Validate
	publisher push.Publisher
	queue     broadcaster
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       NotificationConfig
}

// NewNotificationService creates an instance of NotificationService.
func NewNotificationService(repo notificationRepository, publisher push.Publisher, queue broadcaster, metrics *MetricsService, logger *zap.Logger, cfg NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	return &NotificationService{repo: repo, validator: newRequestValidator(), publisher: publisher, queue: queue, metrics: metrics, logger: logger, cfg: cfg}
}

// Create stores the notification and schedules the broadcast. Every failure
// past the database write is logged and recorded on the outbox row, never
// returned to the caller.
func (s *NotificationService) Create(ctx context.Context, req CreateNotificationRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required fields: "+strings.Join(missingFields(err), ", "))
	}

	notification := &models.Notification{
		Title:   strings.TrimSpace(req.Title),
		Content: strings.TrimSpace(req.Content),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}

	s.scheduleBroadcast(ctx, notification)

	return notification, nil
}

func (s *NotificationService) scheduleBroadcast(ctx context.Context, n *models.Notification) {
	if !s.cfg.PushEnabled || s.publisher == nil || s.queue == nil {
		return
	}

	delivery := &models.PushDelivery{
		NotificationID: n.ID,
		Topic:          s.cfg.TopicARN,
		Status:         models.DeliveryPending,
	}
	if err := s.repo.CreateDelivery(ctx, delivery); err != nil {
		s.logger.Warn("failed to record push delivery", zap.String("notification_id", n.ID), zap.Error(err))
		return
	}

	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: "notification.broadcast",
		Payload: broadcastJob{
			DeliveryID:     delivery.ID,
			NotificationID: n.ID,
			Title:          n.Title,
			Content:        n.Content,
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue broadcast", zap.String("notification_id", n.ID), zap.Error(err))
		now := time.Now().UTC()
		if markErr := s.repo.MarkDeliveryFailed(context.WithoutCancel(ctx), delivery.ID, err.Error(), now); markErr != nil {
			s.logger.Warn("failed to mark delivery failed", zap.String("delivery_id", delivery.ID), zap.Error(markErr))
		}
	}
}

// HandleBroadcast is the queue handler for push deliveries. Returning an
// error lets the queue retry; the outbox row tracks every attempt.
func (s *NotificationService) HandleBroadcast(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(broadcastJob)
	if !ok {
		s.logger.Error("broadcast job has unexpected payload", zap.String("job_id", job.ID))
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	err := s.publisher.Publish(sendCtx, s.cfg.TopicARN, push.Message{
		Title: payload.Title,
		Body:  payload.Content,
		Data:  map[string]string{"notificationId": payload.NotificationID},
	})
	now := time.Now().UTC()
	if err != nil {
		s.metrics.RecordPushDelivery("failed")
		s.logger.Warn("push broadcast failed",
			zap.String("notification_id", payload.NotificationID),
			zap.Error(err),
		)
		if markErr := s.repo.MarkDeliveryFailed(ctx, payload.DeliveryID, err.Error(), now); markErr != nil {
			s.logger.Warn("failed to mark delivery failed", zap.String("delivery_id", payload.DeliveryID), zap.Error(markErr))
		}
		return err
	}

	s.metrics.RecordPushDelivery("sent")
	if markErr := s.repo.MarkDeliverySent(ctx, payload.DeliveryID, now); markErr != nil {
		s.logger.Warn("failed to mark delivery sent", zap.String("delivery_id", payload.DeliveryID), zap.Error(markErr))
	}
	s.logger.Info("push broadcast sent", zap.String("notification_id", payload.NotificationID))
	return nil
}

// List returns every notification, newest first.
func (s *NotificationService) List(ctx context.Context) ([]models.Notification, error) {
	notifications, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// Delete removes a notification.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "notification ID is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	return nil
}

// DeliveryStatus returns the outbox row for a broadcast.
func (s *NotificationService) DeliveryStatus(ctx context.Context, notificationID string) (*models.PushDelivery, error) {
	delivery, err := s.repo.FindDeliveryByNotification(ctx, notificationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no delivery recorded for notification")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load delivery")
	}
	return delivery, nil
}
