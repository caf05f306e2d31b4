package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramseva/office-portal-api/internal/models"
	appErrors "github.com/gramseva/office-portal-api/pkg/errors"
	"github.com/gramseva/office-portal-api/pkg/jobs"
	"github.com/gramseva/office-portal-api/pkg/push"
)

type mockNotificationRepo struct {
	notifications map[string]*models.Notification
	deliveries    map[string]*models.PushDelivery
	byNotif       map[string]*models.PushDelivery
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{
		notifications: make(map[string]*models.Notification),
		deliveries:    make(map[string]*models.PushDelivery),
		byNotif:       make(map[string]*models.PushDelivery),
	}
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	n.ID = "n1"
	m.notifications[n.ID] = n
	return nil
}

func (m *mockNotificationRepo) List(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range m.notifications {
		out = append(out, *n)
	}
	return out, nil
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.notifications[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.notifications, id)
	return nil
}

func (m *mockNotificationRepo) CreateDelivery(ctx context.Context, d *models.PushDelivery) error {
	d.ID = "d1"
	if d.Status == "" {
		d.Status = models.DeliveryPending
	}
	m.deliveries[d.ID] = d
	m.byNotif[d.NotificationID] = d
	return nil
}

func (m *mockNotificationRepo) MarkDeliverySent(ctx context.Context, id string, sentAt time.Time) error {
	d := m.deliveries[id]
	d.Status = models.DeliverySent
	d.Attempts++
	d.SentAt = &sentAt
	return nil
}

func (m *mockNotificationRepo) MarkDeliveryFailed(ctx context.Context, id string, lastError string, failedAt time.Time) error {
	d := m.deliveries[id]
	d.Status = models.DeliveryFailed
	d.Attempts++
	d.LastError = &lastError
	return nil
}

func (m *mockNotificationRepo) FindDeliveryByNotification(ctx context.Context, notificationID string) (*models.PushDelivery, error) {
	if d, ok := m.byNotif[notificationID]; ok {
		copy := *d
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type mockPublisher struct {
	err       error
	published []push.Message
}

func (m *mockPublisher) Publish(ctx context.Context, topicARN string, msg push.Message) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

type mockQueue struct {
	jobs []jobs.Job
	err  error
}

func (m *mockQueue) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func newNotificationFixture(pub *mockPublisher, queue *mockQueue) (*NotificationService, *mockNotificationRepo) {
	repo := newMockNotificationRepo()
	svc := NewNotificationService(repo, pub, queue, nil, nil, NotificationConfig{
		PushEnabled: true,
		TopicARN:    "arn:topic",
		SendTimeout: time.Second,
	})
	return svc, repo
}

func TestNotificationCreateRequiresTitleAndContent(t *testing.T) {
	svc, _ := newNotificationFixture(&mockPublisher{}, &mockQueue{})

	_, err := svc.Create(context.Background(), CreateNotificationRequest{})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, appErr.Message, "title")
	assert.Contains(t, appErr.Message, "content")
}

func TestNotificationCreateRecordsPendingDeliveryAndEnqueues(t *testing.T) {
	queue := &mockQueue{}
	svc, repo := newNotificationFixture(&mockPublisher{}, queue)

	n, err := svc.Create(context.Background(), CreateNotificationRequest{Title: "Office closed", Content: "Closed Friday."})
	require.NoError(t, err)

	delivery := repo.byNotif[n.ID]
	require.NotNil(t, delivery)
	assert.Equal(t, models.DeliveryPending, delivery.Status)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "notification.broadcast", queue.jobs[0].Type)
}

func TestNotificationCreateSucceedsWhenEnqueueFails(t *testing.T) {
	queue := &mockQueue{err: errors.New("queue full")}
	svc, repo := newNotificationFixture(&mockPublisher{}, queue)

	n, err := svc.Create(context.Background(), CreateNotificationRequest{Title: "Office closed", Content: "Closed Friday."})
	require.NoError(t, err)

	delivery := repo.byNotif[n.ID]
	require.NotNil(t, delivery)
	assert.Equal(t, models.DeliveryFailed, delivery.Status)
	require.NotNil(t, delivery.LastError)
	assert.Contains(t, *delivery.LastError, "queue full")
}

func TestHandleBroadcastMarksSent(t *testing.T) {
	pub := &mockPublisher{}
	queue := &mockQueue{}
	svc, repo := newNotificationFixture(pub, queue)

	n, err := svc.Create(context.Background(), CreateNotificationRequest{Title: "Office closed", Content: "Closed Friday."})
	require.NoError(t, err)

	require.NoError(t, svc.HandleBroadcast(context.Background(), queue.jobs[0]))

	delivery := repo.byNotif[n.ID]
	assert.Equal(t, models.DeliverySent, delivery.Status)
	assert.Equal(t, 1, delivery.Attempts)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "Office closed", pub.published[0].Title)
}

func TestHandleBroadcastMarksFailedAndReturnsError(t *testing.T) {
	pub := &mockPublisher{err: errors.New("sns unavailable")}
	queue := &mockQueue{}
	svc, repo := newNotificationFixture(pub, queue)

	n, err := svc.Create(context.Background(), CreateNotificationRequest{Title: "Office closed", Content: "Closed Friday."})
	require.NoError(t, err)

	err = svc.HandleBroadcast(context.Background(), queue.jobs[0])
	require.Error(t, err)

	delivery := repo.byNotif[n.ID]
	assert.Equal(t, models.DeliveryFailed, delivery.Status)
	require.NotNil(t, delivery.LastError)
	assert.Contains(t, *delivery.LastError, "sns unavailable")
}

func TestNotificationCreateSkipsDeliveryWhenPushDisabled(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := NewNotificationService(repo, nil, nil, nil, nil, NotificationConfig{PushEnabled: false})

	n, err := svc.Create(context.Background(), CreateNotificationRequest{Title: "Office closed", Content: "Closed Friday."})
	require.NoError(t, err)
	assert.Empty(t, repo.deliveries)
	assert.NotEmpty(t, n.ID)
}

func TestNotificationDeleteUnknown(t *testing.T) {
	svc, _ := newNotificationFixture(&mockPublisher{}, &mockQueue{})

	err := svc.Delete(context.Background(), "missing")

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestNotificationDeliveryStatusNotRecorded(t *testing.T) {
	svc, _ := newNotificationFixture(&mockPublisher{}, &mockQueue{})

	_, err := svc.DeliveryStatus(context.Background(), "n-none")

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}
