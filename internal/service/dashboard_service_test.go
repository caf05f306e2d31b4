package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramseva/office-portal-api/internal/models"
	appErrors "github.com/gramseva/office-portal-api/pkg/errors"
)

type mockUserCounter struct {
	counts *models.UserCounts
	err    error
	calls  int
}

func (m *mockUserCounter) Counts(ctx context.Context) (*models.UserCounts, error) {
	m.calls++
	return m.counts, m.err
}

type mockApplicationCounter struct {
	counts *models.ApplicationCounts
	err    error
	calls  int
}

func (m *mockApplicationCounter) Counts(ctx context.Context) (*models.ApplicationCounts, error) {
	m.calls++
	return m.counts, m.err
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func TestDashboardSummaryAggregatesCounts(t *testing.T) {
	users := &mockUserCounter{counts: &models.UserCounts{Total: 10, Verified: 7, Pending: 3}}
	apps := &mockApplicationCounter{counts: &models.ApplicationCounts{Total: 12, Pending: 5, Approved: 4, Rejected: 3}}
	svc := NewDashboardService(users, apps, nil, nil, nil, DashboardServiceConfig{})

	summary, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 10, summary.Users.Total)
	assert.Equal(t, 5, summary.Applications.Pending)
	assert.False(t, summary.GeneratedAt.IsZero())
	assert.Equal(t, 1, users.calls)
	assert.Equal(t, 1, apps.calls)
}

func TestDashboardSummaryPropagatesCountErrors(t *testing.T) {
	users := &mockUserCounter{err: errors.New("db down")}
	apps := &mockApplicationCounter{counts: &models.ApplicationCounts{}}
	svc := NewDashboardService(users, apps, nil, nil, nil, DashboardServiceConfig{})

	_, _, err := svc.Summary(context.Background())
	require.Error(t, err)
}

func TestDashboardSummaryServesSecondCallFromCache(t *testing.T) {
	users := &mockUserCounter{counts: &models.UserCounts{Total: 10}}
	apps := &mockApplicationCounter{counts: &models.ApplicationCounts{Total: 12}}
	cacheSvc := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewDashboardService(users, apps, cacheSvc, nil, nil, DashboardServiceConfig{CacheTTL: time.Minute})

	first, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first.Users.Total, second.Users.Total)
	assert.Equal(t, 1, users.calls)
	assert.Equal(t, 1, apps.calls)
}

func TestCacheServiceInvalidateRemovesEntry(t *testing.T) {
	repo := newMemoryCacheRepo()
	cacheSvc := NewCacheService(repo, nil, time.Minute, nil, true)

	require.NoError(t, cacheSvc.Set(context.Background(), "k", map[string]int{"v": 1}, 0))
	require.NoError(t, cacheSvc.Invalidate(context.Background(), "k"))

	var dest map[string]int
	hit, err := cacheSvc.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestDashboardSummaryObservesCountQueryDurations(t *testing.T) {
	users := &mockUserCounter{counts: &models.UserCounts{Total: 4}}
	apps := &mockApplicationCounter{counts: &models.ApplicationCounts{Total: 2}}
	metrics := NewMetricsService()
	svc := NewDashboardService(users, apps, nil, metrics, nil, DashboardServiceConfig{})

	_, _, err := svc.Summary(context.Background())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, readErr := io.ReadAll(rec.Body)
	require.NoError(t, readErr)
	assert.Contains(t, string(body), `db_query_duration_seconds_count{query="user_counts"} 1`)
	assert.Contains(t, string(body), `db_query_duration_seconds_count{query="application_counts"} 1`)
}
