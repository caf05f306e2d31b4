package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gramseva/office-portal-api/internal/models"
	appErrors "github.com/gramseva/office-portal-api/pkg/errors"
)

const dashboardSummaryCacheKey = "dash:summary"

type userCounter interface {
	Counts(ctx context.Context) (*models.UserCounts, error)
}

type applicationCounter interface {
	Counts(ctx context.Context) (*models.ApplicationCounts, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the admin summary from user and application totals.
type DashboardService struct {
	users        userCounter
	applications applicationCounter
	cache        *CacheService
	metrics      *MetricsService
	logger       *zap.Logger
	now          func() time.Time
	cfg          DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(users userCounter, applications applicationCounter, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		users:        users,
		applications: applications,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
		cfg:          cfg,
	}
}

// Summary returns the dashboard aggregate and indicates cache utilisation.
// The two count queries run concurrently.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	if summary, hit, err := s.tryCache(ctx); err != nil {
		return nil, false, err
	} else if hit {
		return summary, true, nil
	}

	var (
		wg      sync.WaitGroup
		users   *models.UserCounts
		apps    *models.ApplicationCounts
		userErr error
		appsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		users, userErr = s.users.Counts(ctx)
		s.metrics.ObserveDBQuery("user_counts", time.Since(start))
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		apps, appsErr = s.applications.Counts(ctx)
		s.metrics.ObserveDBQuery("application_counts", time.Since(start))
	}()
	wg.Wait()

	if userErr != nil {
		return nil, false, appErrors.Wrap(userErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	if appsErr != nil {
		return nil, false, appErrors.Wrap(appsErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count applications")
	}

	summary := &models.DashboardSummary{
		Users:        *users,
		Applications: *apps,
		GeneratedAt:  s.now().UTC(),
	}
	s.persistCache(ctx, summary)
	return summary, false, nil
}

func (s *DashboardService) tryCache(ctx context.Context) (*models.DashboardSummary, bool, error) {
	if s.cache == nil {
		return nil, false, nil
	}
	var cached models.DashboardSummary
	hit, err := s.cache.Get(ctx, dashboardSummaryCacheKey, &cached)
	if err != nil {
		// Stale or unreachable cache must not take the dashboard down.
		s.logger.Warn("dashboard cache read failed", zap.Error(err))
		return nil, false, nil
	}
	if hit {
		return &cached, true, nil
	}
	return nil, false, nil
}

func (s *DashboardService) persistCache(ctx context.Context, summary *models.DashboardSummary) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardSummaryCacheKey, summary, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
}
