package advisory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/cropsevai/cropsevai-hub/internal/datastore"
	"github.com/cropsevai/cropsevai-hub/internal/logger"
)

const dashboardCacheKey = "dashboard"

// Store is the subset of the datastore the dashboard reads from.
type Store interface {
	CountCrops(ctx context.Context) (int64, error)
	CountDiseases(ctx context.Context) (int64, error)
	CropDiseaseCounts(ctx context.Context) ([]datastore.CropDiseaseCount, error)
	ListAlerts(ctx context.Context) ([]datastore.Alert, error)
}

// CacheRecorder receives dashboard cache hits and misses.
type CacheRecorder interface {
	RecordCacheLookup(cache string, hit bool)
}

// Service computes the dashboard and alert views.
type Service struct {
	store    Store
	cache    *cache.Cache // nil when caching is disabled
	group    singleflight.Group
	logger   logger.Logger
	recorder CacheRecorder
}

// Option configures a Service.
type Option func(*Service)

// WithCacheTTL caches the derived dashboard for ttl. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cache = cache.New(ttl, 2*ttl)
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Module("advisory")
		}
	}
}

// WithCacheRecorder reports cache lookups, typically to Prometheus.
func WithCacheRecorder(r CacheRecorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// NewService creates a dashboard service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logger.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard counts crops and diseases, reads per-crop disease counts and
// the alert list, then derives the health view. Concurrent callers share a
// single computation, which is detached from any one caller's cancellation;
// each store query still runs under its own timeout. A caller whose ctx ends
// first gets ctx.Err(). Store errors are returned unchanged.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if s.cache != nil {
		cached, ok := s.cache.Get(dashboardCacheKey)
		s.recordLookup(ok)
		if ok {
			return cached.(Dashboard), nil
		}
	}

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(dashboardCacheKey, func() (any, error) {
		return s.computeDashboard(shared)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Dashboard{}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return Dashboard{}, res.Err
	}

	d := res.Val.(Dashboard)
	if res.Shared {
		s.logger.Trace("Dashboard computation shared between concurrent requests")
	}
	if s.cache != nil {
		s.cache.SetDefault(dashboardCacheKey, d)
	}
	return d, nil
}

func (s *Service) computeDashboard(ctx context.Context) (Dashboard, error) {
	totalCrops, err := s.store.CountCrops(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	totalDiseases, err := s.store.CountDiseases(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	counts, err := s.store.CropDiseaseCounts(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	alerts, err := s.store.ListAlerts(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	s.logger.Debug("Dashboard computed",
		logger.Int64("crops", totalCrops),
		logger.Int64("diseases", totalDiseases),
		logger.Int("alerts", len(alerts)))

	return BuildDashboard(totalCrops, totalDiseases, counts, alerts), nil
}

// Alerts returns every disease joined with its crop name.
func (s *Service) Alerts(ctx context.Context) ([]datastore.Alert, error) {
	alerts, err := s.store.ListAlerts(ctx)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []datastore.Alert{}
	}
	return alerts, nil
}

// Invalidate drops the cached dashboard.
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.Delete(dashboardCacheKey)
	}
}

func (s *Service) recordLookup(hit bool) {
	if s.recorder != nil {
		s.recorder.RecordCacheLookup(dashboardCacheKey, hit)
	}
}
