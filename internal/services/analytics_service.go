package services

import (
	"context"
	"encoding/json"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmarket/internal/cache"
	"github.com/maxaizer/jobmarket/internal/domain/events"
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/maxaizer/jobmarket/internal/filter"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/maxaizer/jobmarket/internal/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"time"
)

const (
	OperationSearch   = "search"
	OperationTop      = "top_skills"
	OperationMonthly  = "monthly"
	OperationEmerging = "emerging"
	OperationCity     = "city_skill_trend"
)

type cacheParams struct {
	Operation string                  `json:"op"`
	Filter    models.NormalizedFilter `json:"filter"`
	Params    map[string]any          `json:"params"`
}

// AnalyticsService is the entry point of the engine: it normalizes filters and memoizes engine
// results per dataset version.
type AnalyticsService struct {
	engine   Engine
	cache    *cache.Cache
	versions versionSource
}

func NewAnalyticsService(bus EventBus.Bus, engine Engine, resultCache *cache.Cache,
	versions versionSource) (*AnalyticsService, error) {

	s := &AnalyticsService{
		engine:   engine,
		cache:    resultCache,
		versions: versions,
	}

	err := bus.Subscribe(events.DatasetVersionChangedTopic, s.onDatasetVersionChanged)
	if err != nil {
		return nil, err
	}
	err = bus.Subscribe(events.CacheClearRequestedTopic, s.onCacheClearRequested)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *AnalyticsService) SearchJobs(ctx context.Context, raw models.RawFilter, page, pageSize int) (models.JobsResult, error) {
	f := filter.Normalize(raw)
	params := map[string]any{"page": page, "pageSize": pageSize}
	return cached(ctx, s, OperationSearch, f, params, func(ctx context.Context) (models.JobsResult, error) {
		return s.engine.SearchJobs(ctx, f, page, pageSize)
	})
}

func (s *AnalyticsService) TopSkills(ctx context.Context, raw models.RawFilter, k int) ([]models.SkillCount, error) {
	f := filter.Normalize(raw)
	return cached(ctx, s, OperationTop, f, map[string]any{"k": k}, func(ctx context.Context) ([]models.SkillCount, error) {
		return s.engine.TopSkills(ctx, f, k)
	})
}

func (s *AnalyticsService) MonthlyAnalytics(ctx context.Context, raw models.RawFilter, topSkillsCount int,
	seriesOverride []string) (models.AnalyticsResult, error) {

	f := filter.Normalize(raw)
	params := map[string]any{"topSkillsCount": topSkillsCount, "series": ordered(seriesOverride)}
	return cached(ctx, s, OperationMonthly, f, params, func(ctx context.Context) (models.AnalyticsResult, error) {
		return s.engine.MonthlyAnalytics(ctx, f, topSkillsCount, seriesOverride)
	})
}

func (s *AnalyticsService) EmergingSkills(ctx context.Context, raw models.RawFilter, monthsWindow, topK,
	minTotalCount int) (models.EmergingSkillTrendPayload, error) {

	f := filter.Normalize(raw)
	params := map[string]any{"monthsWindow": monthsWindow, "topK": topK, "minTotalCount": minTotalCount}
	return cached(ctx, s, OperationEmerging, f, params, func(ctx context.Context) (models.EmergingSkillTrendPayload, error) {
		return s.engine.EmergingSkills(ctx, f, monthsWindow, topK, minTotalCount)
	})
}

func (s *AnalyticsService) CitySkillTrend(ctx context.Context, raw models.RawFilter, skill string, cities []string,
	topCityCount int) (models.CitySkillTrendResult, error) {

	f := filter.Normalize(raw)
	params := map[string]any{"skill": skill, "cities": ordered(cities), "topCityCount": topCityCount}
	return cached(ctx, s, OperationCity, f, params, func(ctx context.Context) (models.CitySkillTrendResult, error) {
		return s.engine.CitySkillTrend(ctx, f, skill, cities, topCityCount)
	})
}

func (s *AnalyticsService) ClearCache(ctx context.Context) {
	s.cache.Clear(ctx)
}

func (s *AnalyticsService) onDatasetVersionChanged(event events.DatasetVersionChanged) {
	log.Infof("dataset version changed from %q to %q, clearing cache", event.Previous, event.Current)
	s.cache.Clear(context.Background())
}

func (s *AnalyticsService) onCacheClearRequested(event events.CacheClearRequested) {
	log.Infof("cache clear requested: %s", event.Reason)
	s.cache.Clear(context.Background())
}

func cached[T any](ctx context.Context, s *AnalyticsService, operation string, f models.NormalizedFilter,
	params map[string]any, compute func(ctx context.Context) (T, error)) (T, error) {

	version, err := s.versions.Version(ctx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("can't get dataset version: %v", err)
		var zero T
		return zero, errors.Wrap(err, "can't get dataset version")
	}

	key := cacheParams{Operation: operation, Filter: f, Params: params}
	return cache.GetOrCompute(ctx, s.cache, version, key, func(ctx context.Context) (T, error) {
		start := time.Now()
		defer func() {
			metrics.ComputationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		}()
		return compute(ctx)
	})
}

// ordered encodes a list whose order matters into a single string, so the cache key keeps it.
func ordered(values []string) string {
	if len(values) == 0 {
		return ""
	}
	data, _ := json.Marshal(values)
	return string(data)
}
