package services

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/analytics"
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/maxaizer/jobmarket/internal/filter"
	"github.com/maxaizer/jobmarket/internal/paging"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"sync"
)

type datasetSource interface {
	Jobs(ctx context.Context) ([]models.JobRecord, error)
	Version(ctx context.Context) (string, error)
}

// MemoryEngine evaluates filters with compiled predicates over a deduplicated in-memory snapshot.
// The snapshot is reloaded and re-indexed when the source reports a new version.
type MemoryEngine struct {
	source datasetSource

	mu      sync.Mutex
	version string
	jobs    []filter.IndexedJob
}

func NewMemoryEngine(source datasetSource) *MemoryEngine {
	return &MemoryEngine{source: source}
}

func (e *MemoryEngine) SearchJobs(ctx context.Context, f models.NormalizedFilter, page, pageSize int) (models.JobsResult, error) {
	jobs, err := e.filtered(ctx, f)
	if err != nil {
		return models.JobsResult{}, err
	}

	paging.SortByCreatedDesc(jobs)
	return paging.Paginate(jobs, page, pageSize), nil
}

func (e *MemoryEngine) TopSkills(ctx context.Context, f models.NormalizedFilter, k int) ([]models.SkillCount, error) {
	jobs, err := e.filtered(ctx, f)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeTopSkills(jobs, k), nil
}

func (e *MemoryEngine) MonthlyAnalytics(ctx context.Context, f models.NormalizedFilter, topSkillsCount int,
	seriesOverride []string) (models.AnalyticsResult, error) {

	jobs, err := e.filtered(ctx, f)
	if err != nil {
		return models.AnalyticsResult{}, err
	}
	return analytics.ComputeMonthlyAnalytics(jobs, topSkillsCount, seriesOverride), nil
}

func (e *MemoryEngine) EmergingSkills(ctx context.Context, f models.NormalizedFilter, monthsWindow, topK,
	minTotalCount int) (models.EmergingSkillTrendPayload, error) {

	jobs, err := e.filtered(ctx, f)
	if err != nil {
		return models.EmergingSkillTrendPayload{}, err
	}
	return analytics.ComputeEmergingSkillsTrends(jobs, monthsWindow, topK, minTotalCount), nil
}

func (e *MemoryEngine) CitySkillTrend(ctx context.Context, f models.NormalizedFilter, skill string, cities []string,
	topCityCount int) (models.CitySkillTrendResult, error) {

	jobs, err := e.filtered(ctx, f)
	if err != nil {
		return models.CitySkillTrendResult{}, err
	}
	return analytics.ComputeCitySkillTrend(jobs, skill, cities, topCityCount), nil
}

// filtered returns a fresh slice; the snapshot itself is never handed out.
func (e *MemoryEngine) filtered(ctx context.Context, f models.NormalizedFilter) ([]models.JobRecord, error) {
	jobs, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return filter.FilterJobs(jobs, filter.CompilePredicate(f)), nil
}

func (e *MemoryEngine) snapshot(ctx context.Context) ([]filter.IndexedJob, error) {
	version, err := e.source.Version(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "can't get dataset version")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.jobs != nil && e.version == version {
		return e.jobs, nil
	}

	jobs, err := e.source.Jobs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "can't load dataset")
	}

	e.jobs = filter.IndexJobs(paging.DedupeByID(jobs))
	e.version = version
	log.Infof("dataset snapshot loaded, version %s, %d postings", version, len(e.jobs))
	return e.jobs, nil
}
