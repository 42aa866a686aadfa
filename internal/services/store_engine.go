package services

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/analytics"
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/maxaizer/jobmarket/internal/filter"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/maxaizer/jobmarket/internal/paging"
	"github.com/maxaizer/jobmarket/internal/repositories"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"strings"
)

type jobsStore interface {
	Search(ctx context.Context, fragment filter.QueryFragment, page, pageSize int) ([]models.JobRecord, int, error)
	PostingsPerMonth(ctx context.Context, fragment filter.QueryFragment) ([]analytics.MonthCount, error)
	AverageRatePerMonth(ctx context.Context, fragment filter.QueryFragment) ([]analytics.MonthValue, error)
	SkillCounts(ctx context.Context, fragment filter.QueryFragment) ([]models.SkillCount, error)
	MonthSkillCounts(ctx context.Context, fragment filter.QueryFragment) ([]analytics.MonthSkillCount, error)
	SeriesSkillCounts(ctx context.Context, fragment filter.QueryFragment, lowerSkills []string) ([]analytics.MonthSkillCount, error)
	MonthCityCounts(ctx context.Context, fragment filter.QueryFragment, lowerSkill string) ([]analytics.MonthCityCount, error)
}

// StoreEngine compiles filters to SQL and aggregates with grouped queries, reshaping the rows with
// the same reducers as the in-memory engine.
//
// Outside production a store whose schema was never migrated answers with empty results.
type StoreEngine struct {
	store      jobsStore
	production bool
}

func NewStoreEngine(store jobsStore, production bool) *StoreEngine {
	return &StoreEngine{store: store, production: production}
}

func (e *StoreEngine) SearchJobs(ctx context.Context, f models.NormalizedFilter, page, pageSize int) (models.JobsResult, error) {
	page, pageSize = paging.Bounds(page, pageSize)
	empty := models.JobsResult{Items: []models.JobRecord{}, Page: page, PageSize: pageSize, PageCount: 1}

	items, total, err := e.store.Search(ctx, filter.CompileQuery(f), page, pageSize)
	if err != nil {
		return emptyOnMissingSchema(e.production, empty, err)
	}

	return models.JobsResult{
		Items:     items,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
		PageCount: paging.PageCount(total, pageSize),
	}, nil
}

func (e *StoreEngine) TopSkills(ctx context.Context, f models.NormalizedFilter, k int) ([]models.SkillCount, error) {
	counts, err := e.store.SkillCounts(ctx, filter.CompileQuery(f))
	if err != nil {
		return emptyOnMissingSchema(e.production, []models.SkillCount{}, err)
	}
	return analytics.BuildTopSkills(counts, k), nil
}

func (e *StoreEngine) MonthlyAnalytics(ctx context.Context, f models.NormalizedFilter, topSkillsCount int,
	seriesOverride []string) (models.AnalyticsResult, error) {

	fragment := filter.CompileQuery(f)
	var (
		postings []analytics.MonthCount
		rates    []analytics.MonthValue
		skills   []models.SkillCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		postings, err = e.store.PostingsPerMonth(gctx, fragment)
		return err
	})
	g.Go(func() (err error) {
		rates, err = e.store.AverageRatePerMonth(gctx, fragment)
		return err
	})
	g.Go(func() (err error) {
		skills, err = e.store.SkillCounts(gctx, fragment)
		return err
	})
	if err := g.Wait(); err != nil {
		return emptyOnMissingSchema(e.production, analytics.BuildMonthlyAnalytics(nil, nil, nil, nil, nil), err)
	}

	top := analytics.BuildTopSkills(skills, topSkillsCount)
	series := analytics.SeriesSkills(top, seriesOverride)
	seriesCounts, err := e.store.SeriesSkillCounts(ctx, fragment, analytics.LowerSkills(series))
	if err != nil {
		return models.AnalyticsResult{}, errors.Wrap(err, "can't count series skills")
	}

	return analytics.BuildMonthlyAnalytics(postings, rates, top, series, seriesCounts), nil
}

func (e *StoreEngine) EmergingSkills(ctx context.Context, f models.NormalizedFilter, monthsWindow, topK,
	minTotalCount int) (models.EmergingSkillTrendPayload, error) {

	fragment := filter.CompileQuery(f)
	var (
		postings []analytics.MonthCount
		counts   []analytics.MonthSkillCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		postings, err = e.store.PostingsPerMonth(gctx, fragment)
		return err
	})
	g.Go(func() (err error) {
		counts, err = e.store.MonthSkillCounts(gctx, fragment)
		return err
	})
	if err := g.Wait(); err != nil {
		empty := models.EmergingSkillTrendPayload{Months: []string{}, Trends: []models.EmergingSkillTrend{}}
		return emptyOnMissingSchema(e.production, empty, err)
	}

	months := make([]string, 0, len(postings))
	for _, p := range postings {
		months = append(months, p.Month)
	}
	return analytics.BuildEmergingSkills(months, counts, monthsWindow, topK, minTotalCount), nil
}

func (e *StoreEngine) CitySkillTrend(ctx context.Context, f models.NormalizedFilter, skill string, cities []string,
	topCityCount int) (models.CitySkillTrendResult, error) {

	lowerSkill := strings.ToLower(strings.TrimSpace(skill))
	if lowerSkill == "" {
		return analytics.EmptyCitySkillTrend(skill), nil
	}

	rows, err := e.store.MonthCityCounts(ctx, filter.CompileQuery(f), lowerSkill)
	if err != nil {
		return emptyOnMissingSchema(e.production, analytics.EmptyCitySkillTrend(skill), err)
	}
	return analytics.BuildCitySkillTrend(skill, rows, cities, topCityCount), nil
}

// emptyOnMissingSchema hides an unmigrated store behind an empty result in development.
func emptyOnMissingSchema[T any](production bool, empty T, err error) (T, error) {
	if production || !repositories.IsMissingTable(err) {
		var zero T
		return zero, err
	}

	log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
		Warnf("job store is not migrated, answering with an empty result: %v", err)
	return empty, nil
}
