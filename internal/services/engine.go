package services

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/domain/models"
)

// Engine answers filtered queries over the job dataset. Filters are expected to be normalized.
type Engine interface {
	SearchJobs(ctx context.Context, f models.NormalizedFilter, page, pageSize int) (models.JobsResult, error)
	TopSkills(ctx context.Context, f models.NormalizedFilter, k int) ([]models.SkillCount, error)
	MonthlyAnalytics(ctx context.Context, f models.NormalizedFilter, topSkillsCount int,
		seriesOverride []string) (models.AnalyticsResult, error)
	EmergingSkills(ctx context.Context, f models.NormalizedFilter, monthsWindow, topK,
		minTotalCount int) (models.EmergingSkillTrendPayload, error)
	CitySkillTrend(ctx context.Context, f models.NormalizedFilter, skill string, cities []string,
		topCityCount int) (models.CitySkillTrendResult, error)
}

type versionSource interface {
	Version(ctx context.Context) (string, error)
}
