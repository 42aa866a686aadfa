package analytics

import (
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/samber/lo"
	"sort"
	"strings"
)

func ComputeMonthlyAnalytics(jobs []models.JobRecord, topSkillsCount int, seriesOverride []string) models.AnalyticsResult {
	top := BuildTopSkills(TallySkills(jobs), topSkillsCount)
	series := SeriesSkills(top, seriesOverride)
	return BuildMonthlyAnalytics(
		TallyPostings(jobs),
		TallyAverageRates(jobs),
		top,
		series,
		TallySeriesSkills(jobs, LowerSkills(series)),
	)
}

// BuildMonthlyAnalytics assembles the chart payload. seriesCounts rows carry lower-cased skills;
// missing months and series default to 0.
func BuildMonthlyAnalytics(postings []MonthCount, rates []MonthValue, top []models.SkillCount,
	series []string, seriesCounts []MonthSkillCount) models.AnalyticsResult {

	months := sortedUnique(lo.Map(postings, func(p MonthCount, _ int) string { return p.Month }))

	postingsByMonth := make(map[string]int, len(postings))
	for _, p := range postings {
		postingsByMonth[p.Month] += p.Count
	}
	rateByMonth := make(map[string]float64, len(rates))
	for _, r := range rates {
		rateByMonth[r.Month] = r.Value
	}

	type cell struct{ month, skill string }
	seriesByCell := make(map[cell]int, len(seriesCounts))
	for _, c := range seriesCounts {
		seriesByCell[cell{c.Month, c.Skill}] += c.Count
	}

	result := models.AnalyticsResult{
		Months:       months,
		Postings:     make([]models.MonthlyPoint, 0, len(months)),
		AverageTjm:   make([]models.MonthlyPoint, 0, len(months)),
		TopSkills:    lo.Map(top, func(c models.SkillCount, _ int) string { return c.Skill }),
		SeriesSkills: append([]string{}, series...),
		SkillSeries:  make(map[string][]models.MonthlyPoint, len(series)),
	}

	for _, month := range months {
		result.Postings = append(result.Postings, models.MonthlyPoint{Month: month, Value: float64(postingsByMonth[month])})
		result.AverageTjm = append(result.AverageTjm, models.MonthlyPoint{Month: month, Value: rateByMonth[month]})
	}

	for _, skill := range series {
		key := strings.ToLower(skill)
		points := make([]models.MonthlyPoint, 0, len(months))
		for _, month := range months {
			points = append(points, models.MonthlyPoint{Month: month, Value: float64(seriesByCell[cell{month, key}])})
		}
		result.SkillSeries[skill] = points
	}

	return result
}

func sortedUnique(values []string) []string {
	unique := lo.Uniq(lo.Compact(values))
	sort.Strings(unique)
	return unique
}
