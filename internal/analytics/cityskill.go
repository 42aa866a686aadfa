package analytics

import (
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/samber/lo"
	"sort"
	"strings"
)

// ComputeCitySkillTrend counts, per month and city, the postings requiring skill. A blank skill
// returns an empty result without scanning jobs.
func ComputeCitySkillTrend(jobs []models.JobRecord, skill string, cities []string, topCityCount int) models.CitySkillTrendResult {
	if strings.TrimSpace(skill) == "" {
		return EmptyCitySkillTrend(skill)
	}
	return BuildCitySkillTrend(skill, TallyCitySkill(jobs, skill), cities, topCityCount)
}

func EmptyCitySkillTrend(skill string) models.CitySkillTrendResult {
	return models.CitySkillTrendResult{
		Skill:      strings.TrimSpace(skill),
		Months:     []string{},
		TopCities:  []string{},
		CityTotals: []models.CityCount{},
		Series:     map[string][]models.MonthlyPoint{},
	}
}

// BuildCitySkillTrend reshapes month x raw city rows.
//
// With an explicit city list, each row folds into the first listed city contained in its city
// (case-insensitive); rows matching none are dropped, every listed city is plotted and ranked by
// total. Otherwise the topCityCount cities with the most postings are ranked and plotted.
func BuildCitySkillTrend(skill string, rows []MonthCityCount, cities []string, topCityCount int) models.CitySkillTrendResult {
	if strings.TrimSpace(skill) == "" {
		return EmptyCitySkillTrend(skill)
	}
	result := EmptyCitySkillTrend(skill)

	listed := lo.Uniq(lo.FilterMap(cities, func(city string, _ int) (string, bool) {
		city = strings.TrimSpace(city)
		return city, city != ""
	}))

	type cell struct{ month, city string }
	matrix := make(map[cell]int)
	totals := make(map[string]int)
	var months []string

	for _, row := range rows {
		if row.Count <= 0 || row.Month == "" {
			continue
		}
		city, ok := foldCity(row.City, listed)
		if !ok {
			continue
		}
		matrix[cell{row.Month, city}] += row.Count
		totals[city] += row.Count
		months = append(months, row.Month)
	}

	var ranking []models.CityCount
	if len(listed) > 0 {
		ranking = lo.Map(listed, func(city string, _ int) models.CityCount {
			return models.CityCount{City: city, Count: totals[city]}
		})
		sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].Count > ranking[j].Count })
	} else {
		ranking = make([]models.CityCount, 0, len(totals))
		for city, count := range totals {
			ranking = append(ranking, models.CityCount{City: city, Count: count})
		}
		sort.Slice(ranking, func(i, j int) bool {
			if ranking[i].Count != ranking[j].Count {
				return ranking[i].Count > ranking[j].Count
			}
			return ranking[i].City < ranking[j].City
		})
		if topCityCount < 0 {
			topCityCount = 0
		}
		if len(ranking) > topCityCount {
			ranking = ranking[:topCityCount]
		}
	}

	result.Months = sortedUnique(months)
	result.CityTotals = ranking
	result.TopCities = lo.Map(ranking, func(c models.CityCount, _ int) string { return c.City })
	for _, city := range result.TopCities {
		points := make([]models.MonthlyPoint, 0, len(result.Months))
		for _, month := range result.Months {
			points = append(points, models.MonthlyPoint{Month: month, Value: float64(matrix[cell{month, city}])})
		}
		result.Series[city] = points
	}

	return result
}

func foldCity(city string, listed []string) (string, bool) {
	city = strings.TrimSpace(city)
	if len(listed) == 0 {
		return city, city != ""
	}
	lowered := strings.ToLower(city)
	return lo.Find(listed, func(candidate string) bool {
		return strings.Contains(lowered, strings.ToLower(candidate))
	})
}
