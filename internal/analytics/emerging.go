package analytics

import (
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/samber/lo"
	"sort"
)

func ComputeEmergingSkillsTrends(jobs []models.JobRecord, monthsWindow, topK, minTotalCount int) models.EmergingSkillTrendPayload {
	months := lo.Map(TallyPostings(jobs), func(p MonthCount, _ int) string { return p.Month })
	return BuildEmergingSkills(months, TallyMonthSkills(jobs), monthsWindow, topK, minTotalCount)
}

// BuildEmergingSkills ranks skills inside each month of the trailing window and regresses the rank
// against the month index. A negative slope means the skill climbs the ranking.
//
// Within a month, skills are ranked by descending count, alphabetically on ties. A skill missing
// from a month gets that month's worst rank: number of ranked skills + 1.
func BuildEmergingSkills(months []string, rows []MonthSkillCount, monthsWindow, topK, minTotalCount int) models.EmergingSkillTrendPayload {
	axis := sortedUnique(months)
	if monthsWindow > 0 && len(axis) > monthsWindow {
		axis = axis[len(axis)-monthsWindow:]
	}

	monthIndex := make(map[string]int, len(axis))
	for i, month := range axis {
		monthIndex[month] = i
	}

	perMonth := make([]map[string]int, len(axis))
	for i := range perMonth {
		perMonth[i] = make(map[string]int)
	}
	totals := make(map[string]int)
	for _, row := range rows {
		i, ok := monthIndex[row.Month]
		if !ok || row.Count <= 0 {
			continue
		}
		perMonth[i][row.Skill] += row.Count
		totals[row.Skill] += row.Count
	}

	ranks := make([]map[string]int, len(axis))
	worst := make([]int, len(axis))
	for i, counts := range perMonth {
		ranks[i] = rankByCount(counts)
		worst[i] = len(counts) + 1
	}

	trends := make([]models.EmergingSkillTrend, 0, len(totals))
	for skill, total := range totals {
		if total < minTotalCount {
			continue
		}

		monthly := make([]models.RankPoint, 0, len(axis))
		ys := make([]float64, 0, len(axis))
		for i, month := range axis {
			rank, ok := ranks[i][skill]
			if !ok {
				rank = worst[i]
			}
			monthly = append(monthly, models.RankPoint{Month: month, Rank: rank})
			ys = append(ys, float64(rank))
		}

		trends = append(trends, models.EmergingSkillTrend{Skill: skill, Monthly: monthly, Slope: Slope(ys)})
	}

	sort.Slice(trends, func(i, j int) bool {
		a, b := trends[i], trends[j]
		if a.Slope != b.Slope {
			return a.Slope < b.Slope
		}
		if lastA, lastB := lastRank(a), lastRank(b); lastA != lastB {
			return lastA < lastB
		}
		return a.Skill < b.Skill
	})

	if topK < 0 {
		topK = 0
	}
	if len(trends) > topK {
		trends = trends[:topK]
	}

	return models.EmergingSkillTrendPayload{Months: axis, Trends: trends}
}

// Slope is the least-squares slope of ys against x = 0..n-1; 0 when undefined.
func Slope(ys []float64) float64 {
	n := len(ys)
	if n < 2 {
		return 0
	}

	meanX := float64(n-1) / 2
	meanY := 0.0
	for _, y := range ys {
		meanY += y
	}
	meanY /= float64(n)

	var num, den float64
	for i, y := range ys {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func rankByCount(counts map[string]int) map[string]int {
	skills := lo.Keys(counts)
	sort.Slice(skills, func(i, j int) bool {
		if counts[skills[i]] != counts[skills[j]] {
			return counts[skills[i]] > counts[skills[j]]
		}
		return skills[i] < skills[j]
	})

	ranks := make(map[string]int, len(skills))
	for i, skill := range skills {
		ranks[skill] = i + 1
	}
	return ranks
}

func lastRank(trend models.EmergingSkillTrend) int {
	if len(trend.Monthly) == 0 {
		return 0
	}
	return trend.Monthly[len(trend.Monthly)-1].Rank
}
