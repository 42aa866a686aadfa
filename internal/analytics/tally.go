package analytics

import (
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/samber/lo"
	"sort"
	"strings"
)

func TallyPostings(jobs []models.JobRecord) []MonthCount {
	counts := make(map[string]int)
	for _, job := range jobs {
		if month, ok := job.Month(); ok {
			counts[month]++
		}
	}

	rows := make([]MonthCount, 0, len(counts))
	for _, month := range sortedKeys(counts) {
		rows = append(rows, MonthCount{Month: month, Count: counts[month]})
	}
	return rows
}

// TallyAverageRates averages the approximate day rate per month over records having one.
func TallyAverageRates(jobs []models.JobRecord) []MonthValue {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, job := range jobs {
		month, ok := job.Month()
		if !ok {
			continue
		}
		if rate, ok := job.ApproxRate(); ok {
			sums[month] += rate
			counts[month]++
		}
	}

	rows := make([]MonthValue, 0, len(counts))
	for _, month := range sortedKeys(counts) {
		rows = append(rows, MonthValue{Month: month, Value: sums[month] / float64(counts[month])})
	}
	return rows
}

// TallySkills counts hard-skill occurrences by raw skill name.
func TallySkills(jobs []models.JobRecord) []models.SkillCount {
	counts := make(map[string]int)
	for _, job := range jobs {
		for _, skill := range job.HardSkills {
			counts[skill]++
		}
	}

	rows := make([]models.SkillCount, 0, len(counts))
	for _, skill := range sortedKeys(counts) {
		rows = append(rows, models.SkillCount{Skill: skill, Count: counts[skill]})
	}
	return rows
}

// TallyMonthSkills counts hard-skill occurrences per month by raw skill name.
func TallyMonthSkills(jobs []models.JobRecord) []MonthSkillCount {
	return tallyMonthSkills(jobs, func(skill string) (string, bool) { return skill, true })
}

// TallySeriesSkills counts, per month, occurrences of the given lower-cased skills, matching
// case-insensitively. Row skills are lower-cased.
func TallySeriesSkills(jobs []models.JobRecord, lowerSkills []string) []MonthSkillCount {
	wanted := lo.SliceToMap(lowerSkills, func(skill string) (string, struct{}) { return skill, struct{}{} })
	return tallyMonthSkills(jobs, func(skill string) (string, bool) {
		skill = strings.ToLower(skill)
		_, ok := wanted[skill]
		return skill, ok
	})
}

func tallyMonthSkills(jobs []models.JobRecord, key func(skill string) (string, bool)) []MonthSkillCount {
	type cell struct{ month, skill string }
	counts := make(map[cell]int)
	for _, job := range jobs {
		month, ok := job.Month()
		if !ok {
			continue
		}
		for _, skill := range job.HardSkills {
			if k, ok := key(skill); ok {
				counts[cell{month, k}]++
			}
		}
	}

	rows := make([]MonthSkillCount, 0, len(counts))
	for c, count := range counts {
		rows = append(rows, MonthSkillCount{Month: c.month, Skill: c.skill, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return rows[i].Month < rows[j].Month
		}
		return rows[i].Skill < rows[j].Skill
	})
	return rows
}

// TallyCitySkill counts, per month and raw city, the records whose hard skills contain skill
// (case-insensitive exact match).
func TallyCitySkill(jobs []models.JobRecord, skill string) []MonthCityCount {
	skill = strings.ToLower(strings.TrimSpace(skill))
	type cell struct{ month, city string }
	counts := make(map[cell]int)
	for _, job := range jobs {
		month, ok := job.Month()
		if !ok {
			continue
		}
		if !lo.ContainsBy(job.HardSkills, func(s string) bool { return strings.ToLower(s) == skill }) {
			continue
		}
		counts[cell{month, job.City}]++
	}

	rows := make([]MonthCityCount, 0, len(counts))
	for c, count := range counts {
		rows = append(rows, MonthCityCount{Month: c.month, City: c.city, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return rows[i].Month < rows[j].Month
		}
		return rows[i].City < rows[j].City
	})
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
