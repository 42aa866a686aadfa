package analytics

import (
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/samber/lo"
	"sort"
	"strings"
)

func ComputeTopSkills(jobs []models.JobRecord, k int) []models.SkillCount {
	return BuildTopSkills(TallySkills(jobs), k)
}

// BuildTopSkills sorts skill counts by descending count, alphabetically on ties, and keeps k.
func BuildTopSkills(counts []models.SkillCount, k int) []models.SkillCount {
	if k <= 0 {
		return []models.SkillCount{}
	}

	merged := make(map[string]int, len(counts))
	for _, c := range counts {
		merged[c.Skill] += c.Count
	}

	top := make([]models.SkillCount, 0, len(merged))
	for skill, count := range merged {
		top = append(top, models.SkillCount{Skill: skill, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Skill < top[j].Skill
	})

	if len(top) > k {
		top = top[:k]
	}
	return top
}

// SeriesSkills returns the caller override when it names at least one skill, else the top skill names.
func SeriesSkills(top []models.SkillCount, override []string) []string {
	series := lo.Uniq(lo.FilterMap(override, func(skill string, _ int) (string, bool) {
		skill = strings.TrimSpace(skill)
		return skill, skill != ""
	}))
	if len(series) > 0 {
		return series
	}
	return lo.Map(top, func(c models.SkillCount, _ int) string { return c.Skill })
}

func LowerSkills(skills []string) []string {
	return lo.Uniq(lo.Map(skills, func(skill string, _ int) string { return strings.ToLower(skill) }))
}
