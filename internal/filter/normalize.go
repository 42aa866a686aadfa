package filter

import (
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/samber/lo"
	"math"
	"strconv"
	"strings"
)

// Normalize canonicalizes a raw filter. It never fails: malformed optional values are dropped.
func Normalize(raw models.RawFilter) models.NormalizedFilter {
	return models.NormalizedFilter{
		Query:          strings.TrimSpace(raw.Query),
		Skills:         normalizeList(raw.Skills),
		ExcludeSkills:  normalizeList(raw.ExcludeSkills),
		ExcludeTitles:  normalizeList(raw.ExcludeTitles),
		Cities:         normalizeList(raw.Cities),
		CityMatch:      normalizeCityMatch(raw.CityMatch),
		ExcludeCities:  raw.ExcludeCities,
		Regions:        normalizeList(raw.Regions),
		ExcludeRegions: raw.ExcludeRegions,
		Remote:         normalizeList(raw.Remote),
		Experience:     normalizeList(raw.Experience),
		JobSlugs:       normalizeList(raw.JobSlugs),
		MinTjm:         parseRate(raw.MinTjm),
		MaxTjm:         parseRate(raw.MaxTjm),
		StartDate:      strings.TrimSpace(raw.StartDate),
		EndDate:        strings.TrimSpace(raw.EndDate),
	}
}

func normalizeList(values []string) []string {
	trimmed := lo.FilterMap(values, func(value string, _ int) (string, bool) {
		value = strings.TrimSpace(value)
		return value, value != ""
	})
	return lo.Uniq(trimmed)
}

func normalizeCityMatch(value string) models.CityMatch {
	if strings.EqualFold(strings.TrimSpace(value), string(models.CityMatchExact)) {
		return models.CityMatchExact
	}
	return models.CityMatchContains
}

func parseRate(value string) *float64 {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	if value == "" {
		return nil
	}
	rate, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil
	}
	return &rate
}
