package filter

import (
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/maxaizer/jobmarket/internal/geo"
	"github.com/samber/lo"
	"strings"
	"time"
)

// Clause is one filter dimension. Both compilers consume the same clause list through Visitor,
// so a new dimension has to be handled by each of them before the package builds again.
type Clause interface {
	Accept(v Visitor)
}

type Visitor interface {
	VisitText(c TextClause)
	VisitSkillInclude(c SkillIncludeClause)
	VisitSkillExclude(c SkillExcludeClause)
	VisitTitleExclude(c TitleExcludeClause)
	VisitCity(c CityClause)
	VisitRegion(c RegionClause)
	VisitRemote(c RemoteClause)
	VisitExperience(c ExperienceClause)
	VisitSlug(c SlugClause)
	VisitRate(c RateClause)
	VisitDate(c DateClause)
}

// TextClause holds the lower-cased free-text needle.
type TextClause struct{ Needle string }

// SkillIncludeClause requires every listed hard skill (lower-cased).
type SkillIncludeClause struct{ Skills []string }

// SkillExcludeClause rejects any listed hard skill (lower-cased).
type SkillExcludeClause struct{ Skills []string }

type TitleExcludeClause struct{ Keywords []string }

// CityClause holds cities already passed through NormalizeCity.
type CityClause struct {
	Cities  []string
	Match   models.CityMatch
	Exclude bool
}

// RegionClause holds region keys (see geo.RegionKey).
type RegionClause struct {
	Regions []string
	Exclude bool
}

type RemoteClause struct{ Values []string }

type ExperienceClause struct{ Values []string }

type SlugClause struct{ Values []string }

type RateClause struct{ Min, Max *float64 }

// DateClause bounds are [From, Until). Invalid is set when a bound could not be parsed,
// in which case no record matches.
type DateClause struct {
	From    *time.Time
	Until   *time.Time
	Invalid bool
}

func (c TextClause) Accept(v Visitor)         { v.VisitText(c) }
func (c SkillIncludeClause) Accept(v Visitor) { v.VisitSkillInclude(c) }
func (c SkillExcludeClause) Accept(v Visitor) { v.VisitSkillExclude(c) }
func (c TitleExcludeClause) Accept(v Visitor) { v.VisitTitleExclude(c) }
func (c CityClause) Accept(v Visitor)         { v.VisitCity(c) }
func (c RegionClause) Accept(v Visitor)       { v.VisitRegion(c) }
func (c RemoteClause) Accept(v Visitor)       { v.VisitRemote(c) }
func (c ExperienceClause) Accept(v Visitor)   { v.VisitExperience(c) }
func (c SlugClause) Accept(v Visitor)         { v.VisitSlug(c) }
func (c RateClause) Accept(v Visitor)         { v.VisitRate(c) }
func (c DateClause) Accept(v Visitor)         { v.VisitDate(c) }

// Clauses derives the clause list of a normalized filter, cheapest checks first.
// Dimensions that do not constrain anything produce no clause.
func Clauses(f models.NormalizedFilter) []Clause {
	var clauses []Clause

	if values := lowerAll(f.JobSlugs); len(values) > 0 {
		clauses = append(clauses, SlugClause{Values: values})
	}
	if values := lowerAll(f.Remote); len(values) > 0 {
		clauses = append(clauses, RemoteClause{Values: values})
	}
	if values := lowerAll(f.Experience); len(values) > 0 {
		clauses = append(clauses, ExperienceClause{Values: values})
	}
	if f.MinTjm != nil || f.MaxTjm != nil {
		clauses = append(clauses, RateClause{Min: f.MinTjm, Max: f.MaxTjm})
	}
	if f.StartDate != "" || f.EndDate != "" {
		clauses = append(clauses, dateClause(f.StartDate, f.EndDate))
	}
	if cities := normalizeCities(f.Cities); len(cities) > 0 {
		clauses = append(clauses, CityClause{Cities: cities, Match: f.CityMatch, Exclude: f.ExcludeCities})
	}
	if regions := regionKeys(f.Regions); len(regions) > 0 {
		clauses = append(clauses, RegionClause{Regions: regions, Exclude: f.ExcludeRegions})
	}
	if keywords := lowerAll(f.ExcludeTitles); len(keywords) > 0 {
		clauses = append(clauses, TitleExcludeClause{Keywords: keywords})
	}
	if skills := lowerAll(f.ExcludeSkills); len(skills) > 0 {
		clauses = append(clauses, SkillExcludeClause{Skills: skills})
	}
	if skills := lowerAll(f.Skills); len(skills) > 0 {
		clauses = append(clauses, SkillIncludeClause{Skills: skills})
	}
	if f.Query != "" {
		clauses = append(clauses, TextClause{Needle: strings.ToLower(f.Query)})
	}

	return clauses
}

func lowerAll(values []string) []string {
	return lo.Uniq(lo.FilterMap(values, func(value string, _ int) (string, bool) {
		value = strings.ToLower(strings.TrimSpace(value))
		return value, value != ""
	}))
}

func normalizeCities(cities []string) []string {
	return lo.Uniq(lo.FilterMap(cities, func(city string, _ int) (string, bool) {
		city = NormalizeCity(city)
		return city, city != ""
	}))
}

func regionKeys(regions []string) []string {
	return lo.Uniq(lo.FilterMap(regions, func(region string, _ int) (string, bool) {
		region = geo.RegionKey(region)
		return region, region != ""
	}))
}

func dateClause(start, end string) DateClause {
	var clause DateClause
	if start != "" {
		day, ok := parseDay(start)
		if !ok {
			return DateClause{Invalid: true}
		}
		clause.From = &day
	}
	if end != "" {
		day, ok := parseDay(end)
		if !ok {
			return DateClause{Invalid: true}
		}
		until := day.AddDate(0, 0, 1)
		clause.Until = &until
	}
	return clause
}

// parseDay reads a calendar date (or timestamp) and returns midnight UTC of that day.
func parseDay(value string) (time.Time, bool) {
	t, ok := models.ParseTimestamp(value)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}
