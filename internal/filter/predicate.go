package filter

import (
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/maxaizer/jobmarket/internal/geo"
	"github.com/samber/lo"
	"strings"
	"time"
)

// IndexedJob is a posting with the derived values the predicate reads, computed once per snapshot.
type IndexedJob struct {
	Record     models.JobRecord
	searchText string
	titleLower string
	cityNorm   string
	regionKey  string
	hasRegion  bool
	created    time.Time
	hasCreated bool
	hardSkills map[string]struct{}
}

type Predicate func(job *IndexedJob) bool

func IndexJob(record models.JobRecord) IndexedJob {
	job := IndexedJob{
		Record:     record,
		searchText: SearchText(record),
		titleLower: strings.ToLower(record.Title),
		cityNorm:   NormalizeCity(record.City),
		hardSkills: lowerSet(record.HardSkills),
	}
	if region, ok := geo.CityToRegion(record.City); ok {
		job.regionKey, job.hasRegion = geo.RegionKey(region), true
	}
	job.created, job.hasCreated = record.CreatedTime()
	return job
}

func IndexJobs(records []models.JobRecord) []IndexedJob {
	return lo.Map(records, func(record models.JobRecord, _ int) IndexedJob { return IndexJob(record) })
}

type predicateCompiler struct {
	checks []Predicate
}

// CompilePredicate builds the in-memory form of a filter: the conjunction of its clauses.
func CompilePredicate(f models.NormalizedFilter) Predicate {
	compiler := &predicateCompiler{}
	for _, clause := range Clauses(f) {
		clause.Accept(compiler)
	}

	checks := compiler.checks
	return func(job *IndexedJob) bool {
		for _, check := range checks {
			if !check(job) {
				return false
			}
		}
		return true
	}
}

// FilterJobs returns the records of the matching jobs in snapshot order.
func FilterJobs(jobs []IndexedJob, predicate Predicate) []models.JobRecord {
	matched := make([]models.JobRecord, 0)
	for i := range jobs {
		if predicate(&jobs[i]) {
			matched = append(matched, jobs[i].Record)
		}
	}
	return matched
}

func (c *predicateCompiler) add(check Predicate) {
	c.checks = append(c.checks, check)
}

func (c *predicateCompiler) VisitText(clause TextClause) {
	c.add(func(job *IndexedJob) bool {
		return strings.Contains(job.searchText, clause.Needle)
	})
}

func (c *predicateCompiler) VisitSkillInclude(clause SkillIncludeClause) {
	c.add(func(job *IndexedJob) bool {
		return lo.EveryBy(clause.Skills, func(skill string) bool {
			_, ok := job.hardSkills[skill]
			return ok
		})
	})
}

func (c *predicateCompiler) VisitSkillExclude(clause SkillExcludeClause) {
	c.add(func(job *IndexedJob) bool {
		return lo.NoneBy(clause.Skills, func(skill string) bool {
			_, ok := job.hardSkills[skill]
			return ok
		})
	})
}

func (c *predicateCompiler) VisitTitleExclude(clause TitleExcludeClause) {
	c.add(func(job *IndexedJob) bool {
		return lo.NoneBy(clause.Keywords, func(keyword string) bool {
			return strings.Contains(job.titleLower, keyword)
		})
	})
}

func (c *predicateCompiler) VisitCity(clause CityClause) {
	c.add(func(job *IndexedJob) bool {
		matched := lo.SomeBy(clause.Cities, func(candidate string) bool {
			if clause.Match == models.CityMatchExact {
				return job.cityNorm == candidate
			}
			return strings.Contains(job.cityNorm, candidate)
		})
		return matched != clause.Exclude
	})
}

func (c *predicateCompiler) VisitRegion(clause RegionClause) {
	c.add(func(job *IndexedJob) bool {
		matched := job.hasRegion && lo.Contains(clause.Regions, job.regionKey)
		return matched != clause.Exclude
	})
}

func (c *predicateCompiler) VisitRemote(clause RemoteClause) {
	c.add(memberOf(clause.Values, func(job models.JobRecord) string { return string(job.Remote) }))
}

func (c *predicateCompiler) VisitExperience(clause ExperienceClause) {
	c.add(memberOf(clause.Values, func(job models.JobRecord) string { return string(job.Experience) }))
}

func (c *predicateCompiler) VisitSlug(clause SlugClause) {
	c.add(memberOf(clause.Values, func(job models.JobRecord) string { return job.JobSlug }))
}

func (c *predicateCompiler) VisitRate(clause RateClause) {
	c.add(func(job *IndexedJob) bool {
		rate, ok := job.Record.ApproxRate()
		if !ok {
			return false
		}
		if clause.Min != nil && rate < *clause.Min {
			return false
		}
		return clause.Max == nil || rate <= *clause.Max
	})
}

func (c *predicateCompiler) VisitDate(clause DateClause) {
	c.add(func(job *IndexedJob) bool {
		if clause.Invalid {
			return false
		}
		if !job.hasCreated {
			return false
		}
		if clause.From != nil && job.created.Before(*clause.From) {
			return false
		}
		return clause.Until == nil || job.created.Before(*clause.Until)
	})
}

func memberOf(values []string, field func(job models.JobRecord) string) Predicate {
	return func(job *IndexedJob) bool {
		value := strings.ToLower(strings.TrimSpace(field(job.Record)))
		return value != "" && lo.Contains(values, value)
	}
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[strings.ToLower(value)] = struct{}{}
	}
	return set
}
