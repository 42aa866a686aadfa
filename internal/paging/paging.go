package paging

import (
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/samber/lo"
	"sort"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// DedupeByID keeps the first occurrence of every id, preserving order.
func DedupeByID(jobs []models.JobRecord) []models.JobRecord {
	return lo.UniqBy(jobs, func(job models.JobRecord) int64 {
		return job.ID
	})
}

// SortByCreatedDesc orders jobs newest first; records without a parseable timestamp go last.
// Ties are broken by descending id.
func SortByCreatedDesc(jobs []models.JobRecord) {
	type sortKey struct {
		ok bool
		ms int64
	}
	keys := make(map[int64]sortKey, len(jobs))
	for _, job := range jobs {
		created, ok := job.CreatedTime()
		keys[job.ID] = sortKey{ok: ok, ms: created.UnixMilli()}
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		a, b := keys[jobs[i].ID], keys[jobs[j].ID]
		if a.ok != b.ok {
			return a.ok
		}
		if a.ok && a.ms != b.ms {
			return a.ms > b.ms
		}
		return jobs[i].ID > jobs[j].ID
	})
}

// Bounds clamps page and page size to the supported range.
func Bounds(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func PageCount(total, pageSize int) int {
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Paginate slices an already filtered, deduplicated and sorted collection.
func Paginate(jobs []models.JobRecord, page, pageSize int) models.JobsResult {
	page, pageSize = Bounds(page, pageSize)
	total := len(jobs)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return models.JobsResult{
		Items:     append([]models.JobRecord{}, jobs[start:end]...),
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
		PageCount: PageCount(total, pageSize),
	}
}
