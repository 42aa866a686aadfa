package paging

import (
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"testing"
)

func ids(jobs []models.JobRecord) []int64 {
	return lo.Map(jobs, func(job models.JobRecord, _ int) int64 { return job.ID })
}

func Test_DedupeByID_FirstOccurrenceWins(t *testing.T) {
	jobs := []models.JobRecord{{ID: 3, Title: "first"}, {ID: 1}, {ID: 3, Title: "second"}, {ID: 2}, {ID: 1}}

	deduped := DedupeByID(jobs)

	assert.Equal(t, []int64{3, 1, 2}, ids(deduped))
	assert.Equal(t, "first", deduped[0].Title)
}

func Test_SortByCreatedDesc_UnparseableLastAndIdTiebreak(t *testing.T) {
	jobs := []models.JobRecord{
		{ID: 1, CreatedAt: "2024-01-01"},
		{ID: 2, CreatedAt: "garbage"},
		{ID: 3, CreatedAt: "2024-03-01T10:00:00Z"},
		{ID: 4, CreatedAt: "2024-01-01T00:00:00Z"},
		{ID: 5},
	}

	SortByCreatedDesc(jobs)

	assert.Equal(t, []int64{3, 4, 1, 5, 2}, ids(jobs))
}

func Test_Paginate_PageCountAndBounds(t *testing.T) {
	jobs := make([]models.JobRecord, 45)
	for i := range jobs {
		jobs[i].ID = int64(i + 1)
	}

	result := Paginate(jobs, 3, 20)
	assert.Equal(t, 45, result.Total)
	assert.Equal(t, 3, result.PageCount)
	assert.Len(t, result.Items, 5)
	assert.Equal(t, int64(41), result.Items[0].ID)

	result = Paginate(jobs, 9, 20)
	assert.Empty(t, result.Items)
	assert.Equal(t, 9, result.Page)

	result = Paginate(nil, 0, 0)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, DefaultPageSize, result.PageSize)
	assert.Equal(t, 1, result.PageCount)
	assert.NotNil(t, result.Items)
}

func Test_Paginate_ConcatenatedPagesRebuildCollection(t *testing.T) {
	jobs := make([]models.JobRecord, 23)
	for i := range jobs {
		jobs[i].ID = int64(100 - i)
	}

	var rebuilt []models.JobRecord
	first := Paginate(jobs, 1, 4)
	for page := 1; page <= first.PageCount; page++ {
		rebuilt = append(rebuilt, Paginate(jobs, page, 4).Items...)
	}

	assert.Equal(t, 6, first.PageCount)
	assert.Equal(t, ids(jobs), ids(rebuilt))
}
