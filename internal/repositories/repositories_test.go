package repositories

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/analytics"
	"github.com/maxaizer/jobmarket/internal/config"
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/maxaizer/jobmarket/internal/filter"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func rate(v float64) *float64 {
	return &v
}

func newTestDb(t *testing.T) *DbContext {
	t.Helper()
	dbCtx, err := NewDbContext(config.DBConfig{
		Driver:           config.DriverSqlite,
		ConnectionString: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())
	t.Cleanup(func() { _ = dbCtx.Close() })
	return dbCtx
}

func fixture() []models.JobRecord {
	return []models.JobRecord{
		{ID: 1, CreatedAt: "2024-01-10T09:00:00Z", Title: "Dev Go", City: "Paris (75)",
			HardSkills: []string{"Go", "Docker"}, SoftSkills: []string{"Rigueur"}, MinRate: rate(400), MaxRate: rate(600)},
		{ID: 2, CreatedAt: "2024-02-03", Title: "Data", City: "Lyon (69)", HardSkills: []string{"Python", "go"},
			MaxRate: rate(500)},
		{ID: 3, CreatedAt: "2024-02-20T18:30:00Z", Title: "Lead React", City: "Paris",
			HardSkills: []string{"React"}, Description: "<p>100% remote</p>"},
		{ID: 4, CreatedAt: "unknown", Title: "DevOps", City: "Rennes (35)", HardSkills: []string{"Docker"}},
	}
}

func seeded(t *testing.T) *Jobs {
	t.Helper()
	jobs := NewJobsRepository(newTestDb(t).DB)
	require.NoError(t, jobs.ReplaceAll(context.Background(), fixture()))
	return jobs
}

func fragment(raw models.RawFilter) filter.QueryFragment {
	return filter.CompileQuery(filter.Normalize(raw))
}

func Test_Jobs_ReplaceAll_RoundTripsRecords(t *testing.T) {
	jobs := seeded(t)

	all, err := jobs.All(context.Background())

	require.NoError(t, err)
	assert.Equal(t, fixture(), all)
}

func Test_Jobs_ReplaceAll_ShrunkDataset_DropsRemovedPostings(t *testing.T) {
	jobs := seeded(t)
	updated := fixture()[0]
	updated.HardSkills = []string{"Rust"}

	require.NoError(t, jobs.ReplaceAll(context.Background(), []models.JobRecord{updated, fixture()[2]}))
	all, err := jobs.All(context.Background())

	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []string{"Rust"}, all[0].HardSkills)
	assert.Equal(t, int64(3), all[1].ID)

	counts, err := jobs.SkillCounts(context.Background(), fragment(models.RawFilter{}))
	require.NoError(t, err)
	assert.Equal(t, []models.SkillCount{{Skill: "React", Count: 1}, {Skill: "Rust", Count: 1}}, counts)
}

func Test_Jobs_Search_OrdersNewestFirstAndPages(t *testing.T) {
	jobs := seeded(t)

	items, total, err := jobs.Search(context.Background(), fragment(models.RawFilter{}), 1, 3)

	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, []int64{3, 2, 1}, []int64{items[0].ID, items[1].ID, items[2].ID})

	items, _, err = jobs.Search(context.Background(), fragment(models.RawFilter{}), 2, 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(4), items[0].ID)
}

func searchIDs(t *testing.T, jobs *Jobs, raw models.RawFilter) []int64 {
	t.Helper()
	items, _, err := jobs.Search(context.Background(), fragment(raw), 1, 50)
	require.NoError(t, err)
	return lo.Map(items, func(job models.JobRecord, _ int) int64 { return job.ID })
}

func Test_Jobs_Search_AppliesSkillAndCityFilters(t *testing.T) {
	jobs := seeded(t)

	assert.Equal(t, []int64{2, 1}, searchIDs(t, jobs, models.RawFilter{Skills: []string{"GO"}}))
	assert.Equal(t, []int64{3, 1}, searchIDs(t, jobs, models.RawFilter{Cities: []string{"paris"}, CityMatch: "exact"}))
}

func Test_Jobs_Search_FreeTextEscapesWildcards(t *testing.T) {
	jobs := seeded(t)

	assert.Equal(t, []int64{3}, searchIDs(t, jobs, models.RawFilter{Query: "100%"}))
}

func Test_Jobs_GroupedQueries(t *testing.T) {
	jobs := seeded(t)
	ctx := context.Background()
	all := fragment(models.RawFilter{})

	postings, err := jobs.PostingsPerMonth(ctx, all)
	require.NoError(t, err)
	assert.Equal(t, []analytics.MonthCount{{Month: "2024-01", Count: 1}, {Month: "2024-02", Count: 2}}, postings)

	rates, err := jobs.AverageRatePerMonth(ctx, all)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.InDelta(t, 500.0, rates[0].Value, 1e-9)
	assert.InDelta(t, 500.0, rates[1].Value, 1e-9)

	skills, err := jobs.SkillCounts(ctx, all)
	require.NoError(t, err)
	assert.Equal(t, []models.SkillCount{
		{Skill: "Docker", Count: 2}, {Skill: "Go", Count: 1}, {Skill: "Python", Count: 1},
		{Skill: "React", Count: 1}, {Skill: "go", Count: 1},
	}, skills)

	series, err := jobs.SeriesSkillCounts(ctx, all, []string{"go"})
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "go", series[0].Skill)

	cities, err := jobs.MonthCityCounts(ctx, all, "go")
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "Paris (75)", cities[0].City)
	assert.Equal(t, "Lyon (69)", cities[1].City)
}

func Test_Jobs_Version_ChangesWithContent(t *testing.T) {
	jobs := NewJobsRepository(newTestDb(t).DB)
	ctx := context.Background()

	empty, err := jobs.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0-0-0", empty)

	require.NoError(t, jobs.ReplaceAll(ctx, fixture()))
	filled, err := jobs.Version(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, empty, filled)
}

func Test_IsMissingTable_DetectsUnmigratedSchema(t *testing.T) {
	dbCtx, err := NewDbContext(config.DBConfig{
		Driver:           config.DriverSqlite,
		ConnectionString: filepath.Join(t.TempDir(), "empty.db"),
	})
	require.NoError(t, err)
	defer dbCtx.Close()

	_, err = NewJobsRepository(dbCtx.DB).PostingsPerMonth(context.Background(), fragment(models.RawFilter{}))

	require.Error(t, err)
	assert.True(t, IsMissingTable(err))
	assert.False(t, IsMissingTable(nil))
}

func Test_Settings_SaveLoadRemove(t *testing.T) {
	settings := NewSettingsRepository(newTestDb(t).DB)
	ctx := context.Background()

	value, err := settings.Load(ctx, ImportedVersionKey)
	require.NoError(t, err)
	assert.Nil(t, value)

	require.NoError(t, settings.Save(ctx, ImportedVersionKey, []byte("v1")))
	require.NoError(t, settings.Save(ctx, ImportedVersionKey, []byte("v2")))
	value, err = settings.Load(ctx, ImportedVersionKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)

	require.NoError(t, settings.Remove(ctx, ImportedVersionKey))
	value, err = settings.Load(ctx, ImportedVersionKey)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func Test_JobsFile_DropsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	content := `[
		{"id": 1, "createdAt": "2024-01-01", "title": "Go", "remote": "full"},
		{"id": 0, "createdAt": "2024-01-01"},
		{"id": "oops"},
		{"id": 2, "createdAt": "2024-01-02", "remote": "sometimes"},
		{"id": 3, "createdAt": "2024-01-03", "minTjm": 300},
		{"id": 4, "createdAt": "2024-01-04", "remote": " PARTIAL", "experience": "Senior"},
		{"id": 5, "createdAt": "2024-01-05", "experience": "guru"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	file := NewJobsFile(path)

	records, err := file.Jobs(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, int64(3), records[1].ID)
	assert.Equal(t, int64(4), records[2].ID)
	assert.Equal(t, models.RemotePartial, records[2].Remote)
	assert.Equal(t, models.ExperienceSenior, records[2].Experience)
	assert.Equal(t, path, file.Path())

	version, err := file.Version(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, version)
}
