package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmarket/internal/cache"
	"github.com/maxaizer/jobmarket/internal/domain/events"
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/maxaizer/jobmarket/internal/repositories"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"testing"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) SearchJobs(ctx context.Context, f models.NormalizedFilter, page, pageSize int) (models.JobsResult, error) {
	args := m.Called(ctx, f, page, pageSize)
	return args.Get(0).(models.JobsResult), args.Error(1)
}

func (m *mockEngine) TopSkills(ctx context.Context, f models.NormalizedFilter, k int) ([]models.SkillCount, error) {
	args := m.Called(ctx, f, k)
	return args.Get(0).([]models.SkillCount), args.Error(1)
}

func (m *mockEngine) MonthlyAnalytics(ctx context.Context, f models.NormalizedFilter, topSkillsCount int,
	seriesOverride []string) (models.AnalyticsResult, error) {
	args := m.Called(ctx, f, topSkillsCount, seriesOverride)
	return args.Get(0).(models.AnalyticsResult), args.Error(1)
}

func (m *mockEngine) EmergingSkills(ctx context.Context, f models.NormalizedFilter, monthsWindow, topK,
	minTotalCount int) (models.EmergingSkillTrendPayload, error) {
	args := m.Called(ctx, f, monthsWindow, topK, minTotalCount)
	return args.Get(0).(models.EmergingSkillTrendPayload), args.Error(1)
}

func (m *mockEngine) CitySkillTrend(ctx context.Context, f models.NormalizedFilter, skill string, cities []string,
	topCityCount int) (models.CitySkillTrendResult, error) {
	args := m.Called(ctx, f, skill, cities, topCityCount)
	return args.Get(0).(models.CitySkillTrendResult), args.Error(1)
}

type mockVersions struct {
	mock.Mock
}

func (m *mockVersions) Version(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type mockSettings struct {
	mock.Mock
}

func (m *mockSettings) Load(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockSettings) Save(ctx context.Context, id string, data []byte) error {
	return m.Called(ctx, id, data).Error(0)
}

type mockReplacer struct {
	mock.Mock
}

func (m *mockReplacer) ReplaceAll(ctx context.Context, records []models.JobRecord) error {
	return m.Called(ctx, records).Error(0)
}

type mockSyncer struct {
	mock.Mock
}

func (m *mockSyncer) Import(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func Test_AnalyticsService_EquivalentFilters_HitCache(t *testing.T) {
	engine := &mockEngine{}
	engine.On("TopSkills", mock.Anything, mock.Anything, 3).
		Return([]models.SkillCount{{Skill: "Go", Count: 2}}, nil).Once()
	versions := &mockVersions{}
	versions.On("Version", mock.Anything).Return("v1", nil)

	service, err := NewAnalyticsService(EventBus.New(), engine, cache.New(), versions)
	require.NoError(t, err)

	first, err := service.TopSkills(context.Background(), models.RawFilter{Skills: []string{"go", " sql"}}, 3)
	require.NoError(t, err)
	second, err := service.TopSkills(context.Background(), models.RawFilter{Skills: []string{"sql", "go", "go"}}, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	engine.AssertExpectations(t)
}

func Test_AnalyticsService_SeriesOrder_IsPartOfTheKey(t *testing.T) {
	engine := &mockEngine{}
	engine.On("MonthlyAnalytics", mock.Anything, mock.Anything, 5, mock.Anything).
		Return(models.AnalyticsResult{}, nil).Twice()
	versions := &mockVersions{}
	versions.On("Version", mock.Anything).Return("v1", nil)

	service, err := NewAnalyticsService(EventBus.New(), engine, cache.New(), versions)
	require.NoError(t, err)

	_, err = service.MonthlyAnalytics(context.Background(), models.RawFilter{}, 5, []string{"Go", "SQL"})
	require.NoError(t, err)
	_, err = service.MonthlyAnalytics(context.Background(), models.RawFilter{}, 5, []string{"SQL", "Go"})
	require.NoError(t, err)

	engine.AssertExpectations(t)
}

func Test_AnalyticsService_ClearEvents_ForceRecompute(t *testing.T) {
	engine := &mockEngine{}
	engine.On("EmergingSkills", mock.Anything, mock.Anything, 6, 10, 3).
		Return(models.EmergingSkillTrendPayload{Months: []string{}, Trends: []models.EmergingSkillTrend{}}, nil).Times(3)
	versions := &mockVersions{}
	versions.On("Version", mock.Anything).Return("v1", nil)
	bus := EventBus.New()

	service, err := NewAnalyticsService(bus, engine, cache.New(), versions)
	require.NoError(t, err)
	emerging := func() {
		_, err := service.EmergingSkills(context.Background(), models.RawFilter{}, 6, 10, 3)
		require.NoError(t, err)
	}

	emerging()
	emerging()
	bus.Publish(events.CacheClearRequestedTopic, events.CacheClearRequested{Reason: "manual"})
	emerging()
	bus.Publish(events.DatasetVersionChangedTopic, events.DatasetVersionChanged{Previous: "v0", Current: "v1"})
	emerging()

	engine.AssertExpectations(t)
}

func Test_AnalyticsService_ClearCache_ForcesRecompute(t *testing.T) {
	engine := &mockEngine{}
	engine.On("TopSkills", mock.Anything, mock.Anything, 2).Return([]models.SkillCount{}, nil).Twice()
	versions := &mockVersions{}
	versions.On("Version", mock.Anything).Return("v1", nil)

	service, err := NewAnalyticsService(EventBus.New(), engine, cache.New(), versions)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = service.TopSkills(context.Background(), models.RawFilter{}, 2)
		require.NoError(t, err)
	}
	service.ClearCache(context.Background())
	_, err = service.TopSkills(context.Background(), models.RawFilter{}, 2)
	require.NoError(t, err)

	engine.AssertExpectations(t)
}

func Test_AnalyticsService_VersionError_IsReturned(t *testing.T) {
	engine := &mockEngine{}
	versions := &mockVersions{}
	versions.On("Version", mock.Anything).Return("", errors.New("db down"))

	service, err := NewAnalyticsService(EventBus.New(), engine, cache.New(), versions)
	require.NoError(t, err)

	_, err = service.CitySkillTrend(context.Background(), models.RawFilter{}, "go", nil, 5)

	assert.Error(t, err)
	engine.AssertNotCalled(t, "CitySkillTrend", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func Test_VersionWatcher_PublishesOnlyOnChange(t *testing.T) {
	versions := &mockVersions{}
	versions.On("Version", mock.Anything).Return("v1", nil).Twice()
	versions.On("Version", mock.Anything).Return("v2", nil).Once()
	bus := EventBus.New()
	var published []events.DatasetVersionChanged
	require.NoError(t, bus.Subscribe(events.DatasetVersionChangedTopic, func(event events.DatasetVersionChanged) {
		published = append(published, event)
	}))

	watcher, err := NewVersionWatcher(bus, versions, "@every 1h")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := watcher.Check(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, []events.DatasetVersionChanged{
		{Previous: "", Current: "v1"},
		{Previous: "v1", Current: "v2"},
	}, published)
	versions.AssertExpectations(t)
}

func Test_VersionWatcher_WithSync_ImportsBeforeReadingVersion(t *testing.T) {
	var calls []string
	syncer := &mockSyncer{}
	syncer.On("Import", mock.Anything).Return(3, nil).Run(func(mock.Arguments) { calls = append(calls, "import") })
	versions := &mockVersions{}
	versions.On("Version", mock.Anything).Return("v1", nil).Run(func(mock.Arguments) { calls = append(calls, "version") })

	watcher, err := NewVersionWatcher(EventBus.New(), versions, "@every 1h", WithSync(syncer))
	require.NoError(t, err)

	changed, err := watcher.Check(context.Background())

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"import", "version"}, calls)
}

func Test_VersionWatcher_SyncFailure_PublishesNothing(t *testing.T) {
	syncer := &mockSyncer{}
	syncer.On("Import", mock.Anything).Return(0, errors.New("file truncated"))
	versions := &mockVersions{}
	bus := EventBus.New()
	published := 0
	require.NoError(t, bus.Subscribe(events.DatasetVersionChangedTopic, func(events.DatasetVersionChanged) { published++ }))

	watcher, err := NewVersionWatcher(bus, versions, "@every 1h", WithSync(syncer))
	require.NoError(t, err)

	changed, err := watcher.Check(context.Background())

	assert.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, published)
	versions.AssertNotCalled(t, "Version", mock.Anything)
}

func Test_VersionWatcher_InvalidSchedule_ReturnsError(t *testing.T) {
	_, err := NewVersionWatcher(EventBus.New(), &mockVersions{}, "every now and then")

	assert.Error(t, err)
}

func Test_Importer_SkipsAlreadyImportedVersion(t *testing.T) {
	settings := &mockSettings{}
	settings.On("Load", mock.Anything, repositories.ImportedVersionKey).Return([]byte("v1"), nil)
	saver := &mockReplacer{}

	importer := NewImporter(staticDataset{jobs: datasetFixture(), version: "v1"}, saver, settings)
	count, err := importer.Import(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	saver.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything)
}

func Test_Importer_SavesNewVersion(t *testing.T) {
	settings := &mockSettings{}
	settings.On("Load", mock.Anything, repositories.ImportedVersionKey).Return(nil, nil)
	settings.On("Save", mock.Anything, repositories.ImportedVersionKey, []byte("v2")).Return(nil).Once()
	saver := &mockReplacer{}
	saver.On("ReplaceAll", mock.Anything, datasetFixture()).Return(nil).Once()

	importer := NewImporter(staticDataset{jobs: datasetFixture(), version: "v2"}, saver, settings)
	count, err := importer.Import(context.Background())

	require.NoError(t, err)
	assert.Equal(t, len(datasetFixture()), count)
	saver.AssertExpectations(t)
	settings.AssertExpectations(t)
}

func Test_Importer_SaveFailure_KeepsVersionUnrecorded(t *testing.T) {
	settings := &mockSettings{}
	settings.On("Load", mock.Anything, repositories.ImportedVersionKey).Return(nil, nil)
	saver := &mockReplacer{}
	saver.On("ReplaceAll", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	importer := NewImporter(staticDataset{jobs: datasetFixture(), version: "v2"}, saver, settings)
	_, err := importer.Import(context.Background())

	assert.Error(t, err)
	settings.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func Test_Importer_Version_IsTheImportedFileVersion(t *testing.T) {
	settings := &mockSettings{}
	settings.On("Load", mock.Anything, repositories.ImportedVersionKey).Return([]byte("v7"), nil).Once()
	settings.On("Load", mock.Anything, repositories.ImportedVersionKey).Return(nil, nil).Once()
	importer := NewImporter(staticDataset{version: "v8"}, &mockReplacer{}, settings)

	imported, err := importer.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v7", imported)

	imported, err = importer.Version(context.Background())
	require.NoError(t, err)
	assert.Empty(t, imported)
}

func Test_CacheWarmer_ComputesDashboardOnVersionChange(t *testing.T) {
	engine := &mockEngine{}
	engine.On("MonthlyAnalytics", mock.Anything, mock.Anything, 4, []string(nil)).Return(models.AnalyticsResult{}, nil).Once()
	engine.On("TopSkills", mock.Anything, mock.Anything, 4).Return([]models.SkillCount{}, nil).Once()
	engine.On("EmergingSkills", mock.Anything, mock.Anything, defaultEmergingWindow, defaultEmergingTopK, defaultEmergingMinTotal).
		Return(models.EmergingSkillTrendPayload{}, nil).Once()
	versions := &mockVersions{}
	versions.On("Version", mock.Anything).Return("v1", nil)
	bus := EventBus.New()

	service, err := NewAnalyticsService(bus, engine, cache.New(), versions)
	require.NoError(t, err)
	_, err = NewCacheWarmer(bus, service, 4)
	require.NoError(t, err)

	bus.Publish(events.DatasetVersionChangedTopic, events.DatasetVersionChanged{Current: "v1"})
	bus.WaitAsync()

	_, err = service.TopSkills(context.Background(), models.RawFilter{}, 4)
	require.NoError(t, err)
	engine.AssertExpectations(t)
}
