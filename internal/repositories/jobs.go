package repositories

import (
	"context"
	"fmt"
	"github.com/maxaizer/jobmarket/internal/analytics"
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/maxaizer/jobmarket/internal/filter"
	"github.com/maxaizer/jobmarket/internal/metrics"
	"github.com/maxaizer/jobmarket/internal/paging"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"time"
)

const (
	saveBatchSize = 500
	newestFirst   = "created_ms IS NULL, created_ms DESC, id DESC"
)

type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

// ReplaceAll makes records the whole stored dataset, first occurrence of an id winning. Postings
// absent from records are removed in the same transaction.
func (repo *Jobs) ReplaceAll(ctx context.Context, records []models.JobRecord) error {
	records = paging.DedupeByID(records)

	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := wipe.Delete(&entities.JobSkill{}).Error; err != nil {
			return fmt.Errorf("failed to delete job skills: %w", err)
		}
		if err := wipe.Delete(&entities.Job{}).Error; err != nil {
			return fmt.Errorf("failed to delete jobs: %w", err)
		}

		for _, chunk := range lo.Chunk(records, saveBatchSize) {
			jobs := lo.Map(chunk, func(record models.JobRecord, _ int) entities.Job { return entities.NewJob(record) })
			if err := tx.Create(&jobs).Error; err != nil {
				return fmt.Errorf("failed to insert jobs: %w", err)
			}

			skills := lo.FlatMap(chunk, func(record models.JobRecord, _ int) []entities.JobSkill {
				return entities.NewJobSkills(record)
			})
			if len(skills) == 0 {
				continue
			}
			if err := tx.CreateInBatches(skills, saveBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert job skills: %w", err)
			}
		}
		return nil
	})
}

// All returns every stored posting ordered by id.
func (repo *Jobs) All(ctx context.Context) ([]models.JobRecord, error) {
	var jobs []entities.Job
	if err := repo.db.WithContext(ctx).Order("id").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return repo.hydrate(ctx, jobs, false)
}

// Search returns one page of the postings matching fragment, newest first, with the total count.
func (repo *Jobs) Search(ctx context.Context, fragment filter.QueryFragment, page, pageSize int) ([]models.JobRecord, int, error) {
	defer observe("search", time.Now())

	where, args := fragment.FoldText().Where()

	var total int64
	if err := repo.db.WithContext(ctx).Model(&entities.Job{}).Where(where, args...).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []entities.Job
	err := repo.db.WithContext(ctx).Where(where, args...).
		Order(newestFirst).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}

	records, err := repo.hydrate(ctx, jobs, true)
	return records, int(total), err
}

func (repo *Jobs) PostingsPerMonth(ctx context.Context, fragment filter.QueryFragment) ([]analytics.MonthCount, error) {
	defer observe("postings_per_month", time.Now())

	cte, args := fragment.FilteredCTE()
	rows := []analytics.MonthCount{}
	err := repo.db.WithContext(ctx).Raw(cte+` SELECT month, COUNT(*) AS count FROM filtered
		WHERE month <> '' GROUP BY month ORDER BY month`, args...).Scan(&rows).Error
	return rows, err
}

func (repo *Jobs) AverageRatePerMonth(ctx context.Context, fragment filter.QueryFragment) ([]analytics.MonthValue, error) {
	defer observe("average_rate_per_month", time.Now())

	cte, args := fragment.FilteredCTE()
	rows := []analytics.MonthValue{}
	err := repo.db.WithContext(ctx).Raw(cte+` SELECT month, AVG(rate) AS value
		FROM (SELECT month, `+filter.ApproxRateSQL+` AS rate FROM filtered WHERE month <> '') rated
		WHERE rate IS NOT NULL GROUP BY month ORDER BY month`, args...).Scan(&rows).Error
	return rows, err
}

// SkillCounts counts hard-skill occurrences by raw name.
func (repo *Jobs) SkillCounts(ctx context.Context, fragment filter.QueryFragment) ([]models.SkillCount, error) {
	defer observe("skill_counts", time.Now())

	cte, args := fragment.FilteredCTE()
	rows := []models.SkillCount{}
	err := repo.db.WithContext(ctx).Raw(cte+` SELECT s.skill AS skill, COUNT(*) AS count
		FROM job_skills s JOIN filtered f ON f.id = s.job_id
		WHERE s.kind = ? GROUP BY s.skill ORDER BY s.skill`, append(args, filter.SkillKindHard)...).Scan(&rows).Error
	return rows, err
}

// MonthSkillCounts counts hard-skill occurrences per month by raw name.
func (repo *Jobs) MonthSkillCounts(ctx context.Context, fragment filter.QueryFragment) ([]analytics.MonthSkillCount, error) {
	defer observe("month_skill_counts", time.Now())

	cte, args := fragment.FilteredCTE()
	rows := []analytics.MonthSkillCount{}
	err := repo.db.WithContext(ctx).Raw(cte+` SELECT f.month AS month, s.skill AS skill, COUNT(*) AS count
		FROM job_skills s JOIN filtered f ON f.id = s.job_id
		WHERE s.kind = ? AND f.month <> '' GROUP BY f.month, s.skill ORDER BY f.month, s.skill`,
		append(args, filter.SkillKindHard)...).Scan(&rows).Error
	return rows, err
}

// SeriesSkillCounts counts, per month, occurrences of the given lower-cased skills.
func (repo *Jobs) SeriesSkillCounts(ctx context.Context, fragment filter.QueryFragment, lowerSkills []string) ([]analytics.MonthSkillCount, error) {
	if len(lowerSkills) == 0 {
		return []analytics.MonthSkillCount{}, nil
	}
	defer observe("series_skill_counts", time.Now())

	cte, args := fragment.FilteredCTE()
	rows := []analytics.MonthSkillCount{}
	err := repo.db.WithContext(ctx).Raw(cte+` SELECT f.month AS month, s.skill_lower AS skill, COUNT(*) AS count
		FROM job_skills s JOIN filtered f ON f.id = s.job_id
		WHERE s.kind = ? AND s.skill_lower IN ? AND f.month <> ''
		GROUP BY f.month, s.skill_lower ORDER BY f.month, s.skill_lower`,
		append(args, filter.SkillKindHard, lowerSkills)...).Scan(&rows).Error
	return rows, err
}

// MonthCityCounts counts, per month and raw city, the postings requiring skill (case-insensitive).
func (repo *Jobs) MonthCityCounts(ctx context.Context, fragment filter.QueryFragment, lowerSkill string) ([]analytics.MonthCityCount, error) {
	defer observe("month_city_counts", time.Now())

	cte, args := fragment.FilteredCTE()
	rows := []analytics.MonthCityCount{}
	err := repo.db.WithContext(ctx).Raw(cte+` SELECT f.month AS month, f.city AS city, COUNT(*) AS count
		FROM filtered f
		WHERE f.month <> '' AND EXISTS (SELECT 1 FROM job_skills s WHERE s.job_id = f.id AND s.kind = ? AND s.skill_lower = ?)
		GROUP BY f.month, f.city ORDER BY f.month, f.city`,
		append(args, filter.SkillKindHard, lowerSkill)...).Scan(&rows).Error
	return rows, err
}

// Version fingerprints the stored dataset; it changes whenever postings are added or replaced
// by newer ones.
func (repo *Jobs) Version(ctx context.Context) (string, error) {
	var row struct {
		Total      int64
		MaxCreated *int64
		MaxID      *int64
	}
	err := repo.db.WithContext(ctx).Model(&entities.Job{}).
		Select("COUNT(*) AS total, MAX(created_ms) AS max_created, MAX(id) AS max_id").
		Scan(&row).Error
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d-%d-%d", row.Total, lo.FromPtr(row.MaxCreated), lo.FromPtr(row.MaxID)), nil
}

// hydrate attaches skills to jobs. Without byID every skill row is read, for full snapshots.
func (repo *Jobs) hydrate(ctx context.Context, jobs []entities.Job, byID bool) ([]models.JobRecord, error) {
	if len(jobs) == 0 {
		return []models.JobRecord{}, nil
	}

	query := repo.db.WithContext(ctx).Order("job_id, kind, position")
	if byID {
		query = query.Where("job_id IN ?", lo.Map(jobs, func(job entities.Job, _ int) int64 { return job.ID }))
	}

	var skills []entities.JobSkill
	if err := query.Find(&skills).Error; err != nil {
		return nil, fmt.Errorf("failed to load job skills: %w", err)
	}

	byJob := lo.GroupBy(skills, func(skill entities.JobSkill) int64 { return skill.JobID })
	return lo.Map(jobs, func(job entities.Job, _ int) models.JobRecord {
		return job.ToRecord(byJob[job.ID])
	}), nil
}

func observe(query string, start time.Time) {
	metrics.StoreQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}
