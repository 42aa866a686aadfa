package services

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/maxaizer/jobmarket/internal/metrics"
	"github.com/maxaizer/jobmarket/internal/repositories"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"time"
)

type jobsReplacer interface {
	ReplaceAll(ctx context.Context, records []models.JobRecord) error
}

type settingsStore interface {
	Load(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, data []byte) error
}

// Importer keeps the job store equal to the dataset file. A file version that was already imported
// is skipped; any other version replaces the stored postings.
type Importer struct {
	source   datasetSource
	jobs     jobsReplacer
	settings settingsStore
}

func NewImporter(source datasetSource, jobs jobsReplacer, settings settingsStore) *Importer {
	return &Importer{source: source, jobs: jobs, settings: settings}
}

// Import returns the number of saved records.
func (i *Importer) Import(ctx context.Context) (int, error) {
	version, err := i.source.Version(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "can't get dataset version")
	}

	imported, err := i.settings.Load(ctx, repositories.ImportedVersionKey)
	if err != nil {
		return 0, errors.Wrap(err, "can't load imported version")
	}
	if string(imported) == version {
		log.Infof("dataset version %s already imported", version)
		return 0, nil
	}

	start := time.Now()
	records, err := i.source.Jobs(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "can't read dataset")
	}

	if err = i.jobs.ReplaceAll(ctx, records); err != nil {
		return 0, errors.Wrap(err, "can't save jobs")
	}

	if err = i.settings.Save(ctx, repositories.ImportedVersionKey, []byte(version)); err != nil {
		return 0, errors.Wrap(err, "can't save imported version")
	}

	metrics.ImportDuration.Observe(time.Since(start).Seconds())
	metrics.ImportedRecordsCounter.Add(float64(len(records)))
	log.Infof("imported %d postings from dataset version %s in %v", len(records), version, time.Since(start))
	return len(records), nil
}

// Version is the dataset file version the store currently holds, empty before the first import.
func (i *Importer) Version(ctx context.Context) (string, error) {
	imported, err := i.settings.Load(ctx, repositories.ImportedVersionKey)
	if err != nil {
		return "", errors.Wrap(err, "can't load imported version")
	}
	return string(imported), nil
}
