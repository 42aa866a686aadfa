package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/maxaizer/jobmarket/internal/metrics"
	log "github.com/sirupsen/logrus"
	"os"
)

// JobsFile is a JSON dataset: an array of postings.
type JobsFile struct {
	path     string
	validate *validator.Validate
}

func NewJobsFile(path string) *JobsFile {
	return &JobsFile{path: path, validate: validator.New()}
}

func (f *JobsFile) Path() string {
	return f.path
}

// Jobs reads the dataset. Entries that can't be decoded or fail validation are dropped with a
// warning instead of failing the whole file.
func (f *JobsFile) Jobs(ctx context.Context) ([]models.JobRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", f.path, err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", f.path, err)
	}

	records := make([]models.JobRecord, 0, len(entries))
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var record models.JobRecord
		if err := json.Unmarshal(entry, &record); err != nil {
			f.drop(i, err)
			continue
		}
		canonicalizeEnums(&record)
		if err := f.validate.Struct(record); err != nil {
			f.drop(i, err)
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// Version changes whenever the file is rewritten.
func (f *JobsFile) Version(_ context.Context) (string, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return "", fmt.Errorf("failed to stat dataset %s: %w", f.path, err)
	}
	return fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano()), nil
}

// canonicalizeEnums accepts enum values in any case. Unknown values are left for the validator.
func canonicalizeEnums(record *models.JobRecord) {
	if mode, err := models.ToRemoteMode(string(record.Remote)); err == nil {
		record.Remote = mode
	}
	if level, err := models.ToExperienceLevel(string(record.Experience)); err == nil {
		record.Experience = level
	}
}

func (f *JobsFile) drop(index int, err error) {
	metrics.DroppedRecordsCounter.Inc()
	log.WithField(logger.ErrorTypeField, logger.ErrorTypeDataset).
		Warnf("dropping dataset entry #%d of %s: %v", index, f.path, err)
}
