package repositories

import (
	"context"
	"github.com/maxaizer/jobmarket/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const ImportedVersionKey = "imported_dataset_version"

type Settings struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *Settings {
	return &Settings{db: db}
}

func (repo *Settings) Save(ctx context.Context, id string, data []byte) error {
	return repo.db.WithContext(ctx).Save(&entities.Setting{
		ID:    id,
		Value: data,
	}).Error
}

// Load returns nil without error when the key is absent.
func (repo *Settings) Load(ctx context.Context, id string) ([]byte, error) {
	setting := &entities.Setting{}
	err := repo.db.WithContext(ctx).First(setting, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return setting.Value, nil
}

func (repo *Settings) Remove(ctx context.Context, id string) error {
	return repo.db.WithContext(ctx).Delete(&entities.Setting{}, "id = ?", id).Error
}
