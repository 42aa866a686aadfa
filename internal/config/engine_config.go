package config

import (
	"github.com/go-playground/validator/v10"
)

type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

type Backend string

const (
	BackendMemory Backend = "memory"
	BackendStore  Backend = "store"
)

// EngineConfig drives which backend answers queries and how the dataset is refreshed.
// In development a missing schema yields empty results instead of failing.
type EngineConfig struct {
	Env                  Environment `mapstructure:"env" validate:"oneof=development production"`
	Backend              Backend     `mapstructure:"backend" validate:"oneof=memory store"`
	DatasetFile          string      `mapstructure:"dataset_file"`
	ImportOnStart        bool        `mapstructure:"import_on_start"`
	VersionCheckSchedule string      `mapstructure:"version_check_schedule" validate:"required"`
	WarmTopSkills        int         `mapstructure:"warm_top_skills" validate:"gte=0"`
}

func (config EngineConfig) IsProduction() bool {
	return config.Env == Production
}

func (config EngineConfig) validate() error {
	if err := validator.New().Struct(config); err != nil {
		return err
	}
	if config.Backend == BackendMemory || config.ImportOnStart {
		return validator.New().Var(config.DatasetFile, "required")
	}
	return nil
}

func (config EngineConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"engine.env":                    "ENV",
		"engine.backend":                "ENGINE_BACKEND",
		"engine.dataset_file":           "DATASET_FILE",
		"engine.import_on_start":        "IMPORT_ON_START",
		"engine.version_check_schedule": "VERSION_CHECK_SCHEDULE",
		"engine.warm_top_skills":        "WARM_TOP_SKILLS",
	})
}
