package models

import (
	"errors"
	"strings"
	"time"
)

type RemoteMode string

const (
	RemoteFull    RemoteMode = "full"
	RemotePartial RemoteMode = "partial"
	RemoteNone    RemoteMode = "none"
	RemoteOther   RemoteMode = "other"
)

func ToRemoteMode(s string) (RemoteMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RemoteFull):
		return RemoteFull, nil
	case string(RemotePartial):
		return RemotePartial, nil
	case string(RemoteNone):
		return RemoteNone, nil
	case string(RemoteOther):
		return RemoteOther, nil
	default:
		return "", errors.New("invalid remote mode")
	}
}

type ExperienceLevel string

const (
	ExperienceJunior       ExperienceLevel = "junior"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceSenior       ExperienceLevel = "senior"
	ExperienceOther        ExperienceLevel = "other"
)

func ToExperienceLevel(s string) (ExperienceLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ExperienceJunior):
		return ExperienceJunior, nil
	case string(ExperienceIntermediate):
		return ExperienceIntermediate, nil
	case string(ExperienceSenior):
		return ExperienceSenior, nil
	case string(ExperienceOther):
		return ExperienceOther, nil
	default:
		return "", errors.New("invalid experience level")
	}
}

type DurationUnit string

const (
	DurationMonths DurationUnit = "months"
	DurationYears  DurationUnit = "years"
)

type JobDuration struct {
	Value int          `json:"value"`
	Unit  DurationUnit `json:"unit"`
}

// JobRecord is a single posting as delivered by ingestion. Empty strings mean the field is absent.
type JobRecord struct {
	ID                 int64           `json:"id" validate:"gt=0"`
	CreatedAt          string          `json:"createdAt"`
	Title              string          `json:"title,omitempty"`
	Company            string          `json:"company,omitempty"`
	City               string          `json:"city,omitempty"`
	Description        string          `json:"description,omitempty"`
	Profile            string          `json:"profile,omitempty"`
	CompanyDescription string          `json:"companyDescription,omitempty"`
	JobSlug            string          `json:"jobSlug,omitempty"`
	HardSkills         []string        `json:"hardSkills,omitempty"`
	SoftSkills         []string        `json:"softSkills,omitempty"`
	Remote             RemoteMode      `json:"remote,omitempty" validate:"omitempty,oneof=full partial none other"`
	Experience         ExperienceLevel `json:"experience,omitempty" validate:"omitempty,oneof=junior intermediate senior other"`
	MinRate            *float64        `json:"minTjm,omitempty" validate:"omitempty,gte=0"`
	MaxRate            *float64        `json:"maxTjm,omitempty" validate:"omitempty,gte=0"`
	Duration           *JobDuration    `json:"duration,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339 and the common date-only and local forms (read as UTC).
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (j JobRecord) CreatedTime() (time.Time, bool) {
	return ParseTimestamp(j.CreatedAt)
}

// Month returns the YYYY-MM key of the creation timestamp in its own calendar.
func (j JobRecord) Month() (string, bool) {
	t, ok := j.CreatedTime()
	if !ok {
		return "", false
	}
	return t.Format("2006-01"), true
}

// ApproxRate is the mean of the day-rate bounds, or whichever bound is present.
func (j JobRecord) ApproxRate() (float64, bool) {
	switch {
	case j.MinRate != nil && j.MaxRate != nil:
		return (*j.MinRate + *j.MaxRate) / 2, true
	case j.MinRate != nil:
		return *j.MinRate, true
	case j.MaxRate != nil:
		return *j.MaxRate, true
	default:
		return 0, false
	}
}
