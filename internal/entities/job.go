package entities

import (
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/maxaizer/jobmarket/internal/filter"
	"github.com/maxaizer/jobmarket/internal/geo"
	"strings"
)

// Job is the stored form of a posting. The *_lower, city_norm, region_key and search_text columns
// are derived in Go at save time so that store queries fold case exactly like the in-memory filter.
type Job struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement:false"`
	CreatedRaw         string
	CreatedMs          *int64 `gorm:"index"`
	Month              string `gorm:"index"`
	Title              string
	Company            string
	City               string
	Description        string
	Profile            string
	CompanyDescription string
	JobSlug            string
	Remote             string
	Experience         string
	MinRate            *float64
	MaxRate            *float64
	DurationValue      *int
	DurationUnit       string

	TitleLower      string
	CityNorm        string `gorm:"index"`
	Region          string
	RegionKey       string `gorm:"index"`
	RemoteLower     string
	ExperienceLower string
	SlugLower       string
	SearchText      string
}

type JobSkill struct {
	JobID      int64  `gorm:"primaryKey;autoIncrement:false"`
	Kind       string `gorm:"primaryKey"`
	Position   int    `gorm:"primaryKey;autoIncrement:false"`
	Skill      string
	SkillLower string `gorm:"index"`
}

func NewJob(record models.JobRecord) Job {
	job := Job{
		ID:                 record.ID,
		CreatedRaw:         record.CreatedAt,
		Title:              record.Title,
		Company:            record.Company,
		City:               record.City,
		Description:        record.Description,
		Profile:            record.Profile,
		CompanyDescription: record.CompanyDescription,
		JobSlug:            record.JobSlug,
		Remote:             string(record.Remote),
		Experience:         string(record.Experience),
		MinRate:            record.MinRate,
		MaxRate:            record.MaxRate,

		TitleLower:      strings.ToLower(record.Title),
		CityNorm:        filter.NormalizeCity(record.City),
		RemoteLower:     lowerTrim(string(record.Remote)),
		ExperienceLower: lowerTrim(string(record.Experience)),
		SlugLower:       lowerTrim(record.JobSlug),
		SearchText:      filter.SearchText(record),
	}

	if created, ok := record.CreatedTime(); ok {
		ms := created.UnixMilli()
		job.CreatedMs = &ms
		job.Month, _ = record.Month()
	}

	if region, ok := geo.CityToRegion(record.City); ok {
		job.Region = region
		job.RegionKey = geo.RegionKey(region)
	}

	if record.Duration != nil {
		value := record.Duration.Value
		job.DurationValue = &value
		job.DurationUnit = string(record.Duration.Unit)
	}

	return job
}

func NewJobSkills(record models.JobRecord) []JobSkill {
	skills := make([]JobSkill, 0, len(record.HardSkills)+len(record.SoftSkills))
	for i, skill := range record.HardSkills {
		skills = append(skills, JobSkill{JobID: record.ID, Kind: filter.SkillKindHard, Position: i,
			Skill: skill, SkillLower: strings.ToLower(skill)})
	}
	for i, skill := range record.SoftSkills {
		skills = append(skills, JobSkill{JobID: record.ID, Kind: filter.SkillKindSoft, Position: i,
			Skill: skill, SkillLower: strings.ToLower(skill)})
	}
	return skills
}

// ToRecord rebuilds the posting. skills must belong to this job and be ordered by position.
func (j Job) ToRecord(skills []JobSkill) models.JobRecord {
	record := models.JobRecord{
		ID:                 j.ID,
		CreatedAt:          j.CreatedRaw,
		Title:              j.Title,
		Company:            j.Company,
		City:               j.City,
		Description:        j.Description,
		Profile:            j.Profile,
		CompanyDescription: j.CompanyDescription,
		JobSlug:            j.JobSlug,
		Remote:             models.RemoteMode(j.Remote),
		Experience:         models.ExperienceLevel(j.Experience),
		MinRate:            j.MinRate,
		MaxRate:            j.MaxRate,
	}

	if j.DurationValue != nil {
		record.Duration = &models.JobDuration{Value: *j.DurationValue, Unit: models.DurationUnit(j.DurationUnit)}
	}

	for _, skill := range skills {
		switch skill.Kind {
		case filter.SkillKindHard:
			record.HardSkills = append(record.HardSkills, skill.Skill)
		case filter.SkillKindSoft:
			record.SoftSkills = append(record.SoftSkills, skill.Skill)
		}
	}

	return record
}

func lowerTrim(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
