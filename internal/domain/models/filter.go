package models

import (
	"strconv"
)

type CityMatch string

const (
	CityMatchContains CityMatch = "contains"
	CityMatchExact    CityMatch = "exact"
)

// RawFilter is the user supplied, partially specified filter. Every field is optional.
type RawFilter struct {
	Query          string   `json:"q,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	ExcludeSkills  []string `json:"excludeSkills,omitempty"`
	ExcludeTitles  []string `json:"excludeTitles,omitempty"`
	Cities         []string `json:"cities,omitempty"`
	CityMatch      string   `json:"cityMatch,omitempty"`
	ExcludeCities  bool     `json:"excludeCities,omitempty"`
	Regions        []string `json:"regions,omitempty"`
	ExcludeRegions bool     `json:"excludeRegions,omitempty"`
	Remote         []string `json:"remote,omitempty"`
	Experience     []string `json:"experience,omitempty"`
	JobSlugs       []string `json:"jobSlugs,omitempty"`
	MinTjm         string   `json:"minTjm,omitempty"`
	MaxTjm         string   `json:"maxTjm,omitempty"`
	StartDate      string   `json:"startDate,omitempty"`
	EndDate        string   `json:"endDate,omitempty"`
}

// NormalizedFilter is the canonical form of RawFilter. Lists are never nil.
type NormalizedFilter struct {
	Query          string    `json:"q"`
	Skills         []string  `json:"skills"`
	ExcludeSkills  []string  `json:"excludeSkills"`
	ExcludeTitles  []string  `json:"excludeTitles"`
	Cities         []string  `json:"cities"`
	CityMatch      CityMatch `json:"cityMatch"`
	ExcludeCities  bool      `json:"excludeCities"`
	Regions        []string  `json:"regions"`
	ExcludeRegions bool      `json:"excludeRegions"`
	Remote         []string  `json:"remote"`
	Experience     []string  `json:"experience"`
	JobSlugs       []string  `json:"jobSlugs"`
	MinTjm         *float64  `json:"minTjm"`
	MaxTjm         *float64  `json:"maxTjm"`
	StartDate      string    `json:"startDate"`
	EndDate        string    `json:"endDate"`
}

func (f NormalizedFilter) Raw() RawFilter {
	raw := RawFilter{
		Query:          f.Query,
		Skills:         append([]string(nil), f.Skills...),
		ExcludeSkills:  append([]string(nil), f.ExcludeSkills...),
		ExcludeTitles:  append([]string(nil), f.ExcludeTitles...),
		Cities:         append([]string(nil), f.Cities...),
		CityMatch:      string(f.CityMatch),
		ExcludeCities:  f.ExcludeCities,
		Regions:        append([]string(nil), f.Regions...),
		ExcludeRegions: f.ExcludeRegions,
		Remote:         append([]string(nil), f.Remote...),
		Experience:     append([]string(nil), f.Experience...),
		JobSlugs:       append([]string(nil), f.JobSlugs...),
		StartDate:      f.StartDate,
		EndDate:        f.EndDate,
	}
	if f.MinTjm != nil {
		raw.MinTjm = strconv.FormatFloat(*f.MinTjm, 'f', -1, 64)
	}
	if f.MaxTjm != nil {
		raw.MaxTjm = strconv.FormatFloat(*f.MaxTjm, 'f', -1, 64)
	}
	return raw
}
