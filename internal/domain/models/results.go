package models

type JobsResult struct {
	Items     []JobRecord `json:"items"`
	Total     int         `json:"total"`
	Page      int         `json:"page"`
	PageSize  int         `json:"pageSize"`
	PageCount int         `json:"pageCount"`
}

type MonthlyPoint struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

type AnalyticsResult struct {
	Months       []string                  `json:"months"`
	Postings     []MonthlyPoint            `json:"postings"`
	AverageTjm   []MonthlyPoint            `json:"averageTjm"`
	TopSkills    []string                  `json:"topSkills"`
	SeriesSkills []string                  `json:"seriesSkills"`
	SkillSeries  map[string][]MonthlyPoint `json:"skillSeries"`
}

type RankPoint struct {
	Month string `json:"month"`
	Rank  int    `json:"rank"`
}

type EmergingSkillTrend struct {
	Skill   string      `json:"skill"`
	Monthly []RankPoint `json:"monthly"`
	Slope   float64     `json:"slope"`
}

type EmergingSkillTrendPayload struct {
	Months []string             `json:"months"`
	Trends []EmergingSkillTrend `json:"trends"`
}

type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

type CitySkillTrendResult struct {
	Skill      string                    `json:"skill"`
	Months     []string                  `json:"months"`
	TopCities  []string                  `json:"topCities"`
	CityTotals []CityCount               `json:"cityTotals"`
	Series     map[string][]MonthlyPoint `json:"series"`
}
