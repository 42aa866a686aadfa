package analytics

// Grouped rows, as produced either by tallying an in-memory collection or by grouped SQL
// against the structured store. Reducers in this package only see rows.

type MonthCount struct {
	Month string
	Count int
}

type MonthValue struct {
	Month string
	Value float64
}

type MonthSkillCount struct {
	Month string
	Skill string
	Count int
}

type MonthCityCount struct {
	Month string
	City  string
	Count int
}
