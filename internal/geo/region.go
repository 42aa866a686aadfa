package geo

import (
	"regexp"
	"strings"
)

const (
	AuvergneRhoneAlpes     = "Auvergne-Rhône-Alpes"
	BourgogneFrancheComte  = "Bourgogne-Franche-Comté"
	Bretagne               = "Bretagne"
	CentreValDeLoire       = "Centre-Val de Loire"
	Corse                  = "Corse"
	GrandEst               = "Grand Est"
	HautsDeFrance          = "Hauts-de-France"
	IleDeFrance            = "Île-de-France"
	Normandie              = "Normandie"
	NouvelleAquitaine      = "Nouvelle-Aquitaine"
	Occitanie              = "Occitanie"
	PaysDeLaLoire          = "Pays de la Loire"
	ProvenceAlpesCoteDAzur = "Provence-Alpes-Côte d'Azur"
	Guadeloupe             = "Guadeloupe"
	Martinique             = "Martinique"
	Guyane                 = "Guyane"
	LaReunion              = "La Réunion"
	Mayotte                = "Mayotte"
)

var regionDepartments = map[string][]string{
	AuvergneRhoneAlpes:     {"01", "03", "07", "15", "26", "38", "42", "43", "63", "69", "73", "74"},
	BourgogneFrancheComte:  {"21", "25", "39", "58", "70", "71", "89", "90"},
	Bretagne:               {"22", "29", "35", "56"},
	CentreValDeLoire:       {"18", "28", "36", "37", "41", "45"},
	Corse:                  {"2A", "2B", "20"},
	GrandEst:               {"08", "10", "51", "52", "54", "55", "57", "67", "68", "88"},
	HautsDeFrance:          {"02", "59", "60", "62", "80"},
	IleDeFrance:            {"75", "77", "78", "91", "92", "93", "94", "95"},
	Normandie:              {"14", "27", "50", "61", "76"},
	NouvelleAquitaine:      {"16", "17", "19", "23", "24", "33", "40", "47", "64", "79", "86", "87"},
	Occitanie:              {"09", "11", "12", "30", "31", "32", "34", "46", "48", "65", "66", "81", "82"},
	PaysDeLaLoire:          {"44", "49", "53", "72", "85"},
	ProvenceAlpesCoteDAzur: {"04", "05", "06", "13", "83", "84"},
	Guadeloupe:             {"971"},
	Martinique:             {"972"},
	Guyane:                 {"973"},
	LaReunion:              {"974"},
	Mayotte:                {"976"},
}

var departmentRegion = buildDepartmentIndex()

var departmentCodeRe = regexp.MustCompile(`\(\s*(97[1-6]|2[AaBb]|\d{2})\s*\)`)

func buildDepartmentIndex() map[string]string {
	index := make(map[string]string, 100)
	for region, codes := range regionDepartments {
		for _, code := range codes {
			index[code] = region
		}
	}
	return index
}

// DepartmentCode extracts the department code written in parentheses, e.g. "Lyon (69)" -> "69".
func DepartmentCode(city string) (string, bool) {
	match := departmentCodeRe.FindStringSubmatch(city)
	if match == nil {
		return "", false
	}
	return strings.ToUpper(match[1]), true
}

func CityToRegion(city string) (string, bool) {
	code, ok := DepartmentCode(city)
	if !ok {
		return "", false
	}
	region, ok := departmentRegion[code]
	return region, ok
}

// RegionKey is the comparison form of a region name.
func RegionKey(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}

func Regions() []string {
	regions := make([]string, 0, len(regionDepartments))
	for region := range regionDepartments {
		regions = append(regions, region)
	}
	return regions
}
