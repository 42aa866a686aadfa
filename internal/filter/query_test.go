package filter

import (
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_CompileQuery_EmptyFilter_MatchesEverything(t *testing.T) {
	fragment := CompileQuery(Normalize(models.RawFilter{}))
	where, args := fragment.Where()

	assert.Equal(t, "1 = 1", where)
	assert.Empty(t, args)
	assert.Nil(t, fragment.Text)
}

func Test_CompileQuery_SkillInclude_OneExistsPerSkill(t *testing.T) {
	fragment := CompileQuery(Normalize(models.RawFilter{Skills: []string{"Go", "Docker"}}))

	assert.Len(t, fragment.Exprs, 2)
	assert.Equal(t, hardSkillSQL, fragment.Exprs[0].SQL)
	assert.Equal(t, []any{SkillKindHard, "go"}, fragment.Exprs[0].Args)
	assert.Equal(t, []any{SkillKindHard, "docker"}, fragment.Exprs[1].Args)
}

func Test_CompileQuery_CityContainsExclude_WrapsOrInNot(t *testing.T) {
	fragment := CompileQuery(Normalize(models.RawFilter{Cities: []string{"Paris (75)", "lyon"}, ExcludeCities: true}))

	assert.Len(t, fragment.Exprs, 1)
	assert.Equal(t, `NOT (city_norm LIKE ? ESCAPE '\' OR city_norm LIKE ? ESCAPE '\')`, fragment.Exprs[0].SQL)
	assert.Equal(t, []any{"%paris%", "%lyon%"}, fragment.Exprs[0].Args)
}

func Test_CompileQuery_CityExact_UsesSet(t *testing.T) {
	fragment := CompileQuery(Normalize(models.RawFilter{Cities: []string{"Paris"}, CityMatch: "exact"}))

	assert.Equal(t, "city_norm IN ?", fragment.Exprs[0].SQL)
	assert.Equal(t, []any{[]string{"paris"}}, fragment.Exprs[0].Args)
}

func Test_CompileQuery_RateAndDate(t *testing.T) {
	fragment := CompileQuery(Normalize(models.RawFilter{MinTjm: "500", StartDate: "2024-01-01", EndDate: "2024-01-31"}))
	where, args := fragment.Where()

	assert.Equal(t, "(COALESCE((min_rate + max_rate) / 2.0, min_rate, max_rate) >= ?) AND "+
		"(created_ms >= ?) AND (created_ms < ?)", where)
	assert.Equal(t, []any{500.0, int64(1704067200000), int64(1706745600000)}, args)
}

func Test_CompileQuery_InvalidDate_NeverMatches(t *testing.T) {
	fragment := CompileQuery(Normalize(models.RawFilter{EndDate: "soon"}))

	assert.Equal(t, "1 = 0", fragment.Exprs[0].SQL)
}

func Test_CompileQuery_FreeText_IsResolvedSeparately(t *testing.T) {
	fragment := CompileQuery(Normalize(models.RawFilter{Query: "100%_Go", Remote: []string{"full"}}))

	if assert.NotNil(t, fragment.Text) {
		assert.Equal(t, `%100\%\_go%`, fragment.Text.Pattern)
	}
	assert.Len(t, fragment.Exprs, 1)

	folded := fragment.FoldText()
	where, args := folded.Where()
	assert.Nil(t, folded.Text)
	assert.Equal(t, `(remote_lower IN ?) AND (id IN (SELECT id FROM jobs WHERE search_text LIKE ? ESCAPE '\'))`, where)
	assert.Equal(t, []any{[]string{"full"}, `%100\%\_go%`}, args)
}

func Test_QueryFragment_FoldText_WithoutText_IsUnchanged(t *testing.T) {
	fragment := CompileQuery(Normalize(models.RawFilter{Remote: []string{"full"}}))

	assert.Equal(t, fragment, fragment.FoldText())
}

func Test_QueryFragment_FilteredCTE_PutsTextArgsFirst(t *testing.T) {
	fragment := CompileQuery(Normalize(models.RawFilter{Query: "go", Remote: []string{"full"}}))
	sql, args := fragment.FilteredCTE()

	assert.Equal(t, `WITH text_hits AS (SELECT id FROM jobs WHERE search_text LIKE ? ESCAPE '\'), `+
		`filtered AS (SELECT * FROM jobs WHERE (remote_lower IN ?) AND id IN (SELECT id FROM text_hits))`, sql)
	assert.Equal(t, []any{"%go%", []string{"full"}}, args)
}

func Test_Clauses_EveryDimensionProducesOneClause(t *testing.T) {
	clauses := Clauses(Normalize(models.RawFilter{
		Query: "x", Skills: []string{"a"}, ExcludeSkills: []string{"b"}, ExcludeTitles: []string{"c"},
		Cities: []string{"d"}, Regions: []string{"Bretagne"}, Remote: []string{"full"}, Experience: []string{"senior"},
		JobSlugs: []string{"e"}, MinTjm: "1", StartDate: "2024-01-01",
	}))

	assert.Len(t, clauses, 11)
}
