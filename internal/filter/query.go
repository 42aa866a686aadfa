package filter

import (
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"strings"
)

// Skill kinds as stored in job_skills.kind.
const (
	SkillKindHard = "hard"
	SkillKindSoft = "soft"
)

const (
	ApproxRateSQL = "COALESCE((min_rate + max_rate) / 2.0, min_rate, max_rate)"
	hardSkillSQL  = "EXISTS (SELECT 1 FROM job_skills s WHERE s.job_id = jobs.id AND s.kind = ? AND s.skill_lower = ?)"
	textSearchSQL = `search_text LIKE ? ESCAPE '\'`
	likeSQL       = `LIKE ? ESCAPE '\'`
)

// Expr is a single SQL boolean expression over the jobs table with its bound parameters.
// Slice parameters are expanded by gorm for "IN ?".
type Expr struct {
	SQL  string
	Args []any
}

// TextSearch is the free-text part of a query. It is resolved separately into a candidate id set,
// folded back as an id subquery (FoldText) or as the text_hits common table expression of FilteredCTE.
// The id set never leaves the database, so its size is not bound by parameter limits.
type TextSearch struct {
	Pattern string
}

func (t TextSearch) SQL() (string, []any) {
	return "SELECT id FROM jobs WHERE " + textSearchSQL, []any{t.Pattern}
}

// QueryFragment is the structured-store form of a filter: AND-combined expressions plus an
// optional text search.
type QueryFragment struct {
	Exprs []Expr
	Text  *TextSearch
}

type queryCompiler struct {
	fragment QueryFragment
}

func CompileQuery(f models.NormalizedFilter) QueryFragment {
	compiler := &queryCompiler{}
	for _, clause := range Clauses(f) {
		clause.Accept(compiler)
	}
	return compiler.fragment
}

// Where renders the non-text expressions. Callers must fold Text in first (FoldText or FilteredCTE).
func (q QueryFragment) Where() (string, []any) {
	if len(q.Exprs) == 0 {
		return "1 = 1", nil
	}

	parts := make([]string, 0, len(q.Exprs))
	var args []any
	for _, expr := range q.Exprs {
		parts = append(parts, "("+expr.SQL+")")
		args = append(args, expr.Args...)
	}
	return strings.Join(parts, " AND "), args
}

// FoldText replaces the text search by an "id IN (subquery)" expression.
func (q QueryFragment) FoldText() QueryFragment {
	if q.Text == nil {
		return q
	}

	textSQL, textArgs := q.Text.SQL()
	exprs := make([]Expr, 0, len(q.Exprs)+1)
	exprs = append(exprs, q.Exprs...)
	exprs = append(exprs, Expr{SQL: "id IN (" + textSQL + ")", Args: textArgs})
	return QueryFragment{Exprs: exprs}
}

// FilteredCTE renders a WITH clause defining "filtered", the filtered jobs rows, for grouped
// queries sharing the same filter.
func (q QueryFragment) FilteredCTE() (string, []any) {
	where, whereArgs := q.Where()
	if q.Text == nil {
		return "WITH filtered AS (SELECT * FROM jobs WHERE " + where + ")", whereArgs
	}

	textSQL, textArgs := q.Text.SQL()
	sql := "WITH text_hits AS (" + textSQL + "), " +
		"filtered AS (SELECT * FROM jobs WHERE " + where + " AND id IN (SELECT id FROM text_hits))"
	return sql, append(textArgs, whereArgs...)
}

func (c *queryCompiler) add(sql string, args ...any) {
	c.fragment.Exprs = append(c.fragment.Exprs, Expr{SQL: sql, Args: args})
}

func (c *queryCompiler) VisitText(clause TextClause) {
	c.fragment.Text = &TextSearch{Pattern: containsPattern(clause.Needle)}
}

func (c *queryCompiler) VisitSkillInclude(clause SkillIncludeClause) {
	for _, skill := range clause.Skills {
		c.add(hardSkillSQL, SkillKindHard, skill)
	}
}

func (c *queryCompiler) VisitSkillExclude(clause SkillExcludeClause) {
	for _, skill := range clause.Skills {
		c.add("NOT "+hardSkillSQL, SkillKindHard, skill)
	}
}

func (c *queryCompiler) VisitTitleExclude(clause TitleExcludeClause) {
	for _, keyword := range clause.Keywords {
		c.add("title_lower NOT "+likeSQL, containsPattern(keyword))
	}
}

func (c *queryCompiler) VisitCity(clause CityClause) {
	var sql string
	var args []any
	if clause.Match == models.CityMatchExact {
		sql, args = "city_norm IN ?", []any{clause.Cities}
	} else {
		parts := make([]string, 0, len(clause.Cities))
		for _, city := range clause.Cities {
			parts = append(parts, "city_norm "+likeSQL)
			args = append(args, containsPattern(city))
		}
		sql = strings.Join(parts, " OR ")
	}
	if clause.Exclude {
		sql = "NOT (" + sql + ")"
	}
	c.add(sql, args...)
}

// VisitRegion compares against region_key, materialized from the city at ingestion.
func (c *queryCompiler) VisitRegion(clause RegionClause) {
	sql := "region_key IN ?"
	if clause.Exclude {
		sql = "NOT (" + sql + ")"
	}
	c.add(sql, clause.Regions)
}

func (c *queryCompiler) VisitRemote(clause RemoteClause) {
	c.add("remote_lower IN ?", clause.Values)
}

func (c *queryCompiler) VisitExperience(clause ExperienceClause) {
	c.add("experience_lower IN ?", clause.Values)
}

func (c *queryCompiler) VisitSlug(clause SlugClause) {
	c.add("slug_lower IN ?", clause.Values)
}

func (c *queryCompiler) VisitRate(clause RateClause) {
	if clause.Min != nil {
		c.add(ApproxRateSQL+" >= ?", *clause.Min)
	}
	if clause.Max != nil {
		c.add(ApproxRateSQL+" <= ?", *clause.Max)
	}
}

func (c *queryCompiler) VisitDate(clause DateClause) {
	if clause.Invalid {
		c.add("1 = 0")
		return
	}
	if clause.From != nil {
		c.add("created_ms >= ?", clause.From.UnixMilli())
	}
	if clause.Until != nil {
		c.add("created_ms < ?", clause.Until.UnixMilli())
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}
