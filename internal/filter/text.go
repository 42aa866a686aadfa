package filter

import (
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/samber/lo"
	"golang.org/x/net/html"
	"regexp"
	"strings"
)

var parenthesesRe = regexp.MustCompile(`\([^)]*\)`)

// NormalizeCity drops parenthesised segments, collapses whitespace and lower-cases.
func NormalizeCity(city string) string {
	city = parenthesesRe.ReplaceAllString(city, " ")
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}

// StripHTML returns the text content of an HTML fragment with whitespace collapsed.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}

	var sb strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			sb.Write(tokenizer.Text())
		default:
			sb.WriteByte(' ')
		}
	}
}

// SearchText is the free-text scope of a posting. The structured store keeps the same value in
// jobs.search_text, so both backends search identical text.
func SearchText(job models.JobRecord) string {
	parts := []string{
		job.Title,
		job.Company,
		job.City,
		strings.Join(job.HardSkills, " "),
		strings.Join(job.SoftSkills, " "),
		StripHTML(job.Description),
		StripHTML(job.Profile),
		StripHTML(job.CompanyDescription),
	}
	return strings.ToLower(strings.Join(lo.Compact(parts), " "))
}
