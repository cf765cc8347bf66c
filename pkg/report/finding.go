// Package report aggregates raw findings into the final, deterministic
// lint report: deduplication, suppression filtering, stable sorting, and
// rendering to text or JSON.
package report

import (
	"github.com/platinummonkey/apilint/pkg/catalog"
	"github.com/platinummonkey/apilint/pkg/schema"
)

// Category separates genuine rule violations from tooling problems that
// were folded into the finding stream.
type Category string

const (
	// CategoryViolation is a design-rule violation.
	CategoryViolation Category = "violation"
	// CategoryTooling covers internal rule errors and malformed
	// suppression directives.
	CategoryTooling Category = "tooling"
)

// Well-known tooling rule ids.
const (
	RuleInternalErrorID      = "rule-internal-error"
	SuppressionSyntaxErrorID = "suppression-syntax-error"
)

// Finding is one reported outcome of a rule check (or tooling error)
// against a schema node.
type Finding struct {
	RuleID     string           `json:"rule_id"`
	Path       string           `json:"path"`
	Severity   catalog.Severity `json:"severity"`
	Category   Category         `json:"category"`
	Message    string           `json:"message"`
	Suggestion string           `json:"suggestion,omitempty"`
	Location   schema.Location  `json:"location"`
}

// Summary counts findings by severity for exit-code decisions.
type Summary struct {
	Must    int `json:"must"`
	Should  int `json:"should"`
	May     int `json:"may"`
	Tooling int `json:"tooling"`
	Total   int `json:"total"`
}

// Summarize tallies a finding sequence.
func Summarize(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		s.Total++
		if f.Category == CategoryTooling {
			s.Tooling++
		}
		switch f.Severity {
		case catalog.SeverityMust:
			s.Must++
		case catalog.SeverityShould:
			s.Should++
		case catalog.SeverityMay:
			s.May++
		}
	}
	return s
}

// CountAtOrAbove returns the number of findings at or above the given
// severity.
func (s Summary) CountAtOrAbove(sev catalog.Severity) int {
	switch sev {
	case catalog.SeverityMust:
		return s.Must
	case catalog.SeverityShould:
		return s.Must + s.Should
	default:
		return s.Total
	}
}
