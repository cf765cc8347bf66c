package report

import "sort"

// Suppressor decides whether a (rule, node) pair is suppressed. The
// suppress package's index satisfies this.
type Suppressor interface {
	Suppressed(ruleID, path string) bool
}

// Aggregate deduplicates identical (rule, path, message) findings, drops
// suppressed ones, and sorts the rest into the stable report order:
// source location, then severity descending, then rule id, then path.
// Aggregation is idempotent: feeding its output back in yields the same
// sequence.
func Aggregate(raw []Finding, sup Suppressor) []Finding {
	seen := make(map[findingKey]bool, len(raw))
	out := make([]Finding, 0, len(raw))
	for _, f := range raw {
		key := findingKey{f.RuleID, f.Path, f.Message}
		if seen[key] {
			continue
		}
		seen[key] = true
		if sup != nil && sup.Suppressed(f.RuleID, f.Path) {
			continue
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

type findingKey struct {
	ruleID  string
	path    string
	message string
}

func less(a, b Finding) bool {
	if a.Location.File != b.Location.File {
		return a.Location.File < b.Location.File
	}
	if a.Location.Line != b.Location.Line {
		return a.Location.Line < b.Location.Line
	}
	if a.Location.Column != b.Location.Column {
		return a.Location.Column < b.Location.Column
	}
	if a.Severity.Rank() != b.Severity.Rank() {
		return a.Severity.Rank() > b.Severity.Rank()
	}
	if a.RuleID != b.RuleID {
		return a.RuleID < b.RuleID
	}
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.Message < b.Message
}
