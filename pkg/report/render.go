package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// Format selects the output representation.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// Render writes the sorted finding sequence in the requested format. Both
// formats emit findings in the exact order given; rendering never
// reorders.
func Render(w io.Writer, format Format, findings []Finding, summary Summary, incomplete bool) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, findings, summary, incomplete)
	default:
		return renderText(w, findings, summary, incomplete)
	}
}

// renderText emits one `path: severity ruleId: message` line per finding.
func renderText(w io.Writer, findings []Finding, summary Summary, incomplete bool) error {
	for _, f := range findings {
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", f.Path, f.Severity, f.RuleID, f.Message); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "\n%d findings (%d MUST, %d SHOULD, %d MAY, %d tooling)\n",
		summary.Total, summary.Must, summary.Should, summary.May, summary.Tooling); err != nil {
		return err
	}
	if incomplete {
		if _, err := fmt.Fprintln(w, "WARNING: run was cancelled before completion; findings may be missing"); err != nil {
			return err
		}
	}
	return nil
}

func renderJSON(w io.Writer, findings []Finding, summary Summary, incomplete bool) error {
	if findings == nil {
		findings = []Finding{}
	}
	out := struct {
		Findings   []Finding `json:"findings"`
		Summary    Summary   `json:"summary"`
		Incomplete bool      `json:"incomplete"`
	}{
		Findings:   findings,
		Summary:    summary,
		Incomplete: incomplete,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
