package suppress

import (
	"fmt"
	"strings"

	"github.com/platinummonkey/apilint/pkg/catalog"
	"github.com/platinummonkey/apilint/pkg/config"
	"github.com/platinummonkey/apilint/pkg/report"
	"github.com/platinummonkey/apilint/pkg/schema"
)

type pairKey struct {
	ruleID string
	path   string
}

// Index is the resolved suppression lookup. Lookup is exact: a pair is
// suppressed iff it matches (ruleID, path) or (ruleID, "*"); path-prefix
// config scopes are expanded against the model at resolve time, so no
// prefix matching happens here.
type Index struct {
	global map[string]bool
	exact  map[pairKey]bool
}

// Suppressed reports whether the rule is disabled for the node path.
func (ix *Index) Suppressed(ruleID, path string) bool {
	if ix == nil {
		return false
	}
	return ix.global[ruleID] || ix.exact[pairKey{ruleID, path}]
}

// Len returns the number of suppression entries, global entries counting
// as one each.
func (ix *Index) Len() int { return len(ix.global) + len(ix.exact) }

// Resolve builds the suppression index from config overrides and inline
// directives found in node comments. Malformed or unknown-rule inline
// directives do not fail the run; each yields a warning finding and the
// directive is ignored.
func Resolve(model *schema.Model, cfg *config.Config, rules config.RuleSet) (*Index, []report.Finding) {
	ix := &Index{
		global: make(map[string]bool),
		exact:  make(map[pairKey]bool),
	}
	var warnings []report.Finding

	if cfg != nil {
		for id, setting := range cfg.Rules {
			if !setting.Disabled() {
				continue
			}
			if setting.Path == "" {
				ix.global[id] = true
				continue
			}
			// Expand the path scope into exact pairs for the node at the
			// scope and everything beneath it.
			model.Walk(func(n schema.Node) bool {
				if underScope(n.Path(), setting.Path) {
					ix.exact[pairKey{id, n.Path()}] = true
				}
				return true
			})
		}
	}

	model.Walk(func(n schema.Node) bool {
		for _, line := range n.LeadingComments() {
			if !IsDirective(line) {
				continue
			}
			d, err := ParseDirective(line)
			if err != nil {
				warnings = append(warnings, syntaxWarning(n, err.Error()))
				continue
			}
			if !rules.Has(d.RuleID) {
				warnings = append(warnings, syntaxWarning(n, fmt.Sprintf("directive disables unknown rule id %q", d.RuleID)))
				continue
			}
			ix.exact[pairKey{d.RuleID, n.Path()}] = true
		}
		return true
	})

	return ix, warnings
}

func underScope(path, scope string) bool {
	return path == scope || strings.HasPrefix(path, scope+".")
}

func syntaxWarning(n schema.Node, msg string) report.Finding {
	return report.Finding{
		RuleID:   report.SuppressionSyntaxErrorID,
		Path:     n.Path(),
		Severity: catalog.SeverityMay,
		Category: report.CategoryTooling,
		Message:  msg,
		Location: n.Location(),
	}
}
