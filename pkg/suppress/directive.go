// Package suppress resolves suppression directives into a per-run index
// of disabled (rule, node) pairs.
//
// Two sources feed the index: inline structured comments attached to a
// node's declaration, and the rule overrides in the config file. The most
// specific scope wins: node-level inline directive, then path-scoped
// config override, then global config override, then the rule's
// default-enabled state.
package suppress

import (
	"fmt"
	"strings"
)

// DirectivePrefix marks an inline suppression comment. The full syntax is
//
//	@apilint:disable:<rule-id>
//
// one rule id per directive, any number of directives per node.
const DirectivePrefix = "@apilint:"

// Directive is one parsed inline suppression.
type Directive struct {
	Action string
	RuleID string
}

// IsDirective reports whether a comment line is an apilint directive.
func IsDirective(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), DirectivePrefix)
}

// ParseDirective parses a directive comment line. The only supported
// action is "disable".
func ParseDirective(line string) (Directive, error) {
	text := strings.TrimSpace(line)
	rest := strings.TrimPrefix(text, DirectivePrefix)
	if rest == text {
		return Directive{}, fmt.Errorf("not an apilint directive: %q", line)
	}
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Directive{}, fmt.Errorf("malformed directive %q: want @apilint:disable:<rule-id>", text)
	}
	d := Directive{Action: parts[0], RuleID: strings.TrimSpace(parts[1])}
	if d.Action != "disable" {
		return Directive{}, fmt.Errorf("unsupported directive action %q", d.Action)
	}
	if strings.ContainsAny(d.RuleID, " \t:") {
		return Directive{}, fmt.Errorf("malformed rule id %q in directive", d.RuleID)
	}
	return d, nil
}
