package catalog

import (
	"fmt"

	"github.com/platinummonkey/apilint/pkg/schema"
)

// Severity is a rule's default strength, mirroring RFC 2119 keywords.
type Severity string

const (
	// SeverityMust marks a hard requirement; violations fail the run.
	SeverityMust Severity = "MUST"
	// SeverityShould marks a strong recommendation.
	SeverityShould Severity = "SHOULD"
	// SeverityMay marks informational guidance.
	SeverityMay Severity = "MAY"
)

// Rank orders severities for sorting, highest first.
func (s Severity) Rank() int {
	switch s {
	case SeverityMust:
		return 3
	case SeverityShould:
		return 2
	case SeverityMay:
		return 1
	default:
		return 0
	}
}

// Context carries read-only run state into predicates and checks. The
// model allows checks to follow cross references (e.g. from a method to
// its request message).
type Context struct {
	Model *schema.Model
}

// Problem is one distinct issue a check found on a node. A single check
// may return several problems for the same node.
type Problem struct {
	// Message describes the violation.
	Message string
	// Suggestion optionally names the compliant alternative.
	Suggestion string
}

// Rule is one identified design constraint.
type Rule struct {
	// ID is globally unique within a catalog and stable across versions.
	ID string
	// Title is the short human-readable rule name.
	Title string
	// Kinds is the set of node kinds the rule can apply to.
	Kinds []schema.Kind
	// Applies decides whether Check runs on a node of a matching kind.
	// A nil Applies means the rule applies to every node of its kinds.
	Applies func(node schema.Node, ctx *Context) bool
	// Check returns zero or more problems for an applicable node.
	Check func(node schema.Node, ctx *Context) []Problem
	// Severity is the rule's default severity.
	Severity Severity
}

// Targets reports whether the rule's kind set includes the given kind.
func (r *Rule) Targets(kind schema.Kind) bool {
	for _, k := range r.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// DuplicateIDError reports two registrations under the same rule id. It
// is a fatal configuration error.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate rule id %q", e.ID)
}

// Catalog is an ordered, process-wide registry of rules. It is not safe
// for concurrent registration; register everything at startup, then treat
// the catalog as read-only.
type Catalog struct {
	rules []*Rule
	byID  map[string]*Rule
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{byID: make(map[string]*Rule)}
}

// Register adds a rule. Registration order is preserved by All and used
// as the stable tie-break in reports.
func (c *Catalog) Register(rule *Rule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule registered without an id")
	}
	if rule.Check == nil {
		return fmt.Errorf("rule %q registered without a check", rule.ID)
	}
	if _, exists := c.byID[rule.ID]; exists {
		return &DuplicateIDError{ID: rule.ID}
	}
	c.byID[rule.ID] = rule
	c.rules = append(c.rules, rule)
	return nil
}

// MustRegister registers a rule and panics on error. Intended for static
// built-in rule sets where a duplicate id is a programming error.
func (c *Catalog) MustRegister(rule *Rule) {
	if err := c.Register(rule); err != nil {
		panic(err)
	}
}

// Get returns the rule with the given id.
func (c *Catalog) Get(id string) (*Rule, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// Has reports whether the catalog contains a rule with the given id.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Len returns the number of registered rules.
func (c *Catalog) Len() int { return len(c.rules) }

// All returns every rule in registration order. The returned slice is
// shared; callers must not modify it.
func (c *Catalog) All() []*Rule { return c.rules }

// ApplicableRules returns the subset of the catalog targeting the node's
// kind whose predicate accepts the node, preserving registration order.
func (c *Catalog) ApplicableRules(node schema.Node, ctx *Context) []*Rule {
	var out []*Rule
	for _, r := range c.rules {
		if !r.Targets(node.Kind()) {
			continue
		}
		if r.Applies != nil && !r.Applies(node, ctx) {
			continue
		}
		out = append(out, r)
	}
	return out
}
