package rules

import (
	"fmt"

	"github.com/platinummonkey/apilint/pkg/catalog"
	"github.com/platinummonkey/apilint/pkg/schema"
)

// NewOutputOnlyConflictRule flags fields declared both REQUIRED and
// OUTPUT_ONLY; a caller can never set an output-only field, so the
// combination is contradictory.
func NewOutputOnlyConflictRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "field-behavior-conflict",
		Title:    "OUTPUT_ONLY fields must not also be REQUIRED",
		Kinds:    []schema.Kind{schema.KindField},
		Severity: catalog.SeverityMust,
		Applies: func(node schema.Node, _ *catalog.Context) bool {
			f, ok := node.(*schema.FieldNode)
			return ok && len(f.Behaviors) > 0
		},
		Check: func(node schema.Node, _ *catalog.Context) []catalog.Problem {
			f := node.(*schema.FieldNode)
			if f.HasBehavior("OUTPUT_ONLY") && f.HasBehavior("REQUIRED") {
				return []catalog.Problem{{
					Message: fmt.Sprintf("field %q declares both OUTPUT_ONLY and REQUIRED", f.Name()),
				}}
			}
			return nil
		},
	}
}

// NewResourceNameBehaviorRule recommends marking resource `name` fields
// IDENTIFIER rather than REQUIRED.
func NewResourceNameBehaviorRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "field-name-identifier-behavior",
		Title:    "Resource name fields should use the IDENTIFIER behavior",
		Kinds:    []schema.Kind{schema.KindField},
		Severity: catalog.SeverityShould,
		Applies: func(node schema.Node, ctx *catalog.Context) bool {
			f, ok := node.(*schema.FieldNode)
			if !ok || f.Name() != "name" || f.TypeName != "string" {
				return false
			}
			// Only resource messages, not request/response wrappers.
			parent, ok := ctx.Model.Node(f.ParentPath())
			if !ok {
				return false
			}
			name := parent.Name()
			for _, suffix := range []string{"Request", "Response"} {
				if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
					return false
				}
			}
			return true
		},
		Check: func(node schema.Node, _ *catalog.Context) []catalog.Problem {
			f := node.(*schema.FieldNode)
			if f.HasBehavior("REQUIRED") {
				return []catalog.Problem{{
					Message:    fmt.Sprintf("resource name field %q is marked REQUIRED", f.Name()),
					Suggestion: "use (google.api.field_behavior) = IDENTIFIER",
				}}
			}
			return nil
		},
	}
}
