package rules

import (
	"fmt"
	"strings"

	"github.com/platinummonkey/apilint/pkg/catalog"
	"github.com/platinummonkey/apilint/pkg/schema"
)

// NewServiceNamingRule requires PascalCase service names.
func NewServiceNamingRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "service-name-pascal-case",
		Title:    "Service names must be PascalCase",
		Kinds:    []schema.Kind{schema.KindService},
		Severity: catalog.SeverityMust,
		Check: func(node schema.Node, _ *catalog.Context) []catalog.Problem {
			if !isPascalCase(node.Name()) {
				return []catalog.Problem{{
					Message: fmt.Sprintf("service name %q is not PascalCase", node.Name()),
				}}
			}
			return nil
		},
	}
}

// NewMessageNamingRule requires PascalCase message names. Synthetic map
// entry messages are exempt.
func NewMessageNamingRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "message-name-pascal-case",
		Title:    "Message names must be PascalCase",
		Kinds:    []schema.Kind{schema.KindMessage},
		Severity: catalog.SeverityMust,
		Applies: func(node schema.Node, _ *catalog.Context) bool {
			m, ok := node.(*schema.MessageNode)
			return ok && !m.MapEntry
		},
		Check: func(node schema.Node, _ *catalog.Context) []catalog.Problem {
			if !isPascalCase(node.Name()) {
				return []catalog.Problem{{
					Message: fmt.Sprintf("message name %q is not PascalCase", node.Name()),
				}}
			}
			return nil
		},
	}
}

// NewFieldNamingRule requires snake_case field names.
func NewFieldNamingRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "field-name-snake-case",
		Title:    "Field names must be snake_case",
		Kinds:    []schema.Kind{schema.KindField},
		Severity: catalog.SeverityMust,
		Check: func(node schema.Node, _ *catalog.Context) []catalog.Problem {
			if !isSnakeCase(node.Name()) {
				return []catalog.Problem{{
					Message: fmt.Sprintf("field name %q is not snake_case", node.Name()),
				}}
			}
			return nil
		},
	}
}

// NewEnumNamingRule recommends PascalCase enum names.
func NewEnumNamingRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "enum-name-pascal-case",
		Title:    "Enum names should be PascalCase",
		Kinds:    []schema.Kind{schema.KindEnum},
		Severity: catalog.SeverityShould,
		Check: func(node schema.Node, _ *catalog.Context) []catalog.Problem {
			if !isPascalCase(node.Name()) {
				return []catalog.Problem{{
					Message: fmt.Sprintf("enum name %q is not PascalCase", node.Name()),
				}}
			}
			return nil
		},
	}
}

// NewEnumValueNamingRule requires UPPER_SNAKE_CASE enum values.
func NewEnumValueNamingRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "enum-value-upper-snake-case",
		Title:    "Enum values must be UPPER_SNAKE_CASE",
		Kinds:    []schema.Kind{schema.KindEnumValue},
		Severity: catalog.SeverityMust,
		Check: func(node schema.Node, _ *catalog.Context) []catalog.Problem {
			if !isUpperSnakeCase(node.Name()) {
				return []catalog.Problem{{
					Message: fmt.Sprintf("enum value %q is not UPPER_SNAKE_CASE", node.Name()),
				}}
			}
			return nil
		},
	}
}

// NewEnumZeroValueRule requires the first enum value to be the number-zero
// *_UNSPECIFIED sentinel.
func NewEnumZeroValueRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "enum-zero-value-unspecified",
		Title:    "Enums must begin with a zero UNSPECIFIED value",
		Kinds:    []schema.Kind{schema.KindEnum},
		Severity: catalog.SeverityMust,
		Check: func(node schema.Node, ctx *catalog.Context) []catalog.Problem {
			for _, child := range ctx.Model.Children(node.Path()) {
				v, ok := child.(*schema.EnumValueNode)
				if !ok {
					continue
				}
				var problems []catalog.Problem
				if v.Number != 0 {
					problems = append(problems, catalog.Problem{
						Message: fmt.Sprintf("first value %q of enum %q has number %d, expected 0", v.Name(), node.Name(), v.Number),
					})
				}
				if !strings.HasSuffix(v.Name(), "_UNSPECIFIED") {
					problems = append(problems, catalog.Problem{
						Message:    fmt.Sprintf("first value %q of enum %q is not the UNSPECIFIED sentinel", v.Name(), node.Name()),
						Suggestion: fmt.Sprintf("name it %s_UNSPECIFIED", toUpperSnakePrefix(node.Name())),
					})
				}
				return problems
			}
			return []catalog.Problem{{
				Message: fmt.Sprintf("enum %q declares no values", node.Name()),
			}}
		},
	}
}

// toUpperSnakePrefix derives the conventional UNSPECIFIED prefix from an
// enum name, e.g. "BookState" -> "BOOK_STATE".
func toUpperSnakePrefix(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
