package rules

import (
	"fmt"
	"strings"

	"github.com/platinummonkey/apilint/pkg/catalog"
	"github.com/platinummonkey/apilint/pkg/schema"
)

func asMethod(node schema.Node) *schema.MethodNode {
	m, _ := node.(*schema.MethodNode)
	return m
}

// isStandardMethod matches the five standard verbs on unary methods.
func methodHasVerb(verb string) func(schema.Node, *catalog.Context) bool {
	return func(node schema.Node, _ *catalog.Context) bool {
		m := asMethod(node)
		return m != nil && methodVerb(m.Name()) == verb
	}
}

// NewHTTPBindingRule requires a google.api.http binding on every
// non-streaming method.
func NewHTTPBindingRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "method-http-binding",
		Title:    "Methods must declare an HTTP binding",
		Kinds:    []schema.Kind{schema.KindMethod},
		Severity: catalog.SeverityMust,
		Applies: func(node schema.Node, _ *catalog.Context) bool {
			m := asMethod(node)
			return m != nil && !m.ClientStreaming && !m.ServerStreaming
		},
		Check: func(node schema.Node, _ *catalog.Context) []catalog.Problem {
			if asMethod(node).HTTP == nil {
				return []catalog.Problem{{
					Message:    fmt.Sprintf("method %q has no google.api.http binding", node.Name()),
					Suggestion: "add an `option (google.api.http)` annotation",
				}}
			}
			return nil
		},
	}
}

// NewStandardMethodVerbRule recommends that method names begin with a
// recognized standard verb.
func NewStandardMethodVerbRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "method-standard-verb",
		Title:    "Method names should begin with a standard verb",
		Kinds:    []schema.Kind{schema.KindMethod},
		Severity: catalog.SeverityShould,
		Check: func(node schema.Node, _ *catalog.Context) []catalog.Problem {
			if methodVerb(node.Name()) == "" {
				return []catalog.Problem{{
					Message: fmt.Sprintf("method name %q does not begin with a standard verb (Get, List, Create, Update, Delete, ...)", node.Name()),
				}}
			}
			return nil
		},
	}
}

// NewRequestNamingRule recommends the <MethodName>Request convention for
// standard-verb methods.
func NewRequestNamingRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "method-request-naming",
		Title:    "Standard method requests should be named <Method>Request",
		Kinds:    []schema.Kind{schema.KindMethod},
		Severity: catalog.SeverityShould,
		Applies: func(node schema.Node, _ *catalog.Context) bool {
			m := asMethod(node)
			return m != nil && methodVerb(m.Name()) != ""
		},
		Check: func(node schema.Node, _ *catalog.Context) []catalog.Problem {
			m := asMethod(node)
			want := m.Name() + "Request"
			got := m.RequestType[strings.LastIndex(m.RequestType, ".")+1:]
			if got != want {
				return []catalog.Problem{{
					Message:    fmt.Sprintf("method %q takes %q, expected %q", m.Name(), got, want),
					Suggestion: fmt.Sprintf("rename the request message to %s", want),
				}}
			}
			return nil
		},
	}
}

// NewSynchronousResponseRule forbids long-running responses on Get and
// List, which callers expect to answer directly.
func NewSynchronousResponseRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "method-synchronous-response",
		Title:    "Get and List methods must not return Operation",
		Kinds:    []schema.Kind{schema.KindMethod},
		Severity: catalog.SeverityMust,
		Applies: func(node schema.Node, _ *catalog.Context) bool {
			m := asMethod(node)
			if m == nil {
				return false
			}
			verb := methodVerb(m.Name())
			return verb == "Get" || verb == "List"
		},
		Check: func(node schema.Node, _ *catalog.Context) []catalog.Problem {
			m := asMethod(node)
			if m.ResponseType == "google.longrunning.Operation" {
				return []catalog.Problem{{
					Message: fmt.Sprintf("method %q returns google.longrunning.Operation; retrieval methods answer synchronously", m.Name()),
				}}
			}
			return nil
		},
	}
}

// NewGetRequestNameRule requires Get request messages to carry a singular
// string `name` field identifying the resource.
func NewGetRequestNameRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "get-request-name-field",
		Title:    "Get requests must have a `name` field",
		Kinds:    []schema.Kind{schema.KindMethod},
		Severity: catalog.SeverityMust,
		Applies:  methodHasVerb("Get"),
		Check: func(node schema.Node, ctx *catalog.Context) []catalog.Problem {
			m := asMethod(node)
			req, ok := ctx.Model.Resolve(m.RequestType)
			if !ok {
				return nil
			}
			for _, child := range ctx.Model.Children(req.Path()) {
				if f, ok := child.(*schema.FieldNode); ok && f.Name() == "name" {
					if f.TypeName != "string" || f.Repeated {
						return []catalog.Problem{{
							Message: fmt.Sprintf("field %q of %s must be a singular string", f.Name(), req.Name()),
						}}
					}
					return nil
				}
			}
			return []catalog.Problem{{
				Message:    fmt.Sprintf("request message %q has no `name` field", req.Name()),
				Suggestion: "add `string name = 1` identifying the resource to retrieve",
			}}
		},
	}
}

// NewGetResponseResourceRule recommends that a Get method return the
// resource named in the method itself rather than a wrapper message.
func NewGetResponseResourceRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "get-response-resource",
		Title:    "Get methods should return the resource",
		Kinds:    []schema.Kind{schema.KindMethod},
		Severity: catalog.SeverityShould,
		Applies:  methodHasVerb("Get"),
		Check: func(node schema.Node, _ *catalog.Context) []catalog.Problem {
			m := asMethod(node)
			want := strings.TrimPrefix(m.Name(), "Get")
			got := m.ResponseType[strings.LastIndex(m.ResponseType, ".")+1:]
			if got != want {
				return []catalog.Problem{{
					Message:    fmt.Sprintf("method %q returns %q, expected the %q resource", m.Name(), got, want),
					Suggestion: fmt.Sprintf("return %s directly", want),
				}}
			}
			return nil
		},
	}
}

// NewListResponseShapeRule requires List responses to carry the repeated
// resource plus a next_page_token for pagination.
func NewListResponseShapeRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "list-response-shape",
		Title:    "List responses must be paginated resource collections",
		Kinds:    []schema.Kind{schema.KindMethod},
		Severity: catalog.SeverityMust,
		Applies:  methodHasVerb("List"),
		Check: func(node schema.Node, ctx *catalog.Context) []catalog.Problem {
			m := asMethod(node)
			resp, ok := ctx.Model.Resolve(m.ResponseType)
			if !ok {
				return nil
			}
			var problems []catalog.Problem
			var hasRepeated, hasToken bool
			for _, child := range ctx.Model.Children(resp.Path()) {
				f, ok := child.(*schema.FieldNode)
				if !ok {
					continue
				}
				if f.Repeated && f.IsMessage {
					hasRepeated = true
				}
				if f.Name() == "next_page_token" && f.TypeName == "string" {
					hasToken = true
				}
			}
			if !hasRepeated {
				problems = append(problems, catalog.Problem{
					Message: fmt.Sprintf("response message %q has no repeated resource field", resp.Name()),
				})
			}
			if !hasToken {
				problems = append(problems, catalog.Problem{
					Message:    fmt.Sprintf("response message %q has no `next_page_token` field", resp.Name()),
					Suggestion: "add `string next_page_token` for pagination",
				})
			}
			return problems
		},
	}
}

// NewListRequestShapeRule recommends parent/page_size/page_token fields on
// List requests.
func NewListRequestShapeRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "list-request-shape",
		Title:    "List requests should support pagination",
		Kinds:    []schema.Kind{schema.KindMethod},
		Severity: catalog.SeverityShould,
		Applies:  methodHasVerb("List"),
		Check: func(node schema.Node, ctx *catalog.Context) []catalog.Problem {
			m := asMethod(node)
			req, ok := ctx.Model.Resolve(m.RequestType)
			if !ok {
				return nil
			}
			present := make(map[string]bool)
			for _, child := range ctx.Model.Children(req.Path()) {
				if f, ok := child.(*schema.FieldNode); ok {
					present[f.Name()] = true
				}
			}
			var problems []catalog.Problem
			for _, want := range []string{"parent", "page_size", "page_token"} {
				if !present[want] {
					problems = append(problems, catalog.Problem{
						Message: fmt.Sprintf("request message %q is missing the `%s` field", req.Name(), want),
					})
				}
			}
			return problems
		},
	}
}

// NewUpdateRequestMaskRule recommends an update_mask on Update requests so
// partial updates are expressible.
func NewUpdateRequestMaskRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "update-request-mask",
		Title:    "Update requests should carry an update_mask",
		Kinds:    []schema.Kind{schema.KindMethod},
		Severity: catalog.SeverityShould,
		Applies:  methodHasVerb("Update"),
		Check: func(node schema.Node, ctx *catalog.Context) []catalog.Problem {
			m := asMethod(node)
			req, ok := ctx.Model.Resolve(m.RequestType)
			if !ok {
				return nil
			}
			for _, child := range ctx.Model.Children(req.Path()) {
				if f, ok := child.(*schema.FieldNode); ok && f.Name() == "update_mask" {
					return nil
				}
			}
			return []catalog.Problem{{
				Message:    fmt.Sprintf("request message %q has no `update_mask` field", req.Name()),
				Suggestion: "add `google.protobuf.FieldMask update_mask`",
			}}
		},
	}
}

// NewDeleteResponseRule requires Delete methods to return Empty, the
// deleted resource, or a long-running operation.
func NewDeleteResponseRule() *catalog.Rule {
	return &catalog.Rule{
		ID:       "delete-response-type",
		Title:    "Delete methods must return Empty, the resource, or an Operation",
		Kinds:    []schema.Kind{schema.KindMethod},
		Severity: catalog.SeverityMust,
		Applies:  methodHasVerb("Delete"),
		Check: func(node schema.Node, _ *catalog.Context) []catalog.Problem {
			m := asMethod(node)
			resource := strings.TrimPrefix(m.Name(), "Delete")
			short := m.ResponseType[strings.LastIndex(m.ResponseType, ".")+1:]
			switch {
			case m.ResponseType == "google.protobuf.Empty":
				return nil
			case m.ResponseType == "google.longrunning.Operation":
				return nil
			case short == resource:
				return nil
			}
			return []catalog.Problem{{
				Message: fmt.Sprintf("method %q returns %q; delete methods return Empty, the deleted resource, or an Operation", m.Name(), short),
			}}
		},
	}
}
