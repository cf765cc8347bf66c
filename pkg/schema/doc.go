// Package schema builds an immutable, read-only model of a protobuf API
// surface from a serialized descriptor input.
//
// # Overview
//
// A Model is a tree of nodes (services, methods, messages, fields, enums,
// enum values, options) plus a path index. It is built once per lint run
// from either a binary FileDescriptorSet or raw .proto source (compiled
// with protocompile), and is never mutated afterwards.
//
// # Node Identity
//
// Every node has a stable dotted path (e.g. "library.v1.LibraryService.GetBook")
// which is the sole identity used for suppression scoping and finding
// correlation. Cross references such as a method's request type are stored
// as paths and resolved through the model's index, never as node pointers.
//
// # Usage Example
//
//	model, err := schema.Load("library.proto", content)
//	if err != nil {
//		var perr *schema.ParseError
//		if errors.As(err, &perr) {
//			// malformed input, no lint run possible
//		}
//	}
//
//	for _, m := range model.AllNodesOfKind(schema.KindMethod) {
//		method := m.(*schema.MethodNode)
//		req, _ := model.Resolve(method.RequestType)
//		_ = req
//	}
//
// # Related Packages
//
//   - pkg/catalog: rules evaluated against schema nodes
//   - pkg/suppress: reads node comments for inline directives
package schema
