package schema

import "strings"

// Model is the immutable node graph for one descriptor input. All lookup
// methods are safe for concurrent use; nothing mutates a Model after Load
// returns it.
type Model struct {
	nodes    map[string]Node
	children map[string][]string
	// order holds node paths in deterministic pre-order: files in input
	// order, declarations in declaration order, a node before its children.
	order []string
}

// Node returns the node at the given path.
func (m *Model) Node(path string) (Node, bool) {
	n, ok := m.nodes[path]
	return n, ok
}

// Len returns the number of nodes in the model.
func (m *Model) Len() int { return len(m.order) }

// Children returns the direct children of the node at path, in
// declaration order. An unknown path yields nil.
func (m *Model) Children(path string) []Node {
	paths := m.children[path]
	if len(paths) == 0 {
		return nil
	}
	out := make([]Node, 0, len(paths))
	for _, p := range paths {
		out = append(out, m.nodes[p])
	}
	return out
}

// AncestorsOf returns the chain of enclosing nodes from the immediate
// parent outward. Path segments that are not nodes (the package prefix)
// are skipped.
func (m *Model) AncestorsOf(path string) []Node {
	var out []Node
	n, ok := m.nodes[path]
	if !ok {
		return nil
	}
	for parent := n.ParentPath(); parent != ""; {
		pn, ok := m.nodes[parent]
		if !ok {
			break
		}
		out = append(out, pn)
		parent = pn.ParentPath()
	}
	return out
}

// Resolve looks up a type reference (a full message or enum name, with or
// without the leading dot) and returns the referenced node.
func (m *Model) Resolve(typeRef string) (Node, bool) {
	n, ok := m.nodes[strings.TrimPrefix(typeRef, ".")]
	return n, ok
}

// AllNodesOfKind returns every node of the given kind in pre-order.
func (m *Model) AllNodesOfKind(kind Kind) []Node {
	var out []Node
	for _, p := range m.order {
		if n := m.nodes[p]; n.Kind() == kind {
			out = append(out, n)
		}
	}
	return out
}

// Walk visits every node in deterministic pre-order. Returning false from
// the callback stops the walk.
func (m *Model) Walk(fn func(Node) bool) {
	for _, p := range m.order {
		if !fn(m.nodes[p]) {
			return
		}
	}
}

// Nodes returns all node paths in pre-order. The returned slice is shared;
// callers must not modify it.
func (m *Model) Nodes() []string { return m.order }

// add indexes a node. The first node at a path wins; a duplicate would
// otherwise leave order with two entries for one surviving node.
func (m *Model) add(n Node) {
	path := n.Path()
	if _, ok := m.nodes[path]; ok {
		return
	}
	m.nodes[path] = n
	m.order = append(m.order, path)
	if parent := n.ParentPath(); parent != "" {
		m.children[parent] = append(m.children[parent], path)
	}
}

func newModel() *Model {
	return &Model{
		nodes:    make(map[string]Node),
		children: make(map[string][]string),
	}
}
