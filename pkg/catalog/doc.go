// Package catalog holds the registry of API design rules.
//
// A rule is a stable identifier plus a target node kind set, an
// applicability predicate, a check function, and a default severity.
// Rules are registered once at startup and the catalog is read-only for
// the rest of the process lifetime; registration order is preserved and
// used as the final tie-break when findings are sorted.
//
// Predicates and checks must be pure functions of the node (and the
// read-only model reachable through Context). The catalog never caches
// predicate results because the schema model is rebuilt every run.
package catalog
