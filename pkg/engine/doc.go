// Package engine drives a lint run through its state machine: load the
// schema model, evaluate every applicable rule against every node on a
// worker pool, resolve suppressions, and aggregate the findings.
//
// # Failure Isolation
//
// A panic inside one rule's predicate or check is caught at the
// (rule, node) boundary and converted into an internal-error finding for
// that pair; every other pair still runs. One broken rule never aborts a
// run.
//
// # Determinism
//
// Evaluation units are independent and workers buffer findings locally,
// so for a fixed (model, catalog, config) the aggregated, sorted finding
// sequence is identical across runs and worker-pool sizes.
//
// # Cancellation
//
// The run honors its context. On cancellation, in-flight checks get a
// bounded grace period; the result is returned with Incomplete set rather
// than silently truncated.
package engine
