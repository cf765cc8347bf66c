// Package async provides the parallel map primitive the evaluation engine
// schedules (rule, node) units on.
//
// # Overview
//
// Map fans a slice of independent units out over a fixed worker pool.
// Each worker appends results to its own local buffer; buffers are merged
// only after the workers have been joined, never interleaved, so the
// merged result set is independent of scheduling order.
//
// # Cancellation
//
// When the context is cancelled, workers stop picking up new units.
// In-flight units are given a bounded grace period to finish; if the
// grace period elapses the remaining workers are abandoned and their
// buffers excluded. The returned flag reports whether every unit was
// processed, so callers can distinguish a clean result from a truncated
// one.
//
// # Panic Safety
//
// A panicking unit function never takes down a worker; the panic is
// recovered and reported through the unit callback's own error handling.
package async
