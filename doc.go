// Package buildsignals reconstructs a build's dependency graph from a
// stream of per-key activation signals, computes its critical path, and
// reports the result once the build finishes.
//
// Producers (the build engine) call methods on a BuildSignals /
// ActivationTracker pair obtained from Scope. A single background
// goroutine drains the resulting signals, applies load enrichment, and
// forwards them to one of two interchangeable critical-path backends.
package buildsignals
