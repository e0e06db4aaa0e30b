package graphmodel

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"
)

// PotentialsResult is the outcome of ComputeCriticalPathPotentials: the
// critical path itself (root to tail, as vertex indices) plus the
// total cost and, for each path vertex, what the total cost would be
// if that vertex's own duration were replaced with zero.
type PotentialsResult struct {
	Path             []int64
	TotalCost        uint64
	ReplacementCosts []uint64
}

// ComputeCriticalPathPotentials finds the longest path through g
// (weighted by durations, indexed by vertex) and, for every vertex on
// that path, recomputes the longest path with just that vertex's
// duration zeroed out. The difference between the original total cost
// and each replacement cost is the vertex's potential improvement.
//
// This takes the straightforward recompute-per-vertex approach the
// core spec's own purpose section describes ("recomputing replacement
// paths"): one full longest-path pass per critical-path vertex, rather
// than the single-pass O(V+E) technique a production implementation
// would use. Correctness, not asymptotic complexity, is this package's
// concern; see SPEC_FULL.md / DESIGN.md for the trade-off.
func ComputeCriticalPathPotentials[K comparable, V any](g *Graph[K, V], durations []uint64) (PotentialsResult, error) {
	order, err := topo.Sort(g.directed())
	if err != nil {
		return PotentialsResult{}, fmt.Errorf("graphmodel: cycle detected while computing critical path: %w", err)
	}

	depsFirst := make([]graph.Node, len(order))
	for i, n := range order {
		depsFirst[len(order)-1-i] = n
	}

	_, prev, totalCost, tail := longestPath(depsFirst, g.Successors, durations)

	var path []int64
	for v := tail; v != -1; v = prev[v] {
		path = append(path, v)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	replacementCosts := make([]uint64, len(path))
	for i, v := range path {
		zeroed := append([]uint64(nil), durations...)
		zeroed[v] = 0
		_, _, cost, _ := longestPath(depsFirst, g.Successors, zeroed)
		replacementCosts[i] = cost
	}

	return PotentialsResult{
		Path:             path,
		TotalCost:        totalCost,
		ReplacementCosts: replacementCosts,
	}, nil
}

// longestPath computes, for a graph visited in dependency-first order
// (depsFirst), the longest weighted path ending at each vertex, where
// successorsOf(v) returns v's dependency vertices (already computed,
// since depsFirst guarantees they're visited before v). Ties among
// competing predecessors are broken by lowest vertex index, since
// successorsOf returns ascending order and strict improvement is
// required to replace the incumbent.
func longestPath(depsFirst []graph.Node, successorsOf func(int64) []int64, durations []uint64) (cumulative []uint64, prev []int64, totalCost uint64, tail int64) {
	n := len(durations)
	cumulative = make([]uint64, n)
	prev = make([]int64, n)
	for i := range prev {
		prev[i] = -1
	}

	for _, node := range depsFirst {
		v := node.ID()
		var best uint64
		bestDep := int64(-1)
		for _, d := range successorsOf(v) {
			if cumulative[d] > best {
				best = cumulative[d]
				bestDep = d
			}
		}
		cumulative[v] = durations[v] + best
		prev[v] = bestDep
	}

	tail = -1
	for v := 0; v < n; v++ {
		if tail == -1 || cumulative[int64(v)] > totalCost {
			tail = int64(v)
			totalCost = cumulative[int64(v)]
		}
	}

	return cumulative, prev, totalCost, tail
}
