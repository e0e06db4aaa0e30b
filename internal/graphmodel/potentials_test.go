package graphmodel

import "testing"

// Scenario 6 from the critical-path testable properties: chain
// A(1s) -> B(10s) -> C(1s) plus a parallel A -> D(5s) -> C. Total
// critical-path cost is 12s (A, B, C); potential(B) = 5s, potential(D) = 0.
func TestComputeCriticalPathPotentialsScenario6(t *testing.T) {
	b := New[string, struct{}]()
	// Deps point from a node to what it depends on; A is the root with
	// no deps, B and D depend on A, C depends on both B and D.
	if err := b.Push("A", nil, struct{}{}); err != nil {
		t.Fatalf("Push(A): %v", err)
	}
	if err := b.Push("B", []string{"A"}, struct{}{}); err != nil {
		t.Fatalf("Push(B): %v", err)
	}
	if err := b.Push("D", []string{"A"}, struct{}{}); err != nil {
		t.Fatalf("Push(D): %v", err)
	}
	if err := b.Push("C", []string{"B", "D"}, struct{}{}); err != nil {
		t.Fatalf("Push(C): %v", err)
	}
	g := b.Finish()

	durations := make([]uint64, g.Len())
	set := func(key string, d uint64) {
		v, ok := g.VertexOf(key)
		if !ok {
			t.Fatalf("VertexOf(%s) not found", key)
		}
		durations[v] = d
	}
	set("A", 1)
	set("B", 10)
	set("D", 5)
	set("C", 1)

	result, err := ComputeCriticalPathPotentials(g, durations)
	if err != nil {
		t.Fatalf("ComputeCriticalPathPotentials() error: %v", err)
	}

	if result.TotalCost != 12 {
		t.Errorf("TotalCost = %d, want 12", result.TotalCost)
	}

	wantPath := []string{"A", "B", "C"}
	if len(result.Path) != len(wantPath) {
		t.Fatalf("len(Path) = %d, want %d", len(result.Path), len(wantPath))
	}
	for i, key := range wantPath {
		v, _ := g.VertexOf(key)
		if result.Path[i] != v {
			t.Errorf("Path[%d] = %d (key %v), want vertex of %s", i, result.Path[i], g.KeyAt(result.Path[i]), key)
		}
	}

	bIndex, dIndex := -1, -1
	for i, v := range result.Path {
		if g.KeyAt(v) == "B" {
			bIndex = i
		}
		if g.KeyAt(v) == "D" {
			dIndex = i
		}
	}
	if bIndex == -1 {
		t.Fatalf("B not found on critical path")
	}
	if got := result.TotalCost - result.ReplacementCosts[bIndex]; got != 5 {
		t.Errorf("potential(B) = %d, want 5", got)
	}
	if dIndex != -1 {
		if got := result.TotalCost - result.ReplacementCosts[dIndex]; got != 0 {
			t.Errorf("potential(D) = %d, want 0", got)
		}
	}
}

func TestComputeCriticalPathPotentialsCycleIsAnError(t *testing.T) {
	b := New[string, struct{}]()
	b.Push("a", []string{"b"}, struct{}{})
	b.Push("b", []string{"a"}, struct{}{})
	g := b.Finish()

	durations := make([]uint64, g.Len())
	if _, err := ComputeCriticalPathPotentials(g, durations); err == nil {
		t.Errorf("ComputeCriticalPathPotentials() on a cyclic graph = nil error, want an error")
	}
}

func TestLongestPathTieBreaksByLowestIndex(t *testing.T) {
	b := New[string, struct{}]()
	// x and y are equal-cost dependencies of head; the lower vertex
	// index ("x", pushed first) must win the tie and appear as head's
	// immediate predecessor on the reconstructed path.
	b.Push("head", []string{"x", "y"}, struct{}{})
	b.Push("x", nil, struct{}{})
	b.Push("y", nil, struct{}{})
	g := b.Finish()

	durations := make([]uint64, g.Len())
	headV, _ := g.VertexOf("head")
	xV, _ := g.VertexOf("x")
	yV, _ := g.VertexOf("y")
	durations[headV] = 1
	durations[xV] = 5
	durations[yV] = 5

	result, err := ComputeCriticalPathPotentials(g, durations)
	if err != nil {
		t.Fatalf("ComputeCriticalPathPotentials() error: %v", err)
	}
	if len(result.Path) != 2 {
		t.Fatalf("len(Path) = %d, want 2 (x, head)", len(result.Path))
	}
	// head has the highest cumulative duration (1 + 5) and is the tail
	// of the dependency chain, so it is last after reversal.
	if result.Path[len(result.Path)-1] != headV {
		t.Errorf("Path[last] = %d (key %v), want head", result.Path[len(result.Path)-1], g.KeyAt(result.Path[len(result.Path)-1]))
	}
	if result.Path[0] != xV {
		t.Errorf("Path[0] = %d (key %v), want x, the lower-indexed tie-break winner", result.Path[0], g.KeyAt(result.Path[0]))
	}
}
