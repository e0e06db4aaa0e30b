package buildsignals

import (
	"fmt"
	"time"

	"github.com/distr1/buildsignals/internal/trace"
)

// criticalPathNode is the per-key record kept by the default backend: a
// predecessor pointer plus the aggregate critical-path duration ending
// at this node.
type criticalPathNode struct {
	cumulative time.Duration
	value      NodeData
	prev       *NodeKey
}

// defaultBackend is the streaming longest-path-by-predecessor backend.
// It never looks at top-level targets and requires no batch finalize
// pass beyond walking the predecessor chain it already maintains.
type defaultBackend struct {
	predecessors map[NodeKey]criticalPathNode
	// order records first-insertion order so that both dependency
	// tie-breaks and the final max-cumulative tie-break are
	// deterministic rather than dependent on Go's randomized map
	// iteration order.
	order    []NodeKey
	numNodes uint64
	numEdges uint64
}

func newDefaultBackend() *defaultBackend {
	return &defaultBackend{predecessors: make(map[NodeKey]criticalPathNode)}
}

// dedupeKeepOrder removes duplicate keys from deps, keeping only the
// first occurrence of each.
func dedupeKeepOrder(deps []NodeKey) []NodeKey {
	seen := make(map[NodeKey]struct{}, len(deps))
	out := make([]NodeKey, 0, len(deps))
	for _, k := range deps {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func (b *defaultBackend) processNode(key NodeKey, action *ActionHandle, duration NodeDuration, depKeys []NodeKey, spans []trace.SpanID) {
	deduped := dedupeKeepOrder(depKeys)

	var chosen NodeKey
	var chosenCumulative time.Duration
	found := false
	for _, dep := range deduped {
		b.numEdges++
		node, ok := b.predecessors[dep]
		if !ok {
			continue
		}
		// Strict greater-than keeps the first-seen dep on ties, per
		// the tie-break rule this backend documents.
		if !found || node.cumulative > chosenCumulative {
			chosen = dep
			chosenCumulative = node.cumulative
			found = true
		}
	}

	value := NodeData{Action: action, Duration: duration, Spans: spans}

	var node criticalPathNode
	if found {
		prev := chosen
		node = criticalPathNode{
			cumulative: chosenCumulative + duration.CriticalPathDuration(),
			value:      value,
			prev:       &prev,
		}
	} else {
		node = criticalPathNode{
			cumulative: duration.CriticalPathDuration(),
			value:      value,
		}
	}

	if _, exists := b.predecessors[key]; !exists {
		b.order = append(b.order, key)
	}
	b.predecessors[key] = node
	b.numNodes++
}

func (b *defaultBackend) processTopLevelTarget(NodeKey, []NodeKey) {
	// The default backend has no use for visibility information: it
	// only ever follows explicit dependency edges.
}

// pathStep is one step produced while walking the predecessor chain,
// before it is converted into a criticalPathEntry.
type pathStep struct {
	Key      NodeKey
	Data     NodeData
	Duration time.Duration
}

// extractCriticalPath selects the node with the maximum cumulative
// duration, walks its predecessor chain back to a root, and reverses
// the result into root-to-tail order. Ties in both the dependency
// tie-break and this max-selection are broken by first-insertion order
// (see defaultBackend.order), which is deterministic.
//
// The returned Duration per step is each node's own contribution,
// recovered by taking the saturating difference of adjacent cumulative
// durations -- by construction this always equals the node's own
// NodeData.Duration.CriticalPathDuration(), since cumulative sums are
// built as exactly prev.cumulative + this.duration; the diff is kept
// here because it's what the invariant in the core spec's testable
// properties describes and verifies.
func extractCriticalPath(predecessors map[NodeKey]criticalPathNode, order []NodeKey) ([]pathStep, error) {
	if len(order) == 0 {
		return nil, nil
	}

	var tail NodeKey
	var tailCumulative time.Duration
	found := false
	for _, k := range order {
		node := predecessors[k]
		if !found || node.cumulative > tailCumulative {
			tail = k
			tailCumulative = node.cumulative
			found = true
		}
	}

	var path []pathStep
	visited := make(map[NodeKey]struct{}, len(order))
	cur := tail
	for {
		if _, seen := visited[cur]; seen {
			return nil, fmt.Errorf("cycle in critical path: visited %s twice", cur)
		}
		visited[cur] = struct{}{}
		node := predecessors[cur]
		path = append(path, pathStep{Key: cur, Data: node.value, Duration: node.cumulative})
		if node.prev == nil {
			break
		}
		cur = *node.prev
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	for i := len(path) - 1; i >= 1; i-- {
		path[i].Duration = saturatingSub(path[i].Duration, path[i-1].Duration)
	}

	return path, nil
}

func (b *defaultBackend) finish() (BuildInfo, error) {
	path, err := extractCriticalPath(b.predecessors, b.order)
	if err != nil {
		return BuildInfo{}, fmt.Errorf("error extracting critical path: %w", err)
	}

	entries := make([]criticalPathEntry, len(path))
	for i, step := range path {
		entries[i] = criticalPathEntry{Key: step.Key, Data: step.Data}
	}

	return BuildInfo{
		CriticalPath: entries,
		NumNodes:     b.numNodes,
		NumEdges:     b.numEdges,
	}, nil
}

func (b *defaultBackend) name() CriticalPathBackendName { return BackendDefault }

var _ backend = (*defaultBackend)(nil)
