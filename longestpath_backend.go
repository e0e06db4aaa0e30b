package buildsignals

import (
	"errors"
	"fmt"
	"time"

	"github.com/distr1/buildsignals/internal/graphmodel"
	"github.com/distr1/buildsignals/internal/trace"
)

// visibilityEdge records that artifacts were only decided to be built
// once analysis finished evaluating -- the "I only knew I needed to
// build this after finishing that" relationship from the glossary.
type visibilityEdge struct {
	node         NodeKey
	makesVisible []NodeKey
}

// longestPathGraphBackend batches the whole build graph and, at
// finalize, runs an exact longest-path-with-potentials analysis. A graph
// overflow poisons it; once poisoned it silently drops further
// process_node calls and finish reports the error. A cycle, or a
// duration that doesn't fit a uint64 microsecond count, is reported as
// an error by finish itself.
type longestPathGraphBackend struct {
	builder    *graphmodel.GraphBuilder[NodeKey, NodeData]
	visibility []visibilityEdge
	poisoned   error
	softErrors *SoftErrorCounter
}

func newLongestPathGraphBackend(soft *SoftErrorCounter) *longestPathGraphBackend {
	return &longestPathGraphBackend{
		builder:    graphmodel.New[NodeKey, NodeData](),
		softErrors: soft,
	}
}

func (b *longestPathGraphBackend) processNode(key NodeKey, action *ActionHandle, duration NodeDuration, depKeys []NodeKey, spans []trace.SpanID) {
	if b.poisoned != nil {
		return
	}

	err := b.builder.Push(key, depKeys, NodeData{Action: action, Duration: duration, Spans: spans})
	if err == nil {
		return
	}

	var dup *graphmodel.DuplicateKeyError
	if errors.As(err, &dup) {
		b.softErrors.record("critical_path_duplicate_key", err)
		return
	}

	// Anything else (graph overflow) is fatal: poison the backend but
	// keep draining the queue so the receiver loop doesn't stall.
	b.poisoned = err
}

func (b *longestPathGraphBackend) processTopLevelTarget(analysis NodeKey, artifacts []NodeKey) {
	if b.poisoned != nil {
		return
	}
	b.visibility = append(b.visibility, visibilityEdge{node: analysis, makesVisible: artifacts})
}

// allowsVisibilityTraversal reports whether the first-analysis traversal
// (see finish) is allowed to cross a vertex of this kind: only vertices
// that themselves produce artifacts are crossed; any other kind stops
// the traversal.
func allowsVisibilityTraversal(k Kind) bool {
	switch k {
	case KindBuildKey, KindEnsureTransitiveSetProjectionKey, KindEnsureProjectedArtifactKey:
		return true
	default:
		return false
	}
}

func (b *longestPathGraphBackend) finish() (BuildInfo, error) {
	if b.poisoned != nil {
		return BuildInfo{}, b.poisoned
	}

	g := b.builder.Finish()

	firstAnalysis := make([]graphmodel.OptionalVertex, g.Len())
	for i := range firstAnalysis {
		firstAnalysis[i] = graphmodel.NoVertex
	}
	labeled := 0

	for _, ve := range b.visibility {
		analysisVertex, ok := g.VertexOf(ve.node)
		if !ok {
			continue // nothing depends on this analysis
		}

		var queue []int64
		for _, artifact := range ve.makesVisible {
			if av, ok := g.VertexOf(artifact); ok {
				queue = append(queue, av)
			}
			// Not built. Unexpected, but signals aren't reported in
			// every failure case, so this can legitimately happen.
		}

		for len(queue) > 0 {
			v := queue[len(queue)-1]
			queue = queue[:len(queue)-1]

			if firstAnalysis[v].IsSet() {
				continue
			}
			if !allowsVisibilityTraversal(g.KeyAt(v).Kind()) {
				continue
			}

			firstAnalysis[v] = graphmodel.OptionalVertex(analysisVertex)
			labeled++
			queue = append(queue, g.Successors(v)...)
		}
	}

	if err := g.AddEdges(firstAnalysis, labeled); err != nil {
		return BuildInfo{}, fmt.Errorf("error adding first-analysis edges to graph: %w", err)
	}

	durations := make([]uint64, g.Len())
	for v := 0; v < g.Len(); v++ {
		micros := g.DataAt(int64(v)).Duration.CriticalPathDuration().Microseconds()
		if micros < 0 {
			return BuildInfo{}, fmt.Errorf("duration exceeds u64 at vertex %d", v)
		}
		durations[v] = uint64(micros)
	}

	result, err := graphmodel.ComputeCriticalPathPotentials(g, durations)
	if err != nil {
		return BuildInfo{}, fmt.Errorf("error computing critical path potentials: %w", err)
	}

	entries := make([]criticalPathEntry, len(result.Path))
	for i, v := range result.Path {
		key := g.KeyAt(v)
		data := g.TakeDataAt(v)
		potential := time.Duration(result.TotalCost-result.ReplacementCosts[i]) * time.Microsecond
		entries[i] = criticalPathEntry{Key: key, Data: data, PotentialImprovement: &potential}
	}

	return BuildInfo{
		CriticalPath: entries,
		NumNodes:     uint64(g.Len()),
		NumEdges:     g.EdgesCount(),
	}, nil
}

func (b *longestPathGraphBackend) name() CriticalPathBackendName { return BackendLongestPathGraph }

var _ backend = (*longestPathGraphBackend)(nil)
