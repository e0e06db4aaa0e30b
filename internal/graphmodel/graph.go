// Package graphmodel is the batch graph builder backing the
// longest-path-graph critical-path backend. Vertices are built up one
// push at a time (mirroring the teacher's own gonum-graph-based DAG in
// its batch builder), then finalized into an immutable Graph that
// supports one further mutation: adding the synthetic "first analysis"
// edges discovered while walking top-level target visibility.
package graphmodel

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// ErrOverflow reports that the graph ran out of vertex indices to
// allocate. Fatal: the GraphBuilder must be discarded.
var ErrOverflow = errors.New("graphmodel: graph overflow")

// maxVertices bounds vertex indices well under int64 so arithmetic on
// them (as happens in the potentials computation) never risks overflow
// in practice; real builds evaluate orders of magnitude fewer keys.
const maxVertices = int64(1) << 40

// DuplicateKeyError reports that Push saw the same key twice. It is
// non-fatal: the second Push is dropped and the first insertion is
// kept.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("graphmodel: duplicate key %s", e.Key)
}

// vertexNode adapts a plain vertex index to gonum's graph.Node.
type vertexNode int64

func (n vertexNode) ID() int64 { return int64(n) }

// GraphBuilder accumulates vertices (one per key, carrying a V payload)
// and directed edges from each key to its dependencies. It is not safe
// for concurrent use; callers serialize access to it (the receiver loop
// is always single-threaded).
type GraphBuilder[K comparable, V any] struct {
	g        *simple.DirectedGraph
	index    map[K]int64
	keys     []K
	data     []V
	pushed   []bool
	numEdges uint64
}

// New creates an empty GraphBuilder.
func New[K comparable, V any]() *GraphBuilder[K, V] {
	return &GraphBuilder[K, V]{
		g:     simple.NewDirectedGraph(),
		index: make(map[K]int64),
	}
}

func (b *GraphBuilder[K, V]) vertexFor(key K) (int64, error) {
	if id, ok := b.index[key]; ok {
		return id, nil
	}
	id := int64(len(b.keys))
	if id >= maxVertices {
		return 0, ErrOverflow
	}
	b.index[key] = id
	b.keys = append(b.keys, key)
	var zero V
	b.data = append(b.data, zero)
	b.pushed = append(b.pushed, false)
	b.g.AddNode(vertexNode(id))
	return id, nil
}

// Push records key's value and its directed edges to deps (an edge
// from key's vertex to each dependency's vertex). Dependencies are
// allocated a vertex eagerly, even before they are themselves pushed,
// so that edges are always valid; a dependency that is never pushed
// directly simply keeps its zero-valued V.
//
// Pushing the same key twice returns a *DuplicateKeyError (non-fatal;
// the first insertion wins). Running out of vertex indices returns the
// fatal ErrOverflow, at which point the GraphBuilder must not be used
// again.
func (b *GraphBuilder[K, V]) Push(key K, deps []K, value V) error {
	id, err := b.vertexFor(key)
	if err != nil {
		return err
	}
	if b.pushed[id] {
		return &DuplicateKeyError{Key: fmt.Sprint(key)}
	}
	b.pushed[id] = true
	b.data[id] = value

	for _, dep := range deps {
		depID, err := b.vertexFor(dep)
		if err != nil {
			return err
		}
		if depID == id {
			continue
		}
		if !b.g.HasEdgeFromTo(id, depID) {
			b.g.SetEdge(b.g.NewEdge(vertexNode(id), vertexNode(depID)))
			b.numEdges++
		}
	}
	return nil
}

// Finish closes out the builder, returning an immutable Graph. The
// builder must not be used again afterwards.
func (b *GraphBuilder[K, V]) Finish() *Graph[K, V] {
	return &Graph[K, V]{
		g:        b.g,
		index:    b.index,
		keys:     b.keys,
		data:     b.data,
		numEdges: b.numEdges,
	}
}

// Graph is a finalized GraphBuilder: vertices and normal edges are
// fixed, but AddEdges may still append the synthetic visibility edges
// computed during backend finalize.
type Graph[K comparable, V any] struct {
	g        *simple.DirectedGraph
	index    map[K]int64
	keys     []K
	data     []V
	numEdges uint64
}

// Len returns the number of vertices in the graph.
func (g *Graph[K, V]) Len() int { return len(g.keys) }

// EdgesCount returns the number of directed edges in the graph,
// including any synthetic edges added via AddEdges.
func (g *Graph[K, V]) EdgesCount() uint64 { return g.numEdges }

// VertexOf looks up the vertex index for key, if it was ever pushed or
// referenced as a dependency.
func (g *Graph[K, V]) VertexOf(key K) (int64, bool) {
	id, ok := g.index[key]
	return id, ok
}

// KeyAt returns the key at vertex v.
func (g *Graph[K, V]) KeyAt(v int64) K { return g.keys[v] }

// DataAt returns the value at vertex v without consuming it.
func (g *Graph[K, V]) DataAt(v int64) V { return g.data[v] }

// TakeDataAt returns the value at vertex v and replaces it with the
// zero value of V. Each vertex's data should only ever be taken once.
func (g *Graph[K, V]) TakeDataAt(v int64) V {
	d := g.data[v]
	var zero V
	g.data[v] = zero
	return d
}

// Successors returns the vertex indices v has a direct edge to (i.e.
// v's dependencies), in ascending order for deterministic traversal.
func (g *Graph[K, V]) Successors(v int64) []int64 {
	var out []int64
	for it := g.g.From(v); it.Next(); {
		out = append(out, it.Node().ID())
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// directed exposes the underlying gonum graph for algorithms in this
// package that need gonum's traversal/sort helpers directly.
func (g *Graph[K, V]) directed() graph.Directed { return g.g }

// OptionalVertex is either a vertex index or the absence of one.
type OptionalVertex int64

// NoVertex is the absent OptionalVertex.
const NoVertex OptionalVertex = -1

// IsSet reports whether o holds a vertex index.
func (o OptionalVertex) IsSet() bool { return o >= 0 }

// AddEdges inserts one synthetic edge per set entry in labels: for
// every vertex v with labels[v] set, an edge from v to that vertex.
// This is the only mutation permitted after Finish, and must be called
// at most once. n must equal the number of set entries in labels, as a
// sanity check against mismatched bookkeeping upstream.
func (g *Graph[K, V]) AddEdges(labels []OptionalVertex, n int) error {
	added := 0
	for v, label := range labels {
		if !label.IsSet() {
			continue
		}
		from, to := int64(v), int64(label)
		if from != to && !g.g.HasEdgeFromTo(from, to) {
			g.g.SetEdge(g.g.NewEdge(vertexNode(from), vertexNode(to)))
			g.numEdges++
		}
		added++
	}
	if added != n {
		return fmt.Errorf("graphmodel: expected %d synthetic edges, recorded %d", n, added)
	}
	return nil
}
