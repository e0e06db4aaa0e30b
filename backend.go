package buildsignals

import (
	"fmt"
	"time"

	"github.com/distr1/buildsignals/internal/trace"
)

// CriticalPathBackendName selects which critical-path backend a Scope
// uses.
type CriticalPathBackendName uint8

const (
	// BackendDefault is the streaming longest-path-by-predecessor
	// backend.
	BackendDefault CriticalPathBackendName = iota
	// BackendLongestPathGraph is the batch graph-build backend that
	// additionally computes per-node improvement potentials.
	BackendLongestPathGraph
)

func (n CriticalPathBackendName) String() string {
	switch n {
	case BackendLongestPathGraph:
		return "longest-path-graph"
	case BackendDefault:
		return "default"
	default:
		return "unknown"
	}
}

// ParseBackendName parses the configuration string for the critical
// path backend. Unknown values are a fatal configuration error.
func ParseBackendName(s string) (CriticalPathBackendName, error) {
	switch s {
	case "default":
		return BackendDefault, nil
	case "longest-path-graph":
		return BackendLongestPathGraph, nil
	default:
		return 0, fmt.Errorf("buildsignals: invalid backend name %q", s)
	}
}

// criticalPathEntry is one node on the computed critical path, along
// with its optional improvement potential.
type criticalPathEntry struct {
	Key                  NodeKey
	Data                 NodeData
	PotentialImprovement *time.Duration
}

// BuildInfo is what a backend's finish returns: the critical path in
// order plus aggregate graph statistics.
type BuildInfo struct {
	CriticalPath []criticalPathEntry
	NumNodes     uint64
	NumEdges     uint64
}

// backend is the common contract both critical-path backends implement.
// Static dispatch is sufficient since the backend is chosen once per
// Scope.
type backend interface {
	processNode(key NodeKey, action *ActionHandle, duration NodeDuration, depKeys []NodeKey, spans []trace.SpanID)
	processTopLevelTarget(analysis NodeKey, artifacts []NodeKey)
	finish() (BuildInfo, error)
	name() CriticalPathBackendName
}
