package buildsignals

import (
	"fmt"
	"time"

	"github.com/distr1/buildsignals/internal/trace"
)

// SummaryEntryKind labels which typed description a SummaryEntry
// carries.
type SummaryEntryKind uint8

const (
	SummaryEntryAction SummaryEntryKind = iota
	SummaryEntryAnalysis
	SummaryEntryMaterialization
	SummaryEntryLoad
	// SummaryEntryComputeCriticalPath is the synthetic trailing entry
	// accounting for the backend's own finalize cost.
	SummaryEntryComputeCriticalPath
)

// SummaryEntry is one externally reported critical-path node.
type SummaryEntry struct {
	Kind SummaryEntryKind
	// Description is the typed, human-readable identity of this entry:
	// owner+category+identifier for an action, the target label for
	// analysis, owner+path for materialization, the package name for a
	// load, and a fixed label for the synthetic entry.
	Description string

	CriticalPathDuration time.Duration
	UserDuration         time.Duration
	TotalDuration        time.Duration
	Spans                []trace.SpanID
	PotentialImprovement *time.Duration
}

// Summary is the single terminal event a Scope invocation publishes.
type Summary struct {
	Entries []SummaryEntry
	// DurationsAreTotal is always true in this design: every entry's
	// CriticalPathDuration reflects NodeDuration.Total, never User.
	DurationsAreTotal bool
	NumNodes          uint64
	NumEdges          uint64
	Backend           CriticalPathBackendName
}

// describeEntry produces the typed description for a recognized
// critical-path key, and reports false for keys the summary omits.
func describeEntry(key NodeKey, action *ActionHandle) (kind SummaryEntryKind, description string, ok bool) {
	if filteredSummaryKind(key.Kind()) {
		return 0, "", false
	}

	switch key.Kind() {
	case KindBuildKey:
		if action == nil {
			// Early cutoff / cached: no externally meaningful identity.
			return 0, "", false
		}
		return SummaryEntryAction, fmt.Sprintf("%s %s %s", action.Owner, action.Category, action.Identifier), true
	case KindAnalysisKey:
		label, _ := key.AsAnalysisKey()
		return SummaryEntryAnalysis, string(label), true
	case KindMaterialization:
		artifact, _ := key.AsMaterializationKey()
		return SummaryEntryMaterialization, fmt.Sprintf("%s %s", artifact.Owner, artifact.Path), true
	case KindInterpreterResultsKey:
		pkg, _ := key.AsInterpreterResultsKey()
		return SummaryEntryLoad, string(pkg), true
	default:
		return 0, "", false
	}
}

// buildSummary converts a backend's BuildInfo into the externally
// reported Summary, appending the synthetic ComputeCriticalPath entry
// for the time finalize itself took.
//
// The synthetic entry is appended rather than prepended (see Open
// Questions in DESIGN.md): either order is acceptable so long as it's
// stable, and appending matches the order finalize cost is actually
// known (after everything else).
func buildSummary(info BuildInfo, finalizeDuration time.Duration, backendName CriticalPathBackendName) Summary {
	entries := make([]SummaryEntry, 0, len(info.CriticalPath)+1)

	for _, e := range info.CriticalPath {
		kind, description, ok := describeEntry(e.Key, e.Data.Action)
		if !ok {
			continue
		}
		entries = append(entries, SummaryEntry{
			Kind:                 kind,
			Description:          description,
			CriticalPathDuration: e.Data.Duration.CriticalPathDuration(),
			UserDuration:         e.Data.Duration.User,
			TotalDuration:        e.Data.Duration.Total,
			Spans:                e.Data.Spans,
			PotentialImprovement: e.PotentialImprovement,
		})
	}

	entries = append(entries, SummaryEntry{
		Kind:                 SummaryEntryComputeCriticalPath,
		Description:          "ComputeCriticalPath",
		CriticalPathDuration: finalizeDuration,
		UserDuration:         finalizeDuration,
		TotalDuration:        finalizeDuration,
	})

	return Summary{
		Entries:           entries,
		DurationsAreTotal: true,
		NumNodes:          info.NumNodes,
		NumEdges:          info.NumEdges,
		Backend:           backendName,
	}
}
