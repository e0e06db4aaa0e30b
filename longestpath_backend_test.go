package buildsignals

import (
	"testing"
	"time"
)

func TestLongestPathGraphBackendScenario6(t *testing.T) {
	soft := newSoftErrorCounter()
	b := newLongestPathGraphBackend(soft)

	a := AnalysisKey("A")
	bKey := AnalysisKey("B")
	d := AnalysisKey("D")
	c := AnalysisKey("C")

	b.processNode(a, nil, mustDuration(time.Second), nil, nil)
	b.processNode(bKey, nil, mustDuration(10*time.Second), []NodeKey{a}, nil)
	b.processNode(d, nil, mustDuration(5*time.Second), []NodeKey{a}, nil)
	b.processNode(c, nil, mustDuration(time.Second), []NodeKey{bKey, d}, nil)

	info, err := b.finish()
	if err != nil {
		t.Fatalf("finish() error: %v", err)
	}

	if info.NumNodes != 4 {
		t.Errorf("NumNodes = %d, want 4", info.NumNodes)
	}

	wantKeys := []NodeKey{a, bKey, c}
	if len(info.CriticalPath) != len(wantKeys) {
		t.Fatalf("len(CriticalPath) = %d, want %d (got %v)", len(info.CriticalPath), len(wantKeys), info.CriticalPath)
	}
	for i, entry := range info.CriticalPath {
		if entry.Key != wantKeys[i] {
			t.Errorf("CriticalPath[%d].Key = %v, want %v", i, entry.Key, wantKeys[i])
		}
	}
}

func TestLongestPathGraphBackendDuplicateKeyIsSoftError(t *testing.T) {
	soft := newSoftErrorCounter()
	b := newLongestPathGraphBackend(soft)

	key := AnalysisKey("X")
	b.processNode(key, nil, mustDuration(1), nil, nil)
	b.processNode(key, nil, mustDuration(99), nil, nil)

	if soft.Count() != 1 {
		t.Errorf("soft.Count() = %d, want 1", soft.Count())
	}

	info, err := b.finish()
	if err != nil {
		t.Fatalf("finish() error: %v", err)
	}
	if len(info.CriticalPath) != 1 {
		t.Fatalf("len(CriticalPath) = %d, want 1", len(info.CriticalPath))
	}
	if got := info.CriticalPath[0].Data.Duration.CriticalPathDuration(); got != mustDuration(1).Total {
		t.Errorf("surviving duration = %v, want the first insertion's value", got)
	}
}

func TestLongestPathGraphBackendFirstAnalysisLabeling(t *testing.T) {
	soft := newSoftErrorCounter()
	b := newLongestPathGraphBackend(soft)

	action := ActionKeyID{Owner: "//x:y", Identifier: "compile"}
	artifact := BuildKey(action)
	analysis := AnalysisKey("//x:y")

	// artifact has no explicit dep on analysis: the only link between
	// them comes from the visibility edge discovered during finalize.
	b.processNode(analysis, nil, mustDuration(time.Millisecond), nil, nil)
	b.processNode(artifact, &ActionHandle{Owner: "//x:y", Category: "compile", Identifier: "compile"}, mustDuration(time.Second), nil, nil)
	b.processTopLevelTarget(analysis, []NodeKey{artifact})

	info, err := b.finish()
	if err != nil {
		t.Fatalf("finish() error: %v", err)
	}
	// The synthetic first-analysis edge from artifact to analysis is
	// the only edge in this graph.
	if info.NumEdges != 1 {
		t.Errorf("NumEdges = %d, want 1 synthetic first-analysis edge", info.NumEdges)
	}
}
