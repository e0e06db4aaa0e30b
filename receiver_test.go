package buildsignals

import (
	"testing"

	"github.com/distr1/buildsignals/internal/trace"
)

// recordingBackend captures every processNode/processTopLevelTarget
// call so tests can assert on exactly what the receiver forwarded.
type recordingBackend struct {
	nodes   []NodeKey
	depsFor map[NodeKey][]NodeKey
	tlts    []NodeKey
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{depsFor: make(map[NodeKey][]NodeKey)}
}

func (r *recordingBackend) processNode(key NodeKey, action *ActionHandle, duration NodeDuration, deps []NodeKey, spans []trace.SpanID) {
	r.nodes = append(r.nodes, key)
	r.depsFor[key] = append([]NodeKey(nil), deps...)
}

func (r *recordingBackend) processTopLevelTarget(analysis NodeKey, artifacts []NodeKey) {
	r.tlts = append(r.tlts, analysis)
	r.tlts = append(r.tlts, artifacts...)
}

func (r *recordingBackend) finish() (BuildInfo, error)    { return BuildInfo{}, nil }
func (r *recordingBackend) name() CriticalPathBackendName { return BackendDefault }

var _ backend = (*recordingBackend)(nil)

// Scenario 5: load enrichment, first-writer-wins.
func TestLoadEnrichmentFirstWriterWins(t *testing.T) {
	r := newReceiver(newSignalQueue(), nil, newSoftErrorCounter())

	p1 := PackageLabel("P1")
	p2 := PackageLabel("P2")
	p3 := PackageLabel("P3")

	eval1 := Evaluation{
		Key:        InterpreterResultsKey(p1),
		LoadResult: &LoadResult{DepPackages: []PackageLabel{p2, p3}},
	}
	r.enrichLoad(&eval1)

	eval2 := Evaluation{
		Key:        InterpreterResultsKey(p2),
		LoadResult: &LoadResult{DepPackages: []PackageLabel{p3}},
	}
	r.enrichLoad(&eval2)

	if got, want := r.firstEdgeToLoad[p2], p1; got != want {
		t.Errorf("firstEdgeToLoad[P2] = %v, want %v", got, want)
	}
	if got, want := r.firstEdgeToLoad[p3], p1; got != want {
		t.Errorf("firstEdgeToLoad[P3] = %v, want %v (first writer wins, not overwritten by P2's load)", got, want)
	}

	foundDep := false
	for _, d := range eval2.DepKeys {
		if d == InterpreterResultsKey(p1) {
			foundDep = true
		}
	}
	if !foundDep {
		t.Errorf("eval2.DepKeys = %v, want a dep on load(P1)", eval2.DepKeys)
	}

	eval3 := Evaluation{Key: InterpreterResultsKey(p3)}
	r.enrichLoad(&eval3)
	foundDep = false
	for _, d := range eval3.DepKeys {
		if d == InterpreterResultsKey(p1) {
			foundDep = true
		}
	}
	if !foundDep {
		t.Errorf("eval3.DepKeys = %v, want a dep on load(P1)", eval3.DepKeys)
	}
}

func TestResolveArtifactGroupDropsUnresolved(t *testing.T) {
	if _, ok := resolveArtifactGroup(ArtifactGroup{Kind: ArtifactGroupUnresolved}); ok {
		t.Errorf("resolveArtifactGroup(unresolved) should drop the group")
	}

	action := ActionKeyID{Owner: "//x:y", Identifier: "a"}
	key, ok := resolveArtifactGroup(ArtifactGroup{Kind: ArtifactGroupArtifact, Action: action})
	if !ok || key != BuildKey(action) {
		t.Errorf("resolveArtifactGroup(artifact) = %v, %v, want BuildKey(%v), true", key, ok, action)
	}

	key, ok = resolveArtifactGroup(ArtifactGroup{Kind: ArtifactGroupTransitiveSetProjection, ProjectionID: "p"})
	if !ok || key != EnsureTransitiveSetProjectionKey("p") {
		t.Errorf("resolveArtifactGroup(projection) = %v, %v, want EnsureTransitiveSetProjectionKey(p), true", key, ok)
	}
}

func TestReceiverProcessTopLevelTargetDropsUnresolved(t *testing.T) {
	rb := newRecordingBackend()
	r := newReceiver(newSignalQueue(), rb, newSoftErrorCounter())

	action := ActionKeyID{Owner: "//x:y", Identifier: "a"}
	r.processTopLevelTarget(TopLevelTargetSignal{
		Label: "//x:y",
		Artifacts: []ArtifactGroup{
			{Kind: ArtifactGroupArtifact, Action: action},
			{Kind: ArtifactGroupUnresolved},
		},
	})

	want := []NodeKey{AnalysisKey("//x:y"), BuildKey(action)}
	if len(rb.tlts) != len(want) {
		t.Fatalf("processTopLevelTarget forwarded %v, want %v", rb.tlts, want)
	}
	for i := range want {
		if rb.tlts[i] != want[i] {
			t.Errorf("tlts[%d] = %v, want %v", i, rb.tlts[i], want[i])
		}
	}
}

func TestReceiverProcessFinalMaterializationDependsOnBuildKey(t *testing.T) {
	rb := newRecordingBackend()
	r := newReceiver(newSignalQueue(), rb, newSoftErrorCounter())

	artifact := ArtifactID{Owner: "//x:y", Path: "bin/out"}
	r.processFinalMaterialization(FinalMaterializationSignal{Artifact: artifact, Duration: mustDuration(1)})

	matKey := MaterializationKey(artifact)
	deps, ok := rb.depsFor[matKey]
	if !ok {
		t.Fatalf("no processNode call recorded for %v", matKey)
	}
	want := BuildKey(ActionKeyID{Owner: artifact.Owner, Identifier: artifact.Path})
	if len(deps) != 1 || deps[0] != want {
		t.Errorf("materialization deps = %v, want [%v]", deps, want)
	}
}
