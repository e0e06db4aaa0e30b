package buildsignals

import (
	"time"

	"github.com/distr1/buildsignals/internal/trace"
)

// ActionHandle is the lightweight, unserializable handle on an executed
// action that BuildKey evaluations attach to their signal. It is kept
// separate from the wire/proto event bus deliberately: the full action
// graph is too large to serialize per §1.
type ActionHandle struct {
	Owner    TargetLabel
	Category string
	// Identifier disambiguates multiple actions sharing a category
	// within the same owner (e.g. multiple compile actions).
	Identifier string
}

// LoadResult is the lightweight handle on a completed package load. Only
// DepPackages is consulted by load enrichment (see receiver.go);
// everything else the real interpreter would produce is out of scope.
type LoadResult struct {
	// DepPackages lists every package this load's targets depend on,
	// possibly with duplicates and possibly including the loaded package
	// itself.
	DepPackages []PackageLabel
}

// BuildKeyActivation is the typed activation payload for a BuildKey
// (action execution).
type BuildKeyActivation struct {
	Action   ActionHandle
	Duration NodeDuration
	Spans    []trace.SpanID
}

// AnalysisKeyActivation is the typed activation payload for an
// AnalysisKey.
type AnalysisKeyActivation struct {
	Duration time.Duration
	Spans    []trace.SpanID
}

// InterpreterResultsKeyActivation is the typed activation payload for an
// InterpreterResultsKey (package load).
type InterpreterResultsKeyActivation struct {
	Duration time.Duration
	Result   *LoadResult
	Spans    []trace.SpanID
}

// ActivationData is what the build engine reports alongside a key
// activation: either the key was served from cache (Cached, the zero
// value) or it was freshly evaluated, in which case exactly one of the
// typed payload fields below is populated.
type ActivationData struct {
	evaluated bool

	buildKey    *BuildKeyActivation
	analysis    *AnalysisKeyActivation
	interpreter *InterpreterResultsKeyActivation
}

// Cached reports a not-run (served from cache / early cutoff)
// evaluation.
func Cached() ActivationData { return ActivationData{} }

// EvaluatedBuildKey reports a fresh BuildKey (action execution)
// evaluation.
func EvaluatedBuildKey(d BuildKeyActivation) ActivationData {
	return ActivationData{evaluated: true, buildKey: &d}
}

// EvaluatedAnalysis reports a fresh AnalysisKey evaluation.
func EvaluatedAnalysis(d AnalysisKeyActivation) ActivationData {
	return ActivationData{evaluated: true, analysis: &d}
}

// EvaluatedInterpreterResults reports a fresh InterpreterResultsKey
// (package load) evaluation.
func EvaluatedInterpreterResults(d InterpreterResultsKeyActivation) ActivationData {
	return ActivationData{evaluated: true, interpreter: &d}
}

// Evaluation is produced by the ActivationTracker for each recognized
// key the build engine evaluates, and consumed by the receiver loop.
type Evaluation struct {
	Key      NodeKey
	Duration NodeDuration
	DepKeys  []NodeKey
	Spans    []trace.SpanID

	// Action is only ever set when Key.Kind() == KindBuildKey.
	Action *ActionHandle
	// LoadResult is only ever set when Key.Kind() == KindInterpreterResultsKey.
	LoadResult *LoadResult
}

// TopLevelTargetSignal announces that a configured target was analyzed
// and decided to build a given set of artifact-group references.
type TopLevelTargetSignal struct {
	Label     TargetLabel
	Artifacts []ArtifactGroup
}

// ArtifactGroupKind distinguishes the two ways a top-level target can
// reference artifacts to build.
type ArtifactGroupKind uint8

const (
	// ArtifactGroupArtifact resolves directly to a built artifact, i.e.
	// a BuildKey.
	ArtifactGroupArtifact ArtifactGroupKind = iota
	// ArtifactGroupTransitiveSetProjection resolves to an
	// EnsureTransitiveSetProjectionKey.
	ArtifactGroupTransitiveSetProjection
	// ArtifactGroupUnresolved does not resolve to a built artifact at
	// all and is dropped by the receiver.
	ArtifactGroupUnresolved
)

// ArtifactGroup is a reference to one or more artifacts a top-level
// target decided to build, prior to resolution to a concrete NodeKey.
type ArtifactGroup struct {
	Kind ArtifactGroupKind
	// Action identifies the action that will build this artifact, when
	// Kind == ArtifactGroupArtifact.
	Action ActionKeyID
	// ProjectionID identifies the transitive set projection, when
	// Kind == ArtifactGroupTransitiveSetProjection.
	ProjectionID string
}

// FinalMaterializationSignal announces that a built artifact was placed
// at its final location.
type FinalMaterializationSignal struct {
	Artifact ArtifactID
	Duration NodeDuration
	SpanID   *trace.SpanID
}

// buildSignal is the internal tagged union carried on the channel.
// At most one field is set, per the variant named in kind;
// signalBuildFinished carries no payload.
type buildSignal struct {
	kind signalKind

	evaluation     Evaluation
	topLevelTarget TopLevelTargetSignal
	finalMaterial  FinalMaterializationSignal
}

type signalKind uint8

const (
	signalEvaluation signalKind = iota
	signalTopLevelTarget
	signalFinalMaterialization
	signalBuildFinished
)

// NodeData is the per-node payload stored by both backends.
type NodeData struct {
	Action   *ActionHandle
	Duration NodeDuration
	Spans    []trace.SpanID
}
