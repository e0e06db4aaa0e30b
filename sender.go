package buildsignals

import "github.com/distr1/buildsignals/internal/trace"

// TopLevelBuildSignals is the producer-side capability for reporting
// the build's lifecycle: which targets were requested, which artifacts
// were ultimately materialized, and when the build is done.
type TopLevelBuildSignals interface {
	// TopLevelTarget records that a configured target was analyzed and
	// decided to build the given artifacts.
	TopLevelTarget(label TargetLabel, artifacts []ArtifactGroup)
	// FinalMaterialization records that a built artifact was placed at
	// its final location.
	FinalMaterialization(artifact ArtifactID, duration NodeDuration, spanID *trace.SpanID)
	// BuildFinished signals that no further signals will be sent. It
	// must be sent at most once per Scope invocation.
	BuildFinished()
}

// ActivationTracker is the producer-side capability the build engine
// uses to report that it finished evaluating a key.
type ActivationTracker interface {
	// KeyActivated reports that key finished evaluating with the given
	// dependencies and activation data. Keys (and dependencies) this
	// package does not recognize are silently ignored.
	KeyActivated(key EngineKey, deps []EngineKey, activation ActivationData)
}

// sender is the single concrete type backing both capability views
// installed by Scope. Both interfaces are safe to call from any
// goroutine.
type sender struct {
	q *signalQueue
}

var _ TopLevelBuildSignals = (*sender)(nil)
var _ ActivationTracker = (*sender)(nil)

func (s *sender) TopLevelTarget(label TargetLabel, artifacts []ArtifactGroup) {
	s.q.push(buildSignal{
		kind:           signalTopLevelTarget,
		topLevelTarget: TopLevelTargetSignal{Label: label, Artifacts: artifacts},
	})
}

func (s *sender) FinalMaterialization(artifact ArtifactID, duration NodeDuration, spanID *trace.SpanID) {
	s.q.push(buildSignal{
		kind: signalFinalMaterialization,
		finalMaterial: FinalMaterializationSignal{
			Artifact: artifact,
			Duration: duration,
			SpanID:   spanID,
		},
	})
}

func (s *sender) BuildFinished() {
	s.q.push(buildSignal{kind: signalBuildFinished})
}

func (s *sender) KeyActivated(key EngineKey, deps []EngineKey, activation ActivationData) {
	nodeKey, ok := key.AsNodeKey()
	if !ok {
		return
	}

	eval := Evaluation{
		Key:     nodeKey,
		DepKeys: filterKeys(deps),
	}

	if activation.evaluated {
		switch {
		case activation.buildKey != nil && nodeKey.Kind() == KindBuildKey:
			action := activation.buildKey.Action
			eval.Action = &action
			eval.Duration = activation.buildKey.Duration
			eval.Spans = activation.buildKey.Spans
		case activation.analysis != nil:
			d := activation.analysis.Duration
			eval.Duration = NodeDuration{User: d, Total: d}
			eval.Spans = activation.analysis.Spans
		case activation.interpreter != nil && nodeKey.Kind() == KindInterpreterResultsKey:
			d := activation.interpreter.Duration
			eval.Duration = NodeDuration{User: d, Total: d}
			eval.LoadResult = activation.interpreter.Result
			eval.Spans = activation.interpreter.Spans
		}
	}

	s.q.push(buildSignal{kind: signalEvaluation, evaluation: eval})
}

// Installer bundles the two capability views produced by Scope. It is
// cheap to copy and both fields may be handed to different parts of the
// calling build engine.
type Installer struct {
	BuildSignals      TopLevelBuildSignals
	ActivationTracker ActivationTracker
}
