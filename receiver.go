package buildsignals

import (
	"time"

	"github.com/distr1/buildsignals/internal/trace"
)

// receiver is the single-threaded consumer draining a signalQueue: it
// performs load enrichment and forwards typed events to the selected
// backend.
type receiver struct {
	q       *signalQueue
	backend backend
	soft    *SoftErrorCounter

	// firstEdgeToLoad is the lazily-populated "first writer wins"
	// package→package map described in the load-enrichment design note:
	// the first load that reached a dependency package owns the
	// synthetic edge to it.
	firstEdgeToLoad map[PackageLabel]PackageLabel
}

func newReceiver(q *signalQueue, b backend, soft *SoftErrorCounter) *receiver {
	return &receiver{
		q:               q,
		backend:         b,
		soft:            soft,
		firstEdgeToLoad: make(map[PackageLabel]PackageLabel),
	}
}

// run drains the queue until BuildFinished (or the queue closes with
// nothing left buffered) and returns the backend's finalized BuildInfo
// together with how long finalize itself took.
func (r *receiver) run() (BuildInfo, time.Duration, error) {
	for {
		sig, ok := r.q.pop()
		if !ok {
			break
		}
		switch sig.kind {
		case signalEvaluation:
			r.processEvaluation(sig.evaluation)
		case signalTopLevelTarget:
			r.processTopLevelTarget(sig.topLevelTarget)
		case signalFinalMaterialization:
			r.processFinalMaterialization(sig.finalMaterial)
		case signalBuildFinished:
			start := time.Now()
			info, err := r.backend.finish()
			return info, time.Since(start), err
		}
	}
	// The queue closed without ever seeing BuildFinished. This should
	// not happen in practice (Scope always sends it), but still
	// finalizes the backend rather than losing the report entirely.
	start := time.Now()
	info, err := r.backend.finish()
	return info, time.Since(start), err
}

// enrichLoad applies §4.6's load-enrichment rule to a package-load
// evaluation: record this load as the first discoverer of each
// dependency package not already claimed, then append a dep on
// whichever load first reached this package, if any.
func (r *receiver) enrichLoad(eval *Evaluation) {
	pkg, ok := eval.Key.AsInterpreterResultsKey()
	if !ok {
		return
	}

	if eval.LoadResult != nil {
		for _, dep := range eval.LoadResult.DepPackages {
			if dep == pkg {
				continue
			}
			if _, claimed := r.firstEdgeToLoad[dep]; !claimed {
				r.firstEdgeToLoad[dep] = pkg
			}
		}
	}

	if firstReacher, ok := r.firstEdgeToLoad[pkg]; ok {
		eval.DepKeys = append(eval.DepKeys, InterpreterResultsKey(firstReacher))
	}
}

func (r *receiver) processEvaluation(eval Evaluation) {
	r.enrichLoad(&eval)
	deduped := dedupeKeepOrder(eval.DepKeys)
	r.backend.processNode(eval.Key, eval.Action, eval.Duration, deduped, eval.Spans)
}

// resolveArtifactGroup projects a TopLevelTargetSignal's artifact-group
// reference onto the NodeKey it ultimately builds, per §4.5.
func resolveArtifactGroup(g ArtifactGroup) (NodeKey, bool) {
	switch g.Kind {
	case ArtifactGroupArtifact:
		return BuildKey(g.Action), true
	case ArtifactGroupTransitiveSetProjection:
		return EnsureTransitiveSetProjectionKey(g.ProjectionID), true
	default:
		return NodeKey{}, false
	}
}

func (r *receiver) processTopLevelTarget(sig TopLevelTargetSignal) {
	keys := make([]NodeKey, 0, len(sig.Artifacts))
	for _, g := range sig.Artifacts {
		if k, ok := resolveArtifactGroup(g); ok {
			keys = append(keys, k)
		}
	}
	r.backend.processTopLevelTarget(AnalysisKey(sig.Label), keys)
}

func (r *receiver) processFinalMaterialization(sig FinalMaterializationSignal) {
	var spans []trace.SpanID
	if sig.SpanID != nil {
		spans = []trace.SpanID{*sig.SpanID}
	}
	r.backend.processNode(
		MaterializationKey(sig.Artifact),
		nil,
		sig.Duration,
		[]NodeKey{BuildKey(ActionKeyID{Owner: sig.Artifact.Owner, Identifier: sig.Artifact.Path})},
		spans,
	)
}
