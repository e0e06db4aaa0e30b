package buildsignals

import (
	"io"
	"log"
	"time"
)

// SummaryPublisher is the sole outbound surface this package uses: one
// call per Scope invocation, carrying the terminal summary event. The
// wire/proto shape of that event, and how it reaches any dispatcher, is
// out of scope here -- callers supply whatever publisher fits their event
// bus.
type SummaryPublisher interface {
	PublishSummary(Summary)
}

// SummaryPublisherFunc adapts a plain function to a SummaryPublisher.
type SummaryPublisherFunc func(Summary)

func (f SummaryPublisherFunc) PublishSummary(s Summary) { f(s) }

func newBackend(name CriticalPathBackendName, soft *SoftErrorCounter) backend {
	switch name {
	case BackendLongestPathGraph:
		return newLongestPathGraphBackend(soft)
	default:
		return newDefaultBackend()
	}
}

// Scope runs fn with a fresh Installer wired to a new receiver loop
// using the named critical-path backend, publishes the resulting
// summary to events once fn returns, and returns fn's own result
// unchanged regardless of whether the receiver or backend encountered
// trouble along the way -- per §4.9 and §7, observability must never
// alter the build's outcome.
//
// logger receives soft-error and failure diagnostics; a nil logger
// discards them.
func Scope[R any](events SummaryPublisher, backendName CriticalPathBackendName, logger *log.Logger, fn func(Installer) (R, error)) (R, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	soft := newSoftErrorCounter()
	q := newSignalQueue()
	s := &sender{q: q}
	b := newBackend(backendName, soft)
	r := newReceiver(q, b, soft)

	done := make(chan struct{})
	var info BuildInfo
	var finalizeErr error
	var finalizeDuration time.Duration

	go func() {
		defer close(done)
		info, finalizeDuration, finalizeErr = r.run()
	}()

	installer := Installer{BuildSignals: s, ActivationTracker: s}
	result, err := fn(installer)

	s.BuildFinished()
	q.close()
	<-done

	if finalizeErr != nil {
		soft.record("critical_path_finalize", finalizeErr)
		logger.Printf("buildsignals: critical path finalize failed (reported as soft error): %v", finalizeErr)
	}
	if n := soft.Count(); n > 0 {
		byCategory := soft.CountsByCategory()
		for _, category := range CategoriesSorted(byCategory) {
			logger.Printf("buildsignals: %d soft error(s) recorded in category %q", byCategory[category], category)
		}
	}

	summary := buildSummary(info, finalizeDuration, backendName)
	events.PublishSummary(summary)

	return result, err
}
