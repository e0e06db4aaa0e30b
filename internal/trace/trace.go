// Package trace assigns SpanIDs to build-signal activity and can mirror
// them onto a Chrome trace event sink, the same JSON array format the
// original distri build tool used for its build traces.
package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

var start = time.Now()

var (
	sinkMu sync.Mutex
	sink   io.Writer = ioutil.Discard
)

// SpanID identifies a span of build-engine activity that a NodeKey's
// evaluation is associated with. The critical-path engine treats it as
// opaque: it is carried through Evaluation and NodeData purely so the
// eventual summary can point back at detailed event traces.
type SpanID uint64

// NextSpanID hands out monotonically increasing SpanIDs. Safe for
// concurrent use by multiple build-engine producers.
func NextSpanID() SpanID {
	return SpanID(nextSpanID.Add(1))
}

var nextSpanID atomic.Uint64

// Sink writes all following Event()s as a Chrome trace event file into w.
func Sink(w io.Writer) {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	sink = w
	// Start the JSON Array Format
	w.Write([]byte{'['})
	// The ] at the end is optional, so we skip it
}

// Enable is a convenience function for creating a file in
// $TMPDIR/buildsignals.traces/prefix.$PID.
//
// The filename assumes the OS does not frequently re-use the same pid.
func Enable(prefix string) error {
	fn := filepath.Join(os.TempDir(), "buildsignals.traces", fmt.Sprintf("%s.%d", prefix, os.Getpid()))
	if err := os.MkdirAll(filepath.Dir(fn), 0755); err != nil {
		return err
	}
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	Sink(f)
	return nil
}

// PendingEvent is an in-flight Chrome trace event; call Done once the
// activity it describes has completed.
type PendingEvent struct {
	Name           string      `json:"name"` // name of the event, as displayed in Trace Viewer
	Categories     string      `json:"cat"`  // event categories (comma-separated)
	Type           string      `json:"ph"`   // event type (single character)
	ClockTimestamp uint64      `json:"ts"`   // tracing clock timestamp (microsecond granularity)
	Duration       uint64      `json:"dur"`
	Span           SpanID      `json:"span"`
	Args           interface{} `json:"args"`

	start time.Time
}

// Done finalizes the event and writes it to the current sink.
func (pe *PendingEvent) Done() {
	pe.Duration = uint64(time.Since(pe.start) / time.Microsecond)
	b, err := json.Marshal(pe)
	if err != nil {
		panic(err)
	}
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if _, err := sink.Write(append(b, ',')); err != nil {
		log.Printf("[trace] %v", err)
	}
}

// Event begins a new trace event for the given span.
func Event(name string, span SpanID) *PendingEvent {
	return &PendingEvent{
		Name:           name,
		Type:           "X",
		ClockTimestamp: uint64(time.Since(start) / time.Microsecond),
		Span:           span,
		start:          time.Now(),
	}
}
