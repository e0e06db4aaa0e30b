package buildsignals

import "sync"

// signalQueue is an unbounded multi-producer/single-consumer queue of
// buildSignal values. push never blocks and never fails: a push after
// the queue has been closed is silently discarded, the same way a send
// on a closed mpsc channel would be ignored by this package's
// producers. Memory growth is bounded only by the number of keys the
// build evaluates, which the build itself already bounds.
type signalQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []buildSignal
	closed bool
}

func newSignalQueue() *signalQueue {
	q := &signalQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push enqueues a signal. Safe to call concurrently from any number of
// goroutines.
func (q *signalQueue) push(s buildSignal) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, s)
	q.cond.Signal()
}

// pop blocks until a signal is available or the queue has been closed
// with nothing left buffered, in which case ok is false.
func (q *signalQueue) pop() (s buildSignal, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return buildSignal{}, false
	}
	s, q.items = q.items[0], q.items[1:]
	return s, true
}

// close stops the queue from accepting further pushes. Called by Scope
// right after it pushes BuildFinished, so that any producer calls racing
// past that point are silently discarded rather than growing the queue
// forever; signals already buffered are still handed out by pop.
func (q *signalQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
