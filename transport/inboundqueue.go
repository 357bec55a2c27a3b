package transport

import (
	"sync"
	"time"

	"github.com/cppssh/gossh-transport/socket"
)

// QueuedPacket is one whole cleartext frame delivered by the receive
// worker, tagged with its SSH message-type byte for waitForPacket's
// expected-command matching.
type QueuedPacket struct {
	Command byte
	Frame   []byte
}

// inboundQueue is a mutex+condvar FIFO rather than a buffered channel:
// WaitForPacket's "queue empty on timeout echoes back the requested
// command" semantics need a single
// waiter to both block on a condition and read the caller's own deadline,
// which a plain channel receive can't express without a second goroutine
// racing a timer against it. A background ticker goroutine broadcasts the
// condition every socket.PollInterval so a blocked waiter rechecks its
// deadline and the running flag at the same cadence the socket layer does.
type inboundQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []QueuedPacket
	closed bool
}

func newInboundQueue() *inboundQueue {
	q := &inboundQueue{}
	q.cond = sync.NewCond(&q.mu)
	go q.tick()
	return q
}

func (q *inboundQueue) tick() {
	for {
		time.Sleep(socket.PollInterval)
		q.mu.Lock()
		done := q.closed
		q.mu.Unlock()
		q.cond.Broadcast()
		if done {
			return
		}
	}
}

// push appends pkt to the tail and wakes one waiter.
func (q *inboundQueue) push(pkt QueuedPacket) {
	q.mu.Lock()
	q.items = append(q.items, pkt)
	q.mu.Unlock()
	q.cond.Signal()
}

// close marks the queue permanently closed. Packets already queued are
// still returned by wait; once the queue is empty, any blocked or future
// wait call returns as if timed out.
func (q *inboundQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// wait implements waitForPacket: blocks until a packet is queued, the
// deadline passes, running returns false, or the queue is closed. running
// is re-invoked on every wake (the background ticker broadcasts every
// socket.PollInterval), so it must read live state rather than a value
// snapshotted before the wait began, or a concurrent Disconnect() would go
// unnoticed until the deadline itself expires.
//
// Returns (command, frame, timedOut). On timeout/cancel/close, frame is nil
// and command is the caller's own expected value, echoed back so callers
// can tell which request timed out. On success, frame is the
// popped packet; command is its message-type byte if expected is 0 (any) or
// matches, otherwise 0 (caller decides what to do with an unexpected
// command, but still receives the frame to inspect).
func (q *inboundQueue) wait(expected byte, deadline time.Time, running func() bool) (command byte, frame []byte, timedOut bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if q.closed {
			return expected, nil, true
		}
		if running != nil && !running() {
			return expected, nil, true
		}
		if time.Now().After(deadline) {
			return expected, nil, true
		}
		q.cond.Wait()
	}

	head := q.items[0]
	q.items = q.items[1:]

	if expected == 0 || head.Command == expected {
		return head.Command, head.Frame, false
	}
	return 0, head.Frame, false
}
