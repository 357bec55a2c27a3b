package upstream

import "sync"

// Loopback is a trivial Channel used by this repo's own tests: it records
// every packet handed to HandleReceived and lets a test enqueue outbound
// frames for the transmit worker to drain. Grounded on
// bzerolib/connection/broker.MockChannel's shape, generalized from a mock
// assertion object into a working test double since transport's workers
// need an upstream that actually behaves, not just records calls.
type Loopback struct {
	mu sync.Mutex

	received [][]byte
	outbound [][]byte
	done     bool

	disconnected bool
	onDisconnect func()
}

func NewLoopback() *Loopback {
	return &Loopback{}
}

func (l *Loopback) HandleReceived(packet []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := append([]byte(nil), packet...)
	l.received = append(l.received, cp)
}

// Received returns every packet delivered so far, in delivery order.
func (l *Loopback) Received() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]byte, len(l.received))
	copy(out, l.received)
	return out
}

// Enqueue queues a cleartext frame for the transmit worker to send.
func (l *Loopback) Enqueue(payload []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outbound = append(l.outbound, payload)
}

// Finish marks the channel permanently done: the next FlushOutgoing call
// (after draining anything already queued) returns false.
func (l *Loopback) Finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done = true
}

func (l *Loopback) FlushOutgoing(send func(payload []byte) error) bool {
	l.mu.Lock()
	if len(l.outbound) == 0 {
		done := l.done
		l.mu.Unlock()
		return !done
	}
	next := l.outbound[0]
	l.outbound = l.outbound[1:]
	l.mu.Unlock()

	_ = send(next)
	return true
}

// OnDisconnect registers a callback invoked the first time Disconnect runs.
func (l *Loopback) OnDisconnect(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onDisconnect = fn
}

func (l *Loopback) Disconnect() {
	l.mu.Lock()
	if l.disconnected {
		l.mu.Unlock()
		return
	}
	l.disconnected = true
	cb := l.onDisconnect
	l.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (l *Loopback) Disconnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.disconnected
}

var _ Channel = (*Loopback)(nil)
