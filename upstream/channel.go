// Package upstream defines the interface transport uses to hand whole
// cleartext packets to (and pull outbound ones from) the channel
// multiplexer layer — session, pty, forwarding, X11 payload interpretation.
// That layer's internal semantics are out of this repo's scope; this
// package only states the contract and, for tests, a trivial
// implementation of it.
package upstream

// Channel is the interface transport's receive and transmit workers drive.
type Channel interface {
	// HandleReceived delivers one whole, authenticated cleartext packet
	// (including its 4-byte length prefix and padding-length byte) to the
	// multiplexer. Called only by the receive worker.
	HandleReceived(packet []byte)

	// FlushOutgoing is called by the transmit worker in a loop. If the
	// channel has a queued outbound cleartext frame, FlushOutgoing calls
	// send with it and returns true. If the channel has nothing to send
	// right now but may later, it returns true without calling send. It
	// returns false only when the channel is permanently done and the
	// transmit worker should exit.
	FlushOutgoing(send func(payload []byte) error) bool

	// Disconnect signals a fatal transport error upward. Idempotent.
	Disconnect()
}
