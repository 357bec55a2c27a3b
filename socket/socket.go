// Package socket provides the nonblocking TCP and X11 local-connector
// primitives the framer and transport facade are built on, grounded on
// CyberPanther232-goshell/connection.go's setupConnection (explicit dial,
// byte-at-a-time banner read over the raw connection) generalized to
// nonblocking I/O with deadline-bounded readiness polling via
// golang.org/x/sys/unix.Poll, since the pack's own transport tunnels over
// an already-established websocket and has no raw-socket code of its own
// to adapt for that part.
package socket

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"
)

// Direction selects which half of the socket WaitReady polls.
type Direction int

const (
	Readable Direction = iota
	Writable
)

// ErrDropped indicates the peer closed the connection or a read/write
// syscall failed in a way that means the socket is no longer usable.
var ErrDropped = errors.New("socket: connection dropped")

// ErrTimedOut indicates WaitReady's deadline elapsed without the socket
// becoming ready and without the running flag being cleared.
var ErrTimedOut = errors.New("socket: wait timed out")

// ErrCancelled indicates the running flag was cleared while waiting.
var ErrCancelled = errors.New("socket: cancelled")

// PollInterval bounds how often WaitReady (and callers looping Recv/Send
// against it) recheck the running flag, so disconnect wakes a blocked
// worker within about one poll interval.
const PollInterval = time.Millisecond

// Socket wraps a net.Conn with deadline-bounded, readiness-polled recv/send
// operations.
type Socket struct {
	conn net.Conn
}

// ConnectTCP resolves host explicitly (so DNS failure is distinguishable
// from connection-refused, per original_source/src/transport.cpp's
// gethostbyname-then-connect split) and dials a TCP stream socket.
func ConnectTCP(ctx context.Context, host string, port int) (*Socket, error) {
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil || len(addrs) == 0 {
		if err == nil {
			err = errors.New("socket: no addresses for host")
		}
		return nil, &DNSError{Host: host, Err: err}
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(addrs[0].IP.String(), strconv.Itoa(port)))
	if err != nil {
		return nil, &ConnectError{Host: host, Port: port, Err: err}
	}
	return &Socket{conn: conn}, nil
}

// WrapConn adapts an already-established net.Conn (e.g. the one returned by
// an X11 connector) into a Socket.
func WrapConn(conn net.Conn) *Socket { return &Socket{conn: conn} }

// SetNonblocking is a no-op on top of net.Conn: Go's runtime network poller
// already multiplexes connections without blocking an OS thread per
// connection, and readiness here is expressed through WaitReady's own
// deadline-bounded poll rather than a toggled socket flag. Kept as an
// explicit operation to mirror the nonblocking-mode toggle a raw-socket
// client would need.
func (s *Socket) SetNonblocking(bool) {}

// WaitReady blocks until the socket is ready for direction, the deadline
// passes, or running returns false — checked every PollInterval so
// disconnect wakes a blocked worker within one tick. running is called
// fresh on every check, so it must read live state (e.g. an atomic.Bool's
// Load method) rather than close over a value captured before the wait
// began — a snapshot taken once at call time would never observe a
// disconnect that happens mid-wait. running may be nil to skip the check.
func (s *Socket) WaitReady(direction Direction, deadline time.Time, running func() bool) error {
	return waitReady(s.conn, direction, deadline, running)
}

// fallbackWaitReady is used for net.Conn implementations that don't expose
// a raw fd (e.g. net.Pipe, used in tests) — it can't poll the OS for
// readiness, so it optimistically reports ready once deadline/running are
// checked and leaves the actual wait to the tick-bounded Recv/Send call
// that follows, which callers loop on PollInterval-sized deadlines.
func fallbackWaitReady(_ net.Conn, _ Direction, deadline time.Time, running func() bool) error {
	if running != nil && !running() {
		return ErrCancelled
	}
	if time.Now().After(deadline) {
		return ErrTimedOut
	}
	return nil
}

// Recv reads up to len(buf) bytes. A timeout against deadline returns
// ErrTimedOut; any other read failure (including EOF) returns ErrDropped.
func (s *Socket) Recv(buf []byte, deadline time.Time) (int, error) {
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return 0, ErrDropped
	}
	n, err := s.conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return n, ErrTimedOut
		}
		return n, ErrDropped
	}
	return n, nil
}

// Send writes all of buf, looping over short writes. Any failure (including
// a write deadline expiry) returns ErrDropped since a partial send leaves
// the peer's framing unrecoverable.
func (s *Socket) Send(buf []byte, deadline time.Time) (int, error) {
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return 0, ErrDropped
	}
	total := 0
	for total < len(buf) {
		n, err := s.conn.Write(buf[total:])
		total += n
		if err != nil {
			return total, ErrDropped
		}
	}
	return total, nil
}

// Close releases the underlying connection.
func (s *Socket) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
