//go:build unix

package socket

import (
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// waitReady polls the connection's raw file descriptor with unix.Poll in
// PollInterval-sized ticks so the running flag and deadline are rechecked
// at least that often, keeping disconnect latency bounded to about one
// poll interval.
func waitReady(conn net.Conn, direction Direction, deadline time.Time, running func() bool) error {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return fallbackWaitReady(conn, direction, deadline, running)
	}
	rawConn, err := sc.SyscallConn()
	if err != nil {
		return fallbackWaitReady(conn, direction, deadline, running)
	}

	events := int16(unix.POLLIN)
	if direction == Writable {
		events = unix.POLLOUT
	}

	for {
		if running != nil && !running() {
			return ErrCancelled
		}
		if time.Now().After(deadline) {
			return ErrTimedOut
		}

		var ready bool
		var pollErr error
		ctrlErr := rawConn.Control(func(fd uintptr) {
			fds := []unix.PollFd{{Fd: int32(fd), Events: events}}
			n, e := unix.Poll(fds, int(PollInterval/time.Millisecond))
			if e != nil && e != unix.EINTR {
				pollErr = e
				return
			}
			if n > 0 && fds[0].Revents&events != 0 {
				ready = true
			}
		})
		if ctrlErr != nil || pollErr != nil {
			return ErrDropped
		}
		if ready {
			return nil
		}
	}
}
