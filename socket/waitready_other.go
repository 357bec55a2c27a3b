//go:build !unix

package socket

import (
	"net"
	"time"
)

// waitReady has no portable raw-fd poll on non-unix platforms (e.g.
// windows), so it falls back to fallbackWaitReady's single deadline/running
// check, which reports ready at once. The callers' PollInterval-bounded
// Recv/Send calls do the actual waiting, so a cleared running flag is
// noticed on their next tick.
func waitReady(conn net.Conn, direction Direction, deadline time.Time, running func() bool) error {
	return fallbackWaitReady(conn, direction, deadline, running)
}
