//go:build !unix

package socket

import (
	"fmt"
	"net"
)

// ConnectX11 connects to the local X server named by spec via loopback TCP
// on port 6000+dispnum, the convention non-POSIX X servers listen on.
func ConnectX11(spec string) (*Socket, error) {
	disp, err := ParseDisplay(spec)
	if err != nil {
		return nil, err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", 6000+disp.Number)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, &ConnectError{Host: addr, Err: err}
	}
	return &Socket{conn: conn}, nil
}
