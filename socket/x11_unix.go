//go:build unix

package socket

import (
	"fmt"
	"net"
)

// ConnectX11 connects to the local X server named by spec, over the
// AF_UNIX socket at /tmp/.X11-unix/X<dispnum> that X servers on POSIX
// systems listen on.
func ConnectX11(spec string) (*Socket, error) {
	disp, err := ParseDisplay(spec)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/tmp/.X11-unix/X%d", disp.Number)
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, &ConnectError{Host: path, Err: err}
	}
	return &Socket{conn: conn}, nil
}
