package socket

import (
	"errors"
	"strconv"
	"strings"
)

// Display is a parsed X11 display specifier of the form
// "[prefix]:<dispnum>.<screennum>".
type Display struct {
	Prefix string // "", "unix", or "localhost" — anything else is a remote host, unsupported here
	Number int
	Screen int
}

// ParseDisplay parses an X11 display specifier of the form
// "[prefix]:<dispnum>[.<screennum>]". Remote X11 (a hostname prefix other
// than "unix"/"localhost") is explicitly unsupported.
func ParseDisplay(spec string) (*Display, error) {
	idx := strings.LastIndex(spec, ":")
	if idx < 0 {
		return nil, &DisplayError{Spec: spec, Err: errors.New("missing ':'")}
	}

	prefix := spec[:idx]
	if prefix != "" && prefix != "unix" && prefix != "localhost" {
		return nil, &DisplayError{Spec: spec, Err: errors.New("remote X11 display hosts are not supported")}
	}

	rest := spec[idx+1:]
	if rest == "" {
		return nil, &DisplayError{Spec: spec, Err: errors.New("missing display number")}
	}

	dispPart := rest
	screen := 0
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		dispPart = rest[:dot]
		s, err := strconv.Atoi(rest[dot+1:])
		if err != nil || s < 0 {
			return nil, &DisplayError{Spec: spec, Err: errors.New("malformed screen number")}
		}
		screen = s
	}

	num, err := strconv.Atoi(dispPart)
	if err != nil || num < 0 {
		return nil, &DisplayError{Spec: spec, Err: errors.New("malformed display number")}
	}

	return &Display{Prefix: prefix, Number: num, Screen: screen}, nil
}
