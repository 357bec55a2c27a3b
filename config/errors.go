package config

import (
	"errors"
	"fmt"
)

var (
	errInvalidTimeout      = errors.New("timeout_ms must be positive")
	errInvalidMaxPacketLen = errors.New("max_packet_len must be positive")
)

// FileError means the config file could not be opened or created, grounded
// on bzerolib/envconfig/errors.go's FileError.
type FileError struct {
	Path     string
	InnerErr error
}

func (e *FileError) Error() string { return fmt.Sprintf("config: unable to open %s: %s", e.Path, e.InnerErr) }
func (e *FileError) Unwrap() error { return e.InnerErr }

// ValidationError means the config file parsed but its contents fail a
// sanity check (e.g. a non-positive timeout).
type ValidationError struct {
	InnerErr error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("config: invalid: %s", e.InnerErr) }
func (e *ValidationError) Unwrap() error { return e.InnerErr }

// KeyError means a requested algorithm-preference category isn't present.
type KeyError struct{ Key string }

func (e *KeyError) Error() string { return fmt.Sprintf("config: no such key: %s", e.Key) }
func (e *KeyError) Unwrap() error { return nil }
