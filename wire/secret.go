// Package wire implements the SSH Binary Packet Protocol's byte-level codec:
// a growable buffer with typed appenders/readers, and SecretBytes, a byte
// container with an explicit Zero. No other package in this module uses
// SecretBytes: the keys DeriveKey returns and the framer's staging buffer
// are plain byte slices that are never zeroed.
package wire

// SecretBytes wraps a byte slice that may hold key material, MACs, or
// cleartext payload. Callers must call Zero once the bytes are no longer
// needed; nothing calls it automatically, since Go has no destructors.
type SecretBytes struct {
	b []byte
}

// NewSecretBytes takes ownership of b. Callers must not retain b after this call.
func NewSecretBytes(b []byte) *SecretBytes {
	return &SecretBytes{b: b}
}

func (s *SecretBytes) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

func (s *SecretBytes) Len() int {
	if s == nil {
		return 0
	}
	return len(s.b)
}

// Zero overwrites the underlying storage with zeroes. Safe to call more than once.
func (s *SecretBytes) Zero() {
	if s == nil {
		return
	}
	for i := range s.b {
		s.b[i] = 0
	}
}
