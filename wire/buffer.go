package wire

import (
	"encoding/binary"
	"fmt"
)

// LengthFieldSize is the width in bytes of the SSH packet_length field.
const LengthFieldSize = 4

// CommandOffset is the byte offset of the SSH message-type byte within a
// fully-assembled packet (4 bytes packet_length + 1 byte padding_length).
const CommandOffset = 5

// Buffer is an append-only, splice-from-front byte queue with typed
// accessors for the fields the Binary Packet Protocol cares about. Insertion
// order is significant: this is a queue of bytes, not a set.
type Buffer struct {
	data []byte
}

// NewBuffer returns an empty buffer, optionally pre-sized.
func NewBuffer(capacityHint int) *Buffer {
	return &Buffer{data: make([]byte, 0, capacityHint)}
}

// WrapBuffer wraps an existing slice as a Buffer without copying. The
// caller must not use b after this call.
func WrapBuffer(b []byte) *Buffer {
	return &Buffer{data: b}
}

func (b *Buffer) AppendUint32BE(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

func (b *Buffer) AppendByte(v byte) {
	b.data = append(b.data, v)
}

func (b *Buffer) AppendBytes(span []byte) {
	b.data = append(b.data, span...)
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the buffer's current contents. The returned slice aliases
// internal storage and must not be retained across a SplitOffFront call.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// ReadLengthBE reads the big-endian uint32 at offset 0 without consuming it.
func (b *Buffer) ReadLengthBE() (uint32, error) {
	if len(b.data) < LengthFieldSize {
		return 0, fmt.Errorf("wire: buffer has %d bytes, need %d to read length", len(b.data), LengthFieldSize)
	}
	return binary.BigEndian.Uint32(b.data[:LengthFieldSize]), nil
}

// Command returns the SSH message-type byte at CommandOffset.
func (b *Buffer) Command() (byte, error) {
	if len(b.data) <= CommandOffset {
		return 0, fmt.Errorf("wire: buffer has %d bytes, need > %d to read command", len(b.data), CommandOffset)
	}
	return b.data[CommandOffset], nil
}

// SplitOffFront discards the first n bytes, shifting the remainder to the
// front in place. It is the only operation permitted to drop buffered bytes.
func (b *Buffer) SplitOffFront(n int) error {
	if n < 0 || n > len(b.data) {
		return fmt.Errorf("wire: cannot split off %d bytes from a %d byte buffer", n, len(b.data))
	}
	remaining := len(b.data) - n
	copy(b.data[:remaining], b.data[n:])
	b.data = b.data[:remaining]
	return nil
}

// Zero overwrites the buffer's storage with zeroes. It transiently holds key
// material and cleartext, so callers must zero it once it's no longer needed.
func (b *Buffer) Zero() {
	for i := range b.data {
		b.data[i] = 0
	}
}
