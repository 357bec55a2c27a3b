// Package cryptoprovider defines the contract transport consumes for
// encryption, decryption, and MAC computation, plus concrete providers used
// by this repo's own tests. Key exchange and key scheduling live above this
// package; a Provider is handed already-derived keys.
package cryptoprovider

// Provider is the interface the transport layer consumes. Implementations
// must be safe for concurrent use by one encrypting and one decrypting
// goroutine at a time — the underlying cipher state is split into
// independent encrypt and decrypt contexts, so no shared mutable state may
// be touched by both directions.
type Provider interface {
	// IsInitialized reports whether keys have been derived yet. Before key
	// exchange completes, packets travel in cleartext with no MAC.
	IsInitialized() bool

	EncryptBlockSize() uint32
	DecryptBlockSize() uint32

	MacOutLen() uint32
	MacInLen() uint32

	// EncryptPacket encrypts an already-padded cleartext frame (length
	// prefix, padding-length byte, payload, padding) and computes its MAC
	// over (seq, frame).
	EncryptPacket(frame []byte, seq uint32) (ciphertext []byte, mac []byte, err error)

	// DecryptPacket decrypts exactly len(ciphertext) bytes, which must be a
	// multiple of expectedBlockSize.
	DecryptPacket(ciphertext []byte, expectedBlockSize uint32) (plaintext []byte, err error)

	// ComputeMac returns the MAC over (seq, cleartext) for verification
	// against a received trailer.
	ComputeMac(cleartext []byte, seq uint32) []byte
}
