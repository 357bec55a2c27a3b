package cryptoprovider

import "fmt"

// Null is the pre-key-exchange identity provider: packets travel as
// plaintext with no MAC. It reports a 4-byte block size; the secure channel
// still pads outbound frames to a multiple of 8. It never becomes
// initialized; transport swaps in a real Provider once key exchange
// (outside this repo's scope) completes.
type Null struct{}

func (Null) IsInitialized() bool { return false }

func (Null) EncryptBlockSize() uint32 { return 4 }
func (Null) DecryptBlockSize() uint32 { return 4 }

func (Null) MacOutLen() uint32 { return 0 }
func (Null) MacInLen() uint32  { return 0 }

func (Null) EncryptPacket(frame []byte, _ uint32) ([]byte, []byte, error) {
	return frame, nil, nil
}

func (Null) DecryptPacket(ciphertext []byte, _ uint32) ([]byte, error) {
	return ciphertext, nil
}

func (Null) ComputeMac([]byte, uint32) []byte { return nil }

var _ Provider = Null{}

// ErrNotInitialized is returned by providers that require key material that
// hasn't been supplied yet.
var ErrNotInitialized = fmt.Errorf("cryptoprovider: not initialized")
