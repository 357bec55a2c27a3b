package cryptoprovider

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
)

// DeriveKey implements the RFC 4253 §7.2 key-derivation function:
// K1 = HASH(K || H || X || session_id), extended with
// K2 = HASH(K || H || K1), K3 = HASH(K || H || K1 || K2), ... until length
// bytes are available. newHash is the exchange hash's hash constructor
// (sha256.New for the providers in this package).
func DeriveKey(newHash func() hash.Hash, k, h, sessionID []byte, letter byte, length int) []byte {
	var out []byte
	var prev []byte

	for len(out) < length {
		hh := newHash()
		writeMPInt(hh, k)
		hh.Write(h)
		if prev == nil {
			hh.Write([]byte{letter})
			hh.Write(sessionID)
		} else {
			hh.Write(out)
		}
		digest := hh.Sum(nil)
		out = append(out, digest...)
		prev = digest
	}

	return out[:length]
}

// writeMPInt writes k the way RFC 4253 requires the shared secret K to be
// hashed: as an SSH mpint (leading zero byte inserted if the high bit of the
// first byte is set, so it isn't misread as negative).
func writeMPInt(w hash.Hash, k []byte) {
	needsPad := len(k) > 0 && k[0]&0x80 != 0
	length := uint32(len(k))
	if needsPad {
		length++
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], length)
	w.Write(lenBuf[:])
	if needsPad {
		w.Write([]byte{0})
	}
	w.Write(k)
}

// defaultExchangeHash is used by this package's own tests, which don't run a
// real key exchange but still need a plausible-looking H/K.
func defaultExchangeHash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}
