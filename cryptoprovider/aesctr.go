package cryptoprovider

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
)

// AESCTRHMAC is a concrete Provider implementing AES-128-CTR encryption with
// HMAC-SHA2-256 integrity, keyed per RFC 4253 §7.2. Key derivation and
// letter assignment (A..F) follow CyberPanther232-goshell's
// activateEncryption: A/B are the initial IVs, C/D the encryption keys, E/F
// the integrity keys, client-to-server first in each pair.
type AESCTRHMAC struct {
	encrypt   cipher.Stream
	decrypt   cipher.Stream
	macWriter hash.Hash
	macReader hash.Hash
}

// NewAESCTRHMAC derives keys from the key-exchange shared secret k, exchange
// hash h, and session id, then builds independent client->server and
// server->client cipher/MAC contexts.
func NewAESCTRHMAC(k, h, sessionID []byte) (*AESCTRHMAC, error) {
	clientIV := DeriveKey(sha256.New, k, h, sessionID, 'A', aes.BlockSize)
	serverIV := DeriveKey(sha256.New, k, h, sessionID, 'B', aes.BlockSize)
	clientKey := DeriveKey(sha256.New, k, h, sessionID, 'C', 16)
	serverKey := DeriveKey(sha256.New, k, h, sessionID, 'D', 16)
	clientMacKey := DeriveKey(sha256.New, k, h, sessionID, 'E', sha256.Size)
	serverMacKey := DeriveKey(sha256.New, k, h, sessionID, 'F', sha256.Size)

	blockOut, err := aes.NewCipher(clientKey)
	if err != nil {
		return nil, fmt.Errorf("cryptoprovider: encrypt cipher: %w", err)
	}
	blockIn, err := aes.NewCipher(serverKey)
	if err != nil {
		return nil, fmt.Errorf("cryptoprovider: decrypt cipher: %w", err)
	}

	return &AESCTRHMAC{
		encrypt:   cipher.NewCTR(blockOut, clientIV),
		decrypt:   cipher.NewCTR(blockIn, serverIV),
		macWriter: hmac.New(sha256.New, clientMacKey),
		macReader: hmac.New(sha256.New, serverMacKey),
	}, nil
}

func (p *AESCTRHMAC) IsInitialized() bool { return true }

func (p *AESCTRHMAC) EncryptBlockSize() uint32 { return aes.BlockSize }
func (p *AESCTRHMAC) DecryptBlockSize() uint32 { return aes.BlockSize }

func (p *AESCTRHMAC) MacOutLen() uint32 { return uint32(p.macWriter.Size()) }
func (p *AESCTRHMAC) MacInLen() uint32  { return uint32(p.macReader.Size()) }

func (p *AESCTRHMAC) EncryptPacket(frame []byte, seq uint32) ([]byte, []byte, error) {
	mac := macOver(p.macWriter, seq, frame)

	ciphertext := make([]byte, len(frame))
	p.encrypt.XORKeyStream(ciphertext, frame)

	return ciphertext, mac, nil
}

func (p *AESCTRHMAC) DecryptPacket(ciphertext []byte, expectedBlockSize uint32) ([]byte, error) {
	if expectedBlockSize != p.DecryptBlockSize() {
		return nil, fmt.Errorf("cryptoprovider: block size mismatch: got %d want %d", expectedBlockSize, p.DecryptBlockSize())
	}
	plaintext := make([]byte, len(ciphertext))
	p.decrypt.XORKeyStream(plaintext, ciphertext)
	return plaintext, nil
}

func (p *AESCTRHMAC) ComputeMac(cleartext []byte, seq uint32) []byte {
	return macOver(p.macReader, seq, cleartext)
}

func macOver(h hash.Hash, seq uint32, data []byte) []byte {
	var seqBuf [4]byte
	binary.BigEndian.PutUint32(seqBuf[:], seq)
	h.Reset()
	h.Write(seqBuf[:])
	h.Write(data)
	return h.Sum(nil)
}

var _ Provider = (*AESCTRHMAC)(nil)
