// Secure channel: outbound framing, padding, encryption and MAC, grounded
// on other_examples/albertjin-ssh__transport.go's writePacket (pad-to-block,
// then encrypt-then-mac) and RFC 4253 §6's padding-length arithmetic.
package transport

import (
	"errors"
	"sync"
	"time"

	"github.com/cppssh/gossh-transport/cryptoprovider"
	"github.com/cppssh/gossh-transport/socket"
	"github.com/cppssh/gossh-transport/transporterror"
	"github.com/cppssh/gossh-transport/wire"
)

var errShortWrite = errors.New("transport: short write")

// secureChannel owns the outbound half of the connection: it pads and
// frames a cleartext payload, encrypts and MACs it through the active
// crypto provider, and writes it to the socket, advancing txSeq only on a
// fully-successful transmission.
type secureChannel struct {
	mu     sync.Mutex
	sock   *socket.Socket
	crypto cryptoprovider.Provider
	txSeq  uint32
}

func newSecureChannel(sock *socket.Socket, crypto cryptoprovider.Provider) *secureChannel {
	return &secureChannel{sock: sock, crypto: crypto}
}

func (c *secureChannel) setCrypto(crypto cryptoprovider.Provider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.crypto = crypto
}

func (c *secureChannel) seq() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txSeq
}

// sendPacket pads payload to a block boundary with the mandatory
// [8, 8+block) padding-length range, encrypts and MACs it if crypto is
// initialized, and transmits it. txSeq only advances once the full frame
// (plus MAC, if any) has been written.
func (c *secureChannel) sendPacket(payload []byte, deadline time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	block := c.crypto.EncryptBlockSize()
	if block < 8 {
		block = 8
	}

	// pad_len = 3 + block − ((payload.len + 8) mod block), forcing
	// 8 ≤ pad_len < 8+block. The raw formula alone can undershoot
	// 8 when the modulus is large, so we top it up by one block — still a
	// multiple-of-block total, since block divides the addition evenly.
	padLen := 3 + int(block) - ((len(payload) + 8) % int(block))
	if padLen < 8 {
		padLen += int(block)
	}

	frame := wire.NewBuffer(wire.LengthFieldSize + 1 + len(payload) + padLen)
	frame.AppendUint32BE(uint32(1 + len(payload) + padLen))
	frame.AppendByte(byte(padLen))
	frame.AppendBytes(payload)
	for i := 0; i < padLen; i++ {
		frame.AppendByte(0)
	}
	defer frame.Zero()

	var onWire []byte
	if c.crypto.IsInitialized() {
		ciphertext, mac, err := c.crypto.EncryptPacket(frame.Bytes(), c.txSeq)
		if err != nil {
			return transporterror.Wrap(transporterror.EncryptFail, err)
		}
		onWire = append(ciphertext, mac...)
	} else {
		onWire = frame.Bytes()
	}

	n, err := c.sock.Send(onWire, deadline)
	if err != nil {
		return transporterror.Wrap(transporterror.Dropped, err)
	}
	if n != len(onWire) {
		return transporterror.Wrap(transporterror.Dropped, errShortWrite)
	}

	c.txSeq++
	return nil
}
