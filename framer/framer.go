// Package framer implements the SSH Binary Packet Protocol (RFC 4253 §6)
// framing state machine: accumulate bytes from the socket, recover the
// length prefix by decrypting only as much as needed, verify the MAC, and
// hand back exactly one cleartext packet. Grounded on
// other_examples/albertjin-ssh__transport.go's staged read-length-then-rest
// loop and other_examples/golang-crypto__server.go's MAC-then-split
// handling, generalized to a provider-agnostic cryptoprovider.Provider so the same
// state machine runs identically before and after key exchange.
package framer

import (
	"crypto/hmac"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cppssh/gossh-transport/cryptoprovider"
	"github.com/cppssh/gossh-transport/socket"
	"github.com/cppssh/gossh-transport/transporterror"
	"github.com/cppssh/gossh-transport/wire"
)

// MaxPacketLen is the largest packet_length this repo will accept before
// framing it.
const MaxPacketLen = 16384

// Framer turns a byte stream off a socket.Socket into whole cleartext SSH
// packets, one at a time, advancing an inbound sequence counter as it goes.
type Framer struct {
	sock    *socket.Socket
	crypto  cryptoprovider.Provider
	staging *wire.Buffer
	rxSeq   uint32
}

// New builds a Framer reading from sock and decrypting/verifying through
// crypto. Pass cryptoprovider.Null{} before key exchange completes.
func New(sock *socket.Socket, crypto cryptoprovider.Provider) *Framer {
	return &Framer{sock: sock, crypto: crypto, staging: wire.NewBuffer(4096)}
}

// RxSeq returns the sequence number that will be used to verify the next
// packet's MAC (i.e. the count of packets already framed).
func (f *Framer) RxSeq() uint32 { return f.rxSeq }

// SetCrypto swaps in a newly negotiated crypto provider, e.g. once key
// exchange completes. Packets already returned by Next are unaffected;
// bytes still staged but not yet framed are decrypted with the new provider
// on the next Next call.
func (f *Framer) SetCrypto(crypto cryptoprovider.Provider) { f.crypto = crypto }

// Next blocks until exactly one complete incoming packet has been read,
// decrypted, and MAC-verified, honoring deadline and running so a caller
// can bound how long it waits and cancel cleanly. running is polled live
// on every tick (see socket.WaitReady), so a caller that clears its
// underlying flag mid-call is noticed within about one socket.PollInterval
// rather than only once Next itself returns.
func (f *Framer) Next(deadline time.Time, running func() bool) ([]byte, error) {
	firstBlock := 4
	if f.crypto.IsInitialized() {
		firstBlock = int(f.crypto.DecryptBlockSize())
		if firstBlock < 4 {
			firstBlock = 4
		}
	}

	if err := f.fillTo(firstBlock, deadline, running); err != nil {
		return nil, err
	}

	lengthPrefix, err := f.decryptSpan(0, firstBlock)
	if err != nil {
		return nil, err
	}

	packetLen := binary.BigEndian.Uint32(lengthPrefix[:4])
	if packetLen < 1 {
		return nil, transporterror.Wrap(transporterror.MalformedPacket, fmt.Errorf("packet_len %d < 1", packetLen))
	}
	if packetLen > MaxPacketLen {
		return nil, transporterror.Wrap(transporterror.PacketTooLarge, fmt.Errorf("packet_len %d exceeds max %d", packetLen, MaxPacketLen))
	}

	need := int(packetLen) + wire.LengthFieldSize
	macLen := 0
	if f.crypto.IsInitialized() {
		macLen = int(f.crypto.MacInLen())
	}

	if err := f.fillTo(need+macLen, deadline, running); err != nil {
		return nil, err
	}

	// need can be smaller than firstBlock (e.g. packet_len == 1 under a
	// 16-byte-block cipher), since packet_len alone doesn't guarantee a
	// full cipher block. Size the scratch buffer to whichever is larger so
	// copying the already-decrypted lengthPrefix in never runs past the
	// end of plaintext, then trim down to need before returning.
	scratch := need
	if firstBlock > scratch {
		scratch = firstBlock
	}
	plaintext := make([]byte, scratch)
	copy(plaintext[:firstBlock], lengthPrefix)

	if need > firstBlock {
		rest, err := f.decryptSpan(firstBlock, need)
		if err != nil {
			return nil, err
		}
		copy(plaintext[firstBlock:], rest)
	}
	plaintext = plaintext[:need]

	if macLen > 0 {
		expected := f.crypto.ComputeMac(plaintext, f.rxSeq)
		actual := f.staging.Bytes()[need : need+macLen]
		if !hmac.Equal(expected, actual) {
			return nil, transporterror.Wrap(transporterror.MacMismatch, errors.New("mac verification failed"))
		}
	}

	if err := f.staging.SplitOffFront(need + macLen); err != nil {
		return nil, transporterror.Wrap(transporterror.MalformedPacket, err)
	}

	f.rxSeq++
	return plaintext, nil
}

// decryptSpan decrypts staging[start:end] if crypto is initialized, else
// returns a copy of that span unchanged.
func (f *Framer) decryptSpan(start, end int) ([]byte, error) {
	span := f.staging.Bytes()[start:end]
	if !f.crypto.IsInitialized() {
		return append([]byte(nil), span...), nil
	}
	plain, err := f.crypto.DecryptPacket(span, f.crypto.DecryptBlockSize())
	if err != nil {
		return nil, transporterror.Wrap(transporterror.EncryptFail, err)
	}
	return plain, nil
}

// fillTo reads from the socket, respecting deadline and running, until the
// staging buffer holds at least n bytes. Each Recv is bounded to at most
// socket.PollInterval so a cleared running flag or an expired deadline is
// noticed within one tick even when WaitReady can't do a real OS-level
// readiness poll (see socket.fallbackWaitReady).
func (f *Framer) fillTo(n int, deadline time.Time, running func() bool) error {
	buf := make([]byte, 4096)
	for f.staging.Len() < n {
		if err := f.sock.WaitReady(socket.Readable, deadline, running); err != nil {
			return mapSocketErr(err)
		}

		tick := time.Now().Add(socket.PollInterval)
		if tick.After(deadline) {
			tick = deadline
		}

		readN, err := f.sock.Recv(buf, tick)
		if err != nil {
			if errors.Is(err, socket.ErrTimedOut) {
				continue
			}
			return mapSocketErr(err)
		}
		if readN == 0 {
			return transporterror.Wrap(transporterror.Dropped, errors.New("connection closed by peer"))
		}
		f.staging.AppendBytes(buf[:readN])
	}
	return nil
}

func mapSocketErr(err error) error {
	switch {
	case errors.Is(err, socket.ErrTimedOut):
		return transporterror.Wrap(transporterror.Timeout, err)
	case errors.Is(err, socket.ErrCancelled):
		return transporterror.Wrap(transporterror.Timeout, err)
	default:
		return transporterror.Wrap(transporterror.Dropped, err)
	}
}
