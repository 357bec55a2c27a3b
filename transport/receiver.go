package transport

import (
	"time"

	"github.com/cppssh/gossh-transport/transporterror"
	"github.com/cppssh/gossh-transport/wire"
)

// receiveLoop frames packets off the wire, queues them for WaitForPacket,
// and hands each one to the upstream channel.
// Delivering to both the queue and the channel lets the same transport
// serve synchronous request/reply exchanges (before any channel exists,
// e.g. during the handshake this repo's key exchange would run above) and
// an already-registered multiplexer without the two mechanisms competing
// for the same packet.
//
// A timeout is not fatal — it just means nothing arrived this tick; the
// loop rechecks the running flag and tries again. Any other framer error
// is fatal: it disconnects the upstream channel and the loop exits without
// attempting reconnection.
func (f *Facade) receiveLoop() error {
	for f.running.Load() {
		deadline := time.Now().Add(f.timeout)

		pkt, err := f.framer.Next(deadline, f.running.Load)
		if err != nil {
			if terr, ok := err.(*transporterror.Error); ok && terr.Kind == transporterror.Timeout {
				continue
			}
			f.log.Error(err)
			f.beginTerminate()
			f.channel.Disconnect()
			return err
		}

		var command byte
		if len(pkt) > wire.CommandOffset {
			command = pkt[wire.CommandOffset]
		}

		f.inbound.push(QueuedPacket{Command: command, Frame: pkt})
		f.channel.HandleReceived(pkt)
	}
	return nil
}
