package transport

import "time"

// transmitPollInterval is the sleep between non-productive transmit passes.
const transmitPollInterval = time.Millisecond

// transmitLoop drains the upstream channel's outbound queue, sending
// whatever it yields, sleeping between passes that
// produced nothing so the loop doesn't spin the CPU waiting on an idle
// channel. Exits when the channel reports it is permanently done or the
// running flag is cleared.
func (f *Facade) transmitLoop() error {
	for f.running.Load() {
		sent := false
		var sendErr error
		deadline := time.Now().Add(f.timeout)

		more := f.channel.FlushOutgoing(func(payload []byte) error {
			sent = true
			sendErr = f.secure.sendPacket(payload, deadline)
			return sendErr
		})

		if sendErr != nil {
			f.log.Error(sendErr)
			f.beginTerminate()
			f.channel.Disconnect()
			return sendErr
		}
		if !more {
			return nil
		}
		if !sent {
			time.Sleep(transmitPollInterval)
		}
	}
	return nil
}
