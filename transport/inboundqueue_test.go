package transport

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("inboundQueue", func() {
	var q *inboundQueue

	BeforeEach(func() {
		q = newInboundQueue()
	})

	AfterEach(func() {
		q.close()
	})

	It("delivers pushed packets in FIFO order", func() {
		q.push(QueuedPacket{Command: 1, Frame: []byte("first")})
		q.push(QueuedPacket{Command: 2, Frame: []byte("second")})
		q.push(QueuedPacket{Command: 3, Frame: []byte("third")})

		deadline := time.Now().Add(time.Second)

		cmd, frame, timedOut := q.wait(0, deadline, nil)
		Expect(timedOut).To(BeFalse())
		Expect(cmd).To(Equal(byte(1)))
		Expect(frame).To(Equal([]byte("first")))

		cmd, frame, timedOut = q.wait(0, deadline, nil)
		Expect(timedOut).To(BeFalse())
		Expect(cmd).To(Equal(byte(2)))
		Expect(frame).To(Equal([]byte("second")))

		cmd, frame, timedOut = q.wait(0, deadline, nil)
		Expect(timedOut).To(BeFalse())
		Expect(cmd).To(Equal(byte(3)))
		Expect(frame).To(Equal([]byte("third")))
	})

	It("returns the head's command and frame when it matches the requested command", func() {
		q.push(QueuedPacket{Command: 5, Frame: []byte("ping")})

		cmd, frame, timedOut := q.wait(5, time.Now().Add(time.Second), nil)
		Expect(timedOut).To(BeFalse())
		Expect(cmd).To(Equal(byte(5)))
		Expect(frame).To(Equal([]byte("ping")))
	})

	It("returns the caller's expected command with timedOut on an empty close", func() {
		go func() {
			time.Sleep(5 * time.Millisecond)
			q.close()
		}()

		cmd, frame, timedOut := q.wait(0x42, time.Now().Add(time.Second), nil)
		Expect(timedOut).To(BeTrue())
		Expect(frame).To(BeNil())
		Expect(cmd).To(Equal(byte(0x42)))
	})

	It("times out and echoes expected when the deadline passes with nothing queued", func() {
		cmd, frame, timedOut := q.wait(0x7, time.Now().Add(5*time.Millisecond), nil)
		Expect(timedOut).To(BeTrue())
		Expect(frame).To(BeNil())
		Expect(cmd).To(Equal(byte(0x7)))
	})

	It("times out immediately once running reports false", func() {
		stopped := false
		running := func() bool { return !stopped }
		stopped = true

		cmd, frame, timedOut := q.wait(0x9, time.Now().Add(time.Second), running)
		Expect(timedOut).To(BeTrue())
		Expect(frame).To(BeNil())
		Expect(cmd).To(Equal(byte(0x9)))
	})
})
