package transport

import (
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cppssh/gossh-transport/cryptoprovider"
	"github.com/cppssh/gossh-transport/logger"
	"github.com/cppssh/gossh-transport/socket"
	"github.com/cppssh/gossh-transport/upstream"
)

func readLine(conn net.Conn) string {
	var buf []byte
	one := make([]byte, 1)
	for {
		n, err := conn.Read(one)
		if err != nil || n == 0 {
			return string(buf)
		}
		if one[0] == '\n' {
			break
		}
		buf = append(buf, one[0])
	}
	return string(buf)
}

var _ = Describe("Facade", func() {
	var serverConn, clientConn net.Conn
	var f *Facade
	var ch *upstream.Loopback

	BeforeEach(func() {
		serverConn, clientConn = net.Pipe()
		ch = upstream.NewLoopback()
		f = New(logger.MockLogger(GinkgoWriter), ch, time.Second)
	})

	AfterEach(func() {
		serverConn.Close()
		clientConn.Close()
	})

	Describe("banner exchange", func() {
		It("accepts a well-formed SSH 2.0 banner", func() {
			done := make(chan error, 1)
			go func() {
				Expect(f.state.transition(StateConnected)).To(Succeed())
				f.attach(socket.WrapConn(clientConn))
				done <- f.exchangeBanners()
			}()

			line := readLine(serverConn)
			Expect(line).To(HavePrefix("SSH-2.0-"))
			_, err := serverConn.Write([]byte("SSH-2.0-OpenSSH_9.0\r\n"))
			Expect(err).NotTo(HaveOccurred())

			Eventually(done, time.Second).Should(Receive(BeNil()))
		})

		It("rejects a pre-2.0 banner", func() {
			done := make(chan error, 1)
			go func() {
				Expect(f.state.transition(StateConnected)).To(Succeed())
				f.attach(socket.WrapConn(clientConn))
				done <- f.exchangeBanners()
			}()

			readLine(serverConn)
			_, err := serverConn.Write([]byte("SSH-1.99-OldServer_1.0\r\n"))
			Expect(err).NotTo(HaveOccurred())

			var result error
			Eventually(done, time.Second).Should(Receive(&result))
			Expect(result).To(HaveOccurred())
		})
	})

	Describe("full lifecycle", func() {
		BeforeEach(func() {
			Expect(f.state.transition(StateConnected)).To(Succeed())
			f.attach(socket.WrapConn(clientConn))
			Expect(f.Start()).To(Succeed())
		})

		It("delivers a server-sent packet to the upstream channel and the inbound queue", func() {
			serverSecure := newSecureChannel(socket.WrapConn(serverConn), cryptoprovider.Null{})
			payload := []byte{0x01, 'p', 'i', 'n', 'g'}

			go func() {
				_ = serverSecure.sendPacket(payload, time.Now().Add(time.Second))
			}()

			cmd, frame := f.WaitForPacket(0x01)
			Expect(cmd).To(Equal(byte(0x01)))
			Expect(frame).NotTo(BeNil())

			Eventually(func() [][]byte { return ch.Received() }, time.Second).ShouldNot(BeEmpty())
		})

		It("sends a client packet the server can frame back out", func() {
			done := make(chan []byte, 1)
			go func() {
				framerSock := socket.WrapConn(serverConn)
				buf := make([]byte, 4096)
				n, err := framerSock.Recv(buf, time.Now().Add(time.Second))
				if err != nil {
					done <- nil
					return
				}
				done <- buf[:n]
			}()

			Expect(f.SendPacket([]byte{0x02, 'o', 'k'})).To(Succeed())

			var raw []byte
			Eventually(done, time.Second).Should(Receive(&raw))
			Expect(raw).NotTo(BeEmpty())
			Expect(raw[4]).To(BeNumerically(">=", 8)) // padding_length byte
		})

		It("disconnects idempotently and signals the upstream channel", func() {
			f.Disconnect()
			Expect(ch.Disconnected()).To(BeTrue())
			Expect(f.State()).To(Equal(StateTerminated))

			Expect(func() { f.Disconnect() }).NotTo(Panic())
		})
	})

	Describe("state machine", func() {
		It("rejects starting before establishing", func() {
			Expect(f.Start()).To(HaveOccurred())
		})

		It("rejects establishing twice", func() {
			Expect(f.state.transition(StateConnected)).To(Succeed())
			Expect(f.state.transition(StateConnected)).To(HaveOccurred())
		})
	})
})
