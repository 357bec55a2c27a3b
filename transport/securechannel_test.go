package transport

import (
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cppssh/gossh-transport/socket"
)

// fixedBlockProvider exercises sendPacket's padding arithmetic at a chosen
// block size without driving a real cipher — IsInitialized stays false so
// the frame goes out unencrypted and the padding-length byte (frame[4]) can
// be checked directly against the block size under test.
type fixedBlockProvider struct{ block uint32 }

func (p fixedBlockProvider) IsInitialized() bool              { return false }
func (p fixedBlockProvider) EncryptBlockSize() uint32         { return p.block }
func (p fixedBlockProvider) DecryptBlockSize() uint32         { return p.block }
func (p fixedBlockProvider) MacOutLen() uint32                { return 0 }
func (p fixedBlockProvider) MacInLen() uint32                 { return 0 }
func (p fixedBlockProvider) ComputeMac([]byte, uint32) []byte { return nil }
func (p fixedBlockProvider) EncryptPacket(frame []byte, _ uint32) ([]byte, []byte, error) {
	return frame, nil, nil
}
func (p fixedBlockProvider) DecryptPacket(ciphertext []byte, _ uint32) ([]byte, error) {
	return ciphertext, nil
}

var _ = Describe("secureChannel padding", func() {
	DescribeTable("pads every payload length to a multiple of the cipher block size with pad_len in [8, 8+block)",
		func(block uint32, payloadLen int) {
			server, client := net.Pipe()
			defer server.Close()
			defer client.Close()

			c := newSecureChannel(socket.WrapConn(client), fixedBlockProvider{block: block})
			payload := make([]byte, payloadLen)

			done := make(chan []byte, 1)
			go func() {
				buf := make([]byte, 4096)
				n, err := server.Read(buf)
				if err != nil {
					done <- nil
					return
				}
				done <- buf[:n]
			}()

			Expect(c.sendPacket(payload, time.Now().Add(time.Second))).To(Succeed())

			var raw []byte
			Eventually(done, time.Second).Should(Receive(&raw))

			padLen := int(raw[4])
			Expect(padLen).To(BeNumerically(">=", 8))
			Expect(padLen).To(BeNumerically("<", 8+int(block)))

			total := wireTotalLen(raw)
			Expect(total % int(block)).To(Equal(0))
		},
		Entry("block 8, empty payload", uint32(8), 0),
		Entry("block 8, small payload", uint32(8), 3),
		Entry("block 16, empty payload", uint32(16), 0),
		Entry("block 16, small payload", uint32(16), 5),
		Entry("block 16, payload landing on a boundary", uint32(16), 11),
		Entry("block 32, small payload", uint32(32), 7),
		Entry("block 32, larger payload", uint32(32), 50),
	)
})

// wireTotalLen is packet_length (the first 4 bytes) plus the 4-byte length
// field itself, i.e. the full on-wire frame size sendPacket produced.
func wireTotalLen(raw []byte) int {
	n := int(raw[0])<<24 | int(raw[1])<<16 | int(raw[2])<<8 | int(raw[3])
	return n + 4
}
