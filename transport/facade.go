// Package transport implements the client-side SSH transport facade:
// connect (TCP or local X11), exchange protocol version banners, run the
// receive/transmit workers, and expose sendPacket/waitForPacket/disconnect
// to callers above it. Grounded structurally on
// bzerolib/connection/universalconnection.UniversalConnection and
// bzerolib/connection/transporter/websocket.Websocket: a tomb.Tomb-managed
// pair of worker goroutines behind a small public facade, generalized from
// a websocket transport to a raw encrypted TCP/X11 one.
package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver"
	"github.com/google/uuid"
	"gopkg.in/tomb.v2"

	"github.com/cppssh/gossh-transport/config"
	"github.com/cppssh/gossh-transport/cryptoprovider"
	"github.com/cppssh/gossh-transport/framer"
	"github.com/cppssh/gossh-transport/logger"
	"github.com/cppssh/gossh-transport/socket"
	"github.com/cppssh/gossh-transport/transporterror"
	"github.com/cppssh/gossh-transport/upstream"
)

// clientBanner is this repo's SSH-2.0 identification string, sent before
// any Binary Packet Protocol traffic per RFC 4253 §4.2.
const clientBanner = "SSH-2.0-gossh-transport_1.0"

// maxBannerLen bounds the server banner line read so a misbehaving or
// non-SSH peer can't make exchangeBanners buffer unbounded data.
const maxBannerLen = 1024

// versionConstraint is the minimum SSH protocol version this client
// accepts, checked the same way bctl/daemon/mrtap/mrtap.go gates schema
// versions: parse, then test against a semver constraint before trusting
// anything the peer sent.
var versionConstraint = mustConstraint(">= 2.0")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Facade is the public client-side SSH transport. One Facade corresponds
// to one connection: a socket, a framer over it, a secure channel for
// outbound packets, and the two long-running workers that drive them.
type Facade struct {
	connectionID string
	log          *logger.Logger
	channel      upstream.Channel
	timeout      time.Duration

	sock    *socket.Socket
	framer  *framer.Framer
	secure  *secureChannel
	crypto  cryptoprovider.Provider
	prefs   *cryptoprovider.Preferences
	inbound *inboundQueue

	running atomic.Bool
	state   *stateMachine
	tmb     tomb.Tomb
}

// New builds a Facade in state NEW. timeout bounds every blocking operation
// (connect, banner exchange, socket readiness, waitForPacket). The client's
// algorithm-negotiation preferences default to cryptoprovider.DefaultPreferences;
// use NewFromConfig to source them (and the timeout) from a config.Session
// instead.
func New(log *logger.Logger, channel upstream.Channel, timeout time.Duration) *Facade {
	id := uuid.New().String()
	return &Facade{
		connectionID: id,
		log:          log.GetConnectionLogger(id),
		channel:      channel,
		timeout:      timeout,
		crypto:       cryptoprovider.Null{},
		prefs:        cryptoprovider.DefaultPreferences(),
		inbound:      newInboundQueue(),
		state:        newStateMachine(),
	}
}

// ConnectionID returns the identifier minted for this Facade at
// construction time, the same per-connection id this repo's logger tags
// every line emitted through it with.
func (f *Facade) ConnectionID() string { return f.connectionID }

// NewFromConfig builds a Facade the way a session context is meant to be
// assembled: the timeout and the client's algorithm-negotiation
// preferences both come from cfg rather than being hardcoded, so a
// config.Store-loaded session (file- and env-overridden) drives the
// transport directly. Grounded on universalconnection.New, which likewise
// takes its config struct apart into the fields its workers need rather
// than holding onto the struct itself.
func NewFromConfig(log *logger.Logger, channel upstream.Channel, cfg *config.Session) *Facade {
	f := New(log, channel, cfg.Timeout())
	f.prefs = cfg.Preferences()
	return f
}

// Preferences returns the algorithm-negotiation preferences this Facade was
// built with. Key exchange itself is out of this repo's scope; callers that
// implement it read this to know which cipher/MAC names to offer before
// handing the negotiated result to ActivateCrypto.
func (f *Facade) Preferences() *cryptoprovider.Preferences { return f.prefs }

// Establish resolves host, connects a TCP socket, and exchanges protocol
// version banners. NEW → CONNECTED.
func (f *Facade) Establish(ctx context.Context, host string, port int) error {
	if err := f.state.transition(StateConnected); err != nil {
		return err
	}

	sock, err := socket.ConnectTCP(ctx, host, port)
	if err != nil {
		var dnsErr *socket.DNSError
		if errors.As(err, &dnsErr) {
			return transporterror.Wrap(transporterror.DnsFailure, err)
		}
		return transporterror.Wrap(transporterror.Connect, err)
	}

	f.attach(sock)

	if err := f.exchangeBanners(); err != nil {
		sock.Close()
		return err
	}
	return nil
}

// EstablishX11 connects to the local X server named by displaySpec. NEW →
// CONNECTED. No banner exchange: X11 forwarding reuses an already-running
// SSH session's crypto context rather than negotiating its own.
func (f *Facade) EstablishX11(displaySpec string) error {
	if err := f.state.transition(StateConnected); err != nil {
		return err
	}

	sock, err := socket.ConnectX11(displaySpec)
	if err != nil {
		var displayErr *socket.DisplayError
		if errors.As(err, &displayErr) {
			return transporterror.Wrap(transporterror.MalformedDisplay, err)
		}
		return transporterror.Wrap(transporterror.Connect, err)
	}

	f.attach(sock)
	return nil
}

func (f *Facade) attach(sock *socket.Socket) {
	f.sock = sock
	f.framer = framer.New(sock, f.crypto)
	f.secure = newSecureChannel(sock, f.crypto)
}

// ActivateCrypto swaps in a negotiated crypto provider for both the framer
// and the secure channel. Key exchange itself is out of this repo's scope;
// callers above it hand over the provider once negotiation completes.
func (f *Facade) ActivateCrypto(p cryptoprovider.Provider) {
	f.crypto = p
	f.framer.SetCrypto(p)
	f.secure.setCrypto(p)
}

// Start launches the receive and transmit workers. CONNECTED → RUNNING.
func (f *Facade) Start() error {
	if err := f.state.transition(StateRunning); err != nil {
		return err
	}
	f.running.Store(true)
	f.tmb.Go(f.receiveLoop)
	f.tmb.Go(f.transmitLoop)
	return nil
}

// SendPacket frames, encrypts (if active), and transmits payload.
func (f *Facade) SendPacket(payload []byte) error {
	deadline := time.Now().Add(f.timeout)
	return f.secure.sendPacket(payload, deadline)
}

// WaitForPacket pops the next queued packet, blocking up to the session
// timeout. expected == 0 matches any command.
// On timeout, command echoes back expected and frame is nil.
func (f *Facade) WaitForPacket(expected byte) (command byte, frame []byte) {
	deadline := time.Now().Add(f.timeout)
	cmd, pkt, _ := f.inbound.wait(expected, deadline, f.running.Load)
	return cmd, pkt
}

// Disconnect tears the transport down: stops both workers, closes the
// socket, and signals the upstream channel. Idempotent and safe to call
// more than once, including after a worker has already terminated the
// connection on a fatal error.
func (f *Facade) Disconnect() {
	f.beginTerminate()
	if f.tmb.Alive() {
		f.tmb.Kill(nil)
	}
	f.tmb.Wait()
	f.channel.Disconnect()
}

// beginTerminate closes the socket before anything waits on the workers to
// exit. A worker blocked in socket.Recv/Send has no other way to notice
// Disconnect promptly — closing its underlying net.Conn makes the blocked
// syscall return an error immediately, rather than leaving the worker to
// sit until its own read/write deadline (up to the full session timeout)
// elapses on its own.
func (f *Facade) beginTerminate() {
	_ = f.state.transition(StateTerminated)
	f.running.Store(false)
	f.inbound.close()
	if f.sock != nil {
		f.sock.Close()
	}
}

// State reports the facade's current lifecycle state, mainly for tests.
func (f *Facade) State() State { return f.state.get() }

// exchangeBanners sends this client's identification string and reads the
// server's, per RFC 4253 §4.2, grounded on
// CyberPanther232-goshell/connection.go's byte-at-a-time version line read.
// The protocol-version field is then checked against versionConstraint the
// way bctl/daemon/mrtap/mrtap.go gates schema versions, rejecting anything
// below SSH 2.0 before a single Binary Packet Protocol packet is framed.
func (f *Facade) exchangeBanners() error {
	deadline := time.Now().Add(f.timeout)

	if _, err := f.sock.Send([]byte(clientBanner+"\r\n"), deadline); err != nil {
		return transporterror.Wrap(transporterror.Dropped, err)
	}

	line, err := f.readBannerLine(deadline)
	if err != nil {
		return err
	}

	version, err := parseProtocolVersion(line)
	if err != nil {
		return transporterror.Wrap(transporterror.MalformedPacket, err)
	}

	v, err := semver.NewVersion(version)
	if err != nil || !versionConstraint.Check(v) {
		return transporterror.Wrap(transporterror.MalformedPacket,
			fmt.Errorf("unsupported SSH protocol version %q in banner %q", version, line))
	}

	f.log.Infof("negotiated SSH protocol version %s (server banner %q)", version, line)
	return nil
}

func (f *Facade) readBannerLine(deadline time.Time) (string, error) {
	var buf []byte
	one := make([]byte, 1)
	for {
		n, err := f.sock.Recv(one, deadline)
		if err != nil {
			return "", transporterror.Wrap(transporterror.Dropped, err)
		}
		if n == 0 {
			continue
		}
		if one[0] == '\n' {
			break
		}
		buf = append(buf, one[0])
		if len(buf) > maxBannerLen {
			return "", transporterror.Wrap(transporterror.MalformedPacket, errors.New("server banner exceeds maximum length"))
		}
	}
	return strings.TrimRight(string(buf), "\r"), nil
}

// parseProtocolVersion extracts the protocol-version field from a banner
// line of the form "SSH-protoversion-softwareversion[ comments]".
func parseProtocolVersion(line string) (string, error) {
	const prefix = "SSH-"
	if !strings.HasPrefix(line, prefix) {
		return "", fmt.Errorf("malformed banner %q", line)
	}
	rest := line[len(prefix):]
	dash := strings.Index(rest, "-")
	if dash < 0 {
		return "", fmt.Errorf("malformed banner %q", line)
	}
	return rest[:dash], nil
}
