package irc

import (
	"bufio"
	"bytes"
	"context"
	"encoding"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaxNickAttempts is how many times the client retries a colliding
// nickname before registration is declared failed.
const DefaultMaxNickAttempts = 5

// drainTimeout bounds how long Disconnect waits for the server to deliver
// trailing messages and close its end after our QUIT. A non-responsive server
// must not be able to hang shutdown.
const drainTimeout = 3 * time.Second

// ErrNickExhausted is returned by ConnectAndRun when the nickname retry budget
// ran out before the server accepted registration.
var ErrNickExhausted = errors.New("no available nickname: retry attempts exhausted")

// ErrBanned is returned by ConnectAndRun when the server refused the session
// with numeric 465.
var ErrBanned = errors.New("banned from server")

// A Client manages a session with an IRC server.
// It reads/writes IRC lines on the connection, tracks the connection identity
// (nickname, registration, current channel), records exchanged messages into
// its History, and emits an Event for each state change a presentation layer
// would render.
type Client struct {

	// The address ("host:port") of the IRC server.
	// Addr is only used when DialFn is nil.
	Addr string

	// The nickname used by the Client when connecting to an IRC network (required).
	// Nicknames cannot contain spaces.
	Nickname string

	// The user name (required).
	// User cannot contain spaces.
	User string

	// The realname of the client (required).
	// Also referred to as the gecos field.
	// Realname may contain spaces.
	Realname string

	// The connection password (optional: depends on the network).
	Pass string

	// MaxNickAttempts bounds nickname-collision retries before registration.
	// Zero selects DefaultMaxNickAttempts.
	MaxNickAttempts int

	// DialFn is a function that accepts no parameters and returns an io.ReadWriteCloser and error.
	//
	// The returned connection can be any io.ReadWriteCloser: a TCP conn, a websocket
	// adapter, a server mock, etc. The only requirement is that the stream consists
	// of CRLF-delimited IRC messages. The client does its own line framing, so
	// reads may return arbitrary chunks, including partial lines.
	//
	// When DialFn is nil, the default behavior dials Addr over plain TCP.
	DialFn func() (io.ReadWriteCloser, error)

	// Logger receives parse anomalies, soft protocol failures, and lifecycle
	// transitions. If nil, logging is disabled.
	Logger *zerolog.Logger

	// History records exchanged messages per target. If nil, a History with
	// DefaultHistoryLimit is created on connect.
	History *History

	conn     io.ReadWriteCloser
	handler  Handler
	notifyFn func(Event)
	logger   zerolog.Logger
	wg       sync.WaitGroup
	mainDone <-chan struct{}

	// mu guards state. Identity mutations arrive from the dispatch goroutine
	// and from API calls (ChangeNick, Disconnect) on the caller's goroutine,
	// so they are serialized here.
	mu    sync.Mutex
	state clientState

	// errC is a buffered channel of errors.
	// The channel may be nil, so senders must always have a default case if sending blocked.
	// Only the first error sent to the channel will be used.
	errC chan error
}

// clientState groups the connection identity tracked across a session.
type clientState struct {

	// the client's current nickname. Optimistically updated when we send NICK;
	// authoritative only once the server echoes it back.
	nick string

	// the client's user name as sent during registration.
	user string

	// the server the client is connected to, used as the message source when
	// incoming messages didn't contain a prefix.
	server string

	// registered becomes true only on receipt of numeric 001 and reverts only
	// on disconnect.
	registered bool

	// nickAttempts counts 433 collisions before registration.
	nickAttempts int

	// channel is the single channel the client is currently joined to,
	// or "" when not in a channel.
	channel string

	status clientStatus
}

type clientStatus int

const (
	statusDisconnected clientStatus = iota
	statusRegistering
	statusRegistered
	statusDisconnecting
)

func (s clientStatus) String() string {
	switch s {
	case statusDisconnected:
		return "disconnected"
	case statusRegistering:
		return "registering"
	case statusRegistered:
		return "registered"
	case statusDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// ConnectAndRun establishes a connection to the remote IRC server, sends the
// NICK and USER registration commands, and processes incoming messages until
// the session ends.
//
// notify, if non-nil, is called for every Event the session produces. Calls
// are made synchronously from a single goroutine because the ordering of
// incoming messages matters.
//
// ConnectAndRun always returns an error, with one exception: if the client
// sends QUIT (via Disconnect or ctx cancellation) and the server then closes
// the connection, the returned error is nil.
//
// Whatever ends the session, the client is left in a clean disconnected
// state: the transport is released, the registered flag cleared, and the
// current channel forgotten. History is kept.
func (c *Client) ConnectAndRun(ctx context.Context, notify func(Event)) error {
	var (
		err     error
		cancel  context.CancelFunc
		mainctx context.Context
	)

	if c.Nickname == "" {
		panic("client nickname cannot be empty")
	}
	if c.User == "" {
		c.User = "guest"
	}
	if c.Realname == "" {
		// Realname is a required field when connecting to an IRC server,
		// but it's not important if left blank by a user of this package.
		c.Realname = c.Nickname
	}
	if c.MaxNickAttempts == 0 {
		c.MaxNickAttempts = DefaultMaxNickAttempts
	}
	if c.History == nil {
		c.History = NewHistory(DefaultHistoryLimit)
	}
	if c.DialFn == nil {
		if c.Addr == "" {
			panic("ConnectAndRun: Addr cannot be empty when DialFn is nil")
		}
		c.DialFn = func() (io.ReadWriteCloser, error) {
			d := net.Dialer{Timeout: 15 * time.Second}
			return d.Dial("tcp", c.Addr)
		}
	}
	if c.Logger != nil {
		c.logger = *c.Logger
	} else {
		c.logger = zerolog.Nop()
	}
	if notify == nil {
		notify = func(Event) {}
	}
	c.notifyFn = notify

	// this context intentionally doesn't use ctx as a parent because we listen for ctx.Done() to trigger
	// a graceful shutdown (sending QUIT). that doesn't work if all of our goroutines have already exited.
	mainctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	c.mainDone = mainctx.Done()

	if c.conn != nil {
		return errors.New("the client already has a connection")
	}

	// initial state
	c.mu.Lock()
	c.state = clientState{
		nick:   c.Nickname,
		user:   c.User,
		server: strings.Split(c.Addr, ":")[0],
		status: statusRegistering,
	}
	c.mu.Unlock()

	if c.conn, err = c.DialFn(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		// The identity reset must run even when the drain timed out or closing
		// the transport failed; shutdown always lands in a clean disconnected state.
		_ = c.conn.Close()
		c.conn = nil
		c.reset()
		c.notifyEvent(Event{Kind: EventTerminated, Time: time.Now()})
	}()

	// trigger shutdown on the first read from the error channel
	c.errC = make(chan error, 1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.conn.Close()
		defer cancel()

		err = <-c.errC // err is used in the method return value
		c.errC = nil
	}()

	c.handler = wrap(HandlerFunc(c.dispatch), pingMiddleware)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.mainLoop(mainctx)
	}()

	// when ctx is done we try to close the connection gracefully
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		select {
		case <-mainctx.Done():
			// the client is already closing
		case <-ctx.Done():
			c.Disconnect("closing link")
		}
	}()

	c.logger.Info().Str("addr", c.Addr).Str("nick", c.Nickname).Msg("connected; registering")
	c.notifyEvent(Event{Kind: EventConnected, Target: c.Addr, Time: time.Now()})

	// Registration is two back-to-back sends; servers conventionally expect
	// NICK before USER but may acknowledge in either order.
	if c.Pass != "" {
		c.WriteMessage(Pass(c.Pass))
	}
	c.WriteMessage(Nick(c.Nickname))
	c.WriteMessage(User(c.User, c.Realname))

	c.wg.Wait()
	if err == io.EOF && c.status() == statusDisconnecting {
		return nil
	}
	return err
}

// Disconnect performs the orderly shutdown sequence: part the current channel
// if one is joined, send QUIT with the given reason, then drain trailing
// messages from the server until it closes its end or drainTimeout elapses.
//
// The drain is best-effort; its failure is non-fatal to the shutdown itself.
// ConnectAndRun returns once the drain completes.
func (c *Client) Disconnect(reason string) {
	if reason == "" {
		reason = "Goodbye!"
	}
	if ch := c.Channel(); ch != "" {
		c.WriteMessage(Part(ch))
	}
	c.WriteMessage(Quit(reason))

	if done := c.mainDone; done != nil {
		select {
		// after sending QUIT we wait for the connection to be closed by the server,
		// processing any trailing messages it sends first
		case <-done:
		case <-time.After(drainTimeout):
		}
	}
	c.exit(nil)
}

func (c *Client) mainLoop(ctx context.Context) {
	readLine := c.startReading(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case l, ok := <-readLine:
			if !ok {
				c.exit(errors.New("read channel closed"))
				return
			}
			m := new(Message)
			m.IncludePrefix()
			if err := m.UnmarshalText(l); err != nil {
				// A parse error might be caused by a malformed line from the remote server
				// or a bug in our message parser. Both cases are interesting but not
				// a reason to cause the client to exit.
				c.logger.Warn().Err(err).Bytes("line", l).Msg("dropping unparseable line")
				continue
			}
			// rfc1459: If the prefix is missing from the message, it
			// is assumed to have originated from the connection from which it was
			// received.
			if (m.Source == Prefix{}) {
				m.Source.Host = c.serverName()
			}
			c.handler.SpeakIRC(c, m)
		}
	}
}

// startReading splits the connection's byte stream into lines. The transport
// provides no framing guarantees, so a line arriving split across reads is
// reassembled by the scanner before being delivered.
func (c *Client) startReading(ctx context.Context) <-chan []byte {
	lines := make(chan []byte)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(lines)

		s := bufio.NewScanner(c.conn)
		for s.Scan() {
			// s.Bytes() aliases the scanner's internal buffer, which the next
			// Scan call may overwrite while the main loop is still parsing the
			// line. The line crosses a goroutine boundary, so it must be copied.
			l := append([]byte(nil), s.Bytes()...)
			if len(l) == 0 {
				continue
			}
			select {
			case <-ctx.Done():
				// the main loop could have returned before the reader, so we need another
				// way out so that lines <- l doesn't block. to exit in a timely manner
				// the connection will need to be closed to break s.Scan().
				return
			case lines <- l:
			}
		}
		err := s.Err()
		// scanner.Err() returns nil when the reader error was EOF, but the client
		// wants to know when the error is EOF in order to determine if the
		// connection was terminated gracefully.
		if err == nil {
			c.exit(io.EOF)
		} else {
			c.exit(err)
		}
	}()
	return lines
}

// exit requests the client to exit and return with err. Only the first such error
// is returned; any successive calls to exit will drop the error, such as if
// there were remaining writes that also failed with errors.
func (c *Client) exit(err error) {
	select {
	case c.errC <- err:
	default:
	}
}

// WriteMessage implements irc.MessageWriter.
// It writes m to the client's connection.
// Marshaling errors will be reported to the client's logger.
// Write errors will cause ConnectAndRun to return with the first error.
func (c *Client) WriteMessage(m encoding.TextMarshaler) {
	// WriteMessage does not return any errors itself because IRC does not provide
	// any guarantees about message delivery. Even if bytes are successfully written
	// to a TCP stream, that does not guarantee delivery to the intended recipient(s).
	var (
		err error
		b   []byte
	)

	if c.conn == nil {
		c.logger.Error().Msgf("WriteMessage: conn cannot be nil; m: %#v", m)
		return
	}

	b, err = m.MarshalText()
	if err != nil {
		c.logger.Warn().Err(err).Msgf("marshal text; message: %#v", m)
		if b == nil {
			return
		}
	}
	if !bytes.HasSuffix(b, []byte("\r\n")) {
		b = append(b, []byte("\r\n")...)
	}

	// intercept outgoing quit commands so the session records the disconnect
	// as intentional, which rewrites the final io.EOF to nil
	if bytes.HasPrefix(b, []byte("QUIT")) {
		c.mu.Lock()
		c.state.status = statusDisconnecting
		c.mu.Unlock()
	}

	if _, err = c.conn.Write(b); err != nil {
		c.exit(err)
	}
}

// JoinChannel sends a JOIN for name, applying the channel sigil when missing
// ("gophers" joins "#gophers"). The current channel is only updated once the
// server echoes the JOIN back.
func (c *Client) JoinChannel(name string) {
	if name == "" {
		return
	}
	if !isChannel(name) {
		name = "#" + name
	}
	c.WriteMessage(Join(name))
}

// PartChannel sends a PART for the current channel, if any.
func (c *Client) PartChannel() {
	if ch := c.Channel(); ch != "" {
		c.WriteMessage(Part(ch))
	}
}

// errNoTarget is returned when a message has nowhere to go.
var errNoTarget = errors.New("no target specified and not in a channel")

// SendMessage sends text as a PRIVMSG to target, which may be a channel or a
// nickname. An empty target selects the current channel. The sent message is
// recorded in History under the target so both sides of a conversation
// accumulate.
func (c *Client) SendMessage(target, text string) error {
	if target == "" {
		target = c.Channel()
	}
	if target == "" {
		return errNoTarget
	}
	c.History.Append(target, HistoryEntry{
		Time: time.Now(),
		From: c.Nick().String(),
		Text: text,
	})
	c.WriteMessage(Msg(target, text))
	return nil
}

// ChangeNick requests a nickname change. The identity is updated
// optimistically; if the server rejects the new nickname with 433, a failure
// event is reported but the session continues.
func (c *Client) ChangeNick(nick string) {
	if nick == "" {
		return
	}
	c.mu.Lock()
	c.state.nick = nick
	c.mu.Unlock()
	c.WriteMessage(Nick(nick))
}

// Nick returns the client's current nickname according to the client's
// internal state tracking.
func (c *Client) Nick() Nickname {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Nickname(c.state.nick)
}

// Registered reports whether the server has accepted registration (numeric 001).
func (c *Client) Registered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.registered
}

// Channel returns the channel the client is currently joined to, or "".
func (c *Client) Channel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.channel
}

func (c *Client) status() clientStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.status
}

func (c *Client) serverName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.server
}

// reset clears the per-session identity. History is deliberately kept;
// it belongs to the client object, not the connection.
func (c *Client) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.channel = ""
	c.state.registered = false
	c.state.nickAttempts = 0
	c.state.status = statusDisconnected
}

func (c *Client) notifyEvent(e Event) {
	if c.notifyFn != nil {
		c.notifyFn(e)
	}
}

// isChannel reports whether target names a channel rather than a nickname.
func isChannel(target string) bool {
	return strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&")
}
