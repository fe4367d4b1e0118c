package irc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
)

// warnTruncate is an error indicating that an encoded IRC message is too long. The message
// was still sent to the server, but the server is likely to truncate the end of the
// message before sending it to other clients.
//
// Most IRC servers limit messages to 512 bytes in length, including the trailing CR-LF
// characters. https://modern.ircdocs.horse/#messages
//
// If you know that the server you are connected to accepts longer lines,
// it is safe to discard this error.
var warnTruncate = errors.New("message length exceeds IRC limit and may be truncated")

// maxLineLen is the protocol-defined line length, including the trailing CR-LF pair.
const maxLineLen = 512

// parameterLimit is the maximum number of parameters a message may contain as defined by
// the protocol. Clients should never send more than this limit but should accept any number.
const parameterLimit = 15

// NewMessage constructs a new Message to be sent on the connection
// with cmd as the verb and args as the message parameters.
//
// Only the last argument may contain SPACE (ascii 32, %x20),
// and only when the message is also marked with Trailing.
// This is a limitation defined in the IRC protocol.
// Including SPACE in any other argument will
// result in undefined behavior.
func NewMessage(cmd Command, args ...string) *Message {
	p := make(Params, len(args), parameterLimit)
	copy(p, args)
	cmd.normalize()
	return &Message{
		Command: cmd,
		Params:  p,
	}
}

// Message represents any incoming or outgoing IRC line.
//
// A message consists of three parts: prefix (source), verb, and params.
type Message struct {

	// Source is where the message originated from.
	// It's set by the prefix portion of an IRC message.
	//
	// Source should be left empty for messages that will be written to an IRC connection:
	// RFC 1459 states that messages originating from a client may not carry any prefix
	// other than the client's own nickname, and instructs servers to silently
	// discard messages which break that rule.
	Source Prefix

	// Command is the IRC verb or numeric such as PRIVMSG, NOTICE, 001, etc.
	Command Command

	// Params contains all the message parameters.
	// If a message included a trailing component,
	// it will be included without special treatment.
	Params Params

	// Received is the time the message was parsed from the connection.
	// It is the zero value for constructed outgoing messages.
	Received time.Time

	// hasTrailing records whether the final parameter is encoded in the
	// ":"-prefixed trailing form. Whether the trailing form is required is a
	// property of each command's wire format, not of the parameter contents,
	// so it is never guessed during encoding. Parsing sets it so that
	// re-encoding a received message round-trips exactly.
	hasTrailing bool

	// includePrefix controls whether MarshalText will write the prefix.
	includePrefix bool
}

// Trailing marks the message's final parameter to be encoded in the trailing
// (":"-prefixed) form, which permits SPACE and empty values.
//
// The constructors in this package set it according to each command's
// conventional wire format; USER and PRIVMSG always colon-prefix their final
// field, while NICK, JOIN, and PONG never do.
func (m *Message) Trailing() *Message {
	m.hasTrailing = true
	return m
}

// MarshalText implements encoding.TextMarshaler, mainly for use with irc.MessageWriter.
//
// Parameters are joined with single spaces and the line is terminated with CR-LF.
func (m *Message) MarshalText() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, maxLineLen))
	var err error

	if m.includePrefix && m.Source != (Prefix{}) {
		buf.WriteRune(startPrefix)
		buf.WriteString(m.Source.String())
		buf.WriteRune(delimParam)
	}

	buf.WriteString(m.Command.String())

	for i := 0; i < len(m.Params); i++ {
		buf.WriteRune(delimParam)
		if i == len(m.Params)-1 && m.hasTrailing {
			buf.WriteRune(startTrailing)
		}
		buf.WriteString(m.Params[i])
	}
	buf.WriteString("\r\n")

	if buf.Len() > maxLineLen {
		err = fmt.Errorf("%w: message length is %d bytes", warnTruncate, buf.Len())
	}

	return buf.Bytes(), err
}

// UnmarshalText implements encoding.TextUnmarshaler,
// accepting a line read from an IRC stream.
// text should not include the trailing CR-LF pair.
//
// This will unmarshal an arbitrarily long sequence of bytes.
// Length limitations should be implemented at the scanner.
//
// A parse error leaves the message with empty fields; callers treat it as a
// reportable anomaly, not a reason to stop reading the connection.
func (m *Message) UnmarshalText(text []byte) error {

	// go start the lexer
	l := lex(string(text))

	// re-using a message to unmarshal a new line should clear old fields
	m.Source = Prefix{}
	m.Command = ""
	m.Params = nil
	m.hasTrailing = false
	m.Received = time.Now()

	for {
		i := l.nextItem()
		switch i.typ {
		case itemEOF:
			return nil
		case itemError:
			return errors.New(i.val)
		case itemNickname:
			m.Source.Nick = Nickname(i.val)
		case itemUser:
			m.Source.User = i.val
		case itemHost:
			m.Source.Host = i.val
		case itemCommand:
			m.Command = Command(i.val)
			m.Command.normalize()
		case itemParam:
			m.Params = append(m.Params, i.val)
		case itemTrailing:
			m.Params = append(m.Params, i.val)
			m.hasTrailing = true
		}
	}
}

// IncludePrefix causes the Source field to be written by MarshalText.
//
// The default is to enable this setting for received messages and disable it
// for new messages, since clients may not send arbitrary prefixes.
func (m *Message) IncludePrefix() {
	m.includePrefix = true
}

// Command is an IRC command such as PRIVMSG, NOTICE, 001, etc.
//
// A command may also be known as the "verb", "event type", or "numeric".
type Command string

// String implements fmt.Stringer
func (c Command) String() string {
	return string(c)
}

// normalize will modify the command to use consistent casing.
func (c *Command) normalize() {
	*c = Command(strings.ToUpper(c.String()))
}

// is does a case-insensitive compare between two commands, which is
// useful if a command was given as a string constant.
func (c Command) is(oc Command) bool {
	return strings.EqualFold(string(c), string(oc))
}

// IsNumeric reports whether the command is a three-digit reply code.
func (c Command) IsNumeric() bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Prefix is the optional message (line) prefix,
// which indicates the source (user or server) of the message,
// depending on the prefix format.
//
// Example line with no prefix:
//	PING :86F3E357
//
// Example nickname-only prefix:
//	:Bob MODE Bob :+ixz
//
// Example "fulladdress" prefix:
//	:NickServ!services@services.host NOTICE Bob :This nickname is registered...
//
// Example server prefix:
//	:fiery.ca.us.SwiftIRC.net MODE #foo +nt
//
type Prefix struct {
	Nick Nickname
	User string
	Host string
}

// IsServer returns true when the message originated from a server (as opposed to a user/client).
// When true, the server name will be contained in the Host field.
func (p Prefix) IsServer() bool {
	return p.Host != "" && p.Nick == ""
}

// Name returns the nickname portion of the prefix (everything before '!'),
// or the server host when the prefix was a bare server name.
func (p Prefix) Name() string {
	if p.Nick != "" {
		return p.Nick.String()
	}
	return p.Host
}

// String implements fmt.Stringer
func (p Prefix) String() string {
	switch {
	case p.Nick == "" && p.User == "" && p.Host == "":
		return ""
	case p.Nick == "" && p.User == "":
		return p.Host
	case p.User == "":
		return p.Nick.String()
	default:
		return p.Nick.String() + "!" + p.User + "@" + p.Host
	}
}

// Params contains the slice of arguments for a message.
//
// Prefer the Get method for reading params rather than accessing the slice directly.
//
// If a message included a trailing component as defined in [RFC 1459],
// it will be included as a normal parameter.
//
// [RFC 1459]: https://datatracker.ietf.org/doc/html/rfc1459#section-2.3.1
type Params []string

// Get returns the nth parameter (starting at 1) from the parameters list,
// or "" (empty string) if it did not exist.
//
// Because parameters have meaning based on their position in the argument list,
// Get does not differentiate between missing and empty parameters.
// Callers never need to bounds-check; reading an absent ordinal
// parameter returns an empty string.
func (p Params) Get(n int) string {
	if n > len(p) || n < 1 {
		return ""
	}
	return p[n-1]
}

// Last returns the final parameter, or "" when the message had none.
func (p Params) Last() string {
	return p.Get(len(p))
}

type Nickname string

func (n Nickname) String() string {
	return string(n)
}

// Is determines whether a nickname matches a string by using Unicode case folding.
func (n Nickname) Is(other string) bool {
	return strings.EqualFold(n.String(), other)
}
