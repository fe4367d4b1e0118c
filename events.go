package irc

import "time"

// EventKind is a notification the client emits for a presentation layer to render.
type EventKind int

const (
	// EventConnected notifies that the transport connection was established.
	EventConnected EventKind = iota
	// EventRegistered notifies that the server accepted registration (numeric 001).
	EventRegistered
	// EventNickChanged notifies about a nickname change; Self marks our own rename.
	EventNickChanged
	// EventJoined notifies about a user joining a channel.
	EventJoined
	// EventParted notifies about a user leaving a channel.
	EventParted
	// EventQuit notifies about a user disconnecting from the network.
	EventQuit
	// EventMessage notifies about a channel-addressed PRIVMSG.
	EventMessage
	// EventPrivateMessage notifies about a directly-addressed PRIVMSG.
	EventPrivateMessage
	// EventNames delivers a channel membership list (numeric 353).
	EventNames
	// EventFailure reports a classified protocol failure; fatal ones also end the session.
	EventFailure
	// EventServerNotice carries display text from commands the client has no
	// specific handling for.
	EventServerNotice
	// EventTerminated is the final notification of a session.
	EventTerminated
)

// Event describes to a presentation layer what happened on the connection.
//
// Events are delivered in the order the triggering messages arrived,
// from a single goroutine.
type Event struct {
	Kind    EventKind
	Nick    string  // originating nickname or server name, when known
	Target  string  // channel or query target the event applies to
	Text    string  // message body, reason, or display text
	NewNick string  // for EventNickChanged
	Names   []Name  // for EventNames
	Failure Failure // classified reason, for EventFailure
	Self    bool    // the event refers to our own identity
	Time    time.Time
}

// Name is a single entry of a channel membership list.
type Name struct {
	Nick  string
	Op    bool // listed with the '@' operator marker
	Voice bool // listed with the '+' voice marker
}

// Failure classifies protocol-level failures reported through EventFailure.
type Failure int

const (
	FailureNone Failure = iota
	// FailureNickInvalid is numeric 432; recovered with a generated fallback nickname.
	FailureNickInvalid
	// FailureNickInUse is numeric 433; recovered by retrying with a suffixed nickname.
	FailureNickInUse
	// FailureNickExhausted means the nickname retry budget ran out before registration.
	FailureNickExhausted
	// FailureBanned is numeric 465.
	FailureBanned
	// FailureChannelFull is numeric 471.
	FailureChannelFull
	// FailureInviteOnly is numeric 473.
	FailureInviteOnly
	// FailureBannedFromChannel is numeric 474.
	FailureBannedFromChannel
	// FailureBadChannelKey is numeric 475.
	FailureBadChannelKey
	// FailureServer is an ERROR command from the server.
	FailureServer
)

func (f Failure) String() string {
	switch f {
	case FailureNickInvalid:
		return "invalid nickname"
	case FailureNickInUse:
		return "nickname in use"
	case FailureNickExhausted:
		return "no available nickname"
	case FailureBanned:
		return "banned from server"
	case FailureChannelFull:
		return "channel is full"
	case FailureInviteOnly:
		return "channel is invite only"
	case FailureBannedFromChannel:
		return "banned from channel"
	case FailureBadChannelKey:
		return "channel requires a key"
	case FailureServer:
		return "server error"
	default:
		return "unknown"
	}
}

// Fatal reports whether the failure ends the session.
func (f Failure) Fatal() bool {
	switch f {
	case FailureBanned, FailureServer, FailureNickExhausted:
		return true
	default:
		return false
	}
}
