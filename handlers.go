package irc

import "encoding"

// A Handler responds to an IRC message.
//
// An IRC message may be any type, including PRIVMSG, NOTICE, JOIN, numerics,
// etc. It is up to the calling function to map incoming messages/commands
// to the appropriate handler.
//
// Handlers should avoid modifying the provided Message.
type Handler interface {
	SpeakIRC(MessageWriter, *Message)
}

// The HandlerFunc type is an adapter to allow the usage of ordinary functions
// as handlers, following the same pattern as http.HandlerFunc.
type HandlerFunc func(MessageWriter, *Message)

// SpeakIRC calls f(w, m).
func (f HandlerFunc) SpeakIRC(w MessageWriter, m *Message) {
	f(w, m)
}

// MessageWriter contains methods for sending IRC messages to a server.
type MessageWriter interface {

	// WriteMessage writes the message to the connection.
	// The given encoding.TextMarshaler MUST return a byte slice which conforms
	// to the IRC protocol. If the slice does not end in "\r\n", then the
	// sequence will be appended.
	WriteMessage(encoding.TextMarshaler)
}

type middleware func(Handler) Handler

func wrap(h Handler, mw ...middleware) Handler {
	if len(mw) < 1 {
		return h
	}

	wrapped := h
	// loop in reverse to preserve middleware order
	for i := len(mw) - 1; i >= 0; i-- {
		wrapped = mw[i](wrapped)
	}

	return wrapped
}

// pingMiddleware intercepts server PING messages and replies with the appropriate PONG.
//
// It MUST run ahead of all other dispatch: servers enforce PING/PONG timeouts,
// so the reply cannot wait behind slower handlers.
func pingMiddleware(next Handler) Handler {
	return HandlerFunc(func(mw MessageWriter, m *Message) {
		if !m.Command.is(CmdPing) {
			next.SpeakIRC(mw, m)
			return
		}
		mw.WriteMessage(Pong(m.Params.Get(1)))
	})
}
