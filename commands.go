package irc

// Msg constructs a new Message of type PRIVMSG,
// with target being the intended target channel or nickname,
// and message being the text body. The text is always sent in the
// trailing form since it commonly contains spaces.
func Msg(target, message string) *Message {
	return NewMessage(CmdPrivmsg, target, message).Trailing()
}

// Notice constructs a new message of type NOTICE,
// with target being the intended target channel or nickname,
// and message being the text body.
func Notice(target, message string) *Message {
	return NewMessage(CmdNotice, target, message).Trailing()
}

// Nick constructs a nickname change command.
func Nick(name string) *Message {
	return NewMessage(CmdNick, name)
}

// Join constructs a channel join command.
func Join(channel string) *Message {
	return NewMessage(CmdJoin, channel)
}

// Part constructs a leave (depart) command for channel.
func Part(channel string) *Message {
	return NewMessage(CmdPart, channel)
}

// PartWithReason is the same as Part, but with a message
// that may be shown to other clients.
func PartWithReason(channel, reason string) *Message {
	return NewMessage(CmdPart, channel, reason).Trailing()
}

// Quit constructs a command that will cause the server to terminate the client's connection,
// and may display the quit message to clients that are configured to show quit messages.
func Quit(message string) *Message {
	return NewMessage(CmdQuit, message).Trailing()
}

// Ping constructs a command to PING the connection.
// The server will typically respond with PONG <message>.
func Ping(message string) *Message {
	return NewMessage(CmdPing, message)
}

// Pong builds the reply to a PING from the connection.
// The reply token must be the same as the original PING message.
func Pong(reply string) *Message {
	return NewMessage(CmdPong, reply)
}

// User is used at the beginning of a connection to specify
// the username and realname of a new user.
//
// realname may contain spaces, so it is always sent in the trailing form.
//
// https://tools.ietf.org/html/rfc2812#section-3.1.3
func User(user, realname string) *Message {
	// The second param (mode) is typically not useful.
	// The third param is unused.
	// Sending "0" and "*" is specifically recommended by at least
	// one modern IRC overview, and is what mIRC does.
	return NewMessage(CmdUser, user, "0", "*", realname).Trailing()
}

// Pass specifies the connection password.
func Pass(password string) *Message {
	return NewMessage(CmdPass, password)
}
