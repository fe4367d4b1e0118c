package irc

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// dispatch routes a single incoming message to its handler. Routing is by
// verb; numerics go through handleNumeric. Every message either maps to a
// specific handler or falls through to a generic server-notice event, so a
// presentation layer can always show something when the server speaks.
//
// dispatch is only called from the main loop goroutine, so handlers may take
// c.mu without contention from each other.
func (c *Client) dispatch(mw MessageWriter, m *Message) {
	if m.Command.IsNumeric() {
		c.handleNumeric(mw, m)
		return
	}

	switch {
	case m.Command.is(CmdPrivmsg):
		c.handlePrivmsg(m)
	case m.Command.is(CmdJoin):
		c.handleJoin(m)
	case m.Command.is(CmdPart):
		c.handlePart(m)
	case m.Command.is(CmdNick):
		c.handleNick(m)
	case m.Command.is(CmdQuit):
		c.handleQuit(m)
	case m.Command.is(CmdError):
		c.handleError(m)
	default:
		c.handleUnknown(m)
	}
}

func (c *Client) handleNumeric(mw MessageWriter, m *Message) {
	switch m.Command.String() {
	case RplWelcome:
		c.mu.Lock()
		c.state.registered = true
		c.state.status = statusRegistered
		// 001 is addressed to our accepted nickname; it is the authoritative
		// value when the server normalized what we asked for.
		if nick := m.Params.Get(1); nick != "" {
			c.state.nick = nick
		}
		nick := c.state.nick
		c.mu.Unlock()

		c.logger.Info().Str("nick", nick).Msg("registration accepted")
		c.notifyEvent(Event{Kind: EventRegistered, Nick: nick, Text: m.Params.Last(), Time: m.Received})

	case RplErrErroneousNickname:
		c.handleNickInvalid(mw, m)

	case RplErrNicknameInUse:
		c.handleNickInUse(mw, m)

	case RplNamReply:
		// "<client> ( "=" / "*" / "@" ) <channel> :<names>"
		channel := m.Params.Get(3)
		c.notifyEvent(Event{
			Kind:   EventNames,
			Target: channel,
			Names:  parseNames(m.Params.Last()),
			Time:   m.Received,
		})

	case RplErrYoureBannedCreep:
		c.notifyEvent(Event{
			Kind:    EventFailure,
			Failure: FailureBanned,
			Text:    m.Params.Last(),
			Time:    m.Received,
		})
		c.exit(ErrBanned)

	case RplErrChannelIsFull, RplErrInviteOnlyChan, RplErrBannedFromChan, RplErrBadChannelKey:
		// Join refusals. The current channel is untouched: we never joined.
		c.notifyEvent(Event{
			Kind:    EventFailure,
			Failure: joinFailure(m.Command.String()),
			Target:  m.Params.Get(2),
			Text:    m.Params.Last(),
			Time:    m.Received,
		})

	default:
		c.handleUnknown(m)
	}
}

// handleNickInvalid recovers from numeric 432 during registration by switching
// to a generated fallback nickname. The fallback is derived from the rejected
// nickname so repeated rejections of the same input produce the same fallback
// rather than looping through random guesses.
//
// Post-registration a 432 is reported but not recovered; the server kept our
// old nickname, so the session is still healthy.
func (c *Client) handleNickInvalid(mw MessageWriter, m *Message) {
	c.mu.Lock()
	registered := c.state.registered
	rejected := c.state.nick
	var fallback string
	if !registered {
		fallback = fallbackNick(rejected)
		c.state.nick = fallback
	}
	c.mu.Unlock()

	c.logger.Warn().Str("nick", rejected).Str("fallback", fallback).Msg("nickname rejected as invalid")
	c.notifyEvent(Event{
		Kind:    EventFailure,
		Failure: FailureNickInvalid,
		Nick:    rejected,
		Text:    m.Params.Last(),
		Time:    m.Received,
	})
	if !registered {
		mw.WriteMessage(Nick(fallback))
	}
}

// handleNickInUse retries a colliding nickname with a numeric suffix. The
// suffix compounds ("ren" -> "ren1" -> "ren12") which keeps each retry
// distinct from every previous one without tracking a candidate list.
//
// The retry budget is shared across the session. Exhausting it before
// registration ends the session, because a client without an accepted
// nickname cannot do anything. Exhausting it after registration only means a
// /nick request failed; the server kept the old nickname, so the session is
// still healthy.
func (c *Client) handleNickInUse(mw MessageWriter, m *Message) {
	c.mu.Lock()
	c.state.nickAttempts++
	attempts := c.state.nickAttempts
	registered := c.state.registered

	if attempts >= c.MaxNickAttempts {
		if registered {
			// the server addressed the reply to the nickname it kept; roll
			// back the optimistic update made when the change was requested
			rejected := m.Params.Get(2)
			if kept := m.Params.Get(1); kept != "" && c.state.nick == rejected {
				c.state.nick = kept
			}
			c.mu.Unlock()

			c.logger.Warn().Int("attempts", attempts).Msg("nickname retries exhausted; keeping current nickname")
			c.notifyEvent(Event{
				Kind:    EventFailure,
				Failure: FailureNickInUse,
				Nick:    rejected,
				Text:    m.Params.Last(),
				Time:    m.Received,
			})
			return
		}
		c.mu.Unlock()
		c.logger.Error().Int("attempts", attempts).Msg("nickname retries exhausted")
		c.notifyEvent(Event{
			Kind:    EventFailure,
			Failure: FailureNickExhausted,
			Time:    m.Received,
		})
		c.exit(ErrNickExhausted)
		return
	}
	retry := c.state.nick + strconv.Itoa(attempts)
	c.state.nick = retry
	c.mu.Unlock()

	c.logger.Debug().Str("retry", retry).Int("attempt", attempts).Msg("nickname in use")
	c.notifyEvent(Event{
		Kind:    EventFailure,
		Failure: FailureNickInUse,
		Nick:    m.Params.Get(2),
		Text:    m.Params.Last(),
		Time:    m.Received,
	})
	mw.WriteMessage(Nick(retry))
}

func (c *Client) handlePrivmsg(m *Message) {
	if len(m.Params) < 2 {
		c.logger.Warn().Stringer("source", m.Source).Msg("PRIVMSG with missing parameters")
		return
	}
	target := m.Params.Get(1)
	text := m.Params.Get(2)
	from := m.Source.Name()

	if isChannel(target) {
		c.History.Append(target, HistoryEntry{Time: m.Received, From: from, Text: text})
		c.notifyEvent(Event{
			Kind:   EventMessage,
			Nick:   from,
			Target: target,
			Text:   text,
			Time:   m.Received,
		})
		return
	}
	// direct message: keyed under the sender so the conversation with that
	// user accumulates in one place regardless of which side spoke
	c.History.Append(from, HistoryEntry{Time: m.Received, From: from, Text: text})
	c.notifyEvent(Event{
		Kind:   EventPrivateMessage,
		Nick:   from,
		Target: from,
		Text:   text,
		Time:   m.Received,
	})
}

func (c *Client) handleJoin(m *Message) {
	channel := m.Params.Get(1)
	nick := m.Source.Name()
	self := c.Nick().Is(nick)

	if self {
		c.mu.Lock()
		c.state.channel = channel
		c.mu.Unlock()
		c.logger.Info().Str("channel", channel).Msg("joined channel")
	}
	c.notifyEvent(Event{
		Kind:   EventJoined,
		Nick:   nick,
		Target: channel,
		Self:   self,
		Time:   m.Received,
	})
}

func (c *Client) handlePart(m *Message) {
	channel := m.Params.Get(1)
	nick := m.Source.Name()
	self := c.Nick().Is(nick)

	if self {
		c.mu.Lock()
		// a stale PART echo for a channel we already left must not clear
		// membership in the channel we are in now
		if strings.EqualFold(c.state.channel, channel) {
			c.state.channel = ""
		}
		c.mu.Unlock()
	}
	c.notifyEvent(Event{
		Kind:   EventParted,
		Nick:   nick,
		Target: channel,
		Text:   m.Params.Get(2),
		Self:   self,
		Time:   m.Received,
	})
}

func (c *Client) handleNick(m *Message) {
	oldNick := m.Source.Name()
	newNick := m.Params.Get(1)
	self := c.Nick().Is(oldNick)

	if self {
		c.mu.Lock()
		c.state.nick = newNick
		c.mu.Unlock()
	}
	c.notifyEvent(Event{
		Kind:    EventNickChanged,
		Nick:    oldNick,
		NewNick: newNick,
		Self:    self,
		Time:    m.Received,
	})
}

func (c *Client) handleQuit(m *Message) {
	nick := m.Source.Name()
	reason := m.Params.Get(1)
	if reason == "" {
		reason = "No message"
	}
	// a QUIT notification never closes our own transport; even our own echoed
	// QUIT is just display material, the connection ends when the server
	// closes it
	c.notifyEvent(Event{
		Kind: EventQuit,
		Nick: nick,
		Text: reason,
		Self: c.Nick().Is(nick),
		Time: m.Received,
	})
}

// handleError processes the server's ERROR command, which is terminal. When
// the client already sent QUIT the ERROR is just the server acknowledging the
// goodbye; otherwise it is a fatal failure.
func (c *Client) handleError(m *Message) {
	text := m.Params.Get(1)
	if text == "" {
		text = "Unknown error"
	}
	if c.status() == statusDisconnecting {
		c.logger.Debug().Str("text", text).Msg("server closed the link")
		return
	}
	c.logger.Error().Str("text", text).Msg("server error")
	c.notifyEvent(Event{
		Kind:    EventFailure,
		Failure: FailureServer,
		Text:    text,
		Time:    m.Received,
	})
	c.exit(fmt.Errorf("server error: %s", text))
}

// handleUnknown surfaces any message without a specific handler as display
// text, typically MOTD lines and informational numerics.
func (c *Client) handleUnknown(m *Message) {
	if len(m.Params) == 0 {
		return
	}
	c.notifyEvent(Event{
		Kind: EventServerNotice,
		Nick: m.Source.Name(),
		Text: m.Params.Last(),
		Time: m.Received,
	})
}

// parseNames splits a 353 names list, stripping the membership sigils into
// flags. Only the leading sigil is interpreted; servers that stack prefixes
// ("@+nick") advertise that behavior through ISUPPORT, which this client does
// not negotiate.
func parseNames(list string) []Name {
	fields := strings.Fields(list)
	names := make([]Name, 0, len(fields))
	for _, f := range fields {
		n := Name{Nick: f}
		switch f[0] {
		case '@':
			n.Op = true
			n.Nick = f[1:]
		case '+':
			n.Voice = true
			n.Nick = f[1:]
		}
		if n.Nick == "" {
			continue
		}
		names = append(names, n)
	}
	return names
}

func joinFailure(numeric string) Failure {
	switch numeric {
	case RplErrChannelIsFull:
		return FailureChannelFull
	case RplErrInviteOnlyChan:
		return FailureInviteOnly
	case RplErrBannedFromChan:
		return FailureBannedFromChannel
	case RplErrBadChannelKey:
		return FailureBadChannelKey
	default:
		return FailureNone
	}
}

// fallbackNick derives a guest nickname from a rejected one. The hash keeps
// the result stable for a given input.
func fallbackNick(rejected string) string {
	h := fnv.New32a()
	h.Write([]byte(rejected))
	return fmt.Sprintf("Guest%03d", h.Sum32()%1000)
}
