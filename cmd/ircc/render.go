package main

import (
	"fmt"
	"strings"

	"github.com/kmrenner/irc"
)

// renderEvent formats a client event for the terminal. An empty result means
// the event produces no visible output.
func renderEvent(e irc.Event) string {
	ts := e.Time.Format("15:04:05")

	switch e.Kind {
	case irc.EventConnected:
		return fmt.Sprintf("[%s] * connected to %s", ts, e.Target)
	case irc.EventRegistered:
		return fmt.Sprintf("[%s] * registered as %s", ts, e.Nick)
	case irc.EventMessage:
		return fmt.Sprintf("[%s] %s <%s> %s", ts, e.Target, e.Nick, e.Text)
	case irc.EventPrivateMessage:
		return fmt.Sprintf("[%s] *%s* %s", ts, e.Nick, e.Text)
	case irc.EventJoined:
		if e.Self {
			return fmt.Sprintf("[%s] * now talking in %s", ts, e.Target)
		}
		return fmt.Sprintf("[%s] * %s joined %s", ts, e.Nick, e.Target)
	case irc.EventParted:
		if e.Self {
			return fmt.Sprintf("[%s] * left %s", ts, e.Target)
		}
		return fmt.Sprintf("[%s] * %s left %s", ts, e.Nick, e.Target)
	case irc.EventQuit:
		return fmt.Sprintf("[%s] * %s quit (%s)", ts, e.Nick, e.Text)
	case irc.EventNickChanged:
		if e.Self {
			return fmt.Sprintf("[%s] * you are now known as %s", ts, e.NewNick)
		}
		return fmt.Sprintf("[%s] * %s is now known as %s", ts, e.Nick, e.NewNick)
	case irc.EventNames:
		return fmt.Sprintf("[%s] * users in %s: %s", ts, e.Target, joinNames(e.Names))
	case irc.EventFailure:
		if e.Text != "" {
			return fmt.Sprintf("[%s] ! %s: %s", ts, e.Failure, e.Text)
		}
		return fmt.Sprintf("[%s] ! %s", ts, e.Failure)
	case irc.EventServerNotice:
		return fmt.Sprintf("[%s] -%s- %s", ts, e.Nick, e.Text)
	case irc.EventTerminated:
		return fmt.Sprintf("[%s] * disconnected", ts)
	default:
		return ""
	}
}

func joinNames(names []irc.Name) string {
	parts := make([]string, len(names))
	for i, n := range names {
		switch {
		case n.Op:
			parts[i] = "@" + n.Nick
		case n.Voice:
			parts[i] = "+" + n.Nick
		default:
			parts[i] = n.Nick
		}
	}
	return strings.Join(parts, " ")
}
