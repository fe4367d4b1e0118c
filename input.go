package irc

import (
	"fmt"
	"strconv"
	"strings"
)

const helpText = `/join <channel>          join a channel (leaves the current one first)
/part                    leave the current channel
/nick <newnick>          change nickname
/msg <target> <text>     send a private message
/history [target] [n]    show recent messages for a target
/quit [reason]           disconnect
/help                    show this help`

// Exec interprets one line of user input. Lines starting with "/" are
// commands; anything else is sent as a message to the current channel.
//
// The returned string is local display output (help text, history listings).
// Most commands produce no output because their effects arrive back as events
// from the server.
func (c *Client) Exec(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}
	if !strings.HasPrefix(input, "/") {
		return "", c.SendMessage("", input)
	}

	fields := strings.Fields(input[1:])
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "join":
		if len(args) < 1 {
			return "", fmt.Errorf("usage: /join <channel>")
		}
		// single-channel client: leaving the old channel is implied
		c.PartChannel()
		c.JoinChannel(args[0])
		return "", nil

	case "part":
		if c.Channel() == "" {
			return "", fmt.Errorf("not in a channel")
		}
		c.PartChannel()
		return "", nil

	case "nick":
		if len(args) < 1 {
			return fmt.Sprintf("current nickname: %s", c.Nick()), nil
		}
		c.ChangeNick(args[0])
		return "", nil

	case "msg":
		if len(args) < 2 {
			return "", fmt.Errorf("usage: /msg <target> <text>")
		}
		// rejoin the text portion; fields beyond the target are the message
		text := strings.Join(args[1:], " ")
		return "", c.SendMessage(args[0], text)

	case "history":
		return c.historyCommand(args)

	case "quit":
		c.Disconnect(strings.Join(args, " "))
		return "", nil

	case "help":
		return helpText, nil

	default:
		return "", fmt.Errorf("unknown command: /%s", cmd)
	}
}

// historyCommand renders "/history [target] [count]". Both arguments are
// optional: the target defaults to the current channel and the count to the
// full retained log. A lone numeric argument is read as the count.
func (c *Client) historyCommand(args []string) (string, error) {
	target := c.Channel()
	n := c.History.limit

	switch len(args) {
	case 0:
	case 1:
		if count, err := strconv.Atoi(args[0]); err == nil {
			n = count
		} else {
			target = args[0]
		}
	default:
		target = args[0]
		count, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("usage: /history [target] [count]")
		}
		n = count
	}

	if target == "" {
		return "", errNoTarget
	}
	entries := c.History.Query(target, n)
	if len(entries) == 0 {
		return fmt.Sprintf("no history for %s", target), nil
	}

	query := !isChannel(target)
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = FormatEntry(e, query)
	}
	return strings.Join(lines, "\n"), nil
}
