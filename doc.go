/*
Package irc implements the client side of the IRC wire protocol.

The Client type manages a connection to an IRC server: it handles
registration (NICK/USER), replies to server pings, retries nickname
collisions, tracks the current channel, and records conversations into a
bounded per-target History.

Incoming messages are translated into Event values and delivered to the
notify callback passed to ConnectAndRun, in arrival order, from a single
goroutine:

	client := &irc.Client{
		Addr:     "irc.example.net:6667",
		Nickname: "gopher",
		User:     "gopher",
		Realname: "Gopher",
	}
	err := client.ConnectAndRun(ctx, func(e irc.Event) {
		// render e
	})

User input, including slash commands such as /join and /msg, is interpreted
by the Exec method. Lower-level access is available through the Message type,
which marshals to and from IRC-encoded lines, and the named constructors
(Msg, Join, Quit, etc.) which build correctly-formed outgoing messages.

The irctest package provides a mock server for testing client behavior
without a network.
*/
package irc
