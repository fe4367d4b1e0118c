// Package ircws adapts a websocket connection for use as an irc.Client
// transport, for gateways that speak the IRC line protocol over ws:// or
// wss:// endpoints.
package ircws

import (
	"context"
	"io"
	"time"

	"github.com/coder/websocket"
)

// handshakeTimeout bounds the websocket dial and handshake.
const handshakeTimeout = 15 * time.Second

// Dialer returns a dial function suitable for irc.Client.DialFn which
// connects to the given ws:// or wss:// url.
//
// The returned connection presents the websocket as a byte stream. IRC lines
// may span or share websocket frames; the client's own line framing handles
// both.
func Dialer(url string, opts *websocket.DialOptions) func() (io.ReadWriteCloser, error) {
	return func() (io.ReadWriteCloser, error) {
		ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
		defer cancel()

		conn, _, err := websocket.Dial(ctx, url, opts)
		if err != nil {
			return nil, err
		}
		// the context given to NetConn governs the connection's lifetime,
		// not the handshake, so it must outlive this call
		return websocket.NetConn(context.Background(), conn, websocket.MessageText), nil
	}
}
