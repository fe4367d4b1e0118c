package irc_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kmrenner/irc"
	"github.com/kmrenner/irc/irctest"
)

func TestClient_ConnectAndRun(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server := newServer()
	defer server.Close()

	client := &irc.Client{Nickname: "HelloBot"}
	client.DialFn = func() (io.ReadWriteCloser, error) {
		return server, nil
	}

	var kinds []irc.EventKind
	err := client.ConnectAndRun(ctx, func(e irc.Event) {
		kinds = append(kinds, e.Kind)
		switch {
		case e.Kind == irc.EventRegistered:
			// the channel sigil is applied automatically
			client.JoinChannel("asd")
		case e.Kind == irc.EventJoined && e.Self:
			if e.Target != "#asd" {
				t.Errorf("joined channel; got %q wanted %q", e.Target, "#asd")
			}
			if err := client.SendMessage("", "hello channel"); err != nil {
				t.Errorf("expected message to send, got: %v", err)
			}
			go client.Disconnect("bye")
		}
	})
	if err != nil {
		t.Errorf("expected client to exit without errors, got: %v", err)
	}

	assertEventOrder(t, kinds,
		irc.EventConnected,
		irc.EventRegistered,
		irc.EventJoined,
		irc.EventTerminated,
	)

	// identity resets on disconnect, history survives
	if client.Registered() {
		t.Error("expected registration to be cleared after disconnect")
	}
	if got := client.Channel(); got != "" {
		t.Errorf("expected no channel after disconnect; got %q", got)
	}
	if got := client.History.Len("#asd"); got != 1 {
		t.Errorf("expected our sent message in history; got %d entries", got)
	}
}

func TestClient_NickRetry(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server := newServer()
	server.taken = "HelloBot"
	defer server.Close()

	client := &irc.Client{Nickname: "HelloBot"}
	client.DialFn = func() (io.ReadWriteCloser, error) {
		return server, nil
	}

	err := client.ConnectAndRun(ctx, func(e irc.Event) {
		if e.Kind == irc.EventRegistered {
			go client.Disconnect("")
		}
	})
	if err != nil {
		t.Errorf("expected client to exit without errors, got: %v", err)
	}
	if got := client.Nick().String(); got != "HelloBot1" {
		t.Errorf("expected the suffixed retry nickname; got %q", got)
	}
}

func TestClient_Banned(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server := newServer()
	server.banned = true
	defer server.Close()

	client := &irc.Client{Nickname: "HelloBot"}
	client.DialFn = func() (io.ReadWriteCloser, error) {
		return server, nil
	}

	err := client.ConnectAndRun(ctx, nil)
	if !errors.Is(err, irc.ErrBanned) {
		t.Errorf("expected ErrBanned, got: %v", err)
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sessionCtx, stop := context.WithCancel(ctx)

	server := newServer()
	defer server.Close()

	client := &irc.Client{Nickname: "HelloBot"}
	client.DialFn = func() (io.ReadWriteCloser, error) {
		return server, nil
	}

	err := client.ConnectAndRun(sessionCtx, func(e irc.Event) {
		if e.Kind == irc.EventRegistered {
			stop()
		}
	})
	if err != nil {
		t.Errorf("expected a clean exit after cancellation, got: %v", err)
	}
}

// A line split across two transport reads must still parse intact, and a
// complete line delivered in the same chunk as a long partial tail must not
// be corrupted when the reader buffers the remainder.
func TestClient_SplitLineDelivery(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server := newServer()
	defer server.Close()

	client := &irc.Client{Nickname: "HelloBot"}
	client.DialFn = func() (io.ReadWriteCloser, error) {
		return server, nil
	}

	long := strings.Repeat("x", 40000)
	var received string
	err := client.ConnectAndRun(ctx, func(e irc.Event) {
		switch e.Kind {
		case irc.EventRegistered:
			// the writes block until the client consumes them, so they can't
			// run on the dispatch goroutine
			go func() {
				server.WriteRaw("PING :tok42\r\n:bob!b@example.com PRIVMSG HelloBot :" + long[:20000])
				server.WriteRaw(long[20000:] + "\r\n")
			}()
		case irc.EventPrivateMessage:
			received = e.Text
			go client.Disconnect("")
		}
	})
	if err != nil {
		t.Errorf("expected client to exit without errors, got: %v", err)
	}
	if received != long {
		t.Errorf("split line arrived corrupted; got %d bytes (prefix %.20q), wanted %d bytes of %q", len(received), received, len(long), "x")
	}
	var found bool
	for _, token := range server.pongTokens() {
		if token == "tok42" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected PONG tok42 for the PING sharing a chunk with the partial line; got %v", server.pongTokens())
	}
}

func assertEventOrder(t *testing.T, got []irc.EventKind, want ...irc.EventKind) {
	t.Helper()
	i := 0
	for _, k := range got {
		if i < len(want) && k == want[i] {
			i++
		}
	}
	if i != len(want) {
		t.Errorf("expected events %v in order; got %v", want, got)
	}
}

// mockServer wraps the irctest server with just enough state to act like
// an IRC network for a single client.
type mockServer struct {
	*irctest.Server

	taken  string // a nickname that will be refused with 433
	banned bool   // refuse registration with 465

	mu    sync.Mutex
	pongs []string // PONG tokens received from the client
}

func (ms *mockServer) pongTokens() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]string(nil), ms.pongs...)
}

func newServer() *mockServer {
	ms := &mockServer{Server: irctest.NewServer()}
	s := ms.Server
	state := struct {
		servername   string
		clientPrefix irc.Prefix
		connected    bool
	}{clientPrefix: irc.Prefix{Host: "1.2.3.4"}, servername: "irc.example.com"}

	connectSuccess := func() {
		state.connected = true
		s.WriteString(fmt.Sprintf(":%s 001 %s :Welcome to the IRC Network %s\r\n", state.servername, state.clientPrefix.Nick, state.clientPrefix.String()))
		s.WriteString(fmt.Sprintf(":%s 002 %s :Your host is %s, running version 69\r\n", state.servername, state.clientPrefix.Nick, state.servername))
		s.WriteString(fmt.Sprintf(":%s 003 %s :-\r\n", state.servername, state.clientPrefix.Nick))
		s.WriteString(fmt.Sprintf(":%s 004 %s :-\r\n", state.servername, state.clientPrefix.Nick))
		s.WriteString("PING :9324421\r\n")
	}

	tryRegister := func() {
		if state.connected || state.clientPrefix.Nick == "" || state.clientPrefix.User == "" {
			return
		}
		if ms.banned {
			s.WriteString(fmt.Sprintf(":%s 465 * :You are banned from this server\r\n", state.servername))
			return
		}
		if state.clientPrefix.Nick.Is(ms.taken) {
			s.WriteString(fmt.Sprintf(":%s 433 * %s :Nickname is already in use\r\n", state.servername, state.clientPrefix.Nick))
			return
		}
		connectSuccess()
	}

	s.Handler = irc.HandlerFunc(func(w irc.MessageWriter, m *irc.Message) {
		m.Source = state.clientPrefix

		switch m.Command {
		case "QUIT":
			s.WriteString(fmt.Sprintf("ERROR :Closing link: %s (QUIT: %s)\r\n", m.Source.Nick, m.Params.Get(1)))
			_ = s.Close()

		case "USER":
			state.clientPrefix.User = "~" + m.Params.Get(1)
			tryRegister()

		case "NICK":
			newnick := irc.Nickname(m.Params.Get(1))
			state.clientPrefix.Nick = newnick
			if !state.connected {
				tryRegister()
				return
			}
			s.WriteString(fmt.Sprintf(":%s NICK :%s", state.clientPrefix.String(), newnick))

		case "JOIN":
			s.WriteString(fmt.Sprintf(":%s JOIN %s\r\n", state.clientPrefix.String(), m.Params.Get(1)))
			s.WriteString(fmt.Sprintf(":%s 353 %s = %s :@%s\r\n", state.servername, state.clientPrefix.Nick, m.Params.Get(1), state.clientPrefix.Nick))

		case "PART":
			s.WriteString(fmt.Sprintf(":%s PART %s\r\n", state.clientPrefix.String(), m.Params.Get(1)))

		case "PONG":
			ms.mu.Lock()
			ms.pongs = append(ms.pongs, m.Params.Get(1))
			ms.mu.Unlock()
		}
	})

	return ms
}
