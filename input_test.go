package irc

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// fakeConn records everything the client writes.
type fakeConn struct {
	bytes.Buffer
}

func (f *fakeConn) Close() error { return nil }

func TestExecSendToCurrentChannel(t *testing.T) {
	c, _, _ := newTestClient("gopher")
	conn := &fakeConn{}
	c.conn = conn
	c.state.channel = "#test"

	if _, err := c.Exec("hello everyone"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got := conn.String(); got != "PRIVMSG #test :hello everyone\r\n" {
		t.Errorf("wire output; got %q", got)
	}
	if got := c.History.Len("#test"); got != 1 {
		t.Errorf("expected the sent message in history; got %d entries", got)
	}
}

func TestExecSendNoTarget(t *testing.T) {
	c, _, _ := newTestClient("gopher")
	c.conn = &fakeConn{}

	if _, err := c.Exec("hello?"); err == nil {
		t.Error("expected an error when not in a channel")
	}
}

func TestExecJoin(t *testing.T) {
	c, _, _ := newTestClient("gopher")
	conn := &fakeConn{}
	c.conn = conn

	if _, err := c.Exec("/join test"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got := conn.String(); got != "JOIN #test\r\n" {
		t.Errorf("wire output; got %q", got)
	}
}

// joining while in a channel parts the old one first
func TestExecJoinPartsCurrentChannel(t *testing.T) {
	c, _, _ := newTestClient("gopher")
	conn := &fakeConn{}
	c.conn = conn
	c.state.channel = "#old"

	if _, err := c.Exec("/join #new"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got := conn.String(); got != "PART #old\r\nJOIN #new\r\n" {
		t.Errorf("wire output; got %q", got)
	}
}

func TestExecMsg(t *testing.T) {
	c, _, _ := newTestClient("gopher")
	conn := &fakeConn{}
	c.conn = conn

	if _, err := c.Exec("/msg bob hey there"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got := conn.String(); got != "PRIVMSG bob :hey there\r\n" {
		t.Errorf("wire output; got %q", got)
	}
	if got := c.History.Len("bob"); got != 1 {
		t.Errorf("expected the query in history; got %d entries", got)
	}
}

func TestExecQuit(t *testing.T) {
	c, _, _ := newTestClient("gopher")
	conn := &fakeConn{}
	c.conn = conn

	if _, err := c.Exec("/quit gone fishing"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got := conn.String(); got != "QUIT :gone fishing\r\n" {
		t.Errorf("wire output; got %q", got)
	}
	if c.state.status != statusDisconnecting {
		t.Errorf("status after quit; got %v wanted %v", c.state.status, statusDisconnecting)
	}
}

func TestExecHistory(t *testing.T) {
	c, _, _ := newTestClient("gopher")
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.History.Append("bob", HistoryEntry{Time: ts, From: "bob", Text: "one"})
	c.History.Append("bob", HistoryEntry{Time: ts, From: "gopher", Text: "two"})
	c.History.Append("#test", HistoryEntry{Time: ts, From: "bob", Text: "channel talk"})

	out, err := c.Exec("/history bob 1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if out != "[12:00:00] *gopher*: two" {
		t.Errorf("query history output; got %q", out)
	}

	out, err = c.Exec("/history #test")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if out != "[12:00:00] bob: channel talk" {
		t.Errorf("channel history output; got %q", out)
	}
}

func TestExecHistoryDefaultsToCurrentChannel(t *testing.T) {
	c, _, _ := newTestClient("gopher")
	c.state.channel = "#test"
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		c.History.Append("#test", HistoryEntry{Time: ts, From: "bob", Text: "x"})
	}

	// a lone numeric argument is a count, not a target
	out, err := c.Exec("/history 2")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got := len(strings.Split(out, "\n")); got != 2 {
		t.Errorf("history line count; got %d wanted 2", got)
	}
}

func TestExecHistoryEmpty(t *testing.T) {
	c, _, _ := newTestClient("gopher")

	out, err := c.Exec("/history #nowhere")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if out != "no history for #nowhere" {
		t.Errorf("empty history output; got %q", out)
	}

	// no target at all is an error
	if _, err := c.Exec("/history"); err == nil {
		t.Error("expected an error with no target and no channel")
	}
}

func TestExecUsageErrors(t *testing.T) {
	c, _, _ := newTestClient("gopher")

	var inputs = []string{
		"/join",
		"/msg",
		"/msg bob",
		"/part",
	}
	for _, input := range inputs {
		if _, err := c.Exec(input); err == nil {
			t.Errorf("expected an error for %q", input)
		}
	}
}

func TestExecUnknownCommand(t *testing.T) {
	c, _, _ := newTestClient("gopher")

	_, err := c.Exec("/frobnicate")
	if err == nil || err.Error() != "unknown command: /frobnicate" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExecHelp(t *testing.T) {
	c, _, _ := newTestClient("gopher")

	out, err := c.Exec("/help")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !strings.Contains(out, "/join") || !strings.Contains(out, "/history") {
		t.Errorf("help output seems incomplete: %q", out)
	}
}

func TestExecEmptyInput(t *testing.T) {
	c, _, _ := newTestClient("gopher")

	out, err := c.Exec("   ")
	if err != nil || out != "" {
		t.Errorf("blank input should be ignored; got %q, %v", out, err)
	}
}

func TestExecNick(t *testing.T) {
	c, _, _ := newTestClient("gopher")
	conn := &fakeConn{}
	c.conn = conn

	if _, err := c.Exec("/nick ferret"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got := conn.String(); got != "NICK ferret\r\n" {
		t.Errorf("wire output; got %q", got)
	}
	// optimistic update
	if got := c.Nick().String(); got != "ferret" {
		t.Errorf("nick after change request; got %q wanted %q", got, "ferret")
	}

	// no argument reports the current nickname
	out, err := c.Exec("/nick")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if out != "current nickname: ferret" {
		t.Errorf("nick report; got %q", out)
	}
}
