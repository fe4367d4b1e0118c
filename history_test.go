package irc

import (
	"fmt"
	"testing"
	"time"
)

func TestHistoryTrim(t *testing.T) {
	h := NewHistory(100)
	for i := 1; i <= 101; i++ {
		h.Append("#test", HistoryEntry{From: "bob", Text: fmt.Sprintf("message %d", i)})
	}

	if got := h.Len("#test"); got != 100 {
		t.Errorf("history length after overflow; got %d wanted %d", got, 100)
	}

	entries := h.Query("#test", 100)
	if len(entries) != 100 {
		t.Fatalf("query length; got %d wanted %d", len(entries), 100)
	}
	if entries[0].Text != "message 2" {
		t.Errorf("oldest retained entry; got %q wanted %q", entries[0].Text, "message 2")
	}
	if entries[99].Text != "message 101" {
		t.Errorf("newest entry; got %q wanted %q", entries[99].Text, "message 101")
	}
}

func TestHistoryQueryOrder(t *testing.T) {
	h := NewHistory(10)
	for i := 1; i <= 5; i++ {
		h.Append("bob", HistoryEntry{Text: fmt.Sprintf("m%d", i)})
	}

	entries := h.Query("bob", 3)
	want := []string{"m3", "m4", "m5"}
	if len(entries) != len(want) {
		t.Fatalf("query length; got %d wanted %d", len(entries), len(want))
	}
	for i, w := range want {
		if entries[i].Text != w {
			t.Errorf("entry %d; got %q wanted %q", i, entries[i].Text, w)
		}
	}

	// asking for more than exists returns everything
	if got := len(h.Query("bob", 50)); got != 5 {
		t.Errorf("oversized query length; got %d wanted %d", got, 5)
	}
}

func TestHistoryUnknownTarget(t *testing.T) {
	h := NewHistory(10)
	if entries := h.Query("#nowhere", 10); len(entries) != 0 {
		t.Errorf("expected no entries for unknown target; got %d", len(entries))
	}
	if got := h.Len("#nowhere"); got != 0 {
		t.Errorf("expected zero length for unknown target; got %d", got)
	}
}

func TestHistoryTargetEviction(t *testing.T) {
	h := NewHistory(10)
	h.Append("#first", HistoryEntry{Text: "hello"})
	for i := 0; i < historyTargetLimit; i++ {
		h.Append(fmt.Sprintf("#chan%d", i), HistoryEntry{Text: "x"})
	}

	// the oldest target fell out of the cache
	if got := h.Len("#first"); got != 0 {
		t.Errorf("expected evicted target to be empty; got %d entries", got)
	}
	if got := h.Len(fmt.Sprintf("#chan%d", historyTargetLimit-1)); got != 1 {
		t.Errorf("expected recent target to survive; got %d entries", got)
	}
}

func TestHistoryQueryIsACopy(t *testing.T) {
	h := NewHistory(10)
	h.Append("#test", HistoryEntry{Text: "original"})

	entries := h.Query("#test", 1)
	entries[0].Text = "mutated"

	if got := h.Query("#test", 1)[0].Text; got != "original" {
		t.Errorf("stored entry was mutated through a query result; got %q", got)
	}
}

func TestFormatEntry(t *testing.T) {
	ts := time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC)
	e := HistoryEntry{Time: ts, From: "bob", Text: "hello"}

	if got := FormatEntry(e, false); got != "[15:04:05] bob: hello" {
		t.Errorf("channel format; got %q", got)
	}
	if got := FormatEntry(e, true); got != "[15:04:05] *bob*: hello" {
		t.Errorf("query format; got %q", got)
	}
}

func TestHistoryDefaultLimit(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < DefaultHistoryLimit+10; i++ {
		h.Append("#test", HistoryEntry{Text: "a"})
	}
	if got := h.Len("#test"); got != DefaultHistoryLimit {
		t.Errorf("default limit; got %d wanted %d", got, DefaultHistoryLimit)
	}
}
