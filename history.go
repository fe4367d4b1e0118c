package irc

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultHistoryLimit is the number of entries kept per target when a History
// is constructed with a non-positive limit.
const DefaultHistoryLimit = 100

// historyTargetLimit bounds how many targets are tracked at once. Targets
// beyond the limit are evicted least-recently-used so that joining and leaving
// many channels (or receiving queries from many users) cannot grow memory
// without bound.
const historyTargetLimit = 64

// HistoryEntry is a single exchanged message as recorded in a History.
type HistoryEntry struct {
	Time time.Time
	From string
	Text string
}

// History is a bounded, per-target conversation log.
//
// Entries are keyed by target name: a channel for channel messages, or the
// peer's nickname for queries, so both directions of a private exchange
// accumulate under the same key. Entries survive connect/disconnect cycles
// for the lifetime of the History.
//
// All methods are safe for concurrent use.
type History struct {
	mu      sync.Mutex
	limit   int
	targets *lru.Cache[string, []HistoryEntry]
}

// NewHistory creates a History which retains up to limit entries per target.
// A non-positive limit selects DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	targets, err := lru.New[string, []HistoryEntry](historyTargetLimit)
	if err != nil {
		// only reachable with a non-positive cache size
		panic(err)
	}
	return &History{
		limit:   limit,
		targets: targets,
	}
}

// Append adds e to the end of target's log. When the log exceeds the limit the
// oldest entries are trimmed; trimming runs after every append so the log can
// never grow past limit.
func (h *History) Append(target string, e HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, _ := h.targets.Get(target)
	entries = append(entries, e)
	if n := len(entries) - h.limit; n > 0 {
		entries = append([]HistoryEntry(nil), entries[n:]...)
	}
	h.targets.Add(target, entries)
}

// Query returns up to n of the most recent entries for target in chronological
// order. An unknown target yields an empty result, never an error.
func (h *History) Query(target string, n int) []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, ok := h.targets.Get(target)
	if !ok || n <= 0 {
		return nil
	}
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]HistoryEntry, n)
	copy(out, entries[len(entries)-n:])
	return out
}

// Len returns the number of entries recorded for target.
func (h *History) Len(target string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, _ := h.targets.Peek(target)
	return len(entries)
}

// FormatEntry renders a history entry for display,
// e.g. "[15:04:05] nick: hello". Query entries surround the
// nickname with asterisks instead.
func FormatEntry(e HistoryEntry, query bool) string {
	ts := e.Time.Format("15:04:05")
	if query {
		return fmt.Sprintf("[%s] *%s*: %s", ts, e.From, e.Text)
	}
	return fmt.Sprintf("[%s] %s: %s", ts, e.From, e.Text)
}
