package runtime

import (
	"log/slog"
	"sync"

	"chat-relay/domain"
)

// History is the global append-only chat log. The log only ever grows
// while the server runs; the replay window is a slice of the tail, never
// a truncation of the log itself.
type History struct {
	mu      sync.RWMutex
	entries []domain.Entry
	log     *slog.Logger
}

func NewHistory(log *slog.Logger) *History {
	return &History{log: log}
}

func (h *History) Append(entry domain.Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
}

// Tail returns a copy of the last n entries in original order,
// fewer when the log is shorter.
func (h *History) Tail(n int) []domain.Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	start := len(h.entries) - n
	if start < 0 {
		start = 0
	}
	out := make([]domain.Entry, len(h.entries)-start)
	copy(out, h.entries[start:])
	return out
}

// Len returns the current log length.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Snapshot captures the room states and the full history for persistence.
func (h *History) Snapshot(rooms []domain.RoomState) domain.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	entries := make([]domain.Entry, len(h.entries))
	copy(entries, h.entries)
	return domain.Snapshot{Version: domain.SchemaVersion, Rooms: rooms, History: entries}
}

// Restore replaces the log with entries from a loaded snapshot.
// Called once at startup, before any connection is accepted.
func (h *History) Restore(entries []domain.Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = entries
	h.log.Debug("History restored", "entries", len(entries))
}
