package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one line of the global chat log, already formatted
// as "username: body" (or a system notice).
type Entry struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// NewEntry stamps a formatted line for the history log.
func NewEntry(text string) Entry {
	return Entry{ID: uuid.New(), Text: text, At: time.Now().UTC()}
}

// SchemaVersion tags the persisted snapshot layout.
const SchemaVersion = 1

// RoomState is the durable form of a room.
type RoomState struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Snapshot is the durable server state captured at shutdown:
// the room set in creation order plus the full history log.
type Snapshot struct {
	Version int         `json:"version"`
	Rooms   []RoomState `json:"rooms"`
	History []Entry     `json:"history"`
}

// Empty reports whether the snapshot carries no state at all.
func (s Snapshot) Empty() bool {
	return len(s.Rooms) == 0 && len(s.History) == 0
}
