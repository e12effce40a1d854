package runtime

import (
	"log/slog"
	"sort"
	"sync"

	"chat-relay/domain"
)

// Directory owns the set of rooms and their membership.
// A username belongs to at most one room at any time; MoveUser is the only
// membership mutation, which is what guarantees the exclusivity invariant.
// Rooms are never destroyed, an empty room keeps its name and its slot in
// the creation order.
type Directory struct {
	mu    sync.RWMutex
	rooms map[string]Set
	order []string
	log   *slog.Logger
}

func NewDirectory(log *slog.Logger) *Directory {
	d := &Directory{
		rooms: make(map[string]Set),
		log:   log,
	}
	d.createLocked(domain.DefaultRoom)
	return d
}

// createLocked registers an empty room. Caller holds the write lock
// (or owns the directory exclusively, as in the constructor).
func (d *Directory) createLocked(name string) Set {
	members := make(Set)
	d.rooms[name] = members
	d.order = append(d.order, name)
	d.log.Debug("Room created", "room", name)
	return members
}

// GetOrCreate returns the room by name, creating it empty when first
// referenced. Repeated calls with the same name never produce duplicates.
func (d *Directory) GetOrCreate(name string) domain.Room {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rooms[name]; !ok {
		d.createLocked(name)
	}
	return d.viewLocked(name)
}

// RoomOf finds the room containing the username by scanning membership.
// Room cardinality stays small, a linear scan is fine.
func (d *Directory) RoomOf(username string) (domain.Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, name := range d.order {
		if _, ok := d.rooms[name][username]; ok {
			return d.viewLocked(name), true
		}
	}
	return domain.Room{}, false
}

// MoveUser removes the username from whatever room currently holds it
// (no-op if none), adds it to the target room, and returns the target.
func (d *Directory) MoveUser(username, target string) domain.Room {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, members := range d.rooms {
		delete(members, username)
	}

	members, ok := d.rooms[target]
	if !ok {
		members = d.createLocked(target)
	}
	members[username] = struct{}{}
	return d.viewLocked(target)
}

// ListNames returns the room names in creation order.
func (d *Directory) ListNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// States captures every room for persistence, creation order preserved.
func (d *Directory) States() []domain.RoomState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.RoomState, 0, len(d.order))
	for _, name := range d.order {
		room := d.viewLocked(name)
		out = append(out, domain.RoomState{Name: room.Name, Members: room.Members})
	}
	return out
}

// Restore rebuilds the directory from persisted room states.
// The default room is kept even when the snapshot predates it.
func (d *Directory) Restore(states []domain.RoomState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, state := range states {
		members, ok := d.rooms[state.Name]
		if !ok {
			members = d.createLocked(state.Name)
		}
		for _, username := range state.Members {
			members[username] = struct{}{}
		}
	}
}

// viewLocked builds a point-in-time copy of a room. Members are sorted so
// snapshots and assertions are deterministic.
func (d *Directory) viewLocked(name string) domain.Room {
	members := make([]string, 0, len(d.rooms[name]))
	for username := range d.rooms[name] {
		members = append(members, username)
	}
	sort.Strings(members)
	return domain.Room{Name: name, Members: members}
}
