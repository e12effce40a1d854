// Package runtime holds the shared server state: sessions, rooms,
// history, and the fan-out router. It contains no transport logic.
package runtime

import (
	"log/slog"
	"sync"

	"chat-relay/contract"
	"chat-relay/errors"
)

type Set map[string]struct{}

// DuplicatePolicy decides what happens when a username registers twice.
type DuplicatePolicy string

const (
	// PolicyTakeover replaces the previous session; its sink is handed
	// back to the caller to be closed.
	PolicyTakeover DuplicatePolicy = "takeover"
	// PolicyReject refuses the new registration and keeps the old session.
	PolicyReject DuplicatePolicy = "reject"
)

// Registry maps registered usernames to their outbound sinks.
// It also remembers every username it has ever seen, so a reconnecting
// client can be told apart from a first-time one.
type Registry struct {
	mu       sync.RWMutex
	policy   DuplicatePolicy
	sessions map[string]contract.LineSink
	known    Set
	log      *slog.Logger
}

func NewRegistry(policy DuplicatePolicy, log *slog.Logger) *Registry {
	return &Registry{
		policy:   policy,
		sessions: make(map[string]contract.LineSink),
		known:    make(Set),
		log:      log,
	}
}

// Register inserts the username → sink mapping.
// Under PolicyTakeover a previous sink for the same username is returned
// so the caller can close it; under PolicyReject the registration fails
// with ErrUsernameTaken and the existing session is untouched.
func (r *Registry) Register(username string, sink contract.LineSink) (contract.LineSink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.sessions[username]
	if exists && r.policy == PolicyReject {
		return nil, errors.ErrUsernameTaken
	}

	r.sessions[username] = sink
	r.known[username] = struct{}{}

	if exists {
		r.log.Debug("Session taken over", "username", username)
		return prev, nil
	}
	return nil, nil
}

// Unregister removes the mapping. Idempotent if absent.
func (r *Registry) Unregister(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, username)
}

// Release removes the mapping only while it still points at the given
// sink. A handler closing after a takeover must not tear down the session
// that replaced it.
func (r *Registry) Release(username string, sink contract.LineSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.sessions[username]; ok && current == sink {
		delete(r.sessions, username)
	}
}

func (r *Registry) Exists(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[username]
	return ok
}

func (r *Registry) Lookup(username string) (contract.LineSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sessions[username]
	return sink, ok
}

// Snapshot returns a stable copy of the current entries.
// Broadcast iterates the copy, so a concurrent register or unregister is
// reflected in the next fan-out, never the in-flight one.
func (r *Registry) Snapshot() map[string]contract.LineSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]contract.LineSink, len(r.sessions))
	for username, sink := range r.sessions {
		out[username] = sink
	}
	return out
}

// KnownBefore reports whether the username was ever registered, including
// names seeded from a restored snapshot. Callers deciding between history
// replay and a "New client" notice must ask before registering.
func (r *Registry) KnownBefore(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.known[username]
	return ok
}

// MarkKnown seeds the seen-username set, typically from restored room
// membership at startup.
func (r *Registry) MarkKnown(usernames ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, username := range usernames {
		r.known[username] = struct{}{}
	}
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
