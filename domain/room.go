// Package domain contains core concepts of the chat relay.
// This file defines rooms and their membership snapshots.
// No runtime, network, or persistence logic should be added here.
package domain

// DefaultRoom always exists and receives every freshly registered session.
const DefaultRoom = "main"

// Room is a point-in-time view of a named room.
// Members is a copy; mutating it never affects the directory.
type Room struct {
	Name    string
	Members []string
}
