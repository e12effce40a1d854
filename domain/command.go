package domain

import (
	"fmt"
	"strings"

	"chat-relay/errors"
)

// Command is one parsed client line.
type Command interface {
	command()
}

// QuitCommand terminates the session.
type QuitCommand struct{}

// ListRoomsCommand asks for the room names as a JSON array.
type ListRoomsCommand struct{}

// JoinRoomCommand moves the sender into a room, creating it if needed.
type JoinRoomCommand struct {
	Room string
}

// DirectCommand addresses one recipient regardless of rooms.
type DirectCommand struct {
	Target string
	Text   string
}

// ChatCommand is free text broadcast to the sender's room.
type ChatCommand struct {
	Text string
}

func (QuitCommand) command()      {}
func (ListRoomsCommand) command() {}
func (JoinRoomCommand) command()  {}
func (DirectCommand) command()    {}
func (ChatCommand) command()      {}

// ParseLine maps a raw client line onto a Command.
// Prefixes are checked in protocol priority order, first match wins.
// A recognized prefix with missing arguments is a malformed command,
// never a chat line.
func ParseLine(line string) (Command, error) {
	switch {
	case line == "quit":
		return QuitCommand{}, nil
	case strings.HasPrefix(line, "/chats"):
		return ListRoomsCommand{}, nil
	case strings.HasPrefix(line, "/get_chat"):
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: expected /get_chat <room>, got %q", errors.ErrMalformedCommand, line)
		}
		return JoinRoomCommand{Room: fields[1]}, nil
	case strings.HasPrefix(line, "/send"):
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 || parts[1] == "" || strings.TrimSpace(parts[2]) == "" {
			return nil, fmt.Errorf("%w: expected /send <user> <text>, got %q", errors.ErrMalformedCommand, line)
		}
		return DirectCommand{Target: parts[1], Text: parts[2]}, nil
	default:
		return ChatCommand{Text: line}, nil
	}
}
