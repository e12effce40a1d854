package domain

import (
	"testing"

	"chat-relay/errors"

	"github.com/stretchr/testify/require"
)

func TestParseLine_Dispatch_Priority(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected Command
	}{
		{name: "Quit literal", line: "quit", expected: QuitCommand{}},
		{name: "List rooms", line: "/chats", expected: ListRoomsCommand{}},
		{name: "Join room", line: "/get_chat dev", expected: JoinRoomCommand{Room: "dev"}},
		{name: "Direct message", line: "/send bob secret", expected: DirectCommand{Target: "bob", Text: "secret"}},
		{name: "Direct message keeps the rest of the line", line: "/send bob secret plan at dawn",
			expected: DirectCommand{Target: "bob", Text: "secret plan at dawn"}},
		{name: "Free text", line: "hello world", expected: ChatCommand{Text: "hello world"}},
		{name: "Free text mentioning quit", line: "quitting now", expected: ChatCommand{Text: "quitting now"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			cmd, err := ParseLine(tt.line)
			req.NoError(err)
			req.Equal(tt.expected, cmd)
		})
	}
}

func TestParseLine_Malformed_Commands(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "Join without room", line: "/get_chat"},
		{name: "Join with too many arguments", line: "/get_chat dev ops"},
		{name: "Send without text", line: "/send bob"},
		{name: "Send without anything", line: "/send"},
		{name: "Send with blank text", line: "/send bob  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			_, err := ParseLine(tt.line)
			req.ErrorIs(err, errors.ErrMalformedCommand)
		})
	}
}

func TestValidateUsername(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateUsername("alice"))
	req.ErrorIs(ValidateUsername(""), errors.ErrInvalidUsername)
	req.ErrorIs(ValidateUsername("alice smith"), errors.ErrInvalidUsername)
	req.ErrorIs(ValidateUsername("waaaaaaaaaaaaaaaaaaaaaaaaaaaay-too-long-for-a-handle"), errors.ErrInvalidUsername)
}

func TestValidateRoomName(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateRoomName("dev"))
	req.ErrorIs(ValidateRoomName(""), errors.ErrMalformedCommand)
}