package runtime

import (
	"log/slog"
	"testing"

	"chat-relay/domain"

	"github.com/stretchr/testify/require"
)

func TestDirectory_Default_Room_Exists(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory(slog.Default())

	// Then "main" exists from construction, empty
	req.Equal([]string{"main"}, directory.ListNames())
	room := directory.GetOrCreate("main")
	req.Empty(room.Members)
}

func TestDirectory_GetOrCreate_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory(slog.Default())

	// When the same room is referenced twice
	directory.GetOrCreate("dev")
	directory.MoveUser("alice", "dev")
	again := directory.GetOrCreate("dev")

	// Then no duplicate room was produced and membership is preserved
	req.Equal([]string{"main", "dev"}, directory.ListNames())
	req.Equal([]string{"alice"}, again.Members)
}

func TestDirectory_MoveUser_Guarantees_Exclusive_Membership(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory(slog.Default())

	// Given alice sits in main
	directory.MoveUser("alice", "main")

	// When alice moves to dev
	moved := directory.MoveUser("alice", "dev")

	// Then dev contains alice and main no longer does
	req.Equal("dev", moved.Name)
	req.Equal([]string{"alice"}, moved.Members)
	req.Empty(directory.GetOrCreate("main").Members)

	// And alice is a member of exactly one room
	room, ok := directory.RoomOf("alice")
	req.True(ok)
	req.Equal("dev", room.Name)
}

func TestDirectory_MoveUser_Repeated_Adds_Never_Duplicate(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory(slog.Default())

	// When alice joins the same room twice
	directory.MoveUser("alice", "dev")
	room := directory.MoveUser("alice", "dev")

	// Then the member set holds her once
	req.Equal([]string{"alice"}, room.Members)
}

func TestDirectory_RoomOf_Miss(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory(slog.Default())

	_, ok := directory.RoomOf("ghost")
	req.False(ok)
}

func TestDirectory_ListNames_Keeps_Creation_Order(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory(slog.Default())

	directory.GetOrCreate("dev")
	directory.GetOrCreate("ops")
	directory.GetOrCreate("dev")

	req.Equal([]string{"main", "dev", "ops"}, directory.ListNames())
}

func TestDirectory_Rooms_Survive_Emptying(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory(slog.Default())

	// Given dev held alice
	directory.MoveUser("alice", "dev")

	// When alice leaves for main
	directory.MoveUser("alice", "main")

	// Then dev persists, empty
	req.Equal([]string{"main", "dev"}, directory.ListNames())
	req.Empty(directory.GetOrCreate("dev").Members)
}

func TestDirectory_States_And_Restore_Round_Trip(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory(slog.Default())
	directory.MoveUser("alice", "dev")
	directory.MoveUser("bob", "main")

	// When states are captured and loaded into a fresh directory
	states := directory.States()
	restored := NewDirectory(slog.Default())
	restored.Restore(states)

	// Then rooms and membership match structurally
	req.Equal(states, restored.States())
	req.Equal([]domain.RoomState{
		{Name: "main", Members: []string{"bob"}},
		{Name: "dev", Members: []string{"alice"}},
	}, restored.States())
}
