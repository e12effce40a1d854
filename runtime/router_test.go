package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"chat-relay/domain"
	"chat-relay/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRouterFixture(t *testing.T) (*Router, *Registry, *Directory, *History) {
	t.Helper()
	log := slog.Default()
	registry := NewRegistry(PolicyTakeover, log)
	directory := NewDirectory(log)
	history := NewHistory(log)
	return NewRouter(log, registry, directory, history, 20), registry, directory, history
}

func TestRouter_Broadcast_Never_Delivers_To_Sender(t *testing.T) {
	req := require.New(t)
	router, registry, directory, _ := newRouterFixture(t)
	alice := &fakeSink{}
	bob := &fakeSink{}

	// Given alice and bob share the main room
	_, _ = registry.Register("alice", alice)
	_, _ = registry.Register("bob", bob)
	directory.MoveUser("alice", "main")
	directory.MoveUser("bob", "main")

	// When alice broadcasts
	router.Broadcast(context.Background(), "alice: hi", "alice")

	// Then bob receives it and alice does not
	req.Equal([]string{"alice: hi"}, bob.lines)
	req.Empty(alice.lines)
}

func TestRouter_Broadcast_Respects_Room_Isolation(t *testing.T) {
	req := require.New(t)
	router, registry, directory, _ := newRouterFixture(t)
	alice := &fakeSink{}
	bob := &fakeSink{}
	carol := &fakeSink{}

	// Given alice and carol in dev, bob in main
	_, _ = registry.Register("alice", alice)
	_, _ = registry.Register("bob", bob)
	_, _ = registry.Register("carol", carol)
	directory.MoveUser("alice", "dev")
	directory.MoveUser("bob", "main")
	directory.MoveUser("carol", "dev")

	// When alice broadcasts
	router.Broadcast(context.Background(), "alice: hello", "alice")

	// Then only carol receives it
	req.Equal([]string{"alice: hello"}, carol.lines)
	req.Empty(bob.lines)
}

func TestRouter_Broadcast_Skips_Offline_Members(t *testing.T) {
	req := require.New(t)
	router, registry, directory, _ := newRouterFixture(t)
	bob := &fakeSink{}

	// Given alice's room remembers a member without a live session
	_, _ = registry.Register("alice", &fakeSink{})
	_, _ = registry.Register("bob", bob)
	directory.MoveUser("alice", "main")
	directory.MoveUser("bob", "main")
	directory.MoveUser("ghost", "main")

	// When alice broadcasts
	router.Broadcast(context.Background(), "alice: hi", "alice")

	// Then delivery to the live member still happens
	req.Equal([]string{"alice: hi"}, bob.lines)
}

func TestRouter_Broadcast_Evicts_Dead_Recipient_And_Continues(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	router, registry, directory, _ := newRouterFixture(t)

	dead := mocks.NewMockLineSink(ctrl)
	dead.EXPECT().Push(gomock.Any(), gomock.Any()).Return(fmt.Errorf("broken pipe")).Times(1)
	dead.EXPECT().Close().Return(nil).Times(1)
	carol := &fakeSink{}

	// Given bob's sink is dead and carol's is fine
	_, _ = registry.Register("alice", &fakeSink{})
	_, _ = registry.Register("bob", dead)
	_, _ = registry.Register("carol", carol)
	directory.MoveUser("alice", "main")
	directory.MoveUser("bob", "main")
	directory.MoveUser("carol", "main")

	// When alice broadcasts
	router.Broadcast(context.Background(), "alice: hi", "alice")

	// Then carol still got the message and bob was unregistered
	req.Equal([]string{"alice: hi"}, carol.lines)
	req.False(registry.Exists("bob"))
}

func TestRouter_SendDirect_Reaches_Only_The_Target(t *testing.T) {
	req := require.New(t)
	router, registry, directory, _ := newRouterFixture(t)
	bob := &fakeSink{}
	carol := &fakeSink{}

	// Given bob and carol online, carol in another room
	_, _ = registry.Register("alice", &fakeSink{})
	_, _ = registry.Register("bob", bob)
	_, _ = registry.Register("carol", carol)
	directory.MoveUser("alice", "dev")
	directory.MoveUser("bob", "main")
	directory.MoveUser("carol", "ops")

	// When alice sends a direct message across rooms
	router.SendDirect(context.Background(), "secret", "alice", "bob")

	// Then bob alone receives "alice: secret"
	req.Equal([]string{"alice: secret"}, bob.lines)
	req.Empty(carol.lines)
}

func TestRouter_SendDirect_Unknown_Target_Is_Dropped(t *testing.T) {
	req := require.New(t)
	router, registry, _, _ := newRouterFixture(t)
	alice := &fakeSink{}
	_, _ = registry.Register("alice", alice)

	// When the target is offline
	router.SendDirect(context.Background(), "secret", "alice", "nobody")

	// Then nothing is surfaced to the sender
	req.Empty(alice.lines)
}

func TestRouter_Welcome_Returning_User_Gets_History_Tail(t *testing.T) {
	req := require.New(t)
	router, _, _, history := newRouterFixture(t)
	sink := &fakeSink{}

	// Given 25 historical entries
	for i := 0; i < 25; i++ {
		history.Append(domain.NewEntry(fmt.Sprintf("alice: message_%d", i)))
	}

	// When a returning user is welcomed
	router.Welcome(context.Background(), "bob", sink, true)

	// Then exactly the 20 most recent lines are replayed in order
	req.Len(sink.lines, 20)
	req.Equal("alice: message_5", sink.lines[0])
	req.Equal("alice: message_24", sink.lines[19])
}

func TestRouter_Welcome_First_Timer_Is_Announced(t *testing.T) {
	req := require.New(t)
	router, registry, directory, history := newRouterFixture(t)
	alice := &fakeSink{}
	bob := &fakeSink{}

	// Given alice already sits in main
	_, _ = registry.Register("alice", alice)
	directory.MoveUser("alice", "main")

	// When first-timer bob is welcomed
	_, _ = registry.Register("bob", bob)
	directory.MoveUser("bob", "main")
	router.Welcome(context.Background(), "bob", bob, false)

	// Then the notice is logged to history and broadcast to alice, not bob
	req.Equal(1, history.Len())
	req.Equal("New client bob", history.Tail(1)[0].Text)
	req.Equal([]string{"New client bob"}, alice.lines)
	req.Empty(bob.lines)
}
