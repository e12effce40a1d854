package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain"

	"github.com/samber/lo"
)

// Router resolves recipients and fans messages out to their sinks.
//
// It provides best-effort delivery with no acknowledgment: a recipient
// whose sink fails is skipped and proactively unregistered, the remaining
// recipients still get the message. Unregister is idempotent, so racing
// with the recipient's own closing handler is harmless.
type Router struct {
	log         *slog.Logger
	registry    contract.IRegistry
	directory   contract.IDirectory
	history     contract.IHistory
	replayLimit int
}

func NewRouter(log *slog.Logger, registry contract.IRegistry, directory contract.IDirectory,
	history contract.IHistory, replayLimit int) *Router {
	return &Router{
		log:         log,
		registry:    registry,
		directory:   directory,
		history:     history,
		replayLimit: replayLimit,
	}
}

// Broadcast delivers the message to every member of the sender's room
// except the sender. The member list is a point-in-time copy, a concurrent
// join or leave shows up in the next broadcast, never the in-flight one.
func (r *Router) Broadcast(ctx context.Context, message, sender string) {
	room, ok := r.directory.RoomOf(sender)
	if !ok {
		r.log.Debug("Broadcast from user without a room", "sender", sender)
		return
	}
	recipients := lo.Filter(room.Members, func(member string, _ int) bool {
		return member != sender
	})
	for _, member := range recipients {
		r.deliver(ctx, member, message)
	}
}

// SendDirect delivers "sender: message" to one recipient regardless of
// rooms. An unknown target is silently dropped, the sender is not told.
func (r *Router) SendDirect(ctx context.Context, message, sender, target string) {
	sink, ok := r.registry.Lookup(target)
	if !ok {
		r.log.Debug("Direct message to unknown user dropped", "sender", sender, "target", target)
		return
	}
	if err := sink.Push(ctx, fmt.Sprintf("%s: %s", sender, message)); err != nil {
		r.evict(target, sink, err)
	}
}

// Welcome runs the post-registration greeting: a returning username gets
// the history tail replayed, a first-time one triggers a "New client"
// notice that is logged and broadcast to the room.
func (r *Router) Welcome(ctx context.Context, username string, sink contract.LineSink, returning bool) {
	if returning {
		for _, entry := range r.history.Tail(r.replayLimit) {
			if err := sink.Push(ctx, entry.Text); err != nil {
				r.log.Debug("Replay interrupted", "username", username, "error", err)
				return
			}
		}
		return
	}
	notice := fmt.Sprintf("New client %s", username)
	r.log.Info(notice)
	r.history.Append(domain.NewEntry(notice))
	r.Broadcast(ctx, notice, username)
}

func (r *Router) deliver(ctx context.Context, username, message string) {
	sink, ok := r.registry.Lookup(username)
	if !ok {
		// Member without a live session: offline or already unregistered.
		return
	}
	if err := sink.Push(ctx, message); err != nil {
		r.evict(username, sink, err)
	}
}

// evict drops a recipient whose sink failed so later fan-outs stop
// paying for a dead connection.
func (r *Router) evict(username string, sink contract.LineSink, err error) {
	r.log.Warn("Recipient write failed, unregistering", "username", username, "error", err)
	r.registry.Release(username, sink)
	_ = sink.Close()
}
