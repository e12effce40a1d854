package tcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"chat-relay/contract"
	"chat-relay/domain"
	apperrors "chat-relay/errors"
	"chat-relay/moderation"
)

// Handler drives one connection through its three states:
// Registering (first line is the username), Active (one command per line),
// Closing (unregister and close, reached unconditionally).
type Handler struct {
	log       *slog.Logger
	registry  contract.IRegistry
	directory contract.IDirectory
	history   contract.IHistory
	router    contract.IRouter
	moderator *moderation.Moderator
	conn      net.Conn
}

func NewHandler(log *slog.Logger, registry contract.IRegistry, directory contract.IDirectory,
	history contract.IHistory, router contract.IRouter, moderator *moderation.Moderator,
	conn net.Conn) *Handler {
	return &Handler{
		log:       log,
		registry:  registry,
		directory: directory,
		history:   history,
		router:    router,
		moderator: moderator,
		conn:      conn,
	}
}

// Run owns the connection until it closes. Transport errors terminate this
// handler only; a malformed command is a logged no-op and the session
// stays active.
func (h *Handler) Run(ctx context.Context) {
	sink := NewSink(h.conn)
	reader := bufio.NewScanner(h.conn)

	username, ok := h.register(ctx, sink, reader)
	if !ok {
		_ = sink.Close()
		return
	}

	// Closing must run no matter how the loop exits. Release only drops
	// the registration if it still points at this sink, so a takeover by
	// a newer session is never undone.
	defer func() {
		h.registry.Release(username, sink)
		_ = sink.Close()
		h.log.Debug("Session closed", "username", username)
	}()

	for reader.Scan() {
		line := strings.TrimSpace(reader.Text())
		if line == "" {
			return
		}

		cmd, err := domain.ParseLine(line)
		if err != nil {
			h.log.Warn("Ignoring malformed command", "username", username, "error", err)
			continue
		}

		switch c := cmd.(type) {
		case domain.QuitCommand:
			return
		case domain.ListRoomsCommand:
			h.listRooms(ctx, sink)
		case domain.JoinRoomCommand:
			h.joinRoom(ctx, sink, username, c.Room)
		case domain.DirectCommand:
			h.router.SendDirect(ctx, c.Text, username, c.Target)
		case domain.ChatCommand:
			h.chat(ctx, username, c.Text)
		}
	}

	if err := reader.Err(); err != nil {
		h.log.Debug("Connection read failed", "username", username, "error", err)
	}
}

// register reads the handshake line and creates the session: validate,
// register (policy decides duplicate handling), move into the default room,
// then replay history or announce the newcomer.
func (h *Handler) register(ctx context.Context, sink *Sink, reader *bufio.Scanner) (string, bool) {
	if !reader.Scan() {
		h.log.Debug("Connection closed before registration")
		return "", false
	}
	username := strings.TrimSpace(reader.Text())
	if err := domain.ValidateUsername(username); err != nil {
		h.log.Warn("Registration refused", "error", err)
		return "", false
	}

	returning := h.registry.KnownBefore(username)
	prev, err := h.registry.Register(username, sink)
	if err != nil {
		if errors.Is(err, apperrors.ErrUsernameTaken) {
			_ = sink.Push(ctx, fmt.Sprintf("Username %s is already taken", username))
		}
		h.log.Warn("Registration refused", "username", username, "error", err)
		return "", false
	}
	if prev != nil {
		// Takeover policy: the replaced session's connection is closed,
		// its handler unblocks and runs its own closing sequence.
		_ = prev.Close()
	}

	h.directory.MoveUser(username, domain.DefaultRoom)
	h.router.Welcome(ctx, username, sink, returning)
	h.log.Info("Client registered", "username", username)
	return username, true
}

func (h *Handler) listRooms(ctx context.Context, sink *Sink) {
	payload, err := json.Marshal(h.directory.ListNames())
	if err != nil {
		h.log.Warn("Room list encoding failed", "error", err)
		return
	}
	_ = sink.Push(ctx, string(payload))
}

func (h *Handler) joinRoom(ctx context.Context, sink *Sink, username, name string) {
	if err := domain.ValidateRoomName(name); err != nil {
		h.log.Warn("Ignoring malformed command", "username", username, "error", err)
		return
	}
	room := h.directory.MoveUser(username, name)
	_ = sink.Push(ctx, fmt.Sprintf("You moved to %s chat", room.Name))
}

func (h *Handler) chat(ctx context.Context, username, text string) {
	censored, found := h.moderator.Censor(text)
	if len(found) > 0 {
		h.log.Warn("Censored words masked",
			"username", username,
			"words", len(found),
			"lang", moderation.DetectLanguage(text))
	}
	message := fmt.Sprintf("%s: %s", username, censored)
	h.history.Append(domain.NewEntry(message))
	h.log.Info(message)
	h.router.Broadcast(ctx, message, username)
}
