//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
	"reflect"
)

// LineSink is the outbound write path of one connected client.
// Push appends the line terminator itself; callers hand over bare lines.
type LineSink interface {
	Push(ctx context.Context, line string) error
	Close() error
}

// IRegistry maps registered usernames to their outbound sinks.
type IRegistry interface {
	Register(username string, sink LineSink) (LineSink, error)
	Unregister(username string)
	Release(username string, sink LineSink)
	Exists(username string) bool
	Lookup(username string) (LineSink, bool)
	Snapshot() map[string]LineSink
	KnownBefore(username string) bool
	MarkKnown(usernames ...string)
	Count() int
}

// IDirectory owns the room set and per-room membership.
type IDirectory interface {
	GetOrCreate(name string) domain.Room
	RoomOf(username string) (domain.Room, bool)
	MoveUser(username, target string) domain.Room
	ListNames() []string
	States() []domain.RoomState
	Restore(states []domain.RoomState)
}

// IHistory is the global append-only chat log.
type IHistory interface {
	Append(entry domain.Entry)
	Tail(n int) []domain.Entry
	Len() int
	Snapshot(rooms []domain.RoomState) domain.Snapshot
	Restore(entries []domain.Entry)
}

// IRouter fans messages out to room members and single recipients.
type IRouter interface {
	Broadcast(ctx context.Context, message, sender string)
	SendDirect(ctx context.Context, message, sender, target string)
	Welcome(ctx context.Context, username string, sink LineSink, returning bool)
}

// ISnapshotRepository persists and restores the durable server state.
type ISnapshotRepository interface {
	Save(snapshot domain.Snapshot) error
	Load() (domain.Snapshot, error)
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
