//go:generate go run go.uber.org/mock/mockgen -source=snapshot.go -destination=../mocks/mock_snapshot_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"chat-relay/domain"

	"github.com/dgraph-io/badger/v4"
)

// Key layout inside BadgerDB:
//
//	meta:schema          -> decimal schema version
//	room:{seq:04d}:{name} -> JSON RoomState, seq preserves creation order
//	hist:{seq:019d}       -> JSON Entry, 19-digit zero padding keeps the
//	                         log lexicographically sorted in append order
const (
	schemaKey     = "meta:schema"
	roomPrefix    = "room:"
	historyPrefix = "hist:"
)

type SnapshotRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSnapshotRepository(db *badger.DB, log *slog.Logger) SnapshotRepository {
	return SnapshotRepository{db: db, log: log}
}

// Save replaces any previous snapshot with the given one.
// Called once at graceful shutdown; a failure is reported to the caller to
// log, the process still exits.
func (r SnapshotRepository) Save(snapshot domain.Snapshot) error {
	if err := r.db.DropPrefix([]byte(roomPrefix), []byte(historyPrefix)); err != nil {
		return fmt.Errorf("dropping previous snapshot: %w", err)
	}

	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(schemaKey), []byte(strconv.Itoa(snapshot.Version))); err != nil {
			return err
		}
		for i, room := range snapshot.Rooms {
			key := fmt.Sprintf("%s%04d:%s", roomPrefix, i, room.Name)
			value, err := json.Marshal(room)
			if err != nil {
				return err
			}
			if err = txn.Set([]byte(key), value); err != nil {
				return err
			}
		}
		for i, entry := range snapshot.History {
			key := fmt.Sprintf("%s%019d", historyPrefix, i)
			value, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			if err = txn.Set([]byte(key), value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load reads the persisted snapshot back. A missing or unreadable snapshot
// is not an error: the server starts from empty state and the reason is
// logged at debug level. Individual corrupt records are skipped.
func (r SnapshotRepository) Load() (domain.Snapshot, error) {
	snapshot := domain.Snapshot{Version: domain.SchemaVersion}

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(schemaKey))
		if err == badger.ErrKeyNotFound {
			r.log.Debug("No snapshot found, starting from empty state")
			return nil
		}
		if err != nil {
			return err
		}
		var version int
		if err = item.Value(func(value []byte) error {
			version, err = strconv.Atoi(string(value))
			return err
		}); err != nil || version != domain.SchemaVersion {
			r.log.Debug("Snapshot schema not readable, starting from empty state",
				"version", version, "error", err)
			return nil
		}

		snapshot.Rooms = r.scanRooms(txn)
		snapshot.History = r.scanHistory(txn)
		return nil
	})
	if err != nil {
		return domain.Snapshot{Version: domain.SchemaVersion}, err
	}
	return snapshot, nil
}

func (r SnapshotRepository) scanRooms(txn *badger.Txn) []domain.RoomState {
	var rooms []domain.RoomState
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := []byte(roomPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		err := item.Value(func(value []byte) error {
			var room domain.RoomState
			if err := json.Unmarshal(value, &room); err != nil {
				return err
			}
			rooms = append(rooms, room)
			return nil
		})
		if err != nil {
			r.log.Debug("Skipping corrupt room record", "key", string(item.Key()), "error", err)
		}
	}
	return rooms
}

func (r SnapshotRepository) scanHistory(txn *badger.Txn) []domain.Entry {
	var entries []domain.Entry
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := []byte(historyPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		err := item.Value(func(value []byte) error {
			var entry domain.Entry
			if err := json.Unmarshal(value, &entry); err != nil {
				return err
			}
			entries = append(entries, entry)
			return nil
		})
		if err != nil {
			r.log.Debug("Skipping corrupt history record", "key", string(item.Key()), "error", err)
		}
	}
	return entries
}
