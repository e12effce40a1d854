package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"chat-relay/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// Offline viewer for a persisted relay snapshot: dumps the room set and
// the history log as tables, without starting the server.
func main() {
	dbPath := flag.String("db", "./data", "Path to badger DB")
	prefix := flag.String("prefix", "hist:", "Prefix to scan (hist: or room:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	if strings.HasPrefix(*prefix, "room:") {
		table.SetHeader([]string{"Key", "Room", "Members"})
	} else {
		table.SetHeader([]string{"Key", "ID", "At", "Text"})
	}
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				table.Append(toRow(key, v))
				return nil
			})
			if err != nil {
				fmt.Printf("Error reading key %s: %v\n", key, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
}

func toRow(key string, value []byte) []string {
	if strings.HasPrefix(key, "room:") {
		var room domain.RoomState
		if err := json.Unmarshal(value, &room); err != nil {
			return []string{key, "<corrupt>", ""}
		}
		return []string{key, room.Name, strings.Join(room.Members, ", ")}
	}
	var entry domain.Entry
	if err := json.Unmarshal(value, &entry); err != nil {
		return []string{key, "<corrupt>", "", ""}
	}
	return lo.Map([]string{key, entry.ID.String(), entry.At.Format("2006-01-02 15:04:05"), entry.Text},
		func(cell string, _ int) string { return strings.TrimSpace(cell) })
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)
	return badger.Open(opts)
}
