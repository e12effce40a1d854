package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/tcp"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Deferred cleanup (database close, snapshot persist) is guaranteed to execute before the
// process exits, which os.Exit in main would skip.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	censoredChar, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Shared state
	registry := runtime.NewRegistry(runtime.DuplicatePolicy(config.TakeoverPolicy), log)
	directory := runtime.NewDirectory(log)
	history := runtime.NewHistory(log)
	router := runtime.NewRouter(log, registry, directory, history, config.ReplayLimit)

	// 4. Restore persisted state; a missing snapshot starts empty.
	repository := repositories.NewSnapshotRepository(db, log)
	snapshot, err := repository.Load()
	if err != nil {
		return fmt.Errorf("snapshot restore failed: %w", err)
	}
	directory.Restore(snapshot.Rooms)
	history.Restore(snapshot.History)
	for _, room := range snapshot.Rooms {
		registry.MarkKnown(room.Members...)
	}
	log.Info("State restored", "rooms", len(snapshot.Rooms), "entries", len(snapshot.History))

	// 5. Moderation (transparent when no word list is configured)
	moderator, err := moderation.NewModerator(config.CensoredWords, censoredChar)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Listener & supervised workers
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	server := tcp.NewServer(log, listener, registry, directory, history, router, &moderator)
	telemetry := workers.NewTelemetryWorker(log, registry, directory, history, config.MetricInterval)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(server, telemetry)
	sup.Run(ctx)

	// 8. Persist state once every session has drained.
	log.Info("Shutting down gracefully...")
	if err := repository.Save(history.Snapshot(directory.States())); err != nil {
		// The snapshot is best effort at shutdown: log and exit anyway.
		log.Error("Snapshot persist failed", "error", err)
	} else {
		log.Info("Snapshot persisted")
	}

	log.Info("Program stopped cleanly")
	return nil
}
