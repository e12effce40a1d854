package tcp

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"chat-relay/contract"
	"chat-relay/moderation"
)

// Server accepts connections and spawns one Handler goroutine per client.
// It runs as a supervised worker; canceling the context closes the
// listener and every live session, then waits for the handlers to drain.
type Server struct {
	log       *slog.Logger
	listener  net.Listener
	registry  contract.IRegistry
	directory contract.IDirectory
	history   contract.IHistory
	router    contract.IRouter
	moderator *moderation.Moderator
	wg        sync.WaitGroup
}

func NewServer(log *slog.Logger, listener net.Listener, registry contract.IRegistry,
	directory contract.IDirectory, history contract.IHistory, router contract.IRouter,
	moderator *moderation.Moderator) *Server {
	return &Server{
		log:       log,
		listener:  listener,
		registry:  registry,
		directory: directory,
		history:   history,
		router:    router,
		moderator: moderator,
	}
}

func (s *Server) Run(ctx context.Context) error {
	s.log.Info("Listening", "address", s.listener.Addr().String())

	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
		// Closing the sinks unblocks every handler's read loop, each one
		// then runs its own closing sequence.
		for _, sink := range s.registry.Snapshot() {
			_ = sink.Close()
		}
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.log.Info("Listener closed, all sessions drained")
				return nil
			}
			return err
		}

		handler := NewHandler(s.log, s.registry, s.directory, s.history, s.router, s.moderator, conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			handler.Run(ctx)
		}()
	}
}
