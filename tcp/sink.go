// Package tcp is the line-delimited transport: one persistent connection
// per client, newline-terminated UTF-8 text both ways.
package tcp

import (
	"context"
	"net"
	"sync"
)

// Sink is the outbound half of one connection. Writes are serialized so
// concurrent broadcasts never interleave partial lines.
type Sink struct {
	mu   sync.Mutex
	conn net.Conn
	once sync.Once
}

func NewSink(conn net.Conn) *Sink {
	return &Sink{conn: conn}
}

// Push writes the line followed by a newline. A canceled context fails the
// write before touching the connection.
func (s *Sink) Push(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.conn.Write([]byte(line + "\n"))
	return err
}

// Close shuts the connection down. Safe to call more than once; closing
// also unblocks the reader side of the owning handler.
func (s *Sink) Close() error {
	var err error
	s.once.Do(func() {
		err = s.conn.Close()
	})
	return err
}
