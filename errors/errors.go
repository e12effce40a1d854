package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrUsernameTaken    = fmt.Errorf("username already registered")
	ErrSessionNotFound  = fmt.Errorf("no session for username")
	ErrRoomNotFound     = fmt.Errorf("username belongs to no room")
	ErrMalformedCommand = fmt.Errorf("malformed command")
	ErrInvalidUsername  = fmt.Errorf("invalid username")
	ErrSchemaVersion    = fmt.Errorf("unsupported snapshot schema version")
)
