package domain

import (
	"fmt"

	"chat-relay/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type registration struct {
	Username string `validate:"required,max=32,excludesall=0x20"`
}

type roomRef struct {
	Name string `validate:"required,max=32,excludesall=0x20"`
}

// ValidateUsername enforces the handshake contract: a username is a single
// trimmed token, non-empty and at most 32 runes. Anything else aborts
// registration before a session is created.
func ValidateUsername(username string) error {
	if err := validate.Struct(registration{Username: username}); err != nil {
		return fmt.Errorf("%w: %q", errors.ErrInvalidUsername, username)
	}
	return nil
}

// ValidateRoomName applies the same token rules to room names.
// An invalid name downgrades the join to a logged no-op.
func ValidateRoomName(name string) error {
	if err := validate.Struct(roomRef{Name: name}); err != nil {
		return fmt.Errorf("%w: invalid room name %q", errors.ErrMalformedCommand, name)
	}
	return nil
}
