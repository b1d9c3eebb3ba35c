package commands

import "github.com/pixil98/go-garden/internal/game"

// UserError is shown to the player and never ends the session.
type UserError = game.UserError

// NewUserError creates a user-facing error.
func NewUserError(msg string) *UserError {
	return game.NewUserError(msg)
}

// newInfoError creates a user-facing hint shown in the neutral colour.
func newInfoError(msg string) *UserError {
	return &UserError{Message: msg, Color: game.ColorInfo}
}
