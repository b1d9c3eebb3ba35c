package game

import (
	"errors"
	"fmt"
)

var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrPlayerExists     = errors.New("player already exists")
	ErrGardenOwned      = errors.New("garden already owned")
	ErrAlreadyHasGarden = errors.New("player already owns a garden")
)

const (
	ColorError   = "FF0000"
	ColorSuccess = "00FF00"
	ColorInfo    = "FFFFFF"
	ColorCash    = "FFD700"
	ColorHelp    = "00FFFF"
	ColorWarn    = "FFFF00"
	ColorSell    = "FFA500"
)

// UserError is a failure shown to the player. It never ends a session.
type UserError struct {
	Message string
	Color   string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a user-facing error shown in red.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg, Color: ColorError}
}

func userErrorf(format string, args ...any) *UserError {
	return NewUserError(fmt.Sprintf(format, args...))
}
