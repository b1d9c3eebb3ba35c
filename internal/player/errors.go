package player

import (
	"errors"
	"io"
	"net"
)

// isClosed reports whether err is an ordinary end of connection.
func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
