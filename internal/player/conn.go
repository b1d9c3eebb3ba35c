package player

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pixil98/go-garden/internal/display"
	"github.com/pixil98/go-garden/internal/game"
)

// Input is one thing a client sent. Exactly one field is set.
type Input struct {
	// Line is a command typed on a text connection.
	Line string
	// Chat is a chat frame from a rich client. A leading "/" makes it a command.
	Chat string
	// Event is a decoded UI frame from a rich client.
	Event any
}

// Conn is a logged in client connection.
type Conn interface {
	ReadInput() (Input, error)
	WriteChat(game.ChatMessage) error
	WriteUI(data []byte) error
	Welcome(charId string) error
	// Rich reports whether the client renders the 3D world.
	Rich() bool
}

// TextConn is a line based terminal connection used by telnet and ssh.
type TextConn struct {
	rw io.ReadWriter
	br *bufio.Reader
}

func NewTextConn(rw io.ReadWriter) *TextConn {
	return &TextConn{rw: rw, br: bufio.NewReader(rw)}
}

func (c *TextConn) ReadInput() (Input, error) {
	line, err := c.readLine()
	if err != nil {
		return Input{}, err
	}
	return Input{Line: line}, nil
}

func (c *TextConn) WriteChat(msg game.ChatMessage) error {
	return c.write(display.ChatLine(msg.Message, msg.Color) + "\n")
}

// WriteUI drops UI payloads; chat already carries what a terminal can show.
func (c *TextConn) WriteUI([]byte) error {
	return nil
}

func (c *TextConn) Welcome(charId string) error {
	return c.write(fmt.Sprintf("\nLogged in as %s. Type /help for commands.\n", charId))
}

func (c *TextConn) Rich() bool {
	return false
}

func (c *TextConn) write(s string) error {
	_, err := c.rw.Write([]byte(s))
	return err
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned before io.EOF.
func (c *TextConn) readLine() (string, error) {
	line, err := c.br.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
