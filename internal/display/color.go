package display

import (
	"fmt"
	"strconv"
	"strings"
)

const reset = "\x1b[0m"

// Colorize wraps text in a 24-bit ANSI foreground colour given as six hex
// digits. Text is returned unchanged when hex is empty or malformed.
func Colorize(text, hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return text
	}
	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return text
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s%s", rgb>>16&0xFF, rgb>>8&0xFF, rgb&0xFF, text, reset)
}

// ChatLine renders a chat message for a terminal.
func ChatLine(text, hex string) string {
	return Colorize(Wrap(text), hex)
}
