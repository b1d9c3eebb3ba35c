package listener

import (
	"io"
)

// lineEndings adapts a terminal connection to the "\n" lines the login
// prompts and session reader expect. Input accepts "\r\n", a bare "\r"
// (ssh with a pty) and the telnet "\r\x00"; output turns "\n" into "\r\n".
type lineEndings struct {
	rw io.ReadWriter

	// afterCR is set when the previous read ended in '\r', so a leading
	// '\n' or NUL in the next read belongs to the same line break.
	afterCR bool
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &lineEndings{rw: rw}
}

func (l *lineEndings) Read(p []byte) (int, error) {
	for {
		n, err := l.rw.Read(p)
		out := 0
		for _, b := range p[:n] {
			switch {
			case l.afterCR && (b == '\n' || b == 0):
				l.afterCR = false
				continue
			case b == '\r':
				l.afterCR = true
				b = '\n'
			default:
				l.afterCR = false
			}
			p[out] = b
			out++
		}
		// A read that only finished a line break has nothing to hand back.
		if out == 0 && n > 0 && err == nil {
			continue
		}
		return out, err
	}
}

func (l *lineEndings) Write(p []byte) (int, error) {
	buf := make([]byte, 0, len(p)+len(p)/8)
	for _, b := range p {
		if b == '\n' {
			buf = append(buf, '\r')
		}
		buf = append(buf, b)
	}
	if _, err := l.rw.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
