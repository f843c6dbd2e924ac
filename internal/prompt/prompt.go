// Package prompt captures interactive credentials. Masked input goes through
// golang.org/x/term so passwords never echo; everything is behind a small
// interface so commands can be tested without a terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/bungeemonkee/template-vault/internal/secure"
)

// Prompter captures operator input. ReadPassword must not echo the typed
// characters when attached to a terminal.
type Prompter interface {
	ReadLine(label string) (string, error)
	ReadPassword(label string) (*secure.SecureBuffer, error)
}

// Terminal prompts on stdin, writing labels to stderr so stdout stays
// reserved for rendered output.
type Terminal struct {
	in     *os.File
	out    io.Writer
	reader *bufio.Reader
}

// NewTerminal creates a prompter on the process stdin/stderr.
func NewTerminal() *Terminal {
	return &Terminal{
		in:  os.Stdin,
		out: os.Stderr,
	}
}

// buffered returns the shared reader over t.in. One reader for all plain
// reads: a fresh reader per call would buffer past the first newline and
// drop whatever follows it, losing the password when username and password
// arrive on the same pipe.
func (t *Terminal) buffered() *bufio.Reader {
	if t.reader == nil {
		t.reader = bufio.NewReader(t.in)
	}
	return t.reader
}

// ReadLine reads one line of plain input.
func (t *Terminal) ReadLine(label string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", label)
	line, err := t.buffered().ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadPassword reads one line with echo disabled. When stdin is not a
// terminal (tests, pipes) it falls back to a plain line read.
func (t *Terminal) ReadPassword(label string) (*secure.SecureBuffer, error) {
	fmt.Fprintf(t.out, "%s: ", label)

	fd := int(t.in.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(t.out)
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		buf := secure.NewSecureBuffer(raw)
		return buf, nil
	}

	line, err := t.buffered().ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return secure.NewSecureBuffer([]byte(strings.TrimRight(line, "\r\n"))), nil
}
