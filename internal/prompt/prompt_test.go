package prompt

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipeWith(t *testing.T, input string) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(input)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestTerminal_ReadLine(t *testing.T) {
	var out bytes.Buffer
	term := &Terminal{in: pipeWith(t, "alice\n"), out: &out}

	line, err := term.ReadLine("Vault username")
	require.NoError(t, err)
	assert.Equal(t, "alice", line)
	assert.Contains(t, out.String(), "Vault username: ")
}

func TestTerminal_ReadLine_StripsCRLF(t *testing.T) {
	var out bytes.Buffer
	term := &Terminal{in: pipeWith(t, "alice\r\n"), out: &out}

	line, err := term.ReadLine("user")
	require.NoError(t, err)
	assert.Equal(t, "alice", line)
}

func TestTerminal_ReadPassword_NonTTYFallback(t *testing.T) {
	// A pipe is not a terminal, so the masked path is skipped and the
	// password is read as a plain line.
	var out bytes.Buffer
	term := &Terminal{in: pipeWith(t, "hunter2\n"), out: &out}

	buf, err := term.ReadPassword("Vault password")
	require.NoError(t, err)
	defer buf.Destroy()

	locked, err := buf.Open()
	require.NoError(t, err)
	defer locked.Destroy()
	assert.Equal(t, "hunter2", string(locked.Bytes()))
}

func TestTerminal_ReadLineThenReadPassword_SharedInput(t *testing.T) {
	// Username and password on the same piped stdin: the line read must not
	// buffer away the password bytes.
	var out bytes.Buffer
	term := &Terminal{in: pipeWith(t, "alice\nhunter2\n"), out: &out}

	line, err := term.ReadLine("Vault username")
	require.NoError(t, err)
	assert.Equal(t, "alice", line)

	buf, err := term.ReadPassword("Vault password")
	require.NoError(t, err)
	defer buf.Destroy()

	locked, err := buf.Open()
	require.NoError(t, err)
	defer locked.Destroy()
	assert.Equal(t, "hunter2", string(locked.Bytes()))
}

func TestTerminal_ReadLine_EOFWithoutInput(t *testing.T) {
	var out bytes.Buffer
	term := &Terminal{in: pipeWith(t, ""), out: &out}

	_, err := term.ReadLine("user")
	assert.Error(t, err)
}
