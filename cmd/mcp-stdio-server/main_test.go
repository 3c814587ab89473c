package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunServesUntilEndOfInput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "data"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "readme.txt"), []byte("read me"), 0o600))
	t.Setenv("MCP_LOG_FORMAT", "json")
	t.Setenv("MCP_TRACING_EXPORTER", "noop")

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"greet","arguments":{"name":"Bob"}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/read","params":{"uri":"file:///data/readme.txt"}}`,
		`not json`,
		`{"jsonrpc":"2.0","id":4,"method":"bogus"}`,
	}, "\n") + "\n"

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), nil, strings.NewReader(input), &stdout, &stderr)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"serverInfo":{"name":"mcp-stdio-server","version":"1.0.0"}`)
	assert.Contains(t, lines[1], `Hello, Bob! Welcome to MCP.`)
	assert.Contains(t, lines[2], `"text":"read me"`)
	assert.Contains(t, lines[3], `"code":-32601`)

	assert.Contains(t, stderr.String(), `"message":"Dropping line that is not JSON"`)
	assert.NotContains(t, stdout.String(), "Dropping")
}

func TestRunVersion(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MCP_SERVER_VERSION", "3.1.4")

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, strings.NewReader(""), &stdout, &bytes.Buffer{}))
	assert.Equal(t, "mcp-stdio-server 3.1.4\n", stdout.String())
}

func TestRunEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.env"), []byte("MCP_SERVER_NAME=from-file\n"), 0o600))
	t.Setenv("MCP_SERVER_NAME", "")
	os.Unsetenv("MCP_SERVER_NAME")

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-env-file", "custom.env", "-version"}, strings.NewReader(""), &stdout, &bytes.Buffer{}))
	assert.Equal(t, "from-file 1.0.0\n", stdout.String())
	os.Unsetenv("MCP_SERVER_NAME")
}

func TestRunConfigError(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MCP_LOG_LEVEL", "chatty")

	err := run(context.Background(), nil, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "load config")
}

func TestRunBadFlag(t *testing.T) {
	var stderr bytes.Buffer
	err := run(context.Background(), []string{"-nope"}, strings.NewReader(""), &bytes.Buffer{}, &stderr)
	assert.Error(t, err)
	assert.Contains(t, stderr.String(), "-env-file")
}

func TestRunCancelled(t *testing.T) {
	t.Chdir(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A reader that never ends; cancellation alone must stop the server.
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer w.Close()

	err = run(ctx, nil, r, &bytes.Buffer{}, &bytes.Buffer{})
	assert.NoError(t, err)
}

func TestRunStopsOnCancelWhileInputStaysOpen(t *testing.T) {
	t.Chdir(t.TempDir())

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		// Hide Close so that only cancellation can stop the read.
		done <- run(ctx, nil, struct{ io.Reader }{r}, io.Discard, io.Discard)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}

func TestRunAcceptsUppercaseExporter(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MCP_TRACING_EXPORTER", "NOOP")

	var stdout bytes.Buffer
	err := run(context.Background(), nil,
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &stdout, io.Discard)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{}}`, strings.TrimSpace(stdout.String()))
}
