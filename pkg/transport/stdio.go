package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"

	mcperrors "github.com/ajitpratap0/mcp-stdio-server/pkg/errors"
)

// StdioTransport implements Transport over a reader and a writer, by default
// standard input and output.
//
// Lines are read by a background goroutine so that Receive can return on
// cancellation or Close even when the underlying read cannot be interrupted,
// as with os.Stdin. Writes go through a buffered writer that is flushed after
// every message.
type StdioTransport struct {
	reader   *bufio.Reader
	source   io.Reader
	lines    chan readResult
	readOnce sync.Once

	writeMu sync.Mutex
	writer  *bufio.Writer

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewStdioTransport creates a transport reading from r and writing to w.
// Nil arguments default to os.Stdin and os.Stdout.
func NewStdioTransport(r io.Reader, w io.Writer) *StdioTransport {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &StdioTransport{
		reader: bufio.NewReader(r),
		source: r,
		writer: bufio.NewWriter(w),
		lines:  make(chan readResult),
		done:   make(chan struct{}),
	}
}

type readResult struct {
	line []byte
	err  error
}

// readLoop delivers lines until a read fails or the transport is closed. The
// channel is closed after the failing read has been delivered.
func (t *StdioTransport) readLoop() {
	defer close(t.lines)
	for {
		line, err := t.reader.ReadBytes('\n')
		select {
		case t.lines <- readResult{line: line, err: err}:
		case <-t.done:
			return
		}
		if err != nil {
			return
		}
	}
}

// Receive reads one line and returns it if it holds a JSON value.
func (t *StdioTransport) Receive(ctx context.Context) (json.RawMessage, error) {
	if err := t.checkOpen(ctx); err != nil {
		return nil, err
	}

	t.readOnce.Do(func() { go t.readLoop() })

	var cancelled <-chan struct{}
	if ctx != nil {
		cancelled = ctx.Done()
	}

	var res readResult
	select {
	case <-cancelled:
		return nil, ctx.Err()
	case <-t.done:
		return nil, ErrClosed
	case r, ok := <-t.lines:
		if !ok {
			return nil, ErrClosed
		}
		res = r
	}

	line, err := res.line, res.err
	if err != nil {
		// A final line without a terminator is still a message.
		if !errors.Is(err, io.EOF) || len(bytes.TrimSpace(line)) == 0 {
			if errors.Is(err, io.EOF) || t.isClosed() {
				return nil, ErrClosed
			}
			return nil, mcperrors.StdioTransportError("receive", err).
				WithContext(&mcperrors.Context{Component: "StdioTransport", Operation: "read_line"})
		}
	}

	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}
	if !json.Valid(line) {
		var v interface{}
		return nil, mcperrors.ParseError(json.Unmarshal(line, &v)).WithData(string(line))
	}

	msg := make(json.RawMessage, len(line))
	copy(msg, line)
	return msg, nil
}

// Send encodes v, appends a newline and flushes.
func (t *StdioTransport) Send(ctx context.Context, v interface{}) error {
	if err := t.checkOpen(ctx); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return mcperrors.StdioTransportError("encode", err).
			WithContext(&mcperrors.Context{Component: "StdioTransport", Operation: "encode_message"})
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := t.writer.Write(buf.Bytes()); err != nil {
		return mcperrors.StdioTransportError("send", err).
			WithContext(&mcperrors.Context{Component: "StdioTransport", Operation: "write_data"})
	}
	if err := t.writer.Flush(); err != nil {
		return mcperrors.StdioTransportError("send", err).
			WithContext(&mcperrors.Context{Component: "StdioTransport", Operation: "flush_output"})
	}
	return nil
}

// Close flushes pending output, unblocks a pending Receive and closes the
// reader if it is closable.
func (t *StdioTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)

		t.writeMu.Lock()
		if err := t.writer.Flush(); err != nil {
			t.closeErr = mcperrors.StdioTransportError("close", err).
				WithContext(&mcperrors.Context{Component: "StdioTransport", Operation: "flush_on_close"})
		}
		t.writeMu.Unlock()

		if closer, ok := t.source.(io.Closer); ok {
			_ = closer.Close()
		}
	})
	return t.closeErr
}

func (t *StdioTransport) checkOpen(ctx context.Context) error {
	if t.isClosed() {
		return ErrClosed
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (t *StdioTransport) isClosed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
