package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcperrors "github.com/ajitpratap0/mcp-stdio-server/pkg/errors"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
)

func TestNewStdioTransport(t *testing.T) {
	reader := strings.NewReader("")
	writer := &bytes.Buffer{}
	tr := NewStdioTransport(reader, writer)

	assert.NotNil(t, tr)
	assert.Equal(t, reader, tr.source)
	assert.NotNil(t, tr.reader)
	assert.NotNil(t, tr.writer)
}

func TestStdioTransport_Receive(t *testing.T) {
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		"   ",
		`not json`,
		` {"jsonrpc":"2.0","method":"initialized"} `,
		`[1,2]`,
	}, "\n")
	tr := NewStdioTransport(strings.NewReader(input), io.Discard)
	ctx := context.Background()

	msg, err := tr.Receive(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"method":"ping"}`, string(msg))

	msg, err = tr.Receive(ctx)
	require.NoError(t, err, "blank line is not end of input")
	assert.Nil(t, msg)

	_, err = tr.Receive(ctx)
	require.Error(t, err)
	assert.True(t, mcperrors.IsCode(err, mcperrors.CodeParseError))

	msg, err = tr.Receive(ctx)
	require.NoError(t, err, "stream stays usable after a parse failure")
	assert.Equal(t, `{"jsonrpc":"2.0","method":"initialized"}`, string(msg))

	msg, err = tr.Receive(ctx)
	require.NoError(t, err, "unterminated final line is still delivered")
	assert.Equal(t, `[1,2]`, string(msg))

	_, err = tr.Receive(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = tr.Receive(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStdioTransport_ReceiveEmptyInput(t *testing.T) {
	tr := NewStdioTransport(strings.NewReader(""), io.Discard)
	_, err := tr.Receive(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestStdioTransport_ReceiveReadError(t *testing.T) {
	tr := NewStdioTransport(failingReader{err: errors.New("device gone")}, io.Discard)
	_, err := tr.Receive(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrClosed)
	assert.True(t, mcperrors.IsCode(err, mcperrors.CodeTransportError))
}

func TestStdioTransport_Send(t *testing.T) {
	var out bytes.Buffer
	tr := NewStdioTransport(strings.NewReader(""), &out)

	err := tr.Send(context.Background(), map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"result":  map[string]string{"text": "<b>a & b</b>"},
	})
	require.NoError(t, err)

	assert.Equal(t, `{"id":1,"jsonrpc":"2.0","result":{"text":"<b>a & b</b>"}}`+"\n", out.String())
}

func TestStdioTransport_SendFlushesEachMessage(t *testing.T) {
	outR, outW := io.Pipe()
	defer outR.Close()
	tr := NewStdioTransport(strings.NewReader(""), outW)

	lines := make(chan string, 1)
	go func() {
		buf := make([]byte, 64)
		n, _ := outR.Read(buf)
		lines <- string(buf[:n])
	}()

	require.NoError(t, tr.Send(context.Background(), "hello"))

	select {
	case got := <-lines:
		assert.Equal(t, "\"hello\"\n", got)
	case <-time.After(5 * time.Second):
		t.Fatal("message was not flushed")
	}
}

func TestStdioTransport_SendConcurrentLinesDoNotInterleave(t *testing.T) {
	var out bytes.Buffer
	tr := NewStdioTransport(strings.NewReader(""), &out)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, tr.Send(context.Background(), map[string]int{"n": i}))
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.Regexp(t, `^\{"n":\d+\}$`, line)
	}
}

func TestStdioTransport_SendUnencodable(t *testing.T) {
	tr := NewStdioTransport(strings.NewReader(""), io.Discard)
	err := tr.Send(context.Background(), make(chan int))
	require.Error(t, err)
	assert.True(t, mcperrors.IsCategory(err, mcperrors.CategoryTransport))
}

func TestStdioTransport_Close(t *testing.T) {
	inR, inW := io.Pipe()
	defer inW.Close()
	tr := NewStdioTransport(inR, io.Discard)

	received := make(chan error, 1)
	go func() {
		_, err := tr.Receive(context.Background())
		received <- err
	}()

	// Let the receiver block on the pipe.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close(), "Close is idempotent")

	select {
	case err := <-received:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not unblock Receive")
	}

	assert.ErrorIs(t, tr.Send(context.Background(), 1), ErrClosed)
	_, err := tr.Receive(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStdioTransport_CanceledContext(t *testing.T) {
	tr := NewStdioTransport(strings.NewReader("{}\n"), io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Receive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, tr.Send(ctx, 1), context.Canceled)
}

// stuckReader blocks every read until release is closed and cannot be
// closed itself, like a terminal on standard input.
type stuckReader struct{ release chan struct{} }

func (r stuckReader) Read([]byte) (int, error) {
	<-r.release
	return 0, io.EOF
}

func TestStdioTransport_ReceiveUnblocksOnCancel(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	tr := NewStdioTransport(stuckReader{release: release}, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan error, 1)
	go func() {
		_, err := tr.Receive(ctx)
		received <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-received:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("cancellation did not unblock Receive")
	}

	go func() {
		_, err := tr.Receive(context.Background())
		received <- err
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, tr.Close())

	select {
	case err := <-received:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not unblock Receive on an unclosable reader")
	}
}

func TestStdioTransport_LineSurvivesCancelledReceive(t *testing.T) {
	inR, inW := io.Pipe()
	defer inW.Close()
	tr := NewStdioTransport(inR, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tr.Receive(ctx)
	require.ErrorIs(t, err, context.Canceled)

	go func() { _, _ = inW.Write([]byte("{\"a\":1}\n")) }()

	msg, err := tr.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(msg))
}

func TestNewTransport(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.New(&logs, logging.NewTextFormatter())
	logger.SetLevel(logging.DebugLevel)

	var out bytes.Buffer
	config := DefaultTransportConfig(TransportTypeStdio)
	config.StdioReader = strings.NewReader("{\"a\":1}\nbad\n")
	config.StdioWriter = &out
	config.Logger = logger

	tr, err := NewTransport(config)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = tr.Receive(ctx)
	require.NoError(t, err)
	_, err = tr.Receive(ctx)
	require.Error(t, err)
	require.NoError(t, tr.Send(ctx, map[string]int{"b": 2}))
	require.NoError(t, tr.Close())

	assert.Equal(t, "{\"b\":2}\n", out.String())
	assert.Contains(t, logs.String(), "received")
	assert.Contains(t, logs.String(), "receive failed")
	assert.Contains(t, logs.String(), "sent")

	_, err = NewTransport(TransportConfig{Type: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Transport) Transport {
			order = append(order, name)
			return next
		}
	}

	base := NewStdioTransport(strings.NewReader(""), io.Discard)
	Chain(mark("outer"), mark("inner"))(base)
	assert.Equal(t, []string{"inner", "outer"}, order)
}
