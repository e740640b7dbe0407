package jsonrpc2

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wireval/jsonrpc2/jval"
)

// blockingWriteCloser blocks every Write until the writer is closed. It
// implements io.Closer but not DeadlineWriter.
type blockingWriteCloser struct {
	done chan struct{}
	once sync.Once
}

func newBlockingWriteCloser() *blockingWriteCloser {
	return &blockingWriteCloser{done: make(chan struct{})}
}

func (w *blockingWriteCloser) Write([]byte) (int, error) {
	<-w.done
	return 0, io.ErrClosedPipe
}

func (w *blockingWriteCloser) Close() error {
	w.once.Do(func() { close(w.done) })
	return nil
}

func (w *blockingWriteCloser) isClosed() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// errWriter fails every write with a fixed error.
type errWriter struct {
	err error
}

func (w *errWriter) Write([]byte) (int, error) {
	return 0, w.err
}

func TestNewEncoder(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	encoder := NewEncoder(&buf)
	require.NotNil(t, encoder)

	err := encoder.Encode(testContext(t), map[string]string{"key": "value"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key": "value"}`, buf.String())
}

func TestStreamEncoder_Encode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	encoder := NewStreamEncoder(&buf)

	require.NoError(t, encoder.Encode(testContext(t), NewRequest(int64(1), "first")))
	require.NoError(t, encoder.Encode(testContext(t), NewRequest(int64(2), "second")))

	// One document per line, members in wire order.
	want := `{"jsonrpc":"2.0","id":1,"method":"first"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"second"}` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestStreamEncoder_Concurrent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	encoder := NewStreamEncoder(&buf)

	const writers, perWriter = 8, 25

	var wg sync.WaitGroup

	for w := 0; w < writers; w++ {
		w := w

		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := 0; i < perWriter; i++ {
				resp := NewResponseWithResult(int64(w*perWriter+i), jval.String(fmt.Sprintf("worker-%d", w)))
				assert.NoError(t, encoder.Encode(testContext(t), resp))
			}
		}()
	}

	wg.Wait()

	// Documents never interleave: every line must be a complete response.
	dec := json.NewDecoder(strings.NewReader(buf.String()))

	var count int

	for {
		var resp Response

		err := dec.Decode(&resp)
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)
		assert.True(t, resp.IsResult())

		count++
	}

	assert.Equal(t, writers*perWriter, count)
}

func TestStreamEncoder_SetIdleTimeout_DeadlineWriter(t *testing.T) {
	t.Parallel()

	// net.Pipe blocks writes until the peer reads, and supports deadlines.
	client, server := net.Pipe()

	t.Cleanup(func() { _ = client.Close(); _ = server.Close() })

	encoder := NewStreamEncoder(client)
	timeout := 50 * time.Millisecond
	encoder.SetIdleTimeout(timeout)

	ctx, cancel := context.WithTimeout(testContext(t), 4*timeout)
	defer cancel()

	start := time.Now()
	err := encoder.Encode(ctx, map[string]string{"key": "value"})
	duration := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
	assert.GreaterOrEqual(t, duration, timeout, "Encode should have waited out the idle timeout")
	assert.Less(t, duration, 4*timeout, "Encode should not have waited for the outer context")
}

func TestStreamEncoder_SetIdleTimeout_Closer(t *testing.T) {
	t.Parallel()

	blocking := newBlockingWriteCloser()
	encoder := NewStreamEncoder(blocking)
	timeout := 50 * time.Millisecond
	encoder.SetIdleTimeout(timeout)

	ctx, cancel := context.WithTimeout(testContext(t), 4*timeout)
	defer cancel()

	start := time.Now()
	err := encoder.Encode(ctx, map[string]string{"key": "value"})
	duration := time.Since(start)

	require.Error(t, err)
	assert.True(t, blocking.isClosed(), "the writer should have been closed")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, duration, timeout)
	assert.Less(t, duration, 4*timeout)
}

func TestStreamEncoder_Encode_NoTimeoutSupport(t *testing.T) {
	t.Parallel()

	// bytes.Buffer supports neither deadlines nor closing; writes just
	// succeed.
	var buf bytes.Buffer

	encoder := NewStreamEncoder(&buf)
	encoder.SetIdleTimeout(50 * time.Millisecond)

	err := encoder.Encode(testContext(t), map[string]string{"key": "value"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"key":"value"`)
}

func TestStreamEncoder_Encode_ContextCancellation(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()

	t.Cleanup(func() { _ = client.Close(); _ = server.Close() })

	encoder := NewStreamEncoder(client)

	ctx, cancel := context.WithCancel(testContext(t))

	errChan := make(chan error, 1)

	go func() {
		errChan <- encoder.Encode(ctx, map[string]string{"key": "value"})
	}()

	// Give Encode a moment to block on the pipe.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errChan:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(1 * time.Second):
		assert.Fail(t, "Encode did not return after context cancellation")
	}
}

func TestStreamEncoder_Encode_Error(t *testing.T) {
	t.Parallel()

	writeErr := errors.New("write failed")
	encoder := NewStreamEncoder(&errWriter{err: writeErr})

	err := encoder.Encode(testContext(t), map[string]string{"key": "value"})
	require.Error(t, err)
	assert.ErrorIs(t, err, writeErr)

	// Unencodable values surface the marshalling error.
	var buf bytes.Buffer

	encoder = NewStreamEncoder(&buf)
	err = encoder.Encode(testContext(t), make(chan int))
	require.Error(t, err)

	var typeErr *json.UnsupportedTypeError

	assert.True(t, errors.As(err, &typeErr), "expected a json.UnsupportedTypeError, got: %v", err)
}

func TestStreamEncoder_Close(t *testing.T) {
	t.Parallel()

	blocking := newBlockingWriteCloser()
	encoder := NewStreamEncoder(blocking)
	require.NoError(t, encoder.Close())
	assert.True(t, blocking.isClosed(), "Close should reach the underlying writer")

	var buf bytes.Buffer

	encoder = NewStreamEncoder(&buf)
	require.NoError(t, encoder.Close())
}
