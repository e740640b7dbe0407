package jsonrpc2

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wireval/jsonrpc2/jval"
)

// echoClient wires a TransportClient to an echo server over a pipe.
func echoClient(t *testing.T) *TransportClient {
	t.Helper()

	clientConn, _, _ := echoStream(t)

	return NewTransportClientIO(clientConn)
}

func TestNewTransportClient(t *testing.T) {
	t.Parallel()

	serverConn, clientConn := net.Pipe()

	t.Cleanup(func() {
		_ = serverConn.Close()
		_ = clientConn.Close()
	})

	e := NewEncoder(clientConn)
	d := NewDecoder(clientConn)

	client := NewTransportClient(e, d)
	require.NotNil(t, client)
	assert.Equal(t, e, client.e, "encoder should be stored")
	assert.Equal(t, d, client.d, "decoder should be stored")

	ioClient := NewTransportClientIO(clientConn)
	require.NotNil(t, ioClient)
	assert.NotNil(t, ioClient.e, "default encoder should be wired")
	assert.NotNil(t, ioClient.d, "default decoder should be wired")
}

func TestTransportClient_Call(t *testing.T) {
	t.Parallel()

	client := echoClient(t)

	req, err := NewRequestWithParams(int64(1), "echo", jval.NewArray(jval.String("hello")))
	require.NoError(t, err)

	resp, err := client.Call(testContext(t), req)
	require.NoError(t, err)
	require.True(t, resp.IsResult())

	id := resp.ID()
	assert.Equal(t, int64(1), id.Value(), "response id should match the request")

	result, ok := resp.Result()
	require.True(t, ok)
	assert.Equal(t, `["hello"]`, result.JSON())
}

func TestTransportClient_Call_ErrorResponse(t *testing.T) {
	t.Parallel()

	client := echoClient(t)

	// An unknown method is answered, not a transport failure.
	resp, err := client.Call(testContext(t), NewRequest(int64(2), "missing"))
	require.NoError(t, err)
	require.True(t, resp.IsError())

	rpcErr, ok := resp.Err()
	require.True(t, ok)
	assert.True(t, rpcErr.IsMethodNotFound())
}

func TestTransportClient_Call_ContextCancelled(t *testing.T) {
	t.Parallel()

	client := echoClient(t)

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	_, err := client.Call(ctx, NewRequest(int64(1), "echo"))
	assert.ErrorIs(t, err, context.Canceled, "a done context should fail before the wire")
}

func TestTransportClient_Call_BadReply(t *testing.T) {
	t.Parallel()

	serverConn, clientConn := net.Pipe()

	t.Cleanup(func() {
		_ = serverConn.Close()
		_ = clientConn.Close()
	})

	// A peer speaking the wrong protocol version.
	go func() {
		buf := make([]byte, 256)
		_, _ = serverConn.Read(buf)
		_, _ = io.WriteString(serverConn, `{"jsonrpc":"1.0","id":1,"result":true}`)
	}()

	client := NewTransportClientIO(clientConn)

	_, err := client.Call(testContext(t), NewRequest(int64(1), "status"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecoding)
}

func TestTransportClient_CallWithTimeout(t *testing.T) {
	t.Parallel()

	mux := NewMethodMux()
	require.NoError(t, mux.RegisterFunc("slow", func(ctx context.Context, _ *Request) (jval.Value, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return jval.String("late"), nil
		}
	}))

	serverConn, clientConn := net.Pipe()

	t.Cleanup(func() { _ = clientConn.Close() })

	startStream(t, NewStreamServerFromIO(serverConn, mux))

	client := NewTransportClientIO(clientConn)

	start := time.Now()

	_, err := client.CallWithTimeout(testContext(t), 50*time.Millisecond, NewRequest(int64(1), "slow"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second, "the timeout should interrupt the blocking read")
}

func TestTransportClient_ConcurrentCalls(t *testing.T) {
	t.Parallel()

	client := echoClient(t)

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func(n int64) {
			defer wg.Done()

			req, err := NewRequestWithParams(n, "echo", jval.NewArray(jval.NewNumber(n)))
			if !assert.NoError(t, err) {
				return
			}

			resp, err := client.Call(testContext(t), req)
			if !assert.NoError(t, err) {
				return
			}

			id := resp.ID()
			assert.Equal(t, n, id.Value(), "reply paired with the wrong request")

			result, ok := resp.Result()
			if assert.True(t, ok) {
				assert.Equal(t, fmt.Sprintf("[%d]", n), result.JSON())
			}
		}(int64(i + 1))
	}

	wg.Wait()
}

func TestTransportClient_CallBatch(t *testing.T) {
	t.Parallel()

	client := echoClient(t)

	first, err := NewRequestWithParams(int64(1), "echo", jval.NewArray(jval.NewNumber(1)))
	require.NoError(t, err)
	second, err := NewRequestWithParams(int64(2), "echo", jval.NewArray(jval.NewNumber(2)))
	require.NoError(t, err)
	quiet, err := NewNotificationWithParams("echo", jval.NewArray(jval.NewNumber(3)))
	require.NoError(t, err)

	batch := NewBatch[*Request](3)
	batch.Add(first, second, quiet)

	resps, err := client.CallBatch(testContext(t), batch)
	require.NoError(t, err)
	require.Len(t, resps, 2, "the notification gets no entry in the reply")

	for i := int64(1); i <= 2; i++ {
		resp, found := resps.Get(NewID(i))
		require.True(t, found, "id %d missing from the batch reply", i)

		result, ok := resp.Result()
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("[%d]", i), result.JSON())
	}
}

func TestTransportClient_CallBatch_Rejected(t *testing.T) {
	t.Parallel()

	client := echoClient(t)

	// An empty batch is invalid on the wire; the server rejects it with a
	// single error object, which comes back as a batch of one.
	resps, err := client.CallBatch(testContext(t), NewBatch[*Request](0))
	require.NoError(t, err)
	require.Len(t, resps, 1)

	rpcErr, ok := resps[0].Err()
	require.True(t, ok)
	assert.True(t, rpcErr.IsInvalidRequest())

	id := resps[0].ID()
	assert.True(t, id.IsNull(), "a rejection of the whole batch carries a null id")
}

func TestTransportClient_Notify(t *testing.T) {
	t.Parallel()

	client := echoClient(t)

	require.NoError(t, client.Notify(testContext(t), NewNotification("echo")))

	// The stream must stay clean after a notification: a follow-up call
	// gets its own reply, not a stranded one.
	req, err := NewRequestWithParams(int64(4), "echo", jval.NewArray(jval.String("after")))
	require.NoError(t, err)

	resp, err := client.Call(testContext(t), req)
	require.NoError(t, err)

	id := resp.ID()
	assert.Equal(t, int64(4), id.Value())
}

func TestTransportClient_Notify_NotNotification(t *testing.T) {
	t.Parallel()

	client := echoClient(t)

	err := client.Notify(testContext(t), NewRequest(int64(3), "echo"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotNotification)
	assert.Contains(t, err.Error(), "echo", "the offending method should be named")
}

func TestTransportClient_NotifyBatch(t *testing.T) {
	t.Parallel()

	client := echoClient(t)

	second, err := NewNotificationWithParams("echo", jval.NewArray(jval.Bool(true)))
	require.NoError(t, err)

	batch := NewBatch[*Request](2)
	batch.Add(NewNotification("echo"), second)

	require.NoError(t, client.NotifyBatch(testContext(t), batch))
}

func TestTransportClient_NotifyBatch_NotNotification(t *testing.T) {
	t.Parallel()

	client := echoClient(t)

	batch := NewBatch[*Request](2)
	batch.Add(NewNotification("echo"), NewRequest(int64(9), "echo"))

	err := client.NotifyBatch(testContext(t), batch)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotNotification, "one call poisons the whole batch")
}

func TestTransportClient_Close(t *testing.T) {
	t.Parallel()

	client := echoClient(t)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close(), "double close should be safe")

	_, err := client.Call(testContext(t), NewRequest(int64(1), "echo"))
	assert.Error(t, err, "calls after close should fail")
}
