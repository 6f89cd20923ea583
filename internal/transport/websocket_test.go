package transport

import (
	"testing"
	"time"

	apperrors "wspick/internal/error"
	"wspick/internal/testserver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next(t *testing.T, w *WebSocket) Event {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func drained(t *testing.T, w *WebSocket) {
	t.Helper()
	select {
	case _, ok := <-w.Events():
		assert.False(t, ok, "expected the channel to be closed")
	case <-time.After(5 * time.Second):
		t.Fatal("channel was not closed")
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	srv := testserver.New(testserver.Options{})
	defer srv.Close()

	w := NewWebSocket(srv.Endpoint(), Options{})
	assert.NotEmpty(t, w.ID())
	assert.ErrorIs(t, w.Send("list"), ErrNotOpen)

	w.Start()
	ev := next(t, w)
	require.Equal(t, Opened, ev.Kind)
	assert.Equal(t, w.ID(), ev.ConnID)

	require.NoError(t, w.Send(`connect {"hostname":"h","location":"/"}`))
	ev = next(t, w)
	assert.Equal(t, Message, ev.Kind)
	assert.Equal(t, "connected", ev.Data)

	require.NoError(t, w.Send("list"))
	ev = next(t, w)
	assert.Equal(t, Message, ev.Kind)
	assert.Contains(t, ev.Data, `"name":"docs"`)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	ev = next(t, w)
	assert.Equal(t, Closed, ev.Kind, "a local close reports no error")
	drained(t, w)

	assert.ErrorIs(t, w.Send("list"), ErrNotOpen)
}

func TestWebSocketServerDrop(t *testing.T) {
	srv := testserver.New(testserver.Options{})
	defer srv.Close()

	w := NewWebSocket(srv.Endpoint(), Options{})
	w.Start()
	require.Equal(t, Opened, next(t, w).Kind)

	srv.Drop()

	ev := next(t, w)
	require.Equal(t, Error, ev.Kind)
	assert.True(t, apperrors.IsType(ev.Err, apperrors.TransportError))
	assert.Equal(t, Closed, next(t, w).Kind)
	drained(t, w)
}

func TestWebSocketServerCloseIsClean(t *testing.T) {
	srv := testserver.New(testserver.Options{CloseAfterDisconnect: true})
	defer srv.Close()

	w := NewWebSocket(srv.Endpoint(), Options{})
	w.Start()
	require.Equal(t, Opened, next(t, w).Kind)

	require.NoError(t, w.Send("disconnect"))
	ev := next(t, w)
	assert.Equal(t, "disconnected", ev.Data)
	assert.Equal(t, Closed, next(t, w).Kind, "a normal close from the server is not an error")
	drained(t, w)
}

func TestWebSocketDialFailure(t *testing.T) {
	srv := testserver.New(testserver.Options{})
	endpoint := srv.Endpoint()
	srv.Close()

	w := NewWebSocket(endpoint, Options{HandshakeTimeout: time.Second})
	w.Start()

	ev := next(t, w)
	require.Equal(t, Error, ev.Kind)
	assert.True(t, apperrors.IsType(ev.Err, apperrors.TransportError))
	assert.Equal(t, Closed, next(t, w).Kind)
	drained(t, w)
}

func TestWebSocketCloseBeforeStart(t *testing.T) {
	w := NewWebSocket("ws://127.0.0.1:1/session", Options{})

	require.NoError(t, w.Close())
	assert.Equal(t, Closed, next(t, w).Kind)
	drained(t, w)

	// Start after Close does nothing.
	w.Start()
}

func TestWebSocketFactory(t *testing.T) {
	f := WebSocketFactory(Options{})
	a := f("ws://a/session")
	b := f("ws://a/session")
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "open", Opened.String())
	assert.Equal(t, "message", Message.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "close", Closed.String())
}
