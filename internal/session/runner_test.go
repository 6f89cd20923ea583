package session

import (
	"context"
	"testing"
	"time"

	apperrors "wspick/internal/error"
	"wspick/internal/models"
	"wspick/internal/testserver"
	"wspick/internal/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLiveSession(srv *testserver.Server, closeOnDisconnect bool) *Session {
	return New(Options{
		Endpoint:          srv.Endpoint(),
		Factory:           transport.WebSocketFactory(transport.Options{HandshakeTimeout: 2 * time.Second}),
		RequestTimeout:    2 * time.Second,
		CloseOnDisconnect: closeOnDisconnect,
	})
}

func browsing(s *Session, _ Effect) bool { return s.State() == Browsing && !s.Busy() }

func TestRunnerBrowseAndDownload(t *testing.T) {
	srv := testserver.New(testserver.Options{})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := newLiveSession(srv, true)
	r := NewRunner(s)

	require.NoError(t, s.Connect(models.Target{Hostname: "u@h", Location: "/"}))
	require.NoError(t, r.Until(ctx, browsing))
	require.Len(t, s.Entries(), 4)

	require.NoError(t, s.Enter(entryNamed(t, s, "docs")))
	require.NoError(t, r.Until(ctx, func(s *Session, _ Effect) bool {
		return browsing(s, Effect{}) && s.Location() == "/docs"
	}))
	assert.Equal(t, "guide.md", s.Entries()[1].Name)

	var effects []Effect
	r.OnEffect = func(eff Effect) { effects = append(effects, eff) }

	require.NoError(t, s.Download(entryNamed(t, s, "guide.md")))
	var link string
	require.NoError(t, r.Until(ctx, func(_ *Session, eff Effect) bool {
		link = eff.OpenURL
		return link != ""
	}))
	assert.Equal(t, srv.URL+"/files/docs/guide.md", link)
	require.Len(t, effects, 1)

	require.NoError(t, r.Close(ctx))
	assert.Equal(t, Disconnected, s.State())
	assert.Eventually(t, func() bool {
		return countFrames(srv.Received(), "disconnect") == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunnerKeepsTransportAcrossSessions(t *testing.T) {
	srv := testserver.New(testserver.Options{EchoEnteredPath: true})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := newLiveSession(srv, false)
	r := NewRunner(s)

	require.NoError(t, s.Connect(models.Target{Hostname: "first", Location: "/docs"}))
	require.NoError(t, r.Until(ctx, browsing))
	id := s.TransportID()

	require.NoError(t, s.Disconnect())
	require.NoError(t, r.Until(ctx, func(s *Session, _ Effect) bool { return s.Idle() }))
	assert.True(t, s.CanConnect())

	require.NoError(t, s.Connect(models.Target{Hostname: "second", Location: "/"}))
	require.NoError(t, r.Until(ctx, browsing))
	assert.Equal(t, id, s.TransportID())
	assert.Equal(t, "/", s.Location())

	require.NoError(t, r.Close(ctx))
	assert.Equal(t, Disconnected, s.State())
}

func TestRunnerReportsRejectedConnect(t *testing.T) {
	srv := testserver.New(testserver.Options{RejectHostname: "nope"})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := newLiveSession(srv, true)
	r := NewRunner(s)

	var notice string
	r.OnEffect = func(eff Effect) { notice = eff.Notice }

	require.NoError(t, s.Connect(models.Target{Hostname: "nope"}))
	require.NoError(t, r.Until(ctx, func(s *Session, _ Effect) bool { return s.Idle() }))
	assert.Contains(t, notice, "connect rejected")

	require.NoError(t, r.Close(ctx))
}

func TestRunnerGreetingTimeout(t *testing.T) {
	srv := testserver.New(testserver.Options{Silent: true})
	defer srv.Close()

	s := New(Options{
		Endpoint:       srv.Endpoint(),
		RequestTimeout: 300 * time.Millisecond,
	})
	r := NewRunner(s)

	require.NoError(t, s.Connect(models.Target{Hostname: "h"}))
	err := r.Until(context.Background(), browsing)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TimeoutError))
	assert.Equal(t, Disconnected, s.State())
}

func TestRunnerDialFailure(t *testing.T) {
	srv := testserver.New(testserver.Options{})
	endpoint := srv.Endpoint()
	srv.Close()

	s := New(Options{Endpoint: endpoint})
	r := NewRunner(s)

	require.NoError(t, s.Connect(models.Target{Hostname: "h"}))
	err := r.Until(context.Background(), browsing)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TransportError))
	assert.Equal(t, Disconnected, s.State())
	assert.True(t, s.CanConnect())
}

func TestRunnerWithoutTransport(t *testing.T) {
	r := NewRunner(New(Options{Endpoint: testEndpoint}))
	assert.ErrorIs(t, r.Until(context.Background(), browsing), ErrNotConnected)
	assert.NoError(t, r.Close(context.Background()))
}

func TestRunnerContextCancel(t *testing.T) {
	srv := testserver.New(testserver.Options{Silent: true})
	defer srv.Close()

	s := newLiveSession(srv, true)
	s.opts.RequestTimeout = time.Minute
	r := NewRunner(s)

	require.NoError(t, s.Connect(models.Target{Hostname: "h"}))
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := r.Until(ctx, browsing)
	assert.True(t, apperrors.IsType(err, apperrors.TimeoutError))
	require.NoError(t, r.Close(context.Background()))
}
