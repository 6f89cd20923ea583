// internal/transport/websocket.go

package transport

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	apperrors "wspick/internal/error"
	"wspick/internal/log"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	stateIdle = iota
	stateDialing
	stateOpen
	stateClosed
)

const eventBuffer = 64

// Options tune the WebSocket transport.
type Options struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	Header           http.Header
}

func (o Options) withDefaults() Options {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	return o
}

// WebSocket is a Transport over a gorilla/websocket connection. Only text
// frames are delivered; binary frames are dropped.
type WebSocket struct {
	id       string
	endpoint string
	opts     Options
	events   chan Event
	log      *logrus.Entry

	mu     sync.Mutex
	state  int
	conn   *websocket.Conn
	cancel context.CancelFunc
}

func NewWebSocket(endpoint string, opts Options) *WebSocket {
	id := uuid.NewString()
	return &WebSocket{
		id:       id,
		endpoint: endpoint,
		opts:     opts.withDefaults(),
		events:   make(chan Event, eventBuffer),
		log:      log.WithFields(logrus.Fields{"conn": id[:8], "endpoint": endpoint}),
	}
}

// WebSocketFactory returns a Factory producing WebSocket transports.
func WebSocketFactory(opts Options) Factory {
	return func(endpoint string) Transport {
		return NewWebSocket(endpoint, opts)
	}
}

func (w *WebSocket) ID() string           { return w.id }
func (w *WebSocket) Events() <-chan Event { return w.events }

func (w *WebSocket) emit(kind EventKind, data string, err error) {
	w.events <- Event{ConnID: w.id, Kind: kind, Data: data, Err: err}
}

// finish emits the terminal Closed event and closes the channel.
func (w *WebSocket) finish() {
	w.emit(Closed, "", nil)
	close(w.events)
}

func (w *WebSocket) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != stateIdle {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.opts.HandshakeTimeout)
	w.cancel = cancel
	w.state = stateDialing

	go w.run(ctx)
}

func (w *WebSocket) run(ctx context.Context) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: w.opts.HandshakeTimeout,
	}

	w.log.Debug("dialing")
	conn, _, err := dialer.DialContext(ctx, w.endpoint, w.opts.Header)

	w.mu.Lock()
	w.cancel()
	if err != nil {
		closing := w.state == stateClosed
		w.state = stateClosed
		w.mu.Unlock()

		if !closing {
			w.log.WithError(err).Warn("dial failed")
			w.emit(Error, "", apperrors.New(apperrors.TransportError, "dial "+w.endpoint, err))
		}
		w.finish()
		return
	}
	if w.state == stateClosed {
		w.mu.Unlock()
		conn.Close()
		w.finish()
		return
	}
	w.conn = conn
	w.state = stateOpen
	w.mu.Unlock()

	w.log.Info("connection open")
	w.emit(Opened, "", nil)
	w.readLoop(conn)
}

func (w *WebSocket) readLoop(conn *websocket.Conn) {
	var readErr error
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			readErr = err
			break
		}
		if mt != websocket.TextMessage {
			w.log.Debugf("dropping %d byte non-text frame", len(data))
			continue
		}
		w.emit(Message, string(data), nil)
	}

	w.mu.Lock()
	closing := w.state == stateClosed
	w.state = stateClosed
	w.mu.Unlock()
	conn.Close()

	if !closing && !websocket.IsCloseError(readErr,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		w.log.WithError(readErr).Warn("connection lost")
		w.emit(Error, "", apperrors.New(apperrors.TransportError, "connection lost", readErr))
	} else {
		w.log.Info("connection closed")
	}
	w.finish()
}

func (w *WebSocket) Send(frame string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != stateOpen || w.conn == nil {
		return ErrNotOpen
	}

	if err := w.conn.SetWriteDeadline(time.Now().Add(w.opts.WriteTimeout)); err != nil {
		return apperrors.New(apperrors.TransportError, "set write deadline", err)
	}
	if err := w.conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		return apperrors.New(apperrors.TransportError, "write frame", err)
	}
	return nil
}

// Close shuts the connection down. The Closed event follows asynchronously.
// Calling Close more than once is harmless.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	prev := w.state
	w.state = stateClosed
	conn := w.conn
	cancel := w.cancel
	w.mu.Unlock()

	switch prev {
	case stateClosed:
		return nil
	case stateIdle:
		go w.finish()
		return nil
	case stateDialing:
		cancel()
		return nil
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	deadline := time.Now().Add(w.opts.WriteTimeout)
	werr := conn.WriteControl(websocket.CloseMessage, msg, deadline)
	cerr := conn.Close()
	if werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
		w.log.WithError(werr).Debug("close handshake")
	}
	if cerr != nil {
		return apperrors.New(apperrors.TransportError, "close connection", cerr)
	}
	return nil
}
