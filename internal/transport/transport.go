// Package transport provides the single duplex connection a session talks
// over. Implementations report their lifecycle as a stream of events, the
// same open/message/error/close model a browser WebSocket exposes.
package transport

import (
	apperrors "wspick/internal/error"
)

type EventKind int

const (
	Opened EventKind = iota
	Message
	Error
	Closed
)

func (k EventKind) String() string {
	switch k {
	case Opened:
		return "open"
	case Message:
		return "message"
	case Error:
		return "error"
	case Closed:
		return "close"
	default:
		return "unknown"
	}
}

// Event is one lifecycle notification. ConnID identifies the transport that
// produced it, so events from a discarded transport can be told apart.
type Event struct {
	ConnID string
	Kind   EventKind
	Data   string
	Err    error
}

// Transport is owned by exactly one session. Start must not block; every
// outcome, including a failed dial, is reported on Events. Closed is always
// the last event and the channel is closed after it.
type Transport interface {
	ID() string
	Start()
	Send(frame string) error
	Close() error
	Events() <-chan Event
}

// Factory creates an unstarted transport for an endpoint.
type Factory func(endpoint string) Transport

var ErrNotOpen = apperrors.New(apperrors.TransportError, "connection is not open", nil)
