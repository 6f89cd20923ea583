// internal/session/session.go

// Package session holds the client side of one remote browsing session: the
// connection lifecycle, the current listing and selection, and the mapping
// between user intents and server events. A Session is not safe for
// concurrent use; it is driven from a single event loop.
package session

import (
	"time"

	"wspick/internal/log"
	"wspick/internal/models"
	"wspick/internal/protocol"
	"wspick/internal/transport"

	"github.com/sirupsen/logrus"
)

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Browsing
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Browsing:
		return "browsing"
	default:
		return "unknown"
	}
}

const DefaultRequestTimeout = 10 * time.Second

type Options struct {
	Endpoint string
	Factory  transport.Factory

	// RequestTimeout bounds the wait for the greeting and for every
	// outstanding request.
	RequestTimeout time.Duration

	// CloseOnDisconnect closes the transport right after the disconnect
	// frame instead of keeping it open for another connect.
	CloseOnDisconnect bool

	Now func() time.Time
}

// Effect is an outcome of an inbound event that the caller must act on
// outside the session.
type Effect struct {
	OpenURL string
	Notice  string
}

type request struct {
	seq   uint64
	verb  protocol.Verb
	entry models.RemoteEntry
	sent  time.Time
}

type Session struct {
	opts Options
	log  *logrus.Entry

	state State
	tr    transport.Transport
	open  bool

	target   models.Target
	location string

	// awaitingGreeting is set from Connect until "connected" or a rejection;
	// greetingDeadline bounds both the dial and the greeting.
	awaitingGreeting bool
	greetingDeadline time.Time
	// idle marks a Connecting session whose server side ended while the
	// transport stayed open.
	idle bool
	// closing is set by Disconnect; hangup once the transport was closed
	// locally and only its Closed event is left to wait for. Past
	// closingDeadline an unanswered disconnect turns into a hangup.
	closing         bool
	hangup          bool
	closingDeadline time.Time

	entries   []models.RemoteEntry
	selection map[string]bool

	seq        uint64
	latestList uint64
	pending    []request

	frames *frameLog
	status string
}

func New(opts Options) *Session {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Factory == nil {
		opts.Factory = transport.WebSocketFactory(transport.Options{})
	}
	return &Session{
		opts:      opts,
		log:       log.WithFields(logrus.Fields{"component": "session"}),
		selection: make(map[string]bool),
		frames:    newFrameLog(frameLogSize),
	}
}

func (s *Session) State() State { return s.state }

func (s *Session) Location() string { return s.location }

func (s *Session) Target() models.Target { return s.target }

func (s *Session) Endpoint() string { return s.opts.Endpoint }

// Entries returns the last applied listing, parent entry first. It is nil
// until a listing has been applied.
func (s *Session) Entries() []models.RemoteEntry {
	if s.entries == nil {
		return nil
	}
	out := make([]models.RemoteEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Events is the event stream of the current transport, nil when there is none.
func (s *Session) Events() <-chan transport.Event {
	if s.tr == nil {
		return nil
	}
	return s.tr.Events()
}

// TransportID identifies the current transport, empty when there is none.
func (s *Session) TransportID() string {
	if s.tr == nil {
		return ""
	}
	return s.tr.ID()
}

// IsBrowsable reports whether listing, navigation and downloads are allowed.
func (s *Session) IsBrowsable() bool {
	return (s.state == Connected || s.state == Browsing) && !s.closing
}

// CanConnect reports whether Connect would start a new server session.
func (s *Session) CanConnect() bool {
	return s.state == Disconnected || (s.Idle() && s.open)
}

// CanDisconnect is false in idle Connecting: the server already ended the
// session and there is nothing to disconnect from.
func (s *Session) CanDisconnect() bool {
	if s.closing {
		return false
	}
	return s.IsBrowsable() || (s.state == Connecting && !s.idle)
}

// Idle reports whether the server ended the session on a still open transport.
func (s *Session) Idle() bool {
	return s.state == Connecting && s.idle && !s.closing
}

// AwaitingGreeting reports whether a connect is in progress.
func (s *Session) AwaitingGreeting() bool {
	return s.state == Connecting && s.awaitingGreeting
}

// Busy reports whether a listing or navigation request is outstanding.
func (s *Session) Busy() bool {
	return s.navigationInFlight()
}

func (s *Session) Outstanding() int { return len(s.pending) }

// FrameLog returns the recent frames, oldest first. Outbound frames start
// with "> ", inbound frames with "< " and transport errors with "! ".
func (s *Session) FrameLog() []string {
	return s.frames.snapshot()
}

// Status is the last user facing notice or error.
func (s *Session) Status() string { return s.status }

func (s *Session) setStatus(msg string) {
	s.status = msg
}

func (s *Session) setError(err error) {
	s.status = "error: " + err.Error()
}

func (s *Session) navigationInFlight() bool {
	for _, r := range s.pending {
		if r.verb == protocol.VerbList || r.verb == protocol.VerbEnter {
			return true
		}
	}
	return false
}

// resetBrowsing drops everything that belongs to one server session.
func (s *Session) resetBrowsing() {
	s.entries = nil
	s.location = ""
	s.pending = nil
	s.latestList = 0
	s.selection = make(map[string]bool)
}

// discard forgets the current transport. Late events from it are dropped
// because their connection id no longer matches.
func (s *Session) discard() {
	if s.tr != nil {
		if err := s.tr.Close(); err != nil {
			s.log.WithError(err).Debug("closing discarded transport")
		}
	}
	s.tr = nil
	s.open = false
	s.state = Disconnected
	s.awaitingGreeting = false
	s.idle = false
	s.closing = false
	s.hangup = false
	s.resetBrowsing()
}
