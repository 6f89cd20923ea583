// internal/session/events.go

package session

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	apperrors "wspick/internal/error"
	"wspick/internal/models"
	"wspick/internal/protocol"
	"wspick/internal/transport"

	"github.com/sirupsen/logrus"
)

// HandleEvent applies one transport event. Events from a transport other
// than the current one are dropped. The returned error is also reflected in
// Status; the session stays usable after it.
func (s *Session) HandleEvent(ev transport.Event) (Effect, error) {
	if s.tr == nil || ev.ConnID != s.tr.ID() {
		s.log.WithFields(logrus.Fields{"conn": ev.ConnID, "kind": ev.Kind}).Debug("dropping event from discarded transport")
		return Effect{}, nil
	}

	switch ev.Kind {
	case transport.Opened:
		return s.handleOpened()
	case transport.Message:
		return s.handleMessage(ev.Data)
	case transport.Error:
		return s.handleError(ev.Err)
	case transport.Closed:
		return s.handleClosed()
	default:
		return Effect{}, nil
	}
}

func (s *Session) handleOpened() (Effect, error) {
	s.open = true
	s.log.WithField("conn", s.tr.ID()).Info("transport open")

	if s.hangup {
		return Effect{}, nil
	}
	if s.state == Connecting && s.awaitingGreeting {
		if err := s.sendConnect(); err != nil {
			s.setError(err)
			return Effect{}, err
		}
	}
	return Effect{}, nil
}

func (s *Session) handleError(err error) (Effect, error) {
	if err == nil {
		err = apperrors.New(apperrors.TransportError, "transport failed", nil)
	}
	s.frames.add(prefixError + err.Error())
	s.log.WithError(err).WithField("conn", s.tr.ID()).Warn("transport error")

	s.discard()
	s.setError(err)
	return Effect{}, err
}

func (s *Session) handleClosed() (Effect, error) {
	requested := s.closing || s.hangup
	s.log.WithFields(logrus.Fields{"conn": s.tr.ID(), "requested": requested}).Info("transport closed")

	s.discard()
	if requested {
		s.setStatus("disconnected")
		return Effect{}, nil
	}
	err := apperrors.New(apperrors.TransportError, "connection closed by server", nil)
	s.setError(err)
	return Effect{}, err
}

func (s *Session) handleMessage(data string) (Effect, error) {
	s.frames.add(prefixIn + data)

	ev, err := protocol.DecodeEvent(data)
	if err != nil {
		s.log.WithError(err).WithField("conn", s.tr.ID()).Warn("discarding malformed frame")
		s.setError(err)
		return Effect{}, err
	}

	if s.hangup {
		s.log.WithField("verb", ev.Verb()).Debug("ignoring frame after hangup")
		return Effect{}, nil
	}
	if s.closing {
		if _, ok := ev.(protocol.DisconnectedEvent); !ok {
			s.log.WithField("verb", ev.Verb()).Debug("ignoring frame while disconnecting")
			return Effect{}, nil
		}
	}

	switch e := ev.(type) {
	case protocol.ConnectedEvent:
		return s.onConnected()
	case protocol.DisconnectedEvent:
		return s.onDisconnected()
	case protocol.ListEvent:
		return s.onList(e)
	case protocol.EnteredEvent:
		return s.onEntered(e)
	case protocol.DownloadEvent:
		return s.onDownload(e)
	case protocol.UnknownEvent:
		return s.onUnknown(e)
	}
	return Effect{}, nil
}

func (s *Session) onConnected() (Effect, error) {
	if s.state != Connecting || !s.awaitingGreeting {
		s.log.WithField("state", s.state).Debug("unexpected connected")
		return Effect{}, nil
	}

	s.state = Connected
	s.awaitingGreeting = false
	s.idle = false
	s.resetBrowsing()
	s.location = s.target.Location
	s.log.WithField("hostname", s.target.Hostname).Info("server session established")
	s.setStatus("connected to " + s.target.Label())

	if err := s.List(); err != nil {
		s.setError(err)
		return Effect{}, err
	}
	return Effect{}, nil
}

func (s *Session) onDisconnected() (Effect, error) {
	if s.state != Connected && s.state != Browsing {
		s.log.WithField("state", s.state).Debug("unexpected disconnected")
		return Effect{}, nil
	}

	s.state = Connecting
	s.idle = true
	s.closing = false
	s.awaitingGreeting = false
	s.resetBrowsing()
	s.log.Info("server session ended")

	notice := "server ended the session"
	s.setStatus(notice)
	return Effect{Notice: notice}, nil
}

func (s *Session) onList(e protocol.ListEvent) (Effect, error) {
	if !s.IsBrowsable() {
		s.log.WithField("state", s.state).Debug("ignoring listing")
		return Effect{}, nil
	}

	if req, ok := s.resolve(protocol.VerbList); ok && req.seq != s.latestList {
		s.log.WithFields(logrus.Fields{"seq": req.seq, "latest": s.latestList}).Debug("discarding stale listing")
		return Effect{}, nil
	}

	entries := make([]models.RemoteEntry, 0, len(e.Entries)+1)
	entries = append(entries, models.ParentEntry())
	entries = append(entries, e.Entries...)

	s.entries = entries
	s.selection = make(map[string]bool)
	s.state = Browsing
	s.log.WithField("entries", len(e.Entries)).Debug("listing applied")
	return Effect{}, nil
}

func (s *Session) onEntered(e protocol.EnteredEvent) (Effect, error) {
	if !s.IsBrowsable() {
		s.log.WithField("state", s.state).Debug("ignoring entered")
		return Effect{}, nil
	}

	req, ok := s.resolve(protocol.VerbEnter)
	switch {
	case e.HasPath:
		s.location = e.Path
	case ok:
		s.location = joinLocation(s.location, req.entry.Name)
	}

	if err := s.List(); err != nil {
		s.setError(err)
		return Effect{}, err
	}
	return Effect{}, nil
}

func (s *Session) onDownload(e protocol.DownloadEvent) (Effect, error) {
	if !s.IsBrowsable() {
		s.log.WithField("state", s.state).Debug("ignoring download link")
		return Effect{}, nil
	}

	if _, ok := s.resolve(protocol.VerbDownload, protocol.VerbDownloadBulk); !ok {
		s.log.Debug("unsolicited download link")
	}

	link, err := resolveURL(s.opts.Endpoint, e.URL)
	if err != nil {
		s.setError(err)
		return Effect{}, err
	}
	s.setStatus("download ready: " + link)
	return Effect{OpenURL: link}, nil
}

// onUnknown handles frames with a verb this client does not know. Servers
// answer a failed request with its raw error text, so such a frame rejects
// the pending connect or the oldest outstanding request.
func (s *Session) onUnknown(e protocol.UnknownEvent) (Effect, error) {
	s.log.WithField("verb", e.Name).Info("unrecognized frame")

	if s.state == Connecting && s.awaitingGreeting {
		s.awaitingGreeting = false
		s.idle = true
		notice := "connect rejected: " + e.Raw
		s.setStatus(notice)
		return Effect{Notice: notice}, nil
	}

	if len(s.pending) > 0 {
		req := s.pending[0]
		s.pending = s.pending[1:]
		notice := fmt.Sprintf("%s rejected: %s", req.verb, e.Raw)
		s.setStatus(notice)
		return Effect{Notice: notice}, nil
	}

	notice := "ignored frame: " + e.Raw
	s.setStatus(notice)
	return Effect{Notice: notice}, nil
}

// resolve removes the oldest outstanding request with one of verbs.
func (s *Session) resolve(verbs ...protocol.Verb) (request, bool) {
	for i, r := range s.pending {
		for _, v := range verbs {
			if r.verb == v {
				s.pending = append(s.pending[:i:i], s.pending[i+1:]...)
				return r, true
			}
		}
	}
	return request{}, false
}

// Expire enforces the request timeout. A connect that got no greeting in
// time closes the transport; outstanding requests past their deadline are
// dropped. Either case is reported as a TimeoutError.
func (s *Session) Expire(now time.Time) error {
	if s.tr == nil {
		return nil
	}

	if s.state == Connecting && s.awaitingGreeting && !now.Before(s.greetingDeadline) {
		s.log.WithField("conn", s.tr.ID()).Warn("no greeting from server")
		s.discard()
		err := apperrors.New(apperrors.TimeoutError, "no response from server", nil)
		s.setError(err)
		return err
	}

	if s.closing && !s.hangup && !now.Before(s.closingDeadline) {
		s.log.WithField("conn", s.tr.ID()).Warn("no reply to disconnect, hanging up")
		s.hangup = true
		s.setStatus("disconnecting")
		if err := s.tr.Close(); err != nil {
			s.discard()
			return apperrors.New(apperrors.TransportError, "close transport", err)
		}
		return nil
	}

	var expired []string
	kept := s.pending[:0]
	for _, r := range s.pending {
		if now.Sub(r.sent) >= s.opts.RequestTimeout {
			expired = append(expired, string(r.verb))
			continue
		}
		kept = append(kept, r)
	}
	s.pending = kept

	if len(expired) == 0 {
		return nil
	}
	s.log.WithField("verbs", expired).Warn("requests timed out")
	err := apperrors.Newf(apperrors.TimeoutError, "%s timed out", strings.Join(expired, ", "))
	s.setError(err)
	return err
}

func joinLocation(base, name string) string {
	if base == "" {
		base = "."
	}
	return path.Join(base, name)
}

// resolveURL makes a relative download reference absolute against the
// endpoint, mapping ws/wss to http/https.
func resolveURL(endpoint, raw string) (string, error) {
	ref, err := url.Parse(raw)
	if err != nil {
		return "", apperrors.New(apperrors.ProtocolError, "invalid download url", err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}

	base, err := url.Parse(endpoint)
	if err != nil || base.Host == "" {
		return "", apperrors.Newf(apperrors.ProtocolError, "cannot resolve relative download url %q", raw)
	}
	switch base.Scheme {
	case "ws":
		base.Scheme = "http"
	case "wss":
		base.Scheme = "https"
	}
	return base.ResolveReference(ref).String(), nil
}
