// internal/session/commands.go

package session

import (
	"strings"

	apperrors "wspick/internal/error"
	"wspick/internal/models"
	"wspick/internal/protocol"

	"github.com/sirupsen/logrus"
)

// Connect starts a server session for target. With no transport one is
// created and started; the connect frame goes out once it opens. In idle
// Connecting the frame is sent again on the open transport. Any other call
// while a transport exists does nothing.
func (s *Session) Connect(target models.Target) error {
	target.Hostname = strings.TrimSpace(target.Hostname)
	if target.IsZero() {
		return ErrMissingHostname
	}

	if s.tr != nil {
		if !s.CanConnect() {
			s.log.Debug("connect ignored, transport already exists")
			return nil
		}
		s.target = target
		return s.sendConnect()
	}

	s.target = target
	s.tr = s.opts.Factory(s.opts.Endpoint)
	s.open = false
	s.state = Connecting
	s.awaitingGreeting = true
	s.idle = false
	s.closing = false
	s.hangup = false
	s.greetingDeadline = s.opts.Now().Add(s.opts.RequestTimeout)
	s.setStatus("connecting to " + s.opts.Endpoint)

	s.log.WithFields(logrus.Fields{
		"conn":     s.tr.ID(),
		"endpoint": s.opts.Endpoint,
		"hostname": target.Hostname,
	}).Info("opening transport")

	s.tr.Start()
	return nil
}

func (s *Session) sendConnect() error {
	cmd := protocol.ConnectCommand{Hostname: s.target.Hostname, Location: s.target.Location}
	if _, err := s.send(cmd, models.RemoteEntry{}); err != nil {
		return err
	}
	s.awaitingGreeting = true
	s.idle = false
	s.greetingDeadline = s.opts.Now().Add(s.opts.RequestTimeout)
	s.setStatus("waiting for " + s.target.Label())
	return nil
}

// Disconnect ends the server session. The disconnect frame is sent only
// while the server session is live. The transport is closed locally when
// configured to, or when there is no live server session to wait for; the
// session then reaches Disconnected on the transport's Closed event.
// Otherwise the server's "disconnected" reply leaves the session idle.
func (s *Session) Disconnect() error {
	if s.state == Disconnected || s.tr == nil || s.closing {
		return nil
	}

	live := s.open && s.IsBrowsable()
	if live {
		if _, err := s.send(protocol.DisconnectCommand{}, models.RemoteEntry{}); err != nil {
			s.log.WithError(err).Warn("sending disconnect")
			live = false
		}
	}

	s.resetBrowsing()
	s.awaitingGreeting = false
	s.closing = true

	if s.opts.CloseOnDisconnect || !live {
		s.hangup = true
		s.setStatus("disconnecting")
		if err := s.tr.Close(); err != nil {
			s.log.WithError(err).Warn("closing transport")
			s.discard()
			return apperrors.New(apperrors.TransportError, "close transport", err)
		}
		return nil
	}

	s.closingDeadline = s.opts.Now().Add(s.opts.RequestTimeout)
	s.setStatus("disconnect requested")
	return nil
}

// List asks for the listing of the current location. A newer list makes any
// older outstanding one stale.
func (s *Session) List() error {
	if !s.IsBrowsable() {
		return ErrNotConnected
	}
	_, err := s.send(protocol.ListCommand{}, models.RemoteEntry{})
	return err
}

// Enter navigates into a directory entry. Only one listing or navigation
// request may be outstanding at a time.
func (s *Session) Enter(entry models.RemoteEntry) error {
	if !s.IsBrowsable() {
		return ErrNotConnected
	}
	if !entry.IsDir() {
		return ErrNotDirectory
	}
	if s.navigationInFlight() {
		return ErrNavigationInFlight
	}
	_, err := s.send(protocol.EnterCommand{Entry: entry}, entry)
	return err
}

// Up enters the parent directory.
func (s *Session) Up() error {
	return s.Enter(models.ParentEntry())
}

func (s *Session) Download(entry models.RemoteEntry) error {
	if !s.IsBrowsable() {
		return ErrNotConnected
	}
	_, err := s.send(protocol.DownloadCommand{Entry: entry}, entry)
	return err
}

// Toggle flips entry's membership in the selection and reports the new
// membership. The parent entry cannot be selected.
func (s *Session) Toggle(entry models.RemoteEntry) bool {
	if entry.IsParent() || !s.IsBrowsable() {
		return false
	}
	if s.selection[entry.Name] {
		delete(s.selection, entry.Name)
		return false
	}
	s.selection[entry.Name] = true
	return true
}

func (s *Session) Selected(entry models.RemoteEntry) bool {
	return s.selection[entry.Name]
}

// Selection returns the selected entries in listing order.
func (s *Session) Selection() []models.RemoteEntry {
	var out []models.RemoteEntry
	for _, e := range s.entries {
		if s.selection[e.Name] {
			out = append(out, e)
		}
	}
	return out
}

// DownloadSelection requests the selected entries as one bulk download and
// clears the selection.
func (s *Session) DownloadSelection() error {
	if !s.IsBrowsable() {
		return ErrNotConnected
	}
	entries := s.Selection()
	if len(entries) == 0 {
		return ErrEmptySelection
	}
	if _, err := s.send(protocol.DownloadBulkCommand{Entries: entries}, models.RemoteEntry{}); err != nil {
		return err
	}
	s.selection = make(map[string]bool)
	return nil
}

// send writes one command. Requests that expect a reply are queued with a
// fresh sequence number.
func (s *Session) send(cmd protocol.Command, entry models.RemoteEntry) (uint64, error) {
	if s.tr == nil || !s.open {
		return 0, ErrNotConnected
	}

	frame, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return 0, apperrors.New(apperrors.ProtocolError, "encode "+string(cmd.Verb()), err)
	}
	if err := s.tr.Send(frame); err != nil {
		s.frames.add(prefixError + err.Error())
		return 0, err
	}
	s.frames.add(prefixOut + frame)

	fields := logrus.Fields{"conn": s.tr.ID(), "verb": cmd.Verb()}

	switch cmd.Verb() {
	case protocol.VerbList, protocol.VerbEnter, protocol.VerbDownload, protocol.VerbDownloadBulk:
		s.seq++
		s.pending = append(s.pending, request{
			seq:   s.seq,
			verb:  cmd.Verb(),
			entry: entry,
			sent:  s.opts.Now(),
		})
		if cmd.Verb() == protocol.VerbList {
			s.latestList = s.seq
		}
		fields["seq"] = s.seq
		s.log.WithFields(fields).Debug("request sent")
		return s.seq, nil
	}

	s.log.WithFields(fields).Debug("frame sent")
	return 0, nil
}
