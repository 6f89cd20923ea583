// internal/testserver/server.go

// Package testserver runs an in-process session server over httptest for
// tests and local development. It serves a fixed directory tree and hands
// out relative download links that it also serves.
package testserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"

	"wspick/internal/log"
	"wspick/internal/models"
	"wspick/internal/protocol"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	SessionPath  = "/session"
	FilesPath    = "/files/"
	BulkFileName = "bulk.tar"
)

// Tree maps a directory path to its entries.
type Tree map[string][]models.RemoteEntry

// DefaultTree is a small tree rooted at "/".
func DefaultTree() Tree {
	return Tree{
		"/": {
			{Name: "docs", Mode: models.ModeDir | 0o755},
			{Name: "notes.txt", Mode: 0o644},
			{Name: "run.sh", Mode: 0o755},
		},
		"/docs": {
			{Name: "guide.md", Mode: 0o644},
			{Name: "img", Mode: models.ModeDir | 0o700},
		},
		"/docs/img": {
			{Name: "logo.png", Mode: 0o600},
		},
	}
}

type Options struct {
	Tree Tree

	// Silent never answers connect.
	Silent bool
	// RejectHostname answers connect for this hostname with raw error text.
	RejectHostname string
	// EchoEnteredPath appends the new location to "entered".
	EchoEnteredPath bool
	// CloseAfterDisconnect closes the socket after answering disconnect.
	CloseAfterDisconnect bool
}

type Server struct {
	*httptest.Server

	opts     Options
	upgrader websocket.Upgrader
	log      *logrus.Entry

	mu       sync.Mutex
	received []string
	conns    map[*websocket.Conn]bool
}

func New(opts Options) *Server {
	if opts.Tree == nil {
		opts.Tree = DefaultTree()
	}
	s := &Server{
		opts: opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:   log.WithFields(logrus.Fields{"component": "testserver"}),
		conns: make(map[*websocket.Conn]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(SessionPath, s.handleWS)
	mux.HandleFunc(FilesPath, s.handleFile)
	s.Server = httptest.NewServer(mux)
	return s
}

// Endpoint is the ws:// URL of the session handler.
func (s *Server) Endpoint() string {
	return "ws" + strings.TrimPrefix(s.URL, "http") + SessionPath
}

// Received returns the frames read so far, in order.
func (s *Server) Received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.received))
	copy(out, s.received)
	return out
}

// Drop closes every open socket without a close handshake.
func (s *Server) Drop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.UnderlyingConn().Close()
	}
}

func (s *Server) Close() {
	s.Drop()
	s.Server.Close()
}

type conn struct {
	ws        *websocket.Conn
	connected bool
	cwd       string
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("upgrade failed")
		return
	}

	s.mu.Lock()
	s.conns[ws] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, ws)
		s.mu.Unlock()
		ws.Close()
	}()

	c := &conn{ws: ws}
	for {
		kind, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		frame := string(data)
		s.mu.Lock()
		s.received = append(s.received, frame)
		s.mu.Unlock()

		reply, closeAfter := s.handle(c, frame)
		if reply != "" {
			if err := ws.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
				return
			}
		}
		if closeAfter {
			_ = ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handle answers one frame. Failures are answered with raw error text, which
// the client does not recognize as a verb.
func (s *Server) handle(c *conn, frame string) (string, bool) {
	cmd, err := protocol.DecodeCommand(frame)
	if err != nil {
		return "error: " + err.Error(), false
	}

	switch cmd := cmd.(type) {
	case protocol.ConnectCommand:
		if s.opts.Silent {
			return "", false
		}
		if cmd.Hostname == s.opts.RejectHostname {
			return fmt.Sprintf("error: dial %s: connection refused", cmd.Hostname), false
		}
		c.cwd = cleanDir(cmd.Location)
		c.connected = true
		return encode(protocol.ConnectedEvent{}), false

	case protocol.DisconnectCommand:
		c.connected = false
		return encode(protocol.DisconnectedEvent{}), s.opts.CloseAfterDisconnect
	}

	if !c.connected {
		return "error: not connected", false
	}

	switch cmd := cmd.(type) {
	case protocol.ListCommand:
		entries, ok := s.opts.Tree[c.cwd]
		if !ok {
			return fmt.Sprintf("error: no such directory %s", c.cwd), false
		}
		return encode(protocol.ListEvent{Entries: entries}), false

	case protocol.EnterCommand:
		next := path.Join(c.cwd, cmd.Entry.Name)
		if _, ok := s.opts.Tree[next]; !ok {
			return fmt.Sprintf("error: cannot enter %s", next), false
		}
		c.cwd = next
		if s.opts.EchoEnteredPath {
			return encode(protocol.EnteredEvent{Path: next, HasPath: true}), false
		}
		return encode(protocol.EnteredEvent{}), false

	case protocol.DownloadCommand:
		return encode(protocol.DownloadEvent{URL: fileURL(path.Join(c.cwd, cmd.Entry.Name))}), false

	case protocol.DownloadBulkCommand:
		names := make([]string, 0, len(cmd.Entries))
		for _, e := range cmd.Entries {
			names = append(names, e.Name)
		}
		sort.Strings(names)
		link := fileURL(path.Join(c.cwd, BulkFileName)) + "?names=" + url.QueryEscape(strings.Join(names, ","))
		return encode(protocol.DownloadEvent{URL: link}), false
	}

	return "error: unsupported command", false
}

// handleFile serves download links. The body names the requested path.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	p := "/" + strings.TrimPrefix(r.URL.Path, FilesPath)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(p)))
	w.Header().Set("Content-Type", "application/octet-stream")
	fmt.Fprintf(w, "content of %s", p)
	if names := r.URL.Query().Get("names"); names != "" {
		fmt.Fprintf(w, " [%s]", names)
	}
}

func fileURL(p string) string {
	return FilesPath + strings.TrimPrefix((&url.URL{Path: p}).EscapedPath(), "/")
}

func cleanDir(location string) string {
	if location == "" {
		return "/"
	}
	return path.Clean("/" + location)
}

func encode(ev protocol.Event) string {
	frame, err := protocol.EncodeEvent(ev)
	if err != nil {
		panic(err)
	}
	return frame
}
