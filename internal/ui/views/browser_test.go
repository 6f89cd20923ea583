package views

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"wspick/internal/config"
	"wspick/internal/models"
	"wspick/internal/session"
	"wspick/internal/transport"
	"wspick/internal/ui"
	"wspick/internal/ui/messages"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTransport struct {
	id     string
	sent   []string
	closed int
	events chan transport.Event
}

func (s *stubTransport) ID() string                     { return s.id }
func (s *stubTransport) Start()                         {}
func (s *stubTransport) Send(frame string) error        { s.sent = append(s.sent, frame); return nil }
func (s *stubTransport) Close() error                   { s.closed++; return nil }
func (s *stubTransport) Events() <-chan transport.Event { return s.events }

type recordingOpener struct {
	urls []string
	err  error
}

func (o *recordingOpener) Open(_ context.Context, url string) (string, error) {
	o.urls = append(o.urls, url)
	if o.err != nil {
		return "", o.err
	}
	return "opened " + url, nil
}

type fixture struct {
	t      *testing.T
	v      *BrowserView
	s      *session.Session
	tr     *stubTransport
	opener *recordingOpener
	cfg    *config.Manager
}

func newFixture(t *testing.T, target models.Target) *fixture {
	f := &fixture{
		t:      t,
		tr:     &stubTransport{id: "stub", events: make(chan transport.Event, 1)},
		opener: &recordingOpener{},
		cfg:    config.NewManager(filepath.Join(t.TempDir(), "config.yaml")),
	}
	f.s = session.New(session.Options{
		Endpoint:       "ws://files.example.com/session",
		Factory:        func(string) transport.Transport { return f.tr },
		RequestTimeout: 10 * time.Second,
	})
	f.v = NewBrowserView(Options{
		Session: f.s,
		Opener:  f.opener,
		Config:  f.cfg,
		Target:  target,
		Width:   120,
		Height:  40,
	})
	return f
}

func (f *fixture) update(msg tea.Msg) tea.Cmd {
	_, cmd := f.v.Update(msg)
	return cmd
}

func (f *fixture) press(keys ...string) {
	for _, k := range keys {
		f.update(keyMsg(k))
	}
}

func (f *fixture) deliver(kind transport.EventKind, data string) {
	f.update(messages.TransportEventMsg{
		Event:  transport.Event{ConnID: f.tr.id, Kind: kind, Data: data},
		Source: f.tr.events,
	})
}

func (f *fixture) lastSent() string {
	require.NotEmpty(f.t, f.tr.sent)
	return f.tr.sent[len(f.tr.sent)-1]
}

const listing = `list [{"name":"src","mode":2147484141},{"name":"notes.txt","mode":420},{"name":"run.sh","mode":493}]`

func (f *fixture) browse() {
	f.press("c")
	f.deliver(transport.Opened, "")
	f.deliver(transport.Message, "connected")
	f.deliver(transport.Message, listing)
	require.Equal(f.t, session.Browsing, f.s.State())
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

var home = models.Target{Hostname: "u@host", Location: "/srv"}

func TestConnectAndRenderListing(t *testing.T) {
	f := newFixture(t, home)
	assert.Equal(t, focusList, f.v.focus)
	assert.Contains(t, f.v.View(), "Connect to browse remote files.")

	cmd := f.update(keyMsg("c"))
	assert.NotNil(t, cmd, "a listener is armed for the new transport")
	assert.Equal(t, session.Connecting, f.s.State())
	assert.Equal(t, "stub", f.v.listening)

	f.deliver(transport.Opened, "")
	assert.Equal(t, `connect {"hostname":"u@host","location":"/srv"}`, f.lastSent())

	f.deliver(transport.Message, "connected")
	assert.Equal(t, "list", f.lastSent())
	assert.Equal(t, []models.Target{home}, f.cfg.GetRecent(), "a successful connect is remembered")

	f.deliver(transport.Message, listing)
	view := f.v.View()
	assert.Contains(t, view, "/srv")
	assert.Contains(t, view, "src/")
	assert.Contains(t, view, "notes.txt")
	assert.Contains(t, view, "[ ]")
	assert.Contains(t, view, "drwxr-xr-x")
}

func TestNavigateWithKeys(t *testing.T) {
	f := newFixture(t, home)
	f.browse()

	f.press("j")
	assert.Equal(t, 1, f.v.cursor)
	f.press("enter")
	assert.Equal(t, `enter {"name":"src","mode":2147484141}`, f.lastSent())

	// Single flight: a second navigation is refused with a status.
	f.press("backspace")
	assert.True(t, f.v.status.IsError)
	assert.Equal(t, session.ErrNavigationInFlight.Error(), f.v.status.Message)

	f.deliver(transport.Message, "entered")
	assert.Equal(t, "/srv/src", f.s.Location())
	assert.Equal(t, 0, f.v.cursor, "cursor resets on a new location")

	f.deliver(transport.Message, `list [{"name":"main.go","mode":420}]`)
	f.press("h")
	assert.Equal(t, `enter {"name":"..","mode":2147483648}`, f.lastSent())
}

func TestCursorWrapsAndClamps(t *testing.T) {
	f := newFixture(t, home)
	f.browse()

	f.press("k")
	assert.Equal(t, 3, f.v.cursor)
	f.press("j")
	assert.Equal(t, 0, f.v.cursor)

	f.press("k")
	require.NoError(t, f.s.List())
	f.deliver(transport.Message, `list [{"name":"only","mode":420}]`)
	assert.Equal(t, 1, f.v.cursor)
}

func TestEnterOnFileReportsError(t *testing.T) {
	f := newFixture(t, home)
	f.browse()

	f.press("j", "j", "enter")
	assert.True(t, f.v.status.IsError)
	assert.Equal(t, session.ErrNotDirectory.Error(), f.v.status.Message)
}

func TestDownloadAndOpen(t *testing.T) {
	f := newFixture(t, home)
	f.browse()

	f.press("j", "j", "d")
	assert.Equal(t, `download {"name":"notes.txt","mode":420}`, f.lastSent())

	cmd := f.update(messages.TransportEventMsg{
		Event:  transport.Event{ConnID: "stub", Kind: transport.Message, Data: "download /files/srv/notes.txt"},
		Source: f.tr.events,
	})
	assert.NotNil(t, cmd)

	msg := f.v.open("http://files.example.com/files/srv/notes.txt")()
	opened, ok := msg.(messages.OpenedMsg)
	require.True(t, ok)
	assert.NoError(t, opened.Err)
	assert.Equal(t, []string{"http://files.example.com/files/srv/notes.txt"}, f.opener.urls)

	f.update(opened)
	assert.False(t, f.v.status.IsError)
	assert.Equal(t, "opened http://files.example.com/files/srv/notes.txt", f.v.status.Message)

	f.update(messages.OpenedMsg{Err: errors.New("no handler")})
	assert.True(t, f.v.status.IsError)
}

func TestSelectionAndBulk(t *testing.T) {
	f := newFixture(t, home)
	f.browse()

	// The parent entry cannot be selected.
	f.press("space")
	assert.Empty(t, f.s.Selection())

	f.press("j", "j", "space", "space")
	names := []string{}
	for _, e := range f.s.Selection() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"notes.txt", "run.sh"}, names)
	assert.Contains(t, f.v.View(), "[x]")
	assert.True(t, f.v.keys.Bulk.Enabled())

	f.press("b")
	assert.Equal(t, `download-bulk [{"name":"notes.txt","mode":420},{"name":"run.sh","mode":493}]`, f.lastSent())
	assert.Empty(t, f.s.Selection())
	assert.False(t, f.v.keys.Bulk.Enabled())
}

func TestDisconnectKey(t *testing.T) {
	f := newFixture(t, home)
	f.browse()

	f.press("x")
	assert.Equal(t, "disconnect", f.lastSent())
	assert.False(t, f.v.keys.Disconnect.Enabled())
	assert.False(t, f.v.keys.Enter.Enabled())

	f.deliver(transport.Message, "disconnected")
	assert.True(t, f.s.Idle())
	assert.Equal(t, "server ended the session", f.v.status.Message)
	assert.True(t, f.v.keys.Connect.Enabled())
	assert.Contains(t, f.v.View(), "session ended")

	// Connect again on the same transport.
	f.press("c")
	assert.Equal(t, `connect {"hostname":"u@host","location":"/srv"}`, f.lastSent())
}

func TestHostnameInput(t *testing.T) {
	f := newFixture(t, models.Target{})
	assert.Equal(t, focusHostname, f.v.focus)

	f.press("enter")
	assert.True(t, f.v.status.IsError)
	assert.Equal(t, session.ErrMissingHostname.Error(), f.v.status.Message)
	assert.Equal(t, focusHostname, f.v.focus)

	f.press("b", "o", "b", "tab")
	assert.Equal(t, focusLocation, f.v.focus)
	f.press("/", "t", "m", "p", "enter")

	assert.Equal(t, focusList, f.v.focus)
	assert.Equal(t, session.Connecting, f.s.State())
	assert.Equal(t, models.Target{Hostname: "bob", Location: "/tmp"}, f.s.Target())

	// Inputs are locked while connected.
	f.press("tab")
	assert.Equal(t, focusList, f.v.focus)
}

func TestGreetingTimeoutOnTick(t *testing.T) {
	f := newFixture(t, home)
	f.press("c")

	cmd := f.update(messages.TickMsg(time.Now().Add(time.Minute)))
	assert.NotNil(t, cmd, "the tick re-arms itself")
	assert.True(t, f.v.status.IsError)
	assert.Equal(t, "no response from server", f.v.status.Message)
	assert.Equal(t, session.Disconnected, f.s.State())
	assert.True(t, f.v.keys.Connect.Enabled())
}

func TestLateEventsFromOldTransportAreHarmless(t *testing.T) {
	f := newFixture(t, home)
	f.browse()

	f.deliver(transport.Closed, "")
	assert.True(t, f.v.status.IsError)
	assert.Equal(t, session.Disconnected, f.s.State())

	f.update(messages.TransportDoneMsg{ConnID: "stub"})
	assert.Empty(t, f.v.listening)

	f.update(messages.TransportEventMsg{
		Event:  transport.Event{ConnID: "stub", Kind: transport.Message, Data: listing},
		Source: f.tr.events,
	})
	assert.Nil(t, f.s.Entries())
}

func TestListen(t *testing.T) {
	ch := make(chan transport.Event, 1)
	ch <- transport.Event{ConnID: "a", Kind: transport.Opened}

	msg := listen("a", ch)()
	ev, ok := msg.(messages.TransportEventMsg)
	require.True(t, ok)
	assert.Equal(t, transport.Opened, ev.Event.Kind)
	assert.Equal(t, (<-chan transport.Event)(ch), ev.Source)

	close(ch)
	assert.Equal(t, messages.TransportDoneMsg{ConnID: "a"}, listen("a", ch)())
}

func TestPopupsAndPanels(t *testing.T) {
	f := newFixture(t, home)
	f.browse()

	f.press("u")
	require.NotNil(t, f.v.popup)
	assert.Contains(t, f.v.View(), "Uploading files is not supported yet.")
	f.press("j")
	assert.Equal(t, 0, f.v.cursor, "keys go to the popup")
	f.press("esc")
	assert.Nil(t, f.v.popup)

	f.press("L")
	assert.True(t, f.v.showLog)
	assert.Contains(t, f.v.View(), "Frames")

	f.update(tea.WindowSizeMsg{Width: 80, Height: 30})
	f.press("L")
	require.NotNil(t, f.v.popup)
	assert.Contains(t, f.v.View(), "Frame log")
	f.press("enter")
	assert.Nil(t, f.v.popup)

	f.press("?")
	assert.True(t, f.v.help.ShowAll)
}

func TestThemeKeyPersists(t *testing.T) {
	defer ui.SetTheme("Default")
	f := newFixture(t, home)
	before := f.cfg.Config().Theme

	cmd := f.update(keyMsg("t"))
	require.NotNil(t, cmd)
	chosen := f.cfg.Config().Theme
	assert.NotEqual(t, before, chosen)
	assert.Equal(t, "theme: "+ui.CurrentTheme(), f.v.status.Message)

	// the command saves the config as it was when the key was handled
	f.cfg.Config().Theme = before
	saved, ok := cmd().(messages.ConfigSavedMsg)
	require.True(t, ok)
	assert.NoError(t, saved.Err)

	reloaded := config.NewManager(f.cfg.Path())
	require.NoError(t, reloaded.Load())
	assert.Equal(t, chosen, reloaded.Config().Theme)
}

func TestQuitDisconnects(t *testing.T) {
	f := newFixture(t, home)
	f.browse()

	cmd := f.update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "disconnect", f.lastSent())
	assert.Empty(t, f.v.View())
}

func TestAutoConnect(t *testing.T) {
	f := newFixture(t, home)
	f.v = NewBrowserView(Options{Session: f.s, Opener: f.opener, Target: home, AutoConnect: true})

	f.v.Init()
	assert.Equal(t, session.Connecting, f.s.State())
}
