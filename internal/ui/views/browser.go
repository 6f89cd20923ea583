// internal/ui/views/browser.go

package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wspick/internal/config"
	"wspick/internal/log"
	"wspick/internal/models"
	"wspick/internal/opener"
	"wspick/internal/session"
	"wspick/internal/transport"
	"wspick/internal/ui"
	"wspick/internal/ui/components"
	"wspick/internal/ui/messages"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	tickInterval = time.Second
	openTimeout  = 5 * time.Minute
	narrowWidth  = 100
)

type focus int

const (
	focusList focus = iota
	focusHostname
	focusLocation
)

type Options struct {
	Session *session.Session
	Opener  opener.Opener
	Config  *config.Manager
	Target  models.Target
	Width   int
	Height  int

	// AutoConnect connects to Target on start.
	AutoConnect bool
}

// BrowserView is the interactive listing. All session calls happen inside
// Update, so the session sees a single writer.
type BrowserView struct {
	session *session.Session
	opener  opener.Opener
	config  *config.Manager

	keys          ui.KeyMap
	help          help.Model
	hostInput     textinput.Model
	locationInput textinput.Model
	spinner       spinner.Model

	focus    focus
	cursor   int
	offset   int
	location string

	// listening is the id of the transport whose channel is being drained.
	listening string
	prevState session.State

	status  ui.Status
	showLog bool
	popup   *components.Popup

	width       int
	height      int
	autoConnect bool
	quitting    bool
}

func NewBrowserView(opts Options) *BrowserView {
	host := textinput.New()
	host.Placeholder = "user@host:port"
	host.Prompt = ""
	host.CharLimit = 256
	host.Width = 28
	host.SetValue(opts.Target.Hostname)

	loc := textinput.New()
	loc.Placeholder = "/"
	loc.Prompt = ""
	loc.CharLimit = 1024
	loc.Width = 28
	loc.SetValue(opts.Target.Location)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	v := &BrowserView{
		session:       opts.Session,
		opener:        opts.Opener,
		config:        opts.Config,
		keys:          ui.DefaultKeyMap(),
		help:          help.New(),
		hostInput:     host,
		locationInput: loc,
		spinner:       sp,
		width:         opts.Width,
		height:        opts.Height,
		autoConnect:   opts.AutoConnect && !opts.Target.IsZero(),
	}
	if v.width == 0 {
		v.width = 100
	}
	if v.height == 0 {
		v.height = 30
	}
	if opts.Target.IsZero() {
		v.setFocus(focusHostname)
	}
	v.syncKeys()
	return v
}

func (v *BrowserView) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, v.spinner.Tick, tick()}
	if v.autoConnect {
		v.autoConnect = false
		cmds = append(cmds, v.connect())
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return messages.TickMsg(t)
	})
}

// listen blocks on one transport's channel; it is re-armed after every event
// until the channel closes.
func listen(connID string, ch <-chan transport.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return messages.TransportDoneMsg{ConnID: connID}
		}
		return messages.TransportEventMsg{Event: ev, Source: ch}
	}
}

// armListener starts draining the session's transport if it is new.
func (v *BrowserView) armListener() tea.Cmd {
	id := v.session.TransportID()
	if id == "" || id == v.listening {
		return nil
	}
	v.listening = id
	return listen(id, v.session.Events())
}

func (v *BrowserView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.help.Width = msg.Width
		if v.popup != nil {
			v.popup.ScreenWidth = msg.Width
			v.popup.ScreenHeight = msg.Height
		}
		v.clampCursor()
		return v, nil

	case messages.TickMsg:
		if err := v.session.Expire(time.Time(msg)); err != nil {
			v.setError(err)
		}
		v.afterSessionChange()
		return v, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.TransportEventMsg:
		cmds = append(cmds, listen(msg.Event.ConnID, msg.Source))
		eff, err := v.session.HandleEvent(msg.Event)
		if err != nil {
			v.setError(err)
		} else if eff.Notice != "" {
			v.setStatus(eff.Notice)
		}
		if eff.OpenURL != "" {
			cmds = append(cmds, v.open(eff.OpenURL))
		}
		cmds = append(cmds, v.afterSessionChange())
		return v, tea.Batch(cmds...)

	case messages.TransportDoneMsg:
		if v.listening == msg.ConnID {
			v.listening = ""
		}
		return v, v.armListener()

	case messages.OpenedMsg:
		if msg.Err != nil {
			v.setError(msg.Err)
		} else {
			v.setStatus(msg.Description)
		}
		return v, nil

	case messages.ConfigSavedMsg:
		if msg.Err != nil {
			log.Error("saving config", msg.Err)
		}
		return v, nil

	case tea.KeyMsg:
		if v.popup != nil {
			switch msg.String() {
			case "esc", "enter", "q":
				v.popup = nil
			case "ctrl+c":
				return v.quit()
			}
			return v, nil
		}
		if v.focus != focusList {
			return v.updateInputs(msg)
		}
		return v.updateList(msg)
	}

	return v, nil
}

func (v *BrowserView) updateInputs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return v.quit()
	case "tab":
		v.cycleFocus()
		return v, nil
	case "shift+tab":
		v.setFocus(focusList)
		return v, nil
	case "esc":
		v.setFocus(focusList)
		return v, nil
	case "enter":
		v.setFocus(focusList)
		return v, v.connect()
	}

	var cmd tea.Cmd
	if v.focus == focusHostname {
		v.hostInput, cmd = v.hostInput.Update(msg)
	} else {
		v.locationInput, cmd = v.locationInput.Update(msg)
	}
	return v, cmd
}

func (v *BrowserView) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := ui.RowsFor(v.session)

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v.quit()

	case key.Matches(msg, v.keys.Focus):
		v.cycleFocus()

	case key.Matches(msg, v.keys.Help):
		v.help.ShowAll = !v.help.ShowAll

	case key.Matches(msg, v.keys.Theme):
		name := ui.SwitchTheme()
		v.setStatus("theme: " + name)
		if v.config != nil {
			v.config.Config().Theme = name
			return v, v.saveConfig()
		}

	case key.Matches(msg, v.keys.Log):
		if v.width < narrowWidth {
			v.popup = components.NewLogPopup("Frame log", v.session.FrameLog(), v.width, v.height)
		} else {
			v.showLog = !v.showLog
		}

	case key.Matches(msg, v.keys.Connect):
		return v, v.connect()

	case key.Matches(msg, v.keys.Disconnect):
		if err := v.session.Disconnect(); err != nil {
			v.setError(err)
		}
		return v, v.afterSessionChange()

	case key.Matches(msg, v.keys.Upload):
		v.setStatus("upload is not available in this client")
		v.popup = components.NewPopup(components.PopupMessage, "Upload",
			"Uploading files is not supported yet.", 50, 7, v.width, v.height)

	case key.Matches(msg, v.keys.Up):
		v.move(-1, len(rows))

	case key.Matches(msg, v.keys.Down):
		v.move(1, len(rows))

	case key.Matches(msg, v.keys.Enter):
		if row, ok := v.current(rows); ok {
			v.report(v.session.Enter(row.Entry))
		}

	case key.Matches(msg, v.keys.Parent):
		v.report(v.session.Up())

	case key.Matches(msg, v.keys.Download):
		if row, ok := v.current(rows); ok {
			v.report(v.session.Download(row.Entry))
		}

	case key.Matches(msg, v.keys.Toggle):
		if row, ok := v.current(rows); ok && row.Selectable {
			v.session.Toggle(row.Entry)
			v.move(1, len(rows))
		}

	case key.Matches(msg, v.keys.Bulk):
		v.report(v.session.DownloadSelection())

	case key.Matches(msg, v.keys.Refresh):
		v.report(v.session.List())
	}

	v.syncKeys()
	return v, nil
}

func (v *BrowserView) report(err error) {
	if err != nil {
		v.setError(err)
	}
}

func (v *BrowserView) connect() tea.Cmd {
	if !ui.ControlsFor(v.session).Connect {
		return nil
	}
	target := models.Target{
		Hostname: strings.TrimSpace(v.hostInput.Value()),
		Location: strings.TrimSpace(v.locationInput.Value()),
	}
	if err := v.session.Connect(target); err != nil {
		v.setError(err)
		if target.IsZero() {
			v.setFocus(focusHostname)
		}
		return nil
	}
	v.setStatus(v.session.Status())
	return v.afterSessionChange()
}

// afterSessionChange reconciles the view with the session after any call
// that may have changed it.
func (v *BrowserView) afterSessionChange() tea.Cmd {
	var cmds []tea.Cmd

	state := v.session.State()
	if state == session.Connected && v.prevState != session.Connected && v.config != nil {
		v.config.AddRecent(v.session.Target())
		cmds = append(cmds, v.saveConfig())
	}
	v.prevState = state

	if loc := v.session.Location(); loc != v.location {
		v.location = loc
		v.cursor = 0
		v.offset = 0
	}
	if !ui.ControlsFor(v.session).Connect && v.focus != focusList {
		v.setFocus(focusList)
	}

	v.clampCursor()
	v.syncKeys()
	cmds = append(cmds, v.armListener())
	return tea.Batch(cmds...)
}

func (v *BrowserView) open(url string) tea.Cmd {
	o := v.opener
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()
		desc, err := o.Open(ctx, url)
		return messages.OpenedMsg{URL: url, Description: desc, Err: err}
	}
}

// saveConfig writes a copy taken now; Update keeps mutating the live config
// while the command runs.
func (v *BrowserView) saveConfig() tea.Cmd {
	path, cfg := v.config.Path(), v.config.Config().Clone()
	return func() tea.Msg {
		return messages.ConfigSavedMsg{Err: config.Save(path, cfg)}
	}
}

func (v *BrowserView) quit() (tea.Model, tea.Cmd) {
	if v.session.State() != session.Disconnected {
		if err := v.session.Disconnect(); err != nil {
			log.Error("disconnect on quit", err)
		}
	}
	v.quitting = true
	return v, tea.Quit
}

func (v *BrowserView) setStatus(msg string) {
	v.status = ui.Status{Message: msg}
}

func (v *BrowserView) setError(err error) {
	v.status = ui.Status{Message: err.Error(), IsError: true}
}

func (v *BrowserView) setFocus(f focus) {
	if f != focusList && !ui.ControlsFor(v.session).Connect {
		f = focusList
	}
	v.focus = f
	v.hostInput.Blur()
	v.locationInput.Blur()
	switch f {
	case focusHostname:
		v.hostInput.Focus()
	case focusLocation:
		v.locationInput.Focus()
	}
}

func (v *BrowserView) cycleFocus() {
	v.setFocus((v.focus + 1) % 3)
}

func (v *BrowserView) syncKeys() {
	v.keys.SetEnabled(ui.ControlsFor(v.session), ui.BulkEnabled(v.session))
}

func (v *BrowserView) current(rows []ui.Row) (ui.Row, bool) {
	if v.cursor < 0 || v.cursor >= len(rows) {
		return ui.Row{}, false
	}
	return rows[v.cursor], true
}

// move steps the cursor with wrap-around and keeps it in the visible window.
func (v *BrowserView) move(direction, total int) {
	if total == 0 {
		v.cursor, v.offset = 0, 0
		return
	}

	v.cursor += direction
	if v.cursor < 0 {
		v.cursor = total - 1
	} else if v.cursor >= total {
		v.cursor = 0
	}
	v.scrollToCursor()
}

func (v *BrowserView) scrollToCursor() {
	visible := ui.NewBaseLayout(v.width, v.height).VisibleRows()
	if v.cursor < v.offset {
		v.offset = v.cursor
	} else if v.cursor >= v.offset+visible {
		v.offset = v.cursor - visible + 1
	}
	if v.offset < 0 {
		v.offset = 0
	}
}

func (v *BrowserView) clampCursor() {
	total := len(v.session.Entries())
	if v.cursor >= total {
		v.cursor = total - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	v.scrollToCursor()
}

func (v *BrowserView) View() string {
	if v.quitting {
		return ""
	}

	layout := ui.NewBaseLayout(v.width, v.height)

	var content strings.Builder
	content.WriteString(layout.Header().Render(v.renderHeader()) + "\n")

	if v.showLog {
		left, right := layout.SplitView()
		content.WriteString(lipgloss.JoinHorizontal(
			lipgloss.Top,
			left.Render(v.renderListing(left.GetWidth(), layout.VisibleRows())),
			" ",
			right.Render(v.renderLog(right.GetWidth(), layout.ContentHeight)),
		))
	} else {
		single := layout.Single()
		content.WriteString(single.Render(v.renderListing(single.GetWidth(), layout.VisibleRows())))
	}
	content.WriteString("\n")
	content.WriteString(layout.Footer().Render(v.renderFooter()))

	baseView := ui.WindowStyle.Render(content.String())

	if v.popup != nil {
		return v.popup.Render()
	}
	return baseView
}

func (v *BrowserView) renderHeader() string {
	var b strings.Builder

	title := ui.TitleStyle.Render("wspick ❯ " + v.session.Endpoint())
	b.WriteString(title + "  " + v.renderState() + "\n")

	hostLabel := ui.LabelStyle.Render("Host:")
	locLabel := ui.LabelStyle.Render("Location:")
	b.WriteString(fmt.Sprintf("%s %s  %s %s\n",
		hostLabel, v.renderInput(v.hostInput, v.focus == focusHostname),
		locLabel, v.renderInput(v.locationInput, v.focus == focusLocation)))

	controls := ui.ControlsFor(v.session)
	b.WriteString(strings.Join([]string{
		renderButton("c Connect", controls.Connect),
		renderButton("x Disconnect", controls.Disconnect),
		renderButton("u Upload", controls.Upload),
		renderButton(fmt.Sprintf("b Download selected (%d)", len(v.session.Selection())), ui.BulkEnabled(v.session)),
	}, "  "))
	return b.String()
}

func (v *BrowserView) renderState() string {
	s := v.session
	switch {
	case s.AwaitingGreeting():
		return ui.StatusConnectingStyle.Render(v.spinner.View() + " connecting")
	case s.Idle():
		return ui.StatusDefaultStyle.Render("○ session ended")
	case s.IsBrowsable() && s.Busy():
		return ui.StatusConnectedStyle.Render(v.spinner.View() + " " + s.Target().Label())
	case s.IsBrowsable():
		return ui.StatusConnectedStyle.Render("● " + s.Target().Label())
	case s.State() == session.Disconnected:
		return ui.StatusDefaultStyle.Render("○ disconnected")
	default:
		return ui.StatusDefaultStyle.Render("○ " + s.State().String())
	}
}

func (v *BrowserView) renderInput(in textinput.Model, focused bool) string {
	if !ui.ControlsFor(v.session).Connect {
		value := in.Value()
		if value == "" {
			value = in.Placeholder
		}
		return ui.StatusDefaultStyle.Render(value)
	}
	if focused {
		return ui.FocusStyle.Render("[") + in.View() + ui.FocusStyle.Render("]")
	}
	return "[" + in.View() + "]"
}

func renderButton(label string, enabled bool) string {
	if enabled {
		return ui.ButtonStyle.Render(label)
	}
	return ui.ButtonDisabledStyle.Render(label)
}

func (v *BrowserView) renderListing(width, visible int) string {
	var b strings.Builder

	controls := ui.ControlsFor(v.session)
	location := v.session.Location()
	if location == "" {
		location = "-"
	}
	b.WriteString(ui.PanelTitleStyle.Render(ui.FormatPath(location, width-4)) + "\n")

	if !controls.Listing {
		b.WriteString(ui.DescriptionStyle.Render("\nConnect to browse remote files."))
		return b.String()
	}

	rows := ui.RowsFor(v.session)
	if len(rows) == 0 {
		b.WriteString(ui.DescriptionStyle.Render("\nWaiting for listing..."))
		return b.String()
	}

	b.WriteString(ui.HeaderStyle.Render("sel dl go mode       name") + "\n")

	end := v.offset + visible
	if end > len(rows) {
		end = len(rows)
	}
	for i := v.offset; i < end; i++ {
		b.WriteString(v.renderRow(rows[i], i == v.cursor, width) + "\n")
	}

	if len(rows) > visible {
		b.WriteString(ui.DescriptionStyle.Render(fmt.Sprintf("Showing %d-%d of %d items", v.offset+1, end, len(rows))))
	}
	return b.String()
}

// renderRow draws one entry: selection checkbox, download marker, navigate
// marker, mode and name.
func (v *BrowserView) renderRow(row ui.Row, isCursor bool, width int) string {
	check := "   "
	if row.Selectable {
		check = "[ ]"
		if row.Selected {
			check = "[x]"
		}
	}

	download := " "
	if row.CanDownload {
		download = "○"
	}

	navigate := " "
	name := row.Entry.Name
	if row.CanNavigate {
		navigate = "→"
		if !row.Entry.IsParent() {
			name += "/"
		}
	}
	name = ui.FormatPath(name, width-24)

	if isCursor {
		plain := fmt.Sprintf("%s  %s  %s %s %s", check, download, navigate, row.Mode, name)
		return ui.CursorStyle.Render(plain)
	}

	nameStyle := ui.FileStyle(row.Entry)
	if row.Selected {
		nameStyle = ui.SelectedFileStyle
	}
	return fmt.Sprintf("%s  %s  %s %s %s",
		check,
		ui.ButtonStyle.Render(download),
		ui.DirectoryStyle.Render(navigate),
		ui.RenderMode(row.Entry.Mode),
		nameStyle.Render(name),
	)
}

func (v *BrowserView) renderLog(width, height int) string {
	var b strings.Builder
	b.WriteString(ui.PanelTitleStyle.Render("Frames") + "\n")

	lines := v.session.FrameLog()
	room := height - 2
	if room < 1 {
		room = 1
	}
	if len(lines) > room {
		lines = lines[len(lines)-room:]
	}
	for _, line := range lines {
		b.WriteString(ui.FrameLineStyle(line).Render(ui.Truncate(line, width-2)))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *BrowserView) renderFooter() string {
	var status string
	switch {
	case v.status.IsError:
		status = ui.ErrorStyle.Render(v.status.Message)
	case v.status.Message != "":
		status = ui.SuccessStyle.Render(v.status.Message)
	default:
		status = ui.StatusDefaultStyle.Render(v.session.Status())
	}
	return lipgloss.JoinVertical(lipgloss.Left, status, v.help.View(v.keys))
}
