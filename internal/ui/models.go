// internal/ui/models.go

package ui

import (
	"path"
	"strings"

	"wspick/internal/models"
	"wspick/internal/session"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// KeyMap holds the browser's key bindings. It satisfies help.KeyMap.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Focus      key.Binding
	Blur       key.Binding
	Connect    key.Binding
	Disconnect key.Binding
	Enter      key.Binding
	Parent     key.Binding
	Download   key.Binding
	Toggle     key.Binding
	Bulk       key.Binding
	Refresh    key.Binding
	Upload     key.Binding
	Log        key.Binding
	Theme      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "focus"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave input"),
		),
		Connect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "connect"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "disconnect"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", "l", "right"),
			key.WithHelp("enter/l", "open dir"),
		),
		Parent: key.NewBinding(
			key.WithKeys("backspace", "h", "left"),
			key.WithHelp("⌫/h", "parent"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		Bulk: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "download selected"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "upload"),
		),
		Log: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "frame log"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Connect, k.Disconnect, k.Enter, k.Download, k.Toggle, k.Bulk, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Parent},
		{k.Download, k.Toggle, k.Bulk, k.Refresh},
		{k.Focus, k.Blur, k.Connect, k.Disconnect},
		{k.Upload, k.Log, k.Theme, k.Help, k.Quit},
	}
}

// SetEnabled gates the bindings on the current controls so help only shows
// what can be used.
func (k *KeyMap) SetEnabled(c Controls, bulk bool) {
	k.Connect.SetEnabled(c.Connect)
	k.Disconnect.SetEnabled(c.Disconnect)
	k.Upload.SetEnabled(c.Upload)
	for _, b := range []*key.Binding{&k.Up, &k.Down, &k.Enter, &k.Parent, &k.Download, &k.Toggle, &k.Refresh} {
		b.SetEnabled(c.Listing)
	}
	k.Bulk.SetEnabled(c.Listing && bulk)
}

// Status is the line shown under the listing, separate from the frame log.
type Status struct {
	Message string
	IsError bool
}

// Controls is the enablement of the connection level affordances.
type Controls struct {
	Connect    bool
	Disconnect bool
	Upload     bool
	Listing    bool
}

// ControlsFor derives the affordances from the session state alone.
func ControlsFor(s *session.Session) Controls {
	browsable := s.IsBrowsable()
	return Controls{
		Connect:    s.CanConnect(),
		Disconnect: s.CanDisconnect(),
		Upload:     browsable,
		Listing:    browsable,
	}
}

// Row is one rendered listing line bound to the entry it came from.
type Row struct {
	Entry       models.RemoteEntry
	Mode        string
	CanNavigate bool
	CanDownload bool
	Selectable  bool
	Selected    bool
}

// RowsFor renders the session's listing, parent entry first. The rows are
// rebuilt in full on every call.
func RowsFor(s *session.Session) []Row {
	entries := s.Entries()
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			Entry:       e,
			Mode:        e.Mode.String(),
			CanNavigate: e.IsDir(),
			CanDownload: true,
			Selectable:  !e.IsParent(),
			Selected:    s.Selected(e),
		})
	}
	return rows
}

// BulkEnabled reports whether the bulk download trigger is live.
func BulkEnabled(s *session.Session) bool {
	return s.IsBrowsable() && len(s.Selection()) > 0
}

// RenderMode colors a mode string: the directory marker and each permission
// letter get their own style.
func RenderMode(m models.Mode) string {
	plain := m.String()
	var b strings.Builder
	for i, r := range plain {
		c := string(r)
		switch {
		case r == '-':
			b.WriteString(StatusDefaultStyle.Render(c))
		case i == 0:
			b.WriteString(DirectoryStyle.Render(c))
		case r == 'r':
			b.WriteString(ReadStyle.Render(c))
		case r == 'w':
			b.WriteString(WriteStyle.Render(c))
		default:
			b.WriteString(ExecStyle.Render(c))
		}
	}
	return b.String()
}

// FileType classifies an entry for coloring.
func FileType(e models.RemoteEntry) string {
	if e.IsDir() {
		return "directory"
	}

	switch strings.ToLower(path.Ext(e.Name)) {
	case ".zip", ".tar", ".gz", ".bz2", ".xz", ".7z", ".rar", ".tgz":
		return "archive"
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp", ".svg":
		return "image"
	case ".txt", ".doc", ".docx", ".pdf", ".md", ".csv", ".xlsx", ".odt":
		return "document"
	case ".c", ".h", ".go", ".py", ".js", ".ts", ".json", ".rs", ".java", ".sh":
		return "code"
	case ".exe", ".bat", ".cmd", ".com", ".app":
		return "executable"
	}

	if e.Mode.Perm()&0o111 != 0 {
		return "executable"
	}
	return "default"
}

func FileStyle(e models.RemoteEntry) lipgloss.Style {
	switch FileType(e) {
	case "directory":
		return DirectoryStyle
	case "archive":
		return ArchiveStyle
	case "image":
		return ImageStyle
	case "document":
		return DocumentStyle
	case "code":
		return CodeStyle
	case "executable":
		return ExecutableStyle
	default:
		return DefaultFileStyle
	}
}

// FormatPath shortens a path from the left to fit maxWidth.
func FormatPath(p string, maxWidth int) string {
	r := []rune(p)
	if maxWidth < 4 || len(r) <= maxWidth {
		return p
	}
	return "..." + string(r[len(r)-(maxWidth-3):])
}

// Truncate cuts s to maxWidth runes, marking the cut with "...".
func Truncate(s string, maxWidth int) string {
	r := []rune(s)
	if maxWidth <= 3 || len(r) <= maxWidth {
		return s
	}
	return string(r[:maxWidth-3]) + "..."
}
