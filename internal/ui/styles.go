// internal/ui/styles.go

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors of the active theme. updateStyles rewrites them together with
// every style below.
var (
	Subtle   lipgloss.Color
	Accent   lipgloss.Color
	Positive lipgloss.Color
	Border   lipgloss.Color
)

var (
	TitleStyle       lipgloss.Style
	FocusStyle       lipgloss.Style
	DescriptionStyle lipgloss.Style
	LabelStyle       lipgloss.Style

	ButtonStyle         lipgloss.Style
	ButtonDisabledStyle lipgloss.Style

	StatusConnectingStyle lipgloss.Style
	StatusConnectedStyle  lipgloss.Style
	StatusDefaultStyle    lipgloss.Style
	SuccessStyle          lipgloss.Style
	ErrorStyle            lipgloss.Style

	WindowStyle     lipgloss.Style
	PanelTitleStyle lipgloss.Style
	HeaderStyle     lipgloss.Style

	// Listing rows
	DirectoryStyle    lipgloss.Style
	ExecutableStyle   lipgloss.Style
	ArchiveStyle      lipgloss.Style
	ImageStyle        lipgloss.Style
	DocumentStyle     lipgloss.Style
	CodeStyle         lipgloss.Style
	DefaultFileStyle  lipgloss.Style
	SelectedFileStyle lipgloss.Style
	CursorStyle       lipgloss.Style

	// Permission letters
	ReadStyle  lipgloss.Style
	WriteStyle lipgloss.Style
	ExecStyle  lipgloss.Style

	FrameOutStyle lipgloss.Style
	FrameInStyle  lipgloss.Style
)

func init() {
	updateStyles(themes[0])
}

// FrameLineStyle picks the style for one frame log line by its direction
// prefix.
func FrameLineStyle(line string) lipgloss.Style {
	switch {
	case strings.HasPrefix(line, "> "):
		return FrameOutStyle
	case strings.HasPrefix(line, "! "):
		return ErrorStyle
	default:
		return FrameInStyle
	}
}
