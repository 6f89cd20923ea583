// internal/ui/themes.go

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette colors one listing row by file kind.
type Palette struct {
	Directory  lipgloss.Color
	Executable lipgloss.Color
	Archive    lipgloss.Color
	Image      lipgloss.Color
	Document   lipgloss.Color
	Code       lipgloss.Color
	File       lipgloss.Color
	Selected   lipgloss.Color
}

type Theme struct {
	Name string

	Subtle   lipgloss.Color
	Accent   lipgloss.Color
	Positive lipgloss.Color
	Error    lipgloss.Color
	Border   lipgloss.Color
	Label    lipgloss.Color

	Listing Palette

	// permission letters in the mode column
	Read  lipgloss.Color
	Write lipgloss.Color
	Exec  lipgloss.Color

	// frame log
	Outbound lipgloss.Color
	Inbound  lipgloss.Color
}

var (
	currentThemeIndex = 0

	themes = []Theme{
		{
			Name:     "Default",
			Subtle:   lipgloss.Color("#7F849C"),
			Accent:   lipgloss.Color("#89B4FA"),
			Positive: lipgloss.Color("#A6E3A1"),
			Error:    lipgloss.Color("#F38BA8"),
			Border:   lipgloss.Color("#585B70"),
			Label:    lipgloss.Color("#BAC2DE"),
			Listing: Palette{
				Directory:  lipgloss.Color("#89B4FA"),
				Executable: lipgloss.Color("#A6E3A1"),
				Archive:    lipgloss.Color("#CBA6F7"),
				Image:      lipgloss.Color("#FAB387"),
				Document:   lipgloss.Color("#F9E2AF"),
				Code:       lipgloss.Color("#94E2D5"),
				File:       lipgloss.Color("#CDD6F4"),
				Selected:   lipgloss.Color("#F5C2E7"),
			},
			Read:     lipgloss.Color("#F9E2AF"),
			Write:    lipgloss.Color("#F38BA8"),
			Exec:     lipgloss.Color("#A6E3A1"),
			Outbound: lipgloss.Color("#FAB387"),
			Inbound:  lipgloss.Color("#94E2D5"),
		},
		{
			Name:     "Dracula",
			Subtle:   lipgloss.Color("#6272A4"),
			Accent:   lipgloss.Color("#BD93F9"),
			Positive: lipgloss.Color("#50FA7B"),
			Error:    lipgloss.Color("#FF5555"),
			Border:   lipgloss.Color("#44475A"),
			Label:    lipgloss.Color("#F8F8F2"),
			Listing: Palette{
				Directory:  lipgloss.Color("#BD93F9"),
				Executable: lipgloss.Color("#50FA7B"),
				Archive:    lipgloss.Color("#FFB86C"),
				Image:      lipgloss.Color("#FF79C6"),
				Document:   lipgloss.Color("#F1FA8C"),
				Code:       lipgloss.Color("#8BE9FD"),
				File:       lipgloss.Color("#F8F8F2"),
				Selected:   lipgloss.Color("#FF79C6"),
			},
			Read:     lipgloss.Color("#F1FA8C"),
			Write:    lipgloss.Color("#FF5555"),
			Exec:     lipgloss.Color("#50FA7B"),
			Outbound: lipgloss.Color("#FFB86C"),
			Inbound:  lipgloss.Color("#8BE9FD"),
		},
		{
			Name:     "Nord",
			Subtle:   lipgloss.Color("#4C566A"),
			Accent:   lipgloss.Color("#88C0D0"),
			Positive: lipgloss.Color("#A3BE8C"),
			Error:    lipgloss.Color("#BF616A"),
			Border:   lipgloss.Color("#5E81AC"),
			Label:    lipgloss.Color("#D8DEE9"),
			Listing: Palette{
				Directory:  lipgloss.Color("#81A1C1"),
				Executable: lipgloss.Color("#A3BE8C"),
				Archive:    lipgloss.Color("#B48EAD"),
				Image:      lipgloss.Color("#D08770"),
				Document:   lipgloss.Color("#EBCB8B"),
				Code:       lipgloss.Color("#8FBCBB"),
				File:       lipgloss.Color("#E5E9F0"),
				Selected:   lipgloss.Color("#88C0D0"),
			},
			Read:     lipgloss.Color("#EBCB8B"),
			Write:    lipgloss.Color("#BF616A"),
			Exec:     lipgloss.Color("#A3BE8C"),
			Outbound: lipgloss.Color("#D08770"),
			Inbound:  lipgloss.Color("#8FBCBB"),
		},
		{
			Name:     "Gruvbox",
			Subtle:   lipgloss.Color("#928374"),
			Accent:   lipgloss.Color("#83A598"),
			Positive: lipgloss.Color("#B8BB26"),
			Error:    lipgloss.Color("#FB4934"),
			Border:   lipgloss.Color("#665C54"),
			Label:    lipgloss.Color("#EBDBB2"),
			Listing: Palette{
				Directory:  lipgloss.Color("#83A598"),
				Executable: lipgloss.Color("#B8BB26"),
				Archive:    lipgloss.Color("#D3869B"),
				Image:      lipgloss.Color("#FE8019"),
				Document:   lipgloss.Color("#FABD2F"),
				Code:       lipgloss.Color("#8EC07C"),
				File:       lipgloss.Color("#EBDBB2"),
				Selected:   lipgloss.Color("#FABD2F"),
			},
			Read:     lipgloss.Color("#FABD2F"),
			Write:    lipgloss.Color("#FB4934"),
			Exec:     lipgloss.Color("#B8BB26"),
			Outbound: lipgloss.Color("#FE8019"),
			Inbound:  lipgloss.Color("#8EC07C"),
		},
	}
)

// SwitchTheme moves to the next theme, updates all styles and returns the
// new theme's name.
func SwitchTheme() string {
	currentThemeIndex = (currentThemeIndex + 1) % len(themes)
	currentTheme := themes[currentThemeIndex]
	updateStyles(currentTheme)
	return currentTheme.Name
}

// SetTheme activates a theme by name, ignoring case. Unknown names leave the
// current theme in place.
func SetTheme(name string) bool {
	for i, t := range themes {
		if strings.EqualFold(t.Name, name) {
			currentThemeIndex = i
			updateStyles(t)
			return true
		}
	}
	return false
}

func CurrentTheme() string {
	return themes[currentThemeIndex].Name
}

func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

func updateStyles(theme Theme) {
	Subtle = theme.Subtle
	Accent = theme.Accent
	Positive = theme.Positive
	Border = theme.Border

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Accent).
		MarginLeft(2)
	FocusStyle = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
	DescriptionStyle = lipgloss.NewStyle().
		Foreground(Subtle).
		MarginLeft(2)
	LabelStyle = lipgloss.NewStyle().Foreground(theme.Label)

	ButtonStyle = lipgloss.NewStyle().
		Foreground(Positive).
		Bold(true)
	ButtonDisabledStyle = lipgloss.NewStyle().
		Foreground(Subtle).
		Strikethrough(true)

	StatusConnectingStyle = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
	StatusConnectedStyle = lipgloss.NewStyle().
		Foreground(Positive).
		Bold(true)
	StatusDefaultStyle = lipgloss.NewStyle().Foreground(Subtle)
	SuccessStyle = lipgloss.NewStyle().
		Foreground(Positive).
		Bold(true)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true)

	WindowStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	PanelTitleStyle = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true).
		Padding(0, 1)
	HeaderStyle = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true).
		Underline(true).
		Padding(0, 1)

	p := theme.Listing
	DirectoryStyle = lipgloss.NewStyle().Foreground(p.Directory).Bold(true)
	ExecutableStyle = lipgloss.NewStyle().Foreground(p.Executable)
	ArchiveStyle = lipgloss.NewStyle().Foreground(p.Archive)
	ImageStyle = lipgloss.NewStyle().Foreground(p.Image)
	DocumentStyle = lipgloss.NewStyle().Foreground(p.Document)
	CodeStyle = lipgloss.NewStyle().Foreground(p.Code)
	DefaultFileStyle = lipgloss.NewStyle().Foreground(p.File)
	SelectedFileStyle = lipgloss.NewStyle().Foreground(p.Selected).Bold(true)
	CursorStyle = lipgloss.NewStyle().
		Bold(true).
		Background(Accent).
		Foreground(lipgloss.Color("0"))

	ReadStyle = lipgloss.NewStyle().Foreground(theme.Read)
	WriteStyle = lipgloss.NewStyle().Foreground(theme.Write)
	ExecStyle = lipgloss.NewStyle().Foreground(theme.Exec)

	FrameOutStyle = lipgloss.NewStyle().Foreground(theme.Outbound)
	FrameInStyle = lipgloss.NewStyle().Foreground(theme.Inbound)
}
