// internal/ui/components/popup.go

package components

import (
	"strings"

	"wspick/internal/ui"

	"github.com/charmbracelet/lipgloss"
)

type PopupType int

const (
	PopupNone PopupType = iota
	PopupMessage
	PopupLog
)

type Popup struct {
	Type         PopupType
	Title        string
	Message      string
	Lines        []string
	Width        int
	Height       int
	ScreenWidth  int
	ScreenHeight int
}

func NewPopup(popupType PopupType, title, message string, width, height, screenWidth, screenHeight int) *Popup {
	return &Popup{
		Type:         popupType,
		Title:        title,
		Message:      message,
		Width:        width,
		Height:       height,
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
	}
}

// NewLogPopup shows the tail of lines that fits the popup.
func NewLogPopup(title string, lines []string, screenWidth, screenHeight int) *Popup {
	width := screenWidth - 10
	if width < 30 {
		width = 30
	}
	height := screenHeight - 6
	if height < 8 {
		height = 8
	}
	p := NewPopup(PopupLog, title, "", width, height, screenWidth, screenHeight)
	p.Lines = lines
	return p
}

func (p *Popup) body() string {
	if p.Type != PopupLog {
		return p.Message + "\n"
	}

	// title, blank line, key hint and padding
	room := p.Height - 6
	if room < 1 {
		room = 1
	}
	lines := p.Lines
	if len(lines) > room {
		lines = lines[len(lines)-room:]
	}
	if len(lines) == 0 {
		return ui.DescriptionStyle.Render("no frames yet") + "\n"
	}

	maxWidth := p.Width - 6
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(ui.FrameLineStyle(line).Render(ui.Truncate(line, maxWidth)))
		b.WriteString("\n")
	}
	return b.String()
}

func (p *Popup) Render() string {
	popupStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.Border).
		Padding(1, 2).
		Width(p.Width).
		Height(p.Height)

	titleStyle := ui.TitleStyle.
		Align(lipgloss.Center).
		Width(p.Width - 4)

	var content strings.Builder
	content.WriteString(titleStyle.Render(p.Title) + "\n\n")
	content.WriteString(p.body())
	content.WriteString("\n" + ui.DescriptionStyle.Render("ESC/ENTER - Close"))

	return lipgloss.Place(
		p.ScreenWidth,
		p.ScreenHeight,
		lipgloss.Center,
		lipgloss.Center,
		popupStyle.Render(content.String()),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("0")),
	)
}
