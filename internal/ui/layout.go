// internal/ui/layout.go

package ui

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
)

// BaseLayout holds the screen split used by the browser view.
type BaseLayout struct {
	Width         int
	Height        int
	HeaderHeight  int
	FooterHeight  int
	ContentHeight int
}

func NewBaseLayout(width, height int) BaseLayout {
	const (
		headerHeight = 5 // title, inputs, controls
		footerHeight = 4 // status line and key help
	)

	content := height - headerHeight - footerHeight - 2 // -2 for the window border
	if content < 3 {
		content = 3
	}

	return BaseLayout{
		Width:         width,
		Height:        height,
		HeaderHeight:  headerHeight,
		FooterHeight:  footerHeight,
		ContentHeight: content,
	}
}

// VisibleRows is how many listing rows fit, leaving room for the path line
// and the column header.
func (l BaseLayout) VisibleRows() int {
	rows := l.ContentHeight - 4
	if rows < 1 {
		return 1
	}
	return rows
}

func (l BaseLayout) Header() lipgloss.Style {
	return lipgloss.NewStyle().
		Width(l.Width-4). // -4 for border and padding
		Padding(0, 1)
}

func (l BaseLayout) Footer() lipgloss.Style {
	return lipgloss.NewStyle().
		Width(l.Width-4).
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Border)
}

// SplitView returns styles for the listing and the frame log side by side.
func (l BaseLayout) SplitView() (left, right lipgloss.Style) {
	panelWidth := (l.Width - 8) / 2 // separator and borders

	baseStyle := lipgloss.NewStyle().
		Height(l.ContentHeight).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Border)

	left = baseStyle.Width(panelWidth)
	right = baseStyle.Width(panelWidth)

	return left, right
}

// Single returns the style for the listing when it has the full width.
func (l BaseLayout) Single() lipgloss.Style {
	return lipgloss.NewStyle().
		Width(l.Width - 6).
		Height(l.ContentHeight).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Border)
}

// CreateLipglossTable renders a bordered table with themed header and cells.
func CreateLipglossTable(headers []string, rows [][]string) string {
	tableStyle := func(row, col int) lipgloss.Style {
		switch {
		case row == ltable.HeaderRow:
			return lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(Accent).
				Bold(true)
		default:
			return LabelStyle.Padding(0, 1)
		}
	}

	return ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		StyleFunc(tableStyle).
		Headers(headers...).
		Rows(rows...).
		Render()
}
