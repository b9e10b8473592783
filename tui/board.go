/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package tui

import (
	"strings"

	"github.com/Seednode/crosswire/crossword"
	"github.com/Seednode/crosswire/live"
	"github.com/charmbracelet/lipgloss"
)

const (
	cellWidth = 3
	keyWidth  = 2

	// headerLines is the number of lines drawn above the grid.
	headerLines = 2
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	cellStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("255"))
	highlightStyle = cellStyle.Background(lipgloss.Color("#B6FFDA"))
	activeStyle    = cellStyle.Background(lipgloss.Color("#FFF8B6")).Bold(true)
	blockStyle     = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	headingStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	hintNameStyle  = lipgloss.NewStyle().Bold(true)
	activeHint     = lipgloss.NewStyle().Reverse(true)
	keyStyle       = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintsStyle     = lipgloss.NewStyle().Width(48).PaddingLeft(4)

	stateStyles = map[live.State]lipgloss.Style{
		live.Disconnected: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		live.Connecting:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		live.Connected:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		live.Failed:       errorStyle,
	}
)

type hintList struct {
	hints []crossword.Hint
}

func (h *hintList) ShowHints(hints []crossword.Hint) {
	h.hints = hints
}

// board collects what the grid pushes to its mounts. Cells are redrawn from
// the grid on every frame, so painting needs no bookkeeping.
type board struct {
	across   hintList
	down     hintList
	keyboard []string
}

func (b *board) PaintCell(*crossword.Cell) {}

func (b *board) ShowKeyboard(rows []string) {
	b.keyboard = rows
}

func (b *board) mounts() crossword.Mounts {
	return crossword.Mounts{Grid: b, Across: &b.across, Down: &b.down, Keyboard: b}
}

func renderGrid(grid *crossword.Grid) string {
	width, height := grid.Size()
	if width == 0 || height == 0 {
		return keyStyle.Render("waiting for puzzle...")
	}

	rows := make([]string, height)

	for y := range height {
		var row strings.Builder

		for x := range width {
			cell, ok := grid.Cell(crossword.Coord{X: x, Y: y})
			if !ok {
				row.WriteString(blockStyle.Render(strings.Repeat(" ", cellWidth)))

				continue
			}

			style := cellStyle

			switch cell.Mark() {
			case crossword.Highlighted:
				style = highlightStyle
			case crossword.Active:
				style = activeStyle
			}

			ch := strings.ToUpper(cell.Character())
			if ch == crossword.Blank {
				ch = " "
			}

			row.WriteString(style.Render(" " + ch + " "))
		}

		rows[y] = row.String()
	}

	return strings.Join(rows, "\n")
}

func renderKeyboard(rows []string) string {
	lines := make([]string, len(rows))

	for i, row := range rows {
		var line strings.Builder
		for _, r := range row {
			line.WriteString(keyStyle.Render(string(r) + " "))
		}

		lines[i] = line.String()
	}

	return strings.Join(lines, "\n")
}

func renderHints(heading string, hints []crossword.Hint, active *crossword.Clue, dir crossword.Direction) string {
	lines := []string{headingStyle.Render(heading)}

	for _, h := range hints {
		line := hintNameStyle.Render(h.Name) + " " + h.Text
		if active != nil && active.Direction() == dir && active.Name() == h.Name {
			line = activeHint.Render(h.Name + " " + h.Text)
		}

		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}
