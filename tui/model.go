/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package tui is a terminal client for a shared puzzle.
package tui

import (
	"context"
	"errors"

	"github.com/Seednode/crosswire/crossword"
	"github.com/Seednode/crosswire/live"
	"github.com/Seednode/crosswire/navigation"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Type   key.Binding
	Move   key.Binding
	Erase  key.Binding
	Toggle key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Type, k.Move, k.Erase, k.Toggle, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeys() keyMap {
	return keyMap{
		Type:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a-z", "fill cell")),
		Move:   key.NewBinding(key.WithKeys("left", "right", "up", "down"), key.WithHelp("←/→", "move")),
		Erase:  key.NewBinding(key.WithKeys("backspace", "delete"), key.WithHelp("⌫", "erase")),
		Toggle: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch direction")),
		Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

// channelDone reports that the live channel has stopped for good.
type channelDone struct {
	err error
}

type Model struct {
	session *live.Session
	board   *board
	keys    keyMap
	help    help.Model
	title   string
	err     error
}

func newModel(session *live.Session, b *board, title string) Model {
	return Model{
		session: session,
		board:   b,
		keys:    defaultKeys(),
		help:    help.New(),
		title:   title,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			if _, cell := m.session.Controller().Active(); cell != nil {
				m.session.Handle(live.CellClicked{At: cell.Coord()})
			}

			return m, nil
		}

		m.session.Handle(live.KeyPressed{Key: keyName(msg)})
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}

		if at, ok := m.cellAt(msg.X, msg.Y); ok {
			m.session.Handle(live.CellClicked{At: at})
		} else if letter, ok := m.keyAt(msg.X, msg.Y); ok {
			m.session.Handle(live.KeyPressed{Key: letter})
		}
	case channelDone:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.err = msg.err

			return m, tea.Quit
		}
	case live.Event:
		m.session.Handle(msg)
	}

	return m, nil
}

// Err is the error that ended the program, if any.
func (m Model) Err() error {
	return m.err
}

func keyName(msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		return navigation.KeyBackspace
	case tea.KeyRight:
		return navigation.KeyArrowRight
	case tea.KeyLeft:
		return navigation.KeyArrowLeft
	case tea.KeyUp:
		return navigation.KeyArrowUp
	case tea.KeyDown:
		return navigation.KeyArrowDown
	case tea.KeyRunes:
		if len(msg.Runes) == 1 && !msg.Alt {
			return string(msg.Runes)
		}
	}

	return msg.String()
}

func (m Model) cellAt(x, y int) (crossword.Coord, bool) {
	width, height := m.session.Grid().Size()

	row := y - headerLines
	col := x / cellWidth

	if x < 0 || row < 0 || row >= height || col >= width {
		return crossword.Coord{}, false
	}

	return crossword.Coord{X: col, Y: row}, true
}

func (m Model) keyAt(x, y int) (string, bool) {
	_, height := m.session.Grid().Size()

	row := y - headerLines - max(height, 1) - 1
	if x < 0 || row < 0 || row >= len(m.board.keyboard) {
		return "", false
	}

	keys := m.board.keyboard[row]

	col := x / keyWidth
	if col >= len(keys) {
		return "", false
	}

	return keys[col : col+1], true
}

func (m Model) View() string {
	state := m.session.State()

	header := titleStyle.Render(m.title) + "  " + stateStyles[state].Render(state.String())

	clue, _ := m.session.Controller().Active()

	left := lipgloss.JoinVertical(lipgloss.Left,
		renderGrid(m.session.Grid()),
		"",
		renderKeyboard(m.board.keyboard),
	)

	right := hintsStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		renderHints("Across", m.board.across.hints, clue, crossword.Across),
		"",
		renderHints("Down", m.board.down.hints, clue, crossword.Down),
	))

	status := ""
	if err := m.session.Err(); err != nil {
		status = errorStyle.Render(err.Error())
	}

	if m.err != nil {
		status = errorStyle.Render(m.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		"",
		status,
		m.help.View(m.keys),
	)
}
