/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package tui

import (
	"errors"
	"testing"

	"github.com/Seednode/crosswire/crossword"
	"github.com/Seednode/crosswire/live"
	"github.com/Seednode/crosswire/navigation"
	tea "github.com/charmbracelet/bubbletea"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outbox struct {
	edits []crossword.Edit
}

func (o *outbox) Publish(e crossword.Edit) {
	o.edits = append(o.edits, e)
}

func loadedModel(t *testing.T) (Model, *outbox) {
	t.Helper()

	logger, _ := logtest.NewNullLogger()
	out := &outbox{}
	b := &board{}

	m := newModel(live.NewSession(b.mounts(), out, logger), b, "Demo")
	m = update(t, m, live.PuzzleLoaded{Puzzle: crossword.Demo()})

	return m, out
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()

	next, _ := m.Update(msg)

	updated, ok := next.(Model)
	require.True(t, ok)

	return updated
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyName(t *testing.T) {
	assert.Equal(t, navigation.KeyBackspace, keyName(tea.KeyMsg{Type: tea.KeyBackspace}))
	assert.Equal(t, navigation.KeyArrowRight, keyName(tea.KeyMsg{Type: tea.KeyRight}))
	assert.Equal(t, navigation.KeyArrowUp, keyName(tea.KeyMsg{Type: tea.KeyUp}))
	assert.Equal(t, "q", keyName(runes("q")))
	assert.Equal(t, "enter", keyName(tea.KeyMsg{Type: tea.KeyEnter}))
}

func TestLoadFillsMounts(t *testing.T) {
	m, _ := loadedModel(t)

	assert.Equal(t, crossword.KeyboardRows, m.board.keyboard)
	require.Len(t, m.board.across.hints, 2)
	assert.Equal(t, "1A", m.board.across.hints[0].Name)
	assert.Len(t, m.board.down.hints, 2)

	view := m.View()
	assert.Contains(t, view, "Across")
	assert.Contains(t, view, "I spent it in good company")
}

func TestClickAndType(t *testing.T) {
	m, out := loadedModel(t)

	// Third column of the top row.
	m = update(t, m, click(2*cellWidth+1, headerLines))
	for _, k := range []string{"c", "a", "t"} {
		m = update(t, m, runes(k))
	}

	assert.Equal(t, []crossword.Edit{
		{X: 2, Y: 0, C: "c"},
		{X: 3, Y: 0, C: "a"},
		{X: 4, Y: 0, C: "t"},
	}, out.edits)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	cell, ok := m.session.Grid().Cell(crossword.Coord{X: 4, Y: 0})
	require.True(t, ok)
	assert.Equal(t, crossword.Active, cell.Mark())
	assert.Equal(t, crossword.Edit{X: 5, Y: 0, C: ""}, out.edits[3])
}

func TestTabSwitchesDirection(t *testing.T) {
	m, _ := loadedModel(t)

	m = update(t, m, click(4*cellWidth, headerLines))
	clue, _ := m.session.Controller().Active()
	assert.Equal(t, "1A", clue.Name())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	clue, cell := m.session.Controller().Active()
	assert.Equal(t, "2D", clue.Name())
	assert.Equal(t, crossword.Coord{X: 4, Y: 0}, cell.Coord())
}

func TestClickOnKeyboard(t *testing.T) {
	m, out := loadedModel(t)

	m = update(t, m, click(0, headerLines))

	_, height := m.session.Grid().Size()
	keyboardTop := headerLines + height + 1

	// Second letter of the middle row.
	m = update(t, m, click(keyWidth, keyboardTop+1))

	require.Len(t, out.edits, 1)
	assert.Equal(t, crossword.Edit{X: 0, Y: 0, C: "s"}, out.edits[0])
}

func TestClickOutsideIsIgnored(t *testing.T) {
	m, out := loadedModel(t)

	m = update(t, m, click(200, 0))
	m = update(t, m, runes("x"))

	clue, _ := m.session.Controller().Active()
	assert.Nil(t, clue)
	assert.Empty(t, out.edits)
}

func TestRemoteEditAndChannelFailure(t *testing.T) {
	m, _ := loadedModel(t)

	m = update(t, m, live.EditReceived{Edit: crossword.Edit{X: 0, Y: 4, C: "z"}})
	cell, _ := m.session.Grid().Cell(crossword.Coord{X: 0, Y: 4})
	assert.Equal(t, "z", cell.Character())

	m = update(t, m, live.StateChanged{State: live.Connected})
	assert.Contains(t, m.View(), "connected")

	next, cmd := m.Update(channelDone{err: errors.New("giving up after 3 attempts")})
	assert.NotNil(t, cmd)
	assert.EqualError(t, next.(Model).Err(), "giving up after 3 attempts")
}
