/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package crossword

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	painted  []Coord
	across   []Hint
	down     []Hint
	keyboard []string
}

func (r *recorder) PaintCell(c *Cell) { r.painted = append(r.painted, c.Coord()) }
func (r *recorder) ShowKeyboard(rows []string) { r.keyboard = rows }

type hints struct{ got *[]Hint }

func (h hints) ShowHints(list []Hint) { *h.got = list }

func (r *recorder) mounts() Mounts {
	return Mounts{Grid: r, Across: hints{&r.across}, Down: hints{&r.down}, Keyboard: r}
}

// catDog is a 3x3 puzzle: CAT across the top, CAR down the left column.
func catDog() Puzzle {
	return Puzzle{
		Across: map[string]Entry{
			"1A": {Hint: "Feline", Cells: line(3, Coord{0, 0}, Across)},
			"4A": {Hint: "Canine", Cells: line(3, Coord{0, 2}, Across)},
		},
		Down: map[string]Entry{
			"1D": {Hint: "Motor", Cells: line(3, Coord{0, 0}, Down)},
		},
	}
}

func newGrid(t *testing.T, p Puzzle) (*Grid, *recorder) {
	t.Helper()

	r := &recorder{}
	logger, _ := logtest.NewNullLogger()

	g := NewGrid(r.mounts(), logger)
	require.NoError(t, g.Load(p))

	return g, r
}

func TestNewGridShowsKeyboard(t *testing.T) {
	r := &recorder{}
	NewGrid(r.mounts(), nil)

	assert.Equal(t, []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}, r.keyboard)
}

func TestSharedCellIdentity(t *testing.T) {
	g, _ := newGrid(t, catDog())

	across, ok := g.Clue(ClueKey{Across, "1A"})
	require.True(t, ok)
	down, ok := g.Clue(ClueKey{Down, "1D"})
	require.True(t, ok)

	assert.Same(t, across.Cells()[0], down.Cells()[0])
	assert.Same(t, across.Cells()[0], g.mustCell(t, Coord{0, 0}))

	across.Cells()[0].SetCharacter("c")
	assert.Equal(t, "c", down.Cells()[0].Character())

	shared := g.mustCell(t, Coord{0, 0})
	assert.Equal(t, []ClueKey{{Across, "1A"}, {Down, "1D"}}, shared.Clues())
}

func (g *Grid) mustCell(t *testing.T, at Coord) *Cell {
	t.Helper()

	cell, ok := g.Cell(at)
	require.True(t, ok, "no cell at %s", at)

	return cell
}

func TestLoadDeduplicatesAndScales(t *testing.T) {
	g, r := newGrid(t, catDog())

	assert.Len(t, g.Cells(), 7)
	assert.InDelta(t, 100.0/3, g.Scale(), 1e-9)

	w, h := g.Size()
	assert.Equal(t, 3, w)
	assert.Equal(t, 3, h)

	assert.Len(t, r.painted, 7)
	assert.Equal(t, []Hint{{"1A", "Feline"}, {"4A", "Canine"}}, r.across)
	assert.Equal(t, []Hint{{"1D", "Motor"}}, r.down)
}

func TestLoadKeepsSeededCharacters(t *testing.T) {
	p := catDog()
	p.Across["1A"].Cells[1].C = "a"
	p.Across["1A"].Cells[2].C = " "

	g, _ := newGrid(t, p)

	assert.Equal(t, "a", g.mustCell(t, Coord{1, 0}).Character())
	assert.Equal(t, Blank, g.mustCell(t, Coord{2, 0}).Character())
}

func TestReloadDiscardsPreviousState(t *testing.T) {
	g, _ := newGrid(t, catDog())

	clue, _ := g.Clue(ClueKey{Across, "1A"})
	clue.Activate(nil)
	g.mustCell(t, Coord{2, 0}).SetCharacter("t")

	require.NoError(t, g.Load(Demo()))

	_, ok := g.Clue(ClueKey{Across, "4A"})
	assert.False(t, ok)

	cell := g.mustCell(t, Coord{2, 0})
	assert.Equal(t, Blank, cell.Character())
	assert.Equal(t, Unmarked, cell.Mark())
	assert.InDelta(t, 100.0/8, g.Scale(), 1e-9)
}

func TestLoadRejectsNegativeCoordinates(t *testing.T) {
	g, _ := newGrid(t, catDog())

	bad := catDog()
	bad.Down["9D"] = Entry{Hint: "Off the edge", Cells: []Edit{{X: 0, Y: -1}}}

	err := g.Load(bad)
	require.ErrorIs(t, err, ErrInvalidPuzzle)

	_, ok := g.Clue(ClueKey{Across, "4A"})
	assert.True(t, ok, "failed load must leave the previous grid in place")
}

func TestEmptyPuzzle(t *testing.T) {
	g, r := newGrid(t, Puzzle{})

	assert.Empty(t, g.Cells())
	assert.InDelta(t, 100.0, g.Scale(), 1e-9)
	assert.Empty(t, r.across)
	assert.Empty(t, r.down)
}

func TestSerializeRoundTrip(t *testing.T) {
	g, _ := newGrid(t, catDog())

	for i, ch := range []string{"c", "a", "t"} {
		g.mustCell(t, Coord{i, 0}).SetCharacter(ch)
	}

	other, _ := newGrid(t, catDog())
	for _, cell := range g.Cells() {
		require.NoError(t, other.ApplyRemoteEdit(cell.Serialize()))
	}

	for _, cell := range g.Cells() {
		assert.Equal(t, cell.Character(), other.mustCell(t, cell.Coord()).Character())
	}

	before := g.mustCell(t, Coord{1, 0}).Serialize()
	require.NoError(t, g.ApplyRemoteEdit(before))
	assert.Equal(t, before, g.mustCell(t, Coord{1, 0}).Serialize())
}

func TestApplyRemoteEditUnknownCell(t *testing.T) {
	g, _ := newGrid(t, catDog())

	err := g.ApplyRemoteEdit(Edit{X: 2, Y: 1, C: "x"})
	require.ErrorIs(t, err, ErrUnknownCell)
	assert.Contains(t, err.Error(), "(2,1)")
}

func TestApplyRemoteEditKeepsMarks(t *testing.T) {
	g, _ := newGrid(t, catDog())

	clue, _ := g.Clue(ClueKey{Across, "1A"})
	clue.Activate(g.mustCell(t, Coord{1, 0}))

	require.NoError(t, g.ApplyRemoteEdit(Edit{X: 1, Y: 0, C: "o"}))

	cell := g.mustCell(t, Coord{1, 0})
	assert.Equal(t, "o", cell.Character())
	assert.Equal(t, Active, cell.Mark())

	idx, ok := clue.Cursor()
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestClearMarks(t *testing.T) {
	g, _ := newGrid(t, catDog())

	clue, _ := g.Clue(ClueKey{Down, "1D"})
	clue.Activate(nil)
	g.ClearMarks()

	for _, cell := range g.Cells() {
		assert.Equal(t, Unmarked, cell.Mark(), cell.Coord().String())
	}
}

func TestNextClueCycles(t *testing.T) {
	g, _ := newGrid(t, catDog())

	cell := g.mustCell(t, Coord{0, 0})

	var names []string
	for range 5 {
		names = append(names, cell.NextClue().Name())
	}

	assert.Equal(t, []string{"1A", "1D", "1A", "1D", "1A"}, names)

	single := g.mustCell(t, Coord{2, 0})
	assert.Equal(t, "1A", single.NextClue().Name())
	assert.Equal(t, "1A", single.NextClue().Name())
}

func TestNextClueOnIsolatedCell(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	g := NewGrid(Mounts{}, logger)

	cell := &Cell{grid: g, at: Coord{5, 5}}
	assert.Nil(t, cell.NextClue())

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, 5, hook.LastEntry().Data["x"])
}

func TestDecodeValidates(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"across":{"1A":{"hint":"x","cells":[{"x":-1,"y":0,"c":""}]}}}`))
	require.ErrorIs(t, err, ErrInvalidPuzzle)

	_, err = Decode(strings.NewReader(`{"across":`))
	require.ErrorIs(t, err, ErrInvalidPuzzle)

	p, err := Decode(strings.NewReader(`{"across":{"1A":{"hint":"x","cells":[{"x":0,"y":0,"c":"a"}]}},"down":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "a", p.Across["1A"].Cells[0].C)
}

func TestDecodeTOML(t *testing.T) {
	p, err := DecodeTOML(strings.NewReader(`
[across.1A]
hint = "Feline"
cells = [{x = 0, y = 0, c = ""}, {x = 1, y = 0, c = "a"}, {x = 2, y = 0, c = ""}]

[down.1D]
hint = "Canine"
cells = [{x = 0, y = 0, c = ""}, {x = 0, y = 1, c = ""}, {x = 0, y = 2, c = ""}]
`))
	require.NoError(t, err)
	assert.Equal(t, "Feline", p.Across["1A"].Hint)
	assert.Equal(t, Edit{X: 1, Y: 0, C: "a"}, p.Across["1A"].Cells[1])
	assert.Len(t, p.Down["1D"].Cells, 3)

	_, err = DecodeTOML(strings.NewReader("[across.1A]\nhint = \"x\"\nclue = 3\n"))
	require.ErrorIs(t, err, ErrInvalidPuzzle)

	_, err = DecodeTOML(strings.NewReader("[across.1A]\ncells = [{x = 0, y = -1, c = \"\"}]\n"))
	require.ErrorIs(t, err, ErrInvalidPuzzle)
}

func TestPuzzleApply(t *testing.T) {
	p := catDog()
	snapshot := p.Clone()

	assert.True(t, p.Apply(Edit{X: 0, Y: 0, C: "c"}))
	assert.Equal(t, "c", p.Across["1A"].Cells[0].C)
	assert.Equal(t, "c", p.Down["1D"].Cells[0].C)
	assert.Equal(t, Blank, snapshot.Across["1A"].Cells[0].C, "clone shares no cells")

	assert.False(t, p.Apply(Edit{X: 2, Y: 1, C: "x"}))

	assert.True(t, p.Apply(Edit{X: 0, Y: 0, C: " "}))
	assert.Equal(t, Blank, p.Down["1D"].Cells[0].C)
}
