/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package crossword

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepBeforeActivate(t *testing.T) {
	g, _ := newGrid(t, catDog())

	clue, _ := g.Clue(ClueKey{Across, "1A"})

	_, ok := clue.Cursor()
	assert.False(t, ok)
	assert.Nil(t, clue.ActiveCell())
	assert.Nil(t, clue.StepForward())
	assert.Nil(t, clue.StepBackward())
}

func TestStepClamps(t *testing.T) {
	g, _ := newGrid(t, catDog())

	clue, _ := g.Clue(ClueKey{Across, "1A"})
	clue.Activate(g.mustCell(t, Coord{0, 0}))

	assert.Equal(t, Coord{1, 0}, clue.StepForward().Coord())
	assert.Equal(t, Coord{2, 0}, clue.StepForward().Coord())
	assert.Equal(t, Coord{2, 0}, clue.StepForward().Coord())
	assert.Equal(t, Coord{2, 0}, clue.StepForward().Coord())

	assert.Equal(t, Coord{1, 0}, clue.StepBackward().Coord())
	assert.Equal(t, Coord{0, 0}, clue.StepBackward().Coord())
	assert.Equal(t, Coord{0, 0}, clue.StepBackward().Coord())
}

func TestActivateFallsBackToLastCell(t *testing.T) {
	g, _ := newGrid(t, catDog())

	clue, _ := g.Clue(ClueKey{Across, "1A"})
	outside := g.mustCell(t, Coord{0, 2})

	clue.Activate(outside)

	assert.Equal(t, Coord{2, 0}, clue.ActiveCell().Coord())
	assert.Equal(t, Unmarked, outside.Mark())

	clue.Activate(nil)
	assert.Equal(t, Coord{2, 0}, clue.ActiveCell().Coord())
}

func TestActivateMarks(t *testing.T) {
	g, _ := newGrid(t, catDog())

	clue, _ := g.Clue(ClueKey{Down, "1D"})
	clue.Activate(g.mustCell(t, Coord{0, 1}))

	marks := make([]Mark, 0, clue.Len())
	for _, cell := range clue.Cells() {
		marks = append(marks, cell.Mark())
	}

	assert.Equal(t, []Mark{Highlighted, Active, Highlighted}, marks)
	assert.Equal(t, Unmarked, g.mustCell(t, Coord{1, 0}).Mark())
}

func TestCursorSurvivesDeselect(t *testing.T) {
	g, _ := newGrid(t, catDog())

	across, _ := g.Clue(ClueKey{Across, "1A"})
	down, _ := g.Clue(ClueKey{Down, "1D"})

	across.Activate(g.mustCell(t, Coord{1, 0}))
	g.ClearMarks()
	down.Activate(nil)

	idx, ok := across.Cursor()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestCompareClueNames(t *testing.T) {
	assert.Negative(t, CompareClueNames("2A", "10A"))
	assert.Positive(t, CompareClueNames("10A", "9A"))
	assert.Negative(t, CompareClueNames("1A", "1B"))
	assert.Zero(t, CompareClueNames("3D", "3D"))
	assert.Negative(t, CompareClueNames("A", "B"))
	assert.Negative(t, CompareClueNames("12", "A"))
	assert.Negative(t, CompareClueNames("007A", "8A"))
	assert.Positive(t, CompareClueNames("10000000000000000000A", "10A"))
	assert.Negative(t, CompareClueNames("99999999999999999999A", "100000000000000000000A"))
}

func TestSortedNamesBeyondIntRange(t *testing.T) {
	entries := map[string]Entry{
		"10000000000000000000A": {},
		"2A":                    {},
		"10A":                   {},
	}

	assert.Equal(t, []string{"2A", "10A", "10000000000000000000A"}, sortedNames(entries))
}

func TestHintOrderForAllPermutations(t *testing.T) {
	want := []string{"1A", "2A", "9A", "10A", "10B", "11A"}

	for _, names := range permutations(want) {
		p := Puzzle{Across: map[string]Entry{}}
		for i, name := range names {
			p.Across[name] = Entry{Hint: name, Cells: []Edit{{X: i, Y: 0}}}
		}

		g, r := newGrid(t, p)

		got := make([]string, 0, len(r.across))
		for _, h := range r.across {
			got = append(got, h.Name)
		}
		require.Equal(t, want, got, "input order %v", names)

		across, _ := g.Hints()
		require.Equal(t, r.across, across)
	}
}

func permutations(names []string) [][]string {
	if len(names) <= 1 {
		return [][]string{slices.Clone(names)}
	}

	var out [][]string
	for i, first := range names {
		rest := slices.Concat(names[:i:i], names[i+1:])
		for _, tail := range permutations(rest) {
			out = append(out, append([]string{first}, tail...))
		}
	}

	return out
}
