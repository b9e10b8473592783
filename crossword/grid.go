/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package crossword

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// Grid owns every Cell and Clue of the loaded puzzle. Cells are looked up
// by coordinate and clues by key, so the two sides never hold pointers into
// a previous load.
type Grid struct {
	cells  map[Coord]*Cell
	clues  map[ClueKey]*Clue
	across []*Clue
	down   []*Clue
	width  int
	height int
	scale  float64
	view   Mounts
	log    logrus.FieldLogger
}

// NewGrid returns an empty grid drawing into mounts. The keyboard mount
// receives its rows immediately.
func NewGrid(mounts Mounts, log logrus.FieldLogger) *Grid {
	if log == nil {
		log = logrus.StandardLogger()
	}

	g := &Grid{
		cells: map[Coord]*Cell{},
		clues: map[ClueKey]*Clue{},
		scale: 100,
		view:  mounts.withDefaults(),
		log:   log,
	}

	g.view.Keyboard.ShowKeyboard(slices.Clone(KeyboardRows))

	return g
}

// Load replaces the grid's contents with p. On error the previous contents
// are left untouched.
func (g *Grid) Load(p Puzzle) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("load puzzle: %w", err)
	}

	cells := map[Coord]*Cell{}
	clues := map[ClueKey]*Clue{}
	lists := map[Direction][]*Clue{}
	maxCoord := 0
	width, height := 0, 0

	for _, dir := range []Direction{Across, Down} {
		entries := p.entries(dir)

		for _, name := range sortedNames(entries) {
			entry := entries[name]
			key := ClueKey{Dir: dir, Name: name}

			clue := &Clue{grid: g, key: key, hint: entry.Hint, cursor: -1}

			for _, e := range entry.Cells {
				at := e.Coord()

				cell, ok := cells[at]
				if !ok {
					cell = &Cell{grid: g, at: at, char: normalize(e.C)}
					cells[at] = cell

					maxCoord = max(maxCoord, at.X, at.Y)
					width = max(width, at.X+1)
					height = max(height, at.Y+1)
				}

				if !slices.Contains(cell.clues, key) {
					cell.clues = append(cell.clues, key)
				}

				clue.cells = append(clue.cells, at)
			}

			clues[key] = clue
			lists[dir] = append(lists[dir], clue)
		}
	}

	g.cells = cells
	g.clues = clues
	g.across = lists[Across]
	g.down = lists[Down]
	g.width = width
	g.height = height
	g.scale = 100 / float64(maxCoord+1)

	for _, cell := range g.Cells() {
		g.view.Grid.PaintCell(cell)
	}

	across, down := g.Hints()
	g.view.Across.ShowHints(across)
	g.view.Down.ShowHints(down)

	g.log.WithField("cells", len(cells)).WithField("clues", len(clues)).Debug("loaded puzzle")

	return nil
}

func (g *Grid) Cell(at Coord) (*Cell, bool) {
	cell, ok := g.cells[at]

	return cell, ok
}

func (g *Grid) Clue(key ClueKey) (*Clue, bool) {
	clue, ok := g.clues[key]

	return clue, ok
}

// Cells returns every cell in row-major order.
func (g *Grid) Cells() []*Cell {
	cells := make([]*Cell, 0, len(g.cells))
	for _, cell := range g.cells {
		cells = append(cells, cell)
	}

	slices.SortFunc(cells, func(a, b *Cell) int {
		if c := cmp.Compare(a.at.Y, b.at.Y); c != 0 {
			return c
		}

		return cmp.Compare(a.at.X, b.at.X)
	})

	return cells
}

func (g *Grid) Across() []*Clue {
	return slices.Clone(g.across)
}

func (g *Grid) Down() []*Clue {
	return slices.Clone(g.down)
}

// Hints projects the clues into sorted (name, hint) pairs.
func (g *Grid) Hints() (across, down []Hint) {
	project := func(clues []*Clue) []Hint {
		hints := make([]Hint, len(clues))
		for i, clue := range clues {
			hints[i] = Hint{Name: clue.key.Name, Text: clue.hint}
		}

		return hints
	}

	return project(g.across), project(g.down)
}

// Scale is the size of one cell as a percentage of the grid's rendering area.
func (g *Grid) Scale() float64 {
	return g.scale
}

// Size is the number of columns and rows spanned by the loaded cells.
func (g *Grid) Size() (width, height int) {
	return g.width, g.height
}

// ApplyRemoteEdit writes an edit received from another viewer. It never
// touches the local selection.
func (g *Grid) ApplyRemoteEdit(e Edit) error {
	cell, ok := g.cells[e.Coord()]
	if !ok {
		return fmt.Errorf("%w at %s", ErrUnknownCell, e.Coord())
	}

	cell.SetCharacter(e.C)

	return nil
}

func (g *Grid) ClearMarks() {
	for _, cell := range g.cells {
		cell.setMark(Unmarked)
	}
}
