/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package crossword

import "fmt"

type ClueKey struct {
	Dir  Direction
	Name string
}

func (k ClueKey) String() string {
	return fmt.Sprintf("%s %s", k.Name, k.Dir)
}

// Clue is an ordered run of cells with a cursor. The cursor is -1 until the
// clue is first activated and keeps its position when the clue is deselected.
type Clue struct {
	grid   *Grid
	key    ClueKey
	hint   string
	cells  []Coord
	cursor int
}

func (cl *Clue) Key() ClueKey {
	return cl.key
}

func (cl *Clue) Name() string {
	return cl.key.Name
}

func (cl *Clue) Direction() Direction {
	return cl.key.Dir
}

func (cl *Clue) Hint() string {
	return cl.hint
}

func (cl *Clue) Len() int {
	return len(cl.cells)
}

func (cl *Clue) Cells() []*Cell {
	cells := make([]*Cell, len(cl.cells))
	for i, at := range cl.cells {
		cells[i] = cl.grid.cells[at]
	}

	return cells
}

// Cursor returns the index of the active cell, and false if the clue has
// never been activated.
func (cl *Clue) Cursor() (int, bool) {
	return cl.cursor, cl.cursor >= 0
}

// Activate moves the cursor to cell and marks the clue. A nil cell or one
// outside the clue selects the last cell.
func (cl *Clue) Activate(cell *Cell) {
	if len(cl.cells) == 0 {
		return
	}

	idx := len(cl.cells) - 1
	if cell != nil {
		for i, at := range cl.cells {
			if cl.grid.cells[at] == cell {
				idx = i

				break
			}
		}
	}

	cl.cursor = idx
	cl.Highlight()
	cl.grid.cells[cl.cells[idx]].setMark(Active)
}

func (cl *Clue) Highlight() {
	for _, at := range cl.cells {
		cl.grid.cells[at].setMark(Highlighted)
	}
}

func (cl *Clue) ActiveCell() *Cell {
	if cl.cursor < 0 || cl.cursor >= len(cl.cells) {
		return nil
	}

	return cl.grid.cells[cl.cells[cl.cursor]]
}

// StepForward advances the cursor, staying on the last cell at the end.
func (cl *Clue) StepForward() *Cell {
	return cl.step(1)
}

// StepBackward retreats the cursor, staying on the first cell at the start.
func (cl *Clue) StepBackward() *Cell {
	return cl.step(-1)
}

func (cl *Clue) step(delta int) *Cell {
	if cl.cursor < 0 || len(cl.cells) == 0 {
		return nil
	}

	cl.cursor = min(max(cl.cursor+delta, 0), len(cl.cells)-1)

	return cl.ActiveCell()
}
