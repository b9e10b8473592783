/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package crossword

// Cell is one square of the grid. A cell shared by an across and a down clue
// is a single Cell referenced by both.
type Cell struct {
	grid  *Grid
	at    Coord
	char  string
	mark  Mark
	clues []ClueKey
	next  int
}

func (c *Cell) Coord() Coord {
	return c.at
}

func (c *Cell) Character() string {
	return c.char
}

func (c *Cell) Mark() Mark {
	return c.mark
}

// Clues lists the clues this cell belongs to, in discovery order.
func (c *Cell) Clues() []ClueKey {
	return append([]ClueKey(nil), c.clues...)
}

// SetCharacter replaces the cell's content. Whitespace clears it.
func (c *Cell) SetCharacter(ch string) {
	c.char = normalize(ch)
	c.grid.view.Grid.PaintCell(c)
}

// Serialize produces the edit that would reproduce this cell's content.
func (c *Cell) Serialize() Edit {
	return Edit{X: c.at.X, Y: c.at.Y, C: c.char}
}

// NextClue yields the cell's clues round-robin, wrapping after the last. It
// returns nil for a cell that belongs to no clue.
func (c *Cell) NextClue() *Clue {
	if len(c.clues) == 0 {
		c.grid.log.WithField("x", c.at.X).WithField("y", c.at.Y).
			Warn("cell belongs to no clue")

		return nil
	}

	key := c.clues[c.next%len(c.clues)]
	c.next = (c.next + 1) % len(c.clues)

	return c.grid.clues[key]
}

func (c *Cell) setMark(m Mark) {
	if c.mark == m {
		return
	}

	c.mark = m
	c.grid.view.Grid.PaintCell(c)
}
