/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package navigation turns key presses and clicks into cursor movement and
// outbound edits.
package navigation

import (
	"github.com/Seednode/crosswire/crossword"
	"github.com/sirupsen/logrus"
)

// Key names follow the browser's KeyboardEvent.key values.
const (
	KeyBackspace  = "Backspace"
	KeyArrowRight = "ArrowRight"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowUp    = "ArrowUp"
)

// Publisher receives every edit made by the local user.
type Publisher interface {
	Publish(crossword.Edit)
}

type nopPublisher struct{}

func (nopPublisher) Publish(crossword.Edit) {}

type Controller struct {
	grid   *crossword.Grid
	out    Publisher
	log    logrus.FieldLogger
	active *crossword.Clue
}

func New(grid *crossword.Grid, out Publisher, log logrus.FieldLogger) *Controller {
	if out == nil {
		out = nopPublisher{}
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Controller{grid: grid, out: out, log: log}
}

// Active returns the selected clue and its cursor cell, or nils when
// nothing is selected.
func (c *Controller) Active() (*crossword.Clue, *crossword.Cell) {
	if c.active == nil {
		return nil, nil
	}

	return c.active, c.active.ActiveCell()
}

// Reset drops the selection. Call it whenever the grid is reloaded.
func (c *Controller) Reset() {
	c.active = nil
}

func (c *Controller) HandleKey(key string) {
	clue := c.active
	if clue == nil {
		return
	}

	cell := clue.ActiveCell()
	if cell == nil {
		return
	}

	clue.Highlight()

	switch key {
	case KeyBackspace:
		cell.SetCharacter(crossword.Blank)
		c.out.Publish(cell.Serialize())
		clue.Activate(clue.StepBackward())
	case KeyArrowRight, KeyArrowDown:
		clue.Activate(clue.StepForward())
	case KeyArrowLeft, KeyArrowUp:
		clue.Activate(clue.StepBackward())
	default:
		if !isLetter(key) {
			clue.Activate(cell)

			return
		}

		cell.SetCharacter(key)
		c.out.Publish(cell.Serialize())
		clue.Activate(clue.StepForward())
	}
}

// Click selects the next clue through the cell at, with the cursor on that
// cell. Repeated clicks on a shared cell alternate between its clues.
func (c *Controller) Click(at crossword.Coord) {
	cell, ok := c.grid.Cell(at)
	if !ok {
		c.log.WithField("x", at.X).WithField("y", at.Y).Warn("click outside the grid")

		return
	}

	clue := cell.NextClue()
	if clue == nil {
		return
	}

	c.grid.ClearMarks()
	clue.Activate(cell)
	c.active = clue

	c.log.WithField("clue", clue.Key().String()).Debug("selected clue")
}

func isLetter(key string) bool {
	if len(key) != 1 {
		return false
	}

	ch := key[0]

	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}
