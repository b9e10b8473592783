/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package live

import "github.com/Seednode/crosswire/crossword"

// Event is anything a Session reacts to.
type Event interface {
	event()
}

type KeyPressed struct {
	Key string
}

type CellClicked struct {
	At crossword.Coord
}

// EditReceived carries an edit made by another viewer.
type EditReceived struct {
	Edit crossword.Edit
}

type PuzzleLoaded struct {
	Puzzle crossword.Puzzle
}

type LoadFailed struct {
	Err error
}

type StateChanged struct {
	State State
	Err   error
}

func (KeyPressed) event() {}
func (CellClicked) event() {}
func (EditReceived) event() {}
func (PuzzleLoaded) event() {}
func (LoadFailed) event() {}
func (StateChanged) event() {}
