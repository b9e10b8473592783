/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package crossword

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// Blank is the character of a cell with nothing written in it.
const Blank = ""

type Direction int

const (
	Across Direction = iota
	Down
)

func (d Direction) String() string {
	switch d {
	case Across:
		return "across"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

type Coord struct {
	X int
	Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Edit is a single-character change to one cell. It is the unit of both the
// puzzle definition's cell list and the live channel's frames.
type Edit struct {
	X int    `json:"x" toml:"x"`
	Y int    `json:"y" toml:"y"`
	C string `json:"c" toml:"c"`
}

func (e Edit) Coord() Coord {
	return Coord{X: e.X, Y: e.Y}
}

// Entry is one clue of a puzzle definition.
type Entry struct {
	Hint  string `json:"hint" toml:"hint"`
	Cells []Edit `json:"cells" toml:"cells"`
}

// Puzzle is the definition served by the data endpoint.
type Puzzle struct {
	Across map[string]Entry `json:"across" toml:"across"`
	Down   map[string]Entry `json:"down" toml:"down"`
}

func (p Puzzle) entries(d Direction) map[string]Entry {
	if d == Down {
		return p.Down
	}

	return p.Across
}

// Validate rejects definitions that cannot be laid out on a grid.
func (p Puzzle) Validate() error {
	for _, d := range []Direction{Across, Down} {
		for name, entry := range p.entries(d) {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("%w: %s clue with empty name", ErrInvalidPuzzle, d)
			}

			for _, cell := range entry.Cells {
				if cell.X < 0 || cell.Y < 0 {
					return fmt.Errorf("%w: clue %s %s has negative coordinate %s",
						ErrInvalidPuzzle, name, d, cell.Coord())
				}
			}
		}
	}

	return nil
}

// Apply writes an edit into every clue cell at its coordinate and reports
// whether any cell matched.
func (p Puzzle) Apply(e Edit) bool {
	c := normalize(e.C)
	matched := false

	for _, d := range []Direction{Across, Down} {
		for _, entry := range p.entries(d) {
			for i := range entry.Cells {
				if entry.Cells[i].X == e.X && entry.Cells[i].Y == e.Y {
					entry.Cells[i].C = c
					matched = true
				}
			}
		}
	}

	return matched
}

// Clone returns a deep copy that shares no cell slices with p.
func (p Puzzle) Clone() Puzzle {
	clone := func(src map[string]Entry) map[string]Entry {
		if src == nil {
			return nil
		}

		dst := make(map[string]Entry, len(src))
		for name, entry := range src {
			entry.Cells = append([]Edit(nil), entry.Cells...)
			dst[name] = entry
		}

		return dst
	}

	return Puzzle{Across: clone(p.Across), Down: clone(p.Down)}
}

// Decode reads and validates a puzzle definition.
func Decode(r io.Reader) (Puzzle, error) {
	var p Puzzle

	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Puzzle{}, fmt.Errorf("%w: %w", ErrInvalidPuzzle, err)
	}

	if err := p.Validate(); err != nil {
		return Puzzle{}, err
	}

	return p, nil
}

// DecodeTOML reads and validates a hand-written puzzle definition, with one
// [across.<name>] or [down.<name>] table per clue. Unknown keys are rejected.
func DecodeTOML(r io.Reader) (Puzzle, error) {
	var p Puzzle

	md, err := toml.NewDecoder(r).Decode(&p)
	if err != nil {
		return Puzzle{}, fmt.Errorf("%w: %w", ErrInvalidPuzzle, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Puzzle{}, fmt.Errorf("%w: unknown key %q", ErrInvalidPuzzle, undecoded[0].String())
	}

	if err := p.Validate(); err != nil {
		return Puzzle{}, err
	}

	return p, nil
}

func line(length int, start Coord, d Direction) []Edit {
	cells := make([]Edit, length)

	for i := range cells {
		cells[i] = Edit{X: start.X, Y: start.Y}
		if d == Across {
			cells[i].X += i
		} else {
			cells[i].Y += i
		}
	}

	return cells
}

// Demo returns the puzzle seeded into an empty catalog.
func Demo() Puzzle {
	return Puzzle{
		Across: map[string]Entry{
			"1A": {Hint: "For all the money that e'er I had", Cells: line(8, Coord{0, 0}, Across)},
			"3A": {Hint: "I spent it in good company", Cells: line(8, Coord{0, 4}, Across)},
		},
		Down: map[string]Entry{
			"1D": {Hint: "And for all the harm that ever I've done", Cells: line(8, Coord{0, 0}, Down)},
			"2D": {Hint: "I've done to none but me.", Cells: line(8, Coord{4, 0}, Down)},
		},
	}
}

func normalize(c string) string {
	if strings.TrimSpace(c) == "" {
		return Blank
	}

	return c
}

// IsBlank reports whether c leaves a cell empty.
func IsBlank(c string) bool {
	return normalize(c) == Blank
}
