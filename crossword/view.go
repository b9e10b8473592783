/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package crossword

// KeyboardRows is the on-screen keyboard layout handed to the keyboard mount.
var KeyboardRows = []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}

type Mark int

const (
	Unmarked Mark = iota
	Highlighted
	Active
)

func (m Mark) String() string {
	switch m {
	case Highlighted:
		return "highlighted"
	case Active:
		return "active"
	default:
		return "unmarked"
	}
}

// Hint is the (name, text) pair shown in a hint list.
type Hint struct {
	Name string
	Text string
}

// Painter renders a cell whenever its character or mark changes.
type Painter interface {
	PaintCell(*Cell)
}

type HintList interface {
	ShowHints([]Hint)
}

type Keyboard interface {
	ShowKeyboard(rows []string)
}

// Mounts are the four rendering collaborators a Grid draws into. Nil
// members are ignored.
type Mounts struct {
	Grid     Painter
	Across   HintList
	Down     HintList
	Keyboard Keyboard
}

type discard struct{}

func (discard) PaintCell(*Cell) {}
func (discard) ShowHints([]Hint) {}
func (discard) ShowKeyboard([]string) {}

func (m Mounts) withDefaults() Mounts {
	if m.Grid == nil {
		m.Grid = discard{}
	}

	if m.Across == nil {
		m.Across = discard{}
	}

	if m.Down == nil {
		m.Down = discard{}
	}

	if m.Keyboard == nil {
		m.Keyboard = discard{}
	}

	return m
}
