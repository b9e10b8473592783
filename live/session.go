/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package live

import (
	"context"
	"fmt"

	"github.com/Seednode/crosswire/crossword"
	"github.com/Seednode/crosswire/navigation"
	"github.com/sirupsen/logrus"
)

const queueSize = 64

// Session is one viewer's copy of a puzzle. Handle must only be called from
// a single goroutine; the grid and controller are not safe for concurrent
// use.
type Session struct {
	grid   *crossword.Grid
	nav    *navigation.Controller
	log    logrus.FieldLogger
	events chan Event

	state   State
	lastErr error
}

func NewSession(mounts crossword.Mounts, out navigation.Publisher, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}

	grid := crossword.NewGrid(mounts, log)

	return &Session{
		grid:   grid,
		nav:    navigation.New(grid, out, log),
		log:    log,
		events: make(chan Event, queueSize),
	}
}

func (s *Session) Grid() *crossword.Grid {
	return s.grid
}

func (s *Session) Controller() *navigation.Controller {
	return s.nav
}

func (s *Session) State() State {
	return s.state
}

// Err is the most recent load or connection error, cleared by a successful
// load.
func (s *Session) Err() error {
	return s.lastErr
}

// Deliver queues an event for Run. It is safe to call from any goroutine.
func (s *Session) Deliver(ev Event) {
	s.events <- ev
}

// Run handles queued events until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			s.Handle(ev)
		}
	}
}

// Handle applies a single event. Failures are logged and never escape.
func (s *Session) Handle(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("event", fmt.Sprintf("%T", ev)).Errorf("recovered from panic: %v", r)
		}
	}()

	switch ev := ev.(type) {
	case KeyPressed:
		s.nav.HandleKey(ev.Key)
	case CellClicked:
		s.nav.Click(ev.At)
	case EditReceived:
		if err := s.grid.ApplyRemoteEdit(ev.Edit); err != nil {
			s.log.WithError(err).Warn("dropping remote edit")
		}
	case PuzzleLoaded:
		s.nav.Reset()

		if err := s.grid.Load(ev.Puzzle); err != nil {
			s.lastErr = err
			s.log.WithError(err).Error("failed to load puzzle")

			return
		}

		s.lastErr = nil
	case LoadFailed:
		s.lastErr = ev.Err
		s.log.WithError(ev.Err).Error("failed to load puzzle")
	case StateChanged:
		s.state = ev.State
		if ev.Err != nil {
			s.lastErr = ev.Err
		}
	}
}

// Connect builds a Session fed by a Channel to the puzzle page at page.
// Start both with Run.
func Connect(page string, mounts crossword.Mounts, opts Options) (*Session, *Channel, error) {
	endpoints, err := ParseEndpoints(page)
	if err != nil {
		return nil, nil, err
	}

	var s *Session

	ch := NewChannel(endpoints, func(ev Event) { s.Deliver(ev) }, opts)
	s = NewSession(mounts, ch, ch.opts.Logger)

	return s, ch, nil
}
