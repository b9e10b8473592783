/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Seednode/crosswire/live"
	tea "github.com/charmbracelet/bubbletea"
)

// Run plays the puzzle at page in the terminal until the user quits, ctx is
// done, or the live channel gives up.
func Run(ctx context.Context, page string, opts live.Options) error {
	endpoints, err := live.ParseEndpoints(page)
	if err != nil {
		return err
	}

	b := &board{}

	var program *tea.Program

	ch := live.NewChannel(endpoints, func(ev live.Event) { program.Send(ev) }, opts)
	session := live.NewSession(b.mounts(), ch, opts.Logger)

	program = tea.NewProgram(newModel(session, b, endpoints.Page),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		err := ch.Run(runCtx)
		program.Send(channelDone{err: err})
	}()

	final, err := program.Run()

	ch.Close()
	cancel()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	if err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}

	if m, ok := final.(Model); ok && m.Err() != nil {
		return m.Err()
	}

	return nil
}
