/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Seednode/crosswire/crossword"
	"github.com/Seednode/crosswire/puzzles"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type catalogConfig struct {
	id      int64
	name    string
	deleted bool
	live    bool
}

func withStore(cfg *Config, fn func(*puzzles.Store) error) error {
	store, err := puzzles.Open(cfg.dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(store)
}

func printEntries(w io.Writer, entries []puzzles.Entry) {
	t := table.New().Headers("ID", "NAME", "CREATED", "DELETED")

	for _, e := range entries {
		deleted := ""
		if e.DeletedAt != nil {
			deleted = e.DeletedAt.Local().Format(logDate)
		}

		t.Row(strconv.FormatInt(e.ID, 10), e.Name, e.CreatedAt.Local().Format(logDate), deleted)
	}

	fmt.Fprintln(w, t.Render())
}

func newPuzzlesCmd(v *viper.Viper, cfg *Config) *cobra.Command {
	cc := &catalogConfig{}

	cmd := &cobra.Command{
		Use:   "puzzles",
		Short: "Manage the puzzle catalog.",
		Args:  cobra.ExactArgs(0),
	}

	add := &cobra.Command{
		Use:   "add <puzzle.json|puzzle.toml>",
		Short: "Add a puzzle definition to the catalog.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			decode := crossword.Decode
			if strings.EqualFold(filepath.Ext(args[0]), ".toml") {
				decode = crossword.DecodeTOML
			}

			p, err := decode(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			name := cc.name
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			return withStore(cfg, func(s *puzzles.Store) error {
				entry, err := s.Create(cmd.Context(), name, p)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Added puzzle %d (%s)\n", entry.ID, entry.Name)

				return nil
			})
		},
	}
	add.Flags().StringVarP(&cc.name, "name", "n", "", "catalog name, defaults to the file name (env: CROSSWIRE_NAME)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List puzzles in the catalog.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(s *puzzles.Store) error {
				var (
					entries []puzzles.Entry
					err     error
				)

				if cc.deleted {
					entries, err = s.ListDeleted(cmd.Context())
				} else {
					entries, err = s.List(cmd.Context())
				}
				if err != nil {
					return err
				}

				printEntries(cmd.OutOrStdout(), entries)

				return nil
			})
		},
	}
	list.Flags().BoolVar(&cc.deleted, "deleted", false, "list soft-deleted puzzles instead (env: CROSSWIRE_DELETED)")

	type action struct {
		use, short, verb, done string
		wantDeleted            *bool
		apply                  func(*puzzles.Store, *cobra.Command, int64) error
	}

	isLive, isDeleted := false, true

	actions := []action{
		{"remove", "Soft-delete a puzzle, hiding it from the catalog.", "soft-delete", "Soft-deleted", &isLive,
			func(s *puzzles.Store, cmd *cobra.Command, id int64) error { return s.SoftDelete(cmd.Context(), id) }},
		{"restore", "Restore a soft-deleted puzzle.", "restore", "Restored", &isDeleted,
			func(s *puzzles.Store, cmd *cobra.Command, id int64) error { return s.Restore(cmd.Context(), id) }},
		{"delete", "Permanently delete a puzzle.", "permanently delete", "Deleted", nil,
			func(s *puzzles.Store, cmd *cobra.Command, id int64) error { return s.Delete(cmd.Context(), id) }},
	}

	var subcommands []*cobra.Command

	for _, a := range actions {
		c := &cobra.Command{
			Use:   a.use,
			Short: a.short,
			Args:  cobra.ExactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				if cc.id <= 0 {
					return errors.New("--id is required")
				}

				return withStore(cfg, func(s *puzzles.Store) error {
					entry, err := s.Lookup(cmd.Context(), cc.id)
					if err != nil {
						return err
					}

					if a.wantDeleted != nil && entry.Deleted() != *a.wantDeleted {
						state := "live"
						if entry.Deleted() {
							state = "already deleted"
						}

						return fmt.Errorf("puzzle %d (%s) is %s", entry.ID, entry.Name, state)
					}

					out := cmd.OutOrStdout()

					if !cc.live {
						fmt.Fprintf(out, "Would %s puzzle %d (%s); rerun with --live to apply\n", a.verb, entry.ID, entry.Name)

						return nil
					}

					if err := a.apply(s, cmd, entry.ID); err != nil {
						return err
					}

					fmt.Fprintf(out, "%s puzzle %d (%s)\n", a.done, entry.ID, entry.Name)

					return nil
				})
			},
		}
		c.Flags().Int64Var(&cc.id, "id", 0, "puzzle id (env: CROSSWIRE_ID)")

		subcommands = append(subcommands, c)
	}

	batches := []struct {
		use, short, verb, done string
		apply                  func(*puzzles.Store, *cobra.Command) (int64, error)
	}{
		{"batch-restore", "Restore every soft-deleted puzzle.", "restore", "Restored",
			func(s *puzzles.Store, cmd *cobra.Command) (int64, error) { return s.BatchRestore(cmd.Context()) }},
		{"batch-delete", "Permanently delete every soft-deleted puzzle.", "permanently delete", "Deleted",
			func(s *puzzles.Store, cmd *cobra.Command) (int64, error) { return s.BatchDelete(cmd.Context()) }},
	}

	for _, b := range batches {
		c := &cobra.Command{
			Use:   b.use,
			Short: b.short,
			Args:  cobra.ExactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cfg, func(s *puzzles.Store) error {
					out := cmd.OutOrStdout()

					if !cc.live {
						deleted, err := s.ListDeleted(cmd.Context())
						if err != nil {
							return err
						}

						fmt.Fprintf(out, "Would %s %d puzzle(s); rerun with --live to apply\n", b.verb, len(deleted))
						printEntries(out, deleted)

						return nil
					}

					n, err := b.apply(s, cmd)
					if err != nil {
						return err
					}

					fmt.Fprintf(out, "%s %d puzzle(s)\n", b.done, n)

					return nil
				})
			},
		}

		subcommands = append(subcommands, c)
	}

	for _, c := range subcommands {
		c.Flags().BoolVar(&cc.live, "live", false, "apply the change instead of describing it (env: CROSSWIRE_LIVE)")
		bindFlags(v, c.Flags())
	}

	bindFlags(v, add.Flags())
	bindFlags(v, list.Flags())

	cmd.AddCommand(add, list)
	cmd.AddCommand(subcommands...)

	return cmd
}
