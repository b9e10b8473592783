/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Seednode/crosswire/live"
	"github.com/Seednode/crosswire/tui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type playConfig struct {
	url        string
	maxBackoff time.Duration
	retries    int
	logFile    string
}

func (c *playConfig) validate() error {
	if c.url == "" {
		return errors.New("--url is required")
	}
	if c.maxBackoff < time.Second {
		return fmt.Errorf("invalid max backoff (must be at least 1s): %s", c.maxBackoff)
	}
	if c.retries < 0 {
		return fmt.Errorf("invalid retries (must not be negative): %d", c.retries)
	}
	return nil
}

// logger writes to the log file if one was given. The terminal belongs to
// the UI, so nothing is logged otherwise.
func (c *playConfig) logger(verbose bool) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: logDate})

	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if c.logFile == "" {
		logger.SetOutput(io.Discard)

		return logger, func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger.SetOutput(f)

	return logger, func() { f.Close() }, nil
}

func newPlayCmd(v *viper.Viper, cfg *Config) *cobra.Command {
	pc := &playConfig{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Solve a shared puzzle in the terminal.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pc.validate(); err != nil {
				return err
			}

			logger, closeLog, err := pc.logger(cfg.verbose)
			if err != nil {
				return err
			}
			defer closeLog()

			return tui.Run(cmd.Context(), pc.url, live.Options{
				MaxBackoff:  pc.maxBackoff,
				MaxAttempts: pc.retries,
				Logger:      logger,
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&pc.url, "url", "u", "", "puzzle page to join, e.g. http://localhost:8080/puzzle/1 (env: CROSSWIRE_URL)")
	fs.DurationVar(&pc.maxBackoff, "max-backoff", 30*time.Second, "longest wait between reconnection attempts (env: CROSSWIRE_MAX_BACKOFF)")
	fs.IntVar(&pc.retries, "retries", 0, "consecutive failed reconnections before giving up, 0 for unlimited (env: CROSSWIRE_RETRIES)")
	fs.StringVar(&pc.logFile, "log-file", "", "append client logs to this file (env: CROSSWIRE_LOG_FILE)")

	bindFlags(v, fs)

	return cmd
}
