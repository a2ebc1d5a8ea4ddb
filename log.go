package main

import (
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/spelldrill/ui"
)

// setupLog routes logging to a file when SPELLDRILL_LOGFILE is set, and
// silences it otherwise so log lines never bleed into the TUI.
func setupLog() (func() error, error) {
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if cfg.Logfile == "" {
		log.SetOutput(io.Discard)
		log.SetLevel(log.FatalLevel)
		return func() error { return nil }, nil
	}
	f, err := os.OpenFile(cfg.Logfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	log.SetOutput(f)
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	return f.Close, nil
}
