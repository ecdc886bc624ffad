package main

import (
	"context"
	"os"

	"github.com/plsync/plsync/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:    "plsync",
		Usage:   "Keep a local music library in sync with remote playlists",
		Version: "0.3.0",
		Commands: []*cli.Command{
			syncCommand(runner),
			historyCommand(runner),
			setupCommand(runner),
		},
	}

	// Ctrl-C stops new downloads from being submitted; in-flight tracks
	// finish and commit before the process exits.
	ctx, stop := signalContext(context.Background())
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
