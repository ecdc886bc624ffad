// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func sourceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "source",
		Aliases: []string{"s"},
		Usage:   "Playlist source (spotify or applemusic)",
		Value:   "spotify",
	}
}

func backendFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "backend",
		Usage: "History backend (csv or sqlite); defaults to config value",
	}
}

// syncCommand handles reconcile-and-download operations
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile a remote playlist against the local library",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Download every remote track not yet in the library",
				Flags: []cli.Flag{
					configFlag(),
					sourceFlag(),
					backendFlag(),
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist URL, URI, ID, or Music app name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "Download directory (overrides config)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent downloads (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Stop after reconciliation, only report new tracks",
					},
				},
				Action: r.SyncRun,
			},
			{
				Name:  "diff",
				Usage: "Show which remote tracks are missing locally",
				Flags: []cli.Flag{
					configFlag(),
					sourceFlag(),
					backendFlag(),
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist URL, URI, ID, or Music app name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the delta as CSV to this path",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "markdown",
						Usage: "Output a Markdown track list",
					},
				},
				Action: r.SyncDiff,
			},
		},
	}
}

// historyCommand inspects the download ledger
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect the download history ledger",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print every recorded track for a playlist",
				Flags: []cli.Flag{
					configFlag(),
					backendFlag(),
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist URL, URI, ID, or Music app name",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
		},
	}
}

// setupCommand handles setup operations for config and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the SQLite history database",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}
