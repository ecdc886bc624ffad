package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/plsync/plsync/internal/formatter"
	"github.com/plsync/plsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncRun performs one reconcile-and-download cycle for a playlist.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	playlistRef := cmd.String("playlist")
	dryRun := cmd.Bool("dry-run")

	source, err := r.resolveSource(cmd.String("source"))
	if err != nil {
		return err
	}
	store, closeStore, err := r.resolveStore(cmd.String("backend"))
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	if err := source.Authenticate(ctx, map[string]string{
		"client_id":     r.config.Credentials.Spotify.ClientID,
		"client_secret": r.config.Credentials.Spotify.ClientSecret,
	}); err != nil {
		return fmt.Errorf("failed to authenticate with %s: %w", source.Name(), err)
	}

	opts := tasks.RunOpts{
		PlaylistRef: playlistRef,
		DestDir:     r.config.Downloads.Dir,
		Workers:     r.config.Downloads.Workers,
		RateLimit:   r.config.Downloads.RateLimit,
		DryRun:      dryRun,
	}
	if dir := cmd.String("output-dir"); dir != "" {
		opts.DestDir = dir
	}
	if workers := cmd.Int("workers"); workers > 0 {
		opts.Workers = int(workers)
	}

	r.logger.Info("starting sync", "playlist", playlistRef, "source", source.Name(), "dry_run", dryRun)

	engine := tasks.NewEngine(source, store, r.resolveAcquirer(), r.logger)

	progressCh := make(chan tasks.ProgressUpdate, 64)
	var progressDone sync.WaitGroup
	progressDone.Add(1)
	go func() {
		defer progressDone.Done()
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchSource, tasks.Reconcile:
				r.writePlain("→ %s\n", update.Message)
			case tasks.Acquire:
				r.writePlain("  %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, progressCh, opts)
	close(progressCh)
	progressDone.Wait()

	if err != nil {
		return err
	}

	r.writePlain("\n%s", formatter.SyncSummary(result))

	if !result.Ok() {
		return fmt.Errorf("%d of %d tracks failed", len(result.Failed)+len(result.HistoryErrors), result.Total)
	}
	return nil
}

// SyncDiff reports which remote tracks are missing from the library
// without downloading anything.
func (r *Runner) SyncDiff(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	source, err := r.resolveSource(cmd.String("source"))
	if err != nil {
		return err
	}
	store, closeStore, err := r.resolveStore(cmd.String("backend"))
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	if err := source.Authenticate(ctx, map[string]string{
		"client_id":     r.config.Credentials.Spotify.ClientID,
		"client_secret": r.config.Credentials.Spotify.ClientSecret,
	}); err != nil {
		return fmt.Errorf("failed to authenticate with %s: %w", source.Name(), err)
	}

	engine := tasks.NewEngine(source, store, r.resolveAcquirer(), r.logger)
	result, err := engine.Run(ctx, nil, tasks.RunOpts{
		PlaylistRef: cmd.String("playlist"),
		DryRun:      true,
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Delta, true)
	}

	if cmd.Bool("markdown") {
		return r.writePlain("%s", formatter.DeltaToMarkdown(result.PlaylistName, result.Delta))
	}

	if out := cmd.String("output"); out != "" {
		if err := formatter.WriteDeltaCSV(result.Delta, out); err != nil {
			return err
		}
		r.logger.Info("delta written", "path", out, "tracks", len(result.Delta))
		return nil
	}

	r.writePlain("%s", formatter.SyncSummary(result))
	return nil
}
