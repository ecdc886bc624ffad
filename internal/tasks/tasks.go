// package tasks implements the playlist reconciliation and acquisition
// engine.
//
// The core abstraction is SyncEngine, which drives one end-to-end run:
// fetch the remote track list, diff it against the download history,
// acquire the missing tracks through a bounded worker pool, and commit
// each success to history as it lands. Operations emit progress updates
// via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/plsync/plsync/internal/downloader"
	"github.com/plsync/plsync/internal/history"
	"github.com/plsync/plsync/internal/models"
	"github.com/plsync/plsync/internal/services"
	"github.com/plsync/plsync/internal/shared"
)

// RunOpts configures one sync run.
type RunOpts struct {
	// PlaylistRef is the source-specific playlist reference (URL, URI,
	// ID, or Music app name).
	PlaylistRef string
	// DestDir receives downloaded audio files.
	DestDir string
	// Workers caps concurrent acquisitions (default 4, max 10).
	Workers int
	// RateLimit is acquisition submissions per second (default 5).
	RateLimit float64
	// DryRun stops after reconciliation and only reports the delta.
	DryRun bool
}

// SyncEngine defines the reconcile-and-acquire operations.
type SyncEngine interface {
	// Run performs one full fetch → diff → acquire → report cycle.
	Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOpts) (*models.SyncResult, error)
}

// Engine implements SyncEngine over a playlist source, a history ledger,
// and an acquirer.
type Engine struct {
	source   services.Source
	store    history.Store
	acquirer downloader.Acquirer
	logger   *log.Logger
}

// NewEngine creates an Engine with the provided collaborators.
func NewEngine(source services.Source, store history.Store, acquirer downloader.Acquirer, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		source:   source,
		store:    store,
		acquirer: acquirer,
		logger:   logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls the run.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Diff computes which remote tracks are not yet in the known key set.
//
// Order follows the remote list. Tracks keep their original title and
// artist strings; normalization is comparison-only. Tracks with an empty
// title are dropped, and repeats of the same identity within one fetch
// are collapsed to the first occurrence so two workers never race on the
// same track.
func Diff(remote []models.Track, known map[string]struct{}) []models.Track {
	var delta []models.Track
	seen := map[string]struct{}{}

	for _, tr := range remote {
		if tr.Title == "" {
			continue
		}

		key := shared.NormalizeTrackKey(tr.Title, tr.Artist)
		if _, ok := known[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		delta = append(delta, tr)
	}

	return delta
}

// Run performs one end-to-end sync.
//
// Only the fetch stage is fatal: a source error aborts the run before
// any state is touched. Everything after reconciliation is per-track;
// failures are collected in the result, never returned as an error.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOpts) (*models.SyncResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: playlist source not initialized", shared.ErrServiceUnavailable)
	}
	if e.store == nil || e.acquirer == nil {
		return nil, fmt.Errorf("%w: history store or acquirer not initialized", shared.ErrServiceUnavailable)
	}

	runLog := shared.WithLogger(e.logger, "run", shared.GenerateID(), "source", e.source.Name())

	e.sendProgress(progress, fetchingSourceUpdate(e.source.Name()))

	export, err := e.source.ExportPlaylist(ctx, opts.PlaylistRef)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist %q: %w", opts.PlaylistRef, err)
	}
	e.sendProgress(progress, foundPlaylistUpdate(export))

	playlistID := export.Playlist.ID
	if playlistID == "" {
		playlistID = opts.PlaylistRef
	}

	known := e.store.Load(ctx, playlistID)
	delta := Diff(export.Tracks, known)
	e.sendProgress(progress, reconcileUpdate(len(known), len(export.Tracks), len(delta)))

	result := &models.SyncResult{
		PlaylistID:   playlistID,
		PlaylistName: export.Playlist.Name,
		Total:        len(delta),
		Delta:        delta,
	}

	if len(delta) == 0 {
		runLog.Info("nothing to do, playlist fully acquired", "playlist", export.Playlist.Name)
		e.sendProgress(progress, reportUpdate(result))
		return result, nil
	}

	if opts.DryRun {
		result.DryRun = true
		runLog.Info("dry run, stopping after reconciliation", "playlist", export.Playlist.Name, "new", len(delta))
		e.sendProgress(progress, reportUpdate(result))
		return result, nil
	}

	e.acquireAll(ctx, progress, runLog, playlistID, delta, result, opts)

	e.sendProgress(progress, reportUpdate(result))
	return result, nil
}
