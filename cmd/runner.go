package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/plsync/plsync/internal/downloader"
	"github.com/plsync/plsync/internal/history"
	"github.com/plsync/plsync/internal/services"
	"github.com/plsync/plsync/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer

	// Test seams: when set, these override the collaborators built from
	// config.
	source   services.Source
	store    history.Store
	acquirer downloader.Acquirer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Logger   *log.Logger
	Output   io.Writer
	Source   services.Source
	Store    history.Store
	Acquirer downloader.Acquirer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:   opts.Config,
		logger:   opts.Logger,
		output:   opts.Output,
		source:   opts.Source,
		store:    opts.Store,
		acquirer: opts.Acquirer,
	}
}

// reloadConfig swaps in the config file named by the flag, keeping the
// current config when the file is absent.
func (r *Runner) reloadConfig(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, keeping current settings", "path", path, "err", err)
		return
	}
	r.config = config
}

// resolveSource builds the playlist source named by the flag.
func (r *Runner) resolveSource(name string) (services.Source, error) {
	if r.source != nil {
		return r.source, nil
	}

	switch name {
	case "spotify":
		return services.NewSpotifyService(map[string]string{
			"client_id":     r.config.Credentials.Spotify.ClientID,
			"client_secret": r.config.Credentials.Spotify.ClientSecret,
		})
	case "applemusic", "apple":
		return services.NewAppleMusicService(), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q (want spotify or applemusic)", shared.ErrInvalidFlag, name)
	}
}

// resolveStore builds the history ledger for the configured backend.
// The returned closer is non-nil for backends holding resources.
func (r *Runner) resolveStore(backend string) (history.Store, func() error, error) {
	if r.store != nil {
		return r.store, nil, nil
	}

	if backend == "" {
		backend = r.config.History.Backend
	}

	switch backend {
	case "", "csv":
		return history.NewCSVStore(r.config.History.Dir, r.logger), nil, nil
	case "sqlite":
		db, err := shared.NewDatabase(r.config.History.Path)
		if err != nil {
			return nil, nil, err
		}
		shared.ConfigureDatabase(db, r.config.History.MaxOpenConns, r.config.History.MaxIdleConns)
		store, err := history.NewSQLiteStore(db, r.logger)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown history backend %q (want csv or sqlite)", shared.ErrInvalidFlag, backend)
	}
}

// resolveAcquirer builds the downloader with the configured per-track
// timeout.
func (r *Runner) resolveAcquirer() downloader.Acquirer {
	if r.acquirer != nil {
		return r.acquirer
	}
	timeout := downloader.DefaultTrackTimeout
	if r.config.Downloads.TrackTimeoutSec > 0 {
		timeout = secToDuration(r.config.Downloads.TrackTimeoutSec)
	}
	return downloader.NewYTDLP(timeout)
}

func secToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
