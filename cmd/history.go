package main

import (
	"context"
	"fmt"

	"github.com/plsync/plsync/internal/formatter"
	"github.com/plsync/plsync/internal/history"
	"github.com/plsync/plsync/internal/services"
	"github.com/urfave/cli/v3"
)

// HistoryList prints the download ledger for a playlist.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	playlistID := services.ExtractPlaylistID(cmd.String("playlist"))

	store, closeStore, err := r.resolveStore(cmd.String("backend"))
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	lister, ok := store.(history.RecordLister)
	if !ok {
		return fmt.Errorf("history backend cannot enumerate records")
	}

	recs, err := lister.Records(ctx, playlistID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(recs, true)
	}

	r.writePlain("%s", formatter.RecordsToText(playlistID, recs))
	return nil
}
