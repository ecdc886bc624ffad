// package models defines the data model for the playlist sync engine
package models

// Playlist represents a music playlist from any service
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// PlaylistExport represents a playlist with all its tracks
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}

// Track represents a music track from any service.
//
// Title and Artist are kept verbatim as the source reported them;
// display and acquisition queries use the original strings, only
// identity comparison normalizes them.
type Track struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	Duration int    `json:"duration,omitempty"` // Duration in seconds
	ISRC     string `json:"isrc,omitempty"`     // International Standard Recording Code, when the source provides it
}

// HistoryRecord is one row of the download ledger: a track whose
// acquisition was confirmed successful. Records are created once and
// never updated or deleted.
type HistoryRecord struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
}

// RecordFor builds the ledger record for an acquired track.
func RecordFor(t Track) HistoryRecord {
	return HistoryRecord{Title: t.Title, Artist: t.Artist, Album: t.Album}
}

// SyncResult summarizes one sync run. It is never persisted; callers
// decide whether a failure report outlives the run.
type SyncResult struct {
	PlaylistID   string `json:"playlist_id"`
	PlaylistName string `json:"playlist_name"`
	// Total is the number of delta candidates handed to the downloader.
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	// Failed lists tracks whose acquisition failed. They stay absent
	// from history, so the next run's delta picks them up again.
	Failed []Track `json:"failed,omitempty"`
	// HistoryErrors lists tracks that were acquired but whose ledger
	// write failed. These need a human to check for duplicate files on
	// disk, not a blind retry.
	HistoryErrors []Track `json:"history_errors,omitempty"`
	// DryRun marks a run that stopped after computing the delta.
	DryRun bool `json:"dry_run,omitempty"`
	// Delta preserves the candidate list for reporting (dry runs and
	// diff output).
	Delta []Track `json:"delta,omitempty"`
}

// Ok reports whether the run completed without any per-track failures.
func (r *SyncResult) Ok() bool {
	return len(r.Failed) == 0 && len(r.HistoryErrors) == 0
}
