// package formatter renders sync results, deltas, and ledger contents
// for terminal output and file export (plain text, Markdown, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/plsync/plsync/internal/models"
)

const headerBar = "══════════════════════════════════════════════════"

// SyncSummary renders the end-of-run report: counts plus the named
// failed tracks so an operator can see exactly what to retry.
func SyncSummary(result *models.SyncResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(headerBar + "\n")
	if result.DryRun {
		fmt.Fprintf(&buf, "Dry run: %s\n", result.PlaylistName)
	} else {
		fmt.Fprintf(&buf, "Sync complete: %s\n", result.PlaylistName)
	}
	buf.WriteString(headerBar + "\n")

	if result.Total == 0 {
		buf.WriteString("Nothing to do, every track is already in the library.\n")
		return buf.Bytes()
	}

	if result.DryRun {
		fmt.Fprintf(&buf, "New tracks: %d\n\n", result.Total)
		for i, tr := range result.Delta {
			fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, tr.Artist, tr.Title)
		}
		return buf.Bytes()
	}

	fmt.Fprintf(&buf, "Successful: %d/%d\n", result.Succeeded, result.Total)
	fmt.Fprintf(&buf, "Failed: %d/%d\n", len(result.Failed), result.Total)

	if len(result.Failed) > 0 {
		buf.WriteString("\nFailed tracks (will be retried next run):\n")
		for _, tr := range result.Failed {
			fmt.Fprintf(&buf, "  ✗ %s - %s\n", tr.Artist, tr.Title)
		}
	}

	if len(result.HistoryErrors) > 0 {
		buf.WriteString("\nDownloaded but NOT recorded in history (check for duplicate files):\n")
		for _, tr := range result.HistoryErrors {
			fmt.Fprintf(&buf, "  ! %s - %s\n", tr.Artist, tr.Title)
		}
	}

	return buf.Bytes()
}

// DeltaToCSV converts a delta to CSV with columns: artist, title, album.
// The layout matches the history ledger so the output can seed one.
func DeltaToCSV(delta []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"artist", "title", "album"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, tr := range delta {
		if err := writer.Write([]string{tr.Artist, tr.Title, tr.Album}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteDeltaCSV writes the delta CSV to a file.
func WriteDeltaCSV(delta []models.Track, path string) error {
	data, err := DeltaToCSV(delta)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write delta file: %w", err)
	}
	return nil
}

// DeltaToMarkdown renders the delta as a Markdown track list.
func DeltaToMarkdown(playlistName string, delta []models.Track) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", playlistName)
	fmt.Fprintf(&buf, "**New tracks**: %d\n\n", len(delta))

	for i, tr := range delta {
		albumPart := ""
		if tr.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", tr.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s\n", i+1, tr.Artist, tr.Title, albumPart)
	}

	return buf.Bytes()
}

// RecordsToText renders ledger rows for the terminal.
func RecordsToText(playlistID string, recs []models.HistoryRecord) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "History for %s (%d tracks)\n", playlistID, len(recs))
	for i, rec := range recs {
		albumPart := ""
		if rec.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", rec.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s\n", i+1, rec.Artist, rec.Title, albumPart)
	}

	return buf.Bytes()
}
