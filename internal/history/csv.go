package history

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/plsync/plsync/internal/models"
	"github.com/plsync/plsync/internal/shared"
)

// csvHeader is the ledger schema marker: always the first row of a file.
var csvHeader = []string{"artist", "title", "album"}

// CSVStore keeps one <playlist-id>.csv ledger per playlist under Dir.
//
// Each playlist's file is an independently lockable unit, so appends for
// different playlists never contend.
type CSVStore struct {
	dir    string
	logger *log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCSVStore creates a CSV backed ledger rooted at dir.
func NewCSVStore(dir string, logger *log.Logger) *CSVStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CSVStore{
		dir:    dir,
		logger: logger,
		locks:  map[string]*sync.Mutex{},
	}
}

// lockFor returns the mutex guarding a single playlist's file.
func (s *CSVStore) lockFor(playlistID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[playlistID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[playlistID] = l
	}
	return l
}

func (s *CSVStore) path(playlistID string) string {
	return filepath.Join(s.dir, shared.SanitizeFilename(playlistID)+".csv")
}

// Load reads the playlist's ledger into a set of normalized keys.
// A missing file, an unexpected header, or unreadable rows degrade to an
// empty (or partial) set with a warning; they never fail the run.
func (s *CSVStore) Load(ctx context.Context, playlistID string) map[string]struct{} {
	keys := map[string]struct{}{}

	f, err := os.Open(s.path(playlistID))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("history ledger unreadable, treating as empty", "playlist", playlistID, "err", err)
		}
		return keys
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err != io.EOF {
			s.logger.Warn("history ledger corrupt, treating as empty", "playlist", playlistID, "err", err)
		}
		return keys
	}

	artistCol, titleCol := -1, -1
	for i, col := range header {
		switch col {
		case "artist":
			artistCol = i
		case "title":
			titleCol = i
		}
	}
	if artistCol < 0 || titleCol < 0 {
		s.logger.Warn("history ledger has unexpected schema, treating as empty", "playlist", playlistID, "header", header)
		return keys
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.logger.Warn("history ledger partially corrupt, keeping rows read so far", "playlist", playlistID, "err", err)
			break
		}
		if len(row) <= artistCol || len(row) <= titleCol {
			continue
		}
		keys[shared.NormalizeTrackKey(row[titleCol], row[artistCol])] = struct{}{}
	}

	return keys
}

// Records returns the verbatim ledger rows for a playlist in file order.
// Used by reporting, not by the sync path.
func (s *CSVStore) Records(ctx context.Context, playlistID string) ([]models.HistoryRecord, error) {
	f, err := os.Open(s.path(playlistID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read history ledger: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	recs := make([]models.HistoryRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := models.HistoryRecord{}
		if len(row) > 0 {
			rec.Artist = row[0]
		}
		if len(row) > 1 {
			rec.Title = row[1]
		}
		if len(row) > 2 {
			rec.Album = row[2]
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Append writes one record, creating the ledger with its header on first
// use. The per-playlist lock is held across open, write, and sync so
// concurrent workers cannot interleave rows.
func (s *CSVStore) Append(ctx context.Context, playlistID string, rec models.HistoryRecord) error {
	l := s.lockFor(playlistID)
	l.Lock()
	defer l.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrHistoryWrite, err)
	}

	path := s.path(playlistID)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrHistoryWrite, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrHistoryWrite, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrHistoryWrite, err)
		}
	}
	if err := w.Write([]string{rec.Artist, rec.Title, rec.Album}); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrHistoryWrite, err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrHistoryWrite, err)
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrHistoryWrite, err)
	}

	return nil
}
