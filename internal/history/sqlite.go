package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/plsync/plsync/internal/models"
	"github.com/plsync/plsync/internal/shared"
)

// SQLiteStore keeps every playlist's ledger in one database. The
// normalized key is stored alongside the verbatim fields and a UNIQUE
// index on (playlist_id, key) makes repeated appends for the same track
// no-ops.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *log.Logger
}

// NewSQLiteStore creates the ledger table and index if absent and
// returns the store.
func NewSQLiteStore(db *sql.DB, logger *log.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	qs := [...]string{
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY,
			playlist_id TEXT NOT NULL,
			key TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			album TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_history_identity ON history (playlist_id, key)`,
	}

	for _, q := range qs {
		if _, err := db.Exec(q); err != nil {
			return nil, fmt.Errorf("failed to create history schema: %w", err)
		}
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Load reads the stored normalized keys for a playlist. Query failures
// (including a database created with a different schema) degrade to an
// empty set with a warning.
func (s *SQLiteStore) Load(ctx context.Context, playlistID string) map[string]struct{} {
	keys := map[string]struct{}{}

	rows, err := s.db.QueryContext(ctx, `SELECT key FROM history WHERE playlist_id = ?`, playlistID)
	if err != nil {
		s.logger.Warn("history query failed, treating as empty", "playlist", playlistID, "err", err)
		return keys
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			s.logger.Warn("history row unreadable, keeping rows read so far", "playlist", playlistID, "err", err)
			return keys
		}
		keys[key] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("history iteration failed, keeping rows read so far", "playlist", playlistID, "err", err)
	}

	return keys
}

// Append inserts one record. INSERT OR IGNORE keeps the operation
// idempotent for a track already present under the same identity.
func (s *SQLiteStore) Append(ctx context.Context, playlistID string, rec models.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := shared.NormalizeTrackKey(rec.Title, rec.Artist)

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO history (playlist_id, key, title, artist, album) VALUES (?, ?, ?, ?, ?)`,
		playlistID, key, rec.Title, rec.Artist, rec.Album,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrHistoryWrite, err)
	}

	return nil
}

// Records returns the verbatim ledger rows for a playlist in insertion
// order. Used by reporting, not by the sync path.
func (s *SQLiteStore) Records(ctx context.Context, playlistID string) ([]models.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, artist, album FROM history WHERE playlist_id = ? ORDER BY id ASC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var recs []models.HistoryRecord
	for rows.Next() {
		var r models.HistoryRecord
		if err := rows.Scan(&r.Title, &r.Artist, &r.Album); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return recs, nil
}
