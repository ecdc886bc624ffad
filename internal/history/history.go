// package history implements the durable ledger of successfully
// acquired tracks.
//
// One logical ledger exists per playlist. Records are append-only: the
// set of keys for a playlist only ever grows, and a record is written
// exclusively after a confirmed successful acquisition. Two backends
// exist, a per-playlist CSV file tree and a single SQLite database.
package history

import (
	"context"

	"github.com/plsync/plsync/internal/models"
)

// Store is the ledger contract consumed by the sync engine.
//
// Load returns the set of normalized track keys already acquired for a
// playlist. A missing or malformed ledger yields an empty set, never an
// error that would block a run; the cost of a lost ledger is a redundant
// re-download, not a lost track.
//
// Append records exactly one acquisition. It is safe to call from
// concurrent workers; appends for different tracks must both be durably
// visible once both calls return. First use creates the backing storage
// together with its header or schema.
type Store interface {
	Load(ctx context.Context, playlistID string) map[string]struct{}
	Append(ctx context.Context, playlistID string, rec models.HistoryRecord) error
}

// RecordLister is implemented by stores that can enumerate verbatim
// ledger rows for reporting. Both backends implement it; the sync engine
// itself never needs it.
type RecordLister interface {
	Records(ctx context.Context, playlistID string) ([]models.HistoryRecord, error)
}
