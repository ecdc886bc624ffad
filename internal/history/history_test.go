package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/plsync/plsync/internal/models"
	"github.com/plsync/plsync/internal/shared"
)

// storeFactory builds a fresh, empty store for a subtest.
type storeFactory func(t *testing.T) Store

func newCSV(t *testing.T) Store {
	t.Helper()
	return NewCSVStore(t.TempDir(), nil)
}

func newSQLite(t *testing.T) Store {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	// One connection: in-memory sqlite databases are per-connection.
	shared.ConfigureDatabase(db, 1, 1)

	store, err := NewSQLiteStore(db, nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"csv":    newCSV,
		"sqlite": newSQLite,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			if keys := store.Load(ctx, "pl1"); len(keys) != 0 {
				t.Fatalf("expected empty bootstrap ledger, got %d keys", len(keys))
			}

			recs := []models.HistoryRecord{
				{Title: "Song One", Artist: "Artist A", Album: "Alb"},
				{Title: "Song Two", Artist: "Artist B; Artist C"},
			}
			for _, rec := range recs {
				if err := store.Append(ctx, "pl1", rec); err != nil {
					t.Fatalf("append failed: %v", err)
				}
			}

			keys := store.Load(ctx, "pl1")
			if len(keys) != 2 {
				t.Fatalf("expected 2 keys, got %d", len(keys))
			}
			if _, ok := keys[shared.NormalizeTrackKey("Song One", "Artist A")]; !ok {
				t.Error("expected Song One key present")
			}
			// Featured artist dropped from identity.
			if _, ok := keys[shared.NormalizeTrackKey("song two", "artist b")]; !ok {
				t.Error("expected normalized Song Two key present")
			}
		})
	}
}

func TestStorePlaylistScoping(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			rec := models.HistoryRecord{Title: "Shared Song", Artist: "Artist"}
			if err := store.Append(ctx, "pl1", rec); err != nil {
				t.Fatalf("append failed: %v", err)
			}

			if keys := store.Load(ctx, "pl1"); len(keys) != 1 {
				t.Errorf("expected 1 key for pl1, got %d", len(keys))
			}
			// The same track is still new for an unrelated playlist.
			if keys := store.Load(ctx, "pl2"); len(keys) != 0 {
				t.Errorf("expected empty ledger for pl2, got %d keys", len(keys))
			}
		})
	}
}

func TestStoreConcurrentAppends(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			const n = 20
			var wg sync.WaitGroup
			errs := make(chan error, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					rec := models.HistoryRecord{
						Title:  fmt.Sprintf("Track %02d", i),
						Artist: "Artist",
					}
					errs <- store.Append(ctx, "pl1", rec)
				}(i)
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				if err != nil {
					t.Fatalf("concurrent append failed: %v", err)
				}
			}

			keys := store.Load(ctx, "pl1")
			if len(keys) != n {
				t.Errorf("expected %d distinct keys with no lost writes, got %d", n, len(keys))
			}
		})
	}
}

func TestStoreRecords(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			lister, ok := store.(RecordLister)
			if !ok {
				t.Fatal("store should implement RecordLister")
			}

			if recs, err := lister.Records(ctx, "pl1"); err != nil || len(recs) != 0 {
				t.Fatalf("expected no records for fresh ledger, got %d (%v)", len(recs), err)
			}

			want := models.HistoryRecord{Title: "T", Artist: "A", Album: "Alb"}
			if err := store.Append(ctx, "pl1", want); err != nil {
				t.Fatalf("append failed: %v", err)
			}

			recs, err := lister.Records(ctx, "pl1")
			if err != nil {
				t.Fatalf("records failed: %v", err)
			}
			if len(recs) != 1 || recs[0] != want {
				t.Errorf("expected [%+v], got %+v", want, recs)
			}
		})
	}
}

func TestCSVStoreCorruptLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong header treated as empty", func(t *testing.T) {
		dir := t.TempDir()
		store := NewCSVStore(dir, nil)

		path := filepath.Join(dir, "pl1.csv")
		if err := os.WriteFile(path, []byte("foo,bar\nx,y\n"), 0644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		if keys := store.Load(ctx, "pl1"); len(keys) != 0 {
			t.Errorf("expected empty set for unexpected schema, got %d", len(keys))
		}
	})

	t.Run("garbage content treated as empty", func(t *testing.T) {
		dir := t.TempDir()
		store := NewCSVStore(dir, nil)

		path := filepath.Join(dir, "pl1.csv")
		if err := os.WriteFile(path, []byte("\"unterminated\n"), 0644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		if keys := store.Load(ctx, "pl1"); len(keys) != 0 {
			t.Errorf("expected empty set for corrupt ledger, got %d", len(keys))
		}
	})

	t.Run("append still works after corrupt load", func(t *testing.T) {
		dir := t.TempDir()
		store := NewCSVStore(dir, nil)

		path := filepath.Join(dir, "pl1.csv")
		if err := os.WriteFile(path, []byte("foo,bar\n"), 0644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		_ = store.Load(ctx, "pl1")
		if err := store.Append(ctx, "pl1", models.HistoryRecord{Title: "T", Artist: "A"}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	})
}

func TestCSVStoreHeaderWrittenOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewCSVStore(dir, nil)

	for i := 0; i < 3; i++ {
		rec := models.HistoryRecord{Title: fmt.Sprintf("T%d", i), Artist: "A"}
		if err := store.Append(ctx, "list", rec); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	content, err := os.ReadFile(filepath.Join(dir, "list.csv"))
	if err != nil {
		t.Fatalf("failed to read ledger: %v", err)
	}

	got := string(content)
	want := "artist,title,album\nA,T0,\nA,T1,\nA,T2,\n"
	if got != want {
		t.Errorf("unexpected ledger contents:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestSQLiteStoreIdempotentAppend(t *testing.T) {
	ctx := context.Background()
	store := newSQLite(t)

	rec := models.HistoryRecord{Title: "Song", Artist: "Artist"}
	if err := store.Append(ctx, "pl1", rec); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	// Same identity, different casing: ignored rather than duplicated.
	if err := store.Append(ctx, "pl1", models.HistoryRecord{Title: " song ", Artist: "ARTIST"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if keys := store.Load(ctx, "pl1"); len(keys) != 1 {
		t.Errorf("expected 1 key after duplicate append, got %d", len(keys))
	}
}
