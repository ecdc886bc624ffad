package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/plsync/plsync/internal/shared"
)

func TestYTDLPAcquire(t *testing.T) {
	t.Run("builds search query and output template", func(t *testing.T) {
		var gotName string
		var gotArgs []string

		y := NewYTDLP(time.Minute)
		y.runCommand = func(ctx context.Context, name string, args ...string) error {
			gotName = name
			gotArgs = args
			return nil
		}

		dir := t.TempDir()
		if err := y.Acquire(context.Background(), "My Song?", "Some Artist", dir); err != nil {
			t.Fatalf("acquire failed: %v", err)
		}

		if gotName != "yt-dlp" {
			t.Errorf("expected yt-dlp binary, got %s", gotName)
		}

		joined := strings.Join(gotArgs, " ")
		if !strings.Contains(joined, "ytsearch1:Some Artist - My Song?") {
			t.Errorf("expected search query in args, got %q", joined)
		}
		// Filename is sanitized even though the query is not.
		want := filepath.Join(dir, "My Song.%(ext)s")
		if !strings.Contains(joined, want) {
			t.Errorf("expected output template %q in args, got %q", want, joined)
		}
		if !strings.Contains(joined, "--audio-format m4a") {
			t.Errorf("expected m4a extraction, got %q", joined)
		}
	})

	t.Run("creates destination directory", func(t *testing.T) {
		y := NewYTDLP(time.Minute)
		y.runCommand = func(ctx context.Context, name string, args ...string) error { return nil }

		dir := filepath.Join(t.TempDir(), "nested", "out")
		if err := y.Acquire(context.Background(), "T", "A", dir); err != nil {
			t.Fatalf("acquire failed: %v", err)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("destination directory should exist: %v", err)
		}
	})

	t.Run("command failure maps to ErrAcquireFailed", func(t *testing.T) {
		y := NewYTDLP(time.Minute)
		y.runCommand = func(ctx context.Context, name string, args ...string) error {
			return errors.New("exit status 1: ERROR: no video results")
		}

		err := y.Acquire(context.Background(), "T", "A", t.TempDir())
		if !errors.Is(err, shared.ErrAcquireFailed) {
			t.Fatalf("expected ErrAcquireFailed, got %v", err)
		}
		if !strings.Contains(err.Error(), "no video results") {
			t.Errorf("diagnostic should be preserved, got %q", err.Error())
		}
	})

	t.Run("hung command is killed at the deadline", func(t *testing.T) {
		y := NewYTDLP(20 * time.Millisecond)
		y.runCommand = func(ctx context.Context, name string, args ...string) error {
			<-ctx.Done()
			return ctx.Err()
		}

		start := time.Now()
		err := y.Acquire(context.Background(), "T", "A", t.TempDir())
		if !errors.Is(err, shared.ErrAcquireFailed) {
			t.Fatalf("expected ErrAcquireFailed, got %v", err)
		}
		if !strings.Contains(err.Error(), "timed out") {
			t.Errorf("expected timeout diagnostic, got %q", err.Error())
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("acquire did not respect deadline, took %s", elapsed)
		}
	})

	t.Run("zero timeout falls back to default", func(t *testing.T) {
		y := NewYTDLP(0)
		if y.Timeout != DefaultTrackTimeout {
			t.Errorf("expected default timeout, got %s", y.Timeout)
		}
	})
}
