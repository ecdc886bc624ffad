package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/plsync/plsync/internal/shared"
)

func scriptedRunner(output string, err error) scriptRunner {
	return func(ctx context.Context, script string) (string, error) {
		return output, err
	}
}

func TestAppleMusicExportPlaylist(t *testing.T) {
	t.Run("parses item and field separators", func(t *testing.T) {
		out := "Song One|||FIELD|||Artist A|||ITEM|||Song Two|||FIELD|||Artist B; Artist C|||ITEM|||"
		svc := &AppleMusicService{run: scriptedRunner(out, nil)}

		export, err := svc.ExportPlaylist(context.Background(), "My Playlist")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}

		if export.Playlist.Name != "My Playlist" {
			t.Errorf("expected playlist name preserved, got %q", export.Playlist.Name)
		}
		if len(export.Tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(export.Tracks))
		}
		if export.Tracks[0].Title != "Song One" || export.Tracks[0].Artist != "Artist A" {
			t.Errorf("unexpected first track: %+v", export.Tracks[0])
		}
		if export.Tracks[1].Artist != "Artist B; Artist C" {
			t.Errorf("artist field should be kept verbatim, got %q", export.Tracks[1].Artist)
		}
	})

	t.Run("empty playlist", func(t *testing.T) {
		svc := &AppleMusicService{run: scriptedRunner("", nil)}

		export, err := svc.ExportPlaylist(context.Background(), "Empty")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if len(export.Tracks) != 0 {
			t.Errorf("expected no tracks, got %d", len(export.Tracks))
		}
	})

	t.Run("not found marker", func(t *testing.T) {
		svc := &AppleMusicService{run: scriptedRunner("__PLAYLIST_NOT_FOUND__\n", nil)}

		_, err := svc.ExportPlaylist(context.Background(), "Nope")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("osascript failure", func(t *testing.T) {
		svc := &AppleMusicService{run: scriptedRunner("", errors.New("osascript: execution error"))}

		_, err := svc.ExportPlaylist(context.Background(), "Any")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("playlist name cannot escape the script literal", func(t *testing.T) {
		var captured string
		svc := &AppleMusicService{run: func(ctx context.Context, script string) (string, error) {
			captured = script
			return "", nil
		}}

		if _, err := svc.ExportPlaylist(context.Background(), `My "Quoted" Playlist`); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if strings.Contains(captured, `"Quoted"`) {
			t.Error("quotes should be stripped from the playlist name")
		}
	})
}
