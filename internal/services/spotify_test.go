package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/plsync/plsync/internal/shared"
)

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{
			name: "bare ID",
			ref:  "37i9dQZF1DXcBWIGoYBM5M",
			want: "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name: "share URL",
			ref:  "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123",
			want: "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name: "URI",
			ref:  "spotify:playlist:37i9dQZF1DXcBWIGoYBM5M",
			want: "37i9dQZF1DXcBWIGoYBM5M",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPlaylistID(tt.ref); got != tt.want {
				t.Errorf("ExtractPlaylistID(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestNewSpotifyService(t *testing.T) {
	t.Run("With Valid Credentials", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if srv.Name() != "Spotify" {
			t.Errorf("expected service name 'Spotify', got %s", srv.Name())
		}
	})

	t.Run("Missing Client ID", func(t *testing.T) {
		_, err := NewSpotifyService(map[string]string{"client_secret": "s"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Missing Client Secret", func(t *testing.T) {
		_, err := NewSpotifyService(map[string]string{"client_id": "c"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

// newTestSpotify returns a service authenticated with a static token and
// pointed at the given test server.
func newTestSpotify(t *testing.T, serverURL string) *SpotifyService {
	t.Helper()
	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "id",
		"client_secret": "secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	if err := srv.Authenticate(context.Background(), map[string]string{"access_token": "token"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	srv.SetBaseURL(serverURL)
	return srv
}

func TestSpotifyExportPlaylist(t *testing.T) {
	t.Run("paginates and joins artists", func(t *testing.T) {
		var pages int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/playlists/pl1":
				fmt.Fprint(w, `{"id":"pl1","name":"Test","tracks":{"total":3}}`)
			case "/playlists/pl1/tracks":
				pages++
				if r.URL.Query().Get("offset") == "0" {
					fmt.Fprint(w, `{"items":[
						{"track":{"id":"t1","name":"Song One","artists":[{"name":"A"},{"name":"B"}],"album":{"name":"Alb"},"duration_ms":200000}},
						{"track":null},
						{"track":{"id":"t2","name":"Song Two","artists":[{"name":"C"}],"album":{"name":"Alb"},"duration_ms":180000}}
					],"next":"more"}`)
				} else {
					fmt.Fprint(w, `{"items":[
						{"track":{"id":"t3","name":"Song Three","artists":[{"name":"D"}],"album":{"name":"Alb2"},"duration_ms":90000}}
					],"next":null}`)
				}
			default:
				http.NotFound(w, r)
			}
		}))
		defer server.Close()

		srv := newTestSpotify(t, server.URL)
		export, err := srv.ExportPlaylist(context.Background(), "pl1")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}

		if pages != 2 {
			t.Errorf("expected 2 track pages fetched, got %d", pages)
		}
		if len(export.Tracks) != 3 {
			t.Fatalf("expected 3 tracks (null entry skipped), got %d", len(export.Tracks))
		}
		if export.Tracks[0].Artist != "A; B" {
			t.Errorf("expected joined artists 'A; B', got %q", export.Tracks[0].Artist)
		}
		if export.Tracks[0].Duration != 200 {
			t.Errorf("expected duration 200s, got %d", export.Tracks[0].Duration)
		}
		if export.Tracks[2].Title != "Song Three" {
			t.Errorf("expected playlist order preserved, got %q last", export.Tracks[2].Title)
		}
	})

	t.Run("missing playlist maps to ErrPlaylistNotFound", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		srv := newTestSpotify(t, server.URL)
		_, err := srv.ExportPlaylist(context.Background(), "missing")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("server error maps to ErrServiceUnavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		srv := newTestSpotify(t, server.URL)
		_, err := srv.ExportPlaylist(context.Background(), "pl1")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "id",
			"client_secret": "secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		if _, err := srv.ExportPlaylist(context.Background(), "pl1"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable before Authenticate, got %v", err)
		}
	})
}
