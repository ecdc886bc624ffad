// package services defines interface Source for reading track lists from
// remote playlist providers
//
// Spotify (web API), Apple Music (macOS Music app via osascript)
package services

import (
	"context"

	"github.com/plsync/plsync/internal/models"
)

// Source defines the read-only capability the sync engine needs from a
// playlist provider. Implementations resolve pagination fully before
// returning; callers always see the complete, ordered track list.
type Source interface {
	// Authenticate prepares the source for use (API tokens, local app
	// availability). Returns an error if the source cannot be reached.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// ExportPlaylist fetches a playlist and its full track listing.
	// ref is provider-specific: a Spotify URL/URI/ID, or a Music app
	// playlist name. Fails with shared.ErrPlaylistNotFound when the
	// referenced playlist does not exist and shared.ErrServiceUnavailable
	// on transport or auth errors.
	ExportPlaylist(ctx context.Context, ref string) (*models.PlaylistExport, error)

	// Name returns the provider name (e.g., "Spotify", "Apple Music")
	Name() string
}
