// Apple Music implementation of [Source]
//
// Queries the macOS Music app over AppleScript (osascript), so it only
// works on darwin. Playlists are referenced by their display name.
package services

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/plsync/plsync/internal/models"
	"github.com/plsync/plsync/internal/shared"
)

const (
	// Separators chosen to be implausible in track metadata; the script
	// concatenates name/artist pairs into one string we split here.
	appleItemSep  = "|||ITEM|||"
	appleFieldSep = "|||FIELD|||"

	appleNotFoundMarker = "__PLAYLIST_NOT_FOUND__"
)

const applePlaylistScript = `
tell application "Music"
  if not (exists playlist "%[1]s") then
    return "%[2]s"
  end if
  set outStr to ""
  set pl to playlist "%[1]s"
  repeat with tr in (tracks of pl)
    try
      set tname to name of tr
    on error
      set tname to ""
    end try
    try
      set art to artist of tr
    on error
      set art to ""
    end try
    set outStr to outStr & tname & "%[3]s" & art & "%[4]s"
  end repeat
  return outStr
end tell
`

// scriptRunner abstracts osascript execution so tests can script output.
type scriptRunner func(ctx context.Context, script string) (string, error)

func runOsascript(ctx context.Context, script string) (string, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("osascript: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

// AppleMusicService implements [Source] for the local macOS Music app.
type AppleMusicService struct {
	run scriptRunner
}

// NewAppleMusicService creates a new Music app source.
func NewAppleMusicService() *AppleMusicService {
	return &AppleMusicService{run: runOsascript}
}

// Name returns the service name.
func (a *AppleMusicService) Name() string {
	return "Apple Music"
}

// Authenticate verifies osascript is available. The Music app needs no
// credentials.
func (a *AppleMusicService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if _, err := exec.LookPath("osascript"); err != nil {
		return fmt.Errorf("%w: osascript not found (Music app queries need macOS)", shared.ErrServiceUnavailable)
	}
	return nil
}

// ExportPlaylist reads the named playlist from the Music app, in
// playlist order.
func (a *AppleMusicService) ExportPlaylist(ctx context.Context, ref string) (*models.PlaylistExport, error) {
	name := sanitizeScriptLiteral(ref)
	script := fmt.Sprintf(applePlaylistScript, name, appleNotFoundMarker, appleFieldSep, appleItemSep)

	out, err := a.run(ctx, script)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	if strings.Contains(out, appleNotFoundMarker) {
		return nil, fmt.Errorf("%w: no Music app playlist named %q", shared.ErrPlaylistNotFound, ref)
	}

	export := &models.PlaylistExport{
		Playlist: models.Playlist{ID: ref, Name: ref},
	}

	for _, item := range strings.Split(out, appleItemSep) {
		if item == "" || !strings.Contains(item, appleFieldSep) {
			continue
		}
		title, artist, _ := strings.Cut(item, appleFieldSep)
		export.Tracks = append(export.Tracks, models.Track{
			Title:  strings.TrimSpace(title),
			Artist: strings.TrimSpace(strings.TrimSuffix(artist, "\n")),
		})
	}
	export.Playlist.TrackCount = len(export.Tracks)

	return export, nil
}

// sanitizeScriptLiteral strips characters that would break out of the
// quoted AppleScript string literal.
func sanitizeScriptLiteral(s string) string {
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "\\", "")
	return s
}
