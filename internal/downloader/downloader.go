// package downloader defines interface Acquirer for turning a (title,
// artist) pair into a local audio file
//
// The only production implementation shells out to yt-dlp.
package downloader

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/plsync/plsync/internal/shared"
)

// DefaultTrackTimeout bounds a single acquisition attempt. yt-dlp has
// its own network timeouts but can still stall on a bad extraction, so
// every call is wrapped in an explicit deadline.
const DefaultTrackTimeout = 10 * time.Minute

// Acquirer fetches one track into destDir. A nil return means a playable
// file exists; any error is the diagnostic for the failure. Calls must be
// safe to repeat for the same track (overwrite or no-op, callers do not
// care which).
type Acquirer interface {
	Acquire(ctx context.Context, title, artist, destDir string) error
}

// YTDLP implements [Acquirer] by searching YouTube through the yt-dlp
// command line tool and extracting audio as m4a.
type YTDLP struct {
	// Binary is the yt-dlp executable name or path.
	Binary string
	// Timeout per acquisition; DefaultTrackTimeout when zero.
	Timeout time.Duration

	// runCommand is swapped by tests.
	runCommand func(ctx context.Context, name string, args ...string) error
}

// NewYTDLP creates a yt-dlp backed acquirer.
func NewYTDLP(timeout time.Duration) *YTDLP {
	if timeout <= 0 {
		timeout = DefaultTrackTimeout
	}
	return &YTDLP{Binary: "yt-dlp", Timeout: timeout, runCommand: runCmd}
}

func runCmd(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return err
		}
		// Keep one line of tool output as the diagnostic.
		if i := strings.IndexByte(msg, '\n'); i > 0 {
			msg = msg[:i]
		}
		return fmt.Errorf("%v: %s", err, msg)
	}
	return nil
}

// buildArgs constructs the yt-dlp invocation for a search query and
// output template.
func buildArgs(query, outputTemplate string) []string {
	return []string{
		"-x",
		"--audio-format", "m4a",
		"--audio-quality", "0",
		"--quiet",
		"-o", outputTemplate,
		"ytsearch1:" + query,
	}
}

// Acquire downloads the first YouTube search hit for "<artist> - <title>"
// into destDir as <sanitized title>.m4a. The destination directory is
// created if absent.
func (y *YTDLP) Acquire(ctx context.Context, title, artist, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAcquireFailed, err)
	}

	query := fmt.Sprintf("%s - %s", artist, title)
	outputTemplate := filepath.Join(destDir, shared.SanitizeFilename(title)+".%(ext)s")

	ctx, cancel := context.WithTimeout(ctx, y.Timeout)
	defer cancel()

	if err := y.runCommand(ctx, y.Binary, buildArgs(query, outputTemplate)...); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: timed out after %s", shared.ErrAcquireFailed, y.Timeout)
		}
		return fmt.Errorf("%w: %v", shared.ErrAcquireFailed, err)
	}

	return nil
}
