package shared

import "strings"

// artistDelimiter separates multiple credited artists in source metadata.
// Only the first artist participates in track identity; featured artists
// do not create distinct tracks.
const artistDelimiter = ";"

// FirstArtist returns the primary artist from a possibly delimited artist
// field, trimmed of surrounding whitespace.
func FirstArtist(artist string) string {
	first, _, _ := strings.Cut(artist, artistDelimiter)
	return strings.TrimSpace(first)
}

// NormalizeTrackKey derives the comparison identity for a track: the
// lowercased, trimmed title joined with the lowercased primary artist.
//
// The key is deliberately lossy. Casing and whitespace differences
// collapse to one identity, which at worst re-marks a near-duplicate as
// already seen; it never hides a genuinely new track.
func NormalizeTrackKey(title, artist string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	a := strings.ToLower(FirstArtist(artist))
	return t + "|" + a
}

var filenameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "",
	"?", "",
	`"`, "'",
	"<", "",
	">", "",
	"|", "-",
)

// SanitizeFilename strips or replaces characters that are invalid in
// filenames on common filesystems.
func SanitizeFilename(name string) string {
	return filenameReplacer.Replace(name)
}
