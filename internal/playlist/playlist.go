package playlist

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// Track represents a single catalog entry that can be queued for playback.
//
// Tracks are values: two tracks are the same entry when their keys match,
// regardless of where the value lives.
type Track struct {
	Key        string // stable identity derived from Source ("" if not addressable)
	Source     string // playable locator: file path or http(s) URL
	Title      string
	Artist     string
	Duration   string // display string, e.g. "3:42"
	Album      string // album or collection label
	Collection string // product / collection name
	ArtworkURL string
	Link       string // deep-link back to the catalog page
	ReleaseID  string // external release identifier, used for enrichment
}

// NewTrack builds a track and derives its key from source.
func NewTrack(source, title string) Track {
	return Track{
		Key:    KeyFor(source),
		Source: source,
		Title:  title,
	}
}

// Addressable reports whether the track can be found again by key.
func (t Track) Addressable() bool {
	return t.Key != ""
}

// WithKey returns a copy of t whose key is derived from its source.
func (t Track) WithKey() Track {
	t.Key = KeyFor(t.Source)
	return t
}

// SameDisplay reports whether the display fields of a and b are equal.
func SameDisplay(a, b Track) bool {
	return a.Title == b.Title &&
		a.Artist == b.Artist &&
		a.Duration == b.Duration &&
		a.Album == b.Album &&
		a.Collection == b.Collection &&
		a.ArtworkURL == b.ArtworkURL &&
		a.Link == b.Link
}

// KeyFor derives the stable key of a source locator.
// URLs lose their fragment and get a lowercased scheme and host,
// file paths are cleaned. An empty source has no key.
func KeyFor(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}

	if u, err := url.Parse(source); err == nil && u.Scheme != "" && u.Host != "" {
		u.Scheme = strings.ToLower(u.Scheme)
		u.Host = strings.ToLower(u.Host)
		u.Fragment = ""
		u.RawFragment = ""
		return u.String()
	}

	return filepath.Clean(source)
}

// Keys returns the keys of the addressable tracks, in order.
func Keys(tracks []Track) []string {
	return lo.FilterMap(tracks, func(t Track, _ int) (string, bool) {
		return t.Key, t.Addressable()
	})
}

// IndexByKey maps every addressable track key to its replacement value.
func IndexByKey(tracks []Track) map[string]Track {
	m := make(map[string]Track, len(tracks))
	for _, t := range tracks {
		if t.Addressable() {
			m[t.Key] = t
		}
	}
	return m
}

// patchDisplay copies display fields from src into dst, keeping dst's
// identity and playable source untouched.
func patchDisplay(dst *Track, src Track) bool {
	if SameDisplay(*dst, src) {
		return false
	}
	dst.Title = src.Title
	dst.Artist = src.Artist
	dst.Duration = src.Duration
	dst.Album = src.Album
	dst.Collection = src.Collection
	dst.ArtworkURL = src.ArtworkURL
	dst.Link = src.Link
	return true
}

// PatchOne applies the display fields of the matching entry in byKey to t.
// It reports whether t changed.
func PatchOne(t *Track, byKey map[string]Track) bool {
	if t == nil || !t.Addressable() {
		return false
	}
	src, ok := byKey[t.Key]
	if !ok {
		return false
	}
	return patchDisplay(t, src)
}

// patchAll patches every entry of tracks in place and returns how many changed.
func patchAll(tracks []Track, byKey map[string]Track) int {
	changed := 0
	for i := range tracks {
		if PatchOne(&tracks[i], byKey) {
			changed++
		}
	}
	return changed
}

func cloneTracks(tracks []Track) []Track {
	result := make([]Track, len(tracks))
	copy(result, tracks)
	return result
}
