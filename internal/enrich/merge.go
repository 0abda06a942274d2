package enrich

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/llehouerou/wavedeck/internal/playlist"
)

// Entry is one authoritative tracklist entry. Entries are positional: there
// is no identifier shared with catalog tracks.
type Entry struct {
	Title  string
	Artist string
	Length time.Duration
}

var placeholderTitle = regexp.MustCompile(`(?i)^(?:(?:track|title|untitled|unknown|audio)\s*(?:no\.?|#)?\s*\d*|\d+)$`)

// IsPlaceholder reports whether the title of t is a default the catalog
// filled in rather than a real name.
func IsPlaceholder(t playlist.Track) bool {
	title := strings.TrimSpace(t.Title)
	if title == "" || placeholderTitle.MatchString(title) {
		return true
	}
	if t.Source == "" {
		return false
	}
	base := sourceBase(t.Source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.EqualFold(title, base) || strings.EqualFold(title, stem)
}

func sourceBase(source string) string {
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		source = source[:i]
	}
	return path.Base(filepath.ToSlash(source))
}

// NeedsEnrichment reports whether any track still carries a placeholder title.
func NeedsEnrichment(tracks []playlist.Track) bool {
	return lo.SomeBy(tracks, IsPlaceholder)
}

// Merge fills the gaps of existing from authoritative, by position.
//
// The result always has len(existing) entries: surplus authoritative
// entries are ignored and missing ones leave the track as is. Per field, a
// real existing value wins over the authoritative one; identity, locator and
// catalog fields (Key, Source, Link, ArtworkURL, Album, Collection,
// ReleaseID) are never replaced.
func Merge(existing []playlist.Track, authoritative []Entry) []playlist.Track {
	merged := make([]playlist.Track, len(existing))
	copy(merged, existing)

	for i := range merged {
		if i >= len(authoritative) {
			break
		}
		a := authoritative[i]
		t := &merged[i]
		if IsPlaceholder(*t) && strings.TrimSpace(a.Title) != "" {
			t.Title = strings.TrimSpace(a.Title)
		}
		if strings.TrimSpace(t.Artist) == "" && a.Artist != "" {
			t.Artist = a.Artist
		}
		if strings.TrimSpace(t.Duration) == "" && a.Length > 0 {
			t.Duration = FormatLength(a.Length)
		}
	}
	return merged
}

// FormatLength renders d as m:ss, or h:mm:ss past the hour.
func FormatLength(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
