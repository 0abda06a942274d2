//go:build linux

package notify

import (
	"strings"

	"github.com/llehouerou/wavedeck/internal/mpris"
	"github.com/llehouerou/wavedeck/internal/playlist"
)

// Icon returns the notification icon for a track: artwork next to a local
// sample, or a generic icon name.
func Icon(t playlist.Track) string {
	if t.Source != "" && !strings.Contains(t.Source, "://") {
		if path := mpris.FindAlbumArt(t.Source); path != "" {
			return path
		}
	}
	return fallbackIcon
}
