//go:build !linux

package notify

import "github.com/llehouerou/wavedeck/internal/playlist"

// Icon returns a generic icon name on non-Linux platforms.
func Icon(_ playlist.Track) string {
	return fallbackIcon
}
