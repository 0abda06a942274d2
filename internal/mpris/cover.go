//go:build linux

package mpris

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// coverNames lists common artwork filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"front.jpg", "front.png", "front.jpeg",
	"artwork.jpg", "artwork.png",
}

// FindAlbumArt looks for artwork next to a local sample file. Names are
// matched case-insensitively. Returns "" when there is none.
func FindAlbumArt(samplePath string) string {
	if samplePath == "" {
		return ""
	}
	dir := filepath.Dir(samplePath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	best, bestRank := "", len(coverNames)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		rank := slices.Index(coverNames, strings.ToLower(e.Name()))
		if rank >= 0 && rank < bestRank {
			best, bestRank = e.Name(), rank
		}
	}
	if best == "" {
		return ""
	}
	return filepath.Join(dir, best)
}
