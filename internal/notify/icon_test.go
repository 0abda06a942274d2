//go:build linux

package notify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/llehouerou/wavedeck/internal/playlist"
)

func TestIcon(t *testing.T) {
	dir := t.TempDir()
	samplePath := filepath.Join(dir, "01-intro.mp3")
	track := playlist.NewTrack(samplePath, "Intro")

	if got := Icon(track); got != fallbackIcon {
		t.Errorf("Icon() = %q, want %q", got, fallbackIcon)
	}

	coverPath := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(coverPath, []byte{0xFF, 0xD8, 0xFF}, 0o600); err != nil {
		t.Fatal(err)
	}
	if got := Icon(track); got != coverPath {
		t.Errorf("Icon() = %q, want %q", got, coverPath)
	}
}

func TestIcon_RemoteSource(t *testing.T) {
	track := playlist.NewTrack("https://cdn.example.com/a.mp3", "Remote")
	if got := Icon(track); got != fallbackIcon {
		t.Errorf("Icon() = %q, want %q", got, fallbackIcon)
	}
}
