//go:build linux

package mpris

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("fake"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestFindAlbumArt(t *testing.T) {
	dir := t.TempDir()
	coverPath := filepath.Join(dir, "cover.jpg")
	writeFile(t, coverPath)

	got := FindAlbumArt(filepath.Join(dir, "sample.mp3"))
	if got != coverPath {
		t.Errorf("FindAlbumArt() = %q, want %q", got, coverPath)
	}
}

func TestFindAlbumArt_NotFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"))

	if got := FindAlbumArt(filepath.Join(dir, "sample.mp3")); got != "" {
		t.Errorf("FindAlbumArt() = %q, want empty string", got)
	}
	if got := FindAlbumArt(""); got != "" {
		t.Errorf("FindAlbumArt(\"\") = %q, want empty string", got)
	}
}

func TestFindAlbumArt_Priority(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "folder.jpg"))
	coverPath := filepath.Join(dir, "cover.jpg")
	writeFile(t, coverPath)

	got := FindAlbumArt(filepath.Join(dir, "sample.mp3"))
	if got != coverPath {
		t.Errorf("FindAlbumArt() = %q, want %q (higher priority)", got, coverPath)
	}
}

func TestFindAlbumArt_CaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	frontPath := filepath.Join(dir, "Front.PNG")
	writeFile(t, frontPath)

	got := FindAlbumArt(filepath.Join(dir, "sample.mp3"))
	if got != frontPath {
		t.Errorf("FindAlbumArt() = %q, want %q", got, frontPath)
	}
}
