package player

import (
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// readTags reads embedded tags from r and rewinds it.
// A missing or unreadable tag block yields info built from the source name.
func readTags(r io.ReadSeeker, source string) *TrackInfo {
	info := &TrackInfo{Source: source, Title: baseName(source)}

	if m, err := tag.ReadFrom(r); err == nil {
		if m.Title() != "" {
			info.Title = m.Title()
		}
		info.Artist = m.Artist()
		info.Album = m.Album()
	}

	_, _ = r.Seek(0, io.SeekStart)
	return info
}

func baseName(source string) string {
	name := source
	if isRemote(source) {
		name = path.Base(strings.SplitN(source, "?", 2)[0])
	} else {
		name = filepath.Base(source)
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// skipID3v2 skips an ID3v2 tag prepended to a FLAC stream.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && n < len(header) {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}
	if string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// Syncsafe integer: 7 bits per byte.
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
