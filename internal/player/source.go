package player

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for sources no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrSampleTooLarge is returned when a remote sample exceeds the size limit.
var ErrSampleTooLarge = errors.New("sample too large")

// memFile is an in-memory sample body.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

var contentTypeExt = map[string]string{
	"audio/mpeg":   extMP3,
	"audio/mp3":    extMP3,
	"audio/flac":   extFLAC,
	"audio/x-flac": extFLAC,
	"audio/wav":    extWAV,
	"audio/x-wav":  extWAV,
	"audio/wave":   extWAV,
	"audio/ogg":    extOGG,
	"audio/vorbis": extOGG,
}

// IsSupported reports whether the extension of source has a decoder.
func IsSupported(source string) bool {
	switch sourceExt(source) {
	case extMP3, extFLAC, extWAV, extOGG, extOGA:
		return true
	}
	return false
}

func isRemote(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

func sourceExt(source string) string {
	if isRemote(source) {
		u, _ := url.Parse(source)
		return strings.ToLower(path.Ext(u.Path))
	}
	return strings.ToLower(filepath.Ext(source))
}

// open returns a seekable body for source and the extension used to pick a decoder.
func (p *Player) open(source string) (io.ReadSeekCloser, string, error) {
	if !isRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, "", err
		}
		return f, sourceExt(source), nil
	}
	return p.fetch(source)
}

// fetch downloads a remote sample into memory.
func (p *Player) fetch(source string) (io.ReadSeekCloser, string, error) {
	req, err := http.NewRequest(http.MethodGet, source, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "audio/*")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("sample status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > p.maxBytes {
		return nil, "", ErrSampleTooLarge
	}

	ext := sourceExt(source)
	if ext == "" {
		if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
			ext = contentTypeExt[mt]
		}
	}
	return memFile{bytes.NewReader(body)}, ext, nil
}
