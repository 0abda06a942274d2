package enrich

import (
	"context"
	"errors"
)

// ErrEmpty is returned when a source has no tracklist for a release.
var ErrEmpty = errors.New("empty tracklist")

// Source fetches the authoritative tracklist of a release.
type Source interface {
	Tracklist(ctx context.Context, releaseID string) ([]Entry, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, releaseID string) ([]Entry, error)

func (f SourceFunc) Tracklist(ctx context.Context, releaseID string) ([]Entry, error) {
	return f(ctx, releaseID)
}

// Chain asks each source in turn and returns the first non-empty tracklist.
type Chain []Source

func (c Chain) Tracklist(ctx context.Context, releaseID string) ([]Entry, error) {
	var errs []error
	for _, s := range c {
		entries, err := s.Tracklist(ctx, releaseID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, ErrEmpty
}
