// Package mbcache persists authoritative tracklists across runs in SQLite.
package mbcache

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/wavedeck/internal/db"
	"github.com/llehouerou/wavedeck/internal/enrich"
	"github.com/llehouerou/wavedeck/internal/errmsg"
)

const (
	appName    = "wavedeck"
	dbFileName = "tracklists.db"
)

const schema = `
CREATE TABLE IF NOT EXISTS release_tracks (
	release_id TEXT NOT NULL,
	position   INTEGER NOT NULL,
	title      TEXT NOT NULL,
	artist     TEXT,
	length_ms  INTEGER NOT NULL DEFAULT 0,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (release_id, position)
);
`

// DefaultPath returns the database location under the XDG data directory.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Open opens (creating if needed) the tracklist database at path.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Cache is an enrich.Source that answers from SQLite when it can and
// stores what the wrapped source returns.
type Cache struct {
	db      *sql.DB
	source  enrich.Source
	ttlDays int
	logger  zerolog.Logger
}

// New wraps source with the cache stored in conn.
func New(conn *sql.DB, source enrich.Source, ttlDays int, logger zerolog.Logger) *Cache {
	if ttlDays <= 0 {
		ttlDays = 30
	}
	return &Cache{
		db:      conn,
		source:  source,
		ttlDays: ttlDays,
		logger:  logger.With().Str("component", "mbcache").Logger(),
	}
}

// isExpired checks if a cached entry is expired.
func (c *Cache) isExpired(fetchedAt int64) bool {
	expiry := time.Now().AddDate(0, 0, -c.ttlDays).Unix()
	return fetchedAt < expiry
}

// Tracklist implements enrich.Source.
func (c *Cache) Tracklist(ctx context.Context, releaseID string) ([]enrich.Entry, error) {
	entries, err := c.Get(ctx, releaseID)
	if err != nil {
		c.logger.Debug().Err(err).Str("release_id", releaseID).Msg("cache read failed")
	}
	if len(entries) > 0 {
		return entries, nil
	}

	entries, err = c.source.Tracklist(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, enrich.ErrEmpty
	}
	if err := c.Set(ctx, releaseID, entries); err != nil {
		c.logger.Warn().Err(errmsg.Wrap(errmsg.OpEnrichCache, err)).Str("release_id", releaseID).Msg("cache write failed")
	}
	return entries, nil
}

// Get returns the cached tracklist of releaseID, or nil when missing or
// expired.
func (c *Cache) Get(ctx context.Context, releaseID string) ([]enrich.Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT title, artist, length_ms, fetched_at
		FROM release_tracks
		WHERE release_id = ?
		ORDER BY position ASC
	`, releaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []enrich.Entry
	for rows.Next() {
		var (
			e         enrich.Entry
			artist    sql.NullString
			lengthMS  int64
			fetchedAt int64
		)
		if err := rows.Scan(&e.Title, &artist, &lengthMS, &fetchedAt); err != nil {
			return nil, err
		}
		if c.isExpired(fetchedAt) {
			return nil, nil // Return empty to trigger refresh
		}
		e.Artist = db.NullStringValue(artist)
		e.Length = time.Duration(lengthMS) * time.Millisecond
		result = append(result, e)
	}
	return result, rows.Err()
}

// Set replaces the cached tracklist of releaseID.
func (c *Cache) Set(ctx context.Context, releaseID string, entries []enrich.Entry) error {
	if releaseID == "" {
		return errors.New("empty release id")
	}
	now := time.Now().Unix()
	return db.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM release_tracks WHERE release_id = ?`, releaseID); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO release_tracks (release_id, position, title, artist, length_ms, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, e := range entries {
			if _, err := stmt.ExecContext(ctx, releaseID, i, e.Title, db.NullString(e.Artist), e.Length.Milliseconds(), now); err != nil {
				return err
			}
		}
		return nil
	})
}

// Purge deletes expired tracklists and returns how many rows went away.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	expiry := time.Now().AddDate(0, 0, -c.ttlDays).Unix()
	res, err := c.db.ExecContext(ctx, `DELETE FROM release_tracks WHERE fetched_at < ?`, expiry)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Verify Cache implements enrich.Source at compile time.
var _ enrich.Source = (*Cache)(nil)
