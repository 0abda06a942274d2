// Package catalog loads the product catalog the views browse.
//
// A catalog is a TOML or JSON file listing products. A product is either a
// release with sample tracks, or a mix with a feed path played through the
// external widget.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"

	"github.com/llehouerou/wavedeck/internal/playlist"
	"github.com/llehouerou/wavedeck/internal/widget"
)

var (
	ErrNoProducts       = errors.New("catalog has no products")
	ErrDuplicateProduct = errors.New("duplicate product id")
	ErrEmptyProduct     = errors.New("product has neither tracks nor feed")
	ErrUnknownFormat    = errors.New("unknown catalog format")
)

// Catalog is a loaded product catalog.
type Catalog struct {
	Title    string    `koanf:"title" json:"title"`
	Products []Product `koanf:"products" json:"products"`
}

// Product is one catalog page.
type Product struct {
	ID         string       `koanf:"id" json:"id"`
	Title      string       `koanf:"title" json:"title"`
	Artist     string       `koanf:"artist" json:"artist"`
	ReleaseID  string       `koanf:"release_id" json:"release_id"`
	ArtworkURL string       `koanf:"artwork_url" json:"artwork_url"`
	Link       string       `koanf:"link" json:"link"`
	Feed       string       `koanf:"feed" json:"feed"` // mix feed path, played in the widget
	Tracks     []TrackEntry `koanf:"tracks" json:"tracks"`
}

// TrackEntry is a track as written in the catalog file.
type TrackEntry struct {
	Source   string `koanf:"source" json:"source"`
	Title    string `koanf:"title" json:"title"`
	Artist   string `koanf:"artist" json:"artist"`
	Duration string `koanf:"duration" json:"duration"`
}

// Load reads a catalog from path. The format follows the extension:
// .toml or .json.
func Load(path string) (*Catalog, error) {
	var (
		c   *Catalog
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		c, err = loadTOML(path)
	case ".json":
		c, err = loadJSON(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}

func loadTOML(path string) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, err
	}
	c := &Catalog{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, err
	}
	return c, nil
}

func loadJSON(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := &Catalog{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	if len(c.Products) == 0 {
		return ErrNoProducts
	}
	for i := range c.Products {
		if c.Products[i].ID == "" {
			c.Products[i].ID = fmt.Sprintf("product-%d", i+1)
		}
	}
	dups := lo.FindDuplicatesBy(c.Products, func(p Product) string { return p.ID })
	if len(dups) > 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateProduct, dups[0].ID)
	}
	for i := range c.Products {
		p := &c.Products[i]
		p.Tracks = lo.Filter(p.Tracks, func(t TrackEntry, _ int) bool {
			return strings.TrimSpace(t.Source) != ""
		})
		if p.Feed != "" && widget.NormalizeFeed(p.Feed) == "" {
			p.Feed = ""
		}
		if len(p.Tracks) == 0 && p.Feed == "" {
			return fmt.Errorf("%w: %q", ErrEmptyProduct, p.ID)
		}
	}
	return nil
}

// Product returns the product with the given id.
func (c *Catalog) Product(id string) (Product, bool) {
	return lo.Find(c.Products, func(p Product) bool { return p.ID == id })
}

// Releases returns the products that carry sample tracks.
func (c *Catalog) Releases() []Product {
	return lo.Filter(c.Products, func(p Product, _ int) bool { return len(p.Tracks) > 0 })
}

// IsMix reports whether the product plays in the external widget.
func (p Product) IsMix() bool {
	return p.Feed != ""
}

// Name returns the display name of the product.
func (p Product) Name() string {
	if p.Artist == "" {
		return p.Title
	}
	return p.Artist + " - " + p.Title
}

// Playlist converts the product tracks into playable tracks carrying the
// product's display fields and release id.
func (p Product) Playlist() []playlist.Track {
	return lo.Map(p.Tracks, func(e TrackEntry, _ int) playlist.Track {
		t := playlist.NewTrack(e.Source, e.Title)
		t.Artist = lo.CoalesceOrEmpty(e.Artist, p.Artist)
		t.Duration = e.Duration
		t.Album = p.Title
		t.Collection = p.Name()
		t.ArtworkURL = p.ArtworkURL
		t.Link = p.Link
		t.ReleaseID = p.ReleaseID
		return t
	})
}
