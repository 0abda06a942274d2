package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/wavedeck/internal/enrich"
	"github.com/llehouerou/wavedeck/internal/playback"
	"github.com/llehouerou/wavedeck/internal/sample"
	"github.com/llehouerou/wavedeck/internal/widget"
)

const (
	appName   = "wavedeck"
	envPrefix = "WAVEDECK_"
)

type Config struct {
	Catalog string `koanf:"catalog"` // default catalog file

	Sample      SampleConfig      `koanf:"sample"`
	Widget      WidgetConfig      `koanf:"widget"`
	Enrich      EnrichConfig      `koanf:"enrich"`
	MusicBrainz MusicBrainzConfig `koanf:"musicbrainz"`

	// Last.fm album metadata (fallback enrichment source when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`

	Log LogConfig `koanf:"log"`
}

// SampleConfig holds sample playback settings.
type SampleConfig struct {
	TickInterval   time.Duration `koanf:"tick_interval"`    // progress cadence (default: 250ms)
	FadeOut        time.Duration `koanf:"fade_out"`         // stop ramp length (default: 300ms)
	FadeSteps      int           `koanf:"fade_steps"`       // stop ramp resolution (default: 12)
	GraceWindow    time.Duration `koanf:"grace_window"`     // last track kept after the end (default: 4s)
	IdleRelease    time.Duration `koanf:"idle_release"`     // release the decoder after inactivity (default: 30s)
	MaxSampleBytes int64         `koanf:"max_sample_bytes"` // download bound for remote samples (default: 32 MiB)
}

// WidgetConfig holds external mix player settings.
type WidgetConfig struct {
	PollInterval  time.Duration `koanf:"poll_interval"`  // default: 500ms
	ReadyAttempts int           `koanf:"ready_attempts"` // default: 10
	ReadyDelay    time.Duration `koanf:"ready_delay"`    // default: 300ms
	Player        string        `koanf:"player"`         // MPRIS bus name suffix, e.g. "mpv"
	BaseURL       string        `koanf:"base_url"`       // prefix joined with feed paths
}

// EnrichConfig holds metadata enrichment settings.
type EnrichConfig struct {
	CacheSize         int64         `koanf:"cache_size"`          // default: 500
	CacheTTL          time.Duration `koanf:"cache_ttl"`           // default: 12h
	Timeout           time.Duration `koanf:"timeout"`             // default: 15s
	Persistent        *bool         `koanf:"persistent"`          // sqlite tracklist cache (default: true)
	PersistentTTLDays int           `koanf:"persistent_ttl_days"` // default: 30
}

// MusicBrainzConfig holds MusicBrainz-related configuration.
type MusicBrainzConfig struct {
	BaseURL   string `koanf:"base_url"`
	UserAgent string `koanf:"user_agent"`
}

// LastfmConfig holds Last.fm API credentials.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `koanf:"level"`  // default: "info"
	Format string `koanf:"format"` // "pretty" or "json" (default: "json")
	File   string `koanf:"file"`   // default: $XDG_STATE_HOME/wavedeck/wavedeck.log
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	// .env only feeds the environment; real variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Catalog = expandPath(cfg.Catalog)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Widget.BaseURL = strings.TrimSuffix(cfg.Widget.BaseURL, "/")
	cfg.MusicBrainz.BaseURL = strings.TrimSuffix(cfg.MusicBrainz.BaseURL, "/")

	return cfg, nil
}

// envKey maps WAVEDECK_LASTFM__API_KEY to lastfm.api_key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/wavedeck/config.toml
	if xdg.ConfigHome != "" {
		paths = append(paths, filepath.Join(xdg.ConfigHome, appName, "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if the Last.fm fallback is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// SampleConfig returns the sample backend timings with defaults applied.
func (c *Config) SampleConfig() sample.Config {
	d := sample.DefaultConfig()
	cfg := sample.Config{
		TickInterval: c.Sample.TickInterval,
		FadeOut:      c.Sample.FadeOut,
		FadeSteps:    c.Sample.FadeSteps,
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = d.TickInterval
	}
	if cfg.FadeOut <= 0 {
		cfg.FadeOut = d.FadeOut
	}
	if cfg.FadeSteps <= 0 || cfg.FadeSteps > 100 {
		cfg.FadeSteps = d.FadeSteps
	}
	return cfg
}

// PlaybackConfig returns the coordinator timings with defaults applied.
func (c *Config) PlaybackConfig() playback.Config {
	d := playback.DefaultConfig()
	cfg := playback.Config{
		GraceWindow: c.Sample.GraceWindow,
		IdleRelease: c.Sample.IdleRelease,
	}
	if cfg.GraceWindow <= 0 {
		cfg.GraceWindow = d.GraceWindow
	}
	if cfg.IdleRelease < cfg.GraceWindow {
		cfg.IdleRelease = max(d.IdleRelease, cfg.GraceWindow)
	}
	return cfg
}

// MaxSampleBytes returns the remote sample download bound.
func (c *Config) MaxSampleBytes() int64 {
	if c.Sample.MaxSampleBytes <= 0 {
		return 32 << 20
	}
	return c.Sample.MaxSampleBytes
}

// WidgetConfig returns the widget timings with defaults applied.
func (c *Config) WidgetConfig() widget.Config {
	d := widget.DefaultConfig()
	cfg := widget.Config{
		PollInterval:  c.Widget.PollInterval,
		ReadyAttempts: c.Widget.ReadyAttempts,
		ReadyDelay:    c.Widget.ReadyDelay,
		CallTimeout:   d.CallTimeout,
	}
	if cfg.PollInterval <= 0 || cfg.PollInterval > 5*time.Second {
		cfg.PollInterval = d.PollInterval
	}
	if cfg.ReadyAttempts <= 0 {
		cfg.ReadyAttempts = d.ReadyAttempts
	}
	if cfg.ReadyDelay <= 0 {
		cfg.ReadyDelay = d.ReadyDelay
	}
	return cfg
}

// EnrichConfig returns the enrichment pipeline limits with defaults applied.
func (c *Config) EnrichConfig() enrich.Config {
	d := enrich.DefaultConfig()
	cfg := enrich.Config{
		CacheSize: c.Enrich.CacheSize,
		CacheTTL:  c.Enrich.CacheTTL,
		Timeout:   c.Enrich.Timeout,
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = d.CacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = d.CacheTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	return cfg
}

// PersistentCache reports whether the sqlite tracklist cache is enabled.
func (c *Config) PersistentCache() bool {
	return c.Enrich.Persistent == nil || *c.Enrich.Persistent
}

// PersistentTTLDays returns the sqlite tracklist cache TTL in days.
func (c *Config) PersistentTTLDays() int {
	if c.Enrich.PersistentTTLDays <= 0 {
		return 30
	}
	return c.Enrich.PersistentTTLDays
}

// LogLevel returns the configured log level name.
func (c *Config) LogLevel() string {
	if c.Log.Level == "" {
		return "info"
	}
	return strings.ToLower(c.Log.Level)
}

// LogFile returns where logs are written.
func (c *Config) LogFile() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	return xdg.StateFile(filepath.Join(appName, appName+".log"))
}
