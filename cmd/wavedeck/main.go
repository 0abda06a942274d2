package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/tidwall/pretty"
	"github.com/urfave/cli/v2"

	"github.com/llehouerou/wavedeck/internal/app"
	"github.com/llehouerou/wavedeck/internal/catalog"
	"github.com/llehouerou/wavedeck/internal/config"
	"github.com/llehouerou/wavedeck/internal/enrich"
	"github.com/llehouerou/wavedeck/internal/log"
	"github.com/llehouerou/wavedeck/internal/mount"
	"github.com/llehouerou/wavedeck/internal/mpris"
	"github.com/llehouerou/wavedeck/internal/mprisctl"
	"github.com/llehouerou/wavedeck/internal/notify"
	"github.com/llehouerou/wavedeck/internal/playlist"
)

const (
	flagJSON    = "json"
	flagTimeout = "timeout"
	flagCatalog = "catalog"
)

func main() {
	stderr := log.NewPretty(os.Stderr).Level(zerolog.InfoLevel)

	cliApp := &cli.App{
		Name:    "wavedeck",
		Usage:   "Catalog sampler with a shared playback deck",
		Suggest: true,
		Commands: []*cli.Command{
			{
				Name:      "play",
				Aliases:   []string{"p"},
				Usage:     "Browse a catalog and play its samples and mixes",
				ArgsUsage: "[catalog]",
				Action:    play,
			},
			{
				Name:      "enrich",
				Aliases:   []string{"e"},
				Usage:     "Print the authoritative tracklist of a release",
				ArgsUsage: "<release-id>",
				Action:    enrichRelease,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagCatalog,
						Aliases: []string{"c"},
						Usage:   "Merge into the catalog product carrying this release",
					},
					&cli.BoolFlag{
						Name:  flagJSON,
						Usage: "Print entries as JSON",
					},
					&cli.DurationFlag{
						Name:  flagTimeout,
						Value: 30 * time.Second,
						Usage: "Lookup deadline",
					},
				},
			},
			{
				Name:   "players",
				Usage:  "List the media players on the session bus",
				Action: listPlayers,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		stderr.Error().Err(err).Msg("wavedeck failed")
		os.Exit(1)
	}
}

func play(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	path := cfg.Catalog
	if c.Args().Present() {
		path = c.Args().First()
	}
	if path == "" {
		return errors.New("no catalog given and none configured")
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	logFile, err := cfg.LogFile()
	if err != nil {
		return fmt.Errorf("resolve log file: %w", err)
	}
	logger, logCloser, err := log.Open(log.Options{
		Level:  cfg.LogLevel(),
		Format: cfg.Log.Format,
		File:   logFile,
	})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logCloser.Close()

	deck, err := build(cfg, logger)
	if err != nil {
		return err
	}
	defer deck.Close()

	logger.Info().Str("catalog", path).Int("products", len(cat.Products)).Msg("starting")
	return app.Run(deck.coordinator, cat, logger)
}

func enrichRelease(c *cli.Context) error {
	if !c.Args().Present() {
		return errors.New("release id required")
	}
	releaseID := c.Args().First()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := log.NewPretty(os.Stderr).Level(zerolog.WarnLevel)

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, c.Duration(flagTimeout))
	defer cancel()

	source, err := tracklistSource(cfg, mount.Global(), logger)
	if err != nil {
		return err
	}
	defer mount.Global().Close()

	if path := c.String(flagCatalog); path != "" {
		return printMerged(ctx, cfg, source, path, releaseID, c.Bool(flagJSON), logger)
	}

	entries, err := source.Tracklist(ctx, releaseID)
	if err != nil {
		return fmt.Errorf("tracklist %s: %w", releaseID, err)
	}

	if c.Bool(flagJSON) {
		return printJSON(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, e.Title, e.Artist, formatLength(e.Length))
	}
	return w.Flush()
}

// printMerged runs the catalog product of releaseID through the enrichment
// pipeline and prints the patched tracks.
func printMerged(ctx context.Context, cfg *config.Config, source enrich.Source, path, releaseID string, asJSON bool, logger zerolog.Logger) error {
	cat, err := catalog.Load(path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	product, ok := lo.Find(cat.Products, func(p catalog.Product) bool {
		return p.ReleaseID == releaseID
	})
	if !ok {
		return fmt.Errorf("no product with release %s in %s", releaseID, path)
	}

	pipeline := enrich.NewPipeline(source, cfg.EnrichConfig(), logger)
	defer pipeline.Close()

	tracks := product.Playlist()
	merged, err := pipeline.Enrich(ctx, releaseID, tracks)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(merged)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, t := range merged {
		marker := ""
		if i < len(tracks) && !playlist.SameDisplay(t, tracks[i]) {
			marker = "*"
		}
		fmt.Fprintf(w, "%d%s\t%s\t%s\t%s\n", i+1, marker, t.Title, t.Artist, t.Duration)
	}
	return w.Flush()
}

func printJSON(v any) error {
	out, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(pretty.Color(pretty.Pretty(out), nil))
	return err
}

func listPlayers(c *cli.Context) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(c.Context, 5*time.Second)
	defer cancel()

	players, err := mprisctl.Players(ctx, conn)
	if err != nil {
		return err
	}
	if len(players) == 0 {
		fmt.Println("no players")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tIDENTITY\tSTATUS")
	for _, p := range players {
		marker := ""
		if p.Name == mpris.Name {
			marker = " (self)"
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\n", p.Name, marker, p.Identity, p.Status)
	}
	return w.Flush()
}

func formatLength(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return enrich.FormatLength(d)
}

// notifyDesktop returns nil when no notification daemon answers.
func notifyDesktop(src notify.Source, logger zerolog.Logger) *notify.Watcher {
	n, err := notify.New()
	if err != nil {
		logger.Warn().Err(err).Msg("desktop notifications unavailable")
		return nil
	}
	return notify.Watch(src, n, logger)
}
