package mprisctl

import (
	"context"
	"errors"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

const callTimeout = 2 * time.Second

// Sweeper pauses every playing MPRIS player except the excluded ones. It
// is the desktop counterpart of independent page audio.
type Sweeper struct {
	conn    *dbus.Conn
	exclude []string
	logger  zerolog.Logger
}

// NewSweeper creates a sweeper that leaves the players in exclude alone.
func NewSweeper(conn *dbus.Conn, logger zerolog.Logger, exclude ...string) *Sweeper {
	return &Sweeper{
		conn:    conn,
		exclude: exclude,
		logger:  logger.With().Str("component", "sweeper").Logger(),
	}
}

// Pause implements exclusion.PageAudio.
func (s *Sweeper) Pause() error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	names, err := listNames(ctx, s.conn)
	if err != nil {
		return err
	}

	var errs []error
	for _, suffix := range playerNames(names, s.exclude...) {
		obj := s.conn.Object(busPrefix+suffix, objectPath)
		status, err := playbackStatus(ctx, obj)
		if err != nil || status != StatusPlaying {
			continue
		}
		if err := call(ctx, obj, "Pause"); err != nil {
			errs = append(errs, err)
			continue
		}
		s.logger.Debug().Str("player", suffix).Msg("paused competing player")
	}
	return errors.Join(errs...)
}
