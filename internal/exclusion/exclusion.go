// Package exclusion enforces that only one audio source plays at a time.
//
// The rule is one-directional: whoever starts playing pauses everybody else.
// It is applied at every play transition, including ones discovered after
// the fact by polling.
package exclusion

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavedeck/internal/errmsg"
	"github.com/llehouerou/wavedeck/internal/log"
)

// Member is a managed playback backend.
type Member interface {
	Pause()
	Playing() bool
}

// PageAudio is independent audio outside the coordinator's management.
// Pausing it is best effort.
type PageAudio interface {
	Pause() error
}

// PageAudioFunc adapts a function to PageAudio.
type PageAudioFunc func() error

func (f PageAudioFunc) Pause() error { return f() }

// Controller pauses every other source when one starts.
type Controller struct {
	mu      sync.Mutex
	members map[string]Member
	pages   map[string]PageAudio
	logger  zerolog.Logger
}

// New creates a controller with no members.
func New(logger zerolog.Logger) *Controller {
	return &Controller{
		members: make(map[string]Member),
		pages:   make(map[string]PageAudio),
		logger:  logger.With().Str("component", "exclusion").Logger(),
	}
}

// Register adds a managed backend under name.
func (c *Controller) Register(name string, m Member) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.members[name] = m
}

// Attach registers independent audio under id, replacing any previous one.
func (c *Controller) Attach(id string, a PageAudio) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[id] = a
}

// Detach removes the independent audio registered under id.
func (c *Controller) Detach(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pages, id)
}

// Started applies the rule for owner: every other playing member is paused
// and all page audio is swept. It returns the names of the members it paused.
func (c *Controller) Started(owner string) []string {
	c.mu.Lock()
	others := make([]string, 0, len(c.members))
	for name := range c.members {
		if name != owner {
			others = append(others, name)
		}
	}
	sort.Strings(others)
	members := make([]Member, len(others))
	for i, name := range others {
		members[i] = c.members[name]
	}
	pages := make(map[string]PageAudio, len(c.pages))
	for id, a := range c.pages {
		pages[id] = a
	}
	c.mu.Unlock()

	var paused []string
	for i, m := range members {
		if m.Playing() {
			m.Pause()
			paused = append(paused, others[i])
		}
	}
	for id, a := range pages {
		c.sweep(id, a)
	}

	if len(paused) > 0 {
		c.logger.Debug().Str("owner", owner).Strs("paused", paused).Msg("exclusion applied")
	}
	return paused
}

// sweep pauses one page audio source, swallowing failures.
func (c *Controller) sweep(id string, a PageAudio) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug().
				Err(errmsg.Wrap(errmsg.OpPageAudioPause, fmt.Errorf("panic: %v", r))).
				Str("page_audio", id).
				Func(log.Panic(r)).
				Msg("page audio sweep panicked")
		}
	}()
	if err := a.Pause(); err != nil {
		c.logger.Debug().Err(errmsg.Wrap(errmsg.OpPageAudioPause, err)).Str("page_audio", id).Msg("page audio sweep failed")
	}
}
