package player

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Play starts playback of source, a file path or an http(s) URL.
func (p *Player) Play(source string) error {
	p.Stop()

	body, ext, err := p.open(source)
	if err != nil {
		return err
	}

	info := readTags(body, source)

	streamer, format, err := decode(body, ext)
	if err != nil {
		body.Close()
		return err
	}

	if err := initSpeaker(format.SampleRate); err != nil {
		streamer.Close()
		return err
	}

	var out beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		out = beep.Resample(4, format.SampleRate, speakerSampleRate, streamer)
	}

	info.Duration = format.SampleRate.D(streamer.Len())
	info.SampleRate = int(format.SampleRate)
	info.Format = strings.ToUpper(strings.TrimPrefix(ext, "."))

	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.streamer = streamer
	p.format = format
	p.trackInfo = info
	p.ctrl = &beep.Ctrl{Streamer: out, Paused: false}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2}
	p.applyVolumeLocked()
	p.state = Playing

	var tapped beep.Streamer = p.volume
	if p.analyzer != nil {
		p.analyzer.SetSampleRate(speakerSampleRate)
		tapped = p.analyzer.Connect(p.volume)
	}
	p.mu.Unlock()

	speaker.Play(beep.Seq(tapped, beep.Callback(func() {
		// Runs on the speaker goroutine with the speaker lock held.
		go p.finished(gen, streamer.Err())
	})))

	return nil
}

// finished handles the end of the resource identified by gen.
func (p *Player) finished(gen uint64, err error) {
	p.mu.Lock()
	if gen != p.generation || p.state == Stopped {
		p.mu.Unlock()
		return
	}
	p.releaseLocked()
	fn := p.onFinished
	p.mu.Unlock()

	if fn != nil {
		fn(err)
	}
}

func decode(body io.ReadSeekCloser, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case extMP3:
		return decodeMP3(body)
	case extFLAC:
		if err := skipID3v2(body); err != nil {
			return nil, beep.Format{}, err
		}
		return flac.Decode(body)
	case extWAV:
		return wav.Decode(body)
	case extOGG, extOGA:
		return vorbis.Decode(body)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func initSpeaker(sr beep.SampleRate) error {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerInitialized {
		return nil
	}
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speakerSampleRate = sr
	speakerInitialized = true
	return nil
}
