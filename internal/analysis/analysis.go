// Package analysis provides the session-wide audio analysis node.
//
// A single Analyzer lives for the whole process. Every decoded source is
// routed through a Tap bound to that Analyzer; taps are disposable and are
// recreated whenever the underlying source is replaced, the Analyzer is not.
package analysis

import (
	"math"
	"sync"

	"github.com/gopxl/beep/v2"
)

// DefaultBands are the centre frequencies (Hz) reported by Snapshot.
var DefaultBands = []float64{60, 150, 400, 1000, 2400, 6000, 12000}

const (
	defaultWindow     = 2048
	defaultSampleRate = 44100
)

// Levels is a point-in-time reading of the analysed signal.
type Levels struct {
	RMS   float64   // root mean square of the window, 0..1
	Peak  float64   // absolute peak of the window, 0..1
	Bands []float64 // normalized magnitude per band, 0..1
}

// Silent reports whether the window carried no signal.
func (l Levels) Silent() bool {
	return l.Peak == 0
}

// Analyzer is the shared analysis node.
type Analyzer struct {
	mu         sync.Mutex
	buf        []float64
	pos        int
	filled     int
	sampleRate beep.SampleRate
	bands      []float64
	generation uint64 // bumped on every Connect
}

// New creates an analyzer with the given window size (samples).
func New(window int) *Analyzer {
	if window <= 0 {
		window = defaultWindow
	}
	return &Analyzer{
		buf:        make([]float64, window),
		sampleRate: defaultSampleRate,
		bands:      DefaultBands,
	}
}

// SetSampleRate sets the rate of the samples flowing through taps.
func (a *Analyzer) SetSampleRate(sr beep.SampleRate) {
	a.mu.Lock()
	a.sampleRate = sr
	a.mu.Unlock()
}

// Connect routes s through a new tap bound to this analyzer.
// Taps from previous connections stop feeding the analyzer.
func (a *Analyzer) Connect(s beep.Streamer) *Tap {
	a.mu.Lock()
	a.generation++
	gen := a.generation
	a.reset()
	a.mu.Unlock()
	return &Tap{s: s, a: a, gen: gen}
}

// Disconnect detaches the active tap and clears the window.
func (a *Analyzer) Disconnect() {
	a.mu.Lock()
	a.generation++
	a.reset()
	a.mu.Unlock()
}

func (a *Analyzer) reset() {
	clear(a.buf)
	a.pos = 0
	a.filled = 0
}

// write appends mono samples from the tap of generation gen.
func (a *Analyzer) write(gen uint64, samples [][2]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		return
	}
	size := len(a.buf)
	for i := range samples {
		a.buf[a.pos] = (samples[i][0] + samples[i][1]) / 2
		a.pos = (a.pos + 1) % size
	}
	a.filled = min(a.filled+len(samples), size)
}

// Samples returns the last n samples in chronological order.
func (a *Analyzer) Samples(n int) []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.samplesLocked(n)
}

func (a *Analyzer) samplesLocked(n int) []float64 {
	size := len(a.buf)
	n = min(n, a.filled)
	out := make([]float64, n)
	start := (a.pos - n + size) % size
	for i := range n {
		out[i] = a.buf[(start+i)%size]
	}
	return out
}

// Snapshot computes levels over the current window.
func (a *Analyzer) Snapshot() Levels {
	a.mu.Lock()
	window := a.samplesLocked(len(a.buf))
	sr := float64(a.sampleRate)
	bands := a.bands
	a.mu.Unlock()

	levels := Levels{Bands: make([]float64, len(bands))}
	if len(window) == 0 {
		return levels
	}

	var sum float64
	for _, v := range window {
		sum += v * v
		levels.Peak = max(levels.Peak, math.Abs(v))
	}
	levels.RMS = math.Sqrt(sum / float64(len(window)))

	for i, f := range bands {
		if f >= sr/2 {
			continue
		}
		levels.Bands[i] = goertzel(window, f, sr)
	}
	return levels
}

// goertzel returns the normalized magnitude of freq in samples.
func goertzel(samples []float64, freq, sampleRate float64) float64 {
	n := float64(len(samples))
	k := math.Round(n * freq / sampleRate)
	coeff := 2 * math.Cos(2*math.Pi*k/n)

	var s1, s2 float64
	for _, x := range samples {
		s0 := x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	power := s1*s1 + s2*s2 - coeff*s1*s2
	if power < 0 {
		power = 0
	}
	// A full-scale sine at the bin frequency yields n/2.
	return min(math.Sqrt(power)/(n/2), 1)
}

var _ beep.Streamer = (*Tap)(nil)

// Tap passes audio through while copying it into the analyzer.
type Tap struct {
	s   beep.Streamer
	a   *Analyzer
	gen uint64
}

// Stream implements beep.Streamer.
func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	if n > 0 {
		t.a.write(t.gen, samples[:n])
	}
	return n, ok
}

// Err implements beep.Streamer.
func (t *Tap) Err() error {
	return t.s.Err()
}
