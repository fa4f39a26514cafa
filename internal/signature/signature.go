// Package signature derives rough speaker fingerprints from PCM16 audio.
//
// A fingerprint is the sign pattern of a log band-energy spectrum projected
// onto random hyperplanes, encoded as uppercase hex. Similar voices tend to
// share a fingerprint. It is only good enough to count distinct speakers
// approximately; collisions and false splits are expected.
package signature

import (
	"encoding/hex"
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Config controls fingerprint extraction.
type Config struct {
	SampleRate int     // Hz (default: 16000)
	FrameSize  int     // samples per FFT frame (default: 512)
	Bands      int     // log-spaced energy bands (default: 16)
	MinHz      float64 // lowest band edge (default: 80)
	MaxHz      float64 // highest band edge (default: 4000)
	Bits       int     // hash bits, multiple of 4 (default: 8)
	Seed       uint64
	SilenceRMS float64 // normalized RMS below which audio is ignored (default: 0.02)
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.FrameSize <= 0 {
		c.FrameSize = 512
	}
	if c.Bands <= 0 {
		c.Bands = 16
	}
	if c.MinHz <= 0 {
		c.MinHz = 80
	}
	if c.MaxHz <= c.MinHz {
		c.MaxHz = 4000
	}
	if c.Bits <= 0 || c.Bits%4 != 0 {
		c.Bits = 8
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.SilenceRMS <= 0 {
		c.SilenceRMS = 0.02
	}
	return c
}

// Fingerprinter is safe for concurrent use.
type Fingerprinter struct {
	cfg    Config
	window []float64
	edges  []float64
	planes [][]float64

	mu  sync.Mutex
	fft *fourier.FFT
}

func New(cfg Config) *Fingerprinter {
	cfg = cfg.withDefaults()

	window := make([]float64, cfg.FrameSize)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(cfg.FrameSize-1))
	}

	edges := make([]float64, cfg.Bands+1)
	ratio := math.Log(cfg.MaxHz / cfg.MinHz)
	for i := range edges {
		edges[i] = cfg.MinHz * math.Exp(ratio*float64(i)/float64(cfg.Bands))
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0xdeadbeef))
	planes := make([][]float64, cfg.Bits)
	for i := range planes {
		plane := make([]float64, cfg.Bands)
		var norm float64
		for j := range plane {
			plane[j] = rng.NormFloat64()
			norm += plane[j] * plane[j]
		}
		norm = math.Sqrt(norm)
		for j := range plane {
			plane[j] /= norm
		}
		planes[i] = plane
	}

	return &Fingerprinter{
		cfg:    cfg,
		window: window,
		edges:  edges,
		planes: planes,
		fft:    fourier.NewFFT(cfg.FrameSize),
	}
}

// Fingerprint returns a hex signature for the chunk, or false when the
// chunk is too short or too quiet to carry a voice.
func (f *Fingerprinter) Fingerprint(pcm []byte) (string, bool) {
	samples := decodePCM16(pcm)
	if len(samples) < f.cfg.FrameSize {
		return "", false
	}
	if rms(samples) < f.cfg.SilenceRMS {
		return "", false
	}

	bands := f.bandEnergies(samples)
	var mean float64
	for i, e := range bands {
		bands[i] = math.Log(e + 1e-12)
		mean += bands[i]
	}
	mean /= float64(len(bands))
	for i := range bands {
		bands[i] -= mean
	}
	return f.hash(bands), true
}

func (f *Fingerprinter) bandEnergies(samples []float64) []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.cfg.FrameSize
	frame := make([]float64, n)
	var coeffs []complex128
	bands := make([]float64, f.cfg.Bands)

	for start := 0; start+n <= len(samples); start += n {
		for i := 0; i < n; i++ {
			frame[i] = samples[start+i] * f.window[i]
		}
		coeffs = f.fft.Coefficients(coeffs, frame)
		for i, c := range coeffs {
			hz := f.fft.Freq(i) * float64(f.cfg.SampleRate)
			band := f.bandFor(hz)
			if band < 0 {
				continue
			}
			re, im := real(c), imag(c)
			bands[band] += re*re + im*im
		}
	}
	return bands
}

func (f *Fingerprinter) bandFor(hz float64) int {
	if hz < f.edges[0] || hz >= f.edges[len(f.edges)-1] {
		return -1
	}
	for i := 1; i < len(f.edges); i++ {
		if hz < f.edges[i] {
			return i - 1
		}
	}
	return -1
}

func (f *Fingerprinter) hash(vec []float64) string {
	out := make([]byte, (f.cfg.Bits+7)/8)
	for i, plane := range f.planes {
		var dot float64
		for j := range plane {
			dot += plane[j] * vec[j]
		}
		if dot > 0 {
			out[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return strings.ToUpper(hex.EncodeToString(out)[:f.cfg.Bits/4])
}

func decodePCM16(pcm []byte) []float64 {
	n := len(pcm) / 2
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		s := int16(pcm[2*i]) | int16(pcm[2*i+1])<<8
		samples[i] = float64(s) / 32768.0
	}
	return samples
}

func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}
