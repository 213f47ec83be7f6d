package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"
)

const (
	// MaxVolume is the 8-bit signed ceiling of a mixed sample.
	MaxVolume = 127
	// SampleRate is the audio sample rate in Hz.
	SampleRate = 44100
	// DefaultLoopSamples is one second of audio: every integer frequency
	// completes whole cycles in it, so the loop point is seamless.
	DefaultLoopSamples = SampleRate
)

// FrequencyLevel is one wave's raw contribution at a sample index.
type FrequencyLevel struct {
	Frequency int
	Level     int8
}

// FrequencyBuffer records each wave's individual contribution per sample.
// Logically it is a Len() x Width() matrix indexed by sample and frequency in
// Hz; only the columns of held frequencies are stored, all others read as 0.
type FrequencyBuffer struct {
	length  int
	columns []int
	data    []int8
}

// Len is the number of samples.
func (b *FrequencyBuffer) Len() int {
	if b == nil {
		return 0
	}
	return b.length
}

// Width is the highest held frequency plus one, or 0 with no waves.
func (b *FrequencyBuffer) Width() int {
	if b == nil || len(b.columns) == 0 {
		return 0
	}
	return b.columns[len(b.columns)-1] + 1
}

// Frequencies lists the held frequencies in ascending order.
func (b *FrequencyBuffer) Frequencies() []int {
	if b == nil {
		return nil
	}
	return append([]int(nil), b.columns...)
}

// At returns the level of frequency at sample i.
func (b *FrequencyBuffer) At(i, frequency int) int8 {
	col := b.column(frequency)
	if col < 0 || i < 0 || i >= b.length {
		return 0
	}
	return b.data[i*len(b.columns)+col]
}

// Levels returns the held frequencies' levels at sample i.
func (b *FrequencyBuffer) Levels(i int) []FrequencyLevel {
	if b == nil || i < 0 || i >= b.length {
		return nil
	}
	levels := make([]FrequencyLevel, len(b.columns))
	row := b.data[i*len(b.columns) : (i+1)*len(b.columns)]
	for c, f := range b.columns {
		levels[c] = FrequencyLevel{Frequency: f, Level: row[c]}
	}
	return levels
}

func (b *FrequencyBuffer) column(frequency int) int {
	if b == nil {
		return -1
	}
	c := sort.SearchInts(b.columns, frequency)
	if c < len(b.columns) && b.columns[c] == frequency {
		return c
	}
	return -1
}

// AudioSnapshot is a consistent view of both synthesized buffers. The
// buffers are replaced wholesale on refresh and never mutated afterwards.
type AudioSnapshot struct {
	Buffer      []int8
	Frequencies *FrequencyBuffer
}

// SoundController synthesizes the shared wave set into a loop buffer and
// plays it on an AudioOutput.
type SoundController struct {
	mu       sync.Mutex
	gen      *WaveGenerator
	out      AudioOutput
	waves    []Wave
	buffer   []int8
	freq     *FrequencyBuffer
	lineOpen bool
	playing  bool
	log      *zap.Logger
}

// NewSoundController subscribes to gen and synthesizes the initial (silent)
// buffer. The controller is always returned; a non-nil error wraps
// ErrAudioDeviceUnavailable and leaves the buffers readable.
func NewSoundController(gen *WaveGenerator, out AudioOutput, log *zap.Logger) (*SoundController, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &SoundController{gen: gen, out: out, log: log}
	gen.OnChange(s.Refresh)
	return s, s.Refresh()
}

func (s *SoundController) AddWave(w Wave) (WaveID, error) { return s.gen.AddWave(w) }

func (s *SoundController) RemoveWave(id WaveID) (bool, error) { return s.gen.RemoveWave(id) }

func (s *SoundController) ClearWaves() error { return s.gen.ClearWaves() }

// Refresh resynthesizes the buffers from the generator and reopens the line.
// It runs synchronously after every wave-set change.
func (s *SoundController) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.gen.Waves()
	waves := make([]Wave, len(entries))
	for i, e := range entries {
		waves[i] = e.Wave
	}
	sort.SliceStable(waves, func(i, j int) bool { return waves[i].frequency < waves[j].frequency })
	s.waves = waves
	s.refreshBuffer()
	return s.generateTone()
}

// refreshBuffer mixes every wave into buffer, averaging over the wave count
// so the sum stays within MaxVolume, and records each wave's unnormalized
// level in the frequency buffer.
func (s *SoundController) refreshBuffer() {
	length := DefaultLoopSamples
	if s.out != nil {
		length = max(s.out.BufferSize(), 0)
	}
	buffer := make([]int8, length)
	freq := &FrequencyBuffer{length: length}
	for _, w := range s.waves {
		if n := len(freq.columns); n == 0 || freq.columns[n-1] != w.frequency {
			freq.columns = append(freq.columns, w.frequency)
		}
	}
	width := len(freq.columns)
	freq.data = make([]int8, length*width)

	count := float64(len(s.waves))
	for i := 0; i < length; i++ {
		t := float64(i) / SampleRate
		var total float64
		row := freq.data[i*width : (i+1)*width]
		col := 0
		for _, w := range s.waves {
			amplitude := w.At(0, t)
			total += amplitude
			for freq.columns[col] != w.frequency {
				col++
			}
			row[col] = quantize(amplitude * MaxVolume)
		}
		if count > 0 {
			buffer[i] = quantize(total * MaxVolume / count)
		}
	}
	s.buffer = buffer
	s.freq = freq
}

// quantize rounds half up and clamps to int8.
func quantize(v float64) int8 {
	r := math.Floor(v + 0.5)
	if r > math.MaxInt8 {
		return math.MaxInt8
	}
	if r < math.MinInt8 {
		return math.MinInt8
	}
	return int8(r)
}

// generateTone closes the current line and opens a new one on buffer. A line
// that was looping resumes on the new buffer.
func (s *SoundController) generateTone() error {
	if s.out == nil {
		s.lineOpen = false
		return fmt.Errorf("no audio output configured: %w", ErrAudioDeviceUnavailable)
	}
	if err := s.out.Close(); err != nil {
		s.log.Warn("closing audio line", zap.Error(err))
	}
	s.lineOpen = false

	pcm := make([]byte, len(s.buffer))
	for i, v := range s.buffer {
		pcm[i] = byte(v)
	}
	if err := s.out.Open(pcm, LoopFormat); err != nil {
		s.playing = false
		return wrapDeviceErr("opening audio line", err)
	}
	s.lineOpen = true
	s.log.Debug("audio line opened",
		zap.Int("waves", len(s.waves)),
		zap.Int("samples", len(pcm)),
		zap.Stringer("format", LoopFormat))
	if s.playing {
		if err := s.out.Loop(); err != nil {
			s.playing = false
			return wrapDeviceErr("resuming audio loop", err)
		}
	}
	return nil
}

func wrapDeviceErr(op string, err error) error {
	if errors.Is(err, ErrAudioDeviceUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrAudioDeviceUnavailable, err))
}

// Start loops the current buffer until Stop. With no waves it plays silence.
func (s *SoundController) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.lineOpen {
		return fmt.Errorf("starting playback: %w", ErrAudioDeviceUnavailable)
	}
	if err := s.out.Loop(); err != nil {
		return wrapDeviceErr("starting playback", err)
	}
	s.playing = true
	return nil
}

func (s *SoundController) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	if !s.lineOpen {
		return nil
	}
	return s.out.Stop()
}

// Close stops playback and releases the line.
func (s *SoundController) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.lineOpen = false
	if s.out == nil {
		return nil
	}
	return s.out.Close()
}

func (s *SoundController) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Waves returns the synthesized waves sorted by ascending frequency.
func (s *SoundController) Waves() []Wave {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Wave(nil), s.waves...)
}

// Buffer returns a copy of the mixed loop buffer.
func (s *SoundController) Buffer() []int8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int8(nil), s.buffer...)
}

func (s *SoundController) FrequencyBuffer() *FrequencyBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.freq
}

func (s *SoundController) Snapshot() AudioSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AudioSnapshot{Buffer: s.buffer, Frequencies: s.freq}
}
