package engine

import (
	"fmt"
	"sync"
)

// PCMFormat describes the samples handed to an AudioOutput.
type PCMFormat struct {
	SampleRate int
	BitDepth   int
	Channels   int
	Signed     bool
	BigEndian  bool
}

// LoopFormat is the format of every buffer produced by SoundController:
// 8-bit signed mono little-endian PCM at SampleRate.
var LoopFormat = PCMFormat{
	SampleRate: SampleRate,
	BitDepth:   8,
	Channels:   1,
	Signed:     true,
}

func (f PCMFormat) String() string {
	sign := "unsigned"
	if f.Signed {
		sign = "signed"
	}
	endian := "LE"
	if f.BigEndian {
		endian = "BE"
	}
	return fmt.Sprintf("%dHz %d-bit %s %dch %s", f.SampleRate, f.BitDepth, sign, f.Channels, endian)
}

// AudioOutput is a PCM line that loops a single buffer.
type AudioOutput interface {
	// BufferSize is the loop length, in samples, the line wants.
	BufferSize() int
	// Open prepares pcm for playback. It replaces nothing; callers Close first.
	Open(pcm []byte, format PCMFormat) error
	// Loop plays the open buffer continuously until Stop.
	Loop() error
	Stop() error
	// Close stops playback and releases the open buffer.
	Close() error
}

// HeadlessOutput is an AudioOutput that only records what it was asked to
// play. It backs tests and runs without a sound device.
type HeadlessOutput struct {
	mu       sync.Mutex
	size     int
	pcm      []byte
	format   PCMFormat
	open     bool
	playing  bool
	opens    int
	closes   int
	openFail error
}

func NewHeadlessOutput(bufferSize int) *HeadlessOutput {
	return &HeadlessOutput{size: bufferSize}
}

// FailOpen makes subsequent Open calls return err; nil restores success.
func (o *HeadlessOutput) FailOpen(err error) {
	o.mu.Lock()
	o.openFail = err
	o.mu.Unlock()
}

func (o *HeadlessOutput) BufferSize() int { return o.size }

func (o *HeadlessOutput) Open(pcm []byte, format PCMFormat) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openFail != nil {
		return o.openFail
	}
	o.pcm = append([]byte(nil), pcm...)
	o.format = format
	o.open = true
	o.opens++
	return nil
}

func (o *HeadlessOutput) Loop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.open {
		return fmt.Errorf("loop without an open line: %w", ErrAudioDeviceUnavailable)
	}
	o.playing = true
	return nil
}

func (o *HeadlessOutput) Stop() error {
	o.mu.Lock()
	o.playing = false
	o.mu.Unlock()
	return nil
}

func (o *HeadlessOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.open {
		o.closes++
	}
	o.playing = false
	o.open = false
	o.pcm = nil
	return nil
}

// PCM returns a copy of the open buffer.
func (o *HeadlessOutput) PCM() []byte {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]byte(nil), o.pcm...)
}

func (o *HeadlessOutput) Format() PCMFormat {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.format
}

func (o *HeadlessOutput) IsOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

func (o *HeadlessOutput) IsPlaying() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.playing
}

// Opens and Closes count successful Open calls and Close calls on an open line.
func (o *HeadlessOutput) Opens() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens
}

func (o *HeadlessOutput) Closes() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closes
}
