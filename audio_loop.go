package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"wavesim/engine"
)

// loopReader replays pcm forever. An empty buffer reads as silence.
type loopReader struct {
	mu      sync.Mutex
	pcm     []byte
	pos     int
	silence byte
}

func newLoopReader(pcm []byte, silence byte) *loopReader {
	return &loopReader{pcm: pcm, silence: silence}
}

func (r *loopReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pcm) == 0 {
		for i := range p {
			p[i] = r.silence
		}
		return len(p), nil
	}
	for i := range p {
		p[i] = r.pcm[r.pos]
		r.pos++
		if r.pos >= len(r.pcm) {
			r.pos = 0
		}
	}
	return len(p), nil
}

// loadLoopWAV decodes the WAV at path into a loop the analyzer can read. The
// stereo channels are averaged down to signed 8-bit mono at the loop rate.
func loadLoopWAV(path string) (engine.StaticAudio, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return engine.StaticAudio{}, err
	}

	stream, err := wav.DecodeWithSampleRate(engine.SampleRate, bytes.NewReader(raw))
	if err != nil {
		return engine.StaticAudio{}, fmt.Errorf("decoding %q: %w", path, err)
	}
	decoded, err := io.ReadAll(stream)
	if err != nil {
		return engine.StaticAudio{}, fmt.Errorf("reading decoded %q: %w", path, err)
	}
	samples := decodeStereoI16ToInt8(decoded)
	if len(samples) == 0 {
		return engine.StaticAudio{}, fmt.Errorf("wav %q has no usable samples", path)
	}
	return engine.StaticAudio{Buffer: samples}, nil
}

func decodeStereoI16ToInt8(pcm []byte) []int8 {
	frameCount := len(pcm) / 4
	if frameCount == 0 {
		return nil
	}
	samples := make([]int8, frameCount)
	for i := 0; i < frameCount; i++ {
		offset := i * 4
		left := int16(binary.LittleEndian.Uint16(pcm[offset : offset+2]))
		right := int16(binary.LittleEndian.Uint16(pcm[offset+2 : offset+4]))
		mid := (int32(left) + int32(right)) / 2
		samples[i] = int8(mid >> 8)
	}
	return samples
}
