package main

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"wavesim/engine"
)

// ebitenOutput plays the loop through ebiten's audio context, which wants
// 16-bit little-endian stereo. Only one context may exist per process.
type ebitenOutput struct {
	mu     sync.Mutex
	ctx    *audio.Context
	player *audio.Player
	size   int
}

func newEbitenOutput(bufferSize int) *ebitenOutput {
	return &ebitenOutput{ctx: audio.NewContext(engine.SampleRate), size: bufferSize}
}

func (o *ebitenOutput) BufferSize() int { return o.size }

func (o *ebitenOutput) Open(pcm []byte, format engine.PCMFormat) error {
	if format != engine.LoopFormat {
		return fmt.Errorf("ebiten output: unsupported format %s: %w", format, engine.ErrAudioDeviceUnavailable)
	}
	stereo := signed8ToStereo16(pcm)
	loop := audio.NewInfiniteLoop(bytes.NewReader(stereo), int64(len(stereo)))
	player, err := o.ctx.NewPlayer(loop)
	if err != nil {
		return fmt.Errorf("ebiten player: %w", err)
	}
	o.mu.Lock()
	o.player = player
	o.mu.Unlock()
	return nil
}

func (o *ebitenOutput) Loop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return fmt.Errorf("ebiten output: no open line: %w", engine.ErrAudioDeviceUnavailable)
	}
	o.player.Play()
	return nil
}

func (o *ebitenOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player != nil {
		o.player.Pause()
	}
	return nil
}

func (o *ebitenOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	return err
}

// signed8ToStereo16 widens signed 8-bit mono samples to 16-bit stereo frames.
func signed8ToStereo16(pcm []byte) []byte {
	out := make([]byte, len(pcm)*4)
	for i, b := range pcm {
		v := int16(int8(b)) * pcm16Scale
		base := i * 4
		out[base] = byte(v)
		out[base+1] = byte(v >> 8)
		out[base+2] = out[base]
		out[base+3] = out[base+1]
	}
	return out
}
