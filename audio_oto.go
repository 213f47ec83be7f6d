package main

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"

	"wavesim/engine"
)

// unsigned8Silence is the midpoint of unsigned 8-bit PCM.
const unsigned8Silence = 0x80

// otoOutput plays the loop on a mono unsigned 8-bit oto context.
type otoOutput struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	size   int
}

func newOtoOutput(bufferSize int) (*otoOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   engine.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatUnsignedInt8,
		BufferSize:   otoBufferDuration,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready
	return &otoOutput{ctx: ctx, size: bufferSize}, nil
}

func (o *otoOutput) BufferSize() int { return o.size }

func (o *otoOutput) Open(pcm []byte, format engine.PCMFormat) error {
	if format != engine.LoopFormat {
		return fmt.Errorf("oto output: unsupported format %s: %w", format, engine.ErrAudioDeviceUnavailable)
	}
	unsigned := make([]byte, len(pcm))
	for i, b := range pcm {
		unsigned[i] = byte(int(int8(b)) + unsigned8Silence)
	}
	player := o.ctx.NewPlayer(newLoopReader(unsigned, unsigned8Silence))
	o.mu.Lock()
	o.player = player
	o.mu.Unlock()
	return nil
}

func (o *otoOutput) Loop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return fmt.Errorf("oto output: no open line: %w", engine.ErrAudioDeviceUnavailable)
	}
	o.player.Play()
	return nil
}

func (o *otoOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player != nil {
		o.player.Pause()
	}
	return nil
}

func (o *otoOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	return err
}
