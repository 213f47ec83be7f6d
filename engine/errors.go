package engine

import "errors"

var (
	// ErrInvalidWaveParameter reports an amplitude outside [-1, 1], a
	// non-positive frequency or an unknown wave kind.
	ErrInvalidWaveParameter = errors.New("invalid wave parameter")

	// ErrAudioDeviceUnavailable reports that no PCM output line could be acquired.
	ErrAudioDeviceUnavailable = errors.New("audio device unavailable")

	// ErrMalformedWaveData reports import data that cannot describe a wave at all.
	ErrMalformedWaveData = errors.New("malformed wave data")

	// ErrUnknownPreset reports a preset name missing from the catalog.
	ErrUnknownPreset = errors.New("unknown preset")

	// ErrUnknownWave reports a WaveID the generator does not hold.
	ErrUnknownWave = errors.New("unknown wave")
)
