package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// waveRecord is the exchange form of a wave. Pointer fields distinguish a
// missing field from a zero value.
type waveRecord struct {
	WaveType  *string      `json:"waveType"`
	Frequency *int         `json:"frequency"`
	Amplitude *float64     `json:"amplitude"`
	Color     *colorRecord `json:"color,omitempty"`
}

type colorRecord struct {
	Red   *int `json:"red"`
	Green *int `json:"green"`
	Blue  *int `json:"blue"`
}

// ExportWaves writes waves as a JSON array in order.
func ExportWaves(w io.Writer, waves []Wave) error {
	records := make([]waveRecord, len(waves))
	for i, wave := range waves {
		kind := wave.kind.String()
		freq := wave.frequency
		amp := wave.amplitude
		r, g, b := int(wave.color.Red), int(wave.color.Green), int(wave.color.Blue)
		records[i] = waveRecord{
			WaveType:  &kind,
			Frequency: &freq,
			Amplitude: &amp,
			Color:     &colorRecord{Red: &r, Green: &g, Blue: &b},
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding waves: %w", err)
	}
	return nil
}

// ImportWaves reads a JSON array written by ExportWaves. Structural problems
// wrap ErrMalformedWaveData; well-formed records that break a wave invariant
// wrap ErrInvalidWaveParameter. A record without a color gets a random one.
func ImportWaves(r io.Reader) ([]Wave, error) {
	var records []waveRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding waves: %w", errors.Join(ErrMalformedWaveData, err))
	}
	if records == nil {
		return nil, fmt.Errorf("decoding waves: expected an array: %w", ErrMalformedWaveData)
	}
	waves := make([]Wave, 0, len(records))
	for i, rec := range records {
		w, err := rec.wave()
		if err != nil {
			return nil, fmt.Errorf("wave %d: %w", i, err)
		}
		waves = append(waves, w)
	}
	return waves, nil
}

func (rec waveRecord) wave() (Wave, error) {
	switch {
	case rec.WaveType == nil:
		return Wave{}, fmt.Errorf("missing waveType: %w", ErrMalformedWaveData)
	case rec.Frequency == nil:
		return Wave{}, fmt.Errorf("missing frequency: %w", ErrMalformedWaveData)
	case rec.Amplitude == nil:
		return Wave{}, fmt.Errorf("missing amplitude: %w", ErrMalformedWaveData)
	}
	kind, err := ParseWaveKind(*rec.WaveType)
	if err != nil {
		return Wave{}, err
	}
	if rec.Color == nil {
		return NewWave(kind, *rec.Frequency, *rec.Amplitude)
	}
	color, err := rec.Color.color()
	if err != nil {
		return Wave{}, err
	}
	return NewWaveWithColor(kind, *rec.Frequency, *rec.Amplitude, color)
}

func (c colorRecord) color() (Color, error) {
	channels := [3]*int{c.Red, c.Green, c.Blue}
	var out [3]uint8
	for i, ch := range channels {
		if ch == nil || *ch < 0 || *ch > 255 {
			return Color{}, fmt.Errorf("color channels must be 0-255: %w", ErrMalformedWaveData)
		}
		out[i] = uint8(*ch)
	}
	return Color{Red: out[0], Green: out[1], Blue: out[2]}, nil
}
