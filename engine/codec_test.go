package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	a, err := NewWaveWithColor(Sin, 10, 1, Color{Red: 255, Green: 0, Blue: 12})
	require.NoError(t, err)
	b, err := NewWaveWithColor(Cos, 440, -0.35, Color{Red: 1, Green: 2, Blue: 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportWaves(&buf, []Wave{a, b}))
	assert.Contains(t, buf.String(), `"waveType": "COS"`)
	assert.Contains(t, buf.String(), `"red": 255`)

	got, err := ImportWaves(&buf)
	require.NoError(t, err)
	assert.Equal(t, []Wave{a, b}, got)
}

func TestCodecEmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportWaves(&buf, nil))
	got, err := ImportWaves(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestImportWithoutColor(t *testing.T) {
	got, err := ImportWaves(strings.NewReader(`[{"waveType":"SIN","frequency":20,"amplitude":0.5}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Sin, got[0].Kind())
	assert.Equal(t, 20, got[0].Frequency())
	assert.Equal(t, 0.5, got[0].Amplitude())
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"syntax", `[{"waveType":`, ErrMalformedWaveData},
		{"not an array", `{"waveType":"SIN"}`, ErrMalformedWaveData},
		{"null", `null`, ErrMalformedWaveData},
		{"missing type", `[{"frequency":10,"amplitude":1}]`, ErrMalformedWaveData},
		{"missing frequency", `[{"waveType":"SIN","amplitude":1}]`, ErrMalformedWaveData},
		{"missing amplitude", `[{"waveType":"SIN","frequency":10}]`, ErrMalformedWaveData},
		{"unknown type", `[{"waveType":"SAW","frequency":10,"amplitude":1}]`, ErrMalformedWaveData},
		{"bad color", `[{"waveType":"SIN","frequency":10,"amplitude":1,"color":{"red":300,"green":0,"blue":0}}]`, ErrMalformedWaveData},
		{"wrong field type", `[{"waveType":"SIN","frequency":"ten","amplitude":1}]`, ErrMalformedWaveData},
		{"amplitude out of range", `[{"waveType":"SIN","frequency":10,"amplitude":2}]`, ErrInvalidWaveParameter},
		{"zero frequency", `[{"waveType":"COS","frequency":0,"amplitude":1}]`, ErrInvalidWaveParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportWaves(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
