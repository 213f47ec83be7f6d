package main

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopReaderWraps(t *testing.T) {
	r := newLoopReader([]byte{1, 2, 3}, unsigned8Silence)
	p := make([]byte, 7)
	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, []byte{1, 2, 3, 1, 2, 3, 1}, p)

	n, err = r.Read(p[:2])
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{2, 3}, p[:2])
}

func TestLoopReaderSilence(t *testing.T) {
	r := newLoopReader(nil, unsigned8Silence)
	p := make([]byte, 4)
	_, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80, 0x80, 0x80, 0x80}, p)
}

func TestSigned8ToStereo16(t *testing.T) {
	out := signed8ToStereo16([]byte{0x7f, 0x80, 0})
	require.Len(t, out, 12)
	for i, want := range []int16{127 * 256, -128 * 256, 0} {
		left := int16(binary.LittleEndian.Uint16(out[i*4:]))
		right := int16(binary.LittleEndian.Uint16(out[i*4+2:]))
		assert.Equal(t, want, left)
		assert.Equal(t, want, right)
	}
}

func TestDecodeStereoI16ToInt8(t *testing.T) {
	pcm := make([]byte, 12)
	frames := [][2]int16{{32767, 32767}, {-32768, -32768}, {1000, -1000}}
	for i, f := range frames {
		binary.LittleEndian.PutUint16(pcm[i*4:], uint16(f[0]))
		binary.LittleEndian.PutUint16(pcm[i*4+2:], uint16(f[1]))
	}
	assert.Equal(t, []int8{127, -128, 0}, decodeStereoI16ToInt8(append(pcm, 0xff)))
	assert.Nil(t, decodeStereoI16ToInt8([]byte{1, 2}))
}

func TestPlotPoint(t *testing.T) {
	x, y := plotPoint(0, 100, 0, 1)
	assert.Equal(t, 0, x)
	assert.Equal(t, screenH/2, y)

	x, y = plotPoint(99, 100, 1, 1)
	assert.Equal(t, screenW-1, x)
	assert.Equal(t, plotMargin, y)

	_, y = plotPoint(50, 100, -5, 1)
	assert.Equal(t, screenH-1, y)
}
