package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignRows(t *testing.T) {
	assert.Equal(t, [][]int{{0, 3, 6}, {1, 4}, {2, 5}}, assignRows(3, 7))
	assert.Equal(t, [][]int{{0}, {1}}, assignRows(8, 2))
	assert.Equal(t, [][]int{{0, 1, 2}}, assignRows(0, 3))
	assert.Empty(t, assignRows(4, 0))
}

func TestCPUSamplerMatchesCombine(t *testing.T) {
	gen := NewWaveGenerator()
	for _, w := range []Wave{
		mustWave(t, Sin, 10, 1),
		mustWave(t, Cos, 17, 0.4),
		mustWave(t, Sin, 90, -0.7),
		mustWave(t, Cos, 5, 0.2),
		mustWave(t, Sin, 333, 0.9),
	} {
		_, err := gen.AddWave(w)
		require.NoError(t, err)
	}
	waves := gen.Waves()

	for _, workers := range []int{0, 1, 2, 16} {
		s := NewCPUSampler(workers)
		grid := NewSampleGrid(128, len(waves)+1)
		const gap, tm = 0.25, 0.731
		require.NoError(t, s.Sample(grid, waves, gap, tm))

		for i := 0; i < grid.Width(); i++ {
			x := float64(i) * gap
			assert.InDelta(t, gen.CombineWaves(x, tm), grid.Row(0)[i], epsilon)
			for y, e := range waves {
				assert.InDelta(t, e.Wave.At(x, tm), grid.Row(y+1)[i], epsilon)
			}
		}
		s.Close()
	}
}

func TestCPUSamplerEmpty(t *testing.T) {
	grid := NewSampleGrid(4, 1)
	copy(grid.Row(0), []float64{1, 2, 3, 4})
	require.NoError(t, NewCPUSampler(2).Sample(grid, nil, 1, 0))
	assert.Equal(t, []float64{0, 0, 0, 0}, grid.Row(0))
	assert.Equal(t, "cpu", NewCPUSampler(1).Name())
}
