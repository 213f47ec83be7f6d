package engine

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SampleGrid stores one sampled series per row: row 0 is the combined
// signal, row i+1 belongs to the i-th wave.
type SampleGrid struct {
	width, rows int
	data        []float64
}

func NewSampleGrid(width, rows int) *SampleGrid {
	return &SampleGrid{width: width, rows: rows, data: make([]float64, width*rows)}
}

func (g *SampleGrid) Width() int { return g.width }
func (g *SampleGrid) Rows() int  { return g.rows }

// Row returns a view of row y.
func (g *SampleGrid) Row(y int) []float64 {
	return g.data[y*g.width : (y+1)*g.width]
}

// sumInto writes the column sums of the wave rows into the combined row,
// adding in wave order so the result matches WaveGenerator.CombineWaves.
func (g *SampleGrid) sumInto() {
	combined := g.Row(0)
	for x := range combined {
		combined[x] = 0
	}
	for y := 1; y < g.rows; y++ {
		r := g.Row(y)
		for x, v := range r {
			combined[x] += v
		}
	}
}

// Sampler evaluates every wave at positions x = i*gap, i in [0, width), at time t.
type Sampler interface {
	Sample(grid *SampleGrid, waves []WaveEntry, gap, t float64) error
	Name() string
	Close()
}

// cpuSampler spreads wave rows across worker goroutines.
type cpuSampler struct {
	workers int
}

// NewCPUSampler returns a sampler using up to workers goroutines; workers < 1
// means one per CPU.
func NewCPUSampler(workers int) Sampler {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &cpuSampler{workers: workers}
}

func (s *cpuSampler) Name() string { return "cpu" }

func (s *cpuSampler) Close() {}

func (s *cpuSampler) Sample(grid *SampleGrid, waves []WaveEntry, gap, t float64) error {
	var eg errgroup.Group
	for _, rows := range assignRows(s.workers, len(waves)) {
		eg.Go(func() error {
			for _, idx := range rows {
				fillRow(grid.Row(idx+1), waves[idx].Wave, gap, t)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	grid.sumInto()
	return nil
}

func fillRow(dst []float64, w Wave, gap, t float64) {
	for i := range dst {
		dst[i] = w.At(float64(i)*gap, t)
	}
}

// assignRows distributes row indices across workers in round robin fashion,
// omitting workers that receive nothing.
func assignRows(workerCount, rowCount int) [][]int {
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > rowCount {
		workerCount = rowCount
	}
	assigned := make([][]int, workerCount)
	for idx := 0; idx < rowCount; idx++ {
		w := idx % workerCount
		assigned[w] = append(assigned[w], idx)
	}
	return assigned
}
