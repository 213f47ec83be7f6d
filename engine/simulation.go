package engine

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultSampleCount    = 1024
	DefaultUpdateInterval = 10 * time.Millisecond
)

// SimulationStatus is the state of the simulation clock.
type SimulationStatus int

const (
	Stopped SimulationStatus = iota
	Playing
	Paused
)

func (s SimulationStatus) String() string {
	switch s {
	case Stopped:
		return "STOPPED"
	case Playing:
		return "PLAYING"
	case Paused:
		return "PAUSED"
	default:
		return fmt.Sprintf("SimulationStatus(%d)", int(s))
	}
}

// SeriesKey names a sampled series: either the combined signal or one wave.
type SeriesKey struct {
	Combined bool
	ID       WaveID
}

// CombinedKey keys the aggregate signal.
var CombinedKey = SeriesKey{Combined: true}

// WaveKey keys the series of a single wave.
func WaveKey(id WaveID) SeriesKey { return SeriesKey{ID: id} }

func (k SeriesKey) String() string {
	if k.Combined {
		return "combined"
	}
	return fmt.Sprintf("wave#%d", k.ID)
}

// Display receives every sampled frame. Implementations must return quickly;
// Update runs on the simulation clock goroutine.
type Display interface {
	Update(samples map[SeriesKey][]float64, elapsedMillis int64)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(samples map[SeriesKey][]float64, elapsedMillis int64)

func (f DisplayFunc) Update(samples map[SeriesKey][]float64, elapsedMillis int64) {
	f(samples, elapsedMillis)
}

// Frame is the last sampled state, kept for late readers such as the viewer.
type Frame struct {
	Samples       map[SeriesKey][]float64
	Waves         []WaveEntry
	ElapsedMillis int64
}

// SimulationOption customizes a SimulationController.
type SimulationOption func(*SimulationController)

func WithSampleCount(n int) SimulationOption {
	return func(c *SimulationController) {
		if n > 0 {
			c.sampleCount = n
		}
	}
}

func WithUpdateInterval(d time.Duration) SimulationOption {
	return func(c *SimulationController) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithSampler(s Sampler) SimulationOption {
	return func(c *SimulationController) {
		if s != nil {
			c.sampler = s
		}
	}
}

func WithSimulationLogger(l *zap.Logger) SimulationOption {
	return func(c *SimulationController) {
		if l != nil {
			c.log = l
		}
	}
}

// SimulationController drives the simulation clock and samples the shared
// wave set over a spatial grid on every tick.
type SimulationController struct {
	// opMu serializes Start, Pause, Stop and Step so each one completes,
	// including cancellation of the old ticker, before the next begins.
	opMu sync.Mutex

	// sampleMu makes a tick and a Step mutually exclusive, from advancing
	// the clock through the display update.
	sampleMu sync.Mutex

	mu            sync.Mutex
	status        SimulationStatus
	elapsedMillis int64
	task          *periodicTask
	taskGen       uint64
	last          Frame

	gen         *WaveGenerator
	display     Display
	sampler     Sampler
	totalLength float64
	sampleCount int
	interval    time.Duration
	log         *zap.Logger
}

// NewSimulationController samples totalLength meters of gen. A nil display
// discards frames.
func NewSimulationController(gen *WaveGenerator, totalLength float64, display Display, opts ...SimulationOption) *SimulationController {
	c := &SimulationController{
		status:      Stopped,
		gen:         gen,
		display:     display,
		totalLength: totalLength,
		sampleCount: DefaultSampleCount,
		interval:    DefaultUpdateInterval,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sampler == nil {
		c.sampler = NewCPUSampler(0)
	}
	return c
}

func (c *SimulationController) Generator() *WaveGenerator { return c.gen }

func (c *SimulationController) AddWave(w Wave) (WaveID, error) { return c.gen.AddWave(w) }

func (c *SimulationController) RemoveWave(id WaveID) (bool, error) { return c.gen.RemoveWave(id) }

func (c *SimulationController) ClearWaves() error { return c.gen.ClearWaves() }

// Waves returns the ordered waves for export.
func (c *SimulationController) Waves() []Wave {
	entries := c.gen.Waves()
	waves := make([]Wave, len(entries))
	for i, e := range entries {
		waves[i] = e.Wave
	}
	return waves
}

func (c *SimulationController) Status() SimulationStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *SimulationController) ElapsedMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsedMillis
}

func (c *SimulationController) SampleCount() int    { return c.sampleCount }
func (c *SimulationController) TotalLength() float64 { return c.totalLength }

// LastFrame returns the most recently emitted frame.
func (c *SimulationController) LastFrame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Start begins ticking, replacing any schedule already running.
func (c *SimulationController) Start() {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.cancelTask()

	c.mu.Lock()
	c.taskGen++
	gen := c.taskGen
	c.task = startPeriodicTask(c.interval, func(periods int64) { c.tick(gen, periods) })
	c.status = Playing
	elapsed := c.elapsedMillis
	c.mu.Unlock()
	c.log.Debug("simulation started", zap.Int64("elapsed_ms", elapsed), zap.Duration("interval", c.interval))
}

// Pause stops ticking and keeps the elapsed time.
func (c *SimulationController) Pause() {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.cancelTask()

	c.mu.Lock()
	c.status = Paused
	elapsed := c.elapsedMillis
	c.mu.Unlock()
	c.log.Debug("simulation paused", zap.Int64("elapsed_ms", elapsed))
}

// Stop stops ticking and rewinds the clock to zero.
func (c *SimulationController) Stop() {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.cancelTask()

	c.mu.Lock()
	c.status = Stopped
	c.elapsedMillis = 0
	c.mu.Unlock()
	c.log.Debug("simulation stopped")
}

// Step advances the clock by deltaMillis and samples once, whatever the status.
func (c *SimulationController) Step(deltaMillis int64) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.sampleMu.Lock()
	defer c.sampleMu.Unlock()

	c.mu.Lock()
	c.elapsedMillis += deltaMillis
	if c.elapsedMillis < 0 {
		c.elapsedMillis = 0
	}
	elapsed := c.elapsedMillis
	c.mu.Unlock()
	return c.simulateAt(elapsed)
}

// cancelTask detaches the running task and waits for it to exit. Callers
// hold opMu but not mu, since an in-flight tick needs mu to finish.
func (c *SimulationController) cancelTask() {
	c.mu.Lock()
	task := c.task
	c.task = nil
	c.taskGen++
	c.mu.Unlock()
	task.stop()
}

// tick advances the clock by every period that came due and samples once.
func (c *SimulationController) tick(gen uint64, periods int64) {
	c.sampleMu.Lock()
	defer c.sampleMu.Unlock()

	c.mu.Lock()
	if c.taskGen != gen {
		c.mu.Unlock()
		return
	}
	c.elapsedMillis += periods * c.interval.Milliseconds()
	elapsed := c.elapsedMillis
	c.mu.Unlock()
	if err := c.simulateAt(elapsed); err != nil {
		c.log.Warn("simulation tick failed", zap.Error(err))
	}
}

// Simulate samples every wave and the combined signal at the current elapsed
// time and hands the frame to the display.
func (c *SimulationController) Simulate() error {
	c.sampleMu.Lock()
	defer c.sampleMu.Unlock()
	return c.simulateAt(c.ElapsedMillis())
}

func (c *SimulationController) simulateAt(elapsed int64) error {
	waves := c.gen.Waves()
	grid := NewSampleGrid(c.sampleCount, len(waves)+1)
	gap := c.totalLength / float64(c.sampleCount)
	if err := c.sampler.Sample(grid, waves, gap, float64(elapsed)/1000.0); err != nil {
		return fmt.Errorf("sampling with %s: %w", c.sampler.Name(), err)
	}

	samples := make(map[SeriesKey][]float64, len(waves)+1)
	samples[CombinedKey] = grid.Row(0)
	for i, e := range waves {
		samples[WaveKey(e.ID)] = grid.Row(i + 1)
	}

	c.mu.Lock()
	c.last = Frame{Samples: samples, Waves: waves, ElapsedMillis: elapsed}
	c.mu.Unlock()

	if c.display != nil {
		c.display.Update(samples, elapsed)
	}
	return nil
}

// Close stops the clock and releases the sampler.
func (c *SimulationController) Close() {
	c.Stop()
	c.sampler.Close()
}
