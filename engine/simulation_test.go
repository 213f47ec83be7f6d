package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingDisplay struct {
	mu      sync.Mutex
	frames  int
	samples map[SeriesKey][]float64
	elapsed int64
}

func (d *recordingDisplay) Update(samples map[SeriesKey][]float64, elapsedMillis int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames++
	d.samples = samples
	d.elapsed = elapsedMillis
}

func (d *recordingDisplay) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

func (d *recordingDisplay) last() (map[SeriesKey][]float64, int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.samples, d.elapsed
}

func newTestSimulation(t *testing.T, totalLength float64, opts ...SimulationOption) (*SimulationController, *recordingDisplay) {
	t.Helper()
	display := &recordingDisplay{}
	opts = append([]SimulationOption{WithSimulationLogger(zaptest.NewLogger(t))}, opts...)
	c := NewSimulationController(NewWaveGenerator(), totalLength, display, opts...)
	t.Cleanup(c.Close)
	return c, display
}

func TestSimulationStepSamplesAtOrigin(t *testing.T) {
	c, display := newTestSimulation(t, 50)
	_, err := c.AddWave(mustWave(t, Sin, 10, 1))
	require.NoError(t, err)

	require.NoError(t, c.Step(0))
	samples, elapsed := display.last()
	assert.Zero(t, elapsed)
	require.Len(t, samples[CombinedKey], DefaultSampleCount)
	assert.InDelta(t, 0, samples[CombinedKey][0], epsilon)
}

func TestSimulationQuarterWavelength(t *testing.T) {
	c, display := newTestSimulation(t, 34.3, WithSampleCount(4))
	id, err := c.AddWave(mustWave(t, Sin, 10, 1))
	require.NoError(t, err)

	require.NoError(t, c.Step(0))
	samples, _ := display.last()
	require.Len(t, samples[WaveKey(id)], 4)
	assert.InDelta(t, -1, samples[WaveKey(id)][1], epsilon)
	assert.InDelta(t, 0, samples[WaveKey(id)][2], epsilon)
	assert.InDelta(t, 1, samples[WaveKey(id)][3], epsilon)
}

func TestSimulationSeriesKeys(t *testing.T) {
	c, display := newTestSimulation(t, 20, WithSampleCount(64), WithSampler(NewCPUSampler(2)))
	a, err := c.AddWave(mustWave(t, Sin, 10, 0.5))
	require.NoError(t, err)
	b, err := c.AddWave(mustWave(t, Cos, 35, -0.3))
	require.NoError(t, err)

	require.NoError(t, c.Step(123))
	samples, elapsed := display.last()
	assert.Equal(t, int64(123), elapsed)
	require.Len(t, samples, 3)
	assert.Contains(t, samples, CombinedKey)
	assert.Contains(t, samples, WaveKey(a))
	assert.Contains(t, samples, WaveKey(b))

	gap := c.TotalLength() / float64(c.SampleCount())
	for i := 0; i < c.SampleCount(); i++ {
		x := float64(i) * gap
		assert.InDelta(t, samples[WaveKey(a)][i]+samples[WaveKey(b)][i], samples[CombinedKey][i], epsilon)
		assert.InDelta(t, c.Generator().CombineWaves(x, 0.123), samples[CombinedKey][i], epsilon)
	}

	frame := c.LastFrame()
	assert.Equal(t, int64(123), frame.ElapsedMillis)
	assert.Len(t, frame.Waves, 2)
}

func TestSimulationEmptyWaveSet(t *testing.T) {
	c, display := newTestSimulation(t, 10, WithSampleCount(8))
	require.NoError(t, c.Simulate())
	samples, _ := display.last()
	require.Len(t, samples, 1)
	assert.Equal(t, make([]float64, 8), samples[CombinedKey])
}

func TestSimulationStartStop(t *testing.T) {
	c, display := newTestSimulation(t, 10, WithSampleCount(16), WithUpdateInterval(time.Millisecond))
	assert.Equal(t, Stopped, c.Status())

	c.Start()
	assert.Equal(t, Playing, c.Status())
	assert.Eventually(t, func() bool { return c.ElapsedMillis() > 0 }, time.Second, time.Millisecond)

	c.Stop()
	assert.Equal(t, Stopped, c.Status())
	assert.Zero(t, c.ElapsedMillis())

	frames := display.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frames, display.count(), "no frame may follow Stop")
	assert.Zero(t, c.ElapsedMillis())
}

func TestSimulationPauseKeepsElapsed(t *testing.T) {
	c, _ := newTestSimulation(t, 10, WithSampleCount(16), WithUpdateInterval(time.Millisecond))
	c.Start()
	assert.Eventually(t, func() bool { return c.ElapsedMillis() >= 3 }, time.Second, time.Millisecond)

	c.Pause()
	assert.Equal(t, Paused, c.Status())
	paused := c.ElapsedMillis()
	assert.Positive(t, paused)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, paused, c.ElapsedMillis())

	c.Start()
	assert.Eventually(t, func() bool { return c.ElapsedMillis() > paused }, time.Second, time.Millisecond)
}

func TestSimulationRestartReplacesSchedule(t *testing.T) {
	c, display := newTestSimulation(t, 10, WithSampleCount(16), WithUpdateInterval(time.Millisecond))
	c.Start()
	c.Start()
	c.Start()
	assert.Eventually(t, func() bool { return display.count() > 0 }, time.Second, time.Millisecond)
	c.Stop()

	frames := display.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frames, display.count())
}

// slowDisplay blocks for delay on every frame and records how far the clock
// was from wall time when the frame arrived.
type slowDisplay struct {
	mu    sync.Mutex
	delay time.Duration
	begin time.Time
	lags  []time.Duration
}

func (d *slowDisplay) Update(_ map[SeriesKey][]float64, elapsedMillis int64) {
	d.mu.Lock()
	d.lags = append(d.lags, time.Since(d.begin)-time.Duration(elapsedMillis)*time.Millisecond)
	d.mu.Unlock()
	time.Sleep(d.delay)
}

func (d *slowDisplay) frameLags() []time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]time.Duration(nil), d.lags...)
}

func TestSimulationKeepsPaceWithSlowDisplay(t *testing.T) {
	const interval = 10 * time.Millisecond
	display := &slowDisplay{delay: 25 * time.Millisecond}
	c := NewSimulationController(NewWaveGenerator(), 10, display,
		WithSampleCount(16),
		WithUpdateInterval(interval),
		WithSimulationLogger(zaptest.NewLogger(t)))
	t.Cleanup(c.Close)

	display.begin = time.Now()
	c.Start()
	time.Sleep(300 * time.Millisecond)
	c.Pause()

	lags := display.frameLags()
	require.NotEmpty(t, lags)
	for i, lag := range lags {
		assert.InDelta(t, 0, float64(lag), float64(interval+5*time.Millisecond), "frame %d lag %v", i, lag)
	}
	assert.GreaterOrEqual(t, c.ElapsedMillis(), int64(250))
}

func TestSimulationFirstFrameIsImmediate(t *testing.T) {
	c, display := newTestSimulation(t, 10, WithSampleCount(16), WithUpdateInterval(time.Hour))
	c.Start()
	assert.Eventually(t, func() bool { return display.count() == 1 }, time.Second, time.Millisecond)
	_, elapsed := display.last()
	assert.Equal(t, time.Hour.Milliseconds(), elapsed)
}

func TestSimulationStep(t *testing.T) {
	c, display := newTestSimulation(t, 10, WithSampleCount(16))

	require.NoError(t, c.Step(250))
	assert.Equal(t, int64(250), c.ElapsedMillis())
	assert.Equal(t, Stopped, c.Status())

	require.NoError(t, c.Step(-100))
	assert.Equal(t, int64(150), c.ElapsedMillis())

	require.NoError(t, c.Step(-1000))
	assert.Zero(t, c.ElapsedMillis())
	assert.Equal(t, 3, display.count())
}

func TestSimulationStatusString(t *testing.T) {
	assert.Equal(t, "STOPPED", Stopped.String())
	assert.Equal(t, "PLAYING", Playing.String())
	assert.Equal(t, "PAUSED", Paused.String())
	assert.Equal(t, "combined", CombinedKey.String())
	assert.Equal(t, "wave#4", WaveKey(4).String())
}
