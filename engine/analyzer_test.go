package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type readingLog struct {
	mu       sync.Mutex
	readings []Reading
}

func (l *readingLog) ShowReading(r Reading) {
	l.mu.Lock()
	l.readings = append(l.readings, r)
	l.mu.Unlock()
}

func (l *readingLog) lastReading() (Reading, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.readings) == 0 {
		return Reading{}, 0
	}
	return l.readings[len(l.readings)-1], len(l.readings)
}

func rampAudio(n int) StaticAudio {
	buf := make([]int8, n)
	for i := range buf {
		buf[i] = int8(i % 128)
	}
	return StaticAudio{Buffer: buf}
}

func TestBufferIndex(t *testing.T) {
	tests := []struct {
		elapsed int64
		length  int
		want    int
	}{
		{0, 100, 0},
		{1, SampleRate, 44},
		{1000, SampleRate, 0},
		{1500, SampleRate, 22050},
		{1, 10, 4},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BufferIndex(tt.elapsed, tt.length), "BufferIndex(%d, %d)", tt.elapsed, tt.length)
	}
}

func TestAnalyzerStep(t *testing.T) {
	log := &readingLog{}
	a := NewAnalyzer(rampAudio(100), log, zaptest.NewLogger(t))

	r := a.Step(1)
	assert.Equal(t, int64(1), r.ElapsedMillis)
	assert.Equal(t, 44, r.Index)
	assert.Equal(t, int8(44), r.Volume)
	assert.Nil(t, r.Levels)
	assert.Equal(t, "44/127", r.VolumeLabel())
	assert.False(t, a.Running())

	shown, n := log.lastReading()
	assert.Equal(t, 1, n)
	assert.Equal(t, r, shown)
	assert.Equal(t, r, a.LastReading())
}

func TestAnalyzerReadsSoundController(t *testing.T) {
	s, gen, _ := newTestSound(t, SampleRate)
	_, err := gen.AddWave(mustWave(t, Cos, 10, 1))
	require.NoError(t, err)

	a := NewAnalyzer(s, nil, zaptest.NewLogger(t))
	r := a.Step(0)
	assert.Equal(t, int8(MaxVolume), r.Volume)
	assert.Equal(t, []FrequencyLevel{{Frequency: 10, Level: MaxVolume}}, r.Levels)

	// Half a period later the cosine is at its trough.
	r = a.Step(50)
	assert.Equal(t, 2205, r.Index)
	assert.Equal(t, int8(-MaxVolume), r.Volume)
}

func TestAnalyzerStopShowsZero(t *testing.T) {
	s, gen, _ := newTestSound(t, SampleRate)
	_, err := gen.AddWave(mustWave(t, Cos, 10, 1))
	require.NoError(t, err)

	log := &readingLog{}
	a := NewAnalyzer(s, log, zaptest.NewLogger(t))
	a.Step(7)
	a.Stop()

	r, _ := log.lastReading()
	assert.Zero(t, r.ElapsedMillis)
	assert.Zero(t, r.Volume)
	assert.Equal(t, []FrequencyLevel{{Frequency: 10}}, r.Levels)
	assert.Zero(t, a.ElapsedMillis())
}

func TestAnalyzerStartPause(t *testing.T) {
	log := &readingLog{}
	a := NewAnalyzer(rampAudio(SampleRate), log, zaptest.NewLogger(t))
	t.Cleanup(a.Stop)

	a.Start()
	assert.True(t, a.Running())
	assert.Eventually(t, func() bool { return a.ElapsedMillis() >= 3 }, time.Second, time.Millisecond)

	a.Pause()
	assert.False(t, a.Running())
	paused := a.ElapsedMillis()
	_, shown := log.lastReading()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, paused, a.ElapsedMillis())
	_, after := log.lastReading()
	assert.Equal(t, shown, after)

	r := a.LastReading()
	assert.Equal(t, paused, r.ElapsedMillis)
	assert.Equal(t, BufferIndex(paused, SampleRate), r.Index)
}

func TestAnalyzerEmptySource(t *testing.T) {
	a := NewAnalyzer(StaticAudio{}, nil, nil)
	r := a.Step(10)
	assert.Zero(t, r.Index)
	assert.Zero(t, r.Volume)
}

type slowReadings struct {
	mu    sync.Mutex
	delay time.Duration
	begin time.Time
	lags  []time.Duration
}

func (d *slowReadings) ShowReading(r Reading) {
	d.mu.Lock()
	d.lags = append(d.lags, time.Since(d.begin)-time.Duration(r.ElapsedMillis)*time.Millisecond)
	d.mu.Unlock()
	time.Sleep(d.delay)
}

func TestAnalyzerKeepsPaceWithSlowDisplay(t *testing.T) {
	display := &slowReadings{delay: 3 * time.Millisecond}
	a := NewAnalyzer(rampAudio(SampleRate), display, zaptest.NewLogger(t))
	t.Cleanup(a.Pause)

	display.begin = time.Now()
	a.Start()
	time.Sleep(300 * time.Millisecond)
	a.Pause()

	display.mu.Lock()
	lags := append([]time.Duration(nil), display.lags...)
	display.mu.Unlock()
	require.NotEmpty(t, lags)
	for i, lag := range lags {
		assert.InDelta(t, 0, float64(lag), float64(6*time.Millisecond), "reading %d lag %v", i, lag)
	}
	assert.GreaterOrEqual(t, a.ElapsedMillis(), int64(290))
	r := a.LastReading()
	assert.Equal(t, BufferIndex(r.ElapsedMillis, SampleRate), r.Index)
}
