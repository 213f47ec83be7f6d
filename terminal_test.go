package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"wavesim/engine"
)

func TestConsoleDisplayPrintsOriginSamples(t *testing.T) {
	var buf bytes.Buffer
	d := newConsoleDisplay(&buf, time.Second)
	now := time.Unix(0, 0)
	d.now = func() time.Time { return now }

	samples := map[engine.SeriesKey][]float64{
		engine.WaveKey(2):  {-0.5, 1},
		engine.CombinedKey: {0.25, 0},
		engine.WaveKey(1):  {0.75, 0},
	}
	d.Update(samples, 10)
	assert.Equal(t, "t=10ms combined=+0.2500 wave#1=+0.7500 wave#2=-0.5000\n", buf.String())

	buf.Reset()
	now = now.Add(500 * time.Millisecond)
	d.Update(samples, 20)
	assert.Empty(t, buf.String(), "throttled")

	now = now.Add(time.Second)
	d.setRaw(true)
	d.Update(map[engine.SeriesKey][]float64{engine.CombinedKey: {0}}, 30)
	assert.Equal(t, "t=30ms combined=+0.0000\r\n", buf.String())
}

func TestConsoleDisplayShowsReading(t *testing.T) {
	var buf bytes.Buffer
	d := newConsoleDisplay(&buf, 0)
	d.ShowReading(engine.Reading{
		ElapsedMillis: 1,
		Index:         44,
		Volume:        -12,
		Levels:        []engine.FrequencyLevel{{Frequency: 10, Level: 3}, {Frequency: 20, Level: -4}},
	})
	assert.Equal(t, "analyzer t=1ms sample=44 volume=-12/127 10Hz=3 20Hz=-4\n", buf.String())
}
