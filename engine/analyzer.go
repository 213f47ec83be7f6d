package engine

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AnalyzerPollInterval is the analyzer's polling period.
const AnalyzerPollInterval = time.Millisecond

// AudioSource is the buffer pair the analyzer reads.
type AudioSource interface {
	Snapshot() AudioSnapshot
}

// StaticAudio serves a fixed loop buffer, such as one decoded from a file.
type StaticAudio AudioSnapshot

func (s StaticAudio) Snapshot() AudioSnapshot { return AudioSnapshot(s) }

// Reading is what the analyzer shows for one poll.
type Reading struct {
	ElapsedMillis int64
	Index         int
	Volume        int8
	Levels        []FrequencyLevel
}

// VolumeLabel renders the volume as "N/127".
func (r Reading) VolumeLabel() string {
	return fmt.Sprintf("%d/%d", r.Volume, MaxVolume)
}

// AnalyzerDisplay receives every reading.
type AnalyzerDisplay interface {
	ShowReading(r Reading)
}

// AnalyzerDisplayFunc adapts a function to AnalyzerDisplay.
type AnalyzerDisplayFunc func(r Reading)

func (f AnalyzerDisplayFunc) ShowReading(r Reading) { f(r) }

// Analyzer polls an AudioSource at playback speed, mapping its own elapsed
// time onto loop buffer indices.
type Analyzer struct {
	opMu sync.Mutex
	// readMu keeps a poll and a Step from interleaving.
	readMu sync.Mutex

	mu            sync.Mutex
	elapsedMillis int64
	task          *periodicTask
	taskGen       uint64
	last          Reading

	source   AudioSource
	display  AnalyzerDisplay
	interval time.Duration
	log      *zap.Logger
}

func NewAnalyzer(source AudioSource, display AnalyzerDisplay, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		source:   source,
		display:  display,
		interval: AnalyzerPollInterval,
		log:      log,
	}
}

func (a *Analyzer) ElapsedMillis() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.elapsedMillis
}

func (a *Analyzer) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.task != nil
}

// LastReading returns the most recent reading shown.
func (a *Analyzer) LastReading() Reading {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Start polls every millisecond, replacing any running schedule.
func (a *Analyzer) Start() {
	a.opMu.Lock()
	defer a.opMu.Unlock()
	a.cancelTask()

	a.mu.Lock()
	a.taskGen++
	gen := a.taskGen
	a.task = startPeriodicTask(a.interval, func(periods int64) { a.poll(gen, periods) })
	elapsed := a.elapsedMillis
	a.mu.Unlock()
	a.log.Debug("analyzer started", zap.Int64("elapsed_ms", elapsed))
}

// Pause stops polling and keeps the elapsed time.
func (a *Analyzer) Pause() {
	a.opMu.Lock()
	defer a.opMu.Unlock()
	a.cancelTask()
}

// Stop stops polling, rewinds to zero and shows an all-zero reading.
func (a *Analyzer) Stop() {
	a.opMu.Lock()
	defer a.opMu.Unlock()
	a.cancelTask()

	a.readMu.Lock()
	defer a.readMu.Unlock()
	a.mu.Lock()
	a.elapsedMillis = 0
	zero := Reading{Levels: zeroLevels(a.last.Levels)}
	a.last = zero
	a.mu.Unlock()
	a.show(zero)
	a.log.Debug("analyzer stopped")
}

// Step advances by ms and reads once without starting the schedule.
func (a *Analyzer) Step(ms int64) Reading {
	a.opMu.Lock()
	defer a.opMu.Unlock()
	a.readMu.Lock()
	defer a.readMu.Unlock()

	a.mu.Lock()
	a.elapsedMillis += ms
	if a.elapsedMillis < 0 {
		a.elapsedMillis = 0
	}
	elapsed := a.elapsedMillis
	a.mu.Unlock()
	return a.readAt(elapsed)
}

func (a *Analyzer) cancelTask() {
	a.mu.Lock()
	task := a.task
	a.task = nil
	a.taskGen++
	a.mu.Unlock()
	task.stop()
}

func (a *Analyzer) poll(gen uint64, periods int64) {
	a.readMu.Lock()
	defer a.readMu.Unlock()

	a.mu.Lock()
	if a.taskGen != gen {
		a.mu.Unlock()
		return
	}
	a.elapsedMillis += periods * a.interval.Milliseconds()
	elapsed := a.elapsedMillis
	a.mu.Unlock()
	a.readAt(elapsed)
}

func (a *Analyzer) readAt(elapsed int64) Reading {
	snap := a.source.Snapshot()
	r := Reading{ElapsedMillis: elapsed}
	if n := len(snap.Buffer); n > 0 {
		r.Index = BufferIndex(elapsed, n)
		r.Volume = snap.Buffer[r.Index]
		r.Levels = snap.Frequencies.Levels(r.Index)
	}

	a.mu.Lock()
	a.last = r
	a.mu.Unlock()
	a.show(r)
	return r
}

func (a *Analyzer) show(r Reading) {
	if a.display != nil {
		a.display.ShowReading(r)
	}
}

// BufferIndex maps a playback time onto an index of a loop of length samples.
func BufferIndex(elapsedMillis int64, length int) int {
	if length <= 0 {
		return 0
	}
	idx := elapsedMillis * SampleRate / 1000 % int64(length)
	if idx < 0 {
		idx += int64(length)
	}
	return int(idx)
}

func zeroLevels(levels []FrequencyLevel) []FrequencyLevel {
	if len(levels) == 0 {
		return nil
	}
	zero := make([]FrequencyLevel, len(levels))
	for i, l := range levels {
		zero[i] = FrequencyLevel{Frequency: l.Frequency}
	}
	return zero
}
