package main

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"wavesim/engine"
)

// frameStore keeps the latest simulation frame and analyzer reading for the
// render loop. Both callbacks run on engine clock goroutines.
type frameStore struct {
	mu      sync.Mutex
	samples map[engine.SeriesKey][]float64
	elapsed int64
	reading engine.Reading
}

func (f *frameStore) Update(samples map[engine.SeriesKey][]float64, elapsedMillis int64) {
	f.mu.Lock()
	f.samples = samples
	f.elapsed = elapsedMillis
	f.mu.Unlock()
}

func (f *frameStore) ShowReading(r engine.Reading) {
	f.mu.Lock()
	f.reading = r
	f.mu.Unlock()
}

func (f *frameStore) snapshot() (map[engine.SeriesKey][]float64, int64, engine.Reading) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.samples, f.elapsed, f.reading
}

// Viewer is the ebiten game that plots every sampled series and forwards key
// presses to the session.
type Viewer struct {
	s       *session
	frames  *frameStore
	presets []string
}

func newViewer(s *session, frames *frameStore) *Viewer {
	return &Viewer{s: s, frames: frames, presets: engine.PresetNames()}
}

// Update handles key presses; sampling happens on the simulation clock.
func (v *Viewer) Update() error {
	for _, cmd := range pressedCommands() {
		if v.s.handleCommand(cmd, v.presets) {
			return ebiten.Termination
		}
	}
	return nil
}

// Layout reports the logical screen size used by Ebiten.
func (v *Viewer) Layout(_, _ int) (int, int) { return screenW, screenH }

func runViewer(v *Viewer) error {
	ebiten.SetWindowSize(screenW*windowScale, screenH*windowScale)
	ebiten.SetWindowTitle("Wave Superposition")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(v)
}
