package engine

import (
	"errors"
	"fmt"
	"sync"
)

// WaveID identifies a wave held by a WaveGenerator. IDs are never reused, so
// a wave keeps its identity while its frequency or amplitude change.
type WaveID uint64

// WaveEntry is a read-only view of one held wave.
type WaveEntry struct {
	ID   WaveID
	Wave Wave
}

// WaveGenerator owns the ordered wave set shared by the simulation sampler and
// the audio synthesizer. Listeners registered with OnChange run after every
// mutation so that both consumers always read the same waves.
type WaveGenerator struct {
	mu        sync.RWMutex
	entries   []WaveEntry
	nextID    WaveID
	listeners []func() error
}

func NewWaveGenerator() *WaveGenerator {
	return &WaveGenerator{nextID: 1}
}

// OnChange registers fn to run after each mutation, outside the generator lock.
func (g *WaveGenerator) OnChange(fn func() error) {
	g.mu.Lock()
	g.listeners = append(g.listeners, fn)
	g.mu.Unlock()
}

// notify runs listeners and joins their errors. The mutation that triggered
// it has already been applied and stays applied.
func (g *WaveGenerator) notify() error {
	g.mu.RLock()
	listeners := append([]func() error(nil), g.listeners...)
	g.mu.RUnlock()
	var errs []error
	for _, fn := range listeners {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AddWave appends w and returns its identity. Duplicates are allowed. A
// non-nil error comes from a listener; the wave is held regardless.
func (g *WaveGenerator) AddWave(w Wave) (WaveID, error) {
	if !w.kind.valid() || checkFrequency(w.frequency) != nil || checkAmplitude(w.amplitude) != nil {
		return 0, fmt.Errorf("adding %v: %w", w, ErrInvalidWaveParameter)
	}
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.entries = append(g.entries, WaveEntry{ID: id, Wave: w})
	g.mu.Unlock()
	return id, g.notify()
}

// RemoveWave drops the wave with the given identity. It reports false when no
// such wave is held.
func (g *WaveGenerator) RemoveWave(id WaveID) (bool, error) {
	g.mu.Lock()
	idx := g.indexLocked(id)
	if idx < 0 {
		g.mu.Unlock()
		return false, nil
	}
	g.entries = append(g.entries[:idx], g.entries[idx+1:]...)
	g.mu.Unlock()
	return true, g.notify()
}

// ClearWaves empties the set.
func (g *WaveGenerator) ClearWaves() error {
	g.mu.Lock()
	g.entries = nil
	g.mu.Unlock()
	return g.notify()
}

// ReplaceWaves swaps the whole set for waves in one mutation.
func (g *WaveGenerator) ReplaceWaves(waves []Wave) ([]WaveID, error) {
	for _, w := range waves {
		if !w.kind.valid() || checkFrequency(w.frequency) != nil || checkAmplitude(w.amplitude) != nil {
			return nil, fmt.Errorf("replacing with %v: %w", w, ErrInvalidWaveParameter)
		}
	}
	ids := make([]WaveID, len(waves))
	g.mu.Lock()
	g.entries = make([]WaveEntry, len(waves))
	for i, w := range waves {
		ids[i] = g.nextID
		g.entries[i] = WaveEntry{ID: g.nextID, Wave: w}
		g.nextID++
	}
	g.mu.Unlock()
	return ids, g.notify()
}

// Update applies fn to the held wave with the given identity. fn must
// validate through the Wave setters; if it fails the wave is left unchanged.
func (g *WaveGenerator) Update(id WaveID, fn func(w *Wave) error) error {
	g.mu.Lock()
	idx := g.indexLocked(id)
	if idx < 0 {
		g.mu.Unlock()
		return fmt.Errorf("wave %d: %w", id, ErrUnknownWave)
	}
	w := g.entries[idx].Wave
	if err := fn(&w); err != nil {
		g.mu.Unlock()
		return err
	}
	g.entries[idx].Wave = w
	g.mu.Unlock()
	return g.notify()
}

func (g *WaveGenerator) SetAmplitude(id WaveID, amplitude float64) error {
	return g.Update(id, func(w *Wave) error { return w.SetAmplitude(amplitude) })
}

func (g *WaveGenerator) SetFrequency(id WaveID, frequency int) error {
	return g.Update(id, func(w *Wave) error { return w.SetFrequency(frequency) })
}

func (g *WaveGenerator) SwitchKind(id WaveID) error {
	return g.Update(id, func(w *Wave) error {
		w.SwitchKind()
		return nil
	})
}

func (g *WaveGenerator) indexLocked(id WaveID) int {
	for i, e := range g.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Waves returns a copy of the held waves in insertion order.
func (g *WaveGenerator) Waves() []WaveEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]WaveEntry(nil), g.entries...)
}

// Wave looks up a single held wave.
func (g *WaveGenerator) Wave(id WaveID) (Wave, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if idx := g.indexLocked(id); idx >= 0 {
		return g.entries[idx].Wave, true
	}
	return Wave{}, false
}

func (g *WaveGenerator) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// CombineWaves returns the linear superposition of all held waves at (x, t).
func (g *WaveGenerator) CombineWaves(x, t float64) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return combine(g.entries, x, t)
}

func combine(entries []WaveEntry, x, t float64) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Wave.At(x, t)
	}
	return sum
}
