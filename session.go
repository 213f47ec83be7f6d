package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync"

	"go.uber.org/zap"

	"wavesim/engine"
)

// session binds the shared wave set to the simulation clock, the audio loop
// and the analyzer, and carries out the commands bound to keys.
type session struct {
	gen      *engine.WaveGenerator
	sim      *engine.SimulationController
	sound    *engine.SoundController
	analyzer *engine.Analyzer
	step     int64
	export   string
	log      *zap.Logger

	mu       sync.Mutex
	selected engine.WaveID
}

func (s *session) togglePlay() {
	if s.sim.Status() == engine.Playing {
		s.sim.Pause()
		if s.analyzer != nil {
			s.analyzer.Pause()
		}
		return
	}
	s.sim.Start()
	if s.analyzer != nil {
		s.analyzer.Start()
	}
}

func (s *session) stop() {
	s.sim.Stop()
	if s.analyzer != nil {
		s.analyzer.Stop()
	}
}

// stepBy moves both clocks by n ticks, backwards when n is negative.
func (s *session) stepBy(n int64) {
	delta := n * s.step
	if err := s.sim.Step(delta); err != nil {
		s.log.Warn("step failed", zap.Error(err))
	}
	if s.analyzer != nil {
		s.analyzer.Step(delta)
	}
}

func (s *session) toggleSound() {
	if s.sound.Playing() {
		if err := s.sound.Stop(); err != nil {
			s.log.Warn("stopping sound", zap.Error(err))
		}
		return
	}
	if err := s.sound.Start(); err != nil {
		s.log.Warn("starting sound", zap.Error(err))
	}
}

func (s *session) applyPreset(name string) {
	ids, err := engine.ApplyPreset(s.gen, name)
	s.report("preset "+name, err)
	if len(ids) > 0 {
		s.selectID(ids[0])
	}
}

func (s *session) clear() {
	s.report("clear", s.gen.ClearWaves())
	s.selectID(0)
}

// addRandomWave adds a wave with a random kind, frequency and amplitude.
func (s *session) addRandomWave() {
	kind := engine.Sin
	if rand.Intn(2) == 1 {
		kind = engine.Cos
	}
	amplitude := math.Round((rand.Float64()*2-1)*100) / 100
	w, err := engine.NewWave(kind, 1+rand.Intn(randomMaxFrequency), amplitude)
	if err != nil {
		s.log.Error("random wave", zap.Error(err))
		return
	}
	id, err := s.gen.AddWave(w)
	s.report("add wave", err)
	if id != 0 {
		s.selectID(id)
	}
}

func (s *session) removeSelected() {
	e, ok := s.selectedWave()
	if !ok {
		return
	}
	_, err := s.gen.RemoveWave(e.ID)
	s.report("remove wave", err)
	s.selectNext(0)
}

// selectNext moves the selection by delta positions, wrapping around.
func (s *session) selectNext(delta int) {
	entries := s.gen.Waves()
	if len(entries) == 0 {
		s.selectID(0)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := 0
	for i, e := range entries {
		if e.ID == s.selected {
			idx = i + delta
			break
		}
	}
	idx = ((idx % len(entries)) + len(entries)) % len(entries)
	s.selected = entries[idx].ID
}

func (s *session) selectID(id engine.WaveID) {
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
}

// selectedWave returns the selected wave, falling back to the first one.
func (s *session) selectedWave() (engine.WaveEntry, bool) {
	s.mu.Lock()
	id := s.selected
	s.mu.Unlock()
	if w, ok := s.gen.Wave(id); ok {
		return engine.WaveEntry{ID: id, Wave: w}, true
	}
	entries := s.gen.Waves()
	if len(entries) == 0 {
		return engine.WaveEntry{}, false
	}
	s.selectID(entries[0].ID)
	return entries[0], true
}

func (s *session) adjustFrequency(delta int) {
	if e, ok := s.selectedWave(); ok {
		s.report("set frequency", s.gen.SetFrequency(e.ID, e.Wave.Frequency()+delta))
	}
}

func (s *session) adjustAmplitude(delta float64) {
	if e, ok := s.selectedWave(); ok {
		amplitude := math.Round((e.Wave.Amplitude()+delta)*100) / 100
		s.report("set amplitude", s.gen.SetAmplitude(e.ID, amplitude))
	}
}

func (s *session) switchKind() {
	if e, ok := s.selectedWave(); ok {
		s.report("switch kind", s.gen.SwitchKind(e.ID))
	}
}

// importFile replaces the wave set with the contents of path.
func (s *session) importFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	waves, err := engine.ImportWaves(f)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}
	ids, err := s.gen.ReplaceWaves(waves)
	if len(ids) > 0 {
		s.selectID(ids[0])
	}
	s.log.Info("imported waves", zap.String("path", path), zap.Int("waves", len(ids)))
	return err
}

// exportFile writes the wave set, in insertion order, to path.
func (s *session) exportFile(path string) error {
	if path == "" {
		return errors.New("no export path configured")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := engine.ExportWaves(f, s.sim.Waves()); err != nil {
		f.Close()
		return fmt.Errorf("exporting %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.log.Info("exported waves", zap.String("path", path), zap.Int("waves", s.gen.Len()))
	return nil
}

// report logs a failed command. Audio line failures leave the wave change
// applied, so they are only warnings.
func (s *session) report(op string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrAudioDeviceUnavailable):
		s.log.Warn(op+": audio unavailable", zap.Error(err))
	default:
		s.log.Error(op, zap.Error(err))
	}
}
