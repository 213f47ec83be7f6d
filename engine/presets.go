package engine

import "fmt"

// WaveSpec describes a wave before validation.
type WaveSpec struct {
	Kind      WaveKind
	Frequency int
	Amplitude float64
}

// Preset is a named canonical wave set.
type Preset struct {
	Name  string
	Waves []WaveSpec
}

// presets approximate classic shapes with their first odd or integer harmonics.
var presets = []Preset{
	{Name: "Pure Sine", Waves: []WaveSpec{
		{Sin, 10, 1.0},
	}},
	{Name: "Square Wave", Waves: []WaveSpec{
		{Sin, 10, 1.0},
		{Sin, 30, 0.33},
		{Sin, 50, 0.20},
		{Sin, 70, 0.14},
	}},
	{Name: "Triangle Wave", Waves: []WaveSpec{
		{Sin, 10, 1.0},
		{Sin, 30, 0.11},
		{Sin, 50, 0.04},
		{Sin, 70, 0.02},
	}},
	{Name: "Sawtooth Wave", Waves: []WaveSpec{
		{Sin, 10, 1.0},
		{Sin, 20, 0.5},
		{Sin, 30, 0.33},
		{Sin, 40, 0.25},
	}},
}

// PresetNames lists the catalog in display order.
func PresetNames() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// LookupPreset returns a copy of the named preset.
func LookupPreset(name string) (Preset, error) {
	for _, p := range presets {
		if p.Name == name {
			return Preset{Name: p.Name, Waves: append([]WaveSpec(nil), p.Waves...)}, nil
		}
	}
	return Preset{}, fmt.Errorf("preset %q: %w", name, ErrUnknownPreset)
}

// Build constructs the preset's waves with random colors.
func (p Preset) Build() ([]Wave, error) {
	waves := make([]Wave, 0, len(p.Waves))
	for _, spec := range p.Waves {
		w, err := NewWave(spec.Kind, spec.Frequency, spec.Amplitude)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		waves = append(waves, w)
	}
	return waves, nil
}

// ApplyPreset clears gen and adds the preset's waves one by one. Listener
// errors, such as an unavailable audio device, are returned after every wave
// has been added.
func ApplyPreset(gen *WaveGenerator, name string) ([]WaveID, error) {
	p, err := LookupPreset(name)
	if err != nil {
		return nil, err
	}
	waves, err := p.Build()
	if err != nil {
		return nil, err
	}
	var listenerErr error
	if err := gen.ClearWaves(); err != nil {
		listenerErr = err
	}
	ids := make([]WaveID, 0, len(waves))
	for _, w := range waves {
		id, err := gen.AddWave(w)
		if id == 0 {
			return ids, err
		}
		if err != nil {
			listenerErr = err
		}
		ids = append(ids, id)
	}
	return ids, listenerErr
}
