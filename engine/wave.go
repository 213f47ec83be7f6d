package engine

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// SpeedOfSound is the propagation speed used to derive wavelengths, in m/s.
const SpeedOfSound = 343.0

// WaveKind selects the sinusoid used by a Wave.
type WaveKind int

const (
	Sin WaveKind = iota
	Cos
)

func (k WaveKind) String() string {
	switch k {
	case Sin:
		return "SIN"
	case Cos:
		return "COS"
	default:
		return fmt.Sprintf("WaveKind(%d)", int(k))
	}
}

func (k WaveKind) valid() bool { return k == Sin || k == Cos }

// ParseWaveKind accepts the names produced by WaveKind.String, case-insensitively.
func ParseWaveKind(s string) (WaveKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SIN":
		return Sin, nil
	case "COS":
		return Cos, nil
	}
	return 0, fmt.Errorf("wave type %q: %w", s, ErrMalformedWaveData)
}

// Color tags a wave for display. It never takes part in amplitude computation.
type Color struct {
	Red, Green, Blue uint8
}

// RandomColor draws every channel uniformly from 0-255.
func RandomColor() Color {
	return Color{
		Red:   uint8(rand.Intn(256)),
		Green: uint8(rand.Intn(256)),
		Blue:  uint8(rand.Intn(256)),
	}
}

func (c Color) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.Red, c.Green, c.Blue)
}

// Wave is a single sinusoidal component travelling at SpeedOfSound.
type Wave struct {
	kind      WaveKind
	frequency int
	amplitude float64
	color     Color
}

// NewWave validates the parameters and assigns a random color.
func NewWave(kind WaveKind, frequency int, amplitude float64) (Wave, error) {
	return NewWaveWithColor(kind, frequency, amplitude, RandomColor())
}

// NewWaveWithColor validates the parameters and keeps the supplied color.
func NewWaveWithColor(kind WaveKind, frequency int, amplitude float64, color Color) (Wave, error) {
	if !kind.valid() {
		return Wave{}, fmt.Errorf("kind %v: %w", kind, ErrInvalidWaveParameter)
	}
	if err := checkFrequency(frequency); err != nil {
		return Wave{}, err
	}
	if err := checkAmplitude(amplitude); err != nil {
		return Wave{}, err
	}
	return Wave{kind: kind, frequency: frequency, amplitude: amplitude, color: color}, nil
}

func checkFrequency(frequency int) error {
	if frequency <= 0 {
		return fmt.Errorf("frequency %d must be greater than 0: %w", frequency, ErrInvalidWaveParameter)
	}
	return nil
}

func checkAmplitude(amplitude float64) error {
	// NaN fails both comparisons, so test for the valid range instead.
	if !(amplitude >= -1 && amplitude <= 1) {
		return fmt.Errorf("amplitude %v must be between -1 and 1: %w", amplitude, ErrInvalidWaveParameter)
	}
	return nil
}

func (w Wave) Kind() WaveKind     { return w.kind }
func (w Wave) Frequency() int     { return w.frequency }
func (w Wave) Amplitude() float64 { return w.amplitude }
func (w Wave) Color() Color       { return w.color }

// Wavelength returns SpeedOfSound/frequency in meters.
func (w Wave) Wavelength() float64 {
	return SpeedOfSound / float64(w.frequency)
}

// At returns the displacement at position x (meters) and time t (seconds):
// A * f(2*pi*freq*t - 2*pi*x/lambda).
func (w Wave) At(x, t float64) float64 {
	omega := 2 * math.Pi * float64(w.frequency)
	k := 2 * math.Pi / w.Wavelength()
	phase := omega*t - k*x
	if w.kind == Cos {
		return w.amplitude * math.Cos(phase)
	}
	return w.amplitude * math.Sin(phase)
}

// SwitchKind toggles between Sin and Cos.
func (w *Wave) SwitchKind() {
	if w.kind == Sin {
		w.kind = Cos
	} else {
		w.kind = Sin
	}
}

func (w *Wave) SetFrequency(frequency int) error {
	if err := checkFrequency(frequency); err != nil {
		return err
	}
	w.frequency = frequency
	return nil
}

func (w *Wave) SetAmplitude(amplitude float64) error {
	if err := checkAmplitude(amplitude); err != nil {
		return err
	}
	w.amplitude = amplitude
	return nil
}

func (w Wave) String() string {
	return fmt.Sprintf("%s %dHz A=%.2f %s", w.kind, w.frequency, w.amplitude, w.color)
}
