package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"wavesim/engine"
)

var (
	axisColor     = color.RGBA{60, 60, 70, 255}
	combinedColor = color.RGBA{255, 255, 255, 255}
)

// Draw plots each wave in its own color with the combined signal on top,
// then the status overlay.
func (v *Viewer) Draw(screen *ebiten.Image) {
	samples, elapsed, reading := v.frames.snapshot()
	entries := v.s.gen.Waves()

	drawLine(screen, 0, screenH/2, screenW-1, screenH/2, axisColor)

	// The combined signal of n waves stays within [-n, n].
	scale := math.Max(1, float64(len(entries)))
	for _, e := range entries {
		c := e.Wave.Color()
		drawSeries(screen, samples[engine.WaveKey(e.ID)], scale, color.RGBA{c.Red, c.Green, c.Blue, 255})
	}
	drawSeries(screen, samples[engine.CombinedKey], scale, combinedColor)

	ebitenutil.DebugPrint(screen, v.statusText(elapsed, reading, entries))
}

func (v *Viewer) statusText(elapsed int64, reading engine.Reading, entries []engine.WaveEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  t=%.2fs  sound=%s\n", v.s.sim.Status(), float64(elapsed)/1000, onOff(v.s.sound.Playing()))
	if v.s.analyzer != nil {
		fmt.Fprintf(&b, "volume %s  sample %d\n", reading.VolumeLabel(), reading.Index)
		for _, l := range reading.Levels {
			fmt.Fprintf(&b, "  %4dHz %4d\n", l.Frequency, l.Level)
		}
	}
	selected, _ := v.s.selectedWave()
	for _, e := range entries {
		marker := " "
		if e.ID == selected.ID {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %s\n", marker, e.Wave)
	}
	b.WriteString(controlsSummary)
	return b.String()
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func drawSeries(screen *ebiten.Image, series []float64, scale float64, clr color.Color) {
	if len(series) == 0 {
		return
	}
	px, py := plotPoint(0, len(series), series[0], scale)
	for i := 1; i < len(series); i++ {
		x, y := plotPoint(i, len(series), series[i], scale)
		drawLine(screen, px, py, x, y, clr)
		px, py = x, y
	}
}

// drawLine plots a line segment using Bresenham's integer algorithm.
func drawLine(screen *ebiten.Image, x0, y0, x1, y1 int, clr color.Color) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		if x0 >= 0 && x0 < screenW && y0 >= 0 && y0 < screenH {
			screen.Set(x0, y0, clr)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}
