package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"wavesim/engine"
)

// consoleDisplay prints the x=0 sample of every series and the analyzer
// reading, at most once per interval each.
type consoleDisplay struct {
	mu        sync.Mutex
	w         io.Writer
	interval  time.Duration
	eol       string
	lastFrame time.Time
	lastRead  time.Time
	now       func() time.Time
}

func newConsoleDisplay(w io.Writer, interval time.Duration) *consoleDisplay {
	return &consoleDisplay{w: w, interval: interval, eol: "\n", now: time.Now}
}

// setRaw switches line endings for a terminal in raw mode.
func (d *consoleDisplay) setRaw(raw bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if raw {
		d.eol = "\r\n"
	} else {
		d.eol = "\n"
	}
}

func (d *consoleDisplay) Update(samples map[engine.SeriesKey][]float64, elapsedMillis int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.due(&d.lastFrame) {
		return
	}
	keys := make([]engine.SeriesKey, 0, len(samples))
	for k := range samples {
		keys = append(keys, k)
	}
	// Combined first, then waves by identity.
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Combined != keys[j].Combined {
			return keys[i].Combined
		}
		return keys[i].ID < keys[j].ID
	})
	var b strings.Builder
	fmt.Fprintf(&b, "t=%dms", elapsedMillis)
	for _, k := range keys {
		if s := samples[k]; len(s) > 0 {
			fmt.Fprintf(&b, " %s=%+.4f", k, s[0])
		}
	}
	b.WriteString(d.eol)
	io.WriteString(d.w, b.String())
}

func (d *consoleDisplay) ShowReading(r engine.Reading) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.due(&d.lastRead) {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "analyzer t=%dms sample=%d volume=%s", r.ElapsedMillis, r.Index, r.VolumeLabel())
	for _, l := range r.Levels {
		fmt.Fprintf(&b, " %dHz=%d", l.Frequency, l.Level)
	}
	b.WriteString(d.eol)
	io.WriteString(d.w, b.String())
}

// due reports whether interval has passed since *last and advances it.
func (d *consoleDisplay) due(last *time.Time) bool {
	now := d.now()
	if d.interval > 0 && !last.IsZero() && now.Sub(*last) < d.interval {
		return false
	}
	*last = now
	return true
}
