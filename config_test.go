package main

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.validate())
	assert.Equal(t, 1024, cfg.SampleCount)
	assert.Equal(t, 10*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, backendEbiten, cfg.backend())

	cfg.Headless = true
	assert.Equal(t, backendOto, cfg.backend())
	cfg.AudioBackend = backendNone
	assert.Equal(t, backendNone, cfg.backend())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("WAVESIM_SAMPLE_COUNT", "64")
	t.Setenv("WAVESIM_TOTAL_LENGTH", "34.3")
	t.Setenv("WAVESIM_TICK_INTERVAL", "20ms")
	t.Setenv("WAVESIM_HEADLESS", "true")
	t.Setenv("WAVESIM_PRESET", "Square Wave")
	t.Setenv("WAVESIM_WORKERS", "not a number")

	cfg := defaultConfig()
	cfg.applyEnv()
	assert.Equal(t, 64, cfg.SampleCount)
	assert.Equal(t, 34.3, cfg.TotalLength)
	assert.Equal(t, 20*time.Millisecond, cfg.TickInterval)
	assert.True(t, cfg.Headless)
	assert.Equal(t, "Square Wave", cfg.Preset)
	assert.Zero(t, cfg.Workers)
}

func TestExplicitFlagOverridesEnv(t *testing.T) {
	t.Setenv("WAVESIM_SAMPLE_COUNT", "64")
	old := *sampleCountFlag
	*sampleCountFlag = 32
	t.Cleanup(func() { *sampleCountFlag = old })

	cfg := defaultConfig()
	cfg.applyEnv()
	cfg.applyFlag(&flag.Flag{Name: "samples"})
	assert.Equal(t, 32, cfg.SampleCount)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"length", func(c *Config) { c.TotalLength = 0 }},
		{"samples", func(c *Config) { c.SampleCount = 0 }},
		{"tick", func(c *Config) { c.TickInterval = time.Microsecond }},
		{"buffer", func(c *Config) { c.AudioBufferSamples = 0 }},
		{"backend", func(c *Config) { c.AudioBackend = "alsa" }},
		{"sampler", func(c *Config) { c.Sampler = "gpu" }},
		{"preset and import", func(c *Config) {
			c.Preset = "Pure Sine"
			c.ImportPath = "waves.json"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.validate())
		})
	}
}
