package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"wavesim/engine"
)

// Defaults for the simulation window, audio and rendering.
const (
	defaultTotalLength   = 100.0
	defaultSampleCount   = engine.DefaultSampleCount
	defaultTickInterval  = engine.DefaultUpdateInterval
	defaultAudioBuffer   = engine.DefaultLoopSamples
	defaultPrintInterval = 250 * time.Millisecond
	screenW, screenH     = 1024, 512
	windowScale          = 1
	plotMargin           = 16
	frequencyStep        = 1
	amplitudeStep        = 0.1
	randomMaxFrequency   = 100
	otoBufferDuration    = 50 * time.Millisecond
	pcm16Scale           = 256
	envPrefix            = "WAVESIM_"
)

// Audio backends and samplers selectable at startup.
const (
	backendAuto   = "auto"
	backendEbiten = "ebiten"
	backendOto    = "oto"
	backendNone   = "none"

	samplerCPU    = "cpu"
	samplerOpenCL = "opencl"
)

// Config is the resolved runtime configuration. Values come from the
// defaults above, then a .env file and WAVESIM_* variables, then any flag
// given explicitly on the command line.
type Config struct {
	// TotalLength is the sampled spatial extent in meters.
	TotalLength float64
	// SampleCount is the number of positions sampled per tick.
	SampleCount int
	// TickInterval is the simulation clock period.
	TickInterval time.Duration
	// Workers bounds the CPU sampler goroutines; 0 means one per CPU.
	Workers int
	// Sampler is "cpu" or "opencl".
	Sampler string

	// AudioBackend is "auto", "ebiten", "oto" or "none".
	AudioBackend string
	// AudioBufferSamples is the synthesized loop length.
	AudioBufferSamples int

	Preset     string
	ImportPath string
	ExportPath string
	LoopWAV    string

	// Headless replaces the viewer with console output and terminal keys.
	Headless bool
	// Duration stops a headless run after the given time; 0 runs until quit.
	Duration time.Duration
	// PrintInterval throttles console output.
	PrintInterval time.Duration
	Analyzer      bool

	LogLevel   string
	LogJSON    bool
	CPUProfile string
}

func defaultConfig() Config {
	return Config{
		TotalLength:        defaultTotalLength,
		SampleCount:        defaultSampleCount,
		TickInterval:       defaultTickInterval,
		Sampler:            samplerCPU,
		AudioBackend:       backendAuto,
		AudioBufferSamples: defaultAudioBuffer,
		PrintInterval:      defaultPrintInterval,
		Analyzer:           true,
		LogLevel:           "info",
	}
}

// loadConfig resolves the configuration for this process.
func loadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	cfg := defaultConfig()
	cfg.applyEnv()
	flag.Visit(cfg.applyFlag)
	return cfg, cfg.validate()
}

func (c *Config) applyEnv() {
	c.TotalLength = getEnvFloat("TOTAL_LENGTH", c.TotalLength)
	c.SampleCount = getEnvInt("SAMPLE_COUNT", c.SampleCount)
	c.TickInterval = getEnvDuration("TICK_INTERVAL", c.TickInterval)
	c.Workers = getEnvInt("WORKERS", c.Workers)
	c.Sampler = getEnv("SAMPLER", c.Sampler)
	c.AudioBackend = getEnv("AUDIO", c.AudioBackend)
	c.AudioBufferSamples = getEnvInt("AUDIO_BUFFER", c.AudioBufferSamples)
	c.Preset = getEnv("PRESET", c.Preset)
	c.ImportPath = getEnv("IMPORT", c.ImportPath)
	c.ExportPath = getEnv("EXPORT", c.ExportPath)
	c.LoopWAV = getEnv("LOOP_WAV", c.LoopWAV)
	c.Headless = getEnvBool("HEADLESS", c.Headless)
	c.Duration = getEnvDuration("DURATION", c.Duration)
	c.PrintInterval = getEnvDuration("PRINT_INTERVAL", c.PrintInterval)
	c.Analyzer = getEnvBool("ANALYZER", c.Analyzer)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogJSON = getEnvBool("LOG_JSON", c.LogJSON)
	c.CPUProfile = getEnv("CPU_PROFILE", c.CPUProfile)
}

// applyFlag copies one explicitly set flag over the environment value.
func (c *Config) applyFlag(f *flag.Flag) {
	switch f.Name {
	case "total-length":
		c.TotalLength = *totalLengthFlag
	case "samples":
		c.SampleCount = *sampleCountFlag
	case "tick":
		c.TickInterval = *tickIntervalFlag
	case "workers":
		c.Workers = *workersFlag
	case "sampler":
		c.Sampler = *samplerFlag
	case "audio":
		c.AudioBackend = *audioBackendFlag
	case "audio-buffer":
		c.AudioBufferSamples = *audioBufferFlag
	case "preset":
		c.Preset = *presetFlag
	case "import":
		c.ImportPath = *importFlag
	case "export":
		c.ExportPath = *exportFlag
	case "loop-wav":
		c.LoopWAV = *loopWAVFlag
	case "headless":
		c.Headless = *headlessFlag
	case "duration":
		c.Duration = *durationFlag
	case "print-interval":
		c.PrintInterval = *printIntervalFlag
	case "analyzer":
		c.Analyzer = *analyzerFlag
	case "log-level":
		c.LogLevel = *logLevelFlag
	case "log-json":
		c.LogJSON = *logJSONFlag
	case "cpuprofile":
		c.CPUProfile = *cpuProfileFlag
	}
}

func (c Config) validate() error {
	var errs []error
	if !(c.TotalLength > 0) {
		errs = append(errs, fmt.Errorf("total length %v must be positive", c.TotalLength))
	}
	if c.SampleCount < 1 {
		errs = append(errs, fmt.Errorf("sample count %d must be positive", c.SampleCount))
	}
	if c.TickInterval < time.Millisecond {
		errs = append(errs, fmt.Errorf("tick interval %v must be at least 1ms", c.TickInterval))
	}
	if c.AudioBufferSamples < 1 {
		errs = append(errs, fmt.Errorf("audio buffer %d must be positive", c.AudioBufferSamples))
	}
	switch c.AudioBackend {
	case backendAuto, backendEbiten, backendOto, backendNone:
	default:
		errs = append(errs, fmt.Errorf("unknown audio backend %q", c.AudioBackend))
	}
	switch c.Sampler {
	case samplerCPU, samplerOpenCL:
	default:
		errs = append(errs, fmt.Errorf("unknown sampler %q", c.Sampler))
	}
	if c.Preset != "" && c.ImportPath != "" {
		errs = append(errs, errors.New("preset and import are mutually exclusive"))
	}
	return errors.Join(errs...)
}

// backend resolves "auto": the viewer shares ebiten's audio context, while
// headless runs talk to oto directly.
func (c Config) backend() string {
	if c.AudioBackend != backendAuto {
		return c.AudioBackend
	}
	if c.Headless {
		return backendOto
	}
	return backendEbiten
}

// getEnv retrieves WAVESIM_<key> or returns the default value if unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if str := getEnv(key, ""); str != "" {
		if value, err := strconv.Atoi(str); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if str := getEnv(key, ""); str != "" {
		if value, err := strconv.ParseFloat(str, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvBool accepts the values understood by strconv.ParseBool.
func getEnvBool(key string, defaultValue bool) bool {
	if str := getEnv(key, ""); str != "" {
		if value, err := strconv.ParseBool(strings.TrimSpace(str)); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if str := getEnv(key, ""); str != "" {
		if value, err := time.ParseDuration(str); err == nil {
			return value
		}
	}
	return defaultValue
}
