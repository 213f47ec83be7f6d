package main

import "flag"

// Command-line flags. A flag given explicitly overrides the matching
// WAVESIM_* environment variable.
var (
	// totalLengthFlag sets the sampled spatial extent in meters.
	totalLengthFlag = flag.Float64("total-length", defaultTotalLength, "sampled distance in meters")

	// sampleCountFlag sets how many positions are sampled per tick.
	sampleCountFlag = flag.Int("samples", defaultSampleCount, "number of sampled positions")

	tickIntervalFlag = flag.Duration("tick", defaultTickInterval, "simulation clock period")

	// workersFlag bounds the CPU sampler goroutines.
	workersFlag = flag.Int("workers", 0, "CPU sampler workers (0 = one per CPU)")

	// samplerFlag selects the sampling backend.
	samplerFlag = flag.String("sampler", samplerCPU, "sampler backend: cpu or opencl (needs -tags opencl)")

	// audioBackendFlag selects the audio output line.
	audioBackendFlag = flag.String("audio", backendAuto, "audio output: auto, ebiten, oto or none")

	audioBufferFlag = flag.Int("audio-buffer", defaultAudioBuffer, "loop buffer length in samples")

	// presetFlag loads a named wave set at startup.
	presetFlag = flag.String("preset", "", `load a preset: "Pure Sine", "Square Wave", "Triangle Wave" or "Sawtooth Wave"`)

	importFlag = flag.String("import", "", "load waves from a JSON file at startup")

	// exportFlag writes the wave set to a JSON file on exit and on the export key.
	exportFlag = flag.String("export", "", "save waves to a JSON file")

	// loopWAVFlag feeds a decoded WAV file to the analyzer instead of the synthesized loop.
	loopWAVFlag = flag.String("loop-wav", "", "analyze a WAV file instead of the synthesized loop")

	// headlessFlag swaps the viewer for console output and terminal keys.
	headlessFlag = flag.Bool("headless", false, "run without a window")

	durationFlag = flag.Duration("duration", 0, "stop a headless run after this long (0 = until quit)")

	printIntervalFlag = flag.Duration("print-interval", defaultPrintInterval, "minimum time between console lines")

	// analyzerFlag toggles the audio analyzer.
	analyzerFlag = flag.Bool("analyzer", true, "run the audio analyzer alongside the simulation")

	logLevelFlag = flag.String("log-level", "info", "log level: debug, info, warn or error")

	logJSONFlag = flag.Bool("log-json", false, "emit JSON logs")

	// cpuProfileFlag records a pprof CPU profile for the whole run.
	cpuProfileFlag = flag.String("cpuprofile", "", "write a CPU profile to this file")
)
