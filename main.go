package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wavesim/engine"
)

// errQuit ends a headless run from the keyboard.
var errQuit = errors.New("quit requested")

func main() {
	flag.Parse()
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wavesim: %v\n", err)
		os.Exit(2)
	}
	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wavesim: %v\n", err)
		os.Exit(2)
	}
	runtime.GOMAXPROCS(runtime.NumCPU())

	err = run(cfg, log)
	if err != nil {
		log.Error("wavesim failed", zap.Error(err))
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg Config, log *zap.Logger) error {
	if cfg.CPUProfile != "" {
		stop, err := startCPUProfile(cfg.CPUProfile, log)
		if err != nil {
			return err
		}
		defer stop()
	}

	gen := engine.NewWaveGenerator()
	sound, err := engine.NewSoundController(gen, openAudioOutput(cfg, log), log.Named("sound"))
	if err != nil {
		log.Warn("audio line unavailable; the loop is still synthesized", zap.Error(err))
	}
	defer sound.Close()

	frames := &frameStore{}
	console := newConsoleDisplay(os.Stdout, cfg.PrintInterval)
	var (
		display  engine.Display         = frames
		readings engine.AnalyzerDisplay = frames
	)
	if cfg.Headless {
		display, readings = console, console
	}

	sim := engine.NewSimulationController(gen, cfg.TotalLength, display,
		engine.WithSampleCount(cfg.SampleCount),
		engine.WithUpdateInterval(cfg.TickInterval),
		engine.WithSampler(newSampler(cfg, log)),
		engine.WithSimulationLogger(log.Named("simulation")),
	)
	defer sim.Close()

	var analyzer *engine.Analyzer
	if cfg.Analyzer {
		var source engine.AudioSource = sound
		if cfg.LoopWAV != "" {
			loop, err := loadLoopWAV(cfg.LoopWAV)
			if err != nil {
				return err
			}
			log.Info("analyzing wav loop", zap.String("path", cfg.LoopWAV), zap.Int("samples", len(loop.Buffer)))
			source = loop
		}
		analyzer = engine.NewAnalyzer(source, readings, log.Named("analyzer"))
		defer analyzer.Pause()
	}

	s := &session{
		gen:      gen,
		sim:      sim,
		sound:    sound,
		analyzer: analyzer,
		step:     cfg.TickInterval.Milliseconds(),
		export:   cfg.ExportPath,
		log:      log,
	}
	if err := s.loadInitialWaves(cfg); err != nil {
		return err
	}
	if cfg.ExportPath != "" {
		defer func() { s.report("export", s.exportFile(cfg.ExportPath)) }()
	}

	if cfg.Headless {
		return runHeadless(cfg, s, console)
	}
	return runViewer(newViewer(s, frames))
}

// loadInitialWaves applies -preset or -import. An unavailable audio line is
// not fatal: the waves are loaded regardless.
func (s *session) loadInitialWaves(cfg Config) error {
	var err error
	switch {
	case cfg.Preset != "":
		var ids []engine.WaveID
		ids, err = engine.ApplyPreset(s.gen, cfg.Preset)
		if len(ids) > 0 {
			s.selectID(ids[0])
		}
	case cfg.ImportPath != "":
		err = s.importFile(cfg.ImportPath)
	}
	if errors.Is(err, engine.ErrAudioDeviceUnavailable) {
		s.report("loading waves", err)
		return nil
	}
	return err
}

// openAudioOutput returns nil when no line can be opened; the sound
// controller then reports ErrAudioDeviceUnavailable.
func openAudioOutput(cfg Config, log *zap.Logger) engine.AudioOutput {
	switch cfg.backend() {
	case backendEbiten:
		return newEbitenOutput(cfg.AudioBufferSamples)
	case backendOto:
		out, err := newOtoOutput(cfg.AudioBufferSamples)
		if err != nil {
			log.Warn("oto output unavailable", zap.Error(err))
			return nil
		}
		return out
	default:
		return engine.NewHeadlessOutput(cfg.AudioBufferSamples)
	}
}

func newSampler(cfg Config, log *zap.Logger) engine.Sampler {
	if cfg.Sampler == samplerOpenCL {
		s, err := engine.NewOpenCLSampler()
		if err == nil {
			log.Info("sampler ready", zap.String("sampler", s.Name()))
			return s
		}
		log.Warn("OpenCL sampler unavailable, falling back to CPU", zap.Error(err))
	}
	return engine.NewCPUSampler(cfg.Workers)
}

// runHeadless plays until interrupted, the -duration elapses or a quit key
// arrives on the terminal.
func runHeadless(cfg Config, s *session, console *consoleDisplay) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if cfg.Duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, cfg.Duration)
		defer stop()
	}

	controls, err := newTerminalControls(s, engine.PresetNames())
	if err != nil {
		s.log.Info("keyboard controls disabled", zap.Error(err))
		controls = nil
	} else {
		console.setRaw(true)
		defer func() {
			controls.Stop()
			console.setRaw(false)
		}()
		fmt.Fprint(os.Stdout, controlsSummary+"\r\n")
	}

	s.togglePlay()
	if err := s.sound.Start(); err != nil {
		s.log.Warn("sound not started", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	if controls != nil {
		g.Go(func() error { return controls.run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	err = g.Wait()
	s.stop()
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}
