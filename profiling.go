package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"sync"
	"time"

	"go.uber.org/zap"
)

// startCPUProfile records a CPU profile to path until the returned stop
// function runs. stop may be called more than once.
func startCPUProfile(path string, log *zap.Logger) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("starting profile: %w", err)
	}
	started := time.Now()
	log.Info("cpu profile started", zap.String("path", path))
	var once sync.Once
	stop := func() {
		once.Do(func() {
			pprof.StopCPUProfile()
			if err := f.Close(); err != nil {
				log.Warn("closing cpu profile", zap.Error(err))
				return
			}
			log.Info("cpu profile written", zap.String("path", path), zap.Duration("recorded", time.Since(started)))
		})
	}
	return stop, nil
}
