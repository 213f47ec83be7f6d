package engine

import (
	"sync"
	"time"
)

// periodicTask runs tick at a fixed rate on its own goroutine until stop is
// called. The first run is immediate and run k is due at (k-1)*interval
// after start. tick receives how many runs came due since the previous call,
// normally 1; a delayed tick gets the missed runs folded into its count, so
// a clock advanced by that count keeps pace with wall time.
type periodicTask struct {
	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once
}

func startPeriodicTask(interval time.Duration, tick func(periods int64)) *periodicTask {
	t := &periodicTask{
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		start := time.Now()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick(1)
		fired := int64(1)
		for {
			select {
			case <-t.stopCh:
				return
			case <-ticker.C:
			}
			// Prefer stop over a tick that became ready at the same time.
			select {
			case <-t.stopCh:
				return
			default:
			}
			due := int64(time.Since(start)/interval) + 1
			if due <= fired {
				continue
			}
			periods := due - fired
			fired = due
			tick(periods)
		}
	}()
	return t
}

// stop cancels the task and waits for an in-flight tick to return. No tick
// runs after stop returns. It must not be called from inside tick.
func (t *periodicTask) stop() {
	if t == nil {
		return
	}
	t.stopped.Do(func() {
		close(t.stopCh)
	})
	<-t.done
}
