// Package engine drives the world clock and the per-tick pipeline.
// The clock fires on a fixed period; each fire runs the whole phase
// sequence exactly once. Fires never overlap: a fire arriving while the
// previous pipeline is still running is skipped, so world.tick advances at
// most once per completed run.
package engine

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// ClockMetrics is the hook the clock reports through. Nil-safe.
type ClockMetrics interface {
	ObserveTick(seconds float64)
	ObserveTickSkip()
	ObserveTickFailure()
}

// Clock schedules pipeline runs. Tick is the unit of work; the clock owns
// only the schedule.
type Clock struct {
	Period  time.Duration
	Tick    func() error
	Metrics ClockMetrics

	inFlight atomic.Bool
	stop     chan struct{}
	done     chan struct{}
}

// NewClock builds a clock firing tick every period.
func NewClock(period time.Duration, tick func() error) *Clock {
	return &Clock{
		Period: period,
		Tick:   tick,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run fires the pipeline on the period until Stop. Blocks; callers run it
// in a goroutine.
func (c *Clock) Run() {
	defer close(c.done)
	ticker := time.NewTicker(c.Period)
	defer ticker.Stop()

	slog.Info("world clock started", "period", c.Period)
	for {
		select {
		case <-c.stop:
			slog.Info("world clock stopped")
			return
		case <-ticker.C:
			c.Fire()
		}
	}
}

// Fire runs one pipeline unless the previous run is still in progress, in
// which case the fire is dropped.
func (c *Clock) Fire() {
	if !c.inFlight.CompareAndSwap(false, true) {
		slog.Warn("tick skipped: previous pipeline still running")
		if c.Metrics != nil {
			c.Metrics.ObserveTickSkip()
		}
		return
	}
	defer c.inFlight.Store(false)

	start := time.Now()
	err := c.Tick()
	elapsed := time.Since(start)

	switch {
	case err != nil:
		slog.Error("tick pipeline failed", "error", err, "elapsed", elapsed)
		if c.Metrics != nil {
			c.Metrics.ObserveTickFailure()
		}
	default:
		if c.Metrics != nil {
			c.Metrics.ObserveTick(elapsed.Seconds())
		}
		if elapsed > c.Period {
			slog.Warn("tick pipeline overran its period", "elapsed", elapsed, "period", c.Period)
		}
	}
}

// Stop halts the clock and waits for an in-progress fire to finish.
func (c *Clock) Stop() {
	close(c.stop)
	<-c.done
	for c.inFlight.Load() {
		time.Sleep(time.Millisecond)
	}
}
