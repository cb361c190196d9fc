package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingMetrics struct {
	mu       sync.Mutex
	ticks    int
	skips    int
	failures int
}

func (m *recordingMetrics) ObserveTick(float64) { m.mu.Lock(); m.ticks++; m.mu.Unlock() }
func (m *recordingMetrics) ObserveTickSkip()    { m.mu.Lock(); m.skips++; m.mu.Unlock() }
func (m *recordingMetrics) ObserveTickFailure() { m.mu.Lock(); m.failures++; m.mu.Unlock() }

func (m *recordingMetrics) counts() (int, int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticks, m.skips, m.failures
}

func TestClockFireRunsTick(t *testing.T) {
	ran := 0
	c := NewClock(time.Hour, func() error { ran++; return nil })
	m := &recordingMetrics{}
	c.Metrics = m

	c.Fire()
	c.Fire()
	assert.Equal(t, 2, ran)
	ticks, skips, failures := m.counts()
	assert.Equal(t, 2, ticks)
	assert.Equal(t, 0, skips)
	assert.Equal(t, 0, failures)
}

func TestClockSkipsOverlappingFires(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := NewClock(time.Hour, func() error {
		close(started)
		<-release
		return nil
	})
	m := &recordingMetrics{}
	c.Metrics = m

	go c.Fire()
	<-started

	// A fire landing mid-run is dropped, not queued.
	c.Fire()
	close(release)

	assert.Eventually(t, func() bool {
		ticks, skips, _ := m.counts()
		return ticks == 1 && skips == 1
	}, time.Second, time.Millisecond)
}

func TestClockRecordsFailures(t *testing.T) {
	c := NewClock(time.Hour, func() error { return errors.New("pipeline exploded") })
	m := &recordingMetrics{}
	c.Metrics = m

	c.Fire()
	_, _, failures := m.counts()
	assert.Equal(t, 1, failures)
}

func TestClockRunAndStop(t *testing.T) {
	var mu sync.Mutex
	ran := 0
	c := NewClock(5*time.Millisecond, func() error {
		mu.Lock()
		ran++
		mu.Unlock()
		return nil
	})
	go c.Run()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ran >= 2
	}, time.Second, time.Millisecond)

	c.Stop()
	mu.Lock()
	after := ran
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, after, ran, "no fires after stop")
	mu.Unlock()
}
