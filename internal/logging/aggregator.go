package logging

import (
	"log/slog"
	"sync"
	"time"
)

type eventKey struct {
	component string
	event     string
}

type eventCount struct {
	count int64
	last  []slog.Attr
}

// Aggregator counts noisy events (cache misses, dropped preview jobs) and
// logs one "event_summary" line per event type per interval instead of a
// line per occurrence.
type Aggregator struct {
	logger   *slog.Logger
	interval time.Duration

	mu     sync.Mutex
	counts map[eventKey]*eventCount

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewAggregator creates an aggregator flushing every intervalSecs seconds.
// A nil logger makes Record a counter that is never reported.
func NewAggregator(logger *slog.Logger, intervalSecs int) *Aggregator {
	if intervalSecs <= 0 {
		intervalSecs = 30
	}
	return &Aggregator{
		logger:   logger,
		interval: time.Duration(intervalSecs) * time.Second,
		counts:   make(map[eventKey]*eventCount),
		stop:     make(chan struct{}),
	}
}

// Start runs the periodic flush in the background.
func (a *Aggregator) Start() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.Flush()
			case <-a.stop:
				return
			}
		}
	}()
}

// Stop ends the background flush and reports what is left. Safe to call
// more than once.
func (a *Aggregator) Stop() {
	a.once.Do(func() { close(a.stop) })
	a.wg.Wait()
	a.Flush()
}

// Record counts one occurrence of event. The attributes of the latest call
// are attached to the summary.
func (a *Aggregator) Record(component, event string, fields ...slog.Attr) {
	a.mu.Lock()
	defer a.mu.Unlock()

	k := eventKey{component: component, event: event}
	c := a.counts[k]
	if c == nil {
		c = &eventCount{}
		a.counts[k] = c
	}
	c.count++
	if len(fields) > 0 {
		c.last = fields
	}
}

// Flush logs and resets the current counts.
func (a *Aggregator) Flush() {
	a.mu.Lock()
	counts := a.counts
	if len(counts) > 0 {
		a.counts = make(map[eventKey]*eventCount)
	}
	a.mu.Unlock()

	if a.logger == nil || len(counts) == 0 {
		return
	}
	for k, c := range counts {
		args := []any{
			slog.String("component", k.component),
			slog.String("event", k.event),
			slog.Int64("count", c.count),
			slog.Int("window_seconds", int(a.interval.Seconds())),
		}
		for _, f := range c.last {
			args = append(args, f)
		}
		a.logger.Info("event_summary", args...)
	}
}
