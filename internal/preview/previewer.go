package preview

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/sjoeboo/peek/internal/entry"
	"github.com/sjoeboo/peek/internal/logging"
)

// DefaultMaxConcurrent is the number of preview commands allowed to run at
// once.
const DefaultMaxConcurrent = 3

// Previewer serves previews without ever blocking the caller.
//
// A request is answered from the cache when possible. Otherwise a background
// job is started, if the concurrency budget allows, and the last completed
// preview is returned (marked stale) until the job lands in the cache.
// Requests beyond the budget are dropped, not queued; the caller is expected
// to ask again on its next tick.
type Previewer struct {
	runner  Runner
	log     *slog.Logger
	cache   *Cache
	timeout time.Duration

	maxConcurrent int64
	sem           *semaphore.Weighted
	running       atomic.Int64
	limiter       *rate.Limiter

	inFlightMu sync.Mutex
	inFlight   map[string]struct{}

	lastMu sync.Mutex
	last   *Preview

	// generation is bumped by Invalidate; jobs started under an older
	// generation drop their results. genMu covers the bump with the cache
	// clear, and a job's compare with its insert.
	genMu      sync.Mutex
	generation atomic.Uint64

	errs chan error
	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
}

// Option configures a Previewer.
type Option func(*Previewer)

// WithRunner sets how preview commands are executed. Defaults to a
// ShellRunner.
func WithRunner(r Runner) Option {
	return func(p *Previewer) { p.runner = r }
}

// WithLogger sets the logger. Defaults to the preview component logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Previewer) { p.log = l }
}

// WithMaxConcurrent sets the background job budget. Values below 1 are
// ignored.
func WithMaxConcurrent(n int) Option {
	return func(p *Previewer) {
		if n >= 1 {
			p.maxConcurrent = int64(n)
		}
	}
}

// WithCacheSize sets the number of previews kept.
func WithCacheSize(n int) Option {
	return func(p *Previewer) { p.cache = NewCache(n) }
}

// WithTimeout bounds every preview command. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(p *Previewer) { p.timeout = d }
}

// WithSpawnRate caps how many jobs may start per second, with the given
// burst. A non-positive rate means unlimited.
func WithSpawnRate(perSecond float64, burst int) Option {
	return func(p *Previewer) {
		if perSecond <= 0 {
			p.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New creates a Previewer.
func New(opts ...Option) *Previewer {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Previewer{
		maxConcurrent: DefaultMaxConcurrent,
		inFlight:      make(map[string]struct{}),
		last:          Empty().AsStale(),
		errs:          make(chan error, 1),
		ctx:           ctx,
		stop:          cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runner == nil {
		p.runner = &ShellRunner{}
	}
	if p.log == nil {
		p.log = logging.ForComponent(logging.CompPreview)
	}
	if p.cache == nil {
		p.cache = NewCache(DefaultCacheSize)
	}
	p.sem = semaphore.NewWeighted(p.maxConcurrent)
	return p
}

// Preview returns the preview for e rendered with cmd, or the last known
// preview while it is being computed. It never blocks on I/O.
func (p *Previewer) Preview(e entry.Entry, cmd entry.PreviewCommand) *Preview {
	key := CacheKey(e, cmd)
	if cached, ok := p.cache.Get(key); ok {
		return cached
	}
	if p.ctx.Err() != nil {
		return p.lastKnown()
	}
	logging.Aggregate(logging.CompPreview, "cache_miss")

	p.inFlightMu.Lock()
	if _, busy := p.inFlight[key]; busy {
		p.inFlightMu.Unlock()
		return p.lastKnown()
	}
	if !p.sem.TryAcquire(1) {
		p.inFlightMu.Unlock()
		logging.Aggregate(logging.CompPreview, "job_dropped", slog.String("reason", "budget"))
		return p.lastKnown()
	}
	if p.limiter != nil && !p.limiter.Allow() {
		p.sem.Release(1)
		p.inFlightMu.Unlock()
		logging.Aggregate(logging.CompPreview, "job_dropped", slog.String("reason", "rate"))
		return p.lastKnown()
	}
	p.inFlight[key] = struct{}{}
	p.inFlightMu.Unlock()

	p.running.Add(1)
	p.wg.Add(1)
	go p.job(key, e, cmd, p.generation.Load())

	return p.lastKnown()
}

func (p *Previewer) job(key string, e entry.Entry, cmd entry.PreviewCommand, gen uint64) {
	defer func() {
		p.inFlightMu.Lock()
		delete(p.inFlight, key)
		p.inFlightMu.Unlock()
		p.decRunning()
		p.sem.Release(1)
		p.wg.Done()
	}()

	start := time.Now()
	pv, failed, err := p.compute(p.ctx, e, cmd)
	if err != nil {
		p.log.Error("preview_command_invalid",
			slog.String("entry", e.Name),
			slog.String("template", cmd.Template),
			slog.String("error", err.Error()))
		select {
		case p.errs <- err:
		default:
		}
		return
	}
	if pv == nil {
		return
	}
	if !p.store(key, pv, failed, gen) {
		p.log.Debug("preview_job_discarded", slog.String("entry", e.Name))
		return
	}
	p.log.Debug("preview_job_done",
		slog.String("entry", e.Name),
		slog.Bool("failed", failed),
		slog.Int("lines", pv.TotalLines()),
		slog.Duration("took", time.Since(start)))
}

// compute formats and runs cmd for e. It returns a nil preview when the
// entry has nothing to preview, and failed=true for inline error previews.
// The only error is a template that does not fit the entry.
func (p *Previewer) compute(ctx context.Context, e entry.Entry, cmd entry.PreviewCommand) (pv *Preview, failed bool, err error) {
	command, ok, err := FormatCommand(cmd.Template, cmd.Delimiter, e)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	res, runErr := p.runner.Run(ctx, command)
	switch {
	case runErr != nil:
		if errors.Is(runErr, context.DeadlineExceeded) {
			runErr = ErrTimeout
		}
		p.log.Warn("preview_command_failed",
			slog.String("command", command),
			slog.String("error", runErr.Error()))
		return errorPreview(e, command, runErr.Error()), true, nil
	case !res.Success():
		return errorPreview(e, command, string(res.Stderr)), true, nil
	default:
		return FromOutput(e, strings.ToValidUTF8(string(res.Stdout), "\uFFFD")), false, nil
	}
}

// store caches pv unless an Invalidate happened since gen was read.
func (p *Previewer) store(key string, pv *Preview, failed bool, gen uint64) bool {
	p.genMu.Lock()
	defer p.genMu.Unlock()
	if p.generation.Load() != gen {
		return false
	}
	if evicted, ok := p.cache.Insert(key, pv); ok {
		p.log.Debug("preview_cache_evict", slog.String("key", evicted))
	}
	if !failed {
		p.setLastKnown(pv.AsStale())
	}
	return true
}

func errorPreview(e entry.Entry, command, detail string) *Preview {
	raw := errorPreviewHead + command + "\n" + strings.ToValidUTF8(detail, "\uFFFD")
	return FromOutput(e, raw)
}

// Compute runs cmd for e synchronously, bypassing the cache and the job
// budget. A blank entry yields an empty preview.
func (p *Previewer) Compute(ctx context.Context, e entry.Entry, cmd entry.PreviewCommand) (*Preview, error) {
	pv, _, err := p.compute(ctx, e, cmd)
	if err != nil {
		return nil, err
	}
	if pv == nil {
		return Empty(), nil
	}
	return pv, nil
}

// Running returns the number of background jobs in progress.
func (p *Previewer) Running() int {
	return int(p.running.Load())
}

// Errors delivers configuration errors found by background jobs, such as a
// {N} placeholder the entries have no field for. Only the first pending
// error is kept.
func (p *Previewer) Errors() <-chan error {
	return p.errs
}

// Invalidate drops every cached preview. Jobs still running keep their
// slot but their results are discarded.
func (p *Previewer) Invalidate() {
	p.genMu.Lock()
	defer p.genMu.Unlock()
	p.generation.Add(1)
	p.cache.Clear()
	p.setLastKnown(Empty().AsStale())
}

// Wait blocks until every background job has finished.
func (p *Previewer) Wait() {
	p.wg.Wait()
}

// Close cancels running commands and waits for their jobs to exit. Later
// calls to Preview start no new jobs.
func (p *Previewer) Close() {
	p.stop()
	p.wg.Wait()
}

func (p *Previewer) lastKnown() *Preview {
	p.lastMu.Lock()
	defer p.lastMu.Unlock()
	return p.last
}

func (p *Previewer) setLastKnown(pv *Preview) {
	p.lastMu.Lock()
	p.last = pv
	p.lastMu.Unlock()
}

// decRunning decrements the job counter without going below zero.
func (p *Previewer) decRunning() {
	for {
		n := p.running.Load()
		if n <= 0 {
			return
		}
		if p.running.CompareAndSwap(n, n-1) {
			return
		}
	}
}
