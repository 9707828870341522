package preview

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjoeboo/peek/internal/entry"
)

// fakeRunner records every command and blocks until released.
type fakeRunner struct {
	mu       sync.Mutex
	commands []string
	calls    atomic.Int32
	peak     atomic.Int32
	active   atomic.Int32
	gate     chan struct{}
	result   func(command string) (Result, error)
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{gate: make(chan struct{})}
}

func (f *fakeRunner) Run(ctx context.Context, command string) (Result, error) {
	f.calls.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.commands = append(f.commands, command)
	f.mu.Unlock()

	select {
	case <-f.gate:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	if f.result != nil {
		return f.result(command)
	}
	return Result{Stdout: []byte("output of " + command)}, nil
}

func (f *fakeRunner) release() {
	close(f.gate)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

var catCmd = entry.NewPreviewCommand("cat {}", "")

func TestPreviewer_InitialPlaceholderIsStaleEmpty(t *testing.T) {
	runner := newFakeRunner()
	p := New(WithRunner(runner))
	defer func() { runner.release(); p.Wait() }()

	got := p.Preview(entry.New("a"), catCmd)
	assert.True(t, got.Stale)
	assert.Equal(t, KindEmpty, got.Content.Kind)
}

func TestPreviewer_SingleJobPerEntry(t *testing.T) {
	runner := newFakeRunner()
	p := New(WithRunner(runner))

	e := entry.New("main.go")
	p.Preview(e, catCmd)
	p.Preview(e, catCmd)
	p.Preview(e, catCmd)

	waitFor(t, func() bool { return runner.calls.Load() == 1 })
	assert.Equal(t, 1, p.Running())

	runner.release()
	p.Wait()

	assert.EqualValues(t, 1, runner.calls.Load(), "in-flight guard must prevent duplicate spawns")
	got := p.Preview(e, catCmd)
	assert.False(t, got.Stale)
	assert.Equal(t, "output of cat main.go", got.Content.Text.String())
	assert.EqualValues(t, 1, runner.calls.Load(), "cache hit must not spawn")
}

func TestPreviewer_BudgetDropsExcess(t *testing.T) {
	runner := newFakeRunner()
	p := New(WithRunner(runner))

	for i := 0; i < DefaultMaxConcurrent+1; i++ {
		got := p.Preview(entry.New(fmt.Sprintf("file%d", i)), catCmd)
		assert.True(t, got.Stale)
	}

	waitFor(t, func() bool { return runner.calls.Load() == DefaultMaxConcurrent })
	assert.Equal(t, DefaultMaxConcurrent, p.Running())

	runner.release()
	p.Wait()

	assert.EqualValues(t, DefaultMaxConcurrent, runner.calls.Load(), "extra request must not start a job")
	assert.LessOrEqual(t, runner.peak.Load(), int32(DefaultMaxConcurrent))
	assert.Equal(t, 0, p.Running())

	// The dropped entry is picked up on a later poll
	last := entry.New(fmt.Sprintf("file%d", DefaultMaxConcurrent))
	p.Preview(last, catCmd)
	p.Wait()
	assert.False(t, p.Preview(last, catCmd).Stale)
}

func TestPreviewer_NeverExceedsBudgetUnderLoad(t *testing.T) {
	runner := newFakeRunner()
	runner.release()
	p := New(WithRunner(runner), WithMaxConcurrent(2))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				p.Preview(entry.New(fmt.Sprintf("%d-%d", g, i)), catCmd)
				assert.LessOrEqual(t, p.Running(), 2)
			}
		}(g)
	}
	wg.Wait()
	p.Wait()

	assert.LessOrEqual(t, runner.peak.Load(), int32(2))
	assert.Equal(t, 0, p.Running())
}

func TestPreviewer_LastKnownIsStaleCopy(t *testing.T) {
	runner := newFakeRunner()
	runner.release()
	p := New(WithRunner(runner))

	a := entry.New("a")
	p.Preview(a, catCmd)
	p.Wait()
	fresh := p.Preview(a, catCmd)
	require.False(t, fresh.Stale)

	// Another entry shows a's preview, marked stale, while it computes
	placeholder := p.Preview(entry.New("b"), catCmd)
	assert.True(t, placeholder.Stale)
	assert.Equal(t, fresh.Content, placeholder.Content)
	assert.False(t, fresh.Stale, "cached preview is not mutated")
	p.Wait()
}

func TestPreviewer_ErrorPreview(t *testing.T) {
	runner := newFakeRunner()
	runner.release()
	runner.result = func(string) (Result, error) {
		return Result{Stderr: []byte("cat: nope: No such file"), ExitCode: 1}, nil
	}
	p := New(WithRunner(runner))

	e := entry.New("nope")
	p.Preview(e, catCmd)
	p.Wait()

	got := p.Preview(e, catCmd)
	require.Equal(t, KindAnsiText, got.Content.Kind)
	assert.Equal(t, "error running command: cat nope\ncat: nope: No such file", got.Content.Raw)
	assert.EqualValues(t, 1, runner.calls.Load())

	// Failures are cached, not retried
	p.Preview(e, catCmd)
	p.Wait()
	assert.EqualValues(t, 1, runner.calls.Load())

	// and do not replace the last known preview
	assert.Equal(t, KindEmpty, p.Preview(entry.New("other"), catCmd).Content.Kind)
	p.Wait()
}

func TestPreviewer_RunnerFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.release()
	runner.result = func(string) (Result, error) {
		return Result{}, errors.New("exec: \"bat\": executable file not found")
	}
	p := New(WithRunner(runner))

	e := entry.New("x")
	p.Preview(e, catCmd)
	p.Wait()

	got := p.Preview(e, catCmd)
	assert.Contains(t, got.Content.Raw, "error running command: cat x\n")
	assert.Contains(t, got.Content.Raw, "executable file not found")
}

func TestPreviewer_Timeout(t *testing.T) {
	runner := newFakeRunner() // never released
	p := New(WithRunner(runner), WithTimeout(20*time.Millisecond))

	e := entry.New("slow")
	p.Preview(e, catCmd)
	p.Wait()

	got := p.Preview(e, catCmd)
	assert.Contains(t, got.Content.Raw, ErrTimeout.Error())
	assert.Equal(t, 0, p.Running())
}

func TestPreviewer_PlaceholderErrorIsReported(t *testing.T) {
	runner := newFakeRunner()
	runner.release()
	p := New(WithRunner(runner))

	cmd := entry.NewPreviewCommand("cat {3}", ":")
	e := entry.New("a:b")
	p.Preview(e, cmd)
	p.Wait()

	select {
	case err := <-p.Errors():
		var perr *PlaceholderError
		assert.True(t, errors.As(err, &perr))
	default:
		t.Fatal("expected a placeholder error")
	}
	assert.EqualValues(t, 0, runner.calls.Load(), "nothing is run")
	assert.True(t, p.Preview(e, cmd).Stale, "nothing is cached")
	p.Wait()
}

func TestPreviewer_BlankEntrySkipsRun(t *testing.T) {
	runner := newFakeRunner()
	runner.release()
	p := New(WithRunner(runner))

	p.Preview(entry.New("  "), catCmd)
	p.Wait()

	assert.EqualValues(t, 0, runner.calls.Load())
	assert.Equal(t, 0, p.Running())
}

func TestPreviewer_InvalidateDiscardsRunningJobs(t *testing.T) {
	runner := newFakeRunner()
	p := New(WithRunner(runner))

	e := entry.New("a")
	p.Preview(e, catCmd)
	waitFor(t, func() bool { return runner.calls.Load() == 1 })

	p.Invalidate()
	runner.release()
	p.Wait()

	assert.True(t, p.Preview(e, catCmd).Stale, "result from before Invalidate is dropped")
	p.Wait()
	assert.False(t, p.Preview(e, catCmd).Stale)
	assert.EqualValues(t, 2, runner.calls.Load())
}

func TestPreviewer_StoreAfterInvalidateIsDropped(t *testing.T) {
	p := New(WithRunner(newFakeRunner()))
	defer p.Close()

	gen := p.generation.Load()
	p.Invalidate()

	pv := FromOutput(entry.New("a"), "late")
	assert.False(t, p.store(CacheKey(entry.New("a"), catCmd), pv, false, gen))
	assert.Equal(t, 0, p.cache.Len())
	assert.Equal(t, KindEmpty, p.lastKnown().Content.Kind)

	assert.True(t, p.store(CacheKey(entry.New("a"), catCmd), pv, false, p.generation.Load()))
	assert.Equal(t, 1, p.cache.Len())
}

func TestPreviewer_DistinctCommandsRunSeparately(t *testing.T) {
	runner := newFakeRunner()
	p := New(WithRunner(runner))

	e := entry.New("a")
	p.Preview(e, catCmd)
	p.Preview(e, entry.NewPreviewCommand("head {}", ""))
	waitFor(t, func() bool { return runner.calls.Load() == 2 })

	runner.release()
	p.Wait()
	assert.Equal(t, "output of cat a", p.Preview(e, catCmd).Content.Text.String())
	assert.Equal(t, "output of head a", p.Preview(e, entry.NewPreviewCommand("head {}", "")).Content.Text.String())
}

func TestPreviewer_SpawnRate(t *testing.T) {
	runner := newFakeRunner()
	runner.release()
	p := New(WithRunner(runner), WithSpawnRate(0.001, 1))

	p.Preview(entry.New("a"), catCmd)
	p.Preview(entry.New("b"), catCmd)
	p.Wait()

	assert.EqualValues(t, 1, runner.calls.Load(), "second spawn exceeds the burst")
	assert.Equal(t, 0, p.Running())
}

func TestPreviewer_CacheSize(t *testing.T) {
	runner := newFakeRunner()
	runner.release()
	p := New(WithRunner(runner), WithCacheSize(1))

	a, b := entry.New("a"), entry.New("b")
	p.Preview(a, catCmd)
	p.Wait()
	p.Preview(b, catCmd)
	p.Wait()

	assert.True(t, p.Preview(a, catCmd).Stale, "a was evicted")
	p.Wait()
	assert.EqualValues(t, 3, runner.calls.Load())
}

func TestPreviewer_Compute(t *testing.T) {
	runner := newFakeRunner()
	runner.release()
	p := New(WithRunner(runner))

	got, err := p.Compute(context.Background(), entry.New("a"), catCmd)
	require.NoError(t, err)
	assert.Equal(t, "output of cat a", got.Content.Text.String())

	got, err = p.Compute(context.Background(), entry.New(""), catCmd)
	require.NoError(t, err)
	assert.Equal(t, KindEmpty, got.Content.Kind)

	_, err = p.Compute(context.Background(), entry.New("a"), entry.NewPreviewCommand("{1}", ""))
	assert.Error(t, err)
}

func TestPreviewer_CloseCancelsJobs(t *testing.T) {
	runner := newFakeRunner() // never released
	p := New(WithRunner(runner))

	p.Preview(entry.New("a"), catCmd)
	waitFor(t, func() bool { return runner.calls.Load() == 1 })

	done := make(chan struct{})
	go func() {
		p.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
	assert.Equal(t, 0, p.Running())

	p.Wait()
	cached := p.cache.Len()
	pv := p.Preview(entry.New("b"), catCmd)
	assert.True(t, pv.Stale)
	assert.Equal(t, 0, p.Running(), "no job starts after Close")
	assert.EqualValues(t, 1, runner.calls.Load())
	assert.Equal(t, cached, p.cache.Len())
}

func TestPreviewer_ShellRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	p := New()

	e := entry.New("hello world")
	p.Preview(e, entry.NewPreviewCommand("printf '\\033[32m%s\\033[0m' {1}", " "))
	p.Wait()

	got := p.Preview(e, entry.NewPreviewCommand("printf '\\033[32m%s\\033[0m' {1}", " "))
	require.Equal(t, KindAnsiText, got.Content.Kind)
	require.Equal(t, 1, got.TotalLines())
	span := got.Content.Text.Lines[0].Spans[0]
	assert.Equal(t, "world", span.Content)
}
