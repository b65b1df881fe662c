package starlark

import (
	"log/slog"
	"sync"

	"go.starlark.net/starlark"
)

// DefaultMaxSteps bounds the work one aggregate call may do.
const DefaultMaxSteps = 1_000_000

// ThreadPool recycles Starlark threads between aggregate calls.
type ThreadPool struct {
	mu       sync.Mutex
	threads  []*starlark.Thread
	maxSize  int
	maxSteps uint64
	logger   *slog.Logger
}

// NewThreadPool creates a pool keeping at most maxSize idle threads. Script
// print() output goes to logger at debug level.
func NewThreadPool(maxSize int, maxSteps uint64, logger *slog.Logger) *ThreadPool {
	if maxSize <= 0 {
		maxSize = 10
	}
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ThreadPool{
		threads:  make([]*starlark.Thread, 0, maxSize),
		maxSize:  maxSize,
		maxSteps: maxSteps,
		logger:   logger,
	}
}

// Get retrieves an idle thread or creates one. The name shows up in
// backtraces.
func (p *ThreadPool) Get(name string) *starlark.Thread {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.threads); n > 0 {
		thread := p.threads[n-1]
		p.threads = p.threads[:n-1]
		thread.Name = name
		// A thread that ran out of steps stays cancelled until cleared.
		thread.Uncancel()
		// The step counter never resets, so extend the budget instead.
		thread.SetMaxExecutionSteps(thread.ExecutionSteps() + p.maxSteps)
		return thread
	}

	thread := &starlark.Thread{
		Name: name,
		Print: func(t *starlark.Thread, msg string) {
			p.logger.Debug("aggregation script print", "script", t.Name, "msg", msg)
		},
	}
	thread.SetMaxExecutionSteps(p.maxSteps)
	return thread
}

// Put returns a thread to the pool. Threads beyond the pool size are
// dropped.
func (p *ThreadPool) Put(thread *starlark.Thread) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.threads) < p.maxSize {
		thread.Name = ""
		p.threads = append(p.threads, thread)
	}
}

// Size returns the number of idle threads.
func (p *ThreadPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.threads)
}
