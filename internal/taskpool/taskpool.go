package taskpool

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

// Pool is a fixed-size worker pool. Jobs submitted after Close are rejected.
type Pool struct {
	jobs chan func()
	wg   sync.WaitGroup

	closeOnce sync.Once
	closed    chan struct{}
}

// New starts size workers, defaulting to runtime.NumCPU() when size <= 0.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}

	p := &Pool{
		jobs:   make(chan func(), size*4),
		closed: make(chan struct{}),
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case fn := <-p.jobs:
			runJob(fn)
		case <-p.closed:
			for {
				select {
				case fn := <-p.jobs:
					runJob(fn)
				default:
					return
				}
			}
		}
	}
}

// runJob runs fn, recovering a panic so one bad job cannot take down a
// worker goroutine (and with it, silently shrink the pool).
func runJob(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("taskpool: job panicked")
		}
	}()
	fn()
}

// Future is the completion condition a submitted job signals when done.
type Future struct {
	done chan struct{}
	err  error
}

// Wait blocks until the job completes and returns the error it produced, if
// any.
func (f *Future) Wait() error {
	<-f.done
	return f.err
}

// ErrPoolClosed is returned by Submit once the pool has been closed.
var ErrPoolClosed = fmt.Errorf("taskpool: pool is closed")

// Submit enqueues fn for execution by a worker and returns a Future the
// caller can Wait on: the completion condition attached to the owning
// async batch.
func (p *Pool) Submit(fn func() error) *Future {
	f := &Future{done: make(chan struct{})}

	job := func() {
		defer close(f.done)
		f.err = fn()
	}

	select {
	case <-p.closed:
		f.err = ErrPoolClosed
		close(f.done)
		return f
	default:
	}

	select {
	case p.jobs <- job:
	case <-p.closed:
		f.err = ErrPoolClosed
		close(f.done)
	}

	return f
}

// Close stops accepting new jobs and waits for every worker to exit. Workers
// run the jobs still sitting in the queue before they exit.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
	p.wg.Wait()
}
