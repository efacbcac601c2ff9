package plagiarism

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("worker pool closed")

type Job interface {
	Execute(ctx context.Context) error
}

type WorkerPool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// creates a new worker pool; size <= 0 sizes it from the CPU count
func NewWorkerPool(ctx context.Context, size int) *WorkerPool {
	if size <= 0 {
		totalCPU := runtime.NumCPU()
		systemReserve := max(1, totalCPU/4) // Reserve 1/4 of the CPU for system processes
		size = max(1, totalCPU-systemReserve)
		log.Info().
			Int("totalCPU", totalCPU).
			Int("systemReserve", systemReserve).
			Int("workers", size).
			Msg("Worker pool initialized")
	}
	poolCtx, cancel := context.WithCancel(ctx)

	pool := &WorkerPool{
		workers:  size,
		jobQueue: make(chan Job, size*2), // Buffer 2x the worker count
		ctx:      poolCtx,
		cancel:   cancel,
	}

	pool.start()

	return pool
}

// starts all worker goroutines
func (p *WorkerPool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// worker goroutine that processes jobs
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return // Channel closed
			}
			if err := job.Execute(p.ctx); err != nil {
				log.Error().Err(err).Int("worker", id).Msg("Worker failed to execute job")
			}
		}
	}
}

// submits a job to the pool
func (p *WorkerPool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.jobQueue <- job:
		return nil
	}
}

// closes the worker pool, cancels running jobs and waits for all workers to finish
func (p *WorkerPool) Close() {
	// Cancel first so a Submit blocked on a full queue lets go of the lock.
	p.cancel()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.wg.Wait()
}

// returns the number of workers
func (p *WorkerPool) Size() int {
	return p.workers
}
