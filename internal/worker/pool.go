// Package worker implements the fixed-size pool of execution units that
// pull specs from the task queue and run the pipeline. Worker count is
// adjustable only while the pool is stopped; shutdown is cooperative and
// observed between jobs, never mid-job.
package worker

import (
	"errors"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/ytget/mediaqueue/internal/model"
	"github.com/ytget/mediaqueue/internal/queue"
)

// Defaults for pool behavior
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultGraceTimeout = 30 * time.Second

	MinWorkers = 1
	MaxWorkers = 6
)

var (
	// ErrAlreadyStarted is returned by Start on a running pool.
	ErrAlreadyStarted = errors.New("worker pool already started")

	// ErrPoolRunning is returned by Configure while workers are active.
	ErrPoolRunning = errors.New("cannot change worker count while pool is running")

	// ErrWorkerCount is returned for a worker count outside the allowed range.
	ErrWorkerCount = errors.New("worker count out of range")

	// ErrStopTimeout is returned when workers did not exit within the
	// grace timeout.
	ErrStopTimeout = errors.New("worker pool stop timed out")
)

// Runner executes one job to completion. The pipeline implements it; the
// returned run has reached a terminal stage.
type Runner interface {
	Run(spec model.JobSpec) *model.JobRun
}

// Pool owns N worker goroutines, each processing one job fully before
// taking the next.
type Pool struct {
	mu      sync.Mutex
	tasks   *queue.TaskQueue
	runner  Runner
	size    int
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup

	pollInterval time.Duration
	graceTimeout time.Duration
}

// NewPool creates a stopped pool reading from tasks.
func NewPool(tasks *queue.TaskQueue, runner Runner, size int) *Pool {
	if size < MinWorkers {
		size = MinWorkers
	}
	if size > MaxWorkers {
		size = MaxWorkers
	}
	return &Pool{
		tasks:        tasks,
		runner:       runner,
		size:         size,
		pollInterval: DefaultPollInterval,
		graceTimeout: DefaultGraceTimeout,
	}
}

// Configure sets the target worker count. It is only effective while the
// pool is stopped; a change while running is rejected so the caller can
// tell the operator instead of silently ignoring the request.
func (p *Pool) Configure(n int) error {
	if n < MinWorkers || n > MaxWorkers {
		return ErrWorkerCount
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrPoolRunning
	}
	p.size = n
	return nil
}

// Size returns the configured worker count.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// Running reports whether workers are active.
func (p *Pool) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Start spawns the configured number of workers. Starting a started pool
// is reported as an error, not swallowed.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrAlreadyStarted
	}

	p.stop = make(chan struct{})
	p.running = true
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.workerLoop(i, p.stop)
	}
	log.Printf("Started %d workers", p.size)
	return nil
}

// Stop asks all workers to exit after their current job and waits up to
// the grace timeout. In-flight external tool invocations are never
// killed; the flag is only checked between jobs.
func (p *Pool) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.stop)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Printf("All workers stopped")
		return nil
	case <-time.After(p.graceTimeout):
		log.Printf("Worker pool stop timed out after %v", p.graceTimeout)
		return ErrStopTimeout
	}
}

// workerLoop polls the queue with a short timeout and runs each job to
// completion. Job-level faults never terminate the loop.
func (p *Pool) workerLoop(id int, stop <-chan struct{}) {
	defer p.wg.Done()
	log.Printf("Worker %d started", id)

	for {
		select {
		case <-stop:
			log.Printf("Worker %d stopping", id)
			return
		default:
		}

		spec, ok := p.tasks.Pop(p.pollInterval)
		if !ok {
			continue
		}
		p.runJob(id, spec)
	}
}

// runJob executes one spec with panic isolation so an unexpected fault
// in the pipeline is logged and the worker moves on to the next item.
func (p *Pool) runJob(id int, spec model.JobSpec) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Worker %d: panic processing job %s: %v\n%s",
				id, spec.ID, r, debug.Stack())
		}
	}()

	run := p.runner.Run(spec)
	if run != nil && run.Stage == model.StageFailed && run.LastError != nil {
		log.Printf("Worker %d: job %s failed: %v", id, spec.ID, run.LastError)
		return
	}
	log.Printf("Worker %d: job %s finished at stage %s", id, spec.ID, runStage(run))
}

func runStage(run *model.JobRun) model.Stage {
	if run == nil {
		return model.StageFailed
	}
	return run.Stage
}
