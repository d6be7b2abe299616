package worker

import (
	"context"
	"sync"
)

// Job is one unit of work run by a Pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a Job
type Result interface {
	GetError() error
}

// ResultHook observes each result as it is collected. Calls are serialized.
type ResultHook func(Result)

// Pool runs jobs on a fixed number of goroutines. Jobs see a context that is
// cancelled with the parent the pool was created from.
type Pool struct {
	workers int
	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
	closed sync.Once

	collector *ResultCollector
	hook      ResultHook
	drained   chan struct{}
}

// NewPoolContext creates a pool with the given number of workers (at least one)
// whose jobs are cancelled with parent
func NewPoolContext(parent context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool{
		workers:   workers,
		jobs:      make(chan Job, workers*2),
		results:   make(chan Result, workers*2),
		ctx:       ctx,
		cancel:    cancel,
		collector: NewResultCollector(),
		drained:   make(chan struct{}),
	}
}

// OnResult registers a hook called for every collected result. Must be set before Start.
func (p *Pool) OnResult(hook ResultHook) {
	p.hook = hook
}

// Start launches the workers and the result collector
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work()
	}

	// Collect concurrently with submission so workers never block on a full results channel
	go func() {
		defer close(p.drained)
		for result := range p.results {
			p.collector.Add(result)
			if p.hook != nil {
				p.hook(result)
			}
		}
	}()
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It returns without queueing once the pool is cancelled.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait stops accepting jobs, waits for the queued ones and returns every collected result
func (p *Pool) Wait() []Result {
	close(p.jobs)

	p.wg.Wait()
	p.closeResults()
	<-p.drained
	p.cancel()

	return p.collector.Results()
}

func (p *Pool) closeResults() {
	p.closed.Do(func() {
		close(p.results)
	})
}

// ResultCollector accumulates results from concurrent workers
type ResultCollector struct {
	mu      sync.Mutex
	results []Result
}

// NewResultCollector creates an empty collector
func NewResultCollector() *ResultCollector {
	return &ResultCollector{results: make([]Result, 0)}
}

// Add appends a result
func (c *ResultCollector) Add(result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

// Results returns a copy of the collected results
func (c *ResultCollector) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Result, len(c.results))
	copy(out, c.results)
	return out
}
