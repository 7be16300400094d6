package ingest

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/vector"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 64
)

// Job is a unit of ingestion work for the worker pool to execute against.
type Job struct {
	DocumentID string
	Path       string
	Meta       vector.DocumentMeta
}

// PoolConfig is the configuration options for the ingestion worker pool.
type PoolConfig struct {
	// Pipeline runs the ingestion stages for each job.
	Pipeline *Pipeline

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 64).
	QueueSize uint

	// Logger is the provided zap logger.
	Logger *zap.Logger
}

// Pool processes ingestion jobs asynchronously via a worker pool.
type Pool struct {
	pipeline *Pipeline
	queue    chan Job
	wg       sync.WaitGroup
	logger   *zap.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *PoolConfig) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	p := &Pool{
		pipeline: c.Pipeline,
		queue:    make(chan Job, c.QueueSize),
		logger:   c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the
// job being dropped.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("ingestion job queued",
			zap.String("document_id", job.DocumentID),
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			zap.String("document_id", job.DocumentID),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the API server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the
// jobs queue.
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("ingestion worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		if err := p.pipeline.Ingest(context.Background(), job.DocumentID, job.Path, job.Meta); err != nil {
			p.logger.Error("async ingestion failed",
				zap.String("document_id", job.DocumentID),
				zap.Error(err),
			)
		}
	}

	p.logger.Debug("ingestion worker stopped", zap.Uint("worker_id", id))
}
