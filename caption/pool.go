package caption

import (
	"context"
	"errors"
	"time"
)

// ErrQueueFull is returned when every worker is busy and the backlog
// is at capacity. Callers should surface it as a transient failure
var ErrQueueFull = errors.New("caption queue full")

type captionJob struct {
	ctx  context.Context
	path string
	done chan jobResult
}

type jobResult struct {
	caption string
	err     error
}

// Pool runs caption generation on a fixed set of workers so that the
// request-accepting path never blocks behind somebody else's
// inference call. Each job is bounded by the pool timeout.
type Pool struct {
	provider Provider
	jobs     chan *captionJob
	timeout  time.Duration
}

type PoolOpts struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

func NewPool(p Provider, o PoolOpts) *Pool {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 16
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Minute
	}

	pool := &Pool{
		provider: p,
		jobs:     make(chan *captionJob, o.QueueSize),
		timeout:  o.Timeout,
	}

	for range o.Workers {
		go pool.worker()
	}

	return pool
}

func (q *Pool) worker() {
	for job := range q.jobs {
		ctx, cancel := context.WithTimeout(job.ctx, q.timeout)
		caption, err := q.provider.Generate(ctx, job.path)
		cancel()

		job.done <- jobResult{caption: caption, err: err}
	}
}

func (q *Pool) Provider() Provider {
	return q.provider
}

// Generate schedules a caption job and blocks until it finishes, the
// pool timeout fires, or ctx is cancelled. A saturated queue fails
// fast instead of queueing unbounded work.
func (q *Pool) Generate(ctx context.Context, path string) (string, error) {
	job := &captionJob{
		ctx:  ctx,
		path: path,
		done: make(chan jobResult, 1),
	}

	select {
	case q.jobs <- job:
	default:
		return "", ErrQueueFull
	}

	select {
	case res := <-job.done:
		return res.caption, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
