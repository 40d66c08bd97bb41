package filepipeline

import (
	"time"

	"osm2rdf.sophox.org/internal/rdf"
)

// Producer implements osmhandler.Sink, accumulating entities into the
// current batch and handing a WriteJob to the pool once the batch's
// statement count exceeds the configured threshold. It owns the job
// counter, which starts at 1 and increases monotonically.
type Producer struct {
	Pool                *Pool
	MaxStatementsPerJob int
	StatsFn             func() string

	batch   rdf.Batch
	counter int
}

// NewProducer constructs a Producer that enqueues a job once the
// pending batch exceeds maxStatementsPerJob statements. statsFn, if
// set, is consulted when a job is enqueued to carry a compact progress
// line onto the job for logging.
func NewProducer(pool *Pool, maxStatementsPerJob int, statsFn func() string) *Producer {
	return &Producer{Pool: pool, MaxStatementsPerJob: maxStatementsPerJob, StatsFn: statsFn}
}

// Accept adds entity to the pending batch and flushes a job if the
// batch has grown past the threshold.
func (p *Producer) Accept(entity rdf.Entity, timestamp time.Time, _ bool) error {
	p.batch.Add(entity, timestamp)
	if p.batch.StatementCount > p.MaxStatementsPerJob {
		p.flush()
	}
	return nil
}

// FilesWritten returns the number of jobs the producer has enqueued so
// far, i.e. the number of output files the pool has been asked to
// write.
func (p *Producer) FilesWritten() int {
	return p.counter
}

// Finish flushes any remaining pending batch and stops the pool,
// returning the first fatal worker error encountered.
func (p *Producer) Finish() error {
	if len(p.batch.Entities) > 0 {
		p.flush()
	}
	return p.Pool.Stop()
}

func (p *Producer) flush() {
	p.counter++
	job := &WriteJob{
		EnqueuedAt: time.Now(),
		Counter:    p.counter,
		Batch:      copyBatch(&p.batch),
		HighWater:  p.batch.HighWater,
	}
	if p.StatsFn != nil {
		job.StatsLine = p.StatsFn()
	}
	p.Pool.Submit(job)
	p.batch.Reset()
}

func copyBatch(b *rdf.Batch) *rdf.Batch {
	entities := make([]rdf.Entity, len(b.Entities))
	copy(entities, b.Entities)
	return &rdf.Batch{Entities: entities, HighWater: b.HighWater, StatementCount: b.StatementCount}
}
