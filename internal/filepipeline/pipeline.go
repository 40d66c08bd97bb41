// Package filepipeline implements the bulk-export worker pool: a fixed
// number of workers drain a bounded queue of WriteJobs and write each
// one out as a gzip-compressed Turtle file. The producer/worker split
// and the sentinel-per-worker shutdown follow the pool in this family's own
// worker package; the job shape and file format are specific to this
// pipeline.
package filepipeline

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"

	"osm2rdf.sophox.org/internal/rdf"
	"osm2rdf.sophox.org/internal/vocab"
)

// createExclusive opens path for writing, failing if it already exists,
// matching the "exclusive create" requirement for output files so a
// re-run never silently overwrites a partially written one without
// being told to.
func createExclusive(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
}

// WriteJob is one unit of work handed to a worker: the batch of
// entities to render, the job's sequence number (used for the output
// filename), and the high-water timestamp observed up to and including
// this batch.
type WriteJob struct {
	EnqueuedAt time.Time
	Counter    int
	Batch      *rdf.Batch
	HighWater  time.Time
	StatsLine  string
}

// Pool is the bounded multi-worker file writer. Queue depth is fixed at
// 1: the producer blocks on enqueue once a job is pending, giving
// natural backpressure against a slow disk.
type Pool struct {
	OutputDir string
	Workers   int
	Logger    *logrus.Logger

	jobs chan *WriteJob
	wg   sync.WaitGroup
	errs chan error
}

// NewPool constructs a pool of n workers (minimum 1) writing into dir.
func NewPool(dir string, n int, logger *logrus.Logger) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{
		OutputDir: dir,
		Workers:   n,
		Logger:    logger,
		jobs:      make(chan *WriteJob, 1),
		errs:      make(chan error, n),
	}
}

// Start spawns the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit enqueues job, blocking if a previous job is still pending.
func (p *Pool) Submit(job *WriteJob) {
	p.jobs <- job
}

// Stop sends one sentinel (nil job) per worker, waits for all workers to
// drain, and returns the first fatal error encountered, if any. Fatal
// worker errors (disk full, permission denied) are meant to terminate
// the process; callers should treat a non-nil return as fatal.
func (p *Pool) Stop() error {
	for i := 0; i < p.Workers; i++ {
		p.jobs <- nil
	}
	p.wg.Wait()
	close(p.errs)
	for err := range p.errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		if job == nil {
			return
		}
		if err := p.writeJob(job); err != nil {
			p.errs <- fmt.Errorf("worker %d: %w", id, err)
			return
		}
		if p.Logger != nil {
			p.Logger.WithFields(logrus.Fields{
				"worker":     id,
				"job":        job.Counter,
				"statements": job.Batch.StatementCount,
			}).Debug("wrote file")
		}
	}
}

func (p *Pool) writeJob(job *WriteJob) error {
	name := fmt.Sprintf("%s/osm-%06d.ttl.gz", p.OutputDir, job.Counter)
	return writeTurtleGz(name, job.Batch, job.HighWater)
}

// writeTurtleGz renders batch to the named gzip file: the fixed prefix
// header, one block per entity, and (when the high-water year is at
// least 2001) a trailing schema:dateModified line.
func writeTurtleGz(path string, batch *rdf.Batch, highWater time.Time) (err error) {
	f, err := createExclusive(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	gz, err := gzip.NewWriterLevel(f, 3)
	if err != nil {
		return fmt.Errorf("gzip writer: %w", err)
	}
	defer func() {
		if cerr := gz.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err = gz.Write([]byte(vocab.Header())); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, entity := range batch.Entities {
		if err = writeEntity(gz, entity); err != nil {
			return err
		}
	}

	if highWater.Year() >= 2001 {
		line := fmt.Sprintf("%s: schema:dateModified %s.\n", vocab.OsmRoot, vocab.DateLiteral(highWater))
		if _, err = gz.Write([]byte(line)); err != nil {
			return fmt.Errorf("write watermark: %w", err)
		}
	}

	return nil
}

func writeEntity(w io.Writer, entity rdf.Entity) error {
	// A bulk export is a one-shot full dump, not a diff against a store:
	// a deleted or now-untagged object (Statements empty, passed through
	// by the handler so the SPARQL sink can register its delete) simply
	// has nothing to write here.
	if len(entity.Statements) == 0 {
		return nil
	}
	if _, err := w.Write([]byte(entity.Subject() + "\n")); err != nil {
		return fmt.Errorf("write subject: %w", err)
	}
	for i, stmt := range entity.Statements {
		sep := ";\n"
		if i == len(entity.Statements)-1 {
			sep = ".\n\n"
		}
		if _, err := w.Write([]byte(stmt.Render() + sep)); err != nil {
			return fmt.Errorf("write statement: %w", err)
		}
	}
	return nil
}
