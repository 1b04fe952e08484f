// Package fetcher runs a fetch operation over a set of file references in
// sequential batches with bounded parallelism inside each batch.
package fetcher

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"phenofetch/internal/models"
)

// Operation performs one unit of work for a ref. It must capture every
// failure on the returned outcome and never panic past its boundary.
type Operation func(ctx context.Context, ref models.FileRef) models.FetchOutcome

// ProgressFunc receives engine progress after each batch resolves.
type ProgressFunc func(batch, totalBatches, done, total int)

// Engine schedules operations in contiguous batches. Batches run strictly in
// sequence; within a batch at most Concurrency operations are in flight. The
// two-level structure bounds both steady-state parallelism and burstiness
// against the upstream server.
type Engine struct {
	Concurrency int
	BatchSize   int
	// Pause is slept between consecutive batches, never after the last one.
	Pause    time.Duration
	Progress ProgressFunc

	// sleep is swappable so tests can observe inter-batch pauses.
	sleep func(time.Duration)
}

// NewEngine creates an engine, clamping nonsensical settings to 1.
func NewEngine(concurrency, batchSize int, pause time.Duration) *Engine {
	if concurrency < 1 {
		log.Warnf("Invalid concurrency %d, defaulting to 1", concurrency)
		concurrency = 1
	}
	if batchSize < 1 {
		log.Warnf("Invalid batch size %d, defaulting to 1", batchSize)
		batchSize = 1
	}
	return &Engine{
		Concurrency: concurrency,
		BatchSize:   batchSize,
		Pause:       pause,
		sleep:       time.Sleep,
	}
}

// Run executes op over every ref and returns the aggregated stats. Outcomes
// are recorded in input order (batch order, then position within the batch)
// no matter which operation finishes first. Per-item failures never stop the
// run; cancellation stops at the next batch boundary and returns whatever has
// accumulated.
func (e *Engine) Run(ctx context.Context, refs []models.FileRef, op Operation) *models.RunStats {
	stats := &models.RunStats{Total: len(refs)}
	if len(refs) == 0 {
		return stats
	}

	batches := partition(refs, e.BatchSize)
	sem := semaphore.NewWeighted(int64(e.Concurrency))

	log.Infof("Processing %d files in %d batches (batch size %d, concurrency %d)",
		len(refs), len(batches), e.BatchSize, e.Concurrency)

	done := 0
	for bi, batch := range batches {
		if ctx.Err() != nil {
			log.Warnf("Run interrupted before batch %d/%d; returning partial stats", bi+1, len(batches))
			return stats
		}

		// Outcomes are index-addressed so input order survives concurrent
		// completion; the slots are disjoint, so no lock is needed.
		outcomes := make([]models.FetchOutcome, len(batch))
		var wg sync.WaitGroup
		for i, ref := range batch {
			if err := sem.Acquire(ctx, 1); err != nil {
				outcomes[i] = models.FetchOutcome{
					Ref:    ref,
					Status: models.StatusFailed,
					Error:  err.Error(),
				}
				continue
			}
			wg.Add(1)
			go func(i int, ref models.FileRef) {
				defer wg.Done()
				defer sem.Release(1)
				outcomes[i] = op(ctx, ref)
			}(i, ref)
		}
		wg.Wait()

		// Aggregation happens here, on the single consumer path, after the
		// whole batch has resolved.
		for _, outcome := range outcomes {
			addOutcome(stats, outcome)
		}
		done += len(batch)

		if e.Progress != nil {
			e.Progress(bi+1, len(batches), done, len(refs))
		}
		log.Debugf("Batch %d/%d complete (%d/%d files)", bi+1, len(batches), done, len(refs))

		if bi < len(batches)-1 && e.Pause > 0 {
			e.sleep(e.Pause)
		}
	}

	return stats
}

// partition splits refs into contiguous slices of at most size elements; the
// last batch may be shorter.
func partition(refs []models.FileRef, size int) [][]models.FileRef {
	var batches [][]models.FileRef
	for start := 0; start < len(refs); start += size {
		end := start + size
		if end > len(refs) {
			end = len(refs)
		}
		batches = append(batches, refs[start:end])
	}
	return batches
}
