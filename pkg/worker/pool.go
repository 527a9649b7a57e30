package worker

import (
	"context"
	"sync"
	"time"

	"github.com/op-bnbplace/opbnb-place-api/pkg/checkpoint"
	"github.com/op-bnbplace/opbnb-place-api/pkg/consumer"
	"github.com/op-bnbplace/opbnb-place-api/pkg/history"
	"github.com/op-bnbplace/opbnb-place-api/pkg/logger"
	"github.com/op-bnbplace/opbnb-place-api/pkg/metrics"

	"go.uber.org/zap"
)

// Job is one parsed placement awaiting archival
type Job struct {
	Row     history.PlacementRow
	Message consumer.Message
}

// Pool fans placements out to workers that batch them into the history
// database. Offsets are committed and the cursor advanced only after a
// batch is durably written.
type Pool struct {
	logger        *logger.Logger
	archive       history.Writer
	consumer      consumer.Consumer
	checkpoints   checkpoint.Store // may be nil
	numWorkers    int
	batchSize     int
	flushInterval time.Duration
	input         chan Job
	wg            sync.WaitGroup
	cancel        context.CancelFunc
}

// NewPool creates a new Pool instance
func NewPool(l *logger.Logger, w history.Writer, c consumer.Consumer, cp checkpoint.Store, numWorkers, batchSize int, flushInterval time.Duration) *Pool {
	return &Pool{
		logger:        l,
		archive:       w,
		consumer:      c,
		checkpoints:   cp,
		numWorkers:    numWorkers,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		input:         make(chan Job, numWorkers*2),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.runWorker(workerCtx, i)
	}
}

// Submit hands a job to the pool for processing
func (p *Pool) Submit(ctx context.Context, job Job) error {
	select {
	case p.input <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()

	p.logger.Debug("worker started", zap.Int("worker_id", id))

	buffer := history.NewBuffer(p.batchSize)
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case job, ok := <-p.input:
			if !ok {
				p.flush(ctx, buffer)
				return
			}

			if buffer.Add(history.Pending{Row: job.Row, Message: job.Message}) {
				p.flush(ctx, buffer)
			}
			metrics.ArchiverMessagesTotal.Inc()

		case <-ticker.C:
			if buffer.Stale(p.flushInterval) {
				p.flush(ctx, buffer)
			}

		case <-ctx.Done():
			// final flush on shutdown
			p.flush(context.Background(), buffer)
			return
		}
	}
}

func (p *Pool) flush(ctx context.Context, buffer *history.Buffer) {
	batch := buffer.Drain()
	if len(batch) == 0 {
		return
	}

	rows := make([]history.PlacementRow, len(batch))
	for i, pending := range batch {
		rows[i] = pending.Row
	}

	start := time.Now()
	if err := p.archive.WriteBatch(ctx, rows); err != nil {
		p.logger.Error("failed to archive batch", err, zap.Int("rows", len(rows)))
		metrics.ArchiverWriteErrorsTotal.Inc()
		return
	}
	metrics.ArchiverInsertLatency.Observe(time.Since(start).Seconds())
	metrics.ArchiverBatchWritesTotal.Inc()

	// commit offsets only once the batch has landed
	var latest time.Time
	for _, pending := range batch {
		if err := p.consumer.Commit(ctx, pending.Message); err != nil {
			p.logger.Error("failed to commit offset", err, zap.Int64("offset", pending.Message.Offset))
		}
		if pending.Row.PlacedAt.After(latest) {
			latest = pending.Row.PlacedAt
		}
	}

	if p.checkpoints != nil && !latest.IsZero() {
		cursor := []byte(latest.UTC().Format(time.RFC3339Nano))
		if err := p.checkpoints.Save(ctx, cursor); err != nil {
			p.logger.Warn("failed to save archive cursor", zap.Error(err))
		} else {
			metrics.ArchiverCheckpointSavesTotal.Inc()
		}
	}
}

// Shutdown stops all workers and waits for the final flush
func (p *Pool) Shutdown(ctx context.Context) error {
	close(p.input)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
