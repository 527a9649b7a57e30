package archiver

import (
	"context"
	"fmt"

	"github.com/op-bnbplace/opbnb-place-api/pkg/consumer"
	"github.com/op-bnbplace/opbnb-place-api/pkg/logger"
	"github.com/op-bnbplace/opbnb-place-api/pkg/parser"
	"github.com/op-bnbplace/opbnb-place-api/pkg/worker"

	"go.uber.org/zap"
)

// Service consumes placement events and drives the archival worker pool.
type Service struct {
	logger     *logger.Logger
	consumer   consumer.Consumer
	workerPool *worker.Pool
}

// NewService creates a new archiver service instance
func NewService(
	l *logger.Logger,
	c consumer.Consumer,
	p *worker.Pool,
) *Service {
	return &Service{
		logger:     l,
		consumer:   c,
		workerPool: p,
	}
}

// Start begins the event consumption and archival loop
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("starting archiver service")

	s.workerPool.Start(ctx)

	msgChan, errChan := s.consumer.Consume(ctx)

	for {
		select {
		case msg, ok := <-msgChan:
			if !ok {
				return nil
			}

			if err := s.handleMessage(ctx, msg); err != nil {
				s.logger.Error("failed to handle message", err, zap.Int64("offset", msg.Offset))
			}

		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("consumer error: %w", err)
			}

		case <-ctx.Done():
			return s.Shutdown(context.Background())
		}
	}
}

func (s *Service) handleMessage(ctx context.Context, msg consumer.Message) error {
	row, err := parser.ParsePlacementRow(msg.Value)
	if err != nil {
		s.logger.Warn("skipping malformed placement event",
			zap.Error(err),
			zap.Int64("offset", msg.Offset),
			zap.ByteString("payload", msg.Value))

		// still commit the offset so a bad event cannot wedge the partition
		return s.consumer.Commit(ctx, msg)
	}

	// offsets are committed by the pool once the batch has landed
	return s.workerPool.Submit(ctx, worker.Job{
		Row:     row,
		Message: msg,
	})
}

// Shutdown stops the service gracefully
func (s *Service) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down archiver service")

	errPool := s.workerPool.Shutdown(ctx)
	errCons := s.consumer.Close()

	if errPool != nil || errCons != nil {
		return fmt.Errorf("shutdown errors: pool=%v, consumer=%v", errPool, errCons)
	}
	return nil
}
