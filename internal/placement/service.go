package placement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/op-bnbplace/opbnb-place-api/pkg/events"
	"github.com/op-bnbplace/opbnb-place-api/pkg/logger"
	"github.com/op-bnbplace/opbnb-place-api/pkg/metrics"
	"github.com/op-bnbplace/opbnb-place-api/pkg/producer"
	"github.com/op-bnbplace/opbnb-place-api/pkg/retry"
	"github.com/op-bnbplace/opbnb-place-api/pkg/scylla"

	"go.uber.org/zap"
)

// Service is the handle the request gateway embeds. It wraps the storage
// manager and publishes a placement event after each successful write.
type Service struct {
	logger    *logger.Logger
	store     scylla.Store
	producer  producer.Producer
	retryOpts retry.Options
}

// NewService creates a new placement service instance
func NewService(l *logger.Logger, store scylla.Store, p producer.Producer) *Service {
	return &Service{
		logger:    l,
		store:     store,
		producer:  p,
		retryOpts: retry.DefaultOptions(),
	}
}

// Place persists one pixel placement and publishes the corresponding
// event. Storage errors fail the call; a publish failure after the dual
// write has landed is logged and swallowed, since the canvas state is
// already durable and the archive tolerates gaps.
func (s *Service) Place(ctx context.Context, req scylla.PlacementRequest) error {
	start := time.Now()
	if err := s.store.UpdateDB(ctx, req); err != nil {
		metrics.PlacementErrorsTotal.Inc()
		return err
	}
	metrics.PlacementLatency.Observe(time.Since(start).Seconds())
	metrics.PlacementsTotal.Inc()

	evt := events.Placement{
		ID:        uuid.NewString(),
		Address:   req.Address,
		X:         req.X,
		Y:         req.Y,
		Color:     req.Color,
		Partition: s.store.Partition(req.X, req.Y),
		PlacedAt:  time.Now().UTC(),
	}

	if err := s.publish(ctx, evt); err != nil {
		metrics.PublishErrorsTotal.Inc()
		s.logger.Error("placement stored but event publish failed", err,
			zap.String("event_id", evt.ID),
			zap.String("address", evt.Address))
	}
	return nil
}

func (s *Service) publish(ctx context.Context, evt events.Placement) error {
	data, err := evt.Encode()
	if err != nil {
		return fmt.Errorf("failed to serialize placement event: %w", err)
	}

	// keyed by shard label so per-quadrant order is preserved
	return retry.Do(ctx, func() error {
		result := <-s.producer.PublishAsync(ctx, []byte(evt.Partition), data)
		return result.Error
	}, s.retryOpts)
}

// GetUser returns the player's last placement.
func (s *Service) GetUser(ctx context.Context, address string) (scylla.PlayerRecord, error) {
	rec, err := s.store.GetUser(ctx, address)
	if errors.Is(err, scylla.ErrInvalidUser) {
		metrics.PlayerMissesTotal.Inc()
	}
	return rec, err
}

// GetPixel returns the current pixel at a coordinate.
func (s *Service) GetPixel(ctx context.Context, x, y uint32) (scylla.PixelData, error) {
	data, err := s.store.GetPixel(ctx, x, y)
	if errors.Is(err, scylla.ErrNoPixelData) {
		metrics.PixelMissesTotal.Inc()
	}
	return data, err
}

// Stop releases the producer and the storage session.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("stopping placement service")

	var errs []error
	if err := s.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close producer: %w", err))
	}
	s.store.Close()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
