package history

import (
	"context"
	"fmt"
	"time"

	"github.com/op-bnbplace/opbnb-place-api/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Writer defines the interface for writing placement batches to the
// history database.
type Writer interface {
	// WriteBatch archives a batch of placements. Inserting an event_id
	// that already exists is a no-op, so redelivered Kafka messages are
	// harmless.
	WriteBatch(ctx context.Context, rows []PlacementRow) error

	// Ping verifies the connection pool is healthy
	Ping(ctx context.Context) error

	// Close closes the database connection pool
	Close() error
}

// PGArchive implements Writer using pgxpool
type PGArchive struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// Config holds database connection settings
type Config struct {
	URI      string
	MinConns int32
	MaxConns int32
}

// Batches at or above this size go through the COPY protocol.
const copyThreshold = 100

const placementsDDL = `
	CREATE TABLE IF NOT EXISTS placements (
		event_id    uuid PRIMARY KEY,
		address     text NOT NULL,
		x           integer NOT NULL,
		y           integer NOT NULL,
		color       integer NOT NULL,
		canvas_part text NOT NULL,
		placed_at   timestamptz NOT NULL,
		archived_at timestamptz NOT NULL DEFAULT now()
	)`

var placementColumns = []string{"event_id", "address", "x", "y", "color", "canvas_part", "placed_at"}

// NewPGArchive creates the pool, verifies connectivity and ensures the
// placements table exists.
func NewPGArchive(ctx context.Context, cfg Config, l *logger.Logger) (*PGArchive, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, placementsDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create placements table: %w", err)
	}

	return &PGArchive{pool: pool, logger: l}, nil
}

// WriteBatch archives the rows using the best available protocol
func (a *PGArchive) WriteBatch(ctx context.Context, rows []PlacementRow) error {
	if len(rows) == 0 {
		return nil
	}

	if len(rows) >= copyThreshold {
		return a.writeBatchCopy(ctx, rows)
	}
	return a.writeBatchInsert(ctx, rows)
}

// writeBatchInsert pipelines plain inserts for smaller batches
func (a *PGArchive) writeBatchInsert(ctx context.Context, rows []PlacementRow) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const query = `
		INSERT INTO placements (event_id, address, x, y, color, canvas_part, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(query, r.EventID, r.Address, r.X, r.Y, r.Color, r.CanvasPart, r.PlacedAt)
	}

	br := tx.SendBatch(ctx, batch)
	var execErr error
	for range rows {
		if _, err := br.Exec(); err != nil {
			execErr = err
			break
		}
	}
	if cerr := br.Close(); cerr != nil && execErr == nil {
		execErr = cerr
	}
	if execErr != nil {
		return fmt.Errorf("insert placements: %w", execErr)
	}

	return tx.Commit(ctx)
}

// writeBatchCopy stages large batches through a temp table with COPY, then
// folds them into the archive so duplicate event ids are still dropped.
func (a *PGArchive) writeBatchCopy(ctx context.Context, rows []PlacementRow) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "CREATE TEMP TABLE placements_stage (LIKE placements INCLUDING DEFAULTS) ON COMMIT DROP")
	if err != nil {
		return fmt.Errorf("failed to create staging table: %w", err)
	}

	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = []interface{}{r.EventID, r.Address, r.X, r.Y, r.Color, r.CanvasPart, r.PlacedAt}
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"placements_stage"}, placementColumns, pgx.CopyFromRows(values))
	if err != nil {
		return fmt.Errorf("copy from failed: %w", err)
	}

	const foldQuery = `
		INSERT INTO placements (event_id, address, x, y, color, canvas_part, placed_at)
		SELECT event_id, address, x, y, color, canvas_part, placed_at FROM placements_stage
		ON CONFLICT (event_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, foldQuery); err != nil {
		return fmt.Errorf("fold from staging table failed: %w", err)
	}

	a.logger.Debug("archived batch via copy", zap.Int("rows", len(rows)))
	return tx.Commit(ctx)
}

// Ping verifies the pool is healthy
func (a *PGArchive) Ping(ctx context.Context) error {
	return a.pool.Ping(ctx)
}

// Close closes the pool
func (a *PGArchive) Close() error {
	a.pool.Close()
	return nil
}

// ShouldUseCopy is exported for testing protocol selection
func (a *PGArchive) ShouldUseCopy(rows []PlacementRow) bool {
	return len(rows) >= copyThreshold
}
