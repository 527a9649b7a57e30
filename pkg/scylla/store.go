package scylla

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gocql/gocql"
	"golang.org/x/sync/errgroup"
)

// Store is the storage surface consumed by the placement service and the
// request gateway.
type Store interface {
	// GetUser returns the player's last placement, or ErrInvalidUser if
	// the address has never placed a pixel.
	GetUser(ctx context.Context, address string) (PlayerRecord, error)

	// GetPixel returns the current pixel at a coordinate, or
	// ErrNoPixelData if the coordinate has never been placed on.
	GetPixel(ctx context.Context, x, y uint32) (PixelData, error)

	// UpdateDB persists a placement to both the player and canvas tables.
	UpdateDB(ctx context.Context, req PlacementRequest) error

	// Partition returns the shard label the store files a coordinate under.
	Partition(x, y uint32) string

	// Close releases the underlying session.
	Close()
}

// Config holds connection and schema settings for the canvas keyspace.
type Config struct {
	Hosts             []string
	Keyspace          string
	ReplicationFactor int
	Timeout           time.Duration
	CanvasDim         uint32
}

// Builder holds an open session before the schema and statements exist.
// Two-phase construction: TryInit connects, TryBuild migrates and yields
// the long-lived Manager.
type Builder struct {
	session           *gocql.Session
	keyspace          string
	replicationFactor int
	dimMid            uint32
}

// TryInit opens a session against the given hosts. The canvas dimension
// must match the one the gateway generates coordinates for, or writer and
// reader populations will route the same cell to different shards.
func TryInit(cfg Config) (*Builder, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Consistency = gocql.Quorum
	if cfg.Timeout > 0 {
		cluster.Timeout = cfg.Timeout
	}
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to scylla: %w", err)
	}
	return &Builder{
		session:           session,
		keyspace:          cfg.Keyspace,
		replicationFactor: cfg.ReplicationFactor,
		dimMid:            cfg.CanvasDim / 2,
	}, nil
}

// initTables creates the keyspace, the player table, the pixel_data UDT
// and the sharded canvas table. Idempotent, run on every start; any
// failure here is fatal to startup and is not retried.
func (b *Builder) initTables(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf("CREATE KEYSPACE IF NOT EXISTS %s WITH REPLICATION = {'class': 'NetworkTopologyStrategy', 'replication_factor': %d}",
			b.keyspace, b.replicationFactor),
		// one row per address, overwritten on every placement
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.player (address text, x int, y int, color int, last_placed timestamp, PRIMARY KEY (address))",
			b.keyspace),
		fmt.Sprintf("CREATE TYPE IF NOT EXISTS %s.pixel_data (address text, color int, last_placed timestamp)",
			b.keyspace),
		// one row per coordinate, sharded by quadrant label
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.canvas (canvas_part text, x int, y int, data frozen<pixel_data>, PRIMARY KEY (canvas_part, x, y))",
			b.keyspace),
	}
	for _, stmt := range stmts {
		if err := b.session.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// TryBuild runs schema creation and fixes the four statements the Manager
// executes for the rest of the process lifetime. gocql prepares each
// distinct statement on first execution and reuses the prepared form, so
// no CQL is composed per request after this point.
func (b *Builder) TryBuild(ctx context.Context) (*Manager, error) {
	if err := b.initTables(ctx); err != nil {
		return nil, err
	}
	return &Manager{
		session: b.session,
		dimMid:  b.dimMid,
		insertPlayer: fmt.Sprintf(
			"INSERT INTO %s.player (address, x, y, color, last_placed) VALUES (?, ?, ?, ?, ?)", b.keyspace),
		getPlayer: fmt.Sprintf(
			"SELECT address, x, y, color, last_placed FROM %s.player WHERE address = ?", b.keyspace),
		insertPixel: fmt.Sprintf(
			"INSERT INTO %s.canvas (canvas_part, x, y, data) VALUES (?, ?, ?, ?)", b.keyspace),
		getPixel: fmt.Sprintf(
			"SELECT data FROM %s.canvas WHERE canvas_part = ? AND x = ? AND y = ?", b.keyspace),
	}, nil
}

// Manager is the long-lived storage handle. Immutable after TryBuild and
// safe for unsynchronized concurrent use; the database is the only point
// of mutation. Failed calls are surfaced to the caller, never retried.
type Manager struct {
	session      *gocql.Session
	dimMid       uint32
	insertPlayer string
	getPlayer    string
	insertPixel  string
	getPixel     string
}

var _ Store = (*Manager)(nil)

// GetUser looks up the player row by address.
func (m *Manager) GetUser(ctx context.Context, address string) (PlayerRecord, error) {
	var rec PlayerRecord
	err := m.session.Query(m.getPlayer, address).WithContext(ctx).
		Scan(&rec.Address, &rec.X, &rec.Y, &rec.Color, &rec.LastPlaced)
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, gocql.ErrNotFound):
		return PlayerRecord{}, ErrInvalidUser
	default:
		return PlayerRecord{}, classify("player", err)
	}
}

// GetPixel looks up the cell row for a coordinate in its shard.
func (m *Manager) GetPixel(ctx context.Context, x, y uint32) (PixelData, error) {
	ix, err := toInt32("x", x)
	if err != nil {
		return PixelData{}, err
	}
	iy, err := toInt32("y", y)
	if err != nil {
		return PixelData{}, err
	}
	part := m.Partition(x, y)

	var data PixelData
	err = m.session.Query(m.getPixel, part, ix, iy).WithContext(ctx).Scan(&data)
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, gocql.ErrNotFound):
		return PixelData{}, ErrNoPixelData
	default:
		return PixelData{}, classify("canvas", err)
	}
}

// UpdateDB overwrites the player row and the cell row for one placement.
// The two writes are issued concurrently and joined; if either fails the
// whole call fails. There is no transaction across the two tables: a
// timeout after one write lands leaves them divergent until the next
// placement at that coordinate or by that address.
func (m *Manager) UpdateDB(ctx context.Context, req PlacementRequest) error {
	ix, err := toInt32("x", req.X)
	if err != nil {
		return err
	}
	iy, err := toInt32("y", req.Y)
	if err != nil {
		return err
	}
	color, err := toInt32("color", req.Color)
	if err != nil {
		return err
	}
	// already checked by the gateway, re-validated here
	if req.Address == "" {
		return ErrInvalidUser
	}

	// one timestamp for both rows so cooldown and canvas state agree
	lastPlaced := time.Unix(time.Now().Unix(), 0).UTC()
	part := m.Partition(req.X, req.Y)
	data := PixelData{Address: req.Address, Color: color, LastPlaced: lastPlaced}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.session.Query(m.insertPlayer, req.Address, ix, iy, color, lastPlaced).
			WithContext(gctx).Exec()
	})
	g.Go(func() error {
		return m.session.Query(m.insertPixel, part, ix, iy, data).
			WithContext(gctx).Exec()
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("placement write: %w", err)
	}
	return nil
}

// Partition returns the shard label for a coordinate. Shared by the
// update and read paths.
func (m *Manager) Partition(x, y uint32) string {
	return PartitionLabel(Route(x, y, m.dimMid))
}

// Ping verifies the session still serves reads. Used by readiness probes.
func (m *Manager) Ping(ctx context.Context) error {
	return m.session.Query("SELECT release_version FROM system.local").WithContext(ctx).Exec()
}

// Close releases the session.
func (m *Manager) Close() {
	m.session.Close()
}

func toInt32(field string, v uint32) (int32, error) {
	if v > math.MaxInt32 {
		return 0, &RangeError{Field: field, Value: v}
	}
	return int32(v), nil
}

// classify separates decode failures from transport failures. A row that
// came back in an unexpected shape is a DecodeError; everything else is a
// connectivity problem and is wrapped as such.
func classify(table string, err error) error {
	var ue gocql.UnmarshalError
	if errors.As(err, &ue) {
		return &DecodeError{Query: table, Err: err}
	}
	return fmt.Errorf("scylla: query %s: %w", table, err)
}
