package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Placement path
	PlacementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "place_placements_total",
		Help: "The total number of placements written to both tables",
	})
	PlacementErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "place_placement_errors_total",
		Help: "The total number of placements that failed at the storage layer",
	})
	PublishErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "place_event_publish_errors_total",
		Help: "The total number of placement events that could not be published after retries",
	})
	PlacementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "place_placement_write_latency_seconds",
		Help:    "Latency of the joined player/canvas dual write",
		Buckets: prometheus.DefBuckets,
	})

	// Read path
	PlayerMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "place_player_misses_total",
		Help: "The total number of lookups for addresses that never placed a pixel",
	})
	PixelMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "place_pixel_misses_total",
		Help: "The total number of lookups for coordinates that were never placed on",
	})

	// Archiver
	ArchiverMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "place_archiver_messages_total",
		Help: "The total number of placement events consumed from Kafka",
	})
	ArchiverBatchWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "place_archiver_batch_writes_total",
		Help: "The total number of batch insert operations into the history table",
	})
	ArchiverWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "place_archiver_write_errors_total",
		Help: "The total number of errors during history table writes",
	})
	ArchiverInsertLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "place_archiver_insert_latency_seconds",
		Help:    "Latency of history batch inserts",
		Buckets: prometheus.DefBuckets,
	})
	ArchiverCheckpointSavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "place_archiver_checkpoint_saves_total",
		Help: "The total number of archive cursor saves",
	})
)
