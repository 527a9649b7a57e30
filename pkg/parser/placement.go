package parser

import (
	"fmt"
	"math"

	"github.com/op-bnbplace/opbnb-place-api/pkg/events"
	"github.com/op-bnbplace/opbnb-place-api/pkg/history"
)

// ParsePlacementRow deserializes a Kafka message value into an archive
// row. Payloads missing required fields are rejected so the archiver can
// skip them without touching the database.
func ParsePlacementRow(data []byte) (history.PlacementRow, error) {
	evt, err := events.Decode(data)
	if err != nil {
		return history.PlacementRow{}, fmt.Errorf("failed to unmarshal placement event: %w", err)
	}

	if evt.ID == "" {
		return history.PlacementRow{}, fmt.Errorf("missing event id")
	}
	if evt.Address == "" {
		return history.PlacementRow{}, fmt.Errorf("missing address")
	}
	if evt.Partition == "" {
		return history.PlacementRow{}, fmt.Errorf("missing partition label")
	}
	if evt.PlacedAt.IsZero() {
		return history.PlacementRow{}, fmt.Errorf("missing placement timestamp")
	}
	if evt.X > math.MaxInt32 || evt.Y > math.MaxInt32 || evt.Color > math.MaxInt32 {
		return history.PlacementRow{}, fmt.Errorf("coordinate or color out of column range")
	}

	return history.PlacementRow{
		EventID:    evt.ID,
		Address:    evt.Address,
		X:          int32(evt.X),
		Y:          int32(evt.Y),
		Color:      int32(evt.Color),
		CanvasPart: evt.Partition,
		PlacedAt:   evt.PlacedAt,
	}, nil
}
