package scylla

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// PlacementRequest is a single pixel placement as validated by the request
// gateway. Address must be non-empty; coordinates and color are re-checked
// against the int32 column width before any write is issued.
type PlacementRequest struct {
	Address string
	X       uint32
	Y       uint32
	Color   uint32
}

// PlayerRecord is a player's most recent placement. One row per address,
// overwritten in place on every placement; the gateway derives cooldown
// state from LastPlaced.
type PlayerRecord struct {
	Address    string
	X          int32
	Y          int32
	Color      int32
	LastPlaced time.Time
}

// PixelData mirrors the pixel_data UDT embedded in the canvas table.
type PixelData struct {
	Address    string
	Color      int32
	LastPlaced time.Time
}

// MarshalUDT implements gocql.UDTMarshaler.
func (p PixelData) MarshalUDT(name string, info gocql.TypeInfo) ([]byte, error) {
	switch name {
	case "address":
		return gocql.Marshal(info, p.Address)
	case "color":
		return gocql.Marshal(info, p.Color)
	case "last_placed":
		return gocql.Marshal(info, p.LastPlaced)
	default:
		return nil, fmt.Errorf("pixel_data has no field %q", name)
	}
}

// UnmarshalUDT implements gocql.UDTUnmarshaler.
func (p *PixelData) UnmarshalUDT(name string, info gocql.TypeInfo, data []byte) error {
	switch name {
	case "address":
		return gocql.Unmarshal(info, data, &p.Address)
	case "color":
		return gocql.Unmarshal(info, data, &p.Color)
	case "last_placed":
		return gocql.Unmarshal(info, data, &p.LastPlaced)
	default:
		return fmt.Errorf("pixel_data has no field %q", name)
	}
}
