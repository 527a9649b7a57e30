package events

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestPlacementRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("encode/decode preserves every field", prop.ForAll(
		func(id, address string, x, y, color uint32, partition string) bool {
			in := Placement{
				ID:        id,
				Address:   address,
				X:         x,
				Y:         y,
				Color:     color,
				Partition: partition,
				PlacedAt:  time.Unix(1700000000, 0).UTC(),
			}

			data, err := in.Encode()
			if err != nil {
				return false
			}

			out, err := Decode(data)
			if err != nil {
				return false
			}

			return out.ID == in.ID &&
				out.Address == in.Address &&
				out.X == in.X &&
				out.Y == in.Y &&
				out.Color == in.Color &&
				out.Partition == in.Partition &&
				out.PlacedAt.Equal(in.PlacedAt)
		},
		gen.Identifier(),
		gen.AnyString(),
		gen.UInt32(),
		gen.UInt32(),
		gen.UInt32Range(0, 255),
		gen.OneConstOf("v_part1", "v_part2", "v_part3", "v_part4"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeInvalidPayload(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.Error(t, err)
}
