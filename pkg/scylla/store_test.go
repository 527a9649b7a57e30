package scylla

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Validation runs before any query is issued, so these paths are testable
// on a zero-value Manager without a live cluster.

func TestUpdateDBRejectsMissingAddress(t *testing.T) {
	m := &Manager{}

	err := m.UpdateDB(context.Background(), PlacementRequest{X: 5, Y: 5, Color: 3})
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestUpdateDBRangeErrors(t *testing.T) {
	m := &Manager{}

	tests := []struct {
		name  string
		req   PlacementRequest
		field string
	}{
		{"x out of range", PlacementRequest{Address: "A", X: math.MaxInt32 + 1, Y: 0, Color: 0}, "x"},
		{"y out of range", PlacementRequest{Address: "A", X: 0, Y: math.MaxInt32 + 1, Color: 0}, "y"},
		{"color out of range", PlacementRequest{Address: "A", X: 0, Y: 0, Color: math.MaxUint32}, "color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.UpdateDB(context.Background(), tt.req)
			var re *RangeError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.field, re.Field)
		})
	}
}

func TestGetPixelRangeError(t *testing.T) {
	m := &Manager{}

	_, err := m.GetPixel(context.Background(), math.MaxInt32+1, 0)
	var re *RangeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "x", re.Field)
}

func TestToInt32Property(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("values within int32 range convert losslessly", prop.ForAll(
		func(v uint32) bool {
			got, err := toInt32("x", v)
			if v > math.MaxInt32 {
				return err != nil
			}
			return err == nil && uint32(got) == v
		},
		gen.UInt32(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestClassify(t *testing.T) {
	decodeErr := classify("player", gocql.UnmarshalError("can not unmarshal int into string"))
	var de *DecodeError
	require.ErrorAs(t, decodeErr, &de)
	assert.Equal(t, "player", de.Query)

	transportErr := classify("player", gocql.ErrTimeoutNoResponse)
	assert.NotErrorAs(t, transportErr, &de)
	assert.ErrorIs(t, transportErr, gocql.ErrTimeoutNoResponse)
}

func TestPixelDataUDTRoundTrip(t *testing.T) {
	textType := gocql.NewNativeType(4, gocql.TypeVarchar, "")
	intType := gocql.NewNativeType(4, gocql.TypeInt, "")
	tsType := gocql.NewNativeType(4, gocql.TypeTimestamp, "")

	in := PixelData{
		Address:    "0xabc",
		Color:      42,
		LastPlaced: time.Unix(1700000000, 0).UTC(),
	}

	addr, err := in.MarshalUDT("address", textType)
	require.NoError(t, err)
	color, err := in.MarshalUDT("color", intType)
	require.NoError(t, err)
	placed, err := in.MarshalUDT("last_placed", tsType)
	require.NoError(t, err)

	var out PixelData
	require.NoError(t, out.UnmarshalUDT("address", textType, addr))
	require.NoError(t, out.UnmarshalUDT("color", intType, color))
	require.NoError(t, out.UnmarshalUDT("last_placed", tsType, placed))

	assert.Equal(t, in, out)
}

func TestPixelDataUnknownField(t *testing.T) {
	textType := gocql.NewNativeType(4, gocql.TypeVarchar, "")

	_, err := PixelData{}.MarshalUDT("owner", textType)
	assert.Error(t, err)

	var p PixelData
	assert.Error(t, p.UnmarshalUDT("owner", textType, nil))
}

func TestManagerPartitionMatchesRoute(t *testing.T) {
	m := &Manager{dimMid: 500}

	assert.Equal(t, PartitionLabel(Route(5, 5, 500)), m.Partition(5, 5))
	assert.Equal(t, PartitionLabel(Route(900, 100, 500)), m.Partition(900, 100))
	assert.Equal(t, "v_part1", m.Partition(500, 500))
	assert.Equal(t, "v_part4", m.Partition(501, 501))
}
