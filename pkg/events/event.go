package events

import (
	"time"

	"github.com/goccy/go-json"
)

// Placement is the event published after a successful dual write. The
// partition label is carried so consumers never re-derive routing; the
// canvas dimension is not part of the wire format.
type Placement struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	X         uint32    `json:"x"`
	Y         uint32    `json:"y"`
	Color     uint32    `json:"color"`
	Partition string    `json:"partition"`
	PlacedAt  time.Time `json:"placed_at"`
}

// Encode serializes the event for the Kafka payload.
func (p Placement) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// Decode deserializes a Kafka payload back into an event.
func Decode(data []byte) (Placement, error) {
	var p Placement
	if err := json.Unmarshal(data, &p); err != nil {
		return Placement{}, err
	}
	return p, nil
}
