package history

import "time"

// PlacementRow is one archived placement. Unlike the canvas tables, the
// archive keeps every placement rather than the latest per cell.
type PlacementRow struct {
	EventID    string    `db:"event_id"`
	Address    string    `db:"address"`
	X          int32     `db:"x"`
	Y          int32     `db:"y"`
	Color      int32     `db:"color"`
	CanvasPart string    `db:"canvas_part"`
	PlacedAt   time.Time `db:"placed_at"`
}
