package scylla

// The canvas is split into four static shards around its midpoint. Each
// shard is one wide row in the canvas table, keyed by its label, with the
// cells of that quadrant as clustered columns.

// NumPartitions is the number of canvas shards.
const NumPartitions = 4

var partitionLabels = [NumPartitions]string{"v_part1", "v_part2", "v_part3", "v_part4"}

// Route maps a coordinate onto one of the four canvas shards. The midpoint
// itself belongs to the lower quadrant on both axes. Writers and readers
// must both go through this function: a cell written under one label is
// unreachable under any other.
func Route(x, y, dimMid uint32) int {
	switch {
	case x <= dimMid && y <= dimMid:
		return 0
	case x <= dimMid:
		return 1
	case y <= dimMid:
		return 2
	default:
		return 3
	}
}

// PartitionLabel returns the storage label for a shard index.
func PartitionLabel(i int) string {
	return partitionLabels[i]
}
