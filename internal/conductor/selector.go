package conductor

import (
	"fmt"

	"github.com/helicalc/busgrid/internal/failure"
	"github.com/helicalc/busgrid/internal/geometry"
)

// TransferThreshold is the first conductor number of the transfer arcs in
// the arc numbering scheme.
const TransferThreshold = 25

// Select returns the single record numbered n in category c.
func Select(t *geometry.Table, c geometry.Category, n int) (geometry.Record, error) {
	var (
		found   geometry.Record
		matches int
	)
	for _, r := range t.Rows(c) {
		if r.N == n {
			found = r
			matches++
		}
	}

	switch matches {
	case 0:
		return geometry.Record{}, failure.Configf(failure.ErrNotFound, "no %s conductor %d in geometry v%s", c, n, t.Version)
	case 1:
		return found, nil
	default:
		return geometry.Record{}, failure.Configf(failure.ErrAmbiguous, "%d %s conductors numbered %d in geometry v%s", matches, c, n, t.Version)
	}
}

// ArcCategory maps an arc conductor number to its table.
func ArcCategory(n int) geometry.Category {
	if n < TransferThreshold {
		return geometry.Arc
	}
	return geometry.ArcTransfer
}

// Tag is the conductor part of an artifact name.
func Tag(c geometry.Category, n int) string {
	switch c {
	case geometry.ArcTransfer:
		return fmt.Sprintf("cond_N_%d_arc_transfer", n)
	case geometry.Connector:
		return fmt.Sprintf("coil_%d_buscon", n)
	default:
		return fmt.Sprintf("cond_N_%d_arc", n)
	}
}
