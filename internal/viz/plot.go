package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/helicalc/busgrid/internal/dispatch"
	"github.com/helicalc/busgrid/internal/grid"
)

// Magnitudes returns |B| per row. Jacobian tables contribute only their
// centre rows.
func Magnitudes(t *dispatch.Table) []float64 {
	out := make([]float64, 0, len(t.Fields))
	for i, f := range t.Fields {
		if t.Jacobian && t.Points[i].Offset != grid.Center {
			continue
		}
		out = append(out, math.Sqrt(f.Bx*f.Bx+f.By*f.By+f.Bz*f.Bz))
	}
	return out
}

// Downsample keeps at most n values by taking the maximum of each bucket,
// so narrow peaks survive.
func Downsample(values []float64, n int) []float64 {
	if n < 1 || len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		lo, hi := i*len(values)/n, (i+1)*len(values)/n
		m := values[lo]
		for _, v := range values[lo+1 : hi] {
			m = max(m, v)
		}
		out[i] = m
	}
	return out
}

// Plot charts |B| in tesla along the table rows.
func Plot(t *dispatch.Table, width, height int) (string, error) {
	mags := Magnitudes(t)
	if len(mags) == 0 {
		return "", fmt.Errorf("table has no rows")
	}
	return asciigraph.Plot(Downsample(mags, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(6),
		asciigraph.Caption(fmt.Sprintf("|B| [T] over %d rows", len(mags))),
	), nil
}
