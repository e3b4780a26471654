package dispatch

import (
	"context"

	"github.com/helicalc/busgrid/internal/grid"
)

// Field is the kernel output for one point, in tesla. Aux holds the values
// of the integrator's auxiliary columns in declaration order.
type Field struct {
	Bx, By, Bz float64
	Aux        []float64
}

// Integrator computes the field of one conductor. Integrate blocks until
// the whole batch is done and must return one Field per point, in order.
type Integrator interface {
	Integrate(ctx context.Context, batch []grid.Point) ([]Field, error)
	AuxColumns() []string
}

// Span is the half-open row range [Start, End) of a batch.
type Span struct {
	Start, End int
}

func (s Span) Len() int { return s.End - s.Start }

type Progress struct {
	Batch   int
	Batches int
	Points  int
	Total   int
}

func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Points) / float64(p.Total)
}

type Observer interface {
	OnBatch(p Progress)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Progress)

func (f ObserverFunc) OnBatch(p Progress) { f(p) }

// Table is the result of a run: the grid rows and their fields, in grid
// order.
type Table struct {
	Points     grid.Grid
	Fields     []Field
	AuxColumns []string
	Jacobian   bool
}

func (t *Table) Len() int { return len(t.Points) }
