package dispatch

import (
	"context"
	"fmt"

	"github.com/helicalc/busgrid/internal/failure"
	"github.com/helicalc/busgrid/internal/grid"
)

// Partition splits n rows into consecutive spans of at most size rows.
func Partition(n, size int) ([]Span, error) {
	if size < 1 {
		return nil, fmt.Errorf("batch size must be at least 1, got %d", size)
	}
	if n < 0 {
		return nil, fmt.Errorf("negative row count %d", n)
	}

	spans := make([]Span, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans, nil
}

type Dispatcher struct {
	size      int
	observers []Observer
}

func New(batchSize int) *Dispatcher {
	return &Dispatcher{size: batchSize}
}

func (d *Dispatcher) AddObserver(o Observer) { d.observers = append(d.observers, o) }

func (d *Dispatcher) BatchSize() int { return d.size }

// Run feeds g to integ batch by batch, strictly in order. The first failing
// batch aborts the run; nothing is returned for the batches already done.
func (d *Dispatcher) Run(ctx context.Context, g grid.Grid, integ Integrator) (*Table, error) {
	spans, err := Partition(len(g), d.size)
	if err != nil {
		return nil, err
	}

	table := &Table{
		Points:     g,
		Fields:     make([]Field, 0, len(g)),
		AuxColumns: integ.AuxColumns(),
	}

	for i, s := range spans {
		select {
		case <-ctx.Done():
			return nil, &failure.BatchError{Batch: i, Start: s.Start, End: s.End, Wrapped: ctx.Err()}
		default:
		}

		fields, err := integ.Integrate(ctx, g[s.Start:s.End])
		if err != nil {
			return nil, &failure.BatchError{Batch: i, Start: s.Start, End: s.End, Wrapped: err}
		}
		if len(fields) != s.Len() {
			err := fmt.Errorf("kernel returned %d fields for %d points", len(fields), s.Len())
			return nil, &failure.BatchError{Batch: i, Start: s.Start, End: s.End, Wrapped: err}
		}
		table.Fields = append(table.Fields, fields...)

		p := Progress{Batch: i + 1, Batches: len(spans), Points: s.End, Total: len(g)}
		for _, o := range d.observers {
			o.OnBatch(p)
		}
	}

	return table, nil
}
