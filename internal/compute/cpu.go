package compute

import (
	"context"
	"runtime"
	"sync"

	"github.com/helicalc/busgrid/internal/conductor"
	"github.com/helicalc/busgrid/internal/dispatch"
	"github.com/helicalc/busgrid/internal/geometry"
	"github.com/helicalc/busgrid/internal/grid"
)

type CPUBackend struct {
	workers int
}

// NewCPUBackend returns a backend using the given number of worker
// goroutines per batch, or one per CPU when workers < 1.
func NewCPUBackend(workers int) *CPUBackend {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Devices() int    { return 1 }
func (c *CPUBackend) Cleanup()        {}

func (c *CPUBackend) NewIntegrator(rec geometry.Record, res conductor.Resolution, device int) (dispatch.Integrator, error) {
	frame, err := newArcFrame(rec, res)
	if err != nil {
		return nil, err
	}
	return &cpuIntegrator{frame: frame, workers: c.workers}, nil
}

var auxColumns = []string{"x_local", "y_local", "z_local"}

type cpuIntegrator struct {
	frame   *arcFrame
	workers int
}

func (c *cpuIntegrator) AuxColumns() []string { return auxColumns }

// Elements reports how many source cells the conductor was split into.
func (c *cpuIntegrator) Elements() int { return len(c.frame.elems) }

func (c *cpuIntegrator) Integrate(ctx context.Context, batch []grid.Point) ([]dispatch.Field, error) {
	out := make([]dispatch.Field, len(batch))
	n := len(batch)

	workers := c.workers
	if n < 16 || workers < 2 {
		c.integrateRange(batch, out, 0, n)
		return out, ctx.Err()
	}

	var wg sync.WaitGroup
	chunkSize := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			c.integrateRange(batch, out, start, end)
		}(start, end)
	}

	wg.Wait()
	return out, ctx.Err()
}

func (c *cpuIntegrator) integrateRange(batch []grid.Point, out []dispatch.Field, start, end int) {
	f := c.frame
	for i := start; i < end; i++ {
		p := batch[i]
		local := f.toLocal(p.X, p.Y, p.Z)
		b := f.rot.mul(f.field(local))
		out[i] = dispatch.Field{
			Bx:  b[0],
			By:  b[1],
			Bz:  b[2],
			Aux: []float64{local[0], local[1], local[2]},
		}
	}
}
