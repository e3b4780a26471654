//go:build !cuda

package compute

import (
	"fmt"

	"github.com/helicalc/busgrid/internal/conductor"
	"github.com/helicalc/busgrid/internal/dispatch"
	"github.com/helicalc/busgrid/internal/geometry"
)

type CUDABackend struct{}

func NewCUDABackend() *CUDABackend {
	return &CUDABackend{}
}

func (c *CUDABackend) Name() string    { return "cuda (not available)" }
func (c *CUDABackend) Available() bool { return false }
func (c *CUDABackend) Devices() int    { return 0 }
func (c *CUDABackend) Cleanup()        {}

func (c *CUDABackend) NewIntegrator(rec geometry.Record, res conductor.Resolution, device int) (dispatch.Integrator, error) {
	return nil, fmt.Errorf("cuda backend not built (rebuild with -tags cuda)")
}
