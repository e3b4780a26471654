package compute

import (
	"fmt"

	"github.com/helicalc/busgrid/internal/conductor"
	"github.com/helicalc/busgrid/internal/dispatch"
	"github.com/helicalc/busgrid/internal/failure"
	"github.com/helicalc/busgrid/internal/geometry"
)

type Backend interface {
	Name() string
	Available() bool
	Devices() int
	NewIntegrator(rec geometry.Record, res conductor.Resolution, device int) (dispatch.Integrator, error)
	Cleanup()
}

// AutoSelect picks the GPU backend when one is present and falls back to
// the CPU otherwise.
func AutoSelect(device, workers int) (Backend, error) {
	if device < 0 {
		return nil, fmt.Errorf("%w: negative device index %d", failure.ErrConfiguration, device)
	}

	cuda := NewCUDABackend()
	if cuda.Available() {
		if device >= cuda.Devices() {
			return nil, fmt.Errorf("%w: device %d requested, %d available", failure.ErrConfiguration, device, cuda.Devices())
		}
		return cuda, nil
	}

	if device != 0 {
		return nil, fmt.Errorf("%w: device %d requested but no GPU is available", failure.ErrConfiguration, device)
	}
	return NewCPUBackend(workers), nil
}
