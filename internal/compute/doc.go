// Package compute provides the field-integration backends.
//
// A backend turns a conductor record and its sampling resolution into a
// [dispatch.Integrator] bound to one compute device:
//
//   - CUDA: GPU kernel from an external library, built with -tags cuda
//   - CPU: multi-goroutine Biot–Savart sum, always available
//
// # Selecting a device
//
//	backend, err := compute.AutoSelect(device, workers)
//	integ, err := backend.NewIntegrator(rec, res, device)
//
// When no GPU is present the CPU backend is returned and the device index
// only has to be zero.
//
// # Source model
//
// A conductor is a circular arc of rectangular cross-section (width W
// radially, thickness T axially) carrying a uniform current density. The
// cross-section and the arc are split into midpoint cells of the sampling
// resolution, and each cell contributes
//
//	dB = μ0/4π · J dV (t̂ × d) / |d|³
//
// to the field at a point separated from it by d.
package compute
