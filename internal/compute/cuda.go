//go:build cuda

package compute

/*
#cgo CFLAGS: -I/opt/cuda/include
#cgo LDFLAGS: -L/opt/cuda/lib64 -L${SRCDIR} -lcudart -lbusbar_kernels -lstdc++
#include <stdlib.h>

extern int cuda_device_count();
extern const char* cuda_device_name_get(int device);
extern int arc_field_gpu(int device, const double* elems, int n_elems, const double* points, int n_points, double* out);
*/
import "C"

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/helicalc/busgrid/internal/conductor"
	"github.com/helicalc/busgrid/internal/dispatch"
	"github.com/helicalc/busgrid/internal/geometry"
	"github.com/helicalc/busgrid/internal/grid"
)

type CUDABackend struct {
	count      int
	deviceName string
}

func NewCUDABackend() *CUDABackend {
	count := int(C.cuda_device_count())
	name := ""
	if count > 0 {
		name = C.GoString(C.cuda_device_name_get(0))
	}
	return &CUDABackend{count: count, deviceName: name}
}

func (c *CUDABackend) Name() string {
	if c.count > 0 {
		return "cuda (" + c.deviceName + ")"
	}
	return "cuda (not available)"
}

func (c *CUDABackend) Available() bool { return c.count > 0 }
func (c *CUDABackend) Devices() int    { return c.count }
func (c *CUDABackend) Cleanup()        {}

func (c *CUDABackend) NewIntegrator(rec geometry.Record, res conductor.Resolution, device int) (dispatch.Integrator, error) {
	if device < 0 || device >= c.count {
		return nil, fmt.Errorf("cuda device %d out of range [0, %d)", device, c.count)
	}
	frame, err := newArcFrame(rec, res)
	if err != nil {
		return nil, err
	}

	packed := make([]float64, 0, 6*len(frame.elems))
	for _, e := range frame.elems {
		packed = append(packed, e.P[0], e.P[1], e.P[2], e.W[0], e.W[1], e.W[2])
	}
	return &cudaIntegrator{frame: frame, device: device, elems: packed}, nil
}

type cudaIntegrator struct {
	frame  *arcFrame
	device int
	elems  []float64
}

func (c *cudaIntegrator) AuxColumns() []string { return auxColumns }

func (c *cudaIntegrator) Integrate(ctx context.Context, batch []grid.Point) ([]dispatch.Field, error) {
	n := len(batch)
	out := make([]dispatch.Field, n)
	if n == 0 {
		return out, nil
	}

	pts := make([]float64, 3*n)
	for i, p := range batch {
		l := c.frame.toLocal(p.X, p.Y, p.Z)
		pts[3*i], pts[3*i+1], pts[3*i+2] = l[0], l[1], l[2]
	}
	res := make([]float64, 3*n)

	rc := C.arc_field_gpu(
		C.int(c.device),
		(*C.double)(unsafe.Pointer(&c.elems[0])),
		C.int(len(c.frame.elems)),
		(*C.double)(unsafe.Pointer(&pts[0])),
		C.int(n),
		(*C.double)(unsafe.Pointer(&res[0])),
	)
	if rc != 0 {
		return nil, fmt.Errorf("arc_field_gpu on device %d returned %d", c.device, int(rc))
	}

	for i := range out {
		b := c.frame.rot.mul(vec3{res[3*i], res[3*i+1], res[3*i+2]})
		for k := range b {
			b[k] *= Mu0Over4Pi
		}
		out[i] = dispatch.Field{
			Bx:  b[0],
			By:  b[1],
			Bz:  b[2],
			Aux: []float64{pts[3*i], pts[3*i+1], pts[3*i+2]},
		}
	}
	return out, ctx.Err()
}
