package compute

import (
	"fmt"
	"math"

	"github.com/helicalc/busgrid/internal/conductor"
	"github.com/helicalc/busgrid/internal/geometry"
)

// Mu0Over4Pi is μ0/4π in T·m/A.
const Mu0Over4Pi = 1e-7

type vec3 [3]float64

type mat3 [3]vec3

func (m mat3) mul(v vec3) vec3 {
	return vec3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

func (m mat3) mulT(v vec3) vec3 {
	return vec3{
		m[0][0]*v[0] + m[1][0]*v[1] + m[2][0]*v[2],
		m[0][1]*v[0] + m[1][1]*v[1] + m[2][1]*v[2],
		m[0][2]*v[0] + m[1][2]*v[1] + m[2][2]*v[2],
	}
}

func (m mat3) dot(n mat3) mat3 {
	var out mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += m[i][k] * n[k][j]
			}
		}
	}
	return out
}

func rotZ(a float64) mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return mat3{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

func rotY(a float64) mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return mat3{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}
}

// euler builds the ZYZ rotation from the conductor frame to the global
// frame.
func euler(phi, theta, psi float64) mat3 {
	return rotZ(phi).dot(rotY(theta)).dot(rotZ(psi))
}

// element is one midpoint cell in the conductor frame. W is the current
// element J·dV·t̂ in A·m.
type element struct {
	P vec3
	W vec3
}

// arcFrame is the discretised source shared by all backends.
type arcFrame struct {
	center vec3
	rot    mat3
	elems  []element
}

func cells(extent, step float64) (int, float64) {
	n := int(math.Ceil(math.Abs(extent)/step - 1e-9))
	if n < 1 {
		n = 1
	}
	return n, extent / float64(n)
}

func newArcFrame(rec geometry.Record, res conductor.Resolution) (*arcFrame, error) {
	radius := rec.Radius()
	switch {
	case radius <= 0:
		return nil, fmt.Errorf("%s conductor %d: radius %g", rec.Category, rec.N, radius)
	case rec.W <= 0 || rec.T <= 0:
		return nil, fmt.Errorf("%s conductor %d: cross-section %gx%g", rec.Category, rec.N, rec.W, rec.T)
	case rec.DPhi == 0:
		return nil, fmt.Errorf("%s conductor %d: zero angular extent", rec.Category, rec.N)
	case res.Radial <= 0 || res.Axial <= 0 || res.Angular <= 0:
		return nil, fmt.Errorf("invalid resolution %s", res)
	}

	nr, dr := cells(rec.W, res.Radial)
	nz, dz := cells(rec.T, res.Axial)
	np, dphi := cells(rec.DPhi, res.Angular)

	j := rec.I / (rec.W * rec.T)
	elems := make([]element, 0, nr*nz*np)
	for a := 0; a < nr; a++ {
		r := radius - rec.W/2 + (float64(a)+0.5)*dr
		for b := 0; b < nz; b++ {
			z := -rec.T/2 + (float64(b)+0.5)*dz
			for c := 0; c < np; c++ {
				phi := rec.Phi0 + (float64(c)+0.5)*dphi
				s, co := math.Sincos(phi)
				// dphi carries the sign of DPhi, so W follows the current.
				w := j * r * dr * dz * dphi
				elems = append(elems, element{
					P: vec3{r * co, r * s, z},
					W: vec3{-s * w, co * w, 0},
				})
			}
		}
	}

	return &arcFrame{
		center: vec3{rec.X0, rec.Y0, rec.Z0},
		rot:    euler(rec.Phi2, rec.Theta2, rec.Psi2),
		elems:  elems,
	}, nil
}

func (f *arcFrame) toLocal(x, y, z float64) vec3 {
	return f.rot.mulT(vec3{x - f.center[0], y - f.center[1], z - f.center[2]})
}

// field sums all elements at a point given in the conductor frame and
// returns the local-frame field.
func (f *arcFrame) field(p vec3) vec3 {
	var b vec3
	for _, e := range f.elems {
		dx, dy, dz := p[0]-e.P[0], p[1]-e.P[1], p[2]-e.P[2]
		r2 := dx*dx + dy*dy + dz*dz
		if r2 < 1e-24 {
			continue
		}
		inv := 1 / (r2 * math.Sqrt(r2))
		b[0] += (e.W[1]*dz - e.W[2]*dy) * inv
		b[1] += (e.W[2]*dx - e.W[0]*dz) * inv
		b[2] += (e.W[0]*dy - e.W[1]*dx) * inv
	}
	b[0] *= Mu0Over4Pi
	b[1] *= Mu0Over4Pi
	b[2] *= Mu0Over4Pi
	return b
}
