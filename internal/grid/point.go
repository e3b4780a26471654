package grid

import "fmt"

// Offset identifies a row within a Jacobian group.
type Offset int8

const (
	Center Offset = iota
	PlusX
	MinusX
	PlusY
	MinusY
	PlusZ
	MinusZ
)

// GroupSize is the number of rows a Jacobian group occupies.
const GroupSize = 7

var offsetNames = [GroupSize]string{"0", "+x", "-x", "+y", "-y", "+z", "-z"}

func (o Offset) String() string {
	if o >= 0 && int(o) < GroupSize {
		return offsetNames[o]
	}
	return fmt.Sprintf("Offset(%d)", int8(o))
}

// Delta returns the displacement of the offset for step h.
func (o Offset) Delta(h float64) (dx, dy, dz float64) {
	switch o {
	case PlusX:
		dx = h
	case MinusX:
		dx = -h
	case PlusY:
		dy = h
	case MinusY:
		dy = -h
	case PlusZ:
		dz = h
	case MinusZ:
		dz = -h
	}
	return dx, dy, dz
}

// Point is one evaluation point. Coordinates are in metres. Group and
// Offset are only meaningful after Jacobian augmentation.
type Point struct {
	X, Y, Z float64
	HP      string
	Group   int
	Offset  Offset
}

type Grid []Point

// Truncate returns a copy of the first min(n, len(g)) points.
func Truncate(g Grid, n int) Grid {
	if n < 0 {
		n = 0
	}
	if n > len(g) {
		n = len(g)
	}
	out := make(Grid, n)
	copy(out, g[:n])
	return out
}

// AugmentJacobian returns a grid of 7*len(g) points where each source point
// i becomes the group [p, p+x, p-x, p+y, p-y, p+z, p-z] with Group = i.
// All other columns are copied from the source point.
func AugmentJacobian(g Grid, h float64) Grid {
	out := make(Grid, 0, len(g)*GroupSize)
	for i, p := range g {
		for o := Center; o <= MinusZ; o++ {
			dx, dy, dz := o.Delta(h)
			q := p
			q.X += dx
			q.Y += dy
			q.Z += dz
			q.Group = i
			q.Offset = o
			out = append(out, q)
		}
	}
	return out
}
