package conductor

import (
	"fmt"

	"github.com/helicalc/busgrid/internal/failure"
	"github.com/helicalc/busgrid/internal/geometry"
)

// ThinLimit is the cross-section thickness below which a conductor is
// integrated with the fine step table. A conductor exactly at the limit
// is thick.
const ThinLimit = 7e-3

type Class int

const (
	Thick Class = iota + 1
	Thin
)

func (c Class) String() string {
	switch c {
	case Thick:
		return "thick"
	case Thin:
		return "thin"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Steps is a row of the integration step table in metres.
type Steps struct {
	Radial       float64
	Axial        float64
	Longitudinal float64
}

var stepTable = map[Class]Steps{
	Thick: {Radial: 2e-3, Axial: 2e-3, Longitudinal: 5e-3},
	Thin:  {Radial: 1e-3, Axial: 1e-3, Longitudinal: 2.5e-3},
}

// StepsFor returns a copy of the table row for a class.
func StepsFor(c Class) Steps {
	return stepTable[c]
}

// Resolution is the source discretisation handed to the integration
// kernel. Angular is in radians.
type Resolution struct {
	Class   Class
	Radial  float64
	Axial   float64
	Angular float64
}

func (r Resolution) String() string {
	return fmt.Sprintf("%s dr=%g dz=%g dphi=%g", r.Class, r.Radial, r.Axial, r.Angular)
}

func Classify(thickness float64) Class {
	if thickness < ThinLimit {
		return Thin
	}
	return Thick
}

// Resolve derives the sampling resolution of a conductor. The longitudinal
// step is divided by the characteristic radius so that the angular step
// shrinks as curvature grows.
func Resolve(rec geometry.Record) (Resolution, error) {
	radius := rec.Radius()
	if radius <= 0 {
		return Resolution{}, fmt.Errorf("%w: %s conductor %d has no usable radius (%g)", failure.ErrConfiguration, rec.Category, rec.N, radius)
	}

	class := Classify(rec.T)
	steps := StepsFor(class)
	return Resolution{
		Class:   class,
		Radial:  steps.Radial,
		Axial:   steps.Axial,
		Angular: steps.Longitudinal / radius,
	}, nil
}
