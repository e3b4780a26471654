package geometry

import (
	"fmt"
	"strings"
)

type Category string

const (
	Arc         Category = "arc"
	ArcTransfer Category = "arc-transfer"
	Connector   Category = "connector"
)

var Categories = []Category{Arc, ArcTransfer, Connector}

func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.TrimSpace(s)); c {
	case Arc, ArcTransfer, Connector:
		return c, nil
	}
	return "", fmt.Errorf("unknown conductor category %q (want arc, arc-transfer or connector)", s)
}

// Record is one row of a geometry table. Lengths are in metres, angles in
// radians, current in amperes.
type Record struct {
	Category Category `yaml:"-"`

	N      int     `yaml:"cond_n"`
	R0     float64 `yaml:"r0"`
	RCurve float64 `yaml:"r_curve,omitempty"`
	W      float64 `yaml:"w"`
	T      float64 `yaml:"t"`
	I      float64 `yaml:"i"`

	X0 float64 `yaml:"x0"`
	Y0 float64 `yaml:"y0"`
	Z0 float64 `yaml:"z0"`

	Phi0 float64 `yaml:"phi0"`
	DPhi float64 `yaml:"dphi"`

	Phi2   float64 `yaml:"phi2"`
	Theta2 float64 `yaml:"theta2"`
	Psi2   float64 `yaml:"psi2"`
}

// Radius is the characteristic radius of the conductor: the curvature
// radius for transfer arcs, the base radius otherwise.
func (r Record) Radius() float64 {
	if r.Category == ArcTransfer {
		return r.RCurve
	}
	return r.R0
}

type Table struct {
	Version      string   `yaml:"version"`
	Arcs         []Record `yaml:"arcs"`
	ArcsTransfer []Record `yaml:"arcs_transfer"`
	BusConnect   []Record `yaml:"busbarconnect"`
}

// Rows returns the records of one category. The slice must not be modified.
func (t *Table) Rows(c Category) []Record {
	switch c {
	case Arc:
		return t.Arcs
	case ArcTransfer:
		return t.ArcsTransfer
	case Connector:
		return t.BusConnect
	}
	return nil
}

func (t *Table) tag() {
	for _, c := range Categories {
		rows := t.Rows(c)
		for i := range rows {
			rows[i].Category = c
		}
	}
}
