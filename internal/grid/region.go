package grid

import (
	"fmt"
	"math"
	"sort"

	"github.com/helicalc/busgrid/internal/failure"
)

type Kind string

const (
	Cartesian   Kind = "cartesian"
	Cylindrical Kind = "cylindrical"
	External    Kind = "external"
)

const countEps = 1e-9

// Axis is an inclusive range sampled every Step.
type Axis struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

func (a Axis) Validate() error {
	for _, v := range []float64{a.Min, a.Max, a.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("axis %+v has a non-finite bound", a)
		}
	}
	if a.Step <= 0 {
		return fmt.Errorf("axis step must be positive, got %g", a.Step)
	}
	if a.Max < a.Min {
		return fmt.Errorf("axis max %g below min %g", a.Max, a.Min)
	}
	return nil
}

// Count is the number of samples; Max is included when it lies on the
// step lattice.
func (a Axis) Count() int {
	return int(math.Floor((a.Max-a.Min)/a.Step+countEps)) + 1
}

func (a Axis) Value(i int) float64 {
	return a.Min + float64(i)*a.Step
}

func (a Axis) Values() []float64 {
	vals := make([]float64, a.Count())
	for i := range vals {
		vals[i] = a.Value(i)
	}
	return vals
}

// Part is one sampling domain. Cartesian parts use X, Y, Z; cylindrical
// parts use R, Phi, Z.
type Part struct {
	Label string `yaml:"label"`
	X     Axis   `yaml:"x,omitempty"`
	Y     Axis   `yaml:"y,omitempty"`
	R     Axis   `yaml:"r,omitempty"`
	Phi   Axis   `yaml:"phi,omitempty"`
	Z     Axis   `yaml:"z"`
}

type Region struct {
	Name  string `yaml:"name"`
	Kind  Kind   `yaml:"kind"`
	Parts []Part `yaml:"parts,omitempty"`
}

func (r Region) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("region has no name")
	}
	switch r.Kind {
	case External:
		if len(r.Parts) != 0 {
			return fmt.Errorf("region %s: external regions take no parts", r.Name)
		}
		return nil
	case Cartesian, Cylindrical:
	default:
		return fmt.Errorf("region %s: unknown kind %q", r.Name, r.Kind)
	}
	if len(r.Parts) == 0 {
		return fmt.Errorf("region %s: no parts", r.Name)
	}
	for i, p := range r.Parts {
		if err := r.validatePart(p); err != nil {
			return fmt.Errorf("region %s part %d: %w", r.Name, i, err)
		}
	}
	return nil
}

func (r Region) validatePart(p Part) error {
	axes := []Axis{p.X, p.Y, p.Z}
	if r.Kind == Cylindrical {
		axes = []Axis{p.R, p.Phi, p.Z}
	}
	for _, a := range axes {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	if r.Kind == Cylindrical {
		if p.R.Min < 0 {
			return fmt.Errorf("negative radius %g", p.R.Min)
		}
		if p.Phi.Max-p.Phi.Min >= 2*math.Pi-countEps {
			return fmt.Errorf("phi range %g..%g wraps around", p.Phi.Min, p.Phi.Max)
		}
	}
	return nil
}

// Count is the analytic number of points the region generates.
func (r Region) Count() int {
	n := 0
	for _, p := range r.Parts {
		switch r.Kind {
		case Cartesian:
			n += p.X.Count() * p.Y.Count() * p.Z.Count()
		case Cylindrical:
			nr, zeros := p.R.Count(), 0
			for _, v := range p.R.Values() {
				if round(v) == 0 {
					zeros++
				}
			}
			axis := 0
			if zeros > 0 {
				axis = 1
			}
			n += ((nr-zeros)*p.Phi.Count() + axis) * p.Z.Count()
		}
	}
	return n
}

// Registry maps region names to regions.
type Registry map[string]Region

func (reg Registry) Lookup(name string) (Region, error) {
	r, ok := reg[name]
	if !ok {
		return Region{}, failure.Configf(failure.ErrInvalidRegion, "unknown region %q (available: %v)", name, reg.Names())
	}
	return r, nil
}

func (reg Registry) Add(r Region) error {
	if err := r.Validate(); err != nil {
		return err
	}
	reg[r.Name] = r
	return nil
}

func (reg Registry) Names() []string {
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
