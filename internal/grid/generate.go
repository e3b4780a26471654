package grid

import (
	"fmt"
	"math"
)

// Decimals is the rounding precision of cylindrical coordinates.
const Decimals = 9

var scale = math.Pow(10, Decimals)

func round(v float64) float64 {
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0
	}
	return r
}

// Generate builds the grid of a Cartesian or cylindrical region.
func Generate(r Region) (Grid, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.Kind == External {
		return nil, fmt.Errorf("region %s: external regions are loaded, not generated", r.Name)
	}

	g := make(Grid, 0, r.Count())
	for _, p := range r.Parts {
		if r.Kind == Cartesian {
			g = appendCartesian(g, p)
		} else {
			g = appendCylindrical(g, p)
		}
	}
	return g, nil
}

func appendCartesian(g Grid, p Part) Grid {
	xs, ys, zs := p.X.Values(), p.Y.Values(), p.Z.Values()
	for _, x := range xs {
		for _, y := range ys {
			for _, z := range zs {
				g = append(g, Point{X: x, Y: y, Z: z, HP: p.Label})
			}
		}
	}
	return g
}

func appendCylindrical(g Grid, p Part) Grid {
	rs, phis, zs := p.R.Values(), p.Phi.Values(), p.Z.Values()
	seen := make(map[[3]float64]struct{}, len(rs)*len(phis)*len(zs))
	for _, r := range rs {
		for _, phi := range phis {
			x, y := round(r*math.Cos(phi)), round(r*math.Sin(phi))
			for _, z := range zs {
				z = round(z)
				key := [3]float64{x, y, z}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				g = append(g, Point{X: x, Y: y, Z: z, HP: p.Label})
			}
		}
	}
	return g
}
