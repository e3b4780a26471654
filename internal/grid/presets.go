package grid

import "math"

// Builtin returns a fresh copy of the standard region table. Coordinates
// are in the detector-solenoid frame, metres.
func Builtin() Registry {
	cart := func(name string, x, y, z Axis) Region {
		return Region{Name: name, Kind: Cartesian, Parts: []Part{{Label: name, X: x, Y: y, Z: z}}}
	}

	fmsPhi := Axis{Min: 0, Max: 11 * math.Pi / 6, Step: math.Pi / 6}
	fmsZ := Axis{Min: 4.0, Max: 14.0, Step: 0.025}
	fms := Part{Label: "FMS", R: Axis{Min: 0, Max: 0.8, Step: 0.1}, Phi: fmsPhi, Z: fmsZ}
	fmsSP := Part{Label: "FMS_SP", R: Axis{Min: 0.05, Max: 0.75, Step: 0.1}, Phi: fmsPhi, Z: fmsZ}

	return Registry{
		"TSd": cart("TSd",
			Axis{Min: -0.8, Max: 0.8, Step: 0.05},
			Axis{Min: -0.8, Max: 0.8, Step: 0.05},
			Axis{Min: 2.5, Max: 4.0, Step: 0.05}),
		"DS": cart("DS",
			Axis{Min: -0.8, Max: 0.8, Step: 0.05},
			Axis{Min: -0.8, Max: 0.8, Step: 0.05},
			Axis{Min: 4.0, Max: 14.0, Step: 0.05}),
		"DSCartVal": cart("DSCartVal",
			Axis{Min: -0.6, Max: 0.6, Step: 0.1},
			Axis{Min: -0.6, Max: 0.6, Step: 0.1},
			Axis{Min: 4.0, Max: 14.0, Step: 0.1}),
		"DSCylFMS": {Name: "DSCylFMS", Kind: Cylindrical, Parts: []Part{fms}},
		"DSCylFMSAll": {Name: "DSCylFMSAll", Kind: Cylindrical, Parts: []Part{fms, fmsSP}},
		"DSCylFine": {Name: "DSCylFine", Kind: Cylindrical, Parts: []Part{{
			Label: "DSCylFine",
			R:     Axis{Min: 0, Max: 0.8, Step: 0.025},
			Phi:   Axis{Min: 0, Max: 31 * math.Pi / 16, Step: math.Pi / 16},
			Z:     Axis{Min: 4.0, Max: 14.0, Step: 0.025},
		}}},
		"DSUnc": {Name: "DSUnc", Kind: External},
	}
}
