// Package geometry holds the conductor parameter tables of a solenoid
// design version.
//
// A design version (for example "13", from the parameter set "Mu2e_V13")
// selects one YAML snapshot with three categories of conductors:
//
//   - arcs: curved bus-bar segments
//   - arcs_transfer: transfer arcs, characterised by a curvature radius
//   - busbarconnect: bus-bar connectors
//
// Tables are read-only once loaded. A [Cache] shares them between runs of
// the same process:
//
//	cache := geometry.NewCache(geometry.NewLoader("configs/geometry"))
//	table, err := cache.Get("13")
package geometry
