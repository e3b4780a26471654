package config

import "github.com/helicalc/busgrid/internal/geometry"

// CategoryDefaults are the per-category run defaults. Batch sizes bound
// device memory: arcs are split into many more source cells than
// connectors.
var CategoryDefaults = map[geometry.Category]CategoryConfig{
	geometry.Arc: {
		BatchSize: 1250, TestRows: 10000, DefaultConductor: 1,
		OutputDir: "Bmaps/helicalc_partial", Label: "busbar",
	},
	geometry.ArcTransfer: {
		BatchSize: 1250, TestRows: 10000, DefaultConductor: 68,
		OutputDir: "Bmaps/helicalc_partial", Label: "busbar",
	},
	geometry.Connector: {
		BatchSize: 10000, TestRows: 100000, DefaultConductor: 56,
		OutputDir: "Bmaps/auxiliary_partial", Label: "helicalc",
	},
}
