// Package run coordinates one field-map computation end to end.
//
// A run is planned first: the region, conductor record, sampling
// resolution, batch size and artifact name are all resolved before any
// grid point is generated, so configuration mistakes fail fast. Execute
// then builds the grid, truncates it for test runs, optionally augments
// it for Jacobians, streams it through the dispatcher and writes the
// result table. Every run owns a log file for its diagnostics.
package run
