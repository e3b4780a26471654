// Package viz renders run progress and results in the terminal.
//
//   - [ProgressModel]: Bubble Tea model (bubbles progress bar and spinner) fed by a dispatch observer
//   - [Summary], [RegionTable], [ConductorTable]: lipgloss panels for CLI output
//   - [Plot]: asciigraph chart of |B| along the rows of a field map
package viz
