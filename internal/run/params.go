package run

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/helicalc/busgrid/internal/conductor"
	"github.com/helicalc/busgrid/internal/config"
	"github.com/helicalc/busgrid/internal/geometry"
	"github.com/helicalc/busgrid/internal/grid"
	"github.com/helicalc/busgrid/internal/persist"
)

// Params are the user-facing knobs of a run. Zero values mean "use the
// configured default" for ParamName, Region, Conductor, JacobianStep,
// TestRows and BatchSize.
type Params struct {
	ParamName    string
	Region       string
	Category     geometry.Category
	Conductor    int
	Device       int
	Jacobian     bool
	JacobianStep float64
	Testing      bool
	TestRows     int
	BatchSize    int
	InputFile    string
	Columns      persist.Columns
}

// Plan is a fully resolved run.
type Plan struct {
	Params     Params
	Version    string
	Region     grid.Region
	Record     geometry.Record
	Resolution conductor.Resolution
	Tag        string
	Label      string
	Artifact   string
	OutputDir  string
}

// Rel is the artifact path relative to the data directory, without
// extension.
func (p *Plan) Rel() string {
	return filepath.Join(p.OutputDir, p.Artifact)
}

// LogName is the run-specific part of the log file name.
func (p *Plan) LogName(runID string) string {
	if len(runID) > 8 {
		runID = runID[:8]
	}
	return fmt.Sprintf("%s_region_%s_%s", p.Region.Name, p.Tag, runID)
}

// Rows is the number of grid rows the run will integrate, when it can be
// known without reading an external grid. It returns -1 otherwise.
func (p *Plan) Rows() int {
	if p.Region.Kind == grid.External {
		return -1
	}
	n := p.Region.Count()
	if p.Params.Testing && n > p.Params.TestRows {
		n = p.Params.TestRows
	}
	if p.Params.Jacobian {
		n *= grid.GroupSize
	}
	return n
}

// ArtifactName builds
// <param>.<region>_region.<test|standard>-<label><jacobian><full>.<tag>.
// The Jacobian marker carries the step when it differs from the default
// and full-column tables get a _full marker, so runs in different modes
// never share a name.
func ArtifactName(param, region string, testing bool, label string, jacobian bool, step float64, full bool, tag string) string {
	mode := "standard"
	if testing {
		mode = "test"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s.%s_region.%s-%s", param, region, mode, label)
	if jacobian {
		b.WriteString("_Jacobian")
		if step != config.DefaultJacobianStep {
			b.WriteString("_dxyz_")
			b.WriteString(strconv.FormatFloat(step, 'g', -1, 64))
		}
	}
	if full {
		b.WriteString("_full")
	}
	b.WriteString(".")
	b.WriteString(tag)
	return b.String()
}
