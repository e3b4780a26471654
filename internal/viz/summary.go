package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/helicalc/busgrid/internal/catalog"
	"github.com/helicalc/busgrid/internal/conductor"
	"github.com/helicalc/busgrid/internal/geometry"
	"github.com/helicalc/busgrid/internal/grid"
	"github.com/helicalc/busgrid/internal/run"
)

func Summary(out *run.Outcome) string {
	var b strings.Builder
	b.WriteString(Title.Render(out.Artifact) + "\n\n")
	b.WriteString(Row("Status", StatusOK.Render("done")) + "\n")
	b.WriteString(Row("Rows", fmt.Sprintf("%d in %d batches", out.Rows, out.Batches)) + "\n")
	b.WriteString(Row("Backend", out.Backend) + "\n")
	b.WriteString(Row("Duration", out.Duration.Round(time.Millisecond).String()) + "\n")
	b.WriteString(Row("Output", out.Path) + "\n")
	b.WriteString(Row("Log", out.LogPath))
	return Panel.Render(b.String())
}

// PlanSummary describes a planned run before it starts.
func PlanSummary(p *run.Plan) string {
	rows := "from input file"
	if n := p.Rows(); n >= 0 {
		rows = fmt.Sprintf("%d", n)
	}

	var b strings.Builder
	b.WriteString(Title.Render(p.Artifact) + "\n\n")
	b.WriteString(Row("Region", fmt.Sprintf("%s (%s)", p.Region.Name, p.Region.Kind)) + "\n")
	b.WriteString(Row("Conductor", fmt.Sprintf("%s %d", p.Params.Category, p.Params.Conductor)) + "\n")
	b.WriteString(Row("Resolution", p.Resolution.String()) + "\n")
	b.WriteString(Row("Rows", rows) + "\n")
	b.WriteString(Row("Batch size", fmt.Sprintf("%d", p.Params.BatchSize)) + "\n")
	b.WriteString(Row("Device", fmt.Sprintf("%d", p.Params.Device)))
	return Panel.Render(b.String())
}

func RegionTable(reg grid.Registry) string {
	var b strings.Builder
	b.WriteString(Header.Render(fmt.Sprintf("%-14s %-12s %-24s %10s", "REGION", "KIND", "PARTS", "POINTS")) + "\n")
	for _, name := range reg.Names() {
		r := reg[name]
		labels := make([]string, len(r.Parts))
		for i, p := range r.Parts {
			labels[i] = p.Label
		}
		count := "external"
		if r.Kind != grid.External {
			count = fmt.Sprintf("%d", r.Count())
		}
		fmt.Fprintf(&b, "%-14s %-12s %-24s %10s\n", name, r.Kind, strings.Join(labels, ","), count)
	}
	return b.String()
}

// ConductorTable lists every record of t with its sampling resolution.
func ConductorTable(t *geometry.Table) string {
	var b strings.Builder
	b.WriteString(Header.Render(fmt.Sprintf("%-13s %5s %8s %8s %9s  %s", "CATEGORY", "N", "RADIUS", "T", "I", "RESOLUTION")) + "\n")
	for _, c := range geometry.Categories {
		for _, rec := range t.Rows(c) {
			res := Subtle.Render("invalid")
			if r, err := conductor.Resolve(rec); err == nil {
				res = r.String()
			}
			fmt.Fprintf(&b, "%-13s %5d %8.4g %8.4g %9.6g  %s\n", c, rec.N, rec.Radius(), rec.T, rec.I, res)
		}
	}
	return b.String()
}

func RunTable(runs []catalog.Run) string {
	var b strings.Builder
	b.WriteString(Header.Render(fmt.Sprintf("%-8s %-19s %-10s %9s %10s  %s", "RUN", "STARTED", "DEVICE", "ROWS", "DURATION", "ARTIFACT")) + "\n")
	for _, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(&b, "%-8s %-19s %-10s %9d %10s  %s\n",
			id, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Device, r.Rows, r.Duration.Round(time.Millisecond), r.Artifact)
	}
	return b.String()
}
