package grid

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/helicalc/busgrid/internal/failure"
)

var externalColumns = []string{"X", "Y", "Z", "HP"}

// LoadExternal reads a point list for an external region. The file is CSV
// with a header naming at least X, Y, Z and HP; other columns are dropped.
func LoadExternal(path string) (Grid, error) {
	if path == "" {
		return nil, failure.Configf(failure.ErrMissingInput, "external regions need an input grid file")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open input grid: %v", failure.ErrConfiguration, err)
	}
	defer f.Close()

	g, err := ReadExternal(f)
	if err != nil {
		return nil, fmt.Errorf("%w: input grid %s: %v", failure.ErrConfiguration, path, err)
	}
	return g, nil
}

func ReadExternal(r io.Reader) (Grid, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	cols := make([]int, len(externalColumns))
	for i, name := range externalColumns {
		j, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		cols[i] = j
	}

	var g Grid
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var xyz [3]float64
		for i := range xyz {
			xyz[i], err = strconv.ParseFloat(rec[cols[i]], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, externalColumns[i], err)
			}
		}
		g = append(g, Point{X: xyz[0], Y: xyz[1], Z: xyz[2], HP: rec[cols[3]]})
	}
	return g, nil
}
