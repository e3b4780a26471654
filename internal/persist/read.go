package persist

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/helicalc/busgrid/internal/dispatch"
	"github.com/helicalc/busgrid/internal/grid"
)

var known = map[string]bool{
	"X": true, "Y": true, "Z": true, "HP": true,
	"Group": true, "Offset": true,
	"Bx": true, "By": true, "Bz": true,
}

// Read loads an artifact written by Writer.
func Read(path string) (*dispatch.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

func decode(r io.Reader) (*dispatch.Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	idx := make(map[string]int, len(h))
	t := &dispatch.Table{}
	var aux []int
	for i, name := range h {
		idx[name] = i
		if !known[name] {
			t.AuxColumns = append(t.AuxColumns, name)
			aux = append(aux, i)
		}
	}
	for _, name := range []string{"X", "Y", "Z", "HP", "Bx", "By", "Bz"} {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	gi, grouped := idx["Group"]
	oi := idx["Offset"]

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		num := func(col int) float64 {
			if err != nil {
				return 0
			}
			var v float64
			v, err = strconv.ParseFloat(rec[col], 64)
			return v
		}

		p := grid.Point{X: num(idx["X"]), Y: num(idx["Y"]), Z: num(idx["Z"]), HP: rec[idx["HP"]]}
		fd := dispatch.Field{Bx: num(idx["Bx"]), By: num(idx["By"]), Bz: num(idx["Bz"])}
		if grouped {
			p.Group = int(num(gi))
			p.Offset = grid.Offset(num(oi))
			if p.Offset != grid.Center {
				t.Jacobian = true
			}
		}
		if len(aux) > 0 {
			fd.Aux = make([]float64, len(aux))
			for k, col := range aux {
				fd.Aux[k] = num(col)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		t.Points = append(t.Points, p)
		t.Fields = append(t.Fields, fd)
	}
	return t, nil
}
