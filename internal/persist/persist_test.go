package persist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/helicalc/busgrid/internal/dispatch"
	"github.com/helicalc/busgrid/internal/failure"
	"github.com/helicalc/busgrid/internal/grid"
)

func sampleTable(jacobian bool) *dispatch.Table {
	pts := grid.Grid{{X: 0.1, Y: -0.2, Z: 4.05, HP: "DS"}, {X: 1e-9, Y: 0, Z: 13.95, HP: "DS"}}
	if jacobian {
		pts = grid.AugmentJacobian(pts, 0.001)
	}
	fields := make([]dispatch.Field, len(pts))
	for i := range fields {
		fields[i] = dispatch.Field{Bx: 1e-5 * float64(i), By: -2.5e-6, Bz: 0.9987654321, Aux: []float64{float64(i), 0.5, -0.5}}
	}
	return &dispatch.Table{
		Points:     pts,
		Fields:     fields,
		AuxColumns: []string{"x_local", "y_local", "z_local"},
		Jacobian:   jacobian,
	}
}

func readHeader(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	return strings.SplitN(string(data), "\n", 2)[0]
}

func TestWriteColumns(t *testing.T) {
	tests := []struct {
		name     string
		jacobian bool
		cols     Columns
		header   string
	}{
		{"reduced", false, Reduced, "X,Y,Z,HP,Bx,By,Bz"},
		{"reduced jacobian", true, Reduced, "X,Y,Z,HP,Group,Offset,Bx,By,Bz"},
		{"full", false, Full, "X,Y,Z,HP,Group,Offset,Bx,By,Bz,x_local,y_local,z_local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(t.TempDir())
			path, err := w.Write(sampleTable(tt.jacobian), "Bmaps/tests/run", tt.cols)
			if err != nil {
				t.Fatalf("write failed: %v", err)
			}
			if path != w.Path("Bmaps/tests/run") {
				t.Errorf("unexpected path %s", path)
			}
			if got := readHeader(t, path); got != tt.header {
				t.Errorf("header = %q, want %q", got, tt.header)
			}
		})
	}
}

func TestWriteReadBack(t *testing.T) {
	src := sampleTable(true)
	w := NewWriter(t.TempDir())

	path, err := w.Write(src, "run", Full)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if got.Len() != src.Len() {
		t.Fatalf("expected %d rows, got %d", src.Len(), got.Len())
	}
	if !got.Jacobian {
		t.Error("expected Jacobian table")
	}
	for i := range src.Points {
		if got.Points[i] != src.Points[i] {
			t.Fatalf("row %d: point %+v, want %+v", i, got.Points[i], src.Points[i])
		}
		a, b := got.Fields[i], src.Fields[i]
		if a.Bx != b.Bx || a.By != b.By || a.Bz != b.Bz {
			t.Fatalf("row %d: field %+v, want %+v", i, a, b)
		}
		if len(a.Aux) != 3 || a.Aux[0] != b.Aux[0] {
			t.Fatalf("row %d: aux %v, want %v", i, a.Aux, b.Aux)
		}
	}
}

func TestWriteOverwrites(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	if _, err := w.Write(sampleTable(true), "run", Reduced); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	path, err := w.Write(sampleTable(false), "run", Reduced)
	if err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Len() != 2 {
		t.Errorf("expected the second table (2 rows), got %d", got.Len())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the artifact, found %d entries", len(entries))
	}
}

func TestWriteFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	bad := sampleTable(false)
	bad.Fields[1].Aux = nil

	_, err := w.Write(bad, "run", Full)
	if !errors.Is(err, failure.ErrPersistence) {
		t.Fatalf("expected persistence failure, got %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected no files after failed write, found %d", len(entries))
	}
}

func TestWriteMismatchedTable(t *testing.T) {
	bad := sampleTable(false)
	bad.Fields = bad.Fields[:1]

	_, err := NewWriter(t.TempDir()).Write(bad, "run", Reduced)
	if !errors.Is(err, failure.ErrPersistence) {
		t.Errorf("expected persistence failure, got %v", err)
	}
}

func TestWriteUnwritableRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(root, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewWriter(root).Write(sampleTable(false), "run", Reduced)
	if !errors.Is(err, failure.ErrPersistence) {
		t.Errorf("expected persistence failure, got %v", err)
	}
}

func TestReadMissingColumn(t *testing.T) {
	_, err := decode(strings.NewReader("X,Y,Z,HP,Bx,By\n0,0,0,a,1,2\n"))
	if err == nil || !strings.Contains(err.Error(), `"Bz"`) {
		t.Errorf("expected missing Bz error, got %v", err)
	}
}
