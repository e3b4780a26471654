package persist

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/helicalc/busgrid/internal/dispatch"
	"github.com/helicalc/busgrid/internal/failure"
)

// Ext is the artifact file extension.
const Ext = ".csv"

type Columns int

const (
	// Reduced keeps coordinates, labels, Jacobian grouping (when present)
	// and the field.
	Reduced Columns = iota
	// Full also keeps grouping columns unconditionally and every
	// auxiliary column produced by the kernel.
	Full
)

func (c Columns) String() string {
	if c == Full {
		return "full"
	}
	return "reduced"
}

type Writer struct {
	root string
}

func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// Path is where an artifact with the given relative base name is written.
func (w *Writer) Path(rel string) string {
	return filepath.Join(w.root, rel+Ext)
}

// Write stores t under rel, replacing any previous artifact of that name.
// The file appears only once completely written.
func (w *Writer) Write(t *dispatch.Table, rel string, cols Columns) (string, error) {
	path := w.Path(rel)
	if len(t.Fields) != len(t.Points) {
		return "", &failure.PersistError{Path: path, Wrapped: fmt.Errorf("%d fields for %d points", len(t.Fields), len(t.Points))}
	}
	if err := writeAtomic(path, t, cols); err != nil {
		return "", &failure.PersistError{Path: path, Wrapped: err}
	}
	return path, nil
}

func writeAtomic(path string, t *dispatch.Table, cols Columns) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriterSize(tmp, 1<<20)
	if err := encode(bw, t, cols); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func header(t *dispatch.Table, cols Columns) []string {
	h := []string{"X", "Y", "Z", "HP"}
	if cols == Full || t.Jacobian {
		h = append(h, "Group", "Offset")
	}
	h = append(h, "Bx", "By", "Bz")
	if cols == Full {
		h = append(h, t.AuxColumns...)
	}
	return h
}

func encode(bw *bufio.Writer, t *dispatch.Table, cols Columns) error {
	w := csv.NewWriter(bw)
	h := header(t, cols)
	if err := w.Write(h); err != nil {
		return err
	}

	grouped := cols == Full || t.Jacobian
	row := make([]string, 0, len(h))
	for i, p := range t.Points {
		f := t.Fields[i]
		row = append(row[:0], ff(p.X), ff(p.Y), ff(p.Z), p.HP)
		if grouped {
			row = append(row, strconv.Itoa(p.Group), strconv.Itoa(int(p.Offset)))
		}
		row = append(row, ff(f.Bx), ff(f.By), ff(f.Bz))
		if cols == Full {
			if len(f.Aux) != len(t.AuxColumns) {
				return fmt.Errorf("row %d: %d aux values for %d columns", i, len(f.Aux), len(t.AuxColumns))
			}
			for _, v := range f.Aux {
				row = append(row, ff(v))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
