package logsink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var start = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestAcquireWritesToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	s, err := Acquire(dir, "DS_region_cond_N_1_arc", start, zapcore.InfoLevel, zap.String("run", "abc"))
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	wantPath := filepath.Join(dir, "2026-03-14_092653_calculate_DS_region_cond_N_1_arc.log")
	if s.Path() != wantPath {
		t.Errorf("path = %s, want %s", s.Path(), wantPath)
	}

	s.Logger().Info("grid built", zap.Int("points", 218889))
	s.Logger().Debug("hidden")
	if err := s.Release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "grid built" || entry["run"] != "abc" || entry["points"] != float64(218889) {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	s, err := Acquire(t.TempDir(), "x", start, zapcore.InfoLevel)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if err := s.Release(); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := s.Release(); err != nil {
		t.Fatalf("second release: %v", err)
	}

	// logging after release is dropped rather than written to a closed file
	s.Logger().Info("late")
}

func TestAcquireRefusesExistingFile(t *testing.T) {
	dir := t.TempDir()

	s, err := Acquire(dir, "x", start, zapcore.InfoLevel)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer s.Release()

	if _, err := Acquire(dir, "x", start, zapcore.InfoLevel); err == nil {
		t.Error("expected error when the log file already exists")
	}
}

func TestFileName(t *testing.T) {
	got := FileName(start, "TSd_region_coil_56_buscon_1a2b3c4d")
	want := "2026-03-14_092653_calculate_TSd_region_coil_56_buscon_1a2b3c4d.log"
	if got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
}
