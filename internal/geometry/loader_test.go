package geometry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	table, err := NewLoader("testdata").Load("13")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if table.Version != "13" {
		t.Errorf("expected version 13, got %q", table.Version)
	}

	counts := map[Category]int{Arc: 5, ArcTransfer: 1, Connector: 2}
	for c, n := range counts {
		rows := table.Rows(c)
		if len(rows) != n {
			t.Errorf("%s: expected %d rows, got %d", c, n, len(rows))
		}
		for _, r := range rows {
			if r.Category != c {
				t.Errorf("%s: row %d tagged %q", c, r.N, r.Category)
			}
		}
	}

	want := Record{
		Category: Arc, N: 1, R0: 1.2, W: 0.02, T: 0.005, I: 6114,
		Z0: 4.2, DPhi: 1.5707963267948966,
	}
	if diff := cmp.Diff(want, table.Arcs[0]); diff != "" {
		t.Errorf("arc 1 mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader("testdata")

	if _, err := l.Load("12"); err == nil {
		t.Error("expected error for missing version")
	}
	if _, err := l.Load("99"); err == nil {
		t.Error("expected error for mismatched version declaration")
	}
}

func TestRadius(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want float64
	}{
		{"arc uses R0", Record{Category: Arc, R0: 1.2, RCurve: 0.3}, 1.2},
		{"connector uses R0", Record{Category: Connector, R0: 0.8}, 0.8},
		{"transfer uses curvature", Record{Category: ArcTransfer, R0: 2.0, RCurve: 0.5}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Radius(); got != tt.want {
				t.Errorf("Radius() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(" " + string(c) + " ")
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	if _, err := ParseCategory("straight"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestVersionFromParamName(t *testing.T) {
	tests := map[string]string{
		"Mu2e_V13": "13",
		"Mu2e_V14": "14",
		"13":       "13",
	}
	for in, want := range tests {
		if got := VersionFromParamName(in); got != want {
			t.Errorf("VersionFromParamName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCacheLoadsOnce(t *testing.T) {
	cache := NewCache(NewLoader("testdata"))

	a, err := cache.Get("13")
	if err != nil {
		t.Fatalf("first get failed: %v", err)
	}
	b, err := cache.Get("13")
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}

	if a != b {
		t.Error("cache returned different tables for the same version")
	}
	if cache.Loads() != 1 {
		t.Errorf("expected 1 load, got %d", cache.Loads())
	}

	if _, err := cache.Get("12"); err == nil {
		t.Error("expected error for missing version")
	}
	if cache.Loads() != 1 {
		t.Errorf("failed load should not be counted, got %d", cache.Loads())
	}
}
