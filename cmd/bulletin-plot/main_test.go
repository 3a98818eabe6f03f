package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.ngs.io/bulletin-maps/internal/adapter/dataset/ncfixture"
)

// isolate points the configuration at fresh folders.
func isolate(t *testing.T) (root, out string) {
	t.Helper()
	root = t.TempDir()
	out = filepath.Join(t.TempDir(), "frames")
	t.Setenv("DATA_ROOT", root)
	t.Setenv("IMAGE_DPI", "10")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RENDER_CONFIG", "")
	t.Setenv("ANNOTATIONS_FILE", "")
	t.Setenv("COASTLINE_SHAPEFILE", "")
	t.Setenv("LOG_LEVEL", "warn")
	return root, out
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	return len(entries)
}

func TestRun_ExitCodes(t *testing.T) {
	root, out := isolate(t)
	if err := os.WriteFile(filepath.Join(root, "bad"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "20240102"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "20240102", ncfixture.FileName("TEMP", "20240102", "20240102")), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"missing production date", nil, 1},
		{"missing output folder", []string{"20240101"}, 2},
		{"output folder not creatable", []string{"20240101", filepath.Join(root, "bad", "frames")}, 3},
		{"production date folder missing", []string{"20240101", out}, 4},
		{"input cannot be opened", []string{"20240102", out}, 5},
		{"unknown product", []string{"-product", "wind", "20240101", out}, 7},
		{"conflicting policies", []string{"-all", "-first", "20240101", out}, 7},
		{"help", []string{"-h"}, 0},
		{"version", []string{"-version"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := run(tt.args, &stdout, &stderr); got != tt.want {
				t.Fatalf("exit code = %d, want %d (stderr: %s)", got, tt.want, stderr.String())
			}
			if n := countFiles(t, out); n != 0 {
				t.Fatalf("expected no frames, found %d files", n)
			}
		})
	}
}

func TestRun_RendersFrames(t *testing.T) {
	root, out := isolate(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	path := filepath.Join(root, "20240101", ncfixture.FileName("TEMP", "20240101", "20240101"))
	b := ncfixture.Temperature([]float64{39, 40, 41}, []float64{17, 18, 19}, ncfixture.Hourly(start, 2), "20240101",
		func(t, r, c int) float64 { return 15 + float64(t) + 0.1*float64(r*c) })
	if err := ncfixture.Write(path, b); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var stdout, stderr bytes.Buffer
	if got := run([]string{"20240101", out}, &stdout, &stderr); got != 0 {
		t.Fatalf("exit code = %d, stderr: %s", got, stderr.String())
	}
	for _, name := range []string{"mfs_sst_2024-01-01_00.png", "mfs_sst_2024-01-01_01.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing frame %s: %v", name, err)
		}
		if !strings.Contains(stdout.String(), name) {
			t.Errorf("stdout does not list %s", name)
		}
	}
	if n := countFiles(t, out); n != 2 {
		t.Errorf("expected 2 files, found %d", n)
	}
}
