package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/df07/go-grid-raytracer/pkg/geometry"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}
	if cfg.Bounces != 3 {
		t.Errorf("Expected 3 bounces, got %d", cfg.Bounces)
	}
	if diff := cmp.Diff(geometry.MeshOptions{Mode: geometry.MeshGrid, GridSize: 20}, cfg.MeshOptions()); diff != "" {
		t.Errorf("Mesh options mismatch (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	input := `
width: 64
height: 32
integrator: pathtrace
scene: mesh
mesh_path: bunny.ply
texture: floor.png
bump: floor_normal.png
mesh:
  acceleration: naive
workers: 4
png: out.png
`
	cfg, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := Default()
	want.Width = 64
	want.Height = 32
	want.Integrator = "pathtrace"
	want.Scene = "mesh"
	want.MeshPath = "bunny.ply"
	want.Texture = "floor.png"
	want.Bump = "floor_normal.png"
	want.Mesh.Acceleration = "naive"
	want.Workers = 4
	want.PNG = "out.png"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
	if cfg.MeshOptions().Mode != geometry.MeshNaive {
		t.Errorf("Expected naive mesh mode, got %v", cfg.MeshOptions().Mode)
	}
}

func TestParse_EmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"Unknown field", "colour: red\n", "field colour not found"},
		{"Bad type", "width: wide\n", "decode config"},
		{"Negative size", "width: -1\n", "width and height"},
		{"Bad integrator", "integrator: photon\n", "integrator"},
		{"Bad acceleration", "mesh:\n  acceleration: bvh\n", "mesh acceleration"},
		{"Zero grid", "mesh:\n  grid_size: 0\n", "grid_size"},
		{"No outputs", "output: \"\"\n", "output or png"},
		{"Bad log level", "log_level: loud\n", "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Expected error containing %q, got %v", tt.contains, err)
			}
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Passes = 0
	cfg.TileSize = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected an error")
	}
	for _, problem := range []string{"passes", "tile_size"} {
		if !strings.Contains(err.Error(), problem) {
			t.Errorf("Expected error to mention %q, got %v", problem, err)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.yaml")
	if err := os.WriteFile(path, []byte("passes: 4\nseed: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Passes != 4 || cfg.Seed != 7 {
		t.Errorf("Expected passes 4 and seed 7, got %d and %d", cfg.Passes, cfg.Seed)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for a missing file")
	}
}
