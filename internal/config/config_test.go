package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "non positive world width",
			mutate: func(cfg *Config) {
				cfg.World.Width = 0
			},
			wantErr: "world.width and world.height must be positive",
		},
		{
			name: "non positive world height",
			mutate: func(cfg *Config) {
				cfg.World.Height = -1
			},
			wantErr: "world.width and world.height must be positive",
		},
		{
			name: "fov out of range (zero)",
			mutate: func(cfg *Config) {
				cfg.Viewer.FOVDegrees = 0
			},
			wantErr: "viewer.fovDegrees must lie in (0, 360)",
		},
		{
			name: "fov out of range (full circle)",
			mutate: func(cfg *Config) {
				cfg.Viewer.FOVDegrees = 360
			},
			wantErr: "viewer.fovDegrees must lie in (0, 360)",
		},
		{
			name: "non positive block size",
			mutate: func(cfg *Config) {
				cfg.Rasterize.BlockSize = 0
			},
			wantErr: "rasterize.blockSize must be positive",
		},
		{
			name: "block size does not divide world dimensions",
			mutate: func(cfg *Config) {
				cfg.Rasterize.BlockSize = 33
			},
			wantErr: "rasterize.blockSize must evenly divide world.width and world.height",
		},
		{
			name: "missing tree path",
			mutate: func(cfg *Config) {
				cfg.Paths.TreePath = ""
			},
			wantErr: "paths.treePath must be set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected an error, got nil")
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("unexpected error: got %q want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load default config: %v", err)
	}
	if want := Default(); !reflect.DeepEqual(cfg, want) {
		t.Fatalf("default configuration mismatch:\nwant: %#v\n got: %#v", want, cfg)
	}
}

func TestLoadReadsJSONFileAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.World.Width = 2048
	cfg.Paths.TreePath = "custom.yaml"

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("loaded configuration mismatch:\nwant: %#v\n got: %#v", cfg, got)
	}
}

func TestLoadReadsYAMLFileAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.Viewer.FOVDegrees = 90

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if got.Viewer.FOVDegrees != 90 {
		t.Fatalf("expected fovDegrees to round-trip through yaml, got %v", got.Viewer.FOVDegrees)
	}
}

func TestLoadInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.World.Width = 0

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err = Load(path)
	if err == nil {
		t.Fatalf("expected load to fail")
	}
	if !strings.Contains(err.Error(), "validate config: world.width and world.height must be positive") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFindRootLocatesMarkerInParentDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, marker), []byte("{}"), 0o600); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o700); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	t.Chdir(nested)

	got, err := FindRoot()
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	if got != root {
		t.Fatalf("FindRoot() = %q, want %q", got, root)
	}
}

func TestFindRootMissingMarkerFails(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := FindRoot(); err == nil {
		t.Fatalf("expected an error when no marker file exists above the temp dir")
	}
}

func TestFOVRadiansConversion(t *testing.T) {
	v := ViewerConfig{FOVDegrees: 180}
	got := v.FOVRadians()
	want := 3.141592653589793
	if got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("FOVRadians(180deg) = %v, want ~%v", got, want)
	}
}
