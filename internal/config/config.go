// Package config loads the tunable parameters needed to stand up a
// world: its dimensions, the default viewer field of view, the
// rasterizer's block size, and persistence paths.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures the tunable parameters needed to bootstrap a world.
type Config struct {
	World     WorldConfig     `json:"world"`
	Viewer    ViewerConfig    `json:"viewer"`
	Rasterize RasterizeConfig `json:"rasterize"`
	Paths     PathsConfig     `json:"paths"`
}

// WorldConfig holds the world's outer bounds, the extent every
// element's bounds is clipped to.
type WorldConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ViewerConfig holds the default viewer parameters used when a
// caller doesn't supply its own.
type ViewerConfig struct {
	FOVDegrees float64 `json:"fovDegrees"`
}

// RasterizeConfig holds the shroud rasterizer's tunables.
type RasterizeConfig struct {
	BlockSize int `json:"blockSize"`
}

// PathsConfig holds the on-disk locations the CLI reads from and
// writes to by default.
type PathsConfig struct {
	TreePath   string `json:"treePath"`
	PortalPath string `json:"portalPath"`
}

// FOVRadians returns the configured field of view in radians.
func (v ViewerConfig) FOVRadians() float64 {
	return v.FOVDegrees * math.Pi / 180
}

// Load reads configuration from a file if provided. An empty path
// returns defaults. The format is chosen by the file extension: ".yml"
// and ".yaml" are decoded as YAML, everything else as JSON.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Width:  1024,
			Height: 1024,
		},
		Viewer: ViewerConfig{
			FOVDegrees: 135,
		},
		Rasterize: RasterizeConfig{
			BlockSize: 32,
		},
		Paths: PathsConfig{
			TreePath:   "world.yaml",
			PortalPath: "portals.yaml",
		},
	}
}

// marker is the config file name FindRoot looks for while walking up
// from the current directory.
const marker = "projectvis.yaml"

// FindRoot walks up from the current working directory looking for a
// projectvis.yaml marker file, returning the directory that contains
// it. Lets the CLI locate a project's config without requiring an
// explicit --config flag on every invocation.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found in any parent directory of %s", marker, cwd)
		}
		dir = parent
	}
}

// Validate reports the first invariant violation found, if any.
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return errors.New("world.width and world.height must be positive")
	}
	if c.Viewer.FOVDegrees <= 0 || c.Viewer.FOVDegrees >= 360 {
		return errors.New("viewer.fovDegrees must lie in (0, 360)")
	}
	if c.Rasterize.BlockSize <= 0 {
		return errors.New("rasterize.blockSize must be positive")
	}
	if c.World.Width%c.Rasterize.BlockSize != 0 || c.World.Height%c.Rasterize.BlockSize != 0 {
		return errors.New("rasterize.blockSize must evenly divide world.width and world.height")
	}
	if c.Paths.TreePath == "" {
		return errors.New("paths.treePath must be set")
	}
	return nil
}
