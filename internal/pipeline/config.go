// Package pipeline loads a run configuration and drives a full
// generate-export-write cycle.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lukaszgryglicki/mmgrid/internal/csg"
	"github.com/lukaszgryglicki/mmgrid/internal/mmgrid"
)

// Defaults applied by LoadConfig.
const (
	DefaultOutput = "mmgrid.ncf"
	DefaultN      = 10
)

// AxisCfg gives the boundaries of one mesh axis, either explicitly or as
// N uniform divisions of [Min, Max].
type AxisCfg struct {
	Bounds []float64 `json:"bounds,omitempty" toml:"bounds"`
	Min    float64   `json:"min,omitempty" toml:"min"`
	Max    float64   `json:"max,omitempty" toml:"max"`
	N      int       `json:"n,omitempty" toml:"n"`
}

type MeshCfg struct {
	X AxisCfg `json:"x" toml:"x"`
	Y AxisCfg `json:"y" toml:"y"`
	Z AxisCfg `json:"z" toml:"z"`
}

type Config struct {
	Mesh     MeshCfg      `json:"mesh" toml:"mesh"`
	Geometry csg.ModelCfg `json:"geometry" toml:"geometry"`
	Samples  int          `json:"samples,omitempty" toml:"samples"`
	Random   bool         `json:"random,omitempty" toml:"random"`
	Seed     int64        `json:"seed,omitempty" toml:"seed"`
	Workers  int          `json:"workers,omitempty" toml:"workers"`
	Output   string       `json:"output,omitempty" toml:"output"`
	ALARA    string       `json:"alara,omitempty" toml:"alara"`
	PNG      string       `json:"png,omitempty" toml:"png"`
}

// Build returns the boundaries, defaulting to the world box extent.
func (c AxisCfg) Build(lo, hi float64) ([]float64, error) {
	if len(c.Bounds) > 0 {
		return append([]float64(nil), c.Bounds...), nil
	}
	min, max, n := c.Min, c.Max, c.N
	if min == 0 && max == 0 {
		min, max = lo, hi
	}
	if n <= 0 {
		n = DefaultN
	}
	if !(max > min) {
		return nil, fmt.Errorf("axis range [%g, %g]: %w", min, max, mmgrid.ErrBadBounds)
	}
	return mmgrid.UniformBounds(min, max, n), nil
}

// Grid builds the voxel grid.
func (c *Config) Grid() (*mmgrid.Grid, error) {
	w := c.Geometry.World
	var b [3][]float64
	for a, ac := range [3]AxisCfg{c.Mesh.X, c.Mesh.Y, c.Mesh.Z} {
		var err error
		if b[a], err = ac.Build(w.Min[a], w.Max[a]); err != nil {
			return nil, fmt.Errorf("mesh %s: %w", mmgrid.Axes[a], err)
		}
	}
	return mmgrid.NewGrid(b[0], b[1], b[2])
}

// Mode is the sampling mode selected by Random.
func (c *Config) Mode() mmgrid.SamplingMode {
	if c.Random {
		return mmgrid.RandomSampling
	}
	return mmgrid.GridSampling
}

// LoadConfig reads a TOML (.toml) or JSON config and fills defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	// Defaults / validation
	if cfg.Samples <= 0 {
		cfg.Samples = mmgrid.DefaultSamples
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if len(cfg.Geometry.Bodies) == 0 {
		return nil, fmt.Errorf("config has no bodies")
	}
	mmgrid.DebugLog("Loaded config from %s: samples=%d, random=%v, bodies=%d, output=%s",
		path, cfg.Samples, cfg.Random, len(cfg.Geometry.Bodies), cfg.Output)
	return &cfg, nil
}
