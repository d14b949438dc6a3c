package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/lukaszgryglicki/mmgrid/internal/pipeline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const halfSlab = `{
  "mesh": {"x": {"bounds": [-1, 0, 1]}, "y": {"n": 1}, "z": {"n": 1}},
  "geometry": {
    "world": {"min": [-1, -1, -1], "max": [1, 1, 1]},
    "bodies": [
      {"kind": "box", "min": [-1, -1, -1], "max": [0, 1, 1], "material": 7, "density": 2.5}
    ]
  },
  "samples": 4
}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	root := newRootCmd(log)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenerateThenInspect(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "run.json")
	require.NoError(t, os.WriteFile(cfg, []byte(halfSlab), 0o644))
	mesh := filepath.Join(dir, "grid.ncf")

	_, err := run(t, "generate", cfg, "-o", mesh, "-n", "2", "-w", "1")
	require.NoError(t, err)

	out, err := run(t, "inspect", mesh)
	require.NoError(t, err)
	require.Contains(t, out, "mesh: 2x1x1 (2 voxels)\n")
	require.Contains(t, out, "  [0] id=0 density=0 mean fraction=0.500000\n")
	require.Contains(t, out, "  [1] id=7 density=2.5 mean fraction=0.500000\n")
	require.Contains(t, out, "voxel tags: mat000_err, mat000_frac, mat001_err, mat001_frac\n")
}

func TestInspectErrors(t *testing.T) {
	_, err := run(t, "inspect", filepath.Join(t.TempDir(), "missing.ncf"))
	require.Error(t, err)
	_, err = run(t, "inspect")
	require.Error(t, err)
}

func TestOverridesOnlyChangedFlags(t *testing.T) {
	var o overrides
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	o.register(fs)
	require.NoError(t, fs.Parse([]string{"--samples", "9", "--random"}))

	cfg := &pipeline.Config{Samples: 3, Workers: 5, Output: "keep.ncf"}
	o.apply(fs, cfg)
	require.Equal(t, 9, cfg.Samples)
	require.True(t, cfg.Random)
	require.Equal(t, 5, cfg.Workers)
	require.Equal(t, "keep.ncf", cfg.Output)
}
