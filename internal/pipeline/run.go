package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lukaszgryglicki/mmgrid/internal/alara"
	"github.com/lukaszgryglicki/mmgrid/internal/meshstore"
	"github.com/lukaszgryglicki/mmgrid/internal/mmgrid"
	"github.com/sirupsen/logrus"
)

// Run generates the macromaterial grid described by cfg, exports it onto a
// mesh and writes the configured outputs. It returns the mesh it wrote.
func Run(cfg *Config, log *logrus.Logger) (*meshstore.Mesh, mmgrid.Result, error) {
	if log == nil {
		log = mmgrid.Logger()
	}
	grid, err := cfg.Grid()
	if err != nil {
		return nil, mmgrid.Result{}, err
	}
	model, err := cfg.Geometry.Build()
	if err != nil {
		return nil, mmgrid.Result{}, fmt.Errorf("geometry: %w", err)
	}

	opts := []mmgrid.Option{mmgrid.WithLogger(log), mmgrid.WithSeed(cfg.Seed)}
	if cfg.Workers > 0 {
		opts = append(opts, mmgrid.WithWorkers(cfg.Workers))
	}
	gen, err := mmgrid.NewGenerator(grid, model, opts...)
	if err != nil {
		return nil, mmgrid.Result{}, err
	}
	mmgrid.DebugLog("Registered %d materials: %v", gen.Registry().Len(), gen.Registry().Keys())

	res, err := gen.Generate(cfg.Samples, cfg.Mode())
	if err != nil {
		return nil, res, err
	}
	if err := gen.Store().Conservation(mmgrid.ConservationTol); err != nil {
		// Skipped rays leave part of a voxel unscored.
		if res.Skipped == 0 {
			return nil, res, err
		}
		log.WithField("skipped", res.Skipped).Warnf("Conservation check failed: %v", err)
	}

	mesh, err := meshstore.New(grid.Bounds(mmgrid.AxisX), grid.Bounds(mmgrid.AxisY), grid.Bounds(mmgrid.AxisZ))
	if err != nil {
		return nil, res, err
	}
	if err := mmgrid.Export(gen.Store(), gen.Registry(), mesh); err != nil {
		return nil, res, err
	}

	if err := writeNetCDF(mesh, cfg.Output); err != nil {
		return nil, res, err
	}
	log.WithField("path", cfg.Output).Info("Saved mesh")

	if cfg.ALARA != "" {
		if err := writeALARA(mesh, cfg.ALARA); err != nil {
			return nil, res, err
		}
		log.WithField("path", cfg.ALARA).Info("Saved ALARA geometry")
	}
	if cfg.PNG != "" {
		for m := 0; m < gen.Registry().Len(); m++ {
			paths, err := mesh.SaveTagPNGs(mmgrid.FractionTag(m), cfg.PNG, 1)
			if err != nil {
				return nil, res, err
			}
			mmgrid.DebugLog("Saved %d PNG slices for %s", len(paths), gen.Registry().Key(m))
		}
		log.WithField("prefix", cfg.PNG).Info("Saved PNG slices")
	}
	return mesh, res, nil
}

func create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

func writeNetCDF(mesh *meshstore.Mesh, path string) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	if err := mesh.WriteNetCDF(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func writeALARA(mesh *meshstore.Mesh, path string) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	if err := alara.WriteGeometry(f, mesh, nil); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
