package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/lukaszgryglicki/mmgrid/internal/meshstore"
	"github.com/lukaszgryglicki/mmgrid/internal/mmgrid"
	"github.com/lukaszgryglicki/mmgrid/internal/pipeline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type overrides struct {
	samples int
	random  bool
	workers int
	seed    int64
	out     string
	alara   string
	png     string
}

func (o *overrides) register(fs *pflag.FlagSet) {
	fs.IntVarP(&o.samples, "samples", "n", 0, "rays per face cell side")
	fs.BoolVar(&o.random, "random", false, "jitter ray starts inside each face cell")
	fs.IntVarP(&o.workers, "workers", "w", 0, "worker goroutines (default: number of CPUs)")
	fs.Int64Var(&o.seed, "seed", 0, "random seed (0: time based)")
	fs.StringVarP(&o.out, "out", "o", "", "output NetCDF path")
	fs.StringVar(&o.alara, "alara", "", "also write ALARA geometry to this path")
	fs.StringVar(&o.png, "png", "", "also write PNG slices with this prefix")
}

// apply copies the flags the user set onto cfg.
func (o *overrides) apply(fs *pflag.FlagSet, cfg *pipeline.Config) {
	if fs.Changed("samples") {
		cfg.Samples = o.samples
	}
	if fs.Changed("random") {
		cfg.Random = o.random
	}
	if fs.Changed("workers") {
		cfg.Workers = o.workers
	}
	if fs.Changed("seed") {
		cfg.Seed = o.seed
	}
	if fs.Changed("out") {
		cfg.Output = o.out
	}
	if fs.Changed("alara") {
		cfg.ALARA = o.alara
	}
	if fs.Changed("png") {
		cfg.PNG = o.png
	}
}

func newRootCmd(log *logrus.Logger) *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:           "mmgrid",
		Short:         "Macromaterial grid generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			mmgrid.Debug = debug || os.Getenv("DEBUG") != ""
			if mmgrid.Debug {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose debug output")

	var o overrides
	gen := &cobra.Command{
		Use:   "generate <config.json|config.toml>",
		Short: "Compute material fractions for a mesh and write them out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pipeline.LoadConfig(args[0])
			if err != nil {
				return err
			}
			o.apply(cmd.Flags(), cfg)
			_, _, err = pipeline.Run(cfg, log)
			return err
		},
	}
	o.register(gen.Flags())

	inspect := &cobra.Command{
		Use:   "inspect <mesh.ncf>",
		Short: "Print the tags stored in a NetCDF mesh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectMesh(cmd, args[0])
		},
	}

	root.AddCommand(gen, inspect)
	return root
}

func inspectMesh(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	m, err := meshstore.ReadNetCDF(f)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	nx, ny, nz := m.Dims()
	fmt.Fprintf(out, "mesh: %dx%dx%d (%d voxels)\n", nx, ny, nz, m.Len())
	ids, _ := m.MeshTag(mmgrid.MaterialIDsTag)
	dens, _ := m.MeshTag(mmgrid.MaterialDensitiesTag)
	if len(dens) != len(ids) {
		return fmt.Errorf("%s: %s and %s differ in length", path, mmgrid.MaterialIDsTag, mmgrid.MaterialDensitiesTag)
	}
	for i := range ids {
		mean := 0.0
		if t, ok := m.Tag(mmgrid.FractionTag(i)); ok {
			for _, v := range t.Elements {
				mean += v
			}
			mean /= float64(len(t.Elements))
		}
		fmt.Fprintf(out, "  [%d] id=%d density=%g mean fraction=%.6f\n", i, int(ids[i]), dens[i], mean)
	}
	fmt.Fprintf(out, "voxel tags: %s\n", strings.Join(m.TagNames(), ", "))
	return nil
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	mmgrid.SetLogger(log)

	profile := os.Getenv("PROFILE") != ""
	if profile {
		f, err := os.Create("cpu.out")
		if err != nil {
			panic(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	if err := newRootCmd(log).Execute(); err != nil {
		log.Errorf("Error: %v", err)
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}
