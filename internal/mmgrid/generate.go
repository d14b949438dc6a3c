package mmgrid

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// SamplingMode selects how ray start points are placed on a face cell.
type SamplingMode int

const (
	// GridSampling places n x n start points at the centres of an even
	// subdivision of the face cell.
	GridSampling SamplingMode = iota
	// RandomSampling draws n x n uniform start points per face cell.
	RandomSampling
)

func (m SamplingMode) String() string {
	if m == RandomSampling {
		return "random"
	}
	return "grid"
}

// Result summarises one Generate call.
type Result struct {
	Samples         int // rays per face cell side
	SamplesPerVoxel int // 3 * Samples², the normalisation divisor
	Rays            int64
	Skipped         int64 // degenerate or unclassifiable rays, contributing nothing
	Exited          int64 // rays that left the geometry before the far face
	MaxStdError     float64
	Elapsed         time.Duration
}

// SkipFraction is the share of fired rays that were skipped.
func (r Result) SkipFraction() float64 {
	if r.Rays == 0 {
		return 0
	}
	return float64(r.Skipped) / float64(r.Rays)
}

// Option configures a Generator.
type Option func(*Generator)

// WithWorkers sets the number of sampling goroutines (default NumCPU).
func WithWorkers(n int) Option { return func(g *Generator) { g.workers = n } }

// WithSeed makes random sampling reproducible for a fixed worker count.
// Zero seeds from the clock.
func WithSeed(seed int64) Option { return func(g *Generator) { g.seed = seed } }

// WithProgress turns the percentage log lines on or off.
func WithProgress(on bool) Option { return func(g *Generator) { g.progress = on } }

func WithLogger(l *logrus.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// Generator computes a macromaterial grid: the volume fraction of every
// registered material in every voxel, with its standard error.
type Generator struct {
	grid    *Grid
	geom    Geometry
	reg     *Registry
	store   *Store
	sampler *sampler

	workers  int
	seed     int64
	progress bool
	log      *logrus.Logger

	stats *rayStats
}

// NewGenerator registers the materials of geom and allocates the store for grid.
func NewGenerator(grid *Grid, geom Geometry, opts ...Option) (*Generator, error) {
	if grid == nil {
		return nil, fmt.Errorf("mmgrid: nil grid: %w", ErrBadBounds)
	}
	reg, err := RegisterAll(geom)
	if err != nil {
		return nil, fmt.Errorf("mmgrid: registering materials for %s grid: %w", grid, err)
	}
	g := &Generator{
		grid:     grid,
		geom:     geom,
		reg:      reg,
		workers:  runtime.NumCPU(),
		progress: true,
		log:      logger,
		stats:    new(rayStats),
	}
	for _, o := range opts {
		o(g)
	}
	if g.workers < 1 {
		g.workers = 1
	}
	g.store = NewStore(grid, reg.Len())
	g.sampler = newSampler(grid, geom, reg)
	return g, nil
}

func (g *Generator) Grid() *Grid { return g.grid }

func (g *Generator) Registry() *Registry { return g.reg }

func (g *Generator) Store() *Store { return g.store }

// Generate fires samples² rays per face cell along each of the three axes,
// then normalises. Calling it again starts from empty accumulators.
func (g *Generator) Generate(samples int, mode SamplingMode) (Result, error) {
	if samples <= 0 {
		return Result{}, fmt.Errorf("mmgrid: generating %s grid with %d materials and %d samples: %w",
			g.grid, g.reg.Len(), samples, ErrZeroSamples)
	}
	g.store.reset()
	g.stats = new(rayStats)

	starts := make([]rayStarts, 0, len(Axes))
	var total int64
	for _, a := range Axes {
		s := newRayStarts(g.grid, a, samples, mode)
		starts = append(starts, s)
		total += int64(s.Len())
	}
	prog := newProgress(total, g.progress, g.log)

	start := time.Now()
	for _, s := range starts {
		g.castAxis(s, prog)
		DebugLog("Axis %s done: %d rays", s.axis, s.Len())
	}

	perVoxel := len(Axes) * samples * samples
	maxErr, err := g.store.Normalize(perVoxel)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		Samples:         samples,
		SamplesPerVoxel: perVoxel,
		Rays:            total,
		Skipped:         g.stats.skipped(),
		Exited:          g.stats.count(rayExited),
		MaxStdError:     maxErr,
		Elapsed:         time.Since(start),
	}

	fields := g.stats.fields()
	fields["grid"] = g.grid.String()
	fields["materials"] = g.reg.Len()
	fields["samples"] = samples
	fields["mode"] = mode.String()
	if res.SkipFraction() > SkipWarnFraction {
		g.log.WithFields(fields).Warnf("%d of %d rays skipped (%.3g%%), fractions do not cover the full volume",
			res.Skipped, res.Rays, 100*res.SkipFraction())
	}
	g.log.WithFields(fields).Infof("Macromaterial grid generated in %s, max std error %.4g", res.Elapsed, res.MaxStdError)
	return res, nil
}

// castAxis splits one axis pass evenly across workers. Ranges are
// contiguous so neighbouring rays share a worker and its region hint.
func (g *Generator) castAxis(s rayStarts, prog *progress) {
	n := s.Len()
	workers := g.workers
	if workers > n {
		workers = n
	}
	var locks *rowLocks
	if workers > 1 {
		locks = &rowLocks{}
	}

	per, rem := n/workers, n%workers
	var wg sync.WaitGroup
	lo := 0
	for w := 0; w < workers; w++ {
		cnt := per
		if w < rem {
			cnt++
		}
		hi := lo + cnt
		wg.Add(1)
		go func(wid, lo, hi int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(g.workerSeed(s.axis, wid)))
			buf := newRayBuffer(g.grid.Divisions(s.axis), g.reg.Len())
			var hint RegionHint
			for r := lo; r < hi; r++ {
				ray, p, q := s.At(r, rng)
				o := g.sampler.fireRay(ray, buf, &hint)
				g.stats.record(o)
				if o.usable() {
					locks.flush(s.rowKey(p, q), g.store.Row(s.axis, p, q), buf)
				} else {
					buf.reset()
				}
				prog.tick()
			}
		}(w, lo, hi)
		lo = hi
	}
	wg.Wait()
}

func (g *Generator) workerSeed(a Axis, wid int) int64 {
	mix := int64(uint64(wid+1)*0x9e3779b97f4a7c15) ^ int64(a)<<48
	if g.seed != 0 {
		return g.seed ^ mix
	}
	return time.Now().UnixNano() ^ mix
}

// rayStarts enumerates the start points of one axis pass. Ray r belongs to
// face cell r / perCell and is sub-sample r % perCell inside it.
type rayStarts struct {
	axis    Axis
	u, v    Axis // face axes, u < v
	bu, bv  []float64
	origin  float64 // near face along axis
	samples int
	perCell int
	nv      int // face cells along v
	mode    SamplingMode
}

func newRayStarts(g *Grid, a Axis, samples int, mode SamplingMode) rayStarts {
	u, v := a.others()
	return rayStarts{
		axis:    a,
		u:       u,
		v:       v,
		bu:      g.Bounds(u),
		bv:      g.Bounds(v),
		origin:  g.Bounds(a)[0],
		samples: samples,
		perCell: samples * samples,
		nv:      g.Divisions(v),
		mode:    mode,
	}
}

func (s rayStarts) Len() int { return (len(s.bu) - 1) * s.nv * s.perCell }

// At returns ray r and the face cell (p, q) it starts in.
func (s rayStarts) At(r int, rng *rand.Rand) (Ray, int, int) {
	cell, sub := r/s.perCell, r%s.perCell
	p, q := cell/s.nv, cell%s.nv
	var fu, fv float64
	if s.mode == RandomSampling {
		fu, fv = rng.Float64(), rng.Float64()
	} else {
		n := float64(s.samples)
		fu = (float64(sub/s.samples) + 0.5) / n
		fv = (float64(sub%s.samples) + 0.5) / n
	}
	var o [3]float64
	o[s.axis] = s.origin
	o[s.u] = s.bu[p] + fu*(s.bu[p+1]-s.bu[p])
	o[s.v] = s.bv[q] + fv*(s.bv[q+1]-s.bv[q])
	return Ray{Origin: r3.Vec{X: o[0], Y: o[1], Z: o[2]}, Axis: s.axis}, p, q
}

func (s rayStarts) rowKey(p, q int) int { return p*s.nv + q }

// progress logs roughly every 1% of fired rays.
type progress struct {
	total int64
	step  int64
	fired atomic.Int64
	on    bool
	log   *logrus.Logger
}

func newProgress(total int64, on bool, log *logrus.Logger) *progress {
	step := int64(1)
	if total >= 100 {
		step = total / 100
	}
	return &progress{total: total, step: step, on: on, log: log}
}

func (p *progress) tick() {
	n := p.fired.Add(1)
	if p.on && n%p.step == 0 {
		p.log.Infof("[PROGRESS] %.2f%%", float64(n)*100/float64(p.total))
	}
}
