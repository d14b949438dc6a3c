package mmgrid

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type rayOutcome uint8

const (
	rayCompleted       rayOutcome = iota // reached the far face of the mesh
	rayExited                            // left the geometry first, remainder counted as void
	rayDegenerate                        // start point could not be classified
	rayUnknownMaterial                   // crossed a region whose material is not registered
	numOutcomes
)

func (o rayOutcome) String() string {
	switch o {
	case rayCompleted:
		return "completed"
	case rayExited:
		return "exited"
	case rayDegenerate:
		return "degenerate"
	case rayUnknownMaterial:
		return "unknown_material"
	}
	return "invalid"
}

// usable reports whether the ray's occupancy goes into the store.
func (o rayOutcome) usable() bool { return o == rayCompleted || o == rayExited }

// rayStats counts ray outcomes for one Generate call.
type rayStats struct {
	counts [numOutcomes]atomic.Int64
}

func (s *rayStats) record(o rayOutcome) { s.counts[o].Add(1) }

func (s *rayStats) count(o rayOutcome) int64 { return s.counts[o].Load() }

func (s *rayStats) skipped() int64 {
	return s.count(rayDegenerate) + s.count(rayUnknownMaterial)
}

func (s *rayStats) fields() logrus.Fields {
	f := make(logrus.Fields, numOutcomes)
	for o := rayOutcome(0); o < numOutcomes; o++ {
		f[o.String()] = s.count(o)
	}
	return f
}
