package mmgrid

const (
	VoidID           = 0    // material id of vacuum/void
	DefaultSamples   = 4    // rays per face cell side
	NumShards        = 1024 // row lock shards, power of two
	SkipWarnFraction = 1e-3 // skipped/fired ratio above which Generate warns
	ConservationTol  = 1e-9
	// remainders shorter than this are not filled with void
	epsDist = 1e-12
)
