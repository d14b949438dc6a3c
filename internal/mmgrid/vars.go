package mmgrid

import "errors"

var (
	Debug = false // set to true for verbose debug output

	ErrEmptyGeometry = errors.New("geometry has no regions")
	ErrBadBounds     = errors.New("boundaries must be strictly increasing")
	ErrZeroSamples   = errors.New("sample count must be positive")
	ErrDimsMismatch  = errors.New("mesh dimensions do not match the grid")
	ErrNotNormalized = errors.New("store has not been normalized")
)
