package keys

import "errors"

// Errors returned by the core. They are wrapped with context using
// fmt.Errorf("...: %w", err), so callers should match them with errors.Is.
var (
	ErrInvalidRational    = errors.New("invalid rational")
	ErrInvalidRadius      = errors.New("lattice radius is not positive")
	ErrEvenLattice        = errors.New("lattice does not have an odd number of points")
	ErrEmptyLattice       = errors.New("lattice is empty")
	ErrLengthMismatch     = errors.New("mismatched mass field lengths")
	ErrInvalidRate        = errors.New("rate is not in [0,1]")
	ErrDegenerateMass     = errors.New("mass field has no positive mass")
	ErrInvalidTemperature = errors.New("temperature is not positive")
	ErrIndexOutOfRange    = errors.New("lattice index out of range")
	ErrClockRegression    = errors.New("clock went backwards")
	ErrNotInitialized     = errors.New("worker has not been initialized")
)
