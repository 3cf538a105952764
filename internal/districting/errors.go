package districting

import "errors"

var (
	// ErrInvalidParameter is returned when the requested cluster count is
	// outside 1..len(points) or another numeric argument is out of range.
	ErrInvalidParameter = errors.New("districting: invalid parameter")

	// ErrInvalidInstance is returned when an instance has no demand points or
	// carries duplicate point ids.
	ErrInvalidInstance = errors.New("districting: invalid instance")

	// ErrMissingDistance is returned when the distance table has no entry for
	// a pair the construction or measure derivation needs.
	ErrMissingDistance = errors.New("districting: missing distance")

	// ErrInvalidObjective is returned for an unknown objective name or value.
	ErrInvalidObjective = errors.New("districting: invalid objective")

	// ErrEmptySolution is returned when evaluating a solution with no clusters.
	ErrEmptySolution = errors.New("districting: solution has no clusters")

	// ErrInvalidStrategy is returned for an unknown construction strategy.
	ErrInvalidStrategy = errors.New("districting: invalid strategy")
)
