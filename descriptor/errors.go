package descriptor

import "errors"

// Errors returned by the engine. They are wrapped with context, so match
// them with errors.Is.
var (
	ErrInvalidComposition = errors.New("invalid composition")
	ErrMissingProperty    = errors.New("missing element property")
	ErrLookupNotFound     = errors.New("lookup not found")
	ErrDivisionDegenerate = errors.New("degenerate division")
)
