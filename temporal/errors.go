package temporal

import (
	"fmt"

	"github.com/sgostarter/i/commerr"
)

// Error categories. Every error returned by this package wraps exactly one of
// them, and each category wraps a commerr kind.
var (
	ErrInput    = fmt.Errorf("%w: temporal input", commerr.ErrInvalidArgument)
	ErrConflict = fmt.Errorf("%w: temporal conflict", commerr.ErrReject)
	ErrFilter   = fmt.Errorf("%w: temporal filter", commerr.ErrInvalidArgument)
)

var (
	ErrEmptyInput            = fmt.Errorf("%w: empty input", ErrInput)
	ErrUnsortedInput         = fmt.Errorf("%w: unsorted input", ErrInput)
	ErrDuplicateTimestamp    = fmt.Errorf("%w: duplicate timestamp", ErrInput)
	ErrOverlappingComponents = fmt.Errorf("%w: overlapping components", ErrInput)
	ErrInvalidBounds         = fmt.Errorf("%w: invalid bounds", ErrInput)
	ErrInvalidInterp         = fmt.Errorf("%w: invalid interpolation", ErrInput)
	ErrInvalidCast           = fmt.Errorf("%w: invalid subtype cast", ErrInput)
	ErrConflictingOverlap    = fmt.Errorf("%w: conflicting values on overlap", ErrConflict)
	ErrInvalidFilter         = fmt.Errorf("%w: invalid filter", ErrFilter)
)
