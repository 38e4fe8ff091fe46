package carrier

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/sgostarter/i/commerr"
)

// FloatEpsilon is the tolerance used by the float and point carriers when
// deciding whether three readings are collinear and whether a crossing lies on a
// segment. Crossing times are rounded to the microsecond, so a value restricted
// at a crossing may differ from interpolating at that time by up to one
// microsecond of slope.
const FloatEpsilon = 1e-5

var (
	ErrTruncated    = errors.New("carrier: truncated value")
	ErrInvalidValue = errors.New("carrier: invalid value")
	ErrCoerce       = fmt.Errorf("%w: cannot coerce value", commerr.ErrInvalidArgument)
)

type Kind uint8

const (
	KindBool Kind = iota + 1
	KindInt
	KindFloat
	KindText
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindPoint:
		return "point"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Interp is the rule deciding the value between two readings.
type Interp uint8

const (
	Step Interp = iota + 1
	Linear
)

func (i Interp) String() string {
	switch i {
	case Step:
		return "step"
	case Linear:
		return "linear"
	default:
		return fmt.Sprintf("interp(%d)", i)
	}
}

func ParseInterp(s string) (Interp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "step", "stepwise":
		return Step, nil
	case "linear":
		return Linear, nil
	}

	return 0, fmt.Errorf("%w: unknown interpolation %q", commerr.ErrInvalidArgument, s)
}

// Carrier describes the base values a temporal value tracks. Continuous carriers
// support Linear interpolation and must implement Interpolate, Crossing and
// Collinear meaningfully; discrete carriers only need the ordering contract.
type Carrier[V any] interface {
	Kind() Kind
	Continuous() bool

	Equal(a, b V) bool
	Compare(a, b V) int
	Hash(v V) uint64

	// Interpolate returns the value at ratio in [0, 1] along a -> b.
	Interpolate(a, b V, ratio float64) V
	// Crossing returns the ratio in [0, 1] at which the segments a1 -> a2 and
	// b1 -> b2, walked over the same time interval, meet.
	Crossing(a1, a2, b1, b2 V) (ratio float64, ok bool)
	// Collinear reports whether b equals the interpolation of a -> c at ratio.
	Collinear(a, b, c V, ratio float64) bool
	Distance(a, b V) float64

	Coerce(x any) (V, error)

	AppendValue(dst []byte, order binary.AppendByteOrder, v V) []byte
	ReadValue(src []byte, order binary.ByteOrder) (v V, n int, err error)
}

// Numeric is implemented by carriers whose values map onto the real line,
// enabling range filters on linearly interpolated values.
type Numeric[V any] interface {
	ToFloat(v V) float64
	FromFloat(f float64) V
}

// Extended is implemented by carriers with type metadata that travels in the
// extended wire header.
type Extended interface {
	TypeMetadata() uint32
	Geodetic() bool
}

// Bounded is implemented by carriers whose bounding box is not the plain
// minimum and maximum under Compare, such as per-dimension boxes for points.
type Bounded[V any] interface {
	Lower(a, b V) V
	Upper(a, b V) V
}

// DefaultInterp is Linear for continuous carriers and Step otherwise.
func DefaultInterp[V any](c Carrier[V]) Interp {
	if c.Continuous() {
		return Linear
	}

	return Step
}

func ValidInterp[V any](c Carrier[V], interp Interp) bool {
	switch interp {
	case Step:
		return true
	case Linear:
		return c.Continuous()
	default:
		return false
	}
}
