package carrier

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cast"
)

var (
	_ Carrier[bool]    = Bool{}
	_ Carrier[int64]   = Int{}
	_ Carrier[string]  = Text{}
	_ Carrier[float64] = Float{}
	_ Carrier[Point]   = PointCarrier{}
	_ Numeric[int64]   = Int{}
	_ Numeric[float64] = Float{}
	_ Extended         = PointCarrier{}
	_ Bounded[Point]   = PointCarrier{}
)

type Float struct{}

func (Float) Kind() Kind {
	return KindFloat
}

func (Float) Continuous() bool {
	return true
}

func (Float) Equal(a, b float64) bool {
	return a == b
}

func (Float) Compare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (Float) Hash(v float64) uint64 {
	if v == 0 {
		v = 0
	}

	return xxhash.Sum64(binary.LittleEndian.AppendUint64(nil, math.Float64bits(v)))
}

func (Float) Interpolate(a, b float64, ratio float64) float64 {
	return a + (b-a)*ratio
}

func (Float) Crossing(a1, a2, b1, b2 float64) (float64, bool) {
	return crossingRatio(a1-b1, (a2-a1)-(b2-b1))
}

func (Float) Collinear(a, b, c float64, ratio float64) bool {
	return math.Abs(b-(a+(c-a)*ratio)) <= FloatEpsilon
}

func (Float) Distance(a, b float64) float64 {
	return math.Abs(a - b)
}

func (Float) Coerce(x any) (v float64, err error) {
	v, err = cast.ToFloat64E(x)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrCoerce, err)
	}

	return
}

func (Float) ToFloat(v float64) float64 {
	return v
}

func (Float) FromFloat(f float64) float64 {
	return f
}

func (Float) AppendValue(dst []byte, order binary.AppendByteOrder, v float64) []byte {
	return order.AppendUint64(dst, math.Float64bits(v))
}

func (Float) ReadValue(src []byte, order binary.ByteOrder) (v float64, n int, err error) {
	if len(src) < 8 {
		err = ErrTruncated

		return
	}

	return math.Float64frombits(order.Uint64(src)), 8, nil
}

// crossingRatio solves diff + ratio*slope = 0 for ratio in [0, 1].
func crossingRatio(diff, slope float64) (float64, bool) {
	if slope == 0 {
		return 0, false
	}

	ratio := -diff / slope
	if ratio < -FloatEpsilon || ratio > 1+FloatEpsilon || math.IsNaN(ratio) {
		return 0, false
	}

	return math.Min(math.Max(ratio, 0), 1), true
}

//
//
//

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// PointCarrier tracks planar points. SRID is carried as wire metadata only; no
// spatial reference semantics are applied.
type PointCarrier struct {
	SRID       uint32
	IsGeodetic bool
}

func (PointCarrier) Kind() Kind {
	return KindPoint
}

func (PointCarrier) Continuous() bool {
	return true
}

func (PointCarrier) Equal(a, b Point) bool {
	return a == b
}

func (PointCarrier) Compare(a, b Point) int {
	f := Float{}
	if r := f.Compare(a.X, b.X); r != 0 {
		return r
	}

	return f.Compare(a.Y, b.Y)
}

func (PointCarrier) Hash(v Point) uint64 {
	d := xxhash.New()
	_, _ = d.Write(binary.LittleEndian.AppendUint64(nil, math.Float64bits(v.X+0)))
	_, _ = d.Write(binary.LittleEndian.AppendUint64(nil, math.Float64bits(v.Y+0)))

	return d.Sum64()
}

func (PointCarrier) Interpolate(a, b Point, ratio float64) Point {
	return Point{X: a.X + (b.X-a.X)*ratio, Y: a.Y + (b.Y-a.Y)*ratio}
}

func (PointCarrier) Crossing(a1, a2, b1, b2 Point) (ratio float64, ok bool) {
	dx, sx := a1.X-b1.X, (a2.X-a1.X)-(b2.X-b1.X)
	dy, sy := a1.Y-b1.Y, (a2.Y-a1.Y)-(b2.Y-b1.Y)

	// solve on the dimension with the steeper relative motion, check the other
	if math.Abs(sx) >= math.Abs(sy) {
		ratio, ok = crossingRatio(dx, sx)
		if ok && math.Abs(dy+ratio*sy) > FloatEpsilon {
			ok = false
		}

		return
	}

	ratio, ok = crossingRatio(dy, sy)
	if ok && math.Abs(dx+ratio*sx) > FloatEpsilon {
		ok = false
	}

	return
}

func (c PointCarrier) Collinear(a, b, p Point, ratio float64) bool {
	x := c.Interpolate(a, p, ratio)

	return math.Abs(b.X-x.X) <= FloatEpsilon && math.Abs(b.Y-x.Y) <= FloatEpsilon
}

func (PointCarrier) Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func (PointCarrier) Coerce(x any) (v Point, err error) {
	var xs []any

	switch p := x.(type) {
	case Point:
		return p, nil
	case *Point:
		if p != nil {
			return *p, nil
		}
	case [2]float64:
		return Point{X: p[0], Y: p[1]}, nil
	case []float64:
		for _, f := range p {
			xs = append(xs, f)
		}
	case []any:
		xs = p
	case map[string]any:
		xs = []any{p["x"], p["y"]}
	}

	if len(xs) != 2 {
		err = fmt.Errorf("%w: %v is not a point", ErrCoerce, x)

		return
	}

	if v.X, err = cast.ToFloat64E(xs[0]); err != nil {
		err = fmt.Errorf("%w: %v", ErrCoerce, err)

		return
	}

	if v.Y, err = cast.ToFloat64E(xs[1]); err != nil {
		err = fmt.Errorf("%w: %v", ErrCoerce, err)

		return
	}

	return
}

func (PointCarrier) Lower(a, b Point) Point {
	return Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)}
}

func (PointCarrier) Upper(a, b Point) Point {
	return Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)}
}

func (PointCarrier) AppendValue(dst []byte, order binary.AppendByteOrder, v Point) []byte {
	dst = order.AppendUint64(dst, math.Float64bits(v.X))

	return order.AppendUint64(dst, math.Float64bits(v.Y))
}

func (PointCarrier) ReadValue(src []byte, order binary.ByteOrder) (v Point, n int, err error) {
	if len(src) < 16 {
		err = ErrTruncated

		return
	}

	v.X = math.Float64frombits(order.Uint64(src))
	v.Y = math.Float64frombits(order.Uint64(src[8:]))
	n = 16

	return
}

func (c PointCarrier) TypeMetadata() uint32 {
	return c.SRID
}

func (c PointCarrier) Geodetic() bool {
	return c.IsGeodetic
}
