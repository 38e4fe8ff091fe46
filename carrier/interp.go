package carrier

import (
	"math"

	"github.com/sgostarter/libtemporal/span"
)

// Ratio returns where t falls in [t1, t2] as a fraction.
func Ratio(t1, t2, t span.Timestamp) float64 {
	if t2 == t1 {
		return 0
	}

	return float64(t-t1) / float64(t2-t1)
}

// TimeAt rounds to the nearest microsecond, so the result may equal t1 or t2
// even for a ratio strictly inside (0, 1).
func TimeAt(t1, t2 span.Timestamp, ratio float64) span.Timestamp {
	return t1 + span.Timestamp(math.Round(float64(t2-t1)*ratio))
}

// SegmentValue returns the value at t of the segment a@t1 -> b@t2.
func SegmentValue[V any](c Carrier[V], interp Interp, a, b V, t1, t2, t span.Timestamp) V {
	if t >= t2 {
		return b
	}

	if interp != Linear || t <= t1 || c.Equal(a, b) {
		return a
	}

	return c.Interpolate(a, b, Ratio(t1, t2, t))
}

// SegmentCrossing returns the time in [t1, t2] at which the linear segments
// a1@t1 -> a2@t2 and b1@t1 -> b2@t2 take the same value.
func SegmentCrossing[V any](c Carrier[V], a1, a2, b1, b2 V, t1, t2 span.Timestamp) (t span.Timestamp, ok bool) {
	if !c.Continuous() {
		return
	}

	ratio, ok := c.Crossing(a1, a2, b1, b2)
	if !ok {
		return
	}

	t = TimeAt(t1, t2, ratio)

	return
}

// ValueCrossing returns the time in [t1, t2] at which a@t1 -> b@t2 equals target.
func ValueCrossing[V any](c Carrier[V], a, b, target V, t1, t2 span.Timestamp) (span.Timestamp, bool) {
	return SegmentCrossing(c, a, b, target, target, t1, t2)
}
