package temporal

import (
	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/span"
)

// Synchronize aligns a and b on their common time span so that both results
// have the same subtype and the same timestamps. With addCrossings, and both
// inputs linear, the timestamps where the two trajectories meet are added too.
// ok is false when the time spans do not intersect.
func Synchronize[V any](a, b Temporal[V], addCrossings bool) (a2, b2 Temporal[V], ok bool) {
	if !a.Period().Overlaps(b.Period()) {
		return
	}

	ia, aIsInst := a.(*TInstant[V])
	ib, bIsInst := b.(*TInstant[V])

	switch {
	case aIsInst && bIsInst:
		if ia.inst.T != ib.inst.T {
			return
		}

		return ia.Clone(), ib.Clone(), true
	case aIsInst:
		return syncInstant(ia, b, false)
	case bIsInst:
		return syncInstant(ib, a, true)
	}

	sa, aIsSeq := a.(*TSequence[V])
	sb, bIsSeq := b.(*TSequence[V])

	if aIsSeq && bIsSeq {
		x, y, found := syncSequences(sa, sb, addCrossings)
		if !found {
			return
		}

		return x, y, true
	}

	xs, ys := syncSequenceLists(sequencesOf(a), sequencesOf(b), addCrossings)
	if len(xs) == 0 {
		return
	}

	return newSequenceSetUnchecked(a.Carrier(), xs, false), newSequenceSetUnchecked(b.Carrier(), ys, false), true
}

// syncInstant pairs ti with the value other takes at the same time. swapped
// reports that ti was the second operand.
func syncInstant[V any](ti *TInstant[V], other Temporal[V], swapped bool) (a2, b2 Temporal[V], ok bool) {
	v, found := other.ValueAt(ti.inst.T)
	if !found {
		return
	}

	x := ti.Clone()
	y := &TInstant[V]{c: other.Carrier(), interp: other.Interp(), inst: Instant[V]{Value: v, T: ti.inst.T}}

	if swapped {
		return y, x, true
	}

	return x, y, true
}

// syncSequenceLists synchronizes every overlapping pair of components of two
// sorted, disjoint sequence lists.
func syncSequenceLists[V any](as, bs []*TSequence[V], addCrossings bool) (xs, ys []*TSequence[V]) {
	i, j := 0, 0

	for i < len(as) && j < len(bs) {
		pa, pb := as[i].Period(), bs[j].Period()

		if x, y, ok := syncSequences(as[i], bs[j], addCrossings); ok {
			xs = append(xs, x)
			ys = append(ys, y)
		}

		switch c := compareEnds(pa, pb); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			i++
			j++
		}
	}

	return
}

// compareEnds orders periods by where they end.
func compareEnds(p, q span.Period) int {
	switch {
	case p.Upper < q.Upper:
		return -1
	case p.Upper > q.Upper:
		return 1
	case p.UpperInc == q.UpperInc:
		return 0
	case p.UpperInc:
		return 1
	default:
		return -1
	}
}

func syncSequences[V any](a, b *TSequence[V], addCrossings bool) (x, y *TSequence[V], ok bool) {
	inter, ok := a.Period().Intersection(b.Period())
	if !ok {
		return
	}

	ts := breakpoints(inter, a, b)

	xa := make([]Instant[V], 0, len(ts))
	xb := make([]Instant[V], 0, len(ts))

	for idx, t := range ts {
		last := idx == len(ts)-1 && idx > 0 && !inter.UpperInc

		xa = append(xa, Instant[V]{Value: syncValue(a, t, last), T: t})
		xb = append(xb, Instant[V]{Value: syncValue(b, t, last), T: t})
	}

	if addCrossings && a.interp == carrier.Linear && b.interp == carrier.Linear {
		xa, xb = addCrossingInstants(a.c, xa, xb)
	}

	x = newSequenceUnchecked(a.c, xa, inter.LowerInc, inter.UpperInc, a.interp, false)
	y = newSequenceUnchecked(b.c, xb, inter.LowerInc, inter.UpperInc, b.interp, false)

	return
}

// syncValue evaluates seq at a breakpoint. At an excluded end, a step sequence
// takes its value from the left so the result keeps the step end rule.
func syncValue[V any](seq *TSequence[V], t span.Timestamp, excludedEnd bool) V {
	if excludedEnd {
		return seq.leftValueAt(t)
	}

	return seq.valueAt(t)
}

// breakpoints merges the timestamps of a and b inside inter, bounds included.
func breakpoints[V any](inter span.Period, a, b *TSequence[V]) []span.Timestamp {
	ts := []span.Timestamp{inter.Lower}
	if inter.IsInstant() {
		return ts
	}

	i, j := a.search(inter.Lower), b.search(inter.Lower)

	for {
		var t span.Timestamp

		switch {
		case i < len(a.instants) && (j >= len(b.instants) || a.instants[i].T <= b.instants[j].T):
			t = a.instants[i].T
		case j < len(b.instants):
			t = b.instants[j].T
		default:
			t = inter.Upper
		}

		if t >= inter.Upper {
			break
		}

		if i < len(a.instants) && a.instants[i].T == t {
			i++
		}

		if j < len(b.instants) && b.instants[j].T == t {
			j++
		}

		if t > ts[len(ts)-1] {
			ts = append(ts, t)
		}
	}

	return append(ts, inter.Upper)
}

// addCrossingInstants inserts, between consecutive breakpoints, the time at which
// the two linear trajectories meet strictly inside the interval.
func addCrossingInstants[V any](c carrier.Carrier[V], xa, xb []Instant[V]) (ra, rb []Instant[V]) {
	ra = make([]Instant[V], 0, len(xa)*2)
	rb = make([]Instant[V], 0, len(xb)*2)

	for idx := range xa {
		if idx > 0 {
			a1, a2, b1, b2 := xa[idx-1], xa[idx], xb[idx-1], xb[idx]

			if t, ok := carrier.SegmentCrossing(c, a1.Value, a2.Value, b1.Value, b2.Value, a1.T, a2.T); ok &&
				t > a1.T && t < a2.T {
				ratio := carrier.Ratio(a1.T, a2.T, t)
				ra = append(ra, Instant[V]{Value: c.Interpolate(a1.Value, a2.Value, ratio), T: t})
				rb = append(rb, Instant[V]{Value: c.Interpolate(b1.Value, b2.Value, ratio), T: t})
			}
		}

		ra = append(ra, xa[idx])
		rb = append(rb, xb[idx])
	}

	return
}
