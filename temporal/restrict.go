package temporal

import (
	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/span"
)

// Restrict returns the part of temp selected by f, or with complement the part
// it leaves out. A nil result means nothing remains. The two results for the
// same filter never share a timestamp and together cover temp.Time().
func Restrict[V any](temp Temporal[V], f Filter[V], complement bool) (Temporal[V], error) {
	c := temp.Carrier()

	if err := f.validate(c, temp.Interp()); err != nil {
		return nil, err
	}

	if f.Kind.isTime() {
		return restrictTime(temp, f.timeSet(), complement), nil
	}

	switch f.Kind {
	case FilterMin:
		f = ValueFilter(MinValue(temp))
	case FilterMax:
		f = ValueFilter(MaxValue(temp))
	}

	if !f.mayMatch(c, temp.BBox()) {
		if complement {
			return temp.Clone(), nil
		}

		return nil, nil
	}

	times, hints := valueTimes(temp, f)

	if complement {
		times = temp.Time().Minus(times)
	}

	return atPeriodSet(temp, times, hints), nil
}

func restrictTime[V any](temp Temporal[V], times span.PeriodSet, complement bool) Temporal[V] {
	if s, _ := times.Span(); !s.Overlaps(temp.BBox().Period) {
		if complement {
			return temp.Clone()
		}

		return nil
	}

	if complement {
		times = temp.Time().Minus(times)
	}

	return atPeriodSet(temp, times, nil)
}

// valueTimes returns when temp takes a value selected by f. For linear
// interpolation, hints carries the exact value at each computed crossing time.
func valueTimes[V any](temp Temporal[V], f Filter[V]) (span.PeriodSet, map[span.Timestamp]V) {
	hints := make(map[span.Timestamp]V)

	var ps []span.Period

	add := func(p span.Period) {
		ps = append(ps, p)
	}

	hint := func(t span.Timestamp, v V) {
		if _, ok := hints[t]; !ok {
			hints[t] = v
		}
	}

	for _, seq := range sequencesOf(temp) {
		if seq.interp == carrier.Linear {
			linearValueTimes(seq, f, add, hint)
		} else {
			stepValueTimes(seq, f, add)
		}
	}

	return span.MustPeriodSet(ps...), hints
}

func stepValueTimes[V any](seq *TSequence[V], f Filter[V], add func(span.Period)) {
	n := len(seq.instants)

	for idx := 0; idx < n-1; idx++ {
		if f.matches(seq.c, seq.instants[idx].Value) {
			add(span.Period{
				Lower:    seq.instants[idx].T,
				Upper:    seq.instants[idx+1].T,
				LowerInc: idx > 0 || seq.lowerInc,
			})
		}
	}

	if last := seq.instants[n-1]; seq.upperInc && f.matches(seq.c, last.Value) {
		add(span.InstantPeriod(last.T))
	}
}

func linearValueTimes[V any](seq *TSequence[V], f Filter[V], add func(span.Period),
	hint func(span.Timestamp, V)) {
	c, n := seq.c, len(seq.instants)

	for idx, inst := range seq.instants {
		included := (idx > 0 || seq.lowerInc) && (idx < n-1 || seq.upperInc)
		if included && f.matches(c, inst.Value) {
			add(span.InstantPeriod(inst.T))
		}
	}

	for idx := 0; idx < n-1; idx++ {
		a, b := seq.instants[idx], seq.instants[idx+1]

		if c.Equal(a.Value, b.Value) {
			if f.matches(c, a.Value) {
				add(span.Period{Lower: a.T, Upper: b.T})
			}

			continue
		}

		for _, v := range f.Values {
			if t, ok := carrier.ValueCrossing(c, a.Value, b.Value, v, a.T, b.T); ok && t > a.T && t < b.T {
				add(span.InstantPeriod(t))
				hint(t, v)
			}
		}

		if num, ok := c.(carrier.Numeric[V]); ok {
			for _, r := range f.Ranges {
				rangeSegmentTimes(num, a, b, r, add, hint)
			}
		}
	}
}

// rangeSegmentTimes adds the part of the open segment a -> b whose value lies in
// r. The segment is not constant.
func rangeSegmentTimes[V any](num carrier.Numeric[V], a, b Instant[V], r Range[V], add func(span.Period),
	hint func(span.Timestamp, V)) {
	fa, fb := num.ToFloat(a.Value), num.ToFloat(b.Value)
	ratio := func(x float64) float64 {
		return (x - fa) / (fb - fa)
	}

	rs, re := ratio(num.ToFloat(r.Lower)), ratio(num.ToFloat(r.Upper))
	incS, incE := r.LowerInc, r.UpperInc
	vs, ve := r.Lower, r.Upper

	if fb < fa {
		rs, re, incS, incE, vs, ve = re, rs, incE, incS, ve, vs
	}

	if re <= 0 || rs >= 1 {
		return
	}

	ts, te := a.T, b.T

	if rs > 0 {
		ts = carrier.TimeAt(a.T, b.T, rs)
	}

	if ts <= a.T {
		ts, incS = a.T, false
	}

	if re < 1 {
		te = carrier.TimeAt(a.T, b.T, re)
	}

	if te >= b.T {
		te, incE = b.T, false
	}

	switch {
	case ts < te:
		add(span.Period{Lower: ts, Upper: te, LowerInc: incS, UpperInc: incE})
	case ts == te && incS && incE:
		add(span.InstantPeriod(ts))
	default:
		return
	}

	if ts > a.T {
		hint(ts, vs)
	}

	if te < b.T {
		hint(te, ve)
	}
}

// atPeriodSet clips temp to ps. hints overrides interpolation at clip bounds that
// fall between instants.
func atPeriodSet[V any](temp Temporal[V], ps span.PeriodSet, hints map[span.Timestamp]V) Temporal[V] {
	if ps.IsEmpty() {
		return nil
	}

	if ti, ok := temp.(*TInstant[V]); ok {
		if ps.Contains(ti.inst.T) {
			return ti.Clone()
		}

		return nil
	}

	periods := ps.Periods()

	var pieces []*TSequence[V]

	for _, seq := range sequencesOf(temp) {
		sp := seq.Period()

		for _, p := range periods {
			if p.Before(sp) {
				continue
			}

			if sp.Before(p) {
				break
			}

			if piece := seqAtPeriod(seq, p, hints); piece != nil {
				pieces = append(pieces, piece)
			}
		}
	}

	return fromSequences(temp.Carrier(), pieces)
}

func seqAtPeriod[V any](seq *TSequence[V], p span.Period, hints map[span.Timestamp]V) *TSequence[V] {
	inter, ok := seq.Period().Intersection(p)
	if !ok {
		return nil
	}

	first := Instant[V]{Value: boundValue(seq, inter.Lower, false, hints), T: inter.Lower}
	if inter.IsInstant() {
		return newSequenceUnchecked(seq.c, []Instant[V]{first}, true, true, seq.interp, false)
	}

	instants := []Instant[V]{first}

	for idx := seq.search(inter.Lower); idx < len(seq.instants) && seq.instants[idx].T < inter.Upper; idx++ {
		if seq.instants[idx].T > inter.Lower {
			instants = append(instants, seq.instants[idx])
		}
	}

	instants = append(instants, Instant[V]{Value: boundValue(seq, inter.Upper, !inter.UpperInc, hints), T: inter.Upper})

	return newSequenceUnchecked(seq.c, instants, inter.LowerInc, inter.UpperInc, seq.interp, true)
}

func boundValue[V any](seq *TSequence[V], t span.Timestamp, excludedEnd bool, hints map[span.Timestamp]V) V {
	if idx := seq.search(t); idx < len(seq.instants) && seq.instants[idx].T == t {
		if excludedEnd {
			return seq.leftValueAt(t)
		}

		return seq.instants[idx].Value
	}

	if v, ok := hints[t]; ok {
		return v
	}

	return seq.valueAt(t)
}

//
// Convenience wrappers.
//

func AtTimestamp[V any](temp Temporal[V], t span.Timestamp) (Temporal[V], error) {
	return Restrict(temp, TimestampFilter[V](t), false)
}

func MinusTimestamp[V any](temp Temporal[V], t span.Timestamp) (Temporal[V], error) {
	return Restrict(temp, TimestampFilter[V](t), true)
}

func AtTimestampSet[V any](temp Temporal[V], ts span.TimestampSet) (Temporal[V], error) {
	return Restrict(temp, TimestampSetFilter[V](ts), false)
}

func MinusTimestampSet[V any](temp Temporal[V], ts span.TimestampSet) (Temporal[V], error) {
	return Restrict(temp, TimestampSetFilter[V](ts), true)
}

func AtPeriod[V any](temp Temporal[V], p span.Period) (Temporal[V], error) {
	return Restrict(temp, PeriodFilter[V](p), false)
}

func MinusPeriod[V any](temp Temporal[V], p span.Period) (Temporal[V], error) {
	return Restrict(temp, PeriodFilter[V](p), true)
}

func AtPeriodSet[V any](temp Temporal[V], ps span.PeriodSet) (Temporal[V], error) {
	return Restrict(temp, PeriodSetFilter[V](ps), false)
}

func MinusPeriodSet[V any](temp Temporal[V], ps span.PeriodSet) (Temporal[V], error) {
	return Restrict(temp, PeriodSetFilter[V](ps), true)
}

func AtValue[V any](temp Temporal[V], v V) (Temporal[V], error) {
	return Restrict(temp, ValueFilter(v), false)
}

func MinusValue[V any](temp Temporal[V], v V) (Temporal[V], error) {
	return Restrict(temp, ValueFilter(v), true)
}

func AtValues[V any](temp Temporal[V], vs ...V) (Temporal[V], error) {
	return Restrict(temp, ValueSetFilter(vs...), false)
}

func MinusValues[V any](temp Temporal[V], vs ...V) (Temporal[V], error) {
	return Restrict(temp, ValueSetFilter(vs...), true)
}

func AtRange[V any](temp Temporal[V], r Range[V]) (Temporal[V], error) {
	return Restrict(temp, RangeFilter(r), false)
}

func MinusRange[V any](temp Temporal[V], r Range[V]) (Temporal[V], error) {
	return Restrict(temp, RangeFilter(r), true)
}

func AtRanges[V any](temp Temporal[V], rs ...Range[V]) (Temporal[V], error) {
	return Restrict(temp, RangeSetFilter(rs...), false)
}

func MinusRanges[V any](temp Temporal[V], rs ...Range[V]) (Temporal[V], error) {
	return Restrict(temp, RangeSetFilter(rs...), true)
}

func AtMin[V any](temp Temporal[V]) (Temporal[V], error) {
	return Restrict(temp, MinFilter[V](), false)
}

func MinusMin[V any](temp Temporal[V]) (Temporal[V], error) {
	return Restrict(temp, MinFilter[V](), true)
}

func AtMax[V any](temp Temporal[V]) (Temporal[V], error) {
	return Restrict(temp, MaxFilter[V](), false)
}

func MinusMax[V any](temp Temporal[V]) (Temporal[V], error) {
	return Restrict(temp, MaxFilter[V](), true)
}
