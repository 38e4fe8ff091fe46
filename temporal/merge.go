package temporal

import (
	"fmt"
	"sort"

	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/span"
)

// Merge combines a and b into one value. Either may be nil.
func Merge[V any](a, b Temporal[V]) (Temporal[V], error) {
	switch {
	case a == nil && b == nil:
		return nil, ErrEmptyInput
	case a == nil:
		return b.Clone(), nil
	case b == nil:
		return a.Clone(), nil
	}

	return MergeArray([]Temporal[V]{a, b})
}

// MergeArray combines temps into the smallest subtype representing all of them.
// Where inputs overlap in time they must carry the same values, otherwise
// ErrConflictingOverlap is returned.
func MergeArray[V any](temps []Temporal[V]) (Temporal[V], error) {
	var inputs []Temporal[V]

	for _, temp := range temps {
		if temp != nil {
			inputs = append(inputs, temp)
		}
	}

	if len(inputs) == 0 {
		return nil, ErrEmptyInput
	}

	c := inputs[0].Carrier()
	interp := mergeInterp(inputs)

	var seqs []*TSequence[V]

	for _, temp := range inputs {
		if ti, ok := temp.(*TInstant[V]); ok {
			seqs = append(seqs, instantSequence(ti, interp))

			continue
		}

		if temp.Interp() != interp {
			return nil, fmt.Errorf("%w: merging %s and %s values", ErrInvalidInterp, interp, temp.Interp())
		}

		seqs = append(seqs, sequencesOf(temp)...)
	}

	sort.SliceStable(seqs, func(i, j int) bool {
		return span.ComparePeriods(seqs[i].Period(), seqs[j].Period()) < 0
	})

	var (
		out     []*TSequence[V]
		covered span.PeriodSet
		hints   = make(map[span.Timestamp]V)
	)

	for _, seq := range seqs {
		for _, o := range out {
			if !o.Period().Overlaps(seq.Period()) {
				continue
			}

			if err := checkSameValues(o, seq); err != nil {
				return nil, err
			}
		}

		rest := seq.Time().Minus(covered)
		if !rest.IsEmpty() {
			for _, p := range rest.Periods() {
				if piece := seqAtPeriod(seq, p, hints); piece != nil {
					out = append(out, piece)
				}
			}
		}

		covered = covered.Union(seq.Time())
		hints[seq.StartInstant().T] = seq.StartInstant().Value
		hints[seq.EndInstant().T] = seq.EndInstant().Value
	}

	sort.SliceStable(out, func(i, j int) bool {
		return span.ComparePeriods(out[i].Period(), out[j].Period()) < 0
	})

	return fromSequences(c, out), nil
}

// mergeInterp is the interpolation of the first non-instant input.
func mergeInterp[V any](temps []Temporal[V]) carrier.Interp {
	for _, temp := range temps {
		if temp.Subtype() != SubtypeInstant {
			return temp.Interp()
		}
	}

	return temps[0].Interp()
}

func checkSameValues[V any](a, b *TSequence[V]) error {
	x, y, ok := Synchronize[V](a, b, false)
	if !ok {
		return nil
	}

	xs, ys := x.Instants(), y.Instants()
	for idx := range xs {
		if !a.c.Equal(xs[idx].Value, ys[idx].Value) {
			return fmt.Errorf("%w: %v and %v at %d", ErrConflictingOverlap, xs[idx].Value, ys[idx].Value, xs[idx].T)
		}
	}

	return nil
}
