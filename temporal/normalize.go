package temporal

import (
	"fmt"
	"sort"

	"github.com/sgostarter/libtemporal/carrier"
)

// redundant reports whether mid adds nothing between prev and next under interp.
func redundant[V any](c carrier.Carrier[V], interp carrier.Interp, prev, mid, next Instant[V]) bool {
	if interp != carrier.Linear {
		return c.Equal(prev.Value, mid.Value)
	}

	return c.Collinear(prev.Value, mid.Value, next.Value, carrier.Ratio(prev.T, next.T, mid.T))
}

// normalizeInstants drops redundant instants in place. The first and the last
// instant are always kept, and an instant is only dropped once every earlier
// one has been settled, which makes the result a fixed point.
func normalizeInstants[V any](c carrier.Carrier[V], interp carrier.Interp, instants []Instant[V]) []Instant[V] {
	if len(instants) <= 2 {
		return instants
	}

	out := instants[:1]

	for _, inst := range instants[1:] {
		for len(out) >= 2 && redundant(c, interp, out[len(out)-2], out[len(out)-1], inst) {
			out = out[:len(out)-1]
		}

		out = append(out, inst)
	}

	return out
}

// sortInstants orders a private copy of instants by time and rejects repeated
// timestamps. With preSorted the order is only checked.
func sortInstants[V any](instants []Instant[V], preSorted bool) (sorted []Instant[V], err error) {
	sorted = make([]Instant[V], len(instants))
	copy(sorted, instants)

	if !preSorted {
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].T < sorted[j].T
		})
	}

	for idx := 1; idx < len(sorted); idx++ {
		switch {
		case sorted[idx].T < sorted[idx-1].T:
			err = fmt.Errorf("%w: %d after %d", ErrUnsortedInput, sorted[idx].T, sorted[idx-1].T)

			return
		case sorted[idx].T == sorted[idx-1].T:
			err = fmt.Errorf("%w: %d", ErrDuplicateTimestamp, sorted[idx].T)

			return
		}
	}

	return
}

// validBounds checks the bound rules of a sequence: a single instant is closed
// on both sides, and a step sequence open at its end repeats its penultimate
// value in its last instant.
func validBounds[V any](c carrier.Carrier[V], interp carrier.Interp, instants []Instant[V], lowerInc, upperInc bool) error {
	n := len(instants)

	if n == 1 && !(lowerInc && upperInc) {
		return fmt.Errorf("%w: a single instant must be closed on both sides", ErrInvalidBounds)
	}

	if interp == carrier.Step && n > 1 && !upperInc && !c.Equal(instants[n-2].Value, instants[n-1].Value) {
		return fmt.Errorf("%w: step sequence open at %d must end on its previous value", ErrInvalidBounds,
			instants[n-1].T)
	}

	return nil
}
