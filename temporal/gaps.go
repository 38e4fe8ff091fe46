package temporal

import (
	"fmt"
	"time"

	"github.com/sgostarter/libtemporal/carrier"
)

// Gap limits how far apart two consecutive readings may be while still belonging
// to the same sequence. A zero field disables that limit.
type Gap struct {
	MaxDistance float64       `yaml:"max_distance" json:"max_distance"`
	MaxDuration time.Duration `yaml:"max_duration" json:"max_duration"`
}

func (g Gap) exceeded(distance float64, d time.Duration) bool {
	return (g.MaxDistance > 0 && distance > g.MaxDistance) || (g.MaxDuration > 0 && d > g.MaxDuration)
}

func gapBetween[V any](c carrier.Carrier[V], gap Gap, prev, next Instant[V]) bool {
	return gap.exceeded(c.Distance(prev.Value, next.Value), next.T.Sub(prev.T))
}

// NewFromGaps splits a stream of readings into closed sequences wherever gap is
// exceeded. The result is a TSequence when the stream was never split and a
// TSequenceSet otherwise.
func NewFromGaps[V any](c carrier.Carrier[V], instants []Instant[V], interp carrier.Interp, gap Gap,
	opts ...Option) (Temporal[V], error) {
	o := applyOptions(opts)

	if len(instants) == 0 {
		return nil, ErrEmptyInput
	}

	if !carrier.ValidInterp(c, interp) {
		return nil, fmt.Errorf("%w: %s on %s", ErrInvalidInterp, interp, c.Kind())
	}

	sorted, err := sortInstants(instants, o.preSorted)
	if err != nil {
		return nil, err
	}

	var pieces []*TSequence[V]

	start := 0

	for idx := 1; idx <= len(sorted); idx++ {
		if idx < len(sorted) && !gapBetween(c, gap, sorted[idx-1], sorted[idx]) {
			continue
		}

		pieces = append(pieces, newSequenceUnchecked(c, sorted[start:idx], true, true, interp, o.normalize))
		start = idx
	}

	if len(pieces) == 1 {
		return pieces[0], nil
	}

	return newSequenceSetUnchecked(c, pieces, false), nil
}

// AppendInstant appends inst to temp, starting a new component when gap is
// exceeded. Sequences and sets are extended in place; the returned value may be
// temp itself or a value of a larger subtype that takes temp over.
func AppendInstant[V any](temp Temporal[V], inst Instant[V], gap Gap) (Temporal[V], error) {
	switch t := temp.(type) {
	case *TInstant[V]:
		switch {
		case inst.T < t.inst.T:
			return nil, fmt.Errorf("%w: %d before %d", ErrUnsortedInput, inst.T, t.inst.T)
		case inst.T == t.inst.T:
			if t.c.Equal(inst.Value, t.inst.Value) {
				return t, nil
			}

			return nil, fmt.Errorf("%w: %v and %v at %d", ErrConflictingOverlap, t.inst.Value, inst.Value, inst.T)
		}

		if gapBetween(t.c, gap, t.inst, inst) {
			return newSequenceSetUnchecked(t.c, []*TSequence[V]{
				instantSequence(t, t.interp),
				growable(t.c, t.interp, inst),
			}, false), nil
		}

		return growable(t.c, t.interp, t.inst, inst), nil
	case *TSequence[V]:
		if inst.T > t.EndInstant().T && gapBetween(t.c, gap, t.EndInstant(), inst) {
			next := growable(t.c, t.interp, inst)

			return newSequenceSetUnchecked(t.c, []*TSequence[V]{t, next}, false), nil
		}

		if err := t.Append(inst); err != nil {
			return nil, err
		}

		return t, nil
	case *TSequenceSet[V]:
		if inst.T > t.EndInstant().T && gapBetween(t.c, gap, t.EndInstant(), inst) {
			next := growable(t.c, t.interp, inst)
			t.seqs = append(t.seqs, next)
			t.box = t.box.Union(t.c, next.box)

			return t, nil
		}

		if err := t.Append(inst); err != nil {
			return nil, err
		}

		return t, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrInvalidCast, temp)
}

// growable starts an expandable sequence for a stream built by appends.
func growable[V any](c carrier.Carrier[V], interp carrier.Interp, instants ...Instant[V]) *TSequence[V] {
	seq := newSequenceUnchecked(c, instants, true, true, interp, false)
	seq.Grow(2)

	return seq
}
