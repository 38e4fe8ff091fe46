package temporal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/span"
)

// TSequence is a time-ordered run of instants sharing one interpolation. The
// first and last instants may be excluded from the represented time span.
type TSequence[V any] struct {
	c          carrier.Carrier[V]
	interp     carrier.Interp
	instants   []Instant[V]
	lowerInc   bool
	upperInc   bool
	expandable bool
	box        Box[V]
}

func NewSequence[V any](c carrier.Carrier[V], instants []Instant[V], lowerInc, upperInc bool,
	interp carrier.Interp, opts ...Option) (*TSequence[V], error) {
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

	if err = validBounds(c, interp, sorted, lowerInc, upperInc); err != nil {
		return nil, err
	}

	if o.normalize {
		sorted = normalizeInstants(c, interp, sorted)
	}

	box, err := boxOption(c, o, boxOfInstants(c, sorted, lowerInc, upperInc))
	if err != nil {
		return nil, err
	}

	seq := &TSequence[V]{
		c:        c,
		interp:   interp,
		instants: sorted,
		lowerInc: lowerInc,
		upperInc: upperInc,
		box:      box,
	}

	if o.capacity > 0 {
		seq.expandable = true
		seq.reserve(o.capacity)
	} else {
		seq.instants = seq.instants[:len(seq.instants):len(seq.instants)]
	}

	return seq, nil
}

// NewSequenceFromValue holds v constant over p.
func NewSequenceFromValue[V any](c carrier.Carrier[V], v V, p span.Period, interp carrier.Interp) (*TSequence[V], error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBounds, p)
	}

	instants := []Instant[V]{{Value: v, T: p.Lower}}
	if !p.IsInstant() {
		instants = append(instants, Instant[V]{Value: v, T: p.Upper})
	}

	return NewSequence(c, instants, p.LowerInc, p.UpperInc, interp, WithPreSorted())
}

// newSequenceUnchecked builds a sequence from instants already known to satisfy
// every invariant. instants is taken over.
func newSequenceUnchecked[V any](c carrier.Carrier[V], instants []Instant[V], lowerInc, upperInc bool,
	interp carrier.Interp, normalize bool) *TSequence[V] {
	if normalize {
		instants = normalizeInstants(c, interp, instants)
	}

	return &TSequence[V]{
		c:        c,
		interp:   interp,
		instants: instants[:len(instants):len(instants)],
		lowerInc: lowerInc,
		upperInc: upperInc,
		box:      boxOfInstants(c, instants, lowerInc, upperInc),
	}
}

func (seq *TSequence[V]) reserve(n int) {
	if cap(seq.instants) >= n {
		return
	}

	instants := make([]Instant[V], len(seq.instants), n)
	copy(instants, seq.instants)
	seq.instants = instants
}

func (seq *TSequence[V]) isTemporal() {}

func (seq *TSequence[V]) Subtype() Subtype {
	return SubtypeSequence
}

func (seq *TSequence[V]) Interp() carrier.Interp {
	return seq.interp
}

func (seq *TSequence[V]) Carrier() carrier.Carrier[V] {
	return seq.c
}

func (seq *TSequence[V]) LowerInc() bool {
	return seq.lowerInc
}

func (seq *TSequence[V]) UpperInc() bool {
	return seq.upperInc
}

func (seq *TSequence[V]) Expandable() bool {
	return seq.expandable
}

func (seq *TSequence[V]) Capacity() int {
	return cap(seq.instants)
}

func (seq *TSequence[V]) BBox() Box[V] {
	return seq.box
}

func (seq *TSequence[V]) Period() span.Period {
	return span.Period{
		Lower:    seq.instants[0].T,
		Upper:    seq.instants[len(seq.instants)-1].T,
		LowerInc: seq.lowerInc,
		UpperInc: seq.upperInc,
	}
}

func (seq *TSequence[V]) Time() span.PeriodSet {
	return span.MustPeriodSet(seq.Period())
}

func (seq *TSequence[V]) NumInstants() int {
	return len(seq.instants)
}

func (seq *TSequence[V]) Instants() []Instant[V] {
	instants := make([]Instant[V], len(seq.instants))
	copy(instants, seq.instants)

	return instants
}

func (seq *TSequence[V]) InstantN(idx int) Instant[V] {
	return seq.instants[idx]
}

func (seq *TSequence[V]) Timestamps() []span.Timestamp {
	ts := make([]span.Timestamp, 0, len(seq.instants))
	for _, inst := range seq.instants {
		ts = append(ts, inst.T)
	}

	return ts
}

func (seq *TSequence[V]) Segments() []Segment[V] {
	n := len(seq.instants)
	if n == 1 {
		return []Segment[V]{{Start: seq.instants[0], End: seq.instants[0], LowerInc: true, UpperInc: true}}
	}

	segs := make([]Segment[V], 0, n-1)

	for idx := 0; idx < n-1; idx++ {
		segs = append(segs, Segment[V]{
			Start:    seq.instants[idx],
			End:      seq.instants[idx+1],
			LowerInc: idx > 0 || seq.lowerInc,
			UpperInc: idx == n-2 && seq.upperInc,
		})
	}

	return segs
}

func (seq *TSequence[V]) StartInstant() Instant[V] {
	return seq.instants[0]
}

func (seq *TSequence[V]) EndInstant() Instant[V] {
	return seq.instants[len(seq.instants)-1]
}

// search returns the index of the first instant at or after t.
func (seq *TSequence[V]) search(t span.Timestamp) int {
	return sort.Search(len(seq.instants), func(i int) bool {
		return seq.instants[i].T >= t
	})
}

func (seq *TSequence[V]) ValueAt(t span.Timestamp) (v V, ok bool) {
	if !seq.Period().Contains(t) {
		return
	}

	return seq.valueAt(t), true
}

// valueAt evaluates the sequence at t in [first, last] ignoring the bounds.
func (seq *TSequence[V]) valueAt(t span.Timestamp) V {
	idx := seq.search(t)
	if idx >= len(seq.instants) {
		idx = len(seq.instants) - 1
	}

	if seq.instants[idx].T == t || idx == 0 {
		return seq.instants[idx].Value
	}

	prev, next := seq.instants[idx-1], seq.instants[idx]

	return carrier.SegmentValue(seq.c, seq.interp, prev.Value, next.Value, prev.T, next.T, t)
}

// leftValueAt is the value approached from before t. It differs from valueAt only
// for step interpolation at an instant.
func (seq *TSequence[V]) leftValueAt(t span.Timestamp) V {
	idx := seq.search(t)
	if seq.interp == carrier.Step && idx > 0 && idx < len(seq.instants) && seq.instants[idx].T == t {
		return seq.instants[idx-1].Value
	}

	return seq.valueAt(t)
}

func (seq *TSequence[V]) Values() []V {
	return distinctValues(seq.c, seq.instants)
}

func (seq *TSequence[V]) Duration() time.Duration {
	return seq.Period().Duration()
}

func (seq *TSequence[V]) Clone() Temporal[V] {
	return seq.clone()
}

func (seq *TSequence[V]) clone() *TSequence[V] {
	n := *seq
	n.instants = make([]Instant[V], len(seq.instants), cap(seq.instants))
	copy(n.instants, seq.instants)

	return &n
}

// Grow makes the sequence expandable and reserves room for n instants.
func (seq *TSequence[V]) Grow(n int) {
	seq.expandable = true
	seq.reserve(n)
}

// Compact drops spare capacity; the sequence stops being expandable.
func (seq *TSequence[V]) Compact() {
	seq.expandable = false

	if cap(seq.instants) == len(seq.instants) {
		return
	}

	instants := make([]Instant[V], len(seq.instants))
	copy(instants, seq.instants)
	seq.instants = instants
}

// Append adds inst at the end of the sequence in place. inst must not precede the
// last instant; at the same time it may only overwrite an excluded end instant
// or repeat its value.
func (seq *TSequence[V]) Append(inst Instant[V]) error {
	n := len(seq.instants)
	last := seq.instants[n-1]

	switch {
	case inst.T < last.T:
		return fmt.Errorf("%w: %d before %d", ErrUnsortedInput, inst.T, last.T)
	case inst.T == last.T && seq.upperInc:
		if seq.c.Equal(inst.Value, last.Value) {
			return nil
		}

		return fmt.Errorf("%w: %v and %v at %d", ErrConflictingOverlap, last.Value, inst.Value, inst.T)
	case inst.T == last.T:
		seq.instants[n-1] = inst
		seq.upperInc = true
		seq.box = seq.box.expand(seq.c, inst)

		return nil
	}

	for len(seq.instants) >= 2 && redundant(seq.c, seq.interp, seq.instants[len(seq.instants)-2],
		seq.instants[len(seq.instants)-1], inst) {
		seq.instants = seq.instants[:len(seq.instants)-1]
	}

	if len(seq.instants) == cap(seq.instants) {
		size := len(seq.instants) + 1
		if seq.expandable {
			size = 2 * cap(seq.instants)
		}

		seq.reserve(size)
	}

	seq.instants = append(seq.instants, inst)
	seq.upperInc = true
	seq.box = seq.box.expand(seq.c, inst)

	return nil
}

func (seq *TSequence[V]) String() string {
	var sb strings.Builder

	if seq.lowerInc {
		sb.WriteByte('[')
	} else {
		sb.WriteByte('(')
	}

	for idx, inst := range seq.instants {
		if idx > 0 {
			sb.WriteString(", ")
		}

		_, _ = fmt.Fprintf(&sb, "%v@%d", inst.Value, inst.T)
	}

	if seq.upperInc {
		sb.WriteByte(']')
	} else {
		sb.WriteByte(')')
	}

	if seq.interp == carrier.Step && seq.c.Continuous() {
		return "Interp=Step;" + sb.String()
	}

	return sb.String()
}

func distinctValues[V any](c carrier.Carrier[V], instants []Instant[V]) []V {
	vs := make([]V, 0, len(instants))
	for _, inst := range instants {
		vs = append(vs, inst.Value)
	}

	sort.SliceStable(vs, func(i, j int) bool {
		return c.Compare(vs[i], vs[j]) < 0
	})

	out := vs[:0]

	for _, v := range vs {
		if len(out) > 0 && c.Compare(out[len(out)-1], v) == 0 {
			continue
		}

		out = append(out, v)
	}

	return out
}
