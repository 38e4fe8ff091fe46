package temporal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/span"
)

// TSequenceSet is an ordered set of pairwise disjoint sequences sharing one
// interpolation. Gaps are allowed between components.
type TSequenceSet[V any] struct {
	c      carrier.Carrier[V]
	interp carrier.Interp
	seqs   []*TSequence[V]
	box    Box[V]
}

// NewSequenceSet copies seqs into a new set. With normalization, touching
// components whose junction is continuous are joined.
func NewSequenceSet[V any](c carrier.Carrier[V], seqs []*TSequence[V], opts ...Option) (*TSequenceSet[V], error) {
	o := applyOptions(opts)

	if len(seqs) == 0 {
		return nil, ErrEmptyInput
	}

	interp := seqs[0].interp

	cloned := make([]*TSequence[V], 0, len(seqs))

	for _, seq := range seqs {
		if seq == nil {
			return nil, fmt.Errorf("%w: nil component", ErrEmptyInput)
		}

		if seq.interp != interp {
			return nil, fmt.Errorf("%w: mixed %s and %s components", ErrInvalidInterp, interp, seq.interp)
		}

		cloned = append(cloned, seq.clone())
	}

	if !o.preSorted {
		sort.SliceStable(cloned, func(i, j int) bool {
			return span.ComparePeriods(cloned[i].Period(), cloned[j].Period()) < 0
		})
	}

	for idx := 1; idx < len(cloned); idx++ {
		prev, cur := cloned[idx-1].Period(), cloned[idx].Period()

		if span.ComparePeriods(cur, prev) < 0 {
			return nil, fmt.Errorf("%w: %s after %s", ErrUnsortedInput, cur, prev)
		}

		if prev.Overlaps(cur) {
			return nil, fmt.Errorf("%w: %s and %s", ErrOverlappingComponents, prev, cur)
		}
	}

	if o.normalize {
		cloned = joinSequences(cloned)
	}

	box, err := boxOption(c, o, boxOfSequences(c, cloned))
	if err != nil {
		return nil, err
	}

	return &TSequenceSet[V]{c: c, interp: interp, seqs: cloned, box: box}, nil
}

// newSequenceSetUnchecked takes over seqs, which must be sorted and disjoint.
func newSequenceSetUnchecked[V any](c carrier.Carrier[V], seqs []*TSequence[V], normalize bool) *TSequenceSet[V] {
	if normalize {
		seqs = joinSequences(seqs)
	}

	return &TSequenceSet[V]{c: c, interp: seqs[0].interp, seqs: seqs, box: boxOfSequences(c, seqs)}
}

func boxOfSequences[V any](c carrier.Carrier[V], seqs []*TSequence[V]) Box[V] {
	box := seqs[0].box
	for _, seq := range seqs[1:] {
		box = box.Union(c, seq.box)
	}

	return box
}

// joinable reports whether s2 continues s1 without a jump at their shared
// timestamp.
func joinable[V any](s1, s2 *TSequence[V]) bool {
	last, first := s1.EndInstant(), s2.StartInstant()

	if last.T != first.T || s1.upperInc == s2.lowerInc {
		return false
	}

	if s1.interp == carrier.Step && !s1.upperInc {
		return true
	}

	return s1.c.Equal(last.Value, first.Value)
}

func joinSequences[V any](seqs []*TSequence[V]) []*TSequence[V] {
	out := seqs[:1]

	for _, seq := range seqs[1:] {
		prev := out[len(out)-1]

		if !joinable(prev, seq) {
			out = append(out, seq)

			continue
		}

		instants := make([]Instant[V], 0, len(prev.instants)+len(seq.instants)-1)
		instants = append(instants, prev.instants[:len(prev.instants)-1]...)
		instants = append(instants, seq.instants...)

		out[len(out)-1] = newSequenceUnchecked(prev.c, instants, prev.lowerInc, seq.upperInc, prev.interp, true)
	}

	return out
}

func (ss *TSequenceSet[V]) isTemporal() {}

func (ss *TSequenceSet[V]) Subtype() Subtype {
	return SubtypeSequenceSet
}

func (ss *TSequenceSet[V]) Interp() carrier.Interp {
	return ss.interp
}

func (ss *TSequenceSet[V]) Carrier() carrier.Carrier[V] {
	return ss.c
}

func (ss *TSequenceSet[V]) NumSequences() int {
	return len(ss.seqs)
}

// SequenceN returns a copy of the idx-th component.
func (ss *TSequenceSet[V]) SequenceN(idx int) *TSequence[V] {
	return ss.seqs[idx].clone()
}

func (ss *TSequenceSet[V]) Sequences() []*TSequence[V] {
	seqs := make([]*TSequence[V], 0, len(ss.seqs))
	for _, seq := range ss.seqs {
		seqs = append(seqs, seq.clone())
	}

	return seqs
}

func (ss *TSequenceSet[V]) BBox() Box[V] {
	return ss.box
}

func (ss *TSequenceSet[V]) Period() span.Period {
	return ss.seqs[0].Period().Expand(ss.seqs[len(ss.seqs)-1].Period())
}

func (ss *TSequenceSet[V]) Time() span.PeriodSet {
	ps := make([]span.Period, 0, len(ss.seqs))
	for _, seq := range ss.seqs {
		ps = append(ps, seq.Period())
	}

	return span.MustPeriodSet(ps...)
}

func (ss *TSequenceSet[V]) NumInstants() (n int) {
	for _, seq := range ss.seqs {
		n += len(seq.instants)
	}

	return
}

func (ss *TSequenceSet[V]) Instants() []Instant[V] {
	instants := make([]Instant[V], 0, ss.NumInstants())
	for _, seq := range ss.seqs {
		instants = append(instants, seq.instants...)
	}

	return instants
}

func (ss *TSequenceSet[V]) InstantN(idx int) Instant[V] {
	for _, seq := range ss.seqs {
		if idx < len(seq.instants) {
			return seq.instants[idx]
		}

		idx -= len(seq.instants)
	}

	panic(fmt.Sprintf("instant index %d out of range", idx))
}

// Timestamps returns the distinct instant timestamps; two components may share
// one at a touching bound.
func (ss *TSequenceSet[V]) Timestamps() []span.Timestamp {
	ts := make([]span.Timestamp, 0, ss.NumInstants())

	for _, seq := range ss.seqs {
		for _, inst := range seq.instants {
			if len(ts) > 0 && ts[len(ts)-1] == inst.T {
				continue
			}

			ts = append(ts, inst.T)
		}
	}

	return ts
}

func (ss *TSequenceSet[V]) Segments() []Segment[V] {
	var segs []Segment[V]
	for _, seq := range ss.seqs {
		segs = append(segs, seq.Segments()...)
	}

	return segs
}

func (ss *TSequenceSet[V]) StartInstant() Instant[V] {
	return ss.seqs[0].StartInstant()
}

func (ss *TSequenceSet[V]) EndInstant() Instant[V] {
	return ss.seqs[len(ss.seqs)-1].EndInstant()
}

// find returns the component whose period contains t.
func (ss *TSequenceSet[V]) find(t span.Timestamp) (*TSequence[V], bool) {
	idx := sort.Search(len(ss.seqs), func(i int) bool {
		p := ss.seqs[i].Period()

		return p.Upper > t || (p.Upper == t && p.UpperInc)
	})

	if idx < len(ss.seqs) && ss.seqs[idx].Period().Contains(t) {
		return ss.seqs[idx], true
	}

	return nil, false
}

func (ss *TSequenceSet[V]) ValueAt(t span.Timestamp) (v V, ok bool) {
	seq, ok := ss.find(t)
	if !ok {
		return
	}

	return seq.valueAt(t), true
}

func (ss *TSequenceSet[V]) Values() []V {
	return distinctValues(ss.c, ss.Instants())
}

func (ss *TSequenceSet[V]) Duration() (d time.Duration) {
	for _, seq := range ss.seqs {
		d += seq.Duration()
	}

	return
}

func (ss *TSequenceSet[V]) Clone() Temporal[V] {
	return ss.clone()
}

func (ss *TSequenceSet[V]) clone() *TSequenceSet[V] {
	n := *ss
	n.seqs = make([]*TSequence[V], 0, len(ss.seqs))

	for _, seq := range ss.seqs {
		n.seqs = append(n.seqs, seq.clone())
	}

	return &n
}

// Append extends the last component with inst in place.
func (ss *TSequenceSet[V]) Append(inst Instant[V]) error {
	last := ss.seqs[len(ss.seqs)-1]
	if err := last.Append(inst); err != nil {
		return err
	}

	ss.box = ss.box.expand(ss.c, inst)

	return nil
}

// Grow makes the last component expandable with room for n instants.
func (ss *TSequenceSet[V]) Grow(n int) {
	ss.seqs[len(ss.seqs)-1].Grow(n)
}

// AppendSequence adds seq as a new last component. seq must start after the
// current end.
func (ss *TSequenceSet[V]) AppendSequence(seq *TSequence[V]) error {
	if seq.interp != ss.interp {
		return fmt.Errorf("%w: mixed %s and %s components", ErrInvalidInterp, ss.interp, seq.interp)
	}

	last := ss.seqs[len(ss.seqs)-1].Period()
	if !last.Before(seq.Period()) {
		return fmt.Errorf("%w: %s does not follow %s", ErrUnsortedInput, seq.Period(), last)
	}

	ss.seqs = append(ss.seqs, seq.clone())
	ss.box = ss.box.Union(ss.c, seq.box)

	return nil
}

func (ss *TSequenceSet[V]) String() string {
	var sb strings.Builder

	sb.WriteByte('{')

	for idx, seq := range ss.seqs {
		if idx > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(strings.TrimPrefix(seq.String(), "Interp=Step;"))
	}

	sb.WriteByte('}')

	if ss.interp == carrier.Step && ss.c.Continuous() {
		return "Interp=Step;" + sb.String()
	}

	return sb.String()
}
