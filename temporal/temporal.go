package temporal

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/span"
)

// Temporal is a value that varies over time. It is implemented by *TInstant,
// *TSequence and *TSequenceSet only.
type Temporal[V any] interface {
	Subtype() Subtype
	Interp() carrier.Interp
	Carrier() carrier.Carrier[V]

	BBox() Box[V]
	Period() span.Period
	Time() span.PeriodSet
	Duration() time.Duration

	NumInstants() int
	Instants() []Instant[V]
	InstantN(idx int) Instant[V]
	Timestamps() []span.Timestamp
	Segments() []Segment[V]
	StartInstant() Instant[V]
	EndInstant() Instant[V]

	// ValueAt reports the value at t; ok is false outside the time domain.
	ValueAt(t span.Timestamp) (v V, ok bool)
	// Values returns the distinct instant values in ascending order.
	Values() []V

	Clone() Temporal[V]

	isTemporal()
}

// sequencesOf returns the components of temp, wrapping an instant into an
// instantaneous sequence. The returned sequences are shared, not copied.
func sequencesOf[V any](temp Temporal[V]) []*TSequence[V] {
	switch t := temp.(type) {
	case *TInstant[V]:
		return []*TSequence[V]{instantSequence(t, t.interp)}
	case *TSequence[V]:
		return []*TSequence[V]{t}
	case *TSequenceSet[V]:
		return t.seqs
	default:
		panic(fmt.Sprintf("unknown temporal %T", temp))
	}
}

func instantSequence[V any](ti *TInstant[V], interp carrier.Interp) *TSequence[V] {
	return newSequenceUnchecked(ti.c, []Instant[V]{ti.inst}, true, true, interp, false)
}

// fromSequences returns the smallest subtype holding pieces, which must be sorted
// and disjoint; nil when there are none.
func fromSequences[V any](c carrier.Carrier[V], pieces []*TSequence[V]) Temporal[V] {
	if len(pieces) == 0 {
		return nil
	}

	if len(pieces) > 1 {
		ss := newSequenceSetUnchecked(c, pieces, true)
		if len(ss.seqs) > 1 {
			return ss
		}

		pieces = ss.seqs
	}

	seq := pieces[0]
	if len(seq.instants) == 1 {
		return &TInstant[V]{c: c, interp: seq.interp, inst: seq.instants[0]}
	}

	return seq
}

// ToSequence converts temp into a single sequence. A set converts only when it
// has exactly one component.
func ToSequence[V any](temp Temporal[V]) (*TSequence[V], error) {
	switch t := temp.(type) {
	case *TInstant[V]:
		return instantSequence(t, t.interp), nil
	case *TSequence[V]:
		return t.clone(), nil
	case *TSequenceSet[V]:
		if len(t.seqs) != 1 {
			return nil, fmt.Errorf("%w: %d components", ErrInvalidCast, len(t.seqs))
		}

		return t.seqs[0].clone(), nil
	}

	return nil, fmt.Errorf("%w: %T", ErrInvalidCast, temp)
}

func ToSequenceSet[V any](temp Temporal[V]) *TSequenceSet[V] {
	if ss, ok := temp.(*TSequenceSet[V]); ok {
		return ss.clone()
	}

	seq, _ := ToSequence(temp)

	return newSequenceSetUnchecked(temp.Carrier(), []*TSequence[V]{seq}, false)
}

// Shift moves temp in time by d.
func Shift[V any](temp Temporal[V], d time.Duration) Temporal[V] {
	shiftSeq := func(seq *TSequence[V]) *TSequence[V] {
		n := seq.clone()
		for idx := range n.instants {
			n.instants[idx].T = n.instants[idx].T.Add(d)
		}

		n.box.Period = n.box.Period.Shift(d)

		return n
	}

	switch t := temp.(type) {
	case *TInstant[V]:
		n := *t
		n.inst.T = n.inst.T.Add(d)

		return &n
	case *TSequence[V]:
		return shiftSeq(t)
	case *TSequenceSet[V]:
		n := *t
		n.seqs = make([]*TSequence[V], 0, len(t.seqs))

		for _, seq := range t.seqs {
			n.seqs = append(n.seqs, shiftSeq(seq))
		}

		n.box.Period = n.box.Period.Shift(d)

		return &n
	}

	return nil
}

// Equal reports whether a and b represent the same value with the same subtype.
// Instants compare without their interpolation; capacity and cached boxes never
// take part.
func Equal[V any](a, b Temporal[V]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if a.Subtype() != b.Subtype() {
		return false
	}

	c := a.Carrier()

	switch x := a.(type) {
	case *TInstant[V]:
		y, _ := b.(*TInstant[V])

		return equalInstant(c, x.inst, y.inst)
	case *TSequence[V]:
		y, _ := b.(*TSequence[V])

		return equalSequence(x, y)
	case *TSequenceSet[V]:
		y, _ := b.(*TSequenceSet[V])
		if x.interp != y.interp || len(x.seqs) != len(y.seqs) {
			return false
		}

		for idx := range x.seqs {
			if !equalSequence(x.seqs[idx], y.seqs[idx]) {
				return false
			}
		}

		return true
	}

	return false
}

func equalSequence[V any](x, y *TSequence[V]) bool {
	if x.interp != y.interp || x.lowerInc != y.lowerInc || x.upperInc != y.upperInc ||
		len(x.instants) != len(y.instants) {
		return false
	}

	for idx := range x.instants {
		if !equalInstant(x.c, x.instants[idx], y.instants[idx]) {
			return false
		}
	}

	return true
}

// Hash is consistent with Equal.
func Hash[V any](temp Temporal[V]) uint64 {
	d := xxhash.New()
	c := temp.Carrier()

	var buf []byte

	writeInstant := func(inst Instant[V]) {
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(inst.T))
		buf = binary.LittleEndian.AppendUint64(buf, c.Hash(inst.Value))
		_, _ = d.Write(buf)
	}

	_, _ = d.Write([]byte{byte(temp.Subtype())})

	if ti, ok := temp.(*TInstant[V]); ok {
		writeInstant(ti.inst)

		return d.Sum64()
	}

	_, _ = d.Write([]byte{byte(temp.Interp())})

	for _, seq := range sequencesOf(temp) {
		_, _ = d.Write([]byte{boundsByte(seq.lowerInc, seq.upperInc)})

		for _, inst := range seq.instants {
			writeInstant(inst)
		}
	}

	return d.Sum64()
}

func boundsByte(lowerInc, upperInc bool) (b byte) {
	if lowerInc {
		b |= 1
	}

	if upperInc {
		b |= 2
	}

	return
}

// EverEqual reports whether temp takes the value v at some time.
func EverEqual[V any](temp Temporal[V], v V) bool {
	if !temp.BBox().ContainsValue(temp.Carrier(), v) {
		return false
	}

	r, err := AtValue(temp, v)

	return err == nil && r != nil
}

// AlwaysEqual reports whether temp takes the value v at every time.
func AlwaysEqual[V any](temp Temporal[V], v V) bool {
	c := temp.Carrier()

	for _, inst := range temp.Instants() {
		if !c.Equal(inst.Value, v) {
			return false
		}
	}

	return true
}

// MinValue is the smallest instant value under the carrier's order.
func MinValue[V any](temp Temporal[V]) V {
	return temp.Values()[0]
}

// MaxValue is the largest instant value under the carrier's order.
func MaxValue[V any](temp Temporal[V]) V {
	vs := temp.Values()

	return vs[len(vs)-1]
}
