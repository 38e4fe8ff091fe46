package temporal

import (
	"fmt"
	"time"

	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/span"
)

type Subtype uint8

const (
	SubtypeInstant Subtype = iota + 1
	SubtypeSequence
	SubtypeSequenceSet
)

func (s Subtype) String() string {
	switch s {
	case SubtypeInstant:
		return "instant"
	case SubtypeSequence:
		return "sequence"
	case SubtypeSequenceSet:
		return "sequence set"
	default:
		return fmt.Sprintf("subtype(%d)", s)
	}
}

// Instant is one reading: a value at a timestamp.
type Instant[V any] struct {
	Value V              `json:"value" yaml:"value"`
	T     span.Timestamp `json:"t" yaml:"t"`
}

// CompareInstants orders by time, then by value.
func CompareInstants[V any](c carrier.Carrier[V], a, b Instant[V]) int {
	switch {
	case a.T < b.T:
		return -1
	case a.T > b.T:
		return 1
	default:
		return c.Compare(a.Value, b.Value)
	}
}

func equalInstant[V any](c carrier.Carrier[V], a, b Instant[V]) bool {
	return a.T == b.T && c.Equal(a.Value, b.Value)
}

// Segment is the stretch between two consecutive instants of a sequence. An
// instantaneous segment has Start == End.
type Segment[V any] struct {
	Start    Instant[V]
	End      Instant[V]
	LowerInc bool
	UpperInc bool
}

//
//
//

type TInstant[V any] struct {
	c      carrier.Carrier[V]
	interp carrier.Interp
	inst   Instant[V]
}

func NewTInstant[V any](c carrier.Carrier[V], v V, t span.Timestamp) *TInstant[V] {
	return &TInstant[V]{
		c:      c,
		interp: carrier.DefaultInterp(c),
		inst:   Instant[V]{Value: v, T: t},
	}
}

// NewTInstantInterp is NewTInstant with an explicit interpolation, kept so that
// an instant cut out of a sequence still reports the sequence's policy.
func NewTInstantInterp[V any](c carrier.Carrier[V], v V, t span.Timestamp, interp carrier.Interp) (*TInstant[V], error) {
	if !carrier.ValidInterp(c, interp) {
		return nil, fmt.Errorf("%w: %s on %s", ErrInvalidInterp, interp, c.Kind())
	}

	return &TInstant[V]{c: c, interp: interp, inst: Instant[V]{Value: v, T: t}}, nil
}

func (ti *TInstant[V]) isTemporal() {}

func (ti *TInstant[V]) Subtype() Subtype {
	return SubtypeInstant
}

func (ti *TInstant[V]) Interp() carrier.Interp {
	return ti.interp
}

func (ti *TInstant[V]) Carrier() carrier.Carrier[V] {
	return ti.c
}

func (ti *TInstant[V]) Value() V {
	return ti.inst.Value
}

func (ti *TInstant[V]) T() span.Timestamp {
	return ti.inst.T
}

func (ti *TInstant[V]) BBox() Box[V] {
	return Box[V]{Period: span.InstantPeriod(ti.inst.T), Min: ti.inst.Value, Max: ti.inst.Value}
}

func (ti *TInstant[V]) Period() span.Period {
	return span.InstantPeriod(ti.inst.T)
}

func (ti *TInstant[V]) Time() span.PeriodSet {
	return span.MustPeriodSet(ti.Period())
}

func (ti *TInstant[V]) NumInstants() int {
	return 1
}

func (ti *TInstant[V]) Instants() []Instant[V] {
	return []Instant[V]{ti.inst}
}

func (ti *TInstant[V]) InstantN(idx int) Instant[V] {
	if idx != 0 {
		panic(fmt.Sprintf("instant index %d out of range", idx))
	}

	return ti.inst
}

func (ti *TInstant[V]) Timestamps() []span.Timestamp {
	return []span.Timestamp{ti.inst.T}
}

func (ti *TInstant[V]) Segments() []Segment[V] {
	return []Segment[V]{{Start: ti.inst, End: ti.inst, LowerInc: true, UpperInc: true}}
}

func (ti *TInstant[V]) StartInstant() Instant[V] {
	return ti.inst
}

func (ti *TInstant[V]) EndInstant() Instant[V] {
	return ti.inst
}

func (ti *TInstant[V]) ValueAt(t span.Timestamp) (v V, ok bool) {
	if t != ti.inst.T {
		return
	}

	return ti.inst.Value, true
}

func (ti *TInstant[V]) Values() []V {
	return []V{ti.inst.Value}
}

func (ti *TInstant[V]) Duration() time.Duration {
	return 0
}

func (ti *TInstant[V]) Clone() Temporal[V] {
	n := *ti

	return &n
}

func (ti *TInstant[V]) String() string {
	return fmt.Sprintf("%v@%d", ti.inst.Value, ti.inst.T)
}
