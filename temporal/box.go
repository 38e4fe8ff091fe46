package temporal

import (
	"fmt"

	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/span"
)

// Box is the value range crossed with the time range of a temporal value. Min
// and Max are the extremes under the carrier's order, or per dimension for
// carriers implementing carrier.Bounded.
type Box[V any] struct {
	Period span.Period `json:"period" yaml:"period"`
	Min    V           `json:"min" yaml:"min"`
	Max    V           `json:"max" yaml:"max"`
}

func (b Box[V]) String() string {
	return fmt.Sprintf("%s x [%v, %v]", b.Period, b.Min, b.Max)
}

func (b Box[V]) ContainsValue(c carrier.Carrier[V], v V) bool {
	return c.Equal(lowerOf(c, b.Min, v), b.Min) && c.Equal(upperOf(c, b.Max, v), b.Max)
}

func (b Box[V]) ContainsInstant(c carrier.Carrier[V], inst Instant[V]) bool {
	return b.Period.Contains(inst.T) && b.ContainsValue(c, inst.Value)
}

// Covers reports whether o lies entirely inside b.
func (b Box[V]) Covers(c carrier.Carrier[V], o Box[V]) bool {
	return b.Period.ContainsPeriod(o.Period) && b.ContainsValue(c, o.Min) && b.ContainsValue(c, o.Max)
}

// Union returns the smallest box covering b and o.
func (b Box[V]) Union(c carrier.Carrier[V], o Box[V]) Box[V] {
	return Box[V]{
		Period: b.Period.Expand(o.Period),
		Min:    lowerOf(c, b.Min, o.Min),
		Max:    upperOf(c, b.Max, o.Max),
	}
}

func (b Box[V]) expand(c carrier.Carrier[V], inst Instant[V]) Box[V] {
	if inst.T <= b.Period.Lower {
		b.Period.Lower, b.Period.LowerInc = inst.T, true
	}

	if inst.T >= b.Period.Upper {
		b.Period.Upper, b.Period.UpperInc = inst.T, true
	}

	b.Min = lowerOf(c, b.Min, inst.Value)
	b.Max = upperOf(c, b.Max, inst.Value)

	return b
}

func boxOfInstants[V any](c carrier.Carrier[V], instants []Instant[V], lowerInc, upperInc bool) Box[V] {
	b := Box[V]{
		Period: span.Period{
			Lower:    instants[0].T,
			Upper:    instants[len(instants)-1].T,
			LowerInc: lowerInc,
			UpperInc: upperInc,
		},
		Min: instants[0].Value,
		Max: instants[0].Value,
	}

	for _, inst := range instants[1:] {
		b.Min = lowerOf(c, b.Min, inst.Value)
		b.Max = upperOf(c, b.Max, inst.Value)
	}

	return b
}

func lowerOf[V any](c carrier.Carrier[V], a, b V) V {
	if bc, ok := c.(carrier.Bounded[V]); ok {
		return bc.Lower(a, b)
	}

	if c.Compare(b, a) < 0 {
		return b
	}

	return a
}

func upperOf[V any](c carrier.Carrier[V], a, b V) V {
	if bc, ok := c.(carrier.Bounded[V]); ok {
		return bc.Upper(a, b)
	}

	if c.Compare(b, a) > 0 {
		return b
	}

	return a
}

// boxOption extracts a box supplied through WithBox and checks it covers the
// computed one.
func boxOption[V any](c carrier.Carrier[V], o options, computed Box[V]) (Box[V], error) {
	if o.box == nil {
		return computed, nil
	}

	given, ok := o.box.(Box[V])
	if !ok {
		return computed, fmt.Errorf("%w: box of type %T", ErrInvalidBounds, o.box)
	}

	if !given.Covers(c, computed) {
		return computed, fmt.Errorf("%w: box %s does not cover %s", ErrInvalidBounds, given, computed)
	}

	return given, nil
}
