package temporal

import (
	"fmt"

	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/span"
)

type FilterKind uint8

const (
	FilterTimestamp FilterKind = iota + 1
	FilterTimestampSet
	FilterPeriod
	FilterPeriodSet
	FilterValue
	FilterValueSet
	FilterRange
	FilterRangeSet
	FilterMin
	FilterMax
)

func (k FilterKind) String() string {
	switch k {
	case FilterTimestamp:
		return "timestamp"
	case FilterTimestampSet:
		return "timestamp set"
	case FilterPeriod:
		return "period"
	case FilterPeriodSet:
		return "period set"
	case FilterValue:
		return "value"
	case FilterValueSet:
		return "value set"
	case FilterRange:
		return "range"
	case FilterRangeSet:
		return "range set"
	case FilterMin:
		return "min"
	case FilterMax:
		return "max"
	default:
		return fmt.Sprintf("filter(%d)", k)
	}
}

func (k FilterKind) isTime() bool {
	return k >= FilterTimestamp && k <= FilterPeriodSet
}

// Range is an interval of base values under the carrier's order.
type Range[V any] struct {
	Lower    V    `json:"lower" yaml:"lower"`
	Upper    V    `json:"upper" yaml:"upper"`
	LowerInc bool `json:"lower_inc" yaml:"lower_inc"`
	UpperInc bool `json:"upper_inc" yaml:"upper_inc"`
}

func (r Range[V]) valid(c carrier.Carrier[V]) bool {
	switch cmp := c.Compare(r.Lower, r.Upper); {
	case cmp < 0:
		return true
	case cmp == 0:
		return r.LowerInc && r.UpperInc
	default:
		return false
	}
}

func (r Range[V]) Contains(c carrier.Carrier[V], v V) bool {
	lo, hi := c.Compare(r.Lower, v), c.Compare(v, r.Upper)

	return (lo < 0 || (lo == 0 && r.LowerInc)) && (hi < 0 || (hi == 0 && r.UpperInc))
}

// Filter selects part of a temporal value by time or by value. Build it with the
// XxxFilter constructors.
type Filter[V any] struct {
	Kind       FilterKind
	Timestamps span.TimestampSet
	Periods    span.PeriodSet
	Period     span.Period
	Values     []V
	Ranges     []Range[V]
}

func TimestampFilter[V any](t span.Timestamp) Filter[V] {
	return Filter[V]{Kind: FilterTimestamp, Timestamps: span.NewTimestampSet(t)}
}

func TimestampSetFilter[V any](ts span.TimestampSet) Filter[V] {
	return Filter[V]{Kind: FilterTimestampSet, Timestamps: ts}
}

func PeriodFilter[V any](p span.Period) Filter[V] {
	return Filter[V]{Kind: FilterPeriod, Period: p}
}

func PeriodSetFilter[V any](ps span.PeriodSet) Filter[V] {
	return Filter[V]{Kind: FilterPeriodSet, Periods: ps}
}

func ValueFilter[V any](v V) Filter[V] {
	return Filter[V]{Kind: FilterValue, Values: []V{v}}
}

func ValueSetFilter[V any](vs ...V) Filter[V] {
	return Filter[V]{Kind: FilterValueSet, Values: vs}
}

func RangeFilter[V any](r Range[V]) Filter[V] {
	return Filter[V]{Kind: FilterRange, Ranges: []Range[V]{r}}
}

func RangeSetFilter[V any](rs ...Range[V]) Filter[V] {
	return Filter[V]{Kind: FilterRangeSet, Ranges: rs}
}

func MinFilter[V any]() Filter[V] {
	return Filter[V]{Kind: FilterMin}
}

func MaxFilter[V any]() Filter[V] {
	return Filter[V]{Kind: FilterMax}
}

func (f Filter[V]) validate(c carrier.Carrier[V], interp carrier.Interp) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s filter: %s", ErrInvalidFilter, f.Kind, fmt.Sprintf(format, args...))
	}

	switch f.Kind {
	case FilterTimestamp, FilterTimestampSet:
		if f.Timestamps.IsEmpty() {
			return invalid("no timestamps")
		}
	case FilterPeriod:
		if !f.Period.IsValid() {
			return invalid("empty period %s", f.Period)
		}
	case FilterPeriodSet:
		if f.Periods.IsEmpty() {
			return invalid("no periods")
		}
	case FilterValue, FilterValueSet:
		if len(f.Values) == 0 || (f.Kind == FilterValue && len(f.Values) != 1) {
			return invalid("%d values", len(f.Values))
		}
	case FilterRange, FilterRangeSet:
		if len(f.Ranges) == 0 || (f.Kind == FilterRange && len(f.Ranges) != 1) {
			return invalid("%d ranges", len(f.Ranges))
		}

		if _, ok := c.(carrier.Numeric[V]); interp == carrier.Linear && !ok {
			return invalid("%s values have no linear order", c.Kind())
		}

		for _, r := range f.Ranges {
			if !r.valid(c) {
				return invalid("empty range [%v, %v]", r.Lower, r.Upper)
			}
		}
	case FilterMin, FilterMax:
	default:
		return invalid("unknown kind")
	}

	return nil
}

// timeSet returns the time filter as a period set.
func (f Filter[V]) timeSet() span.PeriodSet {
	switch f.Kind {
	case FilterTimestamp, FilterTimestampSet:
		return f.Timestamps.PeriodSet()
	case FilterPeriod:
		return span.MustPeriodSet(f.Period)
	default:
		return f.Periods
	}
}

func (f Filter[V]) matches(c carrier.Carrier[V], v V) bool {
	for _, x := range f.Values {
		if c.Equal(x, v) {
			return true
		}
	}

	for _, r := range f.Ranges {
		if r.Contains(c, v) {
			return true
		}
	}

	return false
}

// mayMatch is the bounding box test: false means no value inside box matches.
func (f Filter[V]) mayMatch(c carrier.Carrier[V], box Box[V]) bool {
	for _, x := range f.Values {
		if box.ContainsValue(c, x) {
			return true
		}
	}

	for _, r := range f.Ranges {
		lo, hi := c.Compare(r.Lower, box.Max), c.Compare(box.Min, r.Upper)
		if (lo < 0 || (lo == 0 && r.LowerInc)) && (hi < 0 || (hi == 0 && r.UpperInc)) {
			return true
		}
	}

	return false
}
