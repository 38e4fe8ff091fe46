package span

import (
	"fmt"
	"sort"
	"time"
)

// PeriodSet is an ordered set of disjoint periods. Periods that overlap or touch
// are merged on construction.
type PeriodSet struct {
	periods []Period
}

func NewPeriodSet(periods ...Period) (PeriodSet, error) {
	for _, p := range periods {
		if !p.IsValid() {
			return PeriodSet{}, fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
		}
	}

	return PeriodSet{periods: normalizePeriods(periods)}, nil
}

// MustPeriodSet is NewPeriodSet for periods known to be valid.
func MustPeriodSet(periods ...Period) PeriodSet {
	ps, err := NewPeriodSet(periods...)
	if err != nil {
		panic(err)
	}

	return ps
}

func normalizePeriods(periods []Period) []Period {
	if len(periods) == 0 {
		return nil
	}

	ps := make([]Period, len(periods))
	copy(ps, periods)

	sort.Slice(ps, func(i, j int) bool {
		return ComparePeriods(ps[i], ps[j]) < 0
	})

	out := ps[:1]

	for _, p := range ps[1:] {
		last := &out[len(out)-1]

		if last.Overlaps(p) || last.Adjacent(p) {
			*last = last.Expand(p)

			continue
		}

		out = append(out, p)
	}

	return out
}

func (ps PeriodSet) Len() int {
	return len(ps.periods)
}

func (ps PeriodSet) IsEmpty() bool {
	return len(ps.periods) == 0
}

func (ps PeriodSet) Periods() []Period {
	r := make([]Period, len(ps.periods))
	copy(r, ps.periods)

	return r
}

func (ps PeriodSet) PeriodN(idx int) Period {
	return ps.periods[idx]
}

// Span returns the bounding period; ok is false for an empty set.
func (ps PeriodSet) Span() (p Period, ok bool) {
	if len(ps.periods) == 0 {
		return
	}

	p = ps.periods[0].Expand(ps.periods[len(ps.periods)-1])
	ok = true

	return
}

func (ps PeriodSet) Duration() (d time.Duration) {
	for _, p := range ps.periods {
		d += p.Duration()
	}

	return
}

func (ps PeriodSet) Contains(t Timestamp) bool {
	idx := sort.Search(len(ps.periods), func(i int) bool {
		p := ps.periods[i]

		return p.Upper > t || (p.Upper == t && p.UpperInc)
	})

	return idx < len(ps.periods) && ps.periods[idx].Contains(t)
}

func (ps PeriodSet) Overlaps(p Period) bool {
	for _, q := range ps.periods {
		if q.Overlaps(p) {
			return true
		}
	}

	return false
}

func (ps PeriodSet) Union(o PeriodSet) PeriodSet {
	all := make([]Period, 0, len(ps.periods)+len(o.periods))
	all = append(all, ps.periods...)
	all = append(all, o.periods...)

	return PeriodSet{periods: normalizePeriods(all)}
}

func (ps PeriodSet) Intersection(o PeriodSet) PeriodSet {
	var r []Period

	i, j := 0, 0
	for i < len(ps.periods) && j < len(o.periods) {
		p, q := ps.periods[i], o.periods[j]

		if inter, ok := p.Intersection(q); ok {
			r = append(r, inter)
		}

		if compareUpper(p, q) < 0 {
			i++
		} else {
			j++
		}
	}

	return PeriodSet{periods: normalizePeriods(r)}
}

func (ps PeriodSet) IntersectionPeriod(p Period) PeriodSet {
	return ps.Intersection(PeriodSet{periods: []Period{p}})
}

func (ps PeriodSet) Minus(o PeriodSet) PeriodSet {
	var r []Period

	for _, p := range ps.periods {
		parts := []Period{p}

		for _, q := range o.periods {
			if q.Before(p) {
				continue
			}

			if p.Before(q) {
				break
			}

			var next []Period
			for _, part := range parts {
				next = append(next, part.Minus(q)...)
			}

			parts = next
		}

		r = append(r, parts...)
	}

	return PeriodSet{periods: normalizePeriods(r)}
}

func (ps PeriodSet) Shift(d time.Duration) PeriodSet {
	r := make([]Period, len(ps.periods))
	for idx, p := range ps.periods {
		r[idx] = p.Shift(d)
	}

	return PeriodSet{periods: r}
}
