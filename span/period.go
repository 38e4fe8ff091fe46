package span

import (
	"fmt"
	"time"
)

type Period struct {
	Lower    Timestamp `json:"lower" yaml:"lower"`
	Upper    Timestamp `json:"upper" yaml:"upper"`
	LowerInc bool      `json:"lower_inc,omitempty" yaml:"lower_inc,omitempty"`
	UpperInc bool      `json:"upper_inc,omitempty" yaml:"upper_inc,omitempty"`
}

func NewPeriod(lower, upper Timestamp, lowerInc, upperInc bool) (p Period, err error) {
	p = Period{Lower: lower, Upper: upper, LowerInc: lowerInc, UpperInc: upperInc}
	if !p.IsValid() {
		err = fmt.Errorf("%w: %s", ErrInvalidPeriod, p)

		return
	}

	return
}

func InstantPeriod(t Timestamp) Period {
	return Period{Lower: t, Upper: t, LowerInc: true, UpperInc: true}
}

// IsValid reports whether the period contains at least one timestamp.
func (p Period) IsValid() bool {
	if p.Lower < p.Upper {
		return true
	}

	return p.Lower == p.Upper && p.LowerInc && p.UpperInc
}

func (p Period) IsInstant() bool {
	return p.Lower == p.Upper
}

func (p Period) Duration() time.Duration {
	return p.Upper.Sub(p.Lower)
}

func (p Period) Contains(t Timestamp) bool {
	if t < p.Lower || t > p.Upper {
		return false
	}

	if t == p.Lower && !p.LowerInc {
		return false
	}

	if t == p.Upper && !p.UpperInc {
		return false
	}

	return true
}

func (p Period) ContainsPeriod(q Period) bool {
	return compareLower(p, q) <= 0 && compareUpper(q, p) <= 0
}

func (p Period) Overlaps(q Period) bool {
	return lowerBeforeUpper(p, q) && lowerBeforeUpper(q, p)
}

// Adjacent reports whether p and q touch at one timestamp that exactly one of
// them includes.
func (p Period) Adjacent(q Period) bool {
	if p.Upper == q.Lower {
		return p.UpperInc != q.LowerInc
	}

	if q.Upper == p.Lower {
		return q.UpperInc != p.LowerInc
	}

	return false
}

// Before reports whether every timestamp of p precedes every timestamp of q.
func (p Period) Before(q Period) bool {
	if p.Upper != q.Lower {
		return p.Upper < q.Lower
	}

	return !(p.UpperInc && q.LowerInc)
}

func (p Period) Intersection(q Period) (r Period, ok bool) {
	if !p.Overlaps(q) {
		return
	}

	r = p

	if compareLower(q, p) > 0 {
		r.Lower, r.LowerInc = q.Lower, q.LowerInc
	}

	if compareUpper(q, p) < 0 {
		r.Upper, r.UpperInc = q.Upper, q.UpperInc
	}

	ok = r.IsValid()

	return
}

// Expand returns the smallest period containing p and q.
func (p Period) Expand(q Period) Period {
	r := p

	if compareLower(q, p) < 0 {
		r.Lower, r.LowerInc = q.Lower, q.LowerInc
	}

	if compareUpper(q, p) > 0 {
		r.Upper, r.UpperInc = q.Upper, q.UpperInc
	}

	return r
}

func (p Period) Minus(q Period) []Period {
	if !p.Overlaps(q) {
		return []Period{p}
	}

	var ps []Period

	if compareLower(p, q) < 0 {
		left := Period{Lower: p.Lower, LowerInc: p.LowerInc, Upper: q.Lower, UpperInc: !q.LowerInc}
		if left.IsValid() {
			ps = append(ps, left)
		}
	}

	if compareUpper(q, p) < 0 {
		right := Period{Lower: q.Upper, LowerInc: !q.UpperInc, Upper: p.Upper, UpperInc: p.UpperInc}
		if right.IsValid() {
			ps = append(ps, right)
		}
	}

	return ps
}

func (p Period) Shift(d time.Duration) Period {
	p.Lower = p.Lower.Add(d)
	p.Upper = p.Upper.Add(d)

	return p
}

func (p Period) String() string {
	l, u := "(", ")"
	if p.LowerInc {
		l = "["
	}

	if p.UpperInc {
		u = "]"
	}

	return fmt.Sprintf("%s%d, %d%s", l, p.Lower, p.Upper, u)
}

// ComparePeriods orders periods by lower bound, an inclusive bound first, then
// by upper bound.
func ComparePeriods(p, q Period) int {
	if c := compareLower(p, q); c != 0 {
		return c
	}

	return compareUpper(p, q)
}

func compareLower(p, q Period) int {
	switch {
	case p.Lower < q.Lower:
		return -1
	case p.Lower > q.Lower:
		return 1
	case p.LowerInc == q.LowerInc:
		return 0
	case p.LowerInc:
		return -1
	default:
		return 1
	}
}

func compareUpper(p, q Period) int {
	switch {
	case p.Upper < q.Upper:
		return -1
	case p.Upper > q.Upper:
		return 1
	case p.UpperInc == q.UpperInc:
		return 0
	case p.UpperInc:
		return 1
	default:
		return -1
	}
}

// lowerBeforeUpper reports whether p starts before q ends.
func lowerBeforeUpper(p, q Period) bool {
	if p.Lower != q.Upper {
		return p.Lower < q.Upper
	}

	return p.LowerInc && q.UpperInc
}
