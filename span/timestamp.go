package span

import (
	"sort"
	"time"
)

// Timestamp is a count of microseconds since 2000-01-01 00:00:00 UTC.
type Timestamp int64

const epochUnix = 946684800

func FromTime(t time.Time) Timestamp {
	return Timestamp((t.Unix()-epochUnix)*1e6 + int64(t.Nanosecond()/1e3))
}

func (t Timestamp) Time() time.Time {
	return time.UnixMicro(int64(t) + epochUnix*1e6).UTC()
}

func (t Timestamp) Add(d time.Duration) Timestamp {
	return t + Timestamp(d/time.Microsecond)
}

func (t Timestamp) Sub(u Timestamp) time.Duration {
	return time.Duration(t-u) * time.Microsecond
}

func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339Nano)
}

type TimestampSet struct {
	ts []Timestamp
}

// NewTimestampSet sorts and deduplicates ts.
func NewTimestampSet(ts ...Timestamp) TimestampSet {
	vs := make([]Timestamp, len(ts))
	copy(vs, ts)

	sort.Slice(vs, func(i, j int) bool {
		return vs[i] < vs[j]
	})

	n := 0

	for idx, t := range vs {
		if idx > 0 && t == vs[n-1] {
			continue
		}

		vs[n] = t
		n++
	}

	return TimestampSet{ts: vs[:n]}
}

func (s TimestampSet) Len() int {
	return len(s.ts)
}

func (s TimestampSet) IsEmpty() bool {
	return len(s.ts) == 0
}

func (s TimestampSet) Values() []Timestamp {
	vs := make([]Timestamp, len(s.ts))
	copy(vs, s.ts)

	return vs
}

func (s TimestampSet) Contains(t Timestamp) bool {
	idx := sort.Search(len(s.ts), func(i int) bool {
		return s.ts[i] >= t
	})

	return idx < len(s.ts) && s.ts[idx] == t
}

// Span returns the smallest inclusive period holding every timestamp.
func (s TimestampSet) Span() (p Period, ok bool) {
	if len(s.ts) == 0 {
		return
	}

	return Period{Lower: s.ts[0], Upper: s.ts[len(s.ts)-1], LowerInc: true, UpperInc: true}, true
}

// PeriodSet returns the timestamps as a set of instantaneous periods.
func (s TimestampSet) PeriodSet() PeriodSet {
	ps := make([]Period, 0, len(s.ts))
	for _, t := range s.ts {
		ps = append(ps, InstantPeriod(t))
	}

	return PeriodSet{periods: ps}
}
