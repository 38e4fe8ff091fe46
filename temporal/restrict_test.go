package temporal

import (
	"testing"

	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/span"
	"github.com/stretchr/testify/assert"
)

func assertPartition[V any](t *testing.T, temp Temporal[V], f Filter[V]) {
	t.Helper()

	at, err := Restrict(temp, f, false)
	assert.Nil(t, err)

	minus, err := Restrict(temp, f, true)
	assert.Nil(t, err)

	var atTime, minusTime span.PeriodSet

	if at != nil {
		atTime = at.Time()
	}

	if minus != nil {
		minusTime = minus.Time()
	}

	assert.True(t, atTime.Intersection(minusTime).IsEmpty(), "%s filter overlaps its complement", f.Kind)
	assert.Equal(t, temp.Time().Periods(), atTime.Union(minusTime).Periods(), "%s filter", f.Kind)
}

func TestRestrictLinearValue(t *testing.T) {
	s := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(10, 10))

	at, err := AtValue[float64](s, 5)
	assert.Nil(t, err)

	ti, ok := at.(*TInstant[float64])
	assert.True(t, ok)
	assert.Equal(t, fi(5, 5), ti.inst)
	assert.Equal(t, carrier.Linear, ti.Interp())

	minus, err := MinusValue[float64](s, 5)
	assert.Nil(t, err)

	ss, ok := minus.(*TSequenceSet[float64])
	assert.True(t, ok)
	assert.Equal(t, 2, ss.NumSequences())

	first, second := ss.SequenceN(0), ss.SequenceN(1)
	assert.Equal(t, []Instant[float64]{fi(0, 0), fi(5, 5)}, first.Instants())
	assert.True(t, first.LowerInc())
	assert.False(t, first.UpperInc())
	assert.Equal(t, []Instant[float64]{fi(5, 5), fi(10, 10)}, second.Instants())
	assert.False(t, second.LowerInc())
	assert.True(t, second.UpperInc())

	assertPartition[float64](t, s, ValueFilter[float64](5))
	assertPartition[float64](t, s, ValueSetFilter[float64](0, 5, 7))

	slow := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(10, 4))

	at, err = AtValue[float64](slow, 7)
	assert.Nil(t, err)
	assert.Equal(t, []Instant[float64]{fi(7, 3)}, at.Instants())

	assertPartition[float64](t, slow, ValueFilter[float64](7))
}

func TestRestrictLinearRange(t *testing.T) {
	s := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(10, 10))
	r := Range[float64]{Lower: 2, Upper: 4, LowerInc: true, UpperInc: true}

	at, err := AtRange[float64](s, r)
	assert.Nil(t, err)
	assert.Equal(t, SubtypeSequence, at.Subtype())
	assert.Equal(t, []Instant[float64]{fi(2, 2), fi(4, 4)}, at.Instants())

	minus, err := MinusRange[float64](s, r)
	assert.Nil(t, err)
	assert.Equal(t, 2, minus.(*TSequenceSet[float64]).NumSequences())
	assert.Equal(t, []Instant[float64]{fi(0, 0), fi(2, 2), fi(4, 4), fi(10, 10)}, minus.Instants())

	assertPartition[float64](t, s, RangeFilter(r))
	assertPartition[float64](t, s, RangeSetFilter(r, Range[float64]{Lower: 8, Upper: 20, UpperInc: true}))

	down := mustFloatSeq(t, carrier.Linear, true, true, fi(10, 0), fi(0, 10))
	at, err = AtRange[float64](down, r)
	assert.Nil(t, err)
	assert.Equal(t, []Instant[float64]{fi(4, 6), fi(2, 8)}, at.Instants())

	assertPartition[float64](t, down, RangeFilter(Range[float64]{Lower: 2, Upper: 4}))
}

func TestRestrictStepValue(t *testing.T) {
	s := mustIntSeq(t, true, true, ii(1, 0), ii(2, 5), ii(1, 10), ii(1, 15))

	at, err := AtValue[int64](s, 1)
	assert.Nil(t, err)

	ss, ok := at.(*TSequenceSet[int64])
	assert.True(t, ok)
	assert.Equal(t, 2, ss.NumSequences())
	assert.Equal(t, []Instant[int64]{ii(1, 0), ii(1, 5)}, ss.SequenceN(0).Instants())
	assert.False(t, ss.SequenceN(0).UpperInc())
	assert.Equal(t, []Instant[int64]{ii(1, 10), ii(1, 15)}, ss.SequenceN(1).Instants())

	minus, err := MinusValue[int64](s, 1)
	assert.Nil(t, err)

	seq, ok := minus.(*TSequence[int64])
	assert.True(t, ok)
	assert.Equal(t, []Instant[int64]{ii(2, 5), ii(2, 10)}, seq.Instants())
	assert.False(t, seq.UpperInc())

	assertPartition[int64](t, s, ValueFilter[int64](1))
	assertPartition[int64](t, s, ValueFilter[int64](2))
	assertPartition[int64](t, s, RangeFilter(Range[int64]{Lower: 2, Upper: 9, LowerInc: true}))
}

func TestRestrictStepText(t *testing.T) {
	c := carrier.Text{}
	s, err := NewSequence[string](c, []Instant[string]{
		{Value: "a", T: 0}, {Value: "c", T: 5}, {Value: "b", T: 10},
	}, true, true, carrier.Step)
	assert.Nil(t, err)

	at, err := AtRange[string](s, Range[string]{Lower: "a", Upper: "b", LowerInc: true, UpperInc: true})
	assert.Nil(t, err)
	assert.Equal(t, 2, at.(*TSequenceSet[string]).NumSequences())
	assert.Equal(t, []string{"a", "b"}, at.Values())

	assertPartition[string](t, s, ValueSetFilter("a", "c"))
}

func TestRestrictTime(t *testing.T) {
	s := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(10, 10))

	at, err := AtTimestamp[float64](s, 3)
	assert.Nil(t, err)
	assert.Equal(t, SubtypeInstant, at.Subtype())
	assert.Equal(t, fi(3, 3), at.StartInstant())

	p := span.Period{Lower: 2, Upper: 4, LowerInc: true, UpperInc: true}

	at, err = AtPeriod[float64](s, p)
	assert.Nil(t, err)
	assert.Equal(t, []Instant[float64]{fi(2, 2), fi(4, 4)}, at.Instants())

	minus, err := MinusPeriod[float64](s, p)
	assert.Nil(t, err)
	assert.Equal(t, SubtypeSequenceSet, minus.Subtype())
	assert.Equal(t, 2, minus.(*TSequenceSet[float64]).NumSequences())

	at, err = AtTimestampSet[float64](s, span.NewTimestampSet(2, 4, 20))
	assert.Nil(t, err)
	assert.Equal(t, 2, at.NumInstants())

	far := span.Period{Lower: 20, Upper: 30, LowerInc: true}

	at, err = AtPeriod[float64](s, far)
	assert.Nil(t, err)
	assert.Nil(t, at)

	minus, err = MinusPeriod[float64](s, far)
	assert.Nil(t, err)
	assert.True(t, Equal[float64](s, minus))

	ps := span.MustPeriodSet(p, span.Period{Lower: 6, Upper: 8})
	at, err = AtPeriodSet[float64](s, ps)
	assert.Nil(t, err)
	assert.Equal(t, ps.Periods(), at.Time().Periods())

	assertPartition[float64](t, s, TimestampFilter[float64](3))
	assertPartition[float64](t, s, TimestampSetFilter[float64](span.NewTimestampSet(0, 10)))
	assertPartition[float64](t, s, PeriodFilter[float64](p))
	assertPartition[float64](t, s, PeriodSetFilter[float64](ps))

	step := mustIntSeq(t, true, true, ii(1, 0), ii(2, 5), ii(3, 10))
	atStep, err := AtPeriod[int64](step, span.Period{Lower: 2, Upper: 5})
	assert.Nil(t, err)
	assert.Equal(t, []Instant[int64]{ii(1, 2), ii(1, 5)}, atStep.Instants())
}

func TestRestrictSequenceSet(t *testing.T) {
	c := carrier.Float{}
	ss, err := NewSequenceSet[float64](c, []*TSequence[float64]{
		mustFloatSeq(t, carrier.Linear, true, false, fi(0, 0), fi(10, 10)),
		mustFloatSeq(t, carrier.Linear, true, true, fi(10, 10), fi(0, 20)),
		mustFloatSeq(t, carrier.Linear, true, true, fi(3, 30), fi(4, 40)),
	})
	assert.Nil(t, err)

	at, err := AtValue[float64](ss, 5)
	assert.Nil(t, err)
	assert.Equal(t, []Instant[float64]{fi(5, 5), fi(5, 15)}, at.Instants())

	assertPartition[float64](t, ss, ValueFilter[float64](5))
	assertPartition[float64](t, ss, ValueFilter[float64](10))
	assertPartition[float64](t, ss, PeriodFilter[float64](span.Period{Lower: 5, Upper: 35, LowerInc: true}))
	assertPartition[float64](t, ss, MinFilter[float64]())
}

func TestRestrictMinMax(t *testing.T) {
	s := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(10, 10))

	at, err := AtMax[float64](s)
	assert.Nil(t, err)
	assert.Equal(t, fi(10, 10), at.StartInstant())

	at, err = AtMin[float64](s)
	assert.Nil(t, err)
	assert.Equal(t, fi(0, 0), at.StartInstant())

	minus, err := MinusMax[float64](s)
	assert.Nil(t, err)
	assert.False(t, minus.(*TSequence[float64]).UpperInc())

	open := mustFloatSeq(t, carrier.Linear, true, false, fi(0, 0), fi(10, 10))
	at, err = AtMax[float64](open)
	assert.Nil(t, err)
	assert.Nil(t, at)

	minus, err = MinusMin[float64](open)
	assert.Nil(t, err)
	assert.False(t, minus.(*TSequence[float64]).LowerInc())
}

func TestRestrictBoxShortCircuit(t *testing.T) {
	s := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(10, 10))

	at, err := AtValue[float64](s, 50)
	assert.Nil(t, err)
	assert.Nil(t, at)

	minus, err := MinusValue[float64](s, 50)
	assert.Nil(t, err)
	assert.True(t, Equal[float64](s, minus))

	assert.True(t, EverEqual[float64](s, 5))
	assert.False(t, EverEqual[float64](s, 11))
	assert.False(t, AlwaysEqual[float64](s, 5))
	assert.True(t, AlwaysEqual[float64](mustFloatSeq(t, carrier.Linear, true, true, fi(2, 0), fi(2, 10)), 2))
}

func TestRestrictInvalidFilter(t *testing.T) {
	s := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(10, 10))

	_, err := AtPeriodSet[float64](s, span.PeriodSet{})
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.ErrorIs(t, err, ErrFilter)

	_, err = AtRange[float64](s, Range[float64]{Lower: 5, Upper: 1})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = AtRange[float64](s, Range[float64]{Lower: 5, Upper: 5})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = Restrict[float64](s, Filter[float64]{Kind: FilterValue, Values: []float64{1, 2}}, false)
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = Restrict[float64](s, Filter[float64]{Kind: 99}, false)
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = AtPeriod[float64](s, span.Period{Lower: 5, Upper: 5})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	pc := carrier.PointCarrier{}
	ps, err := NewSequence[carrier.Point](pc, []Instant[carrier.Point]{
		{Value: carrier.Point{}, T: 0}, {Value: carrier.Point{X: 1, Y: 1}, T: 10},
	}, true, true, carrier.Linear)
	assert.Nil(t, err)

	_, err = AtRange[carrier.Point](ps, Range[carrier.Point]{Upper: carrier.Point{X: 1}, LowerInc: true})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}
