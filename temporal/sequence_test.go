package temporal

import (
	"errors"
	"testing"

	"github.com/sgostarter/i/commerr"
	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/span"
	"github.com/stretchr/testify/assert"
)

func fi(v float64, t span.Timestamp) Instant[float64] {
	return Instant[float64]{Value: v, T: t}
}

func ii(v int64, t span.Timestamp) Instant[int64] {
	return Instant[int64]{Value: v, T: t}
}

func mustFloatSeq(t *testing.T, interp carrier.Interp, lowerInc, upperInc bool,
	instants ...Instant[float64]) *TSequence[float64] {
	seq, err := NewSequence[float64](carrier.Float{}, instants, lowerInc, upperInc, interp, WithNormalize())
	assert.Nil(t, err)

	return seq
}

func mustIntSeq(t *testing.T, lowerInc, upperInc bool, instants ...Instant[int64]) *TSequence[int64] {
	seq, err := NewSequence[int64](carrier.Int{}, instants, lowerInc, upperInc, carrier.Step, WithNormalize())
	assert.Nil(t, err)

	return seq
}

func TestNewSequenceErrors(t *testing.T) {
	c := carrier.Float{}

	_, err := NewSequence[float64](c, nil, true, true, carrier.Linear)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.ErrorIs(t, err, ErrInput)
	assert.ErrorIs(t, err, commerr.ErrInvalidArgument)

	_, err = NewSequence[float64](c, []Instant[float64]{fi(1, 0), fi(2, 0)}, true, true, carrier.Linear)
	assert.ErrorIs(t, err, ErrDuplicateTimestamp)

	_, err = NewSequence[float64](c, []Instant[float64]{fi(1, 5), fi(2, 0)}, true, true, carrier.Linear, WithPreSorted())
	assert.ErrorIs(t, err, ErrUnsortedInput)

	seq, err := NewSequence[float64](c, []Instant[float64]{fi(1, 5), fi(2, 0)}, true, true, carrier.Linear)
	assert.Nil(t, err)
	assert.Equal(t, []span.Timestamp{0, 5}, seq.Timestamps())

	_, err = NewSequence[float64](c, []Instant[float64]{fi(1, 5)}, true, false, carrier.Linear)
	assert.ErrorIs(t, err, ErrInvalidBounds)

	_, err = NewSequence[float64](c, []Instant[float64]{fi(1, 0), fi(2, 5)}, true, false, carrier.Step)
	assert.ErrorIs(t, err, ErrInvalidBounds)

	_, err = NewSequence[int64](carrier.Int{}, []Instant[int64]{ii(1, 0), ii(2, 5)}, true, true, carrier.Linear)
	assert.ErrorIs(t, err, ErrInvalidInterp)

	_, err = NewSequence[float64](c, []Instant[float64]{fi(1, 0), fi(2, 5)}, true, true, carrier.Linear,
		WithBox(Box[float64]{Period: span.Period{Lower: 0, Upper: 5, LowerInc: true, UpperInc: true}, Min: 1, Max: 1.5}))
	assert.ErrorIs(t, err, ErrInvalidBounds)

	wide := Box[float64]{Period: span.Period{Lower: -1, Upper: 5, LowerInc: true, UpperInc: true}, Min: 0, Max: 9}
	seq, err = NewSequence[float64](c, []Instant[float64]{fi(1, 0), fi(2, 5)}, true, true, carrier.Linear, WithBox(wide))
	assert.Nil(t, err)
	assert.Equal(t, wide, seq.BBox())
}

func TestStepNormalization(t *testing.T) {
	seq := mustIntSeq(t, true, true, ii(1, 0), ii(1, 1), ii(2, 2))
	assert.Equal(t, []Instant[int64]{ii(1, 0), ii(2, 2)}, seq.Instants())

	seq = mustIntSeq(t, true, false, ii(1, 0), ii(2, 3), ii(2, 5), ii(2, 8))
	assert.Equal(t, []Instant[int64]{ii(1, 0), ii(2, 3), ii(2, 8)}, seq.Instants())
	assert.False(t, seq.UpperInc())
}

func TestLinearNormalization(t *testing.T) {
	seq := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(5, 5), fi(10, 10), fi(10, 20), fi(10, 30))
	assert.Equal(t, []Instant[float64]{fi(0, 0), fi(10, 10), fi(10, 30)}, seq.Instants())

	seq = mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(1.000001, 1), fi(2, 2))
	assert.Equal(t, 2, seq.NumInstants())
}

func TestNormalizationIdempotent(t *testing.T) {
	inputs := [][]Instant[float64]{
		{fi(0, 0), fi(1, 1), fi(2, 2), fi(2, 3), fi(5, 4), fi(5, 9), fi(1, 10)},
		{fi(3, 0), fi(3, 1), fi(3, 2)},
		{fi(0, 0), fi(4, 2), fi(4.00001, 3), fi(8, 5)},
	}

	for _, interp := range []carrier.Interp{carrier.Step, carrier.Linear} {
		for _, instants := range inputs {
			once := mustFloatSeq(t, interp, true, true, instants...)
			twice := mustFloatSeq(t, interp, true, true, once.Instants()...)
			assert.True(t, Equal[float64](once, twice), "%s %v", interp, instants)
		}
	}
}

func TestAppendGrowth(t *testing.T) {
	seq, err := NewSequence[int64](carrier.Int{}, []Instant[int64]{ii(1, 0)}, true, true, carrier.Step,
		WithCapacity(1))
	assert.Nil(t, err)
	assert.True(t, seq.Expandable())
	assert.Equal(t, 1, seq.Capacity())

	caps := []int{2, 4, 4, 8, 8}

	for idx, v := range []int64{2, 1, 2, 1, 2} {
		assert.Nil(t, seq.Append(ii(v, span.Timestamp(idx+1))))
		assert.Equal(t, caps[idx], seq.Capacity())
	}

	assert.Equal(t, 6, seq.NumInstants())
	assert.Equal(t, 8, seq.Capacity())

	seq.Compact()
	assert.Equal(t, 6, seq.Capacity())
	assert.False(t, seq.Expandable())
}

func TestAppendNonExpandable(t *testing.T) {
	seq := mustIntSeq(t, true, true, ii(1, 0))

	for idx := 1; idx <= 4; idx++ {
		assert.Nil(t, seq.Append(ii(int64(idx%2), span.Timestamp(idx))))
		assert.Equal(t, seq.NumInstants(), seq.Capacity())
	}
}

func TestAppendRules(t *testing.T) {
	seq := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(10, 10))

	err := seq.Append(fi(3, 5))
	assert.ErrorIs(t, err, ErrUnsortedInput)

	assert.Nil(t, seq.Append(fi(10, 10)))
	assert.Equal(t, 2, seq.NumInstants())

	err = seq.Append(fi(11, 10))
	assert.ErrorIs(t, err, ErrConflictingOverlap)
	assert.ErrorIs(t, err, ErrConflict)
	assert.True(t, errors.Is(err, commerr.ErrReject))

	open := mustFloatSeq(t, carrier.Linear, true, false, fi(0, 0), fi(10, 10))
	assert.Nil(t, open.Append(fi(20, 10)))
	assert.True(t, open.UpperInc())
	assert.Equal(t, []Instant[float64]{fi(0, 0), fi(20, 10)}, open.Instants())
	assert.EqualValues(t, 20, open.BBox().Max)

	step := mustIntSeq(t, true, false, ii(1, 0), ii(2, 5), ii(2, 10))
	assert.Nil(t, step.Append(ii(7, 10)))
	assert.Equal(t, []Instant[int64]{ii(1, 0), ii(2, 5), ii(7, 10)}, step.Instants())

	step = mustIntSeq(t, true, false, ii(1, 0), ii(2, 5), ii(2, 10))
	assert.Nil(t, step.Append(ii(3, 12)))
	assert.Equal(t, []Instant[int64]{ii(1, 0), ii(2, 5), ii(3, 12)}, step.Instants())
	assert.True(t, step.UpperInc())
}

func TestAppendNormalizesTail(t *testing.T) {
	seq := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(1, 1))
	assert.Nil(t, seq.Append(fi(2, 2)))
	assert.Nil(t, seq.Append(fi(3, 3)))
	assert.Equal(t, []Instant[float64]{fi(0, 0), fi(3, 3)}, seq.Instants())

	assert.Nil(t, seq.Append(fi(0, 6)))
	assert.Equal(t, []Instant[float64]{fi(0, 0), fi(3, 3), fi(0, 6)}, seq.Instants())
}

func TestBBoxSoundness(t *testing.T) {
	c := carrier.Float{}
	seq := mustFloatSeq(t, carrier.Linear, true, true, fi(5, 0))

	values := []float64{3, 9, -2, 4, 4, 12, 0}

	for idx, v := range values {
		prev := seq.BBox()

		assert.Nil(t, seq.Append(fi(v, span.Timestamp(idx+1)*10)))

		box := seq.BBox()
		assert.True(t, box.Covers(c, prev))

		for _, inst := range seq.Instants() {
			assert.True(t, box.ContainsInstant(c, inst))
		}
	}

	assert.EqualValues(t, -2, seq.BBox().Min)
	assert.EqualValues(t, 12, seq.BBox().Max)
	assert.Equal(t, span.Period{Lower: 0, Upper: 70, LowerInc: true, UpperInc: true}, seq.BBox().Period)
}

func TestPointBBox(t *testing.T) {
	pc := carrier.PointCarrier{}

	seq, err := NewSequence[carrier.Point](pc, []Instant[carrier.Point]{
		{Value: carrier.Point{X: 0, Y: 5}, T: 0},
		{Value: carrier.Point{X: 3, Y: 1}, T: 10},
	}, true, true, carrier.Linear)
	assert.Nil(t, err)

	box := seq.BBox()
	assert.Equal(t, carrier.Point{X: 0, Y: 1}, box.Min)
	assert.Equal(t, carrier.Point{X: 3, Y: 5}, box.Max)

	v, ok := seq.ValueAt(5)
	assert.True(t, ok)
	assert.Equal(t, carrier.Point{X: 1.5, Y: 3}, v)
}

func TestSequenceAccessors(t *testing.T) {
	seq := mustFloatSeq(t, carrier.Linear, false, true, fi(0, 0), fi(10, 10), fi(4, 20))

	_, ok := seq.ValueAt(0)
	assert.False(t, ok)

	v, ok := seq.ValueAt(15)
	assert.True(t, ok)
	assert.EqualValues(t, 7, v)

	_, ok = seq.ValueAt(21)
	assert.False(t, ok)

	segs := seq.Segments()
	assert.Len(t, segs, 2)
	assert.False(t, segs[0].LowerInc)
	assert.False(t, segs[0].UpperInc)
	assert.True(t, segs[1].LowerInc)
	assert.True(t, segs[1].UpperInc)

	assert.Equal(t, []float64{0, 4, 10}, seq.Values())
	assert.EqualValues(t, 20*1000, seq.Duration())
	assert.Equal(t, fi(0, 0), seq.StartInstant())
	assert.Equal(t, fi(4, 20), seq.EndInstant())

	step := mustIntSeq(t, true, true, ii(1, 0), ii(2, 5))
	sv, ok := step.ValueAt(4)
	assert.True(t, ok)
	assert.EqualValues(t, 1, sv)

	assert.Equal(t, "[1@0, 2@5]", step.String())
	assert.Equal(t, "Interp=Step;[0@0, 4@20]", mustFloatSeq(t, carrier.Step, true, true, fi(0, 0), fi(4, 20)).String())

	cp := seq.Clone()
	assert.True(t, Equal[float64](seq, cp))
	assert.Equal(t, Hash[float64](seq), Hash(cp))
}

func TestSequenceFromValue(t *testing.T) {
	seq, err := NewSequenceFromValue[string](carrier.Text{}, "on", span.Period{Lower: 0, Upper: 10, LowerInc: true},
		carrier.Step)
	assert.Nil(t, err)
	assert.Equal(t, 2, seq.NumInstants())
	assert.False(t, seq.UpperInc())

	_, err = NewSequenceFromValue[string](carrier.Text{}, "on", span.Period{Lower: 3, Upper: 3}, carrier.Step)
	assert.ErrorIs(t, err, ErrInvalidBounds)
}
