package temporal

import (
	"testing"

	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/span"
	"github.com/stretchr/testify/assert"
)

func TestMergeAbutting(t *testing.T) {
	a := mustFloatSeq(t, carrier.Linear, true, false, fi(1, 0), fi(2, 5))
	b := mustFloatSeq(t, carrier.Linear, true, true, fi(2, 5), fi(3, 10))

	m, err := Merge[float64](a, b)
	assert.Nil(t, err)

	seq, ok := m.(*TSequence[float64])
	assert.True(t, ok)
	assert.Equal(t, span.Period{Lower: 0, Upper: 10, LowerInc: true, UpperInc: true}, seq.Period())
	assert.Equal(t, []Instant[float64]{fi(1, 0), fi(3, 10)}, seq.Instants())

	m2, err := Merge[float64](b, a)
	assert.Nil(t, err)
	assert.True(t, Equal(m, m2))
}

func TestMergeOverlapping(t *testing.T) {
	a := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(10, 10))
	b := mustFloatSeq(t, carrier.Linear, true, true, fi(5, 5), fi(15, 15))

	m, err := Merge[float64](a, b)
	assert.Nil(t, err)
	assert.Equal(t, []Instant[float64]{fi(0, 0), fi(15, 15)}, m.Instants())

	conflict := mustFloatSeq(t, carrier.Linear, true, true, fi(6, 5), fi(20, 20))

	_, err = Merge[float64](a, conflict)
	assert.ErrorIs(t, err, ErrConflictingOverlap)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMergeDisjoint(t *testing.T) {
	a := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(1, 1))
	b := mustFloatSeq(t, carrier.Linear, true, true, fi(5, 5), fi(6, 6))

	m, err := Merge[float64](b, a)
	assert.Nil(t, err)

	ss, ok := m.(*TSequenceSet[float64])
	assert.True(t, ok)
	assert.Equal(t, 2, ss.NumSequences())
	assert.Equal(t, fi(0, 0), ss.StartInstant())
}

func TestMergeInstants(t *testing.T) {
	c := carrier.Float{}

	m, err := Merge[float64](NewTInstant[float64](c, 1, 0), NewTInstant[float64](c, 1, 0))
	assert.Nil(t, err)
	assert.Equal(t, SubtypeInstant, m.Subtype())

	m, err = Merge[float64](NewTInstant[float64](c, 1, 0), NewTInstant[float64](c, 2, 5))
	assert.Nil(t, err)
	assert.Equal(t, SubtypeSequenceSet, m.Subtype())
	assert.Equal(t, 2, m.NumInstants())

	_, err = Merge[float64](NewTInstant[float64](c, 1, 0), NewTInstant[float64](c, 2, 0))
	assert.ErrorIs(t, err, ErrConflictingOverlap)

	seq := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(10, 10))

	m, err = Merge[float64](NewTInstant[float64](c, 5, 5), seq)
	assert.Nil(t, err)
	assert.True(t, Equal[float64](seq, m))

	_, err = Merge[float64](NewTInstant[float64](c, 6, 5), seq)
	assert.ErrorIs(t, err, ErrConflictingOverlap)
}

func TestMergeNil(t *testing.T) {
	a := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(1, 1))

	_, err := Merge[float64](nil, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	m, err := Merge[float64](a, nil)
	assert.Nil(t, err)
	assert.True(t, Equal[float64](a, m))

	m, err = Merge[float64](nil, a)
	assert.Nil(t, err)
	assert.True(t, Equal[float64](a, m))

	_, err = MergeArray[float64]([]Temporal[float64]{nil, nil})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestMergeArray(t *testing.T) {
	c := carrier.Float{}

	m, err := MergeArray([]Temporal[float64]{
		NewTInstant[float64](c, 3, 3),
		mustFloatSeq(t, carrier.Linear, true, true, fi(1, 1), fi(2, 2)),
		mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(1, 1)),
	})
	assert.Nil(t, err)

	ss, ok := m.(*TSequenceSet[float64])
	assert.True(t, ok)
	assert.Equal(t, 2, ss.NumSequences())
	assert.Equal(t, []Instant[float64]{fi(0, 0), fi(2, 2)}, ss.SequenceN(0).Instants())
	assert.Equal(t, fi(3, 3), ss.EndInstant())

	_, err = MergeArray([]Temporal[float64]{
		mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(1, 1)),
		mustFloatSeq(t, carrier.Step, true, true, fi(1, 5), fi(2, 6)),
	})
	assert.ErrorIs(t, err, ErrInvalidInterp)
}

func TestMergeStep(t *testing.T) {
	a := mustIntSeq(t, true, false, ii(1, 0), ii(1, 5))
	b := mustIntSeq(t, true, true, ii(2, 5), ii(2, 10))

	m, err := Merge[int64](a, b)
	assert.Nil(t, err)
	assert.Equal(t, SubtypeSequence, m.Subtype())
	assert.Equal(t, []Instant[int64]{ii(1, 0), ii(2, 5), ii(2, 10)}, m.Instants())

	v, ok := m.ValueAt(7)
	assert.True(t, ok)
	assert.EqualValues(t, 2, v)
}
