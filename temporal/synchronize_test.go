package temporal

import (
	"testing"

	"github.com/sgostarter/libtemporal/carrier"
	"github.com/stretchr/testify/assert"
)

func TestSynchronizeCrossings(t *testing.T) {
	a := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(10, 10))
	b := mustFloatSeq(t, carrier.Linear, true, true, fi(10, 0), fi(0, 10))

	x, y, ok := Synchronize[float64](a, b, true)
	assert.True(t, ok)
	assert.Equal(t, []Instant[float64]{fi(0, 0), fi(5, 5), fi(10, 10)}, x.Instants())
	assert.Equal(t, []Instant[float64]{fi(10, 0), fi(5, 5), fi(0, 10)}, y.Instants())

	y2, x2, ok := Synchronize[float64](b, a, true)
	assert.True(t, ok)
	assert.True(t, Equal(x, x2))
	assert.True(t, Equal(y, y2))

	x, y, ok = Synchronize[float64](a, b, false)
	assert.True(t, ok)
	assert.Equal(t, x.Timestamps(), y.Timestamps())
	assert.Equal(t, 2, x.NumInstants())
}

func TestSynchronizeStepLeftLimit(t *testing.T) {
	a := mustFloatSeq(t, carrier.Step, true, true, fi(1, 0), fi(3, 10))
	b := mustFloatSeq(t, carrier.Linear, true, false, fi(0, 0), fi(10, 10))

	x, y, ok := Synchronize[float64](a, b, true)
	assert.True(t, ok)

	xs := x.(*TSequence[float64])
	assert.False(t, xs.UpperInc())
	assert.Equal(t, []Instant[float64]{fi(1, 0), fi(1, 10)}, xs.Instants())
	assert.Equal(t, []Instant[float64]{fi(0, 0), fi(10, 10)}, y.Instants())

	a = mustFloatSeq(t, carrier.Step, true, false, fi(1, 0), fi(2, 5), fi(2, 10))
	b = mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(10, 10))

	x, y, ok = Synchronize[float64](a, b, false)
	assert.True(t, ok)
	assert.Equal(t, []Instant[float64]{fi(1, 0), fi(2, 5), fi(2, 10)}, x.Instants())
	assert.Equal(t, []Instant[float64]{fi(0, 0), fi(5, 5), fi(10, 10)}, y.Instants())
}

func TestSynchronizeDisjoint(t *testing.T) {
	a := mustFloatSeq(t, carrier.Linear, true, false, fi(0, 0), fi(5, 5))
	b := mustFloatSeq(t, carrier.Linear, true, true, fi(5, 5), fi(10, 10))

	_, _, ok := Synchronize[float64](a, b, true)
	assert.False(t, ok)

	_, _, ok = Synchronize[float64](NewTInstant[float64](carrier.Float{}, 1, 20), b, true)
	assert.False(t, ok)
}

func TestSynchronizeSubtypes(t *testing.T) {
	c := carrier.Float{}
	line := mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(20, 20))

	ss, err := NewSequenceSet[float64](c, []*TSequence[float64]{
		mustFloatSeq(t, carrier.Linear, true, true, fi(0, 0), fi(5, 5)),
		mustFloatSeq(t, carrier.Linear, true, true, fi(10, 10), fi(15, 15)),
	})
	assert.Nil(t, err)

	x, y, ok := Synchronize[float64](line, ss, true)
	assert.True(t, ok)
	assert.Equal(t, SubtypeSequenceSet, x.Subtype())
	assert.Equal(t, SubtypeSequenceSet, y.Subtype())
	assert.Equal(t, 2, x.(*TSequenceSet[float64]).NumSequences())
	assert.Equal(t, y.Timestamps(), x.Timestamps())
	assert.True(t, Equal(x, y))

	ti := NewTInstant[float64](c, 7, 3)

	x, y, ok = Synchronize[float64](ti, line, true)
	assert.True(t, ok)
	assert.Equal(t, SubtypeInstant, y.Subtype())
	assert.Equal(t, fi(7, 3), x.StartInstant())
	assert.Equal(t, fi(3, 3), y.StartInstant())

	x, y, ok = Synchronize[float64](line, ti, true)
	assert.True(t, ok)
	assert.Equal(t, fi(3, 3), x.StartInstant())
	assert.Equal(t, fi(7, 3), y.StartInstant())

	_, _, ok = Synchronize[float64](ti, ss, true)
	assert.True(t, ok)

	_, _, ok = Synchronize[float64](NewTInstant[float64](c, 7, 7), ss, true)
	assert.False(t, ok)
}

func TestSynchronizePoints(t *testing.T) {
	c := carrier.PointCarrier{}
	a, err := NewSequence[carrier.Point](c, []Instant[carrier.Point]{
		{Value: carrier.Point{X: 0, Y: 0}, T: 0},
		{Value: carrier.Point{X: 10, Y: 10}, T: 10},
	}, true, true, carrier.Linear)
	assert.Nil(t, err)

	b, err := NewSequence[carrier.Point](c, []Instant[carrier.Point]{
		{Value: carrier.Point{X: 10, Y: 10}, T: 0},
		{Value: carrier.Point{X: 0, Y: 0}, T: 10},
	}, true, true, carrier.Linear)
	assert.Nil(t, err)

	x, y, ok := Synchronize[carrier.Point](a, b, true)
	assert.True(t, ok)
	assert.Equal(t, 3, x.NumInstants())
	assert.Equal(t, carrier.Point{X: 5, Y: 5}, x.InstantN(1).Value)
	assert.Equal(t, x.InstantN(1), y.InstantN(1))
}
