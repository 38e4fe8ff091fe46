package fsstorage

import (
	"context"
	"os"
	"path"
	"testing"
	"time"

	"github.com/sgostarter/i/commerr"
	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/recorder"
	"github.com/sgostarter/libtemporal/temporal"
	"github.com/stretchr/testify/assert"
)

func TestStorage(t *testing.T) {
	utRoot := path.Join(t.TempDir(), "streams")

	s, err := NewStorage(utRoot)
	assert.Nil(t, err)

	ctx := context.Background()

	keys, err := s.Keys(ctx)
	assert.Nil(t, err)
	assert.Empty(t, keys)

	_, err = s.Load(ctx, "a")
	assert.True(t, recorder.IsNoStream(err))

	assert.Nil(t, s.Save(ctx, "b", []byte{1, 2}))
	assert.Nil(t, s.Save(ctx, "a", []byte{3}))
	assert.Nil(t, os.WriteFile(path.Join(utRoot, "notes.txt"), []byte("x"), 0600))

	d, err := s.Load(ctx, "b")
	assert.Nil(t, err)
	assert.Equal(t, []byte{1, 2}, d)

	keys, err = s.Keys(ctx)
	assert.Nil(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	assert.Nil(t, s.Remove(ctx, "b"))
	assert.Nil(t, s.Remove(ctx, "b"))

	keys, _ = s.Keys(ctx)
	assert.Equal(t, []string{"a"}, keys)

	assert.ErrorIs(t, s.Save(ctx, "../escape", []byte{1}), commerr.ErrInvalidArgument)
}

func TestRecorderOnFS(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	assert.Nil(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := recorder.Config{MaxGap: time.Minute, BBox: true}

	r := recorder.NewRecorder[carrier.Point](carrier.PointCarrier{SRID: 4326}, cfg, s, nil, nil)

	for i := 0; i < 5; i++ {
		assert.Nil(t, r.Append("car", carrier.Point{X: float64(i), Y: float64(i * i)}, base.Add(time.Duration(i)*time.Second)))
	}

	assert.Nil(t, r.Append("car", carrier.Point{X: 9, Y: 9}, base.Add(time.Hour)))
	assert.Nil(t, r.Flush(context.Background()))

	loaded := recorder.NewRecorder[carrier.Point](carrier.PointCarrier{SRID: 4326}, cfg, s, nil, nil)

	want, err := r.Snapshot("car")
	assert.Nil(t, err)

	got, err := loaded.Snapshot("car")
	assert.Nil(t, err)
	assert.True(t, temporal.Equal(want, got))
	assert.Equal(t, temporal.SubtypeSequenceSet, got.Subtype())
}
