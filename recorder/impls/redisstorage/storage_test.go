package redisstorage

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sgostarter/libconfig/ut"
	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/recorder"
	"github.com/sgostarter/libtemporal/temporal"
	"github.com/stretchr/testify/assert"
)

func initRedis(dsn string) (cli *redis.Client, err error) {
	options, err := redis.ParseURL(dsn)
	if err != nil {
		return
	}

	cli = redis.NewClient(options)

	ctx, cf := context.WithTimeout(context.Background(), 3*time.Second)
	defer cf()

	err = cli.Ping(ctx).Err()

	return
}

func setup(t *testing.T) *Storage {
	cfg := ut.SetupUTConfig4Redis(t)

	redisCli, err := initRedis(cfg.RedisDSN)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	s := NewStorage(redisCli, "ut")
	redisCli.Del(context.Background(), s.redisKey())

	return s
}

func TestStorage(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, err := s.Load(ctx, "a")
	assert.True(t, recorder.IsNoStream(err))

	assert.Nil(t, s.Save(ctx, "b", []byte{1, 2}))
	assert.Nil(t, s.Save(ctx, "a", []byte{0}))

	d, err := s.Load(ctx, "b")
	assert.Nil(t, err)
	assert.Equal(t, []byte{1, 2}, d)

	keys, err := s.Keys(ctx)
	assert.Nil(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	assert.Nil(t, s.Remove(ctx, "a"))

	keys, _ = s.Keys(ctx)
	assert.Equal(t, []string{"b"}, keys)
}

func TestRecorderOnRedis(t *testing.T) {
	s := setup(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	r := recorder.NewRecorder[string](carrier.Text{}, recorder.Config{}, s, nil, nil)

	for i, state := range []string{"idle", "busy", "busy", "idle"} {
		assert.Nil(t, r.Append("job", state, base.Add(time.Duration(i)*time.Minute)))
	}

	assert.Nil(t, r.Flush(context.Background()))

	loaded := recorder.NewRecorder[string](carrier.Text{}, recorder.Config{}, s, nil, nil)

	want, _ := r.Snapshot("job")
	got, err := loaded.Snapshot("job")
	assert.Nil(t, err)
	assert.True(t, temporal.Equal(want, got))
	assert.Equal(t, []string{"busy", "idle"}, got.Values())
}
