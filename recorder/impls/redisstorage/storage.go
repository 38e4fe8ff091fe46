package redisstorage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"
	"github.com/sgostarter/libtemporal/recorder"
)

// NewStorage keeps all streams as fields of one redis hash.
func NewStorage(redisCli *redis.Client, redisKeyPre string) *Storage {
	return &Storage{
		redisCli:    redisCli,
		redisKeyPre: redisKeyPre,
	}
}

type Storage struct {
	redisCli    *redis.Client
	redisKeyPre string
}

func (s *Storage) redisKey() string {
	redisKey := "temporal:streams"
	if s.redisKeyPre != "" {
		redisKey = s.redisKeyPre + ":" + redisKey
	}

	return redisKey
}

func (s *Storage) Load(ctx context.Context, key string) (d []byte, err error) {
	d, err = s.redisCli.HGet(ctx, s.redisKey(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		err = fmt.Errorf("%w: %s", recorder.ErrNoStream, key)
	}

	return
}

func (s *Storage) Save(ctx context.Context, key string, d []byte) error {
	return s.redisCli.HSet(ctx, s.redisKey(), key, d).Err()
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	return s.redisCli.HDel(ctx, s.redisKey(), key).Err()
}

func (s *Storage) Keys(ctx context.Context) (keys []string, err error) {
	keys, err = s.redisCli.HKeys(ctx, s.redisKey()).Result()
	if err != nil {
		return
	}

	sort.Strings(keys)

	return
}
