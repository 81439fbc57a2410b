package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/grade"
)

const keyPrefix = "releve:"

// RedisCache stores computed period grades as JSON documents.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ grade.Cache = (*RedisCache)(nil) // interface compliance check

// NewRedisCache connects to the configured Redis server.
func NewRedisCache(ctx context.Context, conf core.RedisConfig) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &RedisCache{rdb: rdb, ttl: conf.TTL}, nil
}

func (c *RedisCache) GetPeriodGrades(ctx context.Context, key string) (grade.PeriodGrades, error) {
	data, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return grade.PeriodGrades{}, grade.ErrNotCached
	}
	if err != nil {
		return grade.PeriodGrades{}, errors.Wrap(err, "reading cached grades")
	}
	return decode(data)
}

func (c *RedisCache) SetPeriodGrades(ctx context.Context, key string, pg grade.PeriodGrades) error {
	data, err := encode(pg)
	if err != nil {
		return err
	}
	return errors.Wrap(c.rdb.Set(ctx, keyPrefix+key, data, c.ttl).Err(), "caching grades")
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

func encode(pg grade.PeriodGrades) ([]byte, error) {
	pg.Stale = false
	data, err := json.Marshal(pg)
	return data, errors.Wrap(err, "encoding grades")
}

func decode(data []byte) (grade.PeriodGrades, error) {
	var pg grade.PeriodGrades
	if err := json.Unmarshal(data, &pg); err != nil {
		return grade.PeriodGrades{}, errors.Wrap(err, "decoding cached grades")
	}
	return pg, nil
}
