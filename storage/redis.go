package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"greenhouse-forecaster/models"
)

const keyPrefix = "forecast:"

// RedisStore keeps one JSON forecast record per channel key. A record is
// written with a single SET, so readers see either the old or the new one.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// NewRedisStore wraps client. A zero ttl keeps records until replaced.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

func (rs *RedisStore) Save(ctx context.Context, ch models.Channel, rec models.ForecastRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return rs.client.Set(ctx, redisKey(ch), data, rs.ttl).Err()
}

func (rs *RedisStore) Load(ctx context.Context, ch models.Channel) (models.ForecastRecord, error) {
	val, err := rs.client.Get(ctx, redisKey(ch)).Bytes()
	if err == redis.Nil {
		return models.ForecastRecord{}, models.ErrArtifactNotFound
	}
	if err != nil {
		return models.ForecastRecord{}, err
	}

	var rec models.ForecastRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return models.ForecastRecord{}, fmt.Errorf("%w: %s: %v", models.ErrArtifactCorrupt, redisKey(ch), err)
	}
	return rec, nil
}

func redisKey(ch models.Channel) string {
	if ch.Artifact != "" {
		return ch.Artifact
	}
	return keyPrefix + ch.ID
}
