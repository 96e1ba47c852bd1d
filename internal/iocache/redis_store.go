package iocache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/schema"
)

// redisOpTimeout bounds every single redis round trip.
const redisOpTimeout = 5 * time.Second

// Hash fields of one cached response.
const (
	fieldValue     = "value"
	fieldVersion   = "version"
	fieldTimestamp = "ts"
)

// RedisStore keeps provider responses as redis hashes under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ contract.CacheStore = &RedisStore{} // Compile-time check

// NewRedisStore connects to the redis URL and verifies the connection.
func NewRedisStore(prefix, connStr string) (*RedisStore, error) {
	opts, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w. Expected redis://[:password@]host:port/db", err)
	}
	return NewRedisStoreWithClient(prefix, redis.NewClient(opts))
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(prefix string, client *redis.Client) (*RedisStore, error) {
	if err := validateTableName(prefix); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (rs *RedisStore) key(k string) string {
	return rs.prefix + ":" + k
}

// Get retrieves a value by key. A missing key returns redis.Nil.
func (rs *RedisStore) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	vals, err := rs.client.HGetAll(ctx, rs.key(key)).Result()
	if err != nil {
		return nil, 0, 0, err
	}
	value, ok := vals[fieldValue]
	if !ok {
		return nil, 0, 0, redis.Nil
	}

	var version int
	var ts int64
	if _, err := fmt.Sscan(vals[fieldVersion], &version); err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache version for %s: %w", key, err)
	}
	if _, err := fmt.Sscan(vals[fieldTimestamp], &ts); err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache timestamp for %s: %w", key, err)
	}
	return []byte(value), version, ts, nil
}

// Set inserts or replaces a key/value pair.
func (rs *RedisStore) Set(key string, value []byte, version int, timestamp int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return rs.client.HSet(ctx, rs.key(key),
		fieldValue, value,
		fieldVersion, version,
		fieldTimestamp, timestamp,
	).Err()
}

// Delete removes a key. Deleting a missing key is not an error.
func (rs *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return rs.client.Del(ctx, rs.key(key)).Err()
}

// Close closes the client.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

// GetStatus scans the prefix and reports entry count, time range and payload size.
func (rs *RedisStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisBackend), Connected: true}

	ctx, cancel := context.WithTimeout(context.Background(), 4*redisOpTimeout)
	defer cancel()

	var oldest, last int64
	iter := rs.client.Scan(ctx, 0, rs.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		vals, err := rs.client.HMGet(ctx, iter.Val(), fieldValue, fieldTimestamp).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return status, fmt.Errorf("failed to read %s: %w", iter.Val(), err)
		}
		value, _ := vals[0].(string)
		tsStr, _ := vals[1].(string)
		var ts int64
		if _, err := fmt.Sscan(tsStr, &ts); err != nil {
			continue
		}

		status.TotalEntries++
		status.TableSizeBytes += int64(len(value))
		if oldest == 0 || ts < oldest {
			oldest = ts
		}
		if ts > last {
			last = ts
		}
	}
	if err := iter.Err(); err != nil {
		status.Connected = false
		return status, fmt.Errorf("failed to scan redis keys: %w", err)
	}

	if status.TotalEntries > 0 {
		status.OldestEntryTime = time.Unix(oldest, 0)
		status.LastEntryTime = time.Unix(last, 0)
	}
	return status, nil
}

// Clear deletes every key under the prefix and returns how many were removed.
func (rs *RedisStore) Clear() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*redisOpTimeout)
	defer cancel()

	removed := 0
	iter := rs.client.Scan(ctx, 0, rs.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := rs.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, err
		}
		removed += int(n)
	}
	return removed, iter.Err()
}
