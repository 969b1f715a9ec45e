package state

import (
	"context"
	"errors"
	"sort"

	"github.com/go-redis/redis/v8"
)

type RedisConfig struct {
	Host     string `json:"redisHost" mapstructure:"host"`
	Password string `json:"redisPassword" mapstructure:"password"`
	DB       int    `json:"redisDB" mapstructure:"db"`
	// Namespace is prepended to every key so several wallets can share one database.
	Namespace string `json:"namespace" mapstructure:"namespace"`
}

type RedisStore struct {
	conn      *redis.Client
	namespace string
}

var (
	_ KVStore   = (*RedisStore)(nil)
	_ Sequencer = (*RedisStore)(nil)
)

func NewRedisStore(cfg RedisConfig) *RedisStore {
	conn := redis.NewClient(&redis.Options{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisStore{conn: conn, namespace: cfg.Namespace}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.conn.Close()
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.conn.Get(ctx, r.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return v, err
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return r.conn.Set(ctx, r.namespace+key, value, 0).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.conn.Del(ctx, r.namespace+key).Err()
}

func (r *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := r.conn.Scan(ctx, 0, r.namespace+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(r.namespace):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *RedisStore) Incr(ctx context.Context, key string) (uint64, error) {
	v, err := r.conn.Incr(ctx, r.namespace+key).Result()
	if err != nil {
		return 0, err
	}
	return uint64(v), nil
}
