package syncstore

import (
	"context"
	"encoding/json"
	"errors"

	redis "github.com/redis/go-redis/v9"
)

// RedisStore keeps one hash per collection under "<namespace>:<collection>".
type RedisStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisStore(addr string, password string, db int, namespace string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if namespace == "" {
		namespace = "catering"
	}

	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(collection string) string {
	return s.namespace + ":" + collection
}

func (s *RedisStore) Upsert(ctx context.Context, collection string, id string, payload []byte) error {
	return s.client.HSet(ctx, s.key(collection), id, payload).Err()
}

func (s *RedisStore) Pull(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	values, err := s.client.HGetAll(ctx, s.key(collection)).Result()
	if errors.Is(err, redis.Nil) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := make(map[string]json.RawMessage, len(values))
	for id, raw := range values {
		if !json.Valid([]byte(raw)) {
			continue
		}
		out[id] = json.RawMessage(raw)
	}
	return out, nil
}
