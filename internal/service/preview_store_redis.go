package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/classfit/backend/internal/domain"
)

const redisPreviewKeyPrefix = "import:preview:"

// RedisPreviewStore keeps previews in Redis so several API instances can
// share one staging area. Expiry rides on Redis TTLs; no sweep is needed.
type RedisPreviewStore struct {
	client *redis.Client
}

func NewRedisPreviewStore(client *redis.Client) *RedisPreviewStore {
	return &RedisPreviewStore{client: client}
}

func previewKey(id string) string {
	return redisPreviewKeyPrefix + id
}

func (s *RedisPreviewStore) Put(ctx context.Context, preview *domain.ImportPreview) error {
	ttl := time.Until(preview.ExpiresAt)
	if ttl <= 0 {
		return nil // already expired, nothing to store
	}

	payload, err := json.Marshal(preview)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}

	ok, err := s.client.SetNX(ctx, previewKey(preview.ID), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("store preview: %w", err)
	}
	if !ok {
		return ErrPreviewConflict
	}
	return nil
}

func (s *RedisPreviewStore) Get(ctx context.Context, id string) (*domain.ImportPreview, error) {
	payload, err := s.client.Get(ctx, previewKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrPreviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load preview: %w", err)
	}
	return decodePreview(payload)
}

// Take runs GET+DEL in one MULTI/EXEC block so two racing consumers cannot
// both see the preview.
func (s *RedisPreviewStore) Take(ctx context.Context, id string) (*domain.ImportPreview, error) {
	var get *redis.StringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.Get(ctx, previewKey(id))
		pipe.Del(ctx, previewKey(id))
		return nil
	})
	if err == redis.Nil || get.Err() == redis.Nil {
		return nil, ErrPreviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("take preview: %w", err)
	}

	payload, err := get.Bytes()
	if err != nil {
		return nil, fmt.Errorf("take preview: %w", err)
	}
	return decodePreview(payload)
}

func (s *RedisPreviewStore) Remove(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, previewKey(id)).Err(); err != nil {
		return fmt.Errorf("remove preview: %w", err)
	}
	return nil
}

func decodePreview(payload []byte) (*domain.ImportPreview, error) {
	var preview domain.ImportPreview
	if err := json.Unmarshal(payload, &preview); err != nil {
		return nil, fmt.Errorf("decode preview: %w", err)
	}
	return &preview, nil
}
