package repository

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/abrezinsky/pollboard/internal/models"
)

const redisKeyPrefix = "pollboard:group:"

// RedisRepository stores each group document as a single string key
type RedisRepository struct {
	client *redis.Client
}

// NewRedis connects to the redis server at uri (redis://host:port/db)
func NewRedis(ctx context.Context, uri string) (*RedisRepository, error) {
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisRepository{client: client}, nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func redisDocumentKey(groupID string) string {
	return redisKeyPrefix + groupID + ":document"
}

func (r *RedisRepository) LoadDocument(ctx context.Context, groupID string) (*models.GroupData, error) {
	body, err := r.client.Get(ctx, redisDocumentKey(groupID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

func (r *RedisRepository) SaveDocument(ctx context.Context, groupID string, doc *models.GroupData) error {
	body, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisDocumentKey(groupID), body, 0).Err()
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}
