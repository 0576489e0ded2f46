package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// keyPrefix はセッションキーの名前空間。
const keyPrefix = "session:"

// RedisStore はRedisを使用したセッションストア。
// SETEXによりTTL経過後はRedis側でキーが消え、明示的な削除処理を持たない。
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore はRedisStoreを生成する。
// redisURLは接続URL（例: "redis://localhost:6379/0"）。
// 生成時にPINGで到達性を確認し、接続できない場合はエラーを返す。
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Create はセッションIDを生成し、userIDをTTL付きで保存する。
func (s *RedisStore) Create(ctx context.Context, userID string) (string, error) {
	sessionID := uuid.New().String()

	if err := s.client.SetEx(ctx, keyPrefix+sessionID, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return sessionID, nil
}

// Restore はセッションIDに紐付くuserIDを返す。
// キーが存在しない場合（期限切れ・未発行とも）はErrNotFoundを返す。
func (s *RedisStore) Restore(ctx context.Context, sessionID string) (string, error) {
	userID, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}

	return userID, nil
}

// Ping はヘルスチェック用にRedisへの到達性を確認する。
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close はRedisクライアントを閉じる。
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// compile-time interface check
var _ Store = (*RedisStore)(nil)
