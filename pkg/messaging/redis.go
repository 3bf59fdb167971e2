package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient Redis 클라이언트 인터페이스
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Close() error
}

// Options Redis 연결 옵션
type Options struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// redisClient Redis 클라이언트 구현체
type redisClient struct {
	client redis.UniversalClient
}

// NewRedisClient Redis 클라이언트 생성
func NewRedisClient(opts Options) (RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})

	// Redis 연결 테스트
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redis 연결 실패: %w", err)
	}

	return &redisClient{client: client}, nil
}

// NewRedisClientFrom 이미 생성된 go-redis 클라이언트를 감쌉니다.
func NewRedisClientFrom(client redis.UniversalClient) RedisClient {
	return &redisClient{client: client}
}

// Publish 메시지를 JSON으로 직렬화하여 발행
func (r *redisClient) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("메시지 직렬화 실패: %w", err)
	}

	return r.client.Publish(ctx, channel, payload).Err()
}

// Close Redis 클라이언트 종료
func (r *redisClient) Close() error {
	return r.client.Close()
}
