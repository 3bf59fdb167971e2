package messaging

import (
	"context"
	"fmt"

	"github.com/wekeepgrowing/semo-upload/internal/usecase"
	"github.com/wekeepgrowing/semo-upload/pkg/messaging"
	"go.uber.org/zap"
)

// RedisUploadEventPublisher 업로드 이벤트를 Redis 채널로 발행합니다
type RedisUploadEventPublisher struct {
	client  messaging.RedisClient
	channel string
	logger  *zap.Logger
}

// NewRedisUploadEventPublisher RedisUploadEventPublisher 생성
func NewRedisUploadEventPublisher(client messaging.RedisClient, channel string, logger *zap.Logger) *RedisUploadEventPublisher {
	return &RedisUploadEventPublisher{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

func (p *RedisUploadEventPublisher) PublishUploaded(ctx context.Context, event usecase.UploadEvent) error {
	if err := p.client.Publish(ctx, p.channel, event); err != nil {
		return fmt.Errorf("failed to publish upload event: %w", err)
	}
	p.logger.Debug("업로드 이벤트 발행",
		zap.String("channel", p.channel),
		zap.String("file_id", event.FileID.String()),
	)
	return nil
}
