package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
)

// EntityRepository 콘텐츠 엔티티 저장소 인터페이스
type EntityRepository interface {
	// FindByID 엔티티 조회, 없거나 타입/번들이 다르면 nil
	FindByID(ctx context.Context, entityTypeID, bundle string, id uuid.UUID) (*entity.Entity, error)

	// Save 엔티티와 필드 값을 하나의 트랜잭션으로 저장
	// 참조된 임시 파일은 영구 상태로 바뀝니다.
	Save(ctx context.Context, e *entity.Entity) error
}
