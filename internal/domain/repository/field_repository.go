package repository

import (
	"context"

	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
)

// FieldRepository 필드 정의 조회 인터페이스
type FieldRepository interface {
	// GetFieldDefinitions 엔티티 타입/번들의 필드 정의를 필드 이름으로 조회
	// 알 수 없는 타입/번들은 빈 맵을 반환합니다.
	GetFieldDefinitions(ctx context.Context, entityTypeID, bundle string) (map[string]*entity.FieldDefinition, error)
}
