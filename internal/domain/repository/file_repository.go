package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
)

// FileRepository 파일 엔티티 저장소 인터페이스
type FileRepository interface {
	// Create 새 파일 레코드 생성
	Create(ctx context.Context, file *entity.File) error

	// FindByID ID로 파일 조회, 없으면 nil
	FindByID(ctx context.Context, id uuid.UUID) (*entity.File, error)

	// FindByIDs 여러 파일 조회, 입력 순서를 유지하고 없는 ID는 건너뜁니다
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.File, error)

	// ListTemporaryBefore 기준 시각 이전에 마지막으로 변경된 임시 파일 목록
	ListTemporaryBefore(ctx context.Context, before time.Time, limit int) ([]*entity.File, error)

	// Delete 파일 레코드 삭제
	Delete(ctx context.Context, id uuid.UUID) error
}
