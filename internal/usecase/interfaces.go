package usecase

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
)

// AccessChecker 업로드 접근 권한 검사
// target이 nil이면 새 리소스 생성에 대한 검사입니다.
type AccessChecker interface {
	CheckUploadAccess(ctx context.Context, account *entity.Account, field *entity.FieldDefinition, target *entity.Entity) (entity.AccessResult, error)
}

// FileUploader 요청 본문을 스트리밍으로 저장하고 필드 규칙으로 검증합니다
// 검증 실패는 error가 아니라 UploadResult의 위반 목록으로 돌려줍니다.
type FileUploader interface {
	HandleFileUploadForField(ctx context.Context, field *entity.FieldDefinition, filename string, body io.Reader, account *entity.Account) (entity.UploadResult, error)
}

// FileStorage 저장된 파일 객체 관리
type FileStorage interface {
	// PublicURL 파일 URI에 대한 외부 접근 URL
	PublicURL(uri string) string
	// Delete 파일 URI에 해당하는 객체 삭제, 없는 객체는 에러가 아닙니다
	Delete(ctx context.Context, uri string) error
}

// EventPublisher 업로드 이벤트 발행
type EventPublisher interface {
	PublishUploaded(ctx context.Context, event UploadEvent) error
}

// UploadEvent 업로드 완료 이벤트
type UploadEvent struct {
	Type         string     `json:"type"`
	FileID       uuid.UUID  `json:"file_id"`
	Filename     string     `json:"filename"`
	FileSize     int64      `json:"file_size"`
	FileMime     string     `json:"file_mime"`
	EntityTypeID string     `json:"entity_type"`
	Bundle       string     `json:"bundle"`
	Field        string     `json:"field"`
	EntityID     *uuid.UUID `json:"entity_id,omitempty"`
	OwnerID      string     `json:"owner_id"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

// UploadEventType 업로드 완료 이벤트 타입
const UploadEventType = "file.uploaded"

// NopEventPublisher 아무것도 발행하지 않는 구현체
type NopEventPublisher struct{}

func (NopEventPublisher) PublishUploaded(context.Context, UploadEvent) error { return nil }
