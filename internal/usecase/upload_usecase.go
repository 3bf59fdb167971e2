package usecase

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/semo-upload/internal/domain/dto"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
	"github.com/wekeepgrowing/semo-upload/internal/domain/repository"
	"go.uber.org/zap"
)

// UploadRequest 업로드 요청 입력
type UploadRequest struct {
	Account            *entity.Account
	EntityTypeID       string
	Bundle             string
	FieldName          string
	ContentDisposition string
	// Body 요청 본문. 유스케이스가 모든 경로에서 닫습니다.
	Body io.ReadCloser
}

// UploadUseCase 파일 필드 업로드 처리
type UploadUseCase struct {
	fields    *FieldResolver
	access    AccessChecker
	uploader  FileUploader
	entities  repository.EntityRepository
	validator *EntityValidator
	resources *ResourceService
	publisher EventPublisher
	logger    *zap.Logger
}

// NewUploadUseCase UploadUseCase 생성
func NewUploadUseCase(
	repos *repository.Repositories,
	access AccessChecker,
	uploader FileUploader,
	resources *ResourceService,
	publisher EventPublisher,
	logger *zap.Logger,
) *UploadUseCase {
	if publisher == nil {
		publisher = NopEventPublisher{}
	}
	return &UploadUseCase{
		fields:    NewFieldResolver(repos.Field),
		access:    access,
		uploader:  uploader,
		entities:  repos.Entity,
		validator: NewEntityValidator(repos.File),
		resources: resources,
		publisher: publisher,
		logger:    logger,
	}
}

// UploadForNewResource 엔티티 없이 파일만 생성합니다 (201 응답용 문서 반환)
func (uc *UploadUseCase) UploadForNewResource(ctx context.Context, req UploadRequest) (*dto.Document, error) {
	defer closeBody(req.Body)

	field, err := uc.fields.Resolve(ctx, req.EntityTypeID, req.Bundle, req.FieldName)
	if err != nil {
		return nil, err
	}

	if err := uc.checkAccess(ctx, req.Account, field, nil); err != nil {
		return nil, err
	}

	file, err := uc.upload(ctx, field, req)
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, field, file, nil)

	return uc.resources.NewFileDocument(file), nil
}

// UploadForExistingResource 기존 엔티티의 필드에 파일을 첨부하고 저장합니다
// 응답은 관련 리소스 조회 경로와 같은 문서입니다.
func (uc *UploadUseCase) UploadForExistingResource(ctx context.Context, req UploadRequest, entityID uuid.UUID) (*dto.Document, error) {
	defer closeBody(req.Body)

	target, err := uc.entities.FindByID(ctx, req.EntityTypeID, req.Bundle, entityID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, newEntityNotFoundError()
	}

	field, err := uc.fields.Resolve(ctx, req.EntityTypeID, req.Bundle, req.FieldName)
	if err != nil {
		return nil, err
	}

	if err := uc.checkAccess(ctx, req.Account, field, target); err != nil {
		return nil, err
	}

	file, err := uc.upload(ctx, field, req)
	if err != nil {
		return nil, err
	}

	Attach(target, field, file)

	violations, err := uc.validator.ValidateField(ctx, target, field)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, newUnprocessableError(entityValidationPrefix, violations.String())
	}

	// 저장 실패는 그대로 반환
	if err := uc.entities.Save(ctx, target); err != nil {
		return nil, err
	}

	uc.logger.Info("파일 첨부 완료",
		zap.String("entity_id", target.ID.String()),
		zap.String("resource_type", target.ResourceType()),
		zap.String("field", field.Name),
		zap.String("file_id", file.ID.String()),
		zap.Int("field_items", len(target.FieldItems(field.Name))),
	)

	uc.publish(ctx, field, file, &target.ID)

	return uc.resources.RelatedDocument(ctx, target, field.Name)
}

func (uc *UploadUseCase) checkAccess(ctx context.Context, account *entity.Account, field *entity.FieldDefinition, target *entity.Entity) error {
	if account == nil {
		account = entity.AnonymousAccount()
	}

	result, err := uc.access.CheckUploadAccess(ctx, account, field, target)
	if err != nil {
		return err
	}
	if !result.Allowed {
		uc.logger.Warn("업로드 권한 거부",
			zap.String("account_id", account.ID),
			zap.String("resource_type", field.ResourceType()),
			zap.String("field", field.Name),
			zap.String("reason", result.Reason),
		)
		return newPermissionDeniedError(result.Reason)
	}
	return nil
}

// upload 파일명 파싱 후 본문을 업로더로 전달합니다
func (uc *UploadUseCase) upload(ctx context.Context, field *entity.FieldDefinition, req UploadRequest) (*entity.File, error) {
	filename, err := ParseContentDispositionFilename(req.ContentDisposition)
	if err != nil {
		return nil, err
	}

	account := req.Account
	if account == nil {
		account = entity.AnonymousAccount()
	}

	result, err := uc.uploader.HandleFileUploadForField(ctx, field, filename, req.Body, account)
	if err != nil {
		return nil, err
	}

	file, ok := result.File()
	if !ok {
		return nil, newUnprocessableError(fileValidationPrefix, result.Violations().String())
	}
	return file, nil
}

// publish 이벤트 발행 실패는 요청을 실패시키지 않습니다
func (uc *UploadUseCase) publish(ctx context.Context, field *entity.FieldDefinition, file *entity.File, entityID *uuid.UUID) {
	event := UploadEvent{
		Type:         UploadEventType,
		FileID:       file.ID,
		Filename:     file.Filename,
		FileSize:     file.FileSize,
		FileMime:     file.FileMime,
		EntityTypeID: field.EntityTypeID,
		Bundle:       field.Bundle,
		Field:        field.Name,
		EntityID:     entityID,
		OwnerID:      file.OwnerID,
		OccurredAt:   time.Now().UTC(),
	}
	if err := uc.publisher.PublishUploaded(ctx, event); err != nil {
		uc.logger.Warn("업로드 이벤트 발행 실패", zap.Error(err), zap.String("file_id", file.ID.String()))
	}
}

func closeBody(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
