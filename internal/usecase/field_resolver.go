package usecase

import (
	"context"

	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
	"github.com/wekeepgrowing/semo-upload/internal/domain/repository"
)

// FieldResolver 업로드 대상 필드 정의를 찾고 파일 필드인지 확인합니다
type FieldResolver struct {
	fields repository.FieldRepository
}

// NewFieldResolver FieldResolver 생성
func NewFieldResolver(fields repository.FieldRepository) *FieldResolver {
	return &FieldResolver{fields: fields}
}

// Resolve 필드 정의 조회
// 존재하지 않으면 404, 파일 참조 필드가 아니면 403 에러를 반환합니다.
func (r *FieldResolver) Resolve(ctx context.Context, entityTypeID, bundle, fieldName string) (*entity.FieldDefinition, error) {
	definitions, err := r.fields.GetFieldDefinitions(ctx, entityTypeID, bundle)
	if err != nil {
		return nil, err
	}

	field, ok := definitions[fieldName]
	if !ok || field == nil {
		return nil, newFieldNotFoundError(fieldName)
	}

	if !field.IsFileReference() {
		return nil, newInvalidFieldKindError(fieldName)
	}

	return field, nil
}
