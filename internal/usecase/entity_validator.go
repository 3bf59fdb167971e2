package usecase

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
	"github.com/wekeepgrowing/semo-upload/internal/domain/repository"
)

// fieldItemRule 필드 값 하나에 대한 형식 규칙
// 버전은 가리지 않으며 nil UUID는 ValidateField에서 따로 거부합니다.
type fieldItemRule struct {
	TargetID string `validate:"required,uuid"`
}

// EntityValidator 첨부 후 엔티티의 특정 필드만 다시 검증합니다
type EntityValidator struct {
	validate *validator.Validate
	files    repository.FileRepository
}

// NewEntityValidator EntityValidator 생성
func NewEntityValidator(files repository.FileRepository) *EntityValidator {
	return &EntityValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		files:    files,
	}
}

// ValidateField 필드 제약 조건(필수, 최대 개수, 참조 유효성)을 검사합니다
// 위반 목록이 비어 있으면 통과입니다. error는 저장소 조회 실패입니다.
func (v *EntityValidator) ValidateField(ctx context.Context, target *entity.Entity, field *entity.FieldDefinition) (entity.Violations, error) {
	var violations entity.Violations
	items := target.FieldItems(field.Name)
	label := field.Label
	if label == "" {
		label = field.Name
	}

	if field.Required {
		if err := v.validate.Var(items, "min=1"); err != nil {
			violations.Add(field.Name, fmt.Sprintf("%s field is required.", label))
		}
	}

	if field.IsBounded() {
		if err := v.validate.Var(items, fmt.Sprintf("max=%d", field.Cardinality)); err != nil {
			violations.Add(field.Name, fmt.Sprintf("%s: this field cannot hold more than %d values.", label, field.Cardinality))
		}
	}

	ids := make([]uuid.UUID, 0, len(items))
	malformed := make(map[int]struct{})
	for delta, item := range items {
		if err := v.validate.Struct(fieldItemRule{TargetID: item.TargetID.String()}); err != nil || item.TargetID == uuid.Nil {
			violations.Add(fmt.Sprintf("%s.%d.target_id", field.Name, delta), "This value should be a valid UUID.")
			malformed[delta] = struct{}{}
			continue
		}
		ids = append(ids, item.TargetID)
	}

	if len(ids) == 0 {
		return violations, nil
	}

	files, err := v.files.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[uuid.UUID]struct{}, len(files))
	for _, f := range files {
		found[f.ID] = struct{}{}
	}
	for delta, item := range items {
		if _, bad := malformed[delta]; bad {
			continue
		}
		if _, ok := found[item.TargetID]; ok {
			continue
		}
		violations.Add(fmt.Sprintf("%s.%d.target_id", field.Name, delta),
			fmt.Sprintf("The referenced entity (%s: %s) does not exist.", entity.TargetTypeFile, item.TargetID))
	}

	return violations, nil
}
