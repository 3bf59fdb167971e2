package usecase

import (
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
)

// Attach 파일을 엔티티 필드에 첨부합니다
// 단일 값 필드는 기존 값을 교체하고, 다중 값 필드는 순서를 유지한 채 끝에 추가합니다.
func Attach(target *entity.Entity, field *entity.FieldDefinition, file *entity.File) {
	item := entity.FieldItem{TargetID: file.ID}
	if field.IsSingle() {
		target.SetFieldItems(field.Name, []entity.FieldItem{item})
		return
	}
	target.AppendFieldItem(field.Name, item)
}
