package entity

import (
	"time"

	"github.com/google/uuid"
)

// FieldItem 파일 참조 필드의 값 하나
type FieldItem struct {
	TargetID uuid.UUID
}

// Entity 파일이 첨부되는 콘텐츠 엔티티
type Entity struct {
	ID           uuid.UUID
	EntityTypeID string
	Bundle       string
	Label        string
	OwnerID      string
	Attributes   map[string]interface{}
	Fields       map[string][]FieldItem
	Created      time.Time
	Changed      time.Time
}

// ResourceType JSON:API 리소스 타입 이름
func (e *Entity) ResourceType() string {
	return ResourceTypeName(e.EntityTypeID, e.Bundle)
}

// FieldItems 필드 값 목록의 복사본을 반환합니다
func (e *Entity) FieldItems(name string) []FieldItem {
	items := e.Fields[name]
	out := make([]FieldItem, len(items))
	copy(out, items)
	return out
}

// SetFieldItems 필드 값을 교체합니다
func (e *Entity) SetFieldItems(name string, items []FieldItem) {
	if e.Fields == nil {
		e.Fields = make(map[string][]FieldItem)
	}
	e.Fields[name] = items
}

// AppendFieldItem 필드 값 목록 끝에 추가합니다
func (e *Entity) AppendFieldItem(name string, item FieldItem) {
	e.SetFieldItems(name, append(e.FieldItems(name), item))
}

// IsOwnedBy 소유자 확인
func (e *Entity) IsOwnedBy(accountID string) bool {
	return accountID != "" && e.OwnerID == accountID
}
