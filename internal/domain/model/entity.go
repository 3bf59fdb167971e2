package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Entity 파일 필드를 가진 콘텐츠 엔티티
type Entity struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	EntityTypeID string            `gorm:"column:entity_type;size:64;not null;index:idx_entities_type_bundle,priority:1" json:"entity_type"`
	Bundle       string            `gorm:"size:64;not null;index:idx_entities_type_bundle,priority:2" json:"bundle"`
	Label        string            `gorm:"size:255" json:"label"`
	OwnerID      string            `gorm:"column:owner_id;size:64;index" json:"owner_id"`
	Attributes   datatypes.JSONMap `json:"attributes"`
	FieldItems   []EntityFieldItem `gorm:"foreignKey:EntityID;constraint:OnDelete:CASCADE" json:"field_items,omitempty"`
	CreatedAt    time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Entity) TableName() string {
	return "entities"
}

// EntityFieldItem 엔티티 필드의 참조 값 하나. delta는 필드 내 순서입니다.
type EntityFieldItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_entity_field_delta,priority:1" json:"entity_id"`
	FieldName string    `gorm:"size:64;not null;uniqueIndex:idx_entity_field_delta,priority:2" json:"field_name"`
	Delta     int       `gorm:"not null;uniqueIndex:idx_entity_field_delta,priority:3" json:"delta"`
	TargetID  uuid.UUID `gorm:"type:uuid;not null;index" json:"target_id"`
}

// TableName specifies the table name for GORM
func (EntityFieldItem) TableName() string {
	return "entity_field_items"
}
