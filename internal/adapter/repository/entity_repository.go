package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
	"github.com/wekeepgrowing/semo-upload/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/semo-upload/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type entityRepository struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewEntityRepository creates a new entity repository
func NewEntityRepository(db *gorm.DB, logger *zap.Logger) domainRepo.EntityRepository {
	return &entityRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// FindByID retrieves an entity with its field items, nil if not found
func (r *entityRepository) FindByID(ctx context.Context, entityTypeID, bundle string, id uuid.UUID) (*entity.Entity, error) {
	var m model.Entity
	err := r.db.WithContext(ctx).
		Preload("FieldItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("field_name ASC, delta ASC")
		}).
		Where("id = ? AND entity_type = ? AND bundle = ?", id, entityTypeID, bundle).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get entity",
			zap.String("entity_id", id.String()),
			zap.String("entity_type", entityTypeID),
			zap.String("bundle", bundle),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return toEntity(&m), nil
}

// Save upserts the entity, rewrites its field items and marks referenced files permanent
// in one transaction.
func (r *entityRepository) Save(ctx context.Context, e *entity.Entity) error {
	now := r.now().UTC()
	if e.Created.IsZero() {
		e.Created = now
	}
	e.Changed = now

	m := toEntityModel(e)
	items := m.FieldItems
	m.FieldItems = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"label", "owner_id", "attributes", "updated_at"}),
		}).Create(m).Error
		if err != nil {
			return fmt.Errorf("failed to save entity: %w", err)
		}

		var previous []uuid.UUID
		err = tx.Model(&model.EntityFieldItem{}).Where("entity_id = ?", e.ID).Pluck("target_id", &previous).Error
		if err != nil {
			return fmt.Errorf("failed to load field items: %w", err)
		}

		if err := tx.Where("entity_id = ?", e.ID).Delete(&model.EntityFieldItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear field items: %w", err)
		}

		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("failed to save field items: %w", err)
			}

			targetIDs := make([]uuid.UUID, 0, len(items))
			for _, item := range items {
				targetIDs = append(targetIDs, item.TargetID)
			}
			err = tx.Model(&model.File{}).
				Where("id IN ? AND status = ?", targetIDs, int(entity.FileStatusTemporary)).
				Updates(map[string]interface{}{
					"status":     int(entity.FileStatusPermanent),
					"updated_at": now,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to mark files permanent: %w", err)
			}
		}

		return demoteUnreferencedFiles(tx, previous, now)
	})
}

// demoteUnreferencedFiles 더 이상 어떤 필드에서도 참조하지 않는 파일을 임시 상태로 되돌립니다
// updated_at이 갱신되므로 purge 대상이 되기까지 다시 maxAge를 기다립니다.
func demoteUnreferencedFiles(tx *gorm.DB, candidates []uuid.UUID, now time.Time) error {
	if len(candidates) == 0 {
		return nil
	}
	err := tx.Model(&model.File{}).
		Where("id IN ? AND status = ?", candidates, int(entity.FileStatusPermanent)).
		Where("id NOT IN (?)", tx.Model(&model.EntityFieldItem{}).Select("target_id")).
		Updates(map[string]interface{}{
			"status":     int(entity.FileStatusTemporary),
			"updated_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to demote unreferenced files: %w", err)
	}
	return nil
}

func toEntityModel(e *entity.Entity) *model.Entity {
	m := &model.Entity{
		ID:           e.ID,
		EntityTypeID: e.EntityTypeID,
		Bundle:       e.Bundle,
		Label:        e.Label,
		OwnerID:      e.OwnerID,
		Attributes:   datatypes.JSONMap(e.Attributes),
		CreatedAt:    e.Created,
		UpdatedAt:    e.Changed,
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for delta, item := range e.Fields[name] {
			m.FieldItems = append(m.FieldItems, model.EntityFieldItem{
				EntityID:  e.ID,
				FieldName: name,
				Delta:     delta,
				TargetID:  item.TargetID,
			})
		}
	}
	return m
}

func toEntity(m *model.Entity) *entity.Entity {
	e := &entity.Entity{
		ID:           m.ID,
		EntityTypeID: m.EntityTypeID,
		Bundle:       m.Bundle,
		Label:        m.Label,
		OwnerID:      m.OwnerID,
		Attributes:   map[string]interface{}(m.Attributes),
		Fields:       make(map[string][]entity.FieldItem),
		Created:      m.CreatedAt,
		Changed:      m.UpdatedAt,
	}
	// Preload에서 field_name, delta 순으로 정렬됨
	for _, item := range m.FieldItems {
		e.Fields[item.FieldName] = append(e.Fields[item.FieldName], entity.FieldItem{TargetID: item.TargetID})
	}
	return e
}
