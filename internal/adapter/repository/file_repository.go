package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
	"github.com/wekeepgrowing/semo-upload/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/semo-upload/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fileRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *gorm.DB, logger *zap.Logger) domainRepo.FileRepository {
	return &fileRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new file record
func (r *fileRepository) Create(ctx context.Context, file *entity.File) error {
	m := toFileModel(file)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		r.logger.Error("Failed to create file",
			zap.String("file_id", file.ID.String()),
			zap.String("uri", file.URI),
			zap.Error(err))
		return fmt.Errorf("failed to create file: %w", err)
	}
	file.Created = m.CreatedAt
	file.Changed = m.UpdatedAt
	return nil
}

// FindByID retrieves a file by ID, nil if not found
func (r *fileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.File, error) {
	var m model.File
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return toFileEntity(&m), nil
}

// FindByIDs retrieves files in the order of ids, skipping missing ones
func (r *fileRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.File, error) {
	if len(ids) == 0 {
		return []*entity.File{}, nil
	}

	var models []model.File
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to get files: %w", err)
	}

	byID := make(map[uuid.UUID]*model.File, len(models))
	for i := range models {
		byID[models[i].ID] = &models[i]
	}

	files := make([]*entity.File, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			files = append(files, toFileEntity(m))
		}
	}
	return files, nil
}

// ListTemporaryBefore lists temporary files last changed before the given time, oldest first
func (r *fileRepository) ListTemporaryBefore(ctx context.Context, before time.Time, limit int) ([]*entity.File, error) {
	var models []model.File
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", int(entity.FileStatusTemporary), before).
		Order("updated_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list temporary files: %w", err)
	}

	files := make([]*entity.File, 0, len(models))
	for i := range models {
		files = append(files, toFileEntity(&models[i]))
	}
	return files, nil
}

// Delete removes a file record
func (r *fileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.File{}).Error; err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func toFileModel(f *entity.File) *model.File {
	return &model.File{
		ID:        f.ID,
		Filename:  f.Filename,
		URI:       f.URI,
		FileMime:  f.FileMime,
		FileSize:  f.FileSize,
		OwnerID:   f.OwnerID,
		Status:    int(f.Status),
		CreatedAt: f.Created,
		UpdatedAt: f.Changed,
	}
}

func toFileEntity(m *model.File) *entity.File {
	return &entity.File{
		ID:       m.ID,
		Filename: m.Filename,
		URI:      m.URI,
		FileMime: m.FileMime,
		FileSize: m.FileSize,
		OwnerID:  m.OwnerID,
		Status:   entity.FileStatus(m.Status),
		Created:  m.CreatedAt,
		Changed:  m.UpdatedAt,
	}
}
