package database

import (
	"github.com/wekeepgrowing/semo-upload/internal/adapter/repository"
	domainRepo "github.com/wekeepgrowing/semo-upload/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewRepositories creates repository instances backed by the database connection
// 필드 정의는 DB가 아닌 스키마 파일에서 읽습니다.
func NewRepositories(db *gorm.DB, fields domainRepo.FieldRepository, logger *zap.Logger) *domainRepo.Repositories {
	return domainRepo.NewRepositories(
		fields,
		repository.NewFileRepository(db, logger),
		repository.NewEntityRepository(db, logger),
	)
}
