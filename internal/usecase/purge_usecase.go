package usecase

import (
	"context"
	"time"

	"github.com/wekeepgrowing/semo-upload/internal/domain/repository"
	"go.uber.org/zap"
)

const defaultPurgeBatchSize = 100

// TemporaryFilePurger 엔티티에 첨부되지 않은 오래된 임시 파일을 정리합니다
type TemporaryFilePurger struct {
	files     repository.FileRepository
	storage   FileStorage
	maxAge    time.Duration
	batchSize int
	logger    *zap.Logger
	now       func() time.Time
}

// NewTemporaryFilePurger TemporaryFilePurger 생성
func NewTemporaryFilePurger(files repository.FileRepository, storage FileStorage, maxAge time.Duration, logger *zap.Logger) *TemporaryFilePurger {
	return &TemporaryFilePurger{
		files:     files,
		storage:   storage,
		maxAge:    maxAge,
		batchSize: defaultPurgeBatchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// Purge maxAge보다 오래된 임시 파일을 저장소와 DB에서 삭제하고 삭제 개수를 반환합니다
// 한 파일의 삭제 실패는 기록만 하고 다음 파일로 진행합니다.
func (p *TemporaryFilePurger) Purge(ctx context.Context) (int, error) {
	cutoff := p.now().Add(-p.maxAge)
	purged := 0

	for {
		files, err := p.files.ListTemporaryBefore(ctx, cutoff, p.batchSize)
		if err != nil {
			return purged, err
		}
		if len(files) == 0 {
			return purged, nil
		}

		progressed := false
		for _, f := range files {
			if err := p.storage.Delete(ctx, f.URI); err != nil {
				p.logger.Warn("임시 파일 객체 삭제 실패", zap.Error(err), zap.String("uri", f.URI))
				continue
			}
			if err := p.files.Delete(ctx, f.ID); err != nil {
				p.logger.Warn("임시 파일 레코드 삭제 실패", zap.Error(err), zap.String("file_id", f.ID.String()))
				continue
			}
			purged++
			progressed = true
		}

		// 배치 전체가 실패하면 같은 목록을 반복하지 않도록 중단
		if !progressed || len(files) < p.batchSize {
			return purged, nil
		}
	}
}

// Run interval마다 Purge를 실행합니다. ctx가 취소되면 반환합니다.
func (p *TemporaryFilePurger) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := p.Purge(ctx)
			if err != nil {
				p.logger.Error("임시 파일 정리 실패", zap.Error(err))
				continue
			}
			if purged > 0 {
				p.logger.Info("임시 파일 정리 완료", zap.Int("purged", purged))
			}
		}
	}
}
