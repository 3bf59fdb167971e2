package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
	"github.com/wekeepgrowing/semo-upload/internal/domain/repository"
	"go.uber.org/zap"
)

const (
	chunkSize         = 8 * 1024
	maxCollisionTries = 1000
)

var ErrNoAvailableFilename = errors.New("사용 가능한 파일명을 찾을 수 없습니다")

// Uploader 요청 본문을 임시 파일로 스트리밍하고 필드 규칙으로 검증한 뒤 저장소에 보관합니다
type Uploader struct {
	store   Store
	files   repository.FileRepository
	tempDir string
	logger  *zap.Logger
	now     func() time.Time
}

// NewUploader Uploader 생성. tempDir이 비어 있으면 OS 기본 임시 디렉토리를 사용합니다.
func NewUploader(store Store, files repository.FileRepository, tempDir string, logger *zap.Logger) *Uploader {
	return &Uploader{
		store:   store,
		files:   files,
		tempDir: tempDir,
		logger:  logger,
		now:     time.Now,
	}
}

// HandleFileUploadForField 본문을 저장하고 임시 상태의 파일 엔티티를 생성합니다
// 검증 위반은 모두 모아 UploadResult로 반환하며 이때 저장소와 DB에는 아무것도 남지 않습니다.
func (u *Uploader) HandleFileUploadForField(ctx context.Context, field *entity.FieldDefinition, filename string, body io.Reader, account *entity.Account) (entity.UploadResult, error) {
	maxSize, err := ParseMaxFilesize(field.Settings.MaxFilesize)
	if err != nil {
		return entity.UploadResult{}, err
	}

	tempPath, size, err := u.streamToTemp(ctx, body, maxSize)
	if err != nil {
		return entity.UploadResult{}, err
	}
	defer os.Remove(tempPath)

	allowed := field.AllowedExtensions()
	name := MungeFilename(NormalizeFilename(filename), allowed)

	var violations entity.Violations
	validateFilenameLength(name, &violations)
	validateExtension(name, allowed, &violations)
	validateSize(size, maxSize, &violations)
	// 크기 초과 시 임시 파일이 잘려 있으므로 이미지 검사는 생략
	if field.IsImage() && (maxSize == 0 || size <= maxSize) {
		if err := validateImage(tempPath, field.Settings, &violations); err != nil {
			return entity.UploadResult{}, err
		}
	}
	if len(violations) > 0 {
		u.logger.Info("업로드 파일 검증 실패",
			zap.String("field", field.Name),
			zap.String("filename", name),
			zap.Int64("size", size),
			zap.Strings("violations", violations.Messages()),
		)
		return entity.UploadInvalid(violations), nil
	}

	mime, err := mimetype.DetectFile(tempPath)
	if err != nil {
		return entity.UploadResult{}, fmt.Errorf("failed to detect mime type: %w", err)
	}

	now := u.now().UTC()
	uri, err := u.storeUnique(ctx, field.Settings.URIScheme, ResolveDirectory(field.Settings.FileDirectory, now), name, tempPath, size, mime.String())
	if err != nil {
		return entity.UploadResult{}, err
	}

	ownerID := ""
	if account != nil {
		ownerID = account.ID
	}
	file := &entity.File{
		ID:       uuid.New(),
		Filename: name,
		URI:      uri,
		FileMime: mime.String(),
		FileSize: size,
		OwnerID:  ownerID,
		Status:   entity.FileStatusTemporary,
		Created:  now,
		Changed:  now,
	}

	if err := u.files.Create(ctx, file); err != nil {
		// storeUnique가 새로 만든 객체이므로 삭제해도 다른 업로드에 영향 없음
		if delErr := u.store.Delete(ctx, uri); delErr != nil {
			u.logger.Error("저장된 파일 정리 실패", zap.Error(delErr), zap.String("uri", uri))
		}
		return entity.UploadResult{}, err
	}

	u.logger.Info("파일 업로드 완료",
		zap.String("file_id", file.ID.String()),
		zap.String("uri", uri),
		zap.String("mime", file.FileMime),
		zap.Int64("size", size),
		zap.String("owner_id", ownerID),
	)
	return entity.UploadOK(file), nil
}

// streamToTemp 본문을 8KiB 단위로 임시 파일에 복사합니다
// maxSize를 넘는 바이트는 버리고 개수만 셉니다.
func (u *Uploader) streamToTemp(ctx context.Context, body io.Reader, maxSize int64) (string, int64, error) {
	tmp, err := os.CreateTemp(u.tempDir, "upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	var total int64
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", 0, err
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if maxSize > 0 {
				remaining := maxSize - total
				if remaining < 0 {
					remaining = 0
				}
				if int64(len(chunk)) > remaining {
					chunk = chunk[:remaining]
				}
			}
			if _, err := tmp.Write(chunk); err != nil {
				tmp.Close()
				os.Remove(tmp.Name())
				return "", 0, fmt.Errorf("failed to write temporary file: %w", err)
			}
			total += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", 0, fmt.Errorf("failed to read request body: %w", readErr)
		}
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("failed to write temporary file: %w", err)
	}
	return tmp.Name(), total, nil
}

// storeUnique 충돌하지 않는 이름(name.ext, name_0.ext, name_1.ext ...)으로 객체를 생성하고 URI를 반환합니다
// Exists는 사전 확인일 뿐이며 이름 확보는 Put의 배타적 생성으로 결정됩니다.
func (u *Uploader) storeUnique(ctx context.Context, scheme, dir, name, tempPath string, size int64, contentType string) (string, error) {
	for i := -1; i < maxCollisionTries; i++ {
		candidate := name
		if i >= 0 {
			candidate = CollisionName(name, i)
		}
		uri := BuildURI(scheme, dir, candidate)

		exists, err := u.store.Exists(ctx, uri)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}

		err = u.put(ctx, uri, tempPath, size, contentType)
		if errors.Is(err, ErrObjectExists) {
			u.logger.Debug("동시 업로드와 파일명 충돌", zap.String("uri", uri))
			continue
		}
		if err != nil {
			return "", err
		}
		return uri, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoAvailableFilename, name)
}

func (u *Uploader) put(ctx context.Context, uri, tempPath string, size int64, contentType string) error {
	f, err := os.Open(tempPath)
	if err != nil {
		return fmt.Errorf("failed to open temporary file: %w", err)
	}
	defer f.Close()

	return u.store.Put(ctx, uri, f, size, contentType)
}
