package entity

import (
	"time"

	"github.com/google/uuid"
)

// FileStatus 파일 상태
type FileStatus int

const (
	// FileStatusTemporary 업로드 직후 상태, 일정 시간 후 정리 대상
	FileStatusTemporary FileStatus = 0
	// FileStatusPermanent 엔티티에 첨부되어 저장된 상태
	FileStatusPermanent FileStatus = 1
)

// FileResourceType 파일 리소스의 JSON:API 타입
const FileResourceType = "file--file"

// File 업로드된 파일 엔티티
type File struct {
	ID       uuid.UUID
	Filename string
	URI      string
	FileMime string
	FileSize int64
	OwnerID  string
	Status   FileStatus
	Created  time.Time
	Changed  time.Time
}

// IsTemporary 임시 파일 여부
func (f *File) IsTemporary() bool {
	return f.Status == FileStatusTemporary
}
