package model

import (
	"time"

	"github.com/google/uuid"
)

// File 업로드된 파일 레코드
type File struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Filename  string    `gorm:"size:255;not null" json:"filename"`
	URI       string    `gorm:"column:uri;size:512;not null;uniqueIndex" json:"uri"`
	FileMime  string    `gorm:"column:filemime;size:255" json:"filemime"`
	FileSize  int64     `gorm:"column:filesize;not null" json:"filesize"`
	OwnerID   string    `gorm:"column:owner_id;size:64;index" json:"owner_id"`
	Status    int       `gorm:"not null;index:idx_files_status_updated,priority:1" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index:idx_files_status_updated,priority:2" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (File) TableName() string {
	return "files"
}
