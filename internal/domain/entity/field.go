package entity

import (
	"fmt"
	"strings"
)

// 필드 타입 및 참조 대상
const (
	FieldTypeFile  = "file"
	FieldTypeImage = "image"

	// TargetTypeFile 업로드가 가능한 필드의 참조 대상 엔티티 타입
	TargetTypeFile = "file"

	// CardinalityUnlimited 개수 제한이 없는 다중 값 필드
	CardinalityUnlimited = -1
)

// FieldDefinition 엔티티 타입/번들에 정의된 필드 메타데이터
type FieldDefinition struct {
	EntityTypeID string
	Bundle       string
	Name         string
	Label        string
	Type         string
	TargetType   string
	Cardinality  int
	Required     bool
	Settings     FileSettings
}

// FileSettings 파일 필드의 업로드 제약 조건
type FileSettings struct {
	// FileExtensions 공백으로 구분된 허용 확장자 목록 (예: "png jpg")
	FileExtensions string
	// MaxFilesize 최대 크기 (예: "2 MB"), 비어 있으면 제한 없음
	MaxFilesize string
	// MaxResolution / MinResolution "WxH" 형식, 이미지 필드만 해당
	MaxResolution string
	MinResolution string
	// FileDirectory 저장 경로, [date:custom:Y] 같은 토큰 허용
	FileDirectory string
	// URIScheme public, private 등
	URIScheme string
}

// IsFileReference 파일 엔티티를 참조하는 필드인지 확인
func (f *FieldDefinition) IsFileReference() bool {
	return f.TargetType == TargetTypeFile
}

// IsImage 이미지 필드 여부
func (f *FieldDefinition) IsImage() bool {
	return f.Type == FieldTypeImage
}

// IsSingle 단일 값 필드 여부
func (f *FieldDefinition) IsSingle() bool {
	return f.Cardinality == 1
}

// IsBounded 최대 개수가 정해진 필드 여부
func (f *FieldDefinition) IsBounded() bool {
	return f.Cardinality > 0
}

// AllowedExtensions 소문자로 정규화된 허용 확장자 목록
func (f *FieldDefinition) AllowedExtensions() []string {
	return strings.Fields(strings.ToLower(f.Settings.FileExtensions))
}

// ResourceType JSON:API 리소스 타입 이름 ("node--article")
func (f *FieldDefinition) ResourceType() string {
	return ResourceTypeName(f.EntityTypeID, f.Bundle)
}

// ResourceTypeName 엔티티 타입과 번들로 리소스 타입 이름을 만듭니다
func ResourceTypeName(entityTypeID, bundle string) string {
	return fmt.Sprintf("%s--%s", entityTypeID, bundle)
}
