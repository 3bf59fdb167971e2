package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/semo-upload/internal/domain/dto"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
	"github.com/wekeepgrowing/semo-upload/internal/domain/repository"
)

// ResourceService JSON:API 읽기 경로의 응답 문서를 만듭니다
// 업로드 후 응답도 같은 함수를 사용해 직렬화 결과를 일치시킵니다.
type ResourceService struct {
	files    repository.FileRepository
	entities repository.EntityRepository
	fields   repository.FieldRepository
	storage  FileStorage
	baseURL  string
}

// NewResourceService ResourceService 생성
func NewResourceService(repos *repository.Repositories, storage FileStorage, baseURL string) *ResourceService {
	return &ResourceService{
		files:    repos.File,
		entities: repos.Entity,
		fields:   repos.Field,
		storage:  storage,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// FileURL 파일 개별 리소스 URL
func (s *ResourceService) FileURL(id uuid.UUID) string {
	return fmt.Sprintf("%s/jsonapi/file/file/%s", s.baseURL, id)
}

// EntityURL 엔티티 개별 리소스 URL
func (s *ResourceService) EntityURL(e *entity.Entity) string {
	return fmt.Sprintf("%s/jsonapi/%s/%s/%s", s.baseURL, e.EntityTypeID, e.Bundle, e.ID)
}

// RelatedURL 엔티티 필드의 관련 리소스 URL
func (s *ResourceService) RelatedURL(e *entity.Entity, fieldName string) string {
	return s.EntityURL(e) + "/" + fieldName
}

// FileResource 파일 리소스 객체
func (s *ResourceService) FileResource(f *entity.File) *dto.ResourceObject {
	var owner interface{}
	if f.OwnerID != "" {
		owner = dto.ResourceIdentifier{Type: "user--user", ID: f.OwnerID}
	}

	return &dto.ResourceObject{
		Type: entity.FileResourceType,
		ID:   f.ID.String(),
		Attributes: map[string]interface{}{
			"filename": f.Filename,
			"uri": map[string]string{
				"value": f.URI,
				"url":   s.storage.PublicURL(f.URI),
			},
			"filemime": f.FileMime,
			"filesize": f.FileSize,
			"status":   !f.IsTemporary(),
			"created":  f.Created.UTC().Format(time.RFC3339),
			"changed":  f.Changed.UTC().Format(time.RFC3339),
		},
		Relationships: map[string]dto.Relationship{
			"uid": {Data: owner},
		},
		Links: dto.Links{"self": {Href: s.FileURL(f.ID)}},
	}
}

// NewFileDocument 새로 업로드된 파일의 응답 문서. 관련 엔티티는 포함하지 않습니다.
func (s *ResourceService) NewFileDocument(f *entity.File) *dto.Document {
	return dto.NewDocument(s.FileResource(f), dto.Links{"self": {Href: s.FileURL(f.ID)}})
}

// FileDocument 파일 개별 리소스 조회
func (s *ResourceService) FileDocument(ctx context.Context, id uuid.UUID) (*dto.Document, error) {
	f, err := s.files.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, newEntityNotFoundError()
	}
	return s.NewFileDocument(f), nil
}

// EntityDocument 엔티티 개별 리소스 조회
func (s *ResourceService) EntityDocument(ctx context.Context, entityTypeID, bundle string, id uuid.UUID) (*dto.Document, error) {
	e, err := s.loadEntity(ctx, entityTypeID, bundle, id)
	if err != nil {
		return nil, err
	}

	definitions, err := s.fields.GetFieldDefinitions(ctx, entityTypeID, bundle)
	if err != nil {
		return nil, err
	}

	attributes := make(map[string]interface{}, len(e.Attributes)+3)
	for k, v := range e.Attributes {
		attributes[k] = v
	}
	attributes["label"] = e.Label
	attributes["created"] = e.Created.UTC().Format(time.RFC3339)
	attributes["changed"] = e.Changed.UTC().Format(time.RFC3339)

	relationships := make(map[string]dto.Relationship)
	for name, field := range definitions {
		if !field.IsFileReference() {
			continue
		}
		identifiers := make([]dto.ResourceIdentifier, 0)
		for _, item := range e.FieldItems(name) {
			identifiers = append(identifiers, dto.ResourceIdentifier{Type: entity.FileResourceType, ID: item.TargetID.String()})
		}
		var data interface{} = identifiers
		if field.IsSingle() {
			data = nil
			if len(identifiers) > 0 {
				data = identifiers[0]
			}
		}
		relationships[name] = dto.Relationship{
			Data:  data,
			Links: dto.Links{"related": {Href: s.RelatedURL(e, name)}},
		}
	}

	resource := &dto.ResourceObject{
		Type:          e.ResourceType(),
		ID:            e.ID.String(),
		Attributes:    attributes,
		Relationships: relationships,
		Links:         dto.Links{"self": {Href: s.EntityURL(e)}},
	}
	return dto.NewDocument(resource, dto.Links{"self": {Href: s.EntityURL(e)}}), nil
}

// RelatedDocumentByID 엔티티를 조회한 뒤 필드의 관련 리소스 문서를 만듭니다
func (s *ResourceService) RelatedDocumentByID(ctx context.Context, entityTypeID, bundle string, id uuid.UUID, fieldName string) (*dto.Document, error) {
	e, err := s.loadEntity(ctx, entityTypeID, bundle, id)
	if err != nil {
		return nil, err
	}
	return s.RelatedDocument(ctx, e, fieldName)
}

// RelatedDocument 엔티티 필드가 참조하는 파일 리소스 문서
// 단일 값 필드는 객체(또는 null), 다중 값 필드는 배열을 data로 가집니다.
func (s *ResourceService) RelatedDocument(ctx context.Context, e *entity.Entity, fieldName string) (*dto.Document, error) {
	definitions, err := s.fields.GetFieldDefinitions(ctx, e.EntityTypeID, e.Bundle)
	if err != nil {
		return nil, err
	}
	field, ok := definitions[fieldName]
	if !ok || field == nil || !field.IsFileReference() {
		return nil, newFieldNotFoundError(fieldName)
	}

	items := e.FieldItems(fieldName)
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.TargetID)
	}

	files, err := s.files.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	resources := make([]*dto.ResourceObject, 0, len(files))
	for _, f := range files {
		resources = append(resources, s.FileResource(f))
	}

	links := dto.Links{"self": {Href: s.RelatedURL(e, fieldName)}}
	if field.IsSingle() {
		var data interface{}
		if len(resources) > 0 {
			data = resources[0]
		}
		return dto.NewDocument(data, links), nil
	}
	return dto.NewDocument(resources, links), nil
}

func (s *ResourceService) loadEntity(ctx context.Context, entityTypeID, bundle string, id uuid.UUID) (*entity.Entity, error) {
	e, err := s.entities.FindByID(ctx, entityTypeID, bundle, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, newEntityNotFoundError()
	}
	return e, nil
}
