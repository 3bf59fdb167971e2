package usecase

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
)

// staticFieldRepository 고정된 필드 정의를 돌려주는 테스트용 구현체
type staticFieldRepository map[string]map[string]*entity.FieldDefinition

func (r staticFieldRepository) GetFieldDefinitions(_ context.Context, entityTypeID, bundle string) (map[string]*entity.FieldDefinition, error) {
	defs, ok := r[entity.ResourceTypeName(entityTypeID, bundle)]
	if !ok {
		return map[string]*entity.FieldDefinition{}, nil
	}
	return defs, nil
}

// MockFileRepository is a mock implementation
type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) Create(ctx context.Context, file *entity.File) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.File), args.Error(1)
}

func (m *MockFileRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.File, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.File), args.Error(1)
}

func (m *MockFileRepository) ListTemporaryBefore(ctx context.Context, before time.Time, limit int) ([]*entity.File, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.File), args.Error(1)
}

func (m *MockFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEntityRepository is a mock implementation
type MockEntityRepository struct {
	mock.Mock
}

func (m *MockEntityRepository) FindByID(ctx context.Context, entityTypeID, bundle string, id uuid.UUID) (*entity.Entity, error) {
	args := m.Called(ctx, entityTypeID, bundle, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Entity), args.Error(1)
}

func (m *MockEntityRepository) Save(ctx context.Context, e *entity.Entity) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// MockAccessChecker is a mock implementation
type MockAccessChecker struct {
	mock.Mock
}

func (m *MockAccessChecker) CheckUploadAccess(ctx context.Context, account *entity.Account, field *entity.FieldDefinition, target *entity.Entity) (entity.AccessResult, error) {
	args := m.Called(ctx, account, field, target)
	return args.Get(0).(entity.AccessResult), args.Error(1)
}

// MockFileUploader is a mock implementation. 본문을 끝까지 읽어 실제 스트리밍을 흉내냅니다.
type MockFileUploader struct {
	mock.Mock
}

func (m *MockFileUploader) HandleFileUploadForField(ctx context.Context, field *entity.FieldDefinition, filename string, body io.Reader, account *entity.Account) (entity.UploadResult, error) {
	_, _ = io.Copy(io.Discard, body)
	args := m.Called(ctx, field, filename, account)
	return args.Get(0).(entity.UploadResult), args.Error(1)
}

// MockEventPublisher is a mock implementation
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishUploaded(ctx context.Context, event UploadEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockFileStorage is a mock implementation
type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) PublicURL(uri string) string {
	return "http://files.test/" + strings.TrimPrefix(uri, "public://")
}

func (m *MockFileStorage) Delete(ctx context.Context, uri string) error {
	args := m.Called(ctx, uri)
	return args.Error(0)
}

// trackingBody 읽은 바이트 수와 Close 호출을 기록하는 요청 본문
type trackingBody struct {
	r      io.Reader
	read   int
	closed bool
}

func newTrackingBody(content string) *trackingBody {
	return &trackingBody{r: strings.NewReader(content)}
}

func (b *trackingBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.read += n
	return n, err
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}
