package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
	"github.com/wekeepgrowing/semo-upload/internal/domain/repository"
	"go.uber.org/zap"
)

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

type uploaderFixture struct {
	root     string
	store    *LocalStore
	files    *MockFileRepository
	uploader *Uploader
}

func newUploaderFixture(t *testing.T) *uploaderFixture {
	root := t.TempDir()
	tempDir := t.TempDir()
	f := &uploaderFixture{
		root:  root,
		store: NewLocalStore(root, "http://files.test"),
		files: new(MockFileRepository),
	}
	f.uploader = NewUploader(f.store, f.files, tempDir, zap.NewNop())
	f.uploader.now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }
	return f
}

// storedFiles root 아래 저장된 파일 경로 목록
func (f *uploaderFixture) storedFiles(t *testing.T) []string {
	var out []string
	err := filepath.WalkDir(f.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(f.root, path)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

func pngBytes(t *testing.T, w, h int) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func imageField() *entity.FieldDefinition {
	return &entity.FieldDefinition{
		EntityTypeID: "node",
		Bundle:       "article",
		Name:         "field_image",
		Type:         entity.FieldTypeImage,
		TargetType:   entity.TargetTypeFile,
		Cardinality:  1,
		Settings: entity.FileSettings{
			FileExtensions: "png jpg",
			MaxFilesize:    "1 MB",
			MaxResolution:  "100x100",
			FileDirectory:  "[date:custom:Y]-[date:custom:m]",
			URIScheme:      "public",
		},
	}
}

func TestUploader_Success(t *testing.T) {
	f := newUploaderFixture(t)
	content := pngBytes(t, 10, 10)
	account := &entity.Account{ID: "user-1"}

	var created *entity.File
	f.files.On("Create", mock.Anything, mock.AnythingOfType("*entity.File")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*entity.File) }).
		Return(nil)

	result, err := f.uploader.HandleFileUploadForField(context.Background(), imageField(), "photo.png", bytes.NewReader(content), account)
	require.NoError(t, err)

	file, ok := result.File()
	require.True(t, ok)
	assert.Same(t, created, file)
	assert.Equal(t, "photo.png", file.Filename)
	assert.Equal(t, "public://2026-10/photo.png", file.URI)
	assert.Equal(t, "image/png", file.FileMime)
	assert.Equal(t, int64(len(content)), file.FileSize)
	assert.Equal(t, "user-1", file.OwnerID)
	assert.Equal(t, entity.FileStatusTemporary, file.Status)
	assert.NotEqual(t, uuid.Nil, file.ID)

	stored, err := os.ReadFile(filepath.Join(f.root, "public", "2026-10", "photo.png"))
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestUploader_RenamesOnCollision(t *testing.T) {
	f := newUploaderFixture(t)
	require.NoError(t, f.store.Put(context.Background(), "public://2026-10/photo.png", strings.NewReader("x"), 1, ""))
	require.NoError(t, f.store.Put(context.Background(), "public://2026-10/photo_0.png", strings.NewReader("x"), 1, ""))
	f.files.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := f.uploader.HandleFileUploadForField(context.Background(), imageField(), "photo.png",
		bytes.NewReader(pngBytes(t, 5, 5)), &entity.Account{ID: "user-1"})
	require.NoError(t, err)

	file, ok := result.File()
	require.True(t, ok)
	assert.Equal(t, "public://2026-10/photo_1.png", file.URI)
	assert.Equal(t, "photo.png", file.Filename)
}

func TestUploader_MungesInnerExtension(t *testing.T) {
	f := newUploaderFixture(t)
	f.files.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := f.uploader.HandleFileUploadForField(context.Background(), imageField(), "exploit.php.png",
		bytes.NewReader(pngBytes(t, 5, 5)), &entity.Account{ID: "user-1"})
	require.NoError(t, err)

	file, ok := result.File()
	require.True(t, ok)
	assert.Equal(t, "exploit.php_.png", file.Filename)
}

func TestUploader_CollectsAllViolations(t *testing.T) {
	tests := []struct {
		name             string
		field            func() *entity.FieldDefinition
		filename         string
		body             func(t *testing.T) []byte
		expectedMessages []string
	}{
		{
			name: "extension and size",
			field: func() *entity.FieldDefinition {
				fd := imageField()
				fd.Type = entity.FieldTypeFile
				fd.Settings.MaxFilesize = "10 B"
				return fd
			},
			filename: "setup.exe",
			body:     func(*testing.T) []byte { return []byte("MZ-not-an-image") },
			expectedMessages: []string{
				"Only files with the following extensions are allowed: png jpg.",
				"The file is 15 B exceeding the maximum file size of 10 B.",
			},
		},
		{
			name:     "invalid image",
			field:    imageField,
			filename: "fake.png",
			body:     func(*testing.T) []byte { return []byte("this is plain text") },
			expectedMessages: []string{
				"The image file is invalid or the image type is not allowed. Allowed types: png, gif, jpg, jpeg, bmp, tif, tiff, webp",
			},
		},
		{
			name:     "resolution too large",
			field:    imageField,
			filename: "big.png",
			body:     func(t *testing.T) []byte { return pngBytes(t, 200, 50) },
			expectedMessages: []string{
				"The image is too large; the maximum dimensions are 100x100 pixels.",
			},
		},
		{
			name:     "resolution too small",
			field:    func() *entity.FieldDefinition { fd := imageField(); fd.Settings.MinResolution = "20x20"; return fd },
			filename: "tiny.png",
			body:     func(t *testing.T) []byte { return pngBytes(t, 10, 30) },
			expectedMessages: []string{
				"The image is too small. The minimum dimensions are 20x20 pixels and the image size is 10x30 pixels.",
			},
		},
		{
			name:     "name too long",
			field:    func() *entity.FieldDefinition { fd := imageField(); fd.Type = entity.FieldTypeFile; return fd },
			filename: strings.Repeat("a", 240) + ".png",
			body:     func(*testing.T) []byte { return []byte("data") },
			expectedMessages: []string{
				"The file's name exceeds the 240 characters limit. Please rename the file and try again.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUploaderFixture(t)

			result, err := f.uploader.HandleFileUploadForField(context.Background(), tt.field(), tt.filename,
				bytes.NewReader(tt.body(t)), &entity.Account{ID: "user-1"})
			require.NoError(t, err)

			assert.False(t, result.IsValid())
			assert.Equal(t, tt.expectedMessages, result.Violations().Messages())
			assert.Empty(t, f.storedFiles(t))
			f.files.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUploader_RemovesStoredObjectWhenRecordFails(t *testing.T) {
	f := newUploaderFixture(t)
	dbErr := errors.New("duplicate key")
	f.files.On("Create", mock.Anything, mock.Anything).Return(dbErr)

	_, err := f.uploader.HandleFileUploadForField(context.Background(), imageField(), "photo.png",
		bytes.NewReader(pngBytes(t, 5, 5)), &entity.Account{ID: "user-1"})
	assert.ErrorIs(t, err, dbErr)
	assert.Empty(t, f.storedFiles(t))
}

func TestUploader_CancelledContext(t *testing.T) {
	f := newUploaderFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uploader.HandleFileUploadForField(ctx, imageField(), "photo.png",
		bytes.NewReader(pngBytes(t, 5, 5)), &entity.Account{ID: "user-1"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.storedFiles(t))
}

// gatedStore 지정한 URI의 Exists 호출이 parties만큼 모일 때까지 응답을 미룹니다
type gatedStore struct {
	Store
	uri     string
	arrived sync.WaitGroup
}

func newGatedStore(store Store, uri string, parties int) *gatedStore {
	s := &gatedStore{Store: store, uri: uri}
	s.arrived.Add(parties)
	return s
}

func (s *gatedStore) Exists(ctx context.Context, uri string) (bool, error) {
	exists, err := s.Store.Exists(ctx, uri)
	if uri == s.uri {
		s.arrived.Done()
		s.arrived.Wait()
	}
	return exists, err
}

// uniqueURIFiles files.uri 유니크 인덱스처럼 같은 URI의 두 번째 Create를 거부합니다
type uniqueURIFiles struct {
	repository.FileRepository
	mu    sync.Mutex
	byURI map[string]*entity.File
}

func (r *uniqueURIFiles) Create(_ context.Context, file *entity.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byURI[file.URI]; ok {
		return errors.New("UNIQUE constraint failed: files.uri")
	}
	r.byURI[file.URI] = file
	return nil
}

func TestUploader_ConcurrentSameName(t *testing.T) {
	root := t.TempDir()
	local := NewLocalStore(root, "http://files.test")
	store := newGatedStore(local, "public://docs/notes.txt", 2)
	files := &uniqueURIFiles{byURI: make(map[string]*entity.File)}
	uploader := NewUploader(store, files, t.TempDir(), zap.NewNop())

	field := &entity.FieldDefinition{
		EntityTypeID: "node",
		Bundle:       "article",
		Name:         "field_attachment",
		Type:         entity.FieldTypeFile,
		TargetType:   entity.TargetTypeFile,
		Cardinality:  entity.CardinalityUnlimited,
		Settings: entity.FileSettings{
			FileExtensions: "txt",
			MaxFilesize:    "1 MB",
			FileDirectory:  "docs",
			URIScheme:      "public",
		},
	}
	bodies := []string{"first upload body", "second upload body"}

	uris := make([]string, len(bodies))
	errs := make([]error, len(bodies))
	var wg sync.WaitGroup
	for i, body := range bodies {
		wg.Add(1)
		go func(i int, body string) {
			defer wg.Done()
			result, err := uploader.HandleFileUploadForField(context.Background(), field, "notes.txt",
				strings.NewReader(body), &entity.Account{ID: "user-1"})
			if err != nil {
				errs[i] = err
				return
			}
			if file, ok := result.File(); ok {
				uris[i] = file.URI
			}
		}(i, body)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.ElementsMatch(t, []string{"public://docs/notes.txt", "public://docs/notes_0.txt"}, uris)
	assert.Len(t, files.byURI, 2)

	// 각 업로드의 레코드가 자기 내용을 가리킴
	for i, uri := range uris {
		_, p, err := ParseURI(uri)
		require.NoError(t, err)
		stored, err := os.ReadFile(filepath.Join(root, "public", filepath.FromSlash(p)))
		require.NoError(t, err)
		assert.Equal(t, bodies[i], string(stored), uri)
		assert.True(t, files.byURI[uri].IsTemporary())
	}
}
