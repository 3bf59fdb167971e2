package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/semo-upload/internal/domain/dto"
	"github.com/wekeepgrowing/semo-upload/internal/usecase"
	apperrors "github.com/wekeepgrowing/semo-upload/pkg/errors"
	"github.com/wekeepgrowing/semo-upload/pkg/logger"
	"go.uber.org/zap"
)

// MockUploadService is a mock implementation of UploadService
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) UploadForNewResource(ctx context.Context, req usecase.UploadRequest) (*dto.Document, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Document), args.Error(1)
}

func (m *MockUploadService) UploadForExistingResource(ctx context.Context, req usecase.UploadRequest, entityID uuid.UUID) (*dto.Document, error) {
	args := m.Called(ctx, req, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Document), args.Error(1)
}

// MockResourceReader is a mock implementation of ResourceReader
type MockResourceReader struct {
	mock.Mock
}

func (m *MockResourceReader) FileDocument(ctx context.Context, id uuid.UUID) (*dto.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Document), args.Error(1)
}

func (m *MockResourceReader) EntityDocument(ctx context.Context, entityTypeID, bundle string, id uuid.UUID) (*dto.Document, error) {
	args := m.Called(ctx, entityTypeID, bundle, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Document), args.Error(1)
}

func (m *MockResourceReader) RelatedDocumentByID(ctx context.Context, entityTypeID, bundle string, id uuid.UUID, fieldName string) (*dto.Document, error) {
	args := m.Called(ctx, entityTypeID, bundle, id, fieldName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Document), args.Error(1)
}

type testServer struct {
	echo      *echo.Echo
	uploads   *MockUploadService
	resources *MockResourceReader
	metrics   *UploadMetrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	e := echo.New()
	logger.WithEchoLogger(e, zap.NewNop(), RenderError)

	uploads := &MockUploadService{}
	resources := &MockResourceReader{}
	metrics := NewUploadMetrics(prometheus.NewRegistry())

	g := e.Group("/jsonapi")
	NewUploadHandler(uploads, metrics, zap.NewNop()).RegisterRoutes(g)
	NewResourceHandler(resources, zap.NewNop()).RegisterRoutes(g)

	t.Cleanup(func() {
		uploads.AssertExpectations(t)
		resources.AssertExpectations(t)
	})
	return &testServer{echo: e, uploads: uploads, resources: resources, metrics: metrics}
}

func (s *testServer) do(method, target, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	req.Header.Set("Content-Disposition", `file; filename="photo.png"`)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func fileDocument(id uuid.UUID) *dto.Document {
	return dto.NewDocument(&dto.ResourceObject{
		Type:       "file--file",
		ID:         id.String(),
		Attributes: map[string]interface{}{"filename": "photo.png"},
	}, dto.Links{"self": {Href: "http://api.test/jsonapi/file/file/" + id.String()}})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorObject {
	t.Helper()
	assert.Equal(t, dto.MediaType, rec.Header().Get(echo.HeaderContentType))

	var doc dto.ErrorDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "1.0", doc.JSONAPI.Version)
	require.Len(t, doc.Errors, 1)
	return doc.Errors[0]
}

func TestUploadHandler_UploadNew(t *testing.T) {
	s := newTestServer(t)
	fileID := uuid.New()

	s.uploads.On("UploadForNewResource", mock.Anything, mock.MatchedBy(func(req usecase.UploadRequest) bool {
		return req.EntityTypeID == "node" &&
			req.Bundle == "article" &&
			req.FieldName == "field_image" &&
			req.ContentDisposition == `file; filename="photo.png"` &&
			req.Account != nil && req.Account.Anonymous
	})).Return(fileDocument(fileID), nil).Once()

	rec := s.do(http.MethodPost, "/jsonapi/node/article/field_image", "application/octet-stream", strings.NewReader("data"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, dto.MediaType, rec.Header().Get(echo.HeaderContentType))

	var doc struct {
		Data dto.ResourceObject `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "file--file", doc.Data.Type)
	assert.Equal(t, fileID.String(), doc.Data.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.requests.WithLabelValues(modeNewResource, "201")))
}

func TestUploadHandler_UploadExisting(t *testing.T) {
	s := newTestServer(t)
	entityID := uuid.New()
	related := dto.NewDocument([]*dto.ResourceObject{}, nil)

	s.uploads.On("UploadForExistingResource", mock.Anything, mock.AnythingOfType("usecase.UploadRequest"), entityID).
		Return(related, nil).Once()

	rec := s.do(http.MethodPost, fmt.Sprintf("/jsonapi/node/article/%s/field_files", entityID), "application/octet-stream; charset=binary", strings.NewReader("data"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"jsonapi":{"version":"1.0","meta":{"links":{"self":{"href":"http://jsonapi.org/format/1.0/"}}}},"data":[]}`, rec.Body.String())
}

func TestUploadHandler_Errors(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		contentType    string
		serviceErr     error
		callsService   bool
		expectedStatus int
		expectedCode   string
		expectedDetail string
	}{
		{
			name:           "wrong content type",
			target:         "/jsonapi/node/article/field_image",
			contentType:    "application/json",
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedCode:   apperrors.ErrUnsupportedMediaType,
			expectedDetail: `No route found that matches "Content-Type: application/json"`,
		},
		{
			name:           "malformed entity id",
			target:         "/jsonapi/node/article/not-a-uuid/field_image",
			contentType:    "application/octet-stream",
			expectedStatus: http.StatusNotFound,
			expectedCode:   apperrors.ErrNotFound,
			expectedDetail: "The requested entity was not found.",
		},
		{
			name:           "permission denied",
			target:         "/jsonapi/node/article/field_image",
			contentType:    "application/octet-stream",
			serviceErr:     apperrors.NewAppError(apperrors.ErrUnauthorized, "The current user is not permitted to upload a file for this field.", usecase.ErrPermissionDenied),
			callsService:   true,
			expectedStatus: http.StatusForbidden,
			expectedCode:   apperrors.ErrUnauthorized,
			expectedDetail: "The current user is not permitted to upload a file for this field.",
		},
		{
			name:           "validation failure",
			target:         "/jsonapi/node/article/field_image",
			contentType:    "application/octet-stream",
			serviceErr:     apperrors.NewAppError(apperrors.ErrUnprocessable, "Unprocessable Entity: file validation failed.\nbad", usecase.ErrUnprocessable),
			callsService:   true,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   apperrors.ErrUnprocessable,
			expectedDetail: "Unprocessable Entity: file validation failed.\nbad",
		},
		{
			name:           "storage failure hides cause",
			target:         "/jsonapi/node/article/field_image",
			contentType:    "application/octet-stream",
			serviceErr:     fmt.Errorf("failed to write temporary file: disk full"),
			callsService:   true,
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   apperrors.ErrInternal,
			expectedDetail: "Internal Server Error",
		},
		{
			name:           "body too large",
			target:         "/jsonapi/node/article/field_image",
			contentType:    "application/octet-stream",
			serviceErr:     fmt.Errorf("failed to read request body: %w", echo.ErrStatusRequestEntityTooLarge),
			callsService:   true,
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedCode:   apperrors.ErrPayloadTooLarge,
			expectedDetail: "Request Entity Too Large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			if tt.callsService {
				s.uploads.On("UploadForNewResource", mock.Anything, mock.Anything).Return(nil, tt.serviceErr).Once()
			}

			rec := s.do(http.MethodPost, tt.target, tt.contentType, strings.NewReader("data"))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			errObj := decodeError(t, rec)
			assert.Equal(t, http.StatusText(tt.expectedStatus), errObj.Title)
			assert.Equal(t, fmt.Sprint(tt.expectedStatus), errObj.Status)
			assert.Equal(t, tt.expectedCode, errObj.Code)
			assert.Equal(t, tt.expectedDetail, errObj.Detail)
		})
	}
}

func TestUploadHandler_MetricSeriesBounded(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 50; i++ {
		target := fmt.Sprintf("/jsonapi/junk_%d/bundle_%d/field_%d", i, i, i)
		rec := s.do(http.MethodPost, target, "application/json", strings.NewReader("data"))
		require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	}

	assert.Equal(t, 1, testutil.CollectAndCount(s.metrics.requests))
	assert.Equal(t, 50.0, testutil.ToFloat64(s.metrics.requests.WithLabelValues(modeNewResource, "415")))
}

func TestResourceHandler(t *testing.T) {
	t.Run("file resource", func(t *testing.T) {
		s := newTestServer(t)
		id := uuid.New()
		s.resources.On("FileDocument", mock.Anything, id).Return(fileDocument(id), nil).Once()

		rec := s.do(http.MethodGet, "/jsonapi/file/file/"+id.String(), "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), id.String())
	})

	t.Run("entity resource", func(t *testing.T) {
		s := newTestServer(t)
		id := uuid.New()
		doc := dto.NewDocument(&dto.ResourceObject{Type: "node--article", ID: id.String()}, nil)
		s.resources.On("EntityDocument", mock.Anything, "node", "article", id).Return(doc, nil).Once()

		rec := s.do(http.MethodGet, "/jsonapi/node/article/"+id.String(), "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"type":"node--article"`)
	})

	t.Run("related resource", func(t *testing.T) {
		s := newTestServer(t)
		id := uuid.New()
		s.resources.On("RelatedDocumentByID", mock.Anything, "node", "article", id, "field_image").
			Return(dto.NewDocument(nil, nil), nil).Once()

		rec := s.do(http.MethodGet, fmt.Sprintf("/jsonapi/node/article/%s/field_image", id), "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"data":null`)
	})

	t.Run("missing entity", func(t *testing.T) {
		s := newTestServer(t)
		id := uuid.New()
		s.resources.On("EntityDocument", mock.Anything, "node", "article", id).
			Return(nil, apperrors.NewAppError(apperrors.ErrNotFound, "The requested entity was not found.", usecase.ErrEntityNotFound)).Once()

		rec := s.do(http.MethodGet, "/jsonapi/node/article/"+id.String(), "", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "The requested entity was not found.", decodeError(t, rec).Detail)
	})

	t.Run("malformed id", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(http.MethodGet, "/jsonapi/file/file/42", "", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apperrors.ErrNotFound, decodeError(t, rec).Code)
	})
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "application/octet-stream", mediaType("Application/Octet-Stream ; charset=binary"))
	assert.Equal(t, "", mediaType(""))
}
