package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/semo-upload/internal/domain/dto"
	"github.com/wekeepgrowing/semo-upload/internal/middleware/auth"
	"github.com/wekeepgrowing/semo-upload/internal/usecase"
	apperrors "github.com/wekeepgrowing/semo-upload/pkg/errors"
	"go.uber.org/zap"
)

// 업로드 요청이 허용하는 Content-Type
const uploadContentType = "application/octet-stream"

// UploadService 업로드 유스케이스
type UploadService interface {
	UploadForNewResource(ctx context.Context, req usecase.UploadRequest) (*dto.Document, error)
	UploadForExistingResource(ctx context.Context, req usecase.UploadRequest, entityID uuid.UUID) (*dto.Document, error)
}

// UploadHandler 파일 필드 업로드 엔드포인트
type UploadHandler struct {
	uploads UploadService
	metrics *UploadMetrics
	logger  *zap.Logger
}

// NewUploadHandler UploadHandler 생성. metrics는 nil일 수 있습니다.
func NewUploadHandler(uploads UploadService, metrics *UploadMetrics, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		metrics: metrics,
		logger:  logger,
	}
}

// RegisterRoutes 업로드 경로 등록
func (h *UploadHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/:entity_type/:bundle/:field_name", h.UploadNew)
	g.POST("/:entity_type/:bundle/:id/:field_name", h.UploadExisting)
}

// UploadNew 엔티티 없이 파일 리소스를 생성합니다
// POST /jsonapi/{entity_type}/{bundle}/{field_name} → 201
func (h *UploadHandler) UploadNew(c echo.Context) error {
	started := time.Now()
	entityTypeID := c.Param("entity_type")

	req, err := h.uploadRequest(c)
	if err != nil {
		return h.fail(modeNewResource, entityTypeID, started, err)
	}

	doc, err := h.uploads.UploadForNewResource(c.Request().Context(), req)
	if err != nil {
		return h.fail(modeNewResource, entityTypeID, started, err)
	}

	h.metrics.observe(modeNewResource, http.StatusCreated, started)
	return renderDocument(c, http.StatusCreated, doc)
}

// UploadExisting 기존 엔티티의 필드에 파일을 첨부합니다
// POST /jsonapi/{entity_type}/{bundle}/{id}/{field_name} → 200
func (h *UploadHandler) UploadExisting(c echo.Context) error {
	started := time.Now()
	entityTypeID := c.Param("entity_type")

	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return h.fail(modeExistingResource, entityTypeID, started, entityNotFound())
	}

	req, err := h.uploadRequest(c)
	if err != nil {
		return h.fail(modeExistingResource, entityTypeID, started, err)
	}

	doc, err := h.uploads.UploadForExistingResource(c.Request().Context(), req, entityID)
	if err != nil {
		return h.fail(modeExistingResource, entityTypeID, started, err)
	}

	h.metrics.observe(modeExistingResource, http.StatusOK, started)
	return renderDocument(c, http.StatusOK, doc)
}

func (h *UploadHandler) uploadRequest(c echo.Context) (usecase.UploadRequest, error) {
	r := c.Request()
	contentType := r.Header.Get(echo.HeaderContentType)
	if mediaType(contentType) != uploadContentType {
		r.Body.Close()
		return usecase.UploadRequest{}, apperrors.NewAppError(
			apperrors.ErrUnsupportedMediaType,
			fmt.Sprintf("No route found that matches \"Content-Type: %s\"", contentType),
			nil,
		)
	}

	return usecase.UploadRequest{
		Account:            auth.GetAccountFromContext(c),
		EntityTypeID:       c.Param("entity_type"),
		Bundle:             c.Param("bundle"),
		FieldName:          c.Param("field_name"),
		ContentDisposition: r.Header.Get("Content-Disposition"),
		Body:               r.Body,
	}, nil
}

func (h *UploadHandler) fail(mode, entityTypeID string, started time.Time, err error) error {
	he := apperrors.ToHTTPError(err)
	h.metrics.observe(mode, he.Code, started)

	if he.Code >= http.StatusInternalServerError {
		apperrors.LogError(h.logger, err, "업로드 처리 실패",
			zap.String("mode", mode),
			zap.String("entity_type", entityTypeID))
	} else {
		h.logger.Debug("업로드 거부",
			zap.String("mode", mode),
			zap.String("entity_type", entityTypeID),
			zap.Int("status", he.Code),
			zap.Error(err))
	}
	return he
}

// mediaType 파라미터를 제외한 미디어 타입
func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func entityNotFound() error {
	return apperrors.NewAppError(apperrors.ErrNotFound, "The requested entity was not found.", usecase.ErrEntityNotFound)
}

// isNotFound 조회 실패가 없는 리소스 때문인지 확인
func isNotFound(err error) bool {
	return errors.Is(err, usecase.ErrEntityNotFound) || errors.Is(err, usecase.ErrFieldNotFound)
}
