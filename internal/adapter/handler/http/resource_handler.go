package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/semo-upload/internal/domain/dto"
	apperrors "github.com/wekeepgrowing/semo-upload/pkg/errors"
	"go.uber.org/zap"
)

// ResourceReader JSON:API 읽기 경로
type ResourceReader interface {
	FileDocument(ctx context.Context, id uuid.UUID) (*dto.Document, error)
	EntityDocument(ctx context.Context, entityTypeID, bundle string, id uuid.UUID) (*dto.Document, error)
	RelatedDocumentByID(ctx context.Context, entityTypeID, bundle string, id uuid.UUID, fieldName string) (*dto.Document, error)
}

// ResourceHandler 파일/엔티티 조회 엔드포인트
type ResourceHandler struct {
	resources ResourceReader
	logger    *zap.Logger
}

// NewResourceHandler ResourceHandler 생성
func NewResourceHandler(resources ResourceReader, logger *zap.Logger) *ResourceHandler {
	return &ResourceHandler{
		resources: resources,
		logger:    logger,
	}
}

// RegisterRoutes 조회 경로 등록
// 정적 경로(/file/file/:id)가 파라미터 경로보다 우선합니다.
func (h *ResourceHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/file/file/:id", h.GetFile)
	g.GET("/:entity_type/:bundle/:id", h.GetEntity)
	g.GET("/:entity_type/:bundle/:id/:field_name", h.GetRelated)
}

// GetFile GET /jsonapi/file/file/{id}
func (h *ResourceHandler) GetFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ToHTTPError(entityNotFound())
	}

	doc, err := h.resources.FileDocument(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return renderDocument(c, http.StatusOK, doc)
}

// GetEntity GET /jsonapi/{entity_type}/{bundle}/{id}
func (h *ResourceHandler) GetEntity(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ToHTTPError(entityNotFound())
	}

	doc, err := h.resources.EntityDocument(c.Request().Context(), c.Param("entity_type"), c.Param("bundle"), id)
	if err != nil {
		return h.fail(c, err)
	}
	return renderDocument(c, http.StatusOK, doc)
}

// GetRelated GET /jsonapi/{entity_type}/{bundle}/{id}/{field_name}
func (h *ResourceHandler) GetRelated(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ToHTTPError(entityNotFound())
	}

	doc, err := h.resources.RelatedDocumentByID(c.Request().Context(), c.Param("entity_type"), c.Param("bundle"), id, c.Param("field_name"))
	if err != nil {
		return h.fail(c, err)
	}
	return renderDocument(c, http.StatusOK, doc)
}

func (h *ResourceHandler) fail(c echo.Context, err error) error {
	if !isNotFound(err) {
		apperrors.LogError(h.logger, err, "리소스 조회 실패", zap.String("path", c.Request().URL.Path))
	}
	return apperrors.ToHTTPError(err)
}
