package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/semo-upload/internal/domain/dto"
	apperrors "github.com/wekeepgrowing/semo-upload/pkg/errors"
)

// renderDocument JSON:API 미디어 타입으로 문서를 응답합니다
func renderDocument(c echo.Context, status int, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return c.Blob(status, dto.MediaType, body)
}

// RenderError echo 에러 핸들러에서 사용하는 JSON:API 에러 응답
// 5xx 응답의 detail에는 원인을 노출하지 않습니다.
func RenderError(c echo.Context, code int, err error) error {
	detail := http.StatusText(code)
	var he *echo.HTTPError
	if code < http.StatusInternalServerError && errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok && msg != "" {
			detail = msg
		}
	}

	doc := dto.ErrorDocument{
		JSONAPI: dto.JSONAPIVersion,
		Errors: []dto.ErrorObject{{
			Title:  http.StatusText(code),
			Status: strconv.Itoa(code),
			Detail: detail,
			Code:   apperrors.CodeOf(apperrors.FromHTTPError(err)),
		}},
	}
	return renderDocument(c, code, doc)
}
