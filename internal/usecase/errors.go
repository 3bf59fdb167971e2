package usecase

import (
	"errors"
	"fmt"

	apperrors "github.com/wekeepgrowing/semo-upload/pkg/errors"
)

// 에러 타입 정의
var (
	ErrFieldNotFound             = errors.New("필드를 찾을 수 없습니다")
	ErrInvalidFieldKind          = errors.New("파일 필드가 아닙니다")
	ErrPermissionDenied          = errors.New("업로드 권한이 없습니다")
	ErrUnprocessable             = errors.New("검증에 실패했습니다")
	ErrEntityNotFound            = errors.New("엔티티를 찾을 수 없습니다")
	ErrInvalidContentDisposition = errors.New("Content-Disposition 헤더가 올바르지 않습니다")
)

const (
	uploadAccessDeniedMessage = "The current user is not permitted to upload a file for this field."
	fileValidationPrefix      = "Unprocessable Entity: file validation failed.\n"
	entityValidationPrefix    = "Unprocessable Entity: validation failed.\n"
)

func newFieldNotFoundError(fieldName string) error {
	return apperrors.NewAppError(apperrors.ErrNotFound, fmt.Sprintf("Field %q does not exist.", fieldName), ErrFieldNotFound)
}

func newInvalidFieldKindError(fieldName string) error {
	return apperrors.NewAppError(apperrors.ErrUnauthorized, fmt.Sprintf("%q is not a file field", fieldName), ErrInvalidFieldKind)
}

func newPermissionDeniedError(reason string) error {
	message := uploadAccessDeniedMessage
	if reason != "" {
		message += " " + reason
	}
	return apperrors.NewAppError(apperrors.ErrUnauthorized, message, ErrPermissionDenied)
}

func newUnprocessableError(prefix string, messages string) error {
	return apperrors.NewAppError(apperrors.ErrUnprocessable, prefix+messages, ErrUnprocessable)
}

func newEntityNotFoundError() error {
	return apperrors.NewAppError(apperrors.ErrNotFound, "The requested entity was not found.", ErrEntityNotFound)
}

func newContentDispositionError(message string) error {
	return apperrors.NewAppError(apperrors.ErrInvalidArgument, message, ErrInvalidContentDisposition)
}
