package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// DefaultScheme 스킴이 지정되지 않은 필드가 사용하는 저장 스킴
const DefaultScheme = "public"

var (
	ErrInvalidURI = errors.New("잘못된 파일 URI입니다")
	// ErrObjectExists Put 대상 URI에 이미 객체가 있습니다
	ErrObjectExists = errors.New("이미 존재하는 파일입니다")
)

// Store 파일 객체 저장소
// URI는 "<scheme>://<path>" 형식입니다 (예: public://2026-10/photo.png).
type Store interface {
	// Put 새 객체만 생성합니다. 이미 있으면 덮어쓰지 않고 ErrObjectExists를 반환합니다.
	Put(ctx context.Context, uri string, r io.Reader, size int64, contentType string) error
	Exists(ctx context.Context, uri string) (bool, error)
	// Delete 없는 객체는 에러가 아닙니다
	Delete(ctx context.Context, uri string) error
	PublicURL(uri string) string
}

// BuildURI 스킴, 디렉토리, 파일명으로 URI를 만듭니다
func BuildURI(scheme, dir, filename string) string {
	if scheme == "" {
		scheme = DefaultScheme
	}
	p := path.Join(strings.Trim(dir, "/"), filename)
	return scheme + "://" + strings.TrimPrefix(p, "/")
}

// ParseURI URI를 스킴과 경로로 나눕니다
func ParseURI(uri string) (scheme, p string, err error) {
	scheme, p, ok := strings.Cut(uri, "://")
	if !ok || scheme == "" || p == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}

	p = path.Clean("/" + p)[1:]
	if p == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	return scheme, p, nil
}
