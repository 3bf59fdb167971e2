package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore 로컬 디스크 저장소. <root>/<scheme>/<path> 에 저장합니다.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore LocalStore 생성
func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *LocalStore) path(uri string) (string, error) {
	scheme, p, err := ParseURI(uri)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, scheme, filepath.FromSlash(p)), nil
}

func (s *LocalStore) Put(ctx context.Context, uri string, r io.Reader, _ int64, _ string) error {
	dst, err := s.path(uri)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// 같은 디렉토리의 임시 파일에 쓴 뒤 link. link는 대상이 있으면 실패합니다.
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Link(tmp.Name(), dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrObjectExists, uri)
		}
		return fmt.Errorf("failed to move file: %w", err)
	}
	return nil
}

func (s *LocalStore) Exists(_ context.Context, uri string) (bool, error) {
	p, err := s.path(uri)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *LocalStore) Delete(_ context.Context, uri string) error {
	p, err := s.path(uri)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// PublicURL <base_url>/<scheme>/<path>
func (s *LocalStore) PublicURL(uri string) string {
	scheme, p, err := ParseURI(uri)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", s.baseURL, scheme, p)
}
