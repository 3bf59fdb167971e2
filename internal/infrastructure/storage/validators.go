package storage

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const maxFilenameLength = 240

var supportedImageExtensions = []string{"png", "gif", "jpg", "jpeg", "bmp", "tif", "tiff", "webp"}

// ParseMaxFilesize "2 MB" 같은 크기 문자열을 바이트로 변환합니다. 빈 값은 0(제한 없음)입니다.
func ParseMaxFilesize(value string) (int64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	size, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("invalid max filesize %q: %w", value, err)
	}
	return int64(size), nil
}

// parseResolution "WxH" 형식 해석, 빈 값은 0, 0
func parseResolution(value string) (int, int, error) {
	if value == "" {
		return 0, 0, nil
	}
	w, h, ok := strings.Cut(strings.ToLower(value), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid resolution %q", value)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resolution %q: %w", value, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resolution %q: %w", value, err)
	}
	return width, height, nil
}

func validateFilenameLength(name string, v *entity.Violations) {
	if name == "" {
		v.Add("filename", "The file's name is empty. Please give a name to the file.")
		return
	}
	if utf8.RuneCountInString(name) > maxFilenameLength {
		v.Add("filename", fmt.Sprintf("The file's name exceeds the %d characters limit. Please rename the file and try again.", maxFilenameLength))
	}
}

func validateExtension(name string, allowed []string, v *entity.Violations) {
	if len(allowed) == 0 {
		return
	}
	if !slices.Contains(allowed, Extension(name)) {
		v.Add("filename", fmt.Sprintf("Only files with the following extensions are allowed: %s.", strings.Join(allowed, " ")))
	}
}

func validateSize(size, maxSize int64, v *entity.Violations) {
	if maxSize > 0 && size > maxSize {
		v.Add("filesize", fmt.Sprintf("The file is %s exceeding the maximum file size of %s.",
			humanize.Bytes(uint64(size)), humanize.Bytes(uint64(maxSize))))
	}
}

// validateImage 이미지 형식과 해상도 검사. 설정 오류만 error로 반환합니다.
func validateImage(path string, settings entity.FileSettings, v *entity.Violations) error {
	maxW, maxH, err := parseResolution(settings.MaxResolution)
	if err != nil {
		return err
	}
	minW, minH, err := parseResolution(settings.MinResolution)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		v.Add("image", fmt.Sprintf("The image file is invalid or the image type is not allowed. Allowed types: %s",
			strings.Join(supportedImageExtensions, ", ")))
		return nil
	}

	if maxW > 0 && maxH > 0 && (cfg.Width > maxW || cfg.Height > maxH) {
		v.Add("image", fmt.Sprintf("The image is too large; the maximum dimensions are %dx%d pixels.", maxW, maxH))
	}
	if minW > 0 && minH > 0 && (cfg.Width < minW || cfg.Height < minH) {
		v.Add("image", fmt.Sprintf("The image is too small. The minimum dimensions are %dx%d pixels and the image size is %dx%d pixels.",
			minW, minH, cfg.Width, cfg.Height))
	}
	return nil
}
