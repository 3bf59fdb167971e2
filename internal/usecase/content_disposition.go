package usecase

import (
	"fmt"
	"regexp"
	"strings"
)

// filename="..." 또는 filename*="..." 를 찾습니다. 빈 파일명은 허용하지 않고,
// 단어 경계로 not_a_filename= 같은 키는 제외합니다.
var contentDispositionFilenameRegex = regexp.MustCompile(`\bfilename(\*?)="(.+)"`)

// ParseContentDispositionFilename Content-Disposition 헤더에서 파일명을 추출합니다
// 경로 정보는 제거하고 파일명 부분만 반환합니다. 파일명 자체의 검증은 업로드 단계에서 합니다.
func ParseContentDispositionFilename(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", newContentDispositionError(`"Content-Disposition" header is required. A file name in the format "filename=FILENAME" must be provided.`)
	}

	matches := contentDispositionFilenameRegex.FindStringSubmatch(header)
	if matches == nil {
		return "", newContentDispositionError(`No filename found in "Content-Disposition" header. A file name in the format "filename=FILENAME" must be provided.`)
	}

	if matches[1] != "" {
		return "", newContentDispositionError(`The extended "filename*" format is currently not supported in the "Content-Disposition" header.`)
	}

	filename := basename(matches[2])
	if filename == "" || filename == "." || filename == ".." || strings.ContainsRune(filename, 0) {
		return "", newContentDispositionError(fmt.Sprintf("The file name %q in the \"Content-Disposition\" header is not valid.", matches[2]))
	}

	return filename, nil
}

// basename / 와 \ 모두를 경로 구분자로 보고 마지막 요소를 반환합니다
func basename(name string) string {
	name = strings.TrimRight(name, `/\`)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}
