package storage

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// 실행 가능한 스크립트로 해석될 수 있는 확장자
var dangerousExtensionRegex = regexp.MustCompile(`(?i)\.(phar|php\d?|phtml|pl|py|cgi|asp|js)(\.|$)`)

// NormalizeFilename 파일명을 NFC로 정규화합니다
func NormalizeFilename(name string) string {
	return norm.NFC.String(name)
}

// MungeFilename 허용되지 않은 중간 확장자에 밑줄을 붙여 실행을 막습니다
// exploit.php.png -> exploit.php_.png
// 허용 확장자 목록이 비어 있으면 위험한 확장자 뒤에 .txt를 붙입니다.
func MungeFilename(name string, allowed []string) string {
	if len(allowed) == 0 {
		if dangerousExtensionRegex.MatchString(name) && !strings.HasSuffix(strings.ToLower(name), ".txt") {
			return name + ".txt"
		}
		return name
	}

	parts := strings.Split(name, ".")
	if len(parts) < 3 {
		return name
	}

	base, last := parts[0], parts[len(parts)-1]
	var b strings.Builder
	b.WriteString(base)
	for _, part := range parts[1 : len(parts)-1] {
		b.WriteString(".")
		b.WriteString(part)
		if !slices.Contains(allowed, strings.ToLower(part)) {
			b.WriteString("_")
		}
	}
	b.WriteString(".")
	b.WriteString(last)
	return b.String()
}

// Extension 소문자 확장자 (점 제외), 없으면 빈 문자열
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// CollisionName 충돌 시 사용할 n번째 대체 파일명 (photo.png -> photo_0.png)
func CollisionName(name string, n int) string {
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i > 0 {
		base, ext = name[:i], name[i:]
	}
	return base + "_" + strconv.Itoa(n) + ext
}

// ResolveDirectory 디렉토리 설정의 날짜 토큰을 치환합니다
func ResolveDirectory(dir string, now time.Time) string {
	replacer := strings.NewReplacer(
		"[date:custom:Y]", now.Format("2006"),
		"[date:custom:m]", now.Format("01"),
		"[date:custom:d]", now.Format("02"),
	)
	return strings.Trim(replacer.Replace(dir), "/")
}
