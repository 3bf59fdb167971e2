package entity

// UploadResult 업로드 결과. 저장된 파일 또는 검증 위반 목록 중 하나만 가집니다.
type UploadResult struct {
	file       *File
	violations Violations
}

// UploadOK 성공 결과
func UploadOK(file *File) UploadResult {
	return UploadResult{file: file}
}

// UploadInvalid 검증 실패 결과. 위반이 비어 있으면 안 됩니다.
func UploadInvalid(violations Violations) UploadResult {
	if len(violations) == 0 {
		panic("entity: UploadInvalid requires at least one violation")
	}
	return UploadResult{violations: violations}
}

// File 성공한 경우 저장된 파일을 반환합니다
func (r UploadResult) File() (*File, bool) {
	return r.file, r.file != nil
}

// Violations 실패한 경우 위반 목록을 반환합니다
func (r UploadResult) Violations() Violations {
	return r.violations
}

// IsValid 성공 여부
func (r UploadResult) IsValid() bool {
	return r.file != nil
}
