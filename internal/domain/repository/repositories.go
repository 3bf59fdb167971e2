package repository

// Repositories 모든 레포지토리 인터페이스의 컬렉션
type Repositories struct {
	Field  FieldRepository
	File   FileRepository
	Entity EntityRepository
}

// NewRepositories 모든 레포지토리를 포함하는 컬렉션 생성
func NewRepositories(fieldRepo FieldRepository, fileRepo FileRepository, entityRepo EntityRepository) *Repositories {
	return &Repositories{
		Field:  fieldRepo,
		File:   fileRepo,
		Entity: entityRepo,
	}
}
