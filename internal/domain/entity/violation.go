package entity

import "strings"

// Violation 검증 규칙 위반 하나
type Violation struct {
	PropertyPath string
	Message      string
}

// Violations 위반 목록
type Violations []Violation

// Add 위반을 추가합니다
func (v *Violations) Add(propertyPath, message string) {
	*v = append(*v, Violation{PropertyPath: propertyPath, Message: message})
}

// Messages 위반 메시지 목록
func (v Violations) Messages() []string {
	messages := make([]string, 0, len(v))
	for _, violation := range v {
		messages = append(messages, violation.Message)
	}
	return messages
}

// String 메시지를 줄바꿈으로 연결합니다
func (v Violations) String() string {
	return strings.Join(v.Messages(), "\n")
}
