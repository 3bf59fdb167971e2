package entity

import "slices"

// Account 요청을 보낸 사용자
type Account struct {
	ID          string
	Email       string
	Roles       []string
	Permissions []string
	Anonymous   bool
}

// AnonymousAccount 인증되지 않은 요청의 계정
func AnonymousAccount() *Account {
	return &Account{Roles: []string{"anonymous"}, Anonymous: true}
}

// HasPermission 권한 보유 여부
func (a *Account) HasPermission(permission string) bool {
	return slices.Contains(a.Permissions, permission)
}

// HasRole 역할 보유 여부
func (a *Account) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

// AccessResult 접근 검사 결과
type AccessResult struct {
	Allowed bool
	Reason  string
}

// AccessAllowed 허용 결과
func AccessAllowed() AccessResult {
	return AccessResult{Allowed: true}
}

// AccessDenied 거부 결과, reason은 사용자에게 노출됩니다
func AccessDenied(reason string) AccessResult {
	return AccessResult{Reason: reason}
}
