package access

import (
	"context"
	"fmt"
	"slices"

	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
)

// PolicyAccessChecker JWT 클레임의 역할/권한으로 업로드 접근을 판단합니다
//
// 새 리소스: "create <bundle> content"
// 기존 엔티티: "edit any <bundle> content" 또는 소유자이면서 "edit own <bundle> content"
// "administer <entity_type>" 권한은 모든 검사를 통과합니다.
type PolicyAccessChecker struct {
	// role -> 잠긴 필드 목록 ("<entity_type>.<bundle>.<field_name>")
	lockedFields map[string][]string
}

// NewPolicyAccessChecker PolicyAccessChecker 생성
func NewPolicyAccessChecker(lockedFields map[string][]string) *PolicyAccessChecker {
	if lockedFields == nil {
		lockedFields = map[string][]string{}
	}
	return &PolicyAccessChecker{lockedFields: lockedFields}
}

func (c *PolicyAccessChecker) CheckUploadAccess(_ context.Context, account *entity.Account, field *entity.FieldDefinition, target *entity.Entity) (entity.AccessResult, error) {
	if account.HasPermission("administer " + field.EntityTypeID) {
		return entity.AccessAllowed(), nil
	}

	if target == nil {
		create := fmt.Sprintf("create %s content", field.Bundle)
		if !account.HasPermission(create) {
			return entity.AccessDenied(fmt.Sprintf("The '%s' permission is required.", create)), nil
		}
	} else {
		editAny := fmt.Sprintf("edit any %s content", field.Bundle)
		editOwn := fmt.Sprintf("edit own %s content", field.Bundle)
		ownsTarget := target.IsOwnedBy(account.ID) && account.HasPermission(editOwn)
		if !account.HasPermission(editAny) && !ownsTarget {
			return entity.AccessDenied(fmt.Sprintf("The following permissions are required: '%s' OR '%s'.", editAny, editOwn)), nil
		}
	}

	key := fmt.Sprintf("%s.%s.%s", field.EntityTypeID, field.Bundle, field.Name)
	for _, role := range account.Roles {
		if slices.Contains(c.lockedFields[role], key) {
			return entity.AccessDenied(fmt.Sprintf("The field '%s' cannot be edited by the '%s' role.", field.Name, role)), nil
		}
	}

	return entity.AccessAllowed(), nil
}
