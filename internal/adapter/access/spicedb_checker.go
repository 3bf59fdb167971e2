package access

import (
	"context"
	"fmt"
	"time"

	authzedpb "github.com/authzed/authzed-go/proto/authzed/api/v1"
	"github.com/authzed/authzed-go/v1"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
	"github.com/wekeepgrowing/semo-upload/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	defaultCheckTimeout = 5 * time.Second

	permissionCreate = "create"
	permissionUpdate = "update"
	subjectTypeUser  = "user"
)

// PermissionChecker SpiceDB 클라이언트 중 권한 확인에 필요한 메서드
type PermissionChecker interface {
	CheckPermission(ctx context.Context, in *authzedpb.CheckPermissionRequest, opts ...grpc.CallOption) (*authzedpb.CheckPermissionResponse, error)
}

// SpiceDBAccessChecker SpiceDB 관계 기반 업로드 접근 검사
//
// 새 리소스: <entity_type>_<bundle>:<bundle> 의 create 권한
// 기존 엔티티: <entity_type>:<entity id> 의 update 권한
type SpiceDBAccessChecker struct {
	client  PermissionChecker
	timeout time.Duration
	logger  *zap.Logger
}

// NewSpiceDBClient SpiceDB 클라이언트 생성
func NewSpiceDBClient(address, token string, log *zap.Logger) (*authzed.Client, error) {
	client, err := authzed.NewClient(
		address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithPerRPCCredentials(tokenAuth{token: token}),
		grpc.WithUnaryInterceptor(logger.NewGrpcUnaryClientInterceptor(log)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authzed client: %w", err)
	}
	return client, nil
}

// NewSpiceDBAccessChecker SpiceDBAccessChecker 생성
func NewSpiceDBAccessChecker(client PermissionChecker, logger *zap.Logger) *SpiceDBAccessChecker {
	return &SpiceDBAccessChecker{
		client:  client,
		timeout: defaultCheckTimeout,
		logger:  logger,
	}
}

func (c *SpiceDBAccessChecker) CheckUploadAccess(ctx context.Context, account *entity.Account, field *entity.FieldDefinition, target *entity.Entity) (entity.AccessResult, error) {
	if account.Anonymous || account.ID == "" {
		return entity.AccessDenied("Authentication is required."), nil
	}

	resource := &authzedpb.ObjectReference{
		ObjectType: fmt.Sprintf("%s_%s", field.EntityTypeID, field.Bundle),
		ObjectId:   field.Bundle,
	}
	permission := permissionCreate
	if target != nil {
		resource = &authzedpb.ObjectReference{
			ObjectType: field.EntityTypeID,
			ObjectId:   target.ID.String(),
		}
		permission = permissionUpdate
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CheckPermission(ctx, &authzedpb.CheckPermissionRequest{
		Resource: resource,
		Subject: &authzedpb.SubjectReference{
			Object: &authzedpb.ObjectReference{
				ObjectType: subjectTypeUser,
				ObjectId:   account.ID,
			},
		},
		Permission: permission,
	})
	if err != nil {
		return entity.AccessResult{}, fmt.Errorf("failed to check permission: %w", err)
	}

	if resp.Permissionship != authzedpb.CheckPermissionResponse_PERMISSIONSHIP_HAS_PERMISSION {
		c.logger.Debug("SpiceDB 권한 없음",
			zap.String("resource", resource.ObjectType+":"+resource.ObjectId),
			zap.String("permission", permission),
			zap.String("subject", account.ID),
			zap.String("permissionship", resp.Permissionship.String()),
		)
		return entity.AccessDenied(fmt.Sprintf("The '%s' permission on %s:%s is required.", permission, resource.ObjectType, resource.ObjectId)), nil
	}
	return entity.AccessAllowed(), nil
}

// tokenAuth implements the PerRPCCredentials interface.
type tokenAuth struct {
	token string
}

// GetRequestMetadata adds the authorization header with the token.
func (t tokenAuth) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{
		"authorization": "Bearer " + t.token,
	}, nil
}

// RequireTransportSecurity returns false because we're using insecure credentials.
func (t tokenAuth) RequireTransportSecurity() bool {
	return false
}
