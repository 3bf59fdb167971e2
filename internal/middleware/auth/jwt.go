package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
	apperrors "github.com/wekeepgrowing/semo-upload/pkg/errors"
	"go.uber.org/zap"
)

// contextKey is used for storing the account in context
type contextKey string

const (
	accountContextKey contextKey = "authenticated_account"
)

// JWTConfig holds the configuration for JWT middleware
type JWTConfig struct {
	Secret    string
	Logger    *zap.Logger
	SkipPaths []string // Paths to skip JWT validation
	// Optional이면 Authorization 헤더 없는 요청을 익명 계정으로 통과시킵니다.
	// 잘못된 토큰은 Optional이어도 거부합니다.
	Optional bool
}

// JWTMiddleware validates HS256 bearer tokens and stores the account in the request context
//
// Claims: sub (계정 ID), email, roles, permissions
func JWTMiddleware(config JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, skipPath := range config.SkipPaths {
				if strings.HasPrefix(path, skipPath) {
					return next(c)
				}
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				if config.Optional {
					setAccount(c, entity.AnonymousAccount())
					return next(c)
				}
				config.Logger.Warn("Missing authorization header",
					zap.String("path", path),
					zap.String("method", c.Request().Method))
				return unauthenticated("MISSING_AUTH_HEADER", "Authorization header required")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				config.Logger.Warn("Invalid authorization header format",
					zap.String("path", path))
				return unauthenticated("INVALID_AUTH_FORMAT", "Invalid authorization header format. Expected: Bearer <token>")
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(config.Secret), nil
			})
			if err != nil {
				config.Logger.Warn("JWT validation failed",
					zap.Error(err),
					zap.String("path", path))
				return unauthenticated("INVALID_TOKEN", "Invalid or expired token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || !token.Valid {
				config.Logger.Warn("Invalid JWT claims", zap.String("path", path))
				return unauthenticated("INVALID_CLAIMS", "Invalid token claims")
			}

			subject, _ := claims.GetSubject()
			if subject == "" {
				config.Logger.Warn("JWT without subject", zap.String("path", path))
				return unauthenticated("INVALID_CLAIMS", "Invalid token claims")
			}

			email, _ := claims["email"].(string)
			account := &entity.Account{
				ID:          subject,
				Email:       email,
				Roles:       stringSlice(claims["roles"]),
				Permissions: stringSlice(claims["permissions"]),
			}
			setAccount(c, account)
			c.Set("user_id", subject)

			config.Logger.Debug("User authenticated successfully",
				zap.String("user_id", subject),
				zap.String("path", path))

			return next(c)
		}
	}
}

// GetAccountFromContext returns the authenticated account, or an anonymous account
func GetAccountFromContext(c echo.Context) *entity.Account {
	account, ok := c.Request().Context().Value(accountContextKey).(*entity.Account)
	if !ok || account == nil {
		return entity.AnonymousAccount()
	}
	return account
}

func setAccount(c echo.Context, account *entity.Account) {
	ctx := context.WithValue(c.Request().Context(), accountContextKey, account)
	c.SetRequest(c.Request().WithContext(ctx))
}

func unauthenticated(reason, message string) error {
	return apperrors.ToHTTPError(apperrors.NewAppError(apperrors.ErrUnauthenticated, message, apperrors.New(reason)))
}

// stringSlice JSON 배열 클레임을 문자열 슬라이스로 변환합니다
func stringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
