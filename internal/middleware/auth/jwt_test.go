package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func runMiddleware(t *testing.T, cfg JWTConfig, authHeader string) (*entity.Account, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/jsonapi/node/article/field_image", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var account *entity.Account
	handler := JWTMiddleware(cfg)(func(c echo.Context) error {
		account = GetAccountFromContext(c)
		return nil
	})
	return account, handler(c)
}

func TestJWTMiddleware(t *testing.T) {
	valid := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":         "user-1",
		"email":       "user@semo.world",
		"roles":       []string{"editor"},
		"permissions": []string{"create article content", "edit own article content"},
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	expired := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	noSubject := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"email": "user@semo.world",
	})
	wrongKey := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "user-1"})

	tests := []struct {
		name           string
		optional       bool
		header         string
		expectedStatus int
		expectedID     string
		anonymous      bool
	}{
		{name: "valid token", header: "Bearer " + valid, expectedID: "user-1"},
		{name: "missing header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "missing header optional", optional: true, header: "", anonymous: true},
		{name: "no bearer prefix", header: valid, expectedStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, expectedStatus: http.StatusUnauthorized},
		{name: "expired optional", optional: true, header: "Bearer " + expired, expectedStatus: http.StatusUnauthorized},
		{name: "wrong key", header: "Bearer " + wrongKey, expectedStatus: http.StatusUnauthorized},
		{name: "no subject", header: "Bearer " + noSubject, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := runMiddleware(t, JWTConfig{Secret: testSecret, Logger: zap.NewNop(), Optional: tt.optional}, tt.header)

			if tt.expectedStatus != 0 {
				var he *echo.HTTPError
				require.ErrorAs(t, err, &he)
				assert.Equal(t, tt.expectedStatus, he.Code)
				assert.Nil(t, account)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, account)
			assert.Equal(t, tt.anonymous, account.Anonymous)
			if tt.expectedID != "" {
				assert.Equal(t, tt.expectedID, account.ID)
				assert.Equal(t, "user@semo.world", account.Email)
				assert.Equal(t, []string{"editor"}, account.Roles)
				assert.True(t, account.HasPermission("create article content"))
			}
		})
	}
}

func TestJWTMiddleware_RejectsNonHMAC(t *testing.T) {
	token := signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"sub": "user-1"})

	_, err := runMiddleware(t, JWTConfig{Secret: testSecret, Logger: zap.NewNop()}, "Bearer "+token)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestGetAccountFromContext_DefaultsToAnonymous(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	account := GetAccountFromContext(c)
	assert.True(t, account.Anonymous)
	assert.Equal(t, []string{"anonymous"}, account.Roles)
}
