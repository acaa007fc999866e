package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// MintAccessToken signs an access token equivalent to what the auth
// backend issues for a logged-in identity. The issuer must be the
// backend's base URL plus /auth/v1, matching what the validating
// middleware expects.
func MintAccessToken(t *testing.T, secret, authURL, subject, email string) string {
	t.Helper()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":   strings.TrimRight(authURL, "/") + "/auth/v1",
		"aud":   "authenticated",
		"sub":   subject,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}

// SetMockAuthContext seeds a Gin context with the keys the token
// middleware would set after validating a request.
func SetMockAuthContext(c *gin.Context, identityID, email, accessToken string) {
	c.Set("identity_id", identityID)
	c.Set("identity_email", email)
	c.Set("access_token", accessToken)
}

// MockAuthMiddleware returns a middleware impersonating the given
// identity, for tests that exercise handlers without real tokens.
func MockAuthMiddleware(identityID, email, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, identityID, email, accessToken)
		c.Next()
	}
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
