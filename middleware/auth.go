package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/Carlostavo/residuos-api/config"
)

// CustomClaims contains the custom data carried by the backend's
// access tokens.
type CustomClaims struct {
	Email string `json:"email"`
}

// Validate does nothing for this service, but we need it to satisfy the
// validator.CustomClaims interface.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// EnsureValidToken is a middleware that will check the validity of the
// access token issued by the auth backend. The backend signs its tokens
// with the project's JWT secret (HS256), so validation happens locally
// without a round trip.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	issuer := strings.TrimRight(cfg.AuthURL, "/") + "/auth/v1"

	keyFunc := func(ctx context.Context) (interface{}, error) {
		return []byte(cfg.AuthJWTSecret), nil
	}

	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		issuer,
		[]string{"authenticated"},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		log.Fatalf("Failed to set up the jwt validator")
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("Encountered error while validating JWT: %v", err)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Sesión inválida o expirada."}}`)); writeErr != nil {
			log.Printf("Failed to write error response: %v", writeErr)
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			// Store the validated claims in Gin context
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			// The subject claim carries the identity id
			c.Set("identity_id", token.RegisteredClaims.Subject)
			if claims, ok := token.CustomClaims.(*CustomClaims); ok {
				c.Set("identity_email", claims.Email)
			}

			// Keep the raw token around: logout and password updates are
			// performed against the backend with the caller's own session.
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				c.Set("access_token", strings.TrimPrefix(h, "Bearer "))
			}

			c.Next()
		}

		// Use the JWT middleware to check the token
		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
	}
}

// GetIdentityID extracts the verified identity id from the Gin context
func GetIdentityID(c *gin.Context) (string, error) {
	identityID, exists := c.Get("identity_id")
	if !exists {
		return "", &AuthError{Code: "MISSING_IDENTITY", Message: "Identity not found in context"}
	}

	idStr, ok := identityID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_IDENTITY", Message: "Identity id is not a string"}
	}

	return idStr, nil
}

// GetIdentityEmail extracts the verified email from the Gin context.
// A missing email is not an error; not every token carries one.
func GetIdentityEmail(c *gin.Context) string {
	if email, exists := c.Get("identity_email"); exists {
		if emailStr, ok := email.(string); ok {
			return emailStr
		}
	}
	return ""
}

// GetAccessToken extracts the raw access token from the Gin context
func GetAccessToken(c *gin.Context) (string, error) {
	token, exists := c.Get("access_token")
	if !exists {
		return "", &AuthError{Code: "MISSING_TOKEN", Message: "Access token not found in context"}
	}

	tokenStr, ok := token.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_TOKEN", Message: "Access token is not a string"}
	}

	return tokenStr, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
