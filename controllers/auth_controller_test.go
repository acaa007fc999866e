package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/Carlostavo/residuos-api/models"
	"github.com/Carlostavo/residuos-api/services"
)

// setupAuthRouter wires the auth routes. identityID may be empty for
// the public endpoints.
func setupAuthRouter(t *testing.T, identityID, email string) testEnv {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	mock := services.NewMockIdentityProvider()
	zl := zerolog.Nop()

	resolver := services.NewSessionResolver(db, zl)
	accounts := services.NewAccountService(db, mock, testConfig(), zl)
	controller := NewAuthController(mock, accounts, resolver)

	router := gin.New()
	auth := router.Group("/api/v1/auth")
	auth.POST("/login", controller.Login)
	auth.POST("/forgot-password", controller.ForgotPassword)

	protected := auth.Group("", mockAuthMiddleware(identityID, email, "token-"+identityID))
	protected.GET("/me", controller.Me)
	protected.POST("/logout", controller.Logout)
	protected.POST("/reset-password", controller.ResetPassword)

	return testEnv{router: router, mock: mock, db: db}
}

func TestLogin(t *testing.T) {
	env := setupAuthRouter(t, "", "")
	env.mock.Seed("u1", "user@example.com", "secret123")
	seedProfile(t, env.db, "u1", "user@example.com", "Usuario Uno", models.RoleAdmin, true)

	w := doJSON(t, env.router, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "user@example.com",
		"password": "secret123",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "token-u1", response["access_token"])

	profile := response["profile"].(map[string]any)
	assert.Equal(t, "admin", profile["role"])
}

func TestLoginWrongPassword(t *testing.T) {
	env := setupAuthRouter(t, "", "")
	env.mock.Seed("u1", "user@example.com", "secret123")

	w := doJSON(t, env.router, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "user@example.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	response := decodeResponse(t, w)
	errBody := response["error"].(map[string]any)
	assert.Equal(t, "INVALID_CREDENTIALS", errBody["code"])
}

// A login whose profile row is unreadable still succeeds; the profile
// comes back null and the frontend treats the user as role-less.
func TestLoginWithoutProfileRow(t *testing.T) {
	env := setupAuthRouter(t, "", "")
	env.mock.Seed("u1", "user@example.com", "secret123")

	w := doJSON(t, env.router, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "user@example.com",
		"password": "secret123",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, true, response["success"])
	assert.Nil(t, response["profile"])
}

func TestMe(t *testing.T) {
	env := setupAuthRouter(t, "u1", "user@example.com")
	seedProfile(t, env.db, "u1", "user@example.com", "Usuario Uno", models.RoleTecnico, true)

	w := doJSON(t, env.router, http.MethodGet, "/api/v1/auth/me", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeResponse(t, w)
	user := response["user"].(map[string]any)
	assert.Equal(t, "u1", user["id"])
	profile := response["profile"].(map[string]any)
	assert.Equal(t, "tecnico", profile["role"])
}

func TestLogout(t *testing.T) {
	env := setupAuthRouter(t, "u1", "user@example.com")

	w := doJSON(t, env.router, http.MethodPost, "/api/v1/auth/logout", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.mock.Calls("SignOut"))
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	env := setupAuthRouter(t, "", "")

	w := doJSON(t, env.router, http.MethodPost, "/api/v1/auth/forgot-password", gin.H{
		"email": "desconocido@example.com",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeResponse(t, w)
	errBody := response["error"].(map[string]any)
	assert.Equal(t, "EMAIL_NOT_FOUND", errBody["code"])
	assert.Equal(t, "No existe una cuenta registrada con este correo electrónico", errBody["message"])
	assert.Equal(t, 0, env.mock.Calls("SendPasswordResetEmail"))
}

func TestForgotPasswordKnownEmail(t *testing.T) {
	env := setupAuthRouter(t, "", "")
	seedProfile(t, env.db, "u1", "user@example.com", "Usuario", models.RoleTecnico, true)

	w := doJSON(t, env.router, http.MethodPost, "/api/v1/auth/forgot-password", gin.H{
		"email": "user@example.com",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.mock.Calls("SendPasswordResetEmail"))
}

func TestResetPassword(t *testing.T) {
	env := setupAuthRouter(t, "u1", "user@example.com")
	env.mock.Seed("u1", "user@example.com", "oldpassword")

	w := doJSON(t, env.router, http.MethodPost, "/api/v1/auth/reset-password", gin.H{
		"password":         "nueva123",
		"confirm_password": "distinta",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeResponse(t, w)
	errBody := response["error"].(map[string]any)
	assert.Equal(t, "PASSWORD_MISMATCH", errBody["code"])

	w = doJSON(t, env.router, http.MethodPost, "/api/v1/auth/reset-password", gin.H{
		"password":         "nueva123",
		"confirm_password": "nueva123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.mock.Calls("UpdateOwnPassword"))
}
