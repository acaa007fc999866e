package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Carlostavo/residuos-api/middleware"
	"github.com/Carlostavo/residuos-api/services"
)

// AuthController exposes the session endpoints: login, logout, the
// resolved session, and the two password-reset flows.
type AuthController struct {
	provider services.IdentityProvider
	accounts *services.AccountService
	resolver *services.SessionResolver
}

// NewAuthController creates the session controller
func NewAuthController(provider services.IdentityProvider, accounts *services.AccountService, resolver *services.SessionResolver) *AuthController {
	return &AuthController{provider: provider, accounts: accounts, resolver: resolver}
}

// LoginRequest represents the credentials form
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest represents the self-service reset form
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest represents the new-password form shown after the
// recovery link was followed
type ResetPasswordRequest struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// Login handles POST /api/v1/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	identity, token, err := ac.provider.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CREDENTIALS",
				"message": err.Error(),
			},
		})
		return
	}

	caller := ac.resolver.Resolve(c.Request.Context(), identity.ID, identity.Email)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"access_token": token,
		"user":         identity,
		"profile":      caller.Profile,
	})
}

// Logout handles POST /api/v1/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	token, err := middleware.GetAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_TOKEN",
				"message": "Access token not found",
			},
		})
		return
	}

	if err := ac.provider.SignOut(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Sesión cerrada exitosamente",
	})
}

// Me handles GET /api/v1/auth/me. The profile is null when the profile
// row could not be read; the identity itself is still returned.
func (ac *AuthController) Me(c *gin.Context) {
	identityID, err := middleware.GetIdentityID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	caller := ac.resolver.Resolve(c.Request.Context(), identityID, middleware.GetIdentityEmail(c))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":    caller.ID,
			"email": caller.Email,
		},
		"profile": caller.Profile,
	})
}

// ForgotPassword handles POST /api/v1/auth/forgot-password
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := ac.accounts.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Se ha enviado un correo de recuperación a tu cuenta. Revisa tu bandeja de entrada y spam.",
	})
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	token, err := middleware.GetAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_TOKEN",
				"message": "Access token not found",
			},
		})
		return
	}

	if err := ac.accounts.UpdateOwnPassword(c.Request.Context(), token, req.Password, req.ConfirmPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Contraseña actualizada exitosamente",
	})
}
