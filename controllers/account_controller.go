package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Carlostavo/residuos-api/middleware"
	"github.com/Carlostavo/residuos-api/services"
)

// AccountController exposes the admin-only account administration
// endpoints. Authorization happens inside the account service so the
// admin check is part of the operation contract, not the routing.
type AccountController struct {
	accounts *services.AccountService
	resolver *services.SessionResolver
}

// NewAccountController creates the account administration controller
func NewAccountController(accounts *services.AccountService, resolver *services.SessionResolver) *AccountController {
	return &AccountController{accounts: accounts, resolver: resolver}
}

// CreateUserRequest represents the request body for creating an account
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// UpdateUserRequest represents the request body for updating an account
type UpdateUserRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// ToggleActiveRequest carries the state recorded by the admin UI; the
// operation flips it.
type ToggleActiveRequest struct {
	CurrentState *bool `json:"current_state" binding:"required"`
}

// ResetEmailRequest represents the request body for an admin-triggered
// recovery email
type ResetEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// caller resolves the session of the authenticated requester
func (ac *AccountController) caller(c *gin.Context) *services.Caller {
	identityID, err := middleware.GetIdentityID(c)
	if err != nil {
		return nil
	}
	return ac.resolver.Resolve(c.Request.Context(), identityID, middleware.GetIdentityEmail(c))
}

// CreateUser handles POST /api/v1/admin/users
func (ac *AccountController) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	err := ac.accounts.CreateAccount(c.Request.Context(), ac.caller(c), services.CreateAccountInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Usuario creado exitosamente. Se ha enviado un correo de invitación para configurar la contraseña.",
	})
}

// ListUsers handles GET /api/v1/admin/users
func (ac *AccountController) ListUsers(c *gin.Context) {
	profiles, err := ac.accounts.ListAccounts(c.Request.Context(), ac.caller(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   profiles,
	})
}

// UpdateUser handles PUT /api/v1/admin/users/:id
func (ac *AccountController) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := ac.accounts.UpdateAccount(c.Request.Context(), ac.caller(c), c.Param("id"), req.FullName, req.Role); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Usuario actualizado exitosamente",
	})
}

// DeleteUser handles DELETE /api/v1/admin/users/:id
func (ac *AccountController) DeleteUser(c *gin.Context) {
	if err := ac.accounts.DeleteAccount(c.Request.Context(), ac.caller(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Usuario eliminado exitosamente",
	})
}

// ToggleActive handles PATCH /api/v1/admin/users/:id/active
func (ac *AccountController) ToggleActive(c *gin.Context) {
	var req ToggleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	newState, err := ac.accounts.ToggleActive(c.Request.Context(), ac.caller(c), c.Param("id"), *req.CurrentState)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"is_active": newState,
	})
}

// SendResetEmail handles POST /api/v1/admin/users/reset-email
func (ac *AccountController) SendResetEmail(c *gin.Context) {
	var req ResetEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := ac.accounts.SendPasswordResetEmail(c.Request.Context(), ac.caller(c), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Correo de recuperación enviado exitosamente. El usuario recibirá las instrucciones en su bandeja.",
	})
}
