package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Carlostavo/residuos-api/config"
	"github.com/Carlostavo/residuos-api/models"
	"github.com/Carlostavo/residuos-api/pkg/metrics"
)

// AccountService implements the account administration operations. Each
// privileged operation re-checks the admin role of the caller before
// touching the auth backend or the profile store; a denied caller
// causes zero provider calls.
type AccountService struct {
	db       *gorm.DB
	provider IdentityProvider
	cfg      *config.Config
	log      zerolog.Logger
}

// NewAccountService creates the account administration service
func NewAccountService(db *gorm.DB, provider IdentityProvider, cfg *config.Config, log zerolog.Logger) *AccountService {
	return &AccountService{db: db, provider: provider, cfg: cfg, log: log}
}

// CreateAccountInput carries the fields of a new account
type CreateAccountInput struct {
	Email    string
	Password string
	FullName string
	Role     string
}

// CreateAccount registers a new identity with the auth backend, inserts
// its profile row and sends the invitation email. If the profile insert
// fails the just-created identity is deleted again so no orphan
// identity remains.
func (s *AccountService) CreateAccount(ctx context.Context, caller *Caller, in CreateAccountInput) error {
	if !caller.IsAdmin() {
		return s.record("create", notAdmin("No tienes permisos para crear usuarios"))
	}
	if !models.ValidRole(in.Role) {
		return s.record("create", &ValidationError{Code: "INVALID_ROLE", Message: "El rol debe ser admin o tecnico"})
	}
	if len(in.Password) < 6 {
		return s.record("create", &ValidationError{Code: "PASSWORD_TOO_SHORT", Message: "La contraseña debe tener al menos 6 caracteres"})
	}

	// Reject duplicates before creating the identity
	var existing models.Profile
	err := s.db.WithContext(ctx).Select("email").Where("email = ?", in.Email).First(&existing).Error
	if err == nil {
		return s.record("create", &ValidationError{Code: "EMAIL_EXISTS", Message: "Ya existe un usuario con este correo electrónico"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return s.record("create", storeError(err))
	}

	identity, err := s.provider.CreateIdentity(ctx, in.Email, in.Password, true, map[string]any{
		"full_name": in.FullName,
		"role":      in.Role,
	})
	if err != nil {
		return s.record("create", providerError(err))
	}

	profile := models.Profile{
		ID:       identity.ID,
		Email:    in.Email,
		FullName: &in.FullName,
		Role:     in.Role,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		// Compensating deletion: without a profile row the identity is
		// unusable, so it must not survive the failure.
		if delErr := s.provider.DeleteIdentity(ctx, identity.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("identity_id", identity.ID).Msg("rollback of orphan identity failed")
		}
		return s.record("create", storeError(err))
	}

	// Invitation email is best-effort: the account exists either way.
	if err := s.provider.SendPasswordResetEmail(ctx, in.Email, s.cfg.ResetRedirectURL(true)); err != nil {
		s.log.Warn().Err(err).Str("email", in.Email).Msg("invitation email failed")
	}

	return s.record("create", nil)
}

// ListAccounts returns every profile, newest first.
func (s *AccountService) ListAccounts(ctx context.Context, caller *Caller) ([]models.Profile, error) {
	if !caller.IsAdmin() {
		return []models.Profile{}, s.record("list", notAdmin("No tienes permisos para ver usuarios"))
	}

	profiles := []models.Profile{}
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&profiles).Error; err != nil {
		return []models.Profile{}, s.record("list", storeError(err))
	}
	return profiles, s.record("list", nil)
}

// UpdateAccount changes the display name and role of a profile.
func (s *AccountService) UpdateAccount(ctx context.Context, caller *Caller, id, fullName, role string) error {
	if !caller.IsAdmin() {
		return s.record("update", notAdmin("No tienes permisos para actualizar usuarios"))
	}
	if !models.ValidRole(role) {
		return s.record("update", &ValidationError{Code: "INVALID_ROLE", Message: "El rol debe ser admin o tecnico"})
	}

	updates := map[string]any{"full_name": fullName, "role": role}
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return s.record("update", storeError(err))
	}
	return s.record("update", nil)
}

// DeleteAccount removes the identity from the auth backend and the
// profile row with it. Admins cannot delete their own account.
func (s *AccountService) DeleteAccount(ctx context.Context, caller *Caller, id string) error {
	if !caller.IsAdmin() {
		return s.record("delete", notAdmin("No tienes permisos para eliminar usuarios"))
	}
	if caller.ID == id {
		return s.record("delete", &AuthorizationError{Code: "SELF_DELETE", Message: "No puedes eliminarte a ti mismo"})
	}

	if err := s.provider.DeleteIdentity(ctx, id); err != nil {
		return s.record("delete", providerError(err))
	}
	if err := s.db.WithContext(ctx).Delete(&models.Profile{}, "id = ?", id).Error; err != nil {
		return s.record("delete", storeError(err))
	}
	return s.record("delete", nil)
}

// ToggleActive flips the active flag of an account. The profile column
// is the canonical location; the identity metadata is mirrored so
// backend-side consumers see the same flag.
func (s *AccountService) ToggleActive(ctx context.Context, caller *Caller, id string, currentState bool) (bool, error) {
	if !caller.IsAdmin() {
		return currentState, s.record("toggle_active", notAdmin("No tienes permisos para actualizar usuarios"))
	}

	newState := !currentState
	if err := s.provider.UpdateIdentityMetadata(ctx, id, map[string]any{"is_active": newState}); err != nil {
		return currentState, s.record("toggle_active", providerError(err))
	}
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("is_active", newState).Error; err != nil {
		return currentState, s.record("toggle_active", storeError(err))
	}
	return newState, s.record("toggle_active", nil)
}

// SendPasswordResetEmail triggers a recovery email for an account on
// behalf of an administrator.
func (s *AccountService) SendPasswordResetEmail(ctx context.Context, caller *Caller, email string) error {
	if !caller.IsAdmin() {
		return s.record("reset_email", notAdmin("No tienes permisos para enviar correos"))
	}

	if err := s.provider.SendPasswordResetEmail(ctx, email, s.cfg.ResetRedirectURL(false)); err != nil {
		return s.record("reset_email", providerError(err))
	}
	return s.record("reset_email", nil)
}

// RequestPasswordReset is the self-service "forgot password" flow. The
// email must belong to a registered account.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	var profile models.Profile
	err := s.db.WithContext(ctx).Select("email").Where("email = ?", email).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.record("forgot_password", &ValidationError{Code: "EMAIL_NOT_FOUND", Message: "No existe una cuenta registrada con este correo electrónico"})
	}
	if err != nil {
		return s.record("forgot_password", storeError(err))
	}

	if err := s.provider.SendPasswordResetEmail(ctx, email, s.cfg.ResetRedirectURL(false)); err != nil {
		return s.record("forgot_password", providerError(err))
	}
	return s.record("forgot_password", nil)
}

// UpdateOwnPassword sets a new password for the calling session, used
// by the reset-password page after the recovery link was followed.
func (s *AccountService) UpdateOwnPassword(ctx context.Context, token, password, confirm string) error {
	if password != confirm {
		return s.record("update_password", &ValidationError{Code: "PASSWORD_MISMATCH", Message: "Las contraseñas no coinciden"})
	}
	if len(password) < 6 {
		return s.record("update_password", &ValidationError{Code: "PASSWORD_TOO_SHORT", Message: "La contraseña debe tener al menos 6 caracteres"})
	}

	if err := s.provider.UpdateOwnPassword(ctx, token, password); err != nil {
		return s.record("update_password", providerError(err))
	}
	return s.record("update_password", nil)
}

// record counts the operation outcome and passes the error through
func (s *AccountService) record(operation string, err error) error {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.AccountOperations.WithLabelValues(operation, result).Inc()
	return err
}
