package services

import "context"

// Identity is the auth backend's authoritative account record. Only the
// fields this service consumes are mapped; credential material never
// leaves the backend.
type Identity struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata"`
}

// IdentityProvider is the contract with the hosted auth backend. The
// production implementation talks HTTP (see AuthProviderService); tests
// use MockIdentityProvider.
type IdentityProvider interface {
	// SignIn exchanges credentials for the identity and an access token.
	SignIn(ctx context.Context, email, password string) (*Identity, string, error)
	// SignOut revokes the session behind the given access token.
	SignOut(ctx context.Context, token string) error
	// GetIdentity returns the identity the access token belongs to.
	GetIdentity(ctx context.Context, token string) (*Identity, error)
	// CreateIdentity registers a new identity. autoConfirm skips the
	// confirmation email so admin-created accounts are usable at once.
	CreateIdentity(ctx context.Context, email, password string, autoConfirm bool, metadata map[string]any) (*Identity, error)
	// DeleteIdentity removes the identity permanently.
	DeleteIdentity(ctx context.Context, id string) error
	// UpdateIdentityMetadata merges metadata into the identity record.
	UpdateIdentityMetadata(ctx context.Context, id string, metadata map[string]any) error
	// SendPasswordResetEmail triggers a recovery email whose link points
	// at redirectTo.
	SendPasswordResetEmail(ctx context.Context, email, redirectTo string) error
	// UpdateOwnPassword sets a new password for the session behind token.
	UpdateOwnPassword(ctx context.Context, token, newPassword string) error
}
