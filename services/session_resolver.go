package services

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Carlostavo/residuos-api/models"
)

// Caller is the resolved session of the user behind a request: the
// verified identity plus its profile. Profile is nil when the profile
// row could not be read, which is distinct from not being
// authenticated at all (a nil Caller).
type Caller struct {
	ID      string
	Email   string
	Profile *models.Profile
}

// IsAdmin reports whether the caller may perform account administration.
func (c *Caller) IsAdmin() bool {
	return c != nil && c.Profile.IsAdmin()
}

// SessionResolver turns a verified identity into a Caller by attaching
// its profile record.
type SessionResolver struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewSessionResolver creates a resolver backed by the profile store
func NewSessionResolver(db *gorm.DB, log zerolog.Logger) *SessionResolver {
	return &SessionResolver{db: db, log: log}
}

// Resolve builds the caller for a verified identity. A failed profile
// lookup (missing row, row-level permission denial, store outage)
// degrades to a nil profile instead of failing, so authorization can
// still run and deny cleanly.
func (r *SessionResolver) Resolve(ctx context.Context, identityID, email string) *Caller {
	if identityID == "" {
		return nil
	}

	caller := &Caller{ID: identityID, Email: email}

	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", identityID).Error; err != nil {
		r.log.Warn().Err(err).Str("identity_id", identityID).Msg("profile lookup failed")
		return caller
	}

	caller.Profile = &profile
	return caller
}
