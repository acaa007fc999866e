package services

import (
	"context"
	"fmt"
	"sync"
)

// MockIdentityProvider is an in-memory IdentityProvider for testing.
// Every method records its invocation so tests can assert that a denied
// operation performed zero provider calls.
type MockIdentityProvider struct {
	mu         sync.Mutex
	identities map[string]*Identity
	passwords  map[string]string // identity id -> password
	tokens     map[string]string // access token -> identity id
	calls      map[string]int
	nextID     int

	// NextID, when set, is used as the id of the next created identity.
	NextID string
	// ResetEmails records (email, redirectTo) pairs of recovery emails.
	ResetEmails [][2]string

	// Per-method failure injection.
	SignInErr         error
	CreateIdentityErr error
	DeleteIdentityErr error
	UpdateMetadataErr error
	SendResetErr      error
	UpdatePasswordErr error
}

// NewMockIdentityProvider creates an empty mock provider
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		identities: make(map[string]*Identity),
		passwords:  make(map[string]string),
		tokens:     make(map[string]string),
		calls:      make(map[string]int),
	}
}

// Calls returns how many times the named method was invoked
func (m *MockIdentityProvider) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// TotalCalls returns the number of provider invocations across all methods
func (m *MockIdentityProvider) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// Identity returns the stored identity with the given id, or nil
func (m *MockIdentityProvider) Identity(id string) *Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identities[id]
}

// Seed registers an identity with a password and returns a usable token
func (m *MockIdentityProvider) Seed(id, email, password string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[id] = &Identity{ID: id, Email: email, Metadata: map[string]any{}}
	m.passwords[id] = password
	token := "token-" + id
	m.tokens[token] = id
	return token
}

func (m *MockIdentityProvider) record(method string) {
	m.calls[method]++
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (*Identity, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SignIn")
	if m.SignInErr != nil {
		return nil, "", m.SignInErr
	}
	for id, identity := range m.identities {
		if identity.Email == email && m.passwords[id] == password {
			token := "token-" + id
			m.tokens[token] = id
			return identity, token, nil
		}
	}
	return nil, "", fmt.Errorf("Invalid login credentials")
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SignOut")
	delete(m.tokens, token)
	return nil
}

func (m *MockIdentityProvider) GetIdentity(ctx context.Context, token string) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetIdentity")
	id, ok := m.tokens[token]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return m.identities[id], nil
}

func (m *MockIdentityProvider) CreateIdentity(ctx context.Context, email, password string, autoConfirm bool, metadata map[string]any) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateIdentity")
	if m.CreateIdentityErr != nil {
		return nil, m.CreateIdentityErr
	}
	for _, identity := range m.identities {
		if identity.Email == email {
			return nil, fmt.Errorf("A user with this email address has already been registered")
		}
	}
	id := m.NextID
	if id == "" {
		m.nextID++
		id = fmt.Sprintf("identity-%d", m.nextID)
	}
	identity := &Identity{ID: id, Email: email, Metadata: metadata}
	m.identities[id] = identity
	m.passwords[id] = password
	return identity, nil
}

func (m *MockIdentityProvider) DeleteIdentity(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteIdentity")
	if m.DeleteIdentityErr != nil {
		return m.DeleteIdentityErr
	}
	if _, ok := m.identities[id]; !ok {
		return fmt.Errorf("User not found")
	}
	delete(m.identities, id)
	delete(m.passwords, id)
	return nil
}

func (m *MockIdentityProvider) UpdateIdentityMetadata(ctx context.Context, id string, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateIdentityMetadata")
	if m.UpdateMetadataErr != nil {
		return m.UpdateMetadataErr
	}
	identity, ok := m.identities[id]
	if !ok {
		return fmt.Errorf("User not found")
	}
	if identity.Metadata == nil {
		identity.Metadata = make(map[string]any)
	}
	for k, v := range metadata {
		identity.Metadata[k] = v
	}
	return nil
}

func (m *MockIdentityProvider) SendPasswordResetEmail(ctx context.Context, email, redirectTo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SendPasswordResetEmail")
	if m.SendResetErr != nil {
		return m.SendResetErr
	}
	m.ResetEmails = append(m.ResetEmails, [2]string{email, redirectTo})
	return nil
}

func (m *MockIdentityProvider) UpdateOwnPassword(ctx context.Context, token, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateOwnPassword")
	if m.UpdatePasswordErr != nil {
		return m.UpdatePasswordErr
	}
	id, ok := m.tokens[token]
	if !ok {
		return fmt.Errorf("invalid token")
	}
	m.passwords[id] = newPassword
	return nil
}
