package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Carlostavo/residuos-api/config"
)

// AuthProviderService talks to the hosted auth backend over its REST
// API. Admin endpoints authenticate with the service-role key; the
// remaining endpoints use the caller's access token plus the public
// anon key.
type AuthProviderService struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

// NewAuthProviderService creates a new auth backend client
func NewAuthProviderService(cfg *config.Config) *AuthProviderService {
	return &AuthProviderService{
		baseURL:    strings.TrimRight(cfg.AuthURL, "/"),
		anonKey:    cfg.AuthAnonKey,
		serviceKey: cfg.AuthServiceKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// signInResponse is the token grant payload returned by the backend
type signInResponse struct {
	AccessToken string   `json:"access_token"`
	User        Identity `json:"user"`
}

// providerErrorBody covers the error shapes the backend returns
type providerErrorBody struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

// SignIn exchanges an email/password pair for an access token
func (s *AuthProviderService) SignIn(ctx context.Context, email, password string) (*Identity, string, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := s.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", s.anonKey, body)
	if err != nil {
		return nil, "", err
	}

	var grant signInResponse
	if err := json.Unmarshal(resp, &grant); err != nil {
		return nil, "", fmt.Errorf("failed to decode sign-in response: %w", err)
	}
	return &grant.User, grant.AccessToken, nil
}

// SignOut revokes the session behind the access token
func (s *AuthProviderService) SignOut(ctx context.Context, token string) error {
	_, err := s.do(ctx, http.MethodPost, "/auth/v1/logout", token, nil)
	return err
}

// GetIdentity fetches the identity the access token belongs to
func (s *AuthProviderService) GetIdentity(ctx context.Context, token string) (*Identity, error) {
	resp, err := s.do(ctx, http.MethodGet, "/auth/v1/user", token, nil)
	if err != nil {
		return nil, err
	}

	var identity Identity
	if err := json.Unmarshal(resp, &identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	return &identity, nil
}

// CreateIdentity registers a new identity through the admin API
func (s *AuthProviderService) CreateIdentity(ctx context.Context, email, password string, autoConfirm bool, metadata map[string]any) (*Identity, error) {
	body := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": autoConfirm,
		"user_metadata": metadata,
	}
	resp, err := s.do(ctx, http.MethodPost, "/auth/v1/admin/users", s.serviceKey, body)
	if err != nil {
		return nil, err
	}

	var identity Identity
	if err := json.Unmarshal(resp, &identity); err != nil {
		return nil, fmt.Errorf("failed to decode created identity: %w", err)
	}
	return &identity, nil
}

// DeleteIdentity removes an identity through the admin API
func (s *AuthProviderService) DeleteIdentity(ctx context.Context, id string) error {
	_, err := s.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+url.PathEscape(id), s.serviceKey, nil)
	return err
}

// UpdateIdentityMetadata merges metadata into an identity record
// through the admin API
func (s *AuthProviderService) UpdateIdentityMetadata(ctx context.Context, id string, metadata map[string]any) error {
	body := map[string]any{"user_metadata": metadata}
	_, err := s.do(ctx, http.MethodPut, "/auth/v1/admin/users/"+url.PathEscape(id), s.serviceKey, body)
	return err
}

// SendPasswordResetEmail triggers the backend's recovery email. The
// redirect target is where the emailed link lands the user.
func (s *AuthProviderService) SendPasswordResetEmail(ctx context.Context, email, redirectTo string) error {
	path := "/auth/v1/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	_, err := s.do(ctx, http.MethodPost, path, s.anonKey, map[string]string{"email": email})
	return err
}

// UpdateOwnPassword sets a new password for the caller's own session
func (s *AuthProviderService) UpdateOwnPassword(ctx context.Context, token, newPassword string) error {
	_, err := s.do(ctx, http.MethodPut, "/auth/v1/user", token, map[string]string{"password": newPassword})
	return err
}

// do executes one request against the backend and returns the raw
// response body. Non-2xx responses are turned into errors carrying the
// backend's own message so it can be surfaced verbatim.
func (s *AuthProviderService) do(ctx context.Context, method, path, bearer string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", s.anonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody providerErrorBody
		if json.Unmarshal(raw, &errBody) == nil {
			if msg := errBody.firstMessage(); msg != "" {
				return nil, fmt.Errorf("%s", msg)
			}
		}
		return nil, fmt.Errorf("auth backend returned status %d: %s", resp.StatusCode, string(raw))
	}

	return raw, nil
}

func (b providerErrorBody) firstMessage() string {
	if b.Msg != "" {
		return b.Msg
	}
	if b.Message != "" {
		return b.Message
	}
	return b.ErrorDescription
}
