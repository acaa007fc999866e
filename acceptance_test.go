package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Carlostavo/residuos-api/models"
)

// TestServerStartup is an acceptance test that verifies the full router
// can be assembled
func TestServerStartup(t *testing.T) {
	env := newTestApp(t)
	assert.NotNil(t, env.router, "Router should be initialized")
}

// TestAPIHealthEndpointAcceptance is an end-to-end acceptance test over
// a real HTTP server
func TestAPIHealthEndpointAcceptance(t *testing.T) {
	env := newTestApp(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/health")
	assert.NoError(t, err, "Should be able to reach the server")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "Health endpoint should return 200 OK")

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.NoError(t, json.Unmarshal(body, &response), "Response should be valid JSON")

	assert.True(t, response.Success, "Success field should be true")
	assert.Equal(t, "Residuos API is running", response.Message)
}

// TestLoginToAdminWorkflowAcceptance simulates an admin logging in from
// the frontend and then administering accounts with the session
func TestLoginToAdminWorkflowAcceptance(t *testing.T) {
	env := newTestApp(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	env.mock.Seed("admin-1", "admin@residuos.example.com", "secret123")
	seedAppProfile(t, env.db, "admin-1", "admin@residuos.example.com", "Admin", models.RoleAdmin)

	client := &http.Client{Timeout: 5 * time.Second}

	// Step 1: log in with valid credentials
	loginBody, _ := json.Marshal(map[string]string{
		"email":    "admin@residuos.example.com",
		"password": "secret123",
	})
	resp, err := client.Post(server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResponse map[string]interface{}
	body, _ := io.ReadAll(resp.Body)
	assert.NoError(t, json.Unmarshal(body, &loginResponse))
	assert.Equal(t, true, loginResponse["success"])

	profile := loginResponse["profile"].(map[string]interface{})
	assert.Equal(t, "admin", profile["role"])

	// Step 2: administer accounts with a session token. The mock
	// provider's opaque tokens cannot pass local JWT validation, so the
	// admin session is minted the way the backend signs tokens.
	token := mintAppToken(t, env.cfg, "admin-1", "admin@residuos.example.com")

	createBody, _ := json.Marshal(map[string]string{
		"email":     "tecnico@residuos.example.com",
		"password":  "secret123",
		"full_name": "Técnico de Campo",
		"role":      "tecnico",
	})
	req, _ := http.NewRequest("POST", server.URL+"/api/v1/admin/users", bytes.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err = client.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Step 3: the new account is visible in the listing
	req, _ = http.NewRequest("GET", server.URL+"/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err = client.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var listResponse map[string]interface{}
	body, _ = io.ReadAll(resp.Body)
	assert.NoError(t, json.Unmarshal(body, &listResponse))
	users := listResponse["users"].([]interface{})
	assert.Len(t, users, 2)
}

// TestHealthEndpointAvailability tests that the health endpoint responds
// consistently
func TestHealthEndpointAvailability(t *testing.T) {
	env := newTestApp(t)

	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest("GET", "/api/v1/health", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.Equal(t, true, response["success"])
	}
}
