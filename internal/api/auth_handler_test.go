package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pilotprep/pilotprep/internal/config"
	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/service/auth"
	"github.com/pilotprep/pilotprep/internal/store"
)

// memoryUserStore is an in-memory store.UserStore for handler tests.
type memoryUserStore struct {
	byEmail map[string]*domain.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{byEmail: make(map[string]*domain.User)}
}

func (m *memoryUserStore) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.byEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	copied := *user
	m.byEmail[user.Email] = &copied
	return nil
}

func (m *memoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.byEmail {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *memoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memoryUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

func newAuthHandler(t *testing.T) (*AuthHandler, *memoryUserStore) {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes:        30,
		RefreshTokenLifetimeMinutes: 10080,
	})
	require.NoError(t, err)

	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	users := newMemoryUserStore()
	return NewAuthHandler(users, jwtService, hasher, hasher), users
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestRegister(t *testing.T) {
	handler, users := newAuthHandler(t)

	rr := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "pilot@example.com",
		Password: "a-strong-password",
	})

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEqual(t, uuid.Nil, resp.UserID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEmpty(t, resp.ExpiresAt)

	// The stored password is hashed, never plaintext.
	stored, err := users.GetByEmail(context.Background(), "pilot@example.com")
	require.NoError(t, err)
	assert.Empty(t, stored.Password)
	assert.NotEmpty(t, stored.HashedPassword)
	assert.NotEqual(t, "a-strong-password", stored.HashedPassword)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	handler, _ := newAuthHandler(t)

	payload := RegisterRequest{Email: "pilot@example.com", Password: "a-strong-password"}
	rr := postJSON(t, handler.Register, "/api/auth/register", payload)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = postJSON(t, handler.Register, "/api/auth/register", payload)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegisterValidation(t *testing.T) {
	handler, _ := newAuthHandler(t)

	tests := []struct {
		name    string
		payload RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "a-strong-password"}},
		{"invalid email", RegisterRequest{Email: "not-an-email", Password: "a-strong-password"}},
		{"short password", RegisterRequest{Email: "pilot@example.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, handler.Register, "/api/auth/register", tt.payload)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	handler, _ := newAuthHandler(t)

	rr := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "pilot@example.com",
		Password: "a-strong-password",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
		Email:    "pilot@example.com",
		Password: "a-strong-password",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLoginWrongPassword(t *testing.T) {
	handler, _ := newAuthHandler(t)

	rr := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "pilot@example.com",
		Password: "a-strong-password",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
		Email:    "pilot@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	handler, _ := newAuthHandler(t)

	// Unknown email and wrong password produce the same response, so the
	// endpoint cannot be used to enumerate accounts.
	rr := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
		Email:    "nobody@example.com",
		Password: "a-strong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid credentials")
}

func TestRefresh(t *testing.T) {
	handler, _ := newAuthHandler(t)

	rr := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "pilot@example.com",
		Password: "a-strong-password",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var registered AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))

	rr = postJSON(t, handler.Refresh, "/api/auth/refresh", RefreshTokenRequest{
		RefreshToken: registered.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var refreshed AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &refreshed))
	assert.Equal(t, registered.UserID, refreshed.UserID)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	handler, _ := newAuthHandler(t)

	rr := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
		Email:    "pilot@example.com",
		Password: "a-strong-password",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var registered AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))

	// The short-lived access token is not valid as a refresh token.
	rr = postJSON(t, handler.Refresh, "/api/auth/refresh", RefreshTokenRequest{
		RefreshToken: registered.AccessToken,
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
