package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gramseva/office-portal-api/internal/models"
	"github.com/gramseva/office-portal-api/internal/service"
	"github.com/gramseva/office-portal-api/pkg/response"
)

type authRepoStub struct {
	users   map[string]*models.User
	created []*models.User
}

func (s *authRepoStub) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if u, ok := s.users[identifier]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindConflict(ctx context.Context, email, handle, contactNumber string) (string, error) {
	return "", nil
}

func (s *authRepoStub) Create(ctx context.Context, user *models.User) error {
	user.ID = "u1"
	s.created = append(s.created, user)
	return nil
}

func newAuthHandler(repo *authRepoStub) *AuthHandler {
	svc := service.NewAuthService(repo, nil, service.AuthConfig{
		TokenSecret:   "test-secret",
		TokenExpiry:   time.Hour,
		Issuer:        "office-portal",
		AdminUsername: "admin",
		AdminPassword: "admin-pass",
	})
	return NewAuthHandler(svc)
}

func TestAuthHandlerSignupCreatesAccount(t *testing.T) {
	repo := &authRepoStub{users: map[string]*models.User{}}
	h := newAuthHandler(repo)

	body := `{"firstName":"Asha","lastName":"Devi","contactNumber":"9876543210","email":"asha@example.com","userId":"asha.devi","age":32,"gender":"Female","password":"s3cret!pass"}`
	w := performJSON(t, h.Signup, http.MethodPost, "/signup", body)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.created, 1)
	assert.False(t, repo.created[0].Verified)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Message, "awaiting verification")
}

func TestAuthHandlerSignupReportsValidationProblems(t *testing.T) {
	h := newAuthHandler(&authRepoStub{users: map[string]*models.User{}})

	w := performJSON(t, h.Signup, http.MethodPost, "/signup", `{"firstName":"Asha"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Contains(t, envelope.Error.Message, "Password is required")
}

func TestAuthHandlerLoginStatuses(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!pass"), bcrypt.MinCost)
	require.NoError(t, err)
	verified := &models.User{ID: "u1", Email: "asha@example.com", PasswordHash: string(hash), Verified: true}
	unverified := &models.User{ID: "u2", Email: "ravi@example.com", PasswordHash: string(hash)}
	repo := &authRepoStub{users: map[string]*models.User{
		"asha@example.com": verified,
		"ravi@example.com": unverified,
	}}
	h := newAuthHandler(repo)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"empty payload", `{}`, http.StatusBadRequest},
		{"unknown user", `{"identifier":"nobody@example.com","password":"s3cret!pass"}`, http.StatusNotFound},
		{"unverified account", `{"identifier":"ravi@example.com","password":"s3cret!pass"}`, http.StatusForbidden},
		{"wrong password", `{"identifier":"asha@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"success", `{"identifier":"asha@example.com","password":"s3cret!pass"}`, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := performJSON(t, h.Login, http.MethodPost, "/login", tc.body)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestAuthHandlerAdminLogin(t *testing.T) {
	h := newAuthHandler(&authRepoStub{users: map[string]*models.User{}})

	w := performJSON(t, h.AdminLogin, http.MethodPost, "/admin-login", `{"username":"admin","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = performJSON(t, h.AdminLogin, http.MethodPost, "/admin-login", `{"username":"admin","password":"admin-pass"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])
}
