package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/escolalab/gestao-escolar-api/internal/models"
	appErrors "github.com/escolalab/gestao-escolar-api/pkg/errors"
)

type mockAuthRepo struct {
	user             *models.User
	findErr          error
	lastLoginUpdated bool
	lastLoginErr     error
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.user, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if m.lastLoginErr != nil {
		return m.lastLoginErr
	}
	m.lastLoginUpdated = true
	return nil
}

type mockSessionRegistry struct {
	saved   map[string]string
	saveErr error
}

func (m *mockSessionRegistry) Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.saved == nil {
		m.saved = make(map[string]string)
	}
	m.saved[sessionID] = userID
	return nil
}

func (m *mockSessionRegistry) Exists(ctx context.Context, sessionID string) (bool, error) {
	_, ok := m.saved[sessionID]
	return ok, nil
}

func (m *mockSessionRegistry) Delete(ctx context.Context, sessionID string) error {
	delete(m.saved, sessionID)
	return nil
}

func newAuthService(repo *mockAuthRepo, sessions *mockSessionRegistry) *AuthService {
	return NewAuthService(repo, sessions, validator.New(), zap.NewNop(), AuthConfig{
		Secret: "secret",
		TTL:    time.Hour,
		Issuer: "test",
	})
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "u1",
		Username:     "admin",
		PasswordHash: string(hash),
		FullName:     "Admin",
		Role:         models.RoleAdmin,
		Active:       true,
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "admin123")}
	sessions := &mockSessionRegistry{}
	svc := newAuthService(repo, sessions)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "admin", res.User.Username)
	assert.True(t, repo.lastLoginUpdated)
	assert.Len(t, sessions.saved, 1)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "admin123")}
	sessions := &mockSessionRegistry{}
	svc := newAuthService(repo, sessions)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "nope"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.False(t, repo.lastLoginUpdated)
	assert.Empty(t, sessions.saved)
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	repo := &mockAuthRepo{findErr: sql.ErrNoRows}
	svc := newAuthService(repo, &mockSessionRegistry{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	user := activeUser(t, "admin123")
	user.Active = false
	repo := &mockAuthRepo{user: user}
	svc := newAuthService(repo, &mockSessionRegistry{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin123"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceLoginValidation(t *testing.T) {
	svc := newAuthService(&mockAuthRepo{}, &mockSessionRegistry{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAuthServiceValidateToken(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "admin123")}
	sessions := &mockSessionRegistry{}
	svc := newAuthService(repo, sessions)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceValidateTokenAfterLogout(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "admin123")}
	sessions := &mockSessionRegistry{}
	svc := newAuthService(repo, sessions)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), res.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims.ID))

	_, err = svc.ValidateToken(context.Background(), res.Token)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceValidateTokenBadSignature(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "admin123")}
	svcA := newAuthService(repo, &mockSessionRegistry{})
	svcB := NewAuthService(repo, &mockSessionRegistry{}, validator.New(), zap.NewNop(), AuthConfig{
		Secret: "other-secret",
		TTL:    time.Hour,
	})

	res, err := svcA.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	_, err = svcB.ValidateToken(context.Background(), res.Token)
	require.Error(t, err)
}

func TestAuthServiceLoginLastLoginFailureIsNonFatal(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t, "admin123"), lastLoginErr: sql.ErrConnDone}
	sessions := &mockSessionRegistry{}
	svc := newAuthService(repo, sessions)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}
