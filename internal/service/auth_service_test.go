package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gymtech/backoffice-api/internal/models"
	appErrors "github.com/gymtech/backoffice-api/pkg/errors"
)

type mockUserRepo struct {
	users      map[string]*models.User
	lastLogin  time.Time
	passwordOf map[string]string
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	repo := &mockUserRepo{users: make(map[string]*models.User), passwordOf: make(map[string]string)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	m.passwordOf[id] = hash
	return nil
}

func (m *mockUserRepo) TouchLastLogin(_ context.Context, _ string, at time.Time) error {
	m.lastLogin = at
	return nil
}

func authTestUser(t *testing.T, password string, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "u1",
		Email:        "staff@gym.local",
		PasswordHash: string(hash),
		FullName:     "Front Desk",
		Role:         models.RoleStaff,
		Active:       active,
	}
}

func newAuthFixture(t *testing.T, user *models.User) (*AuthService, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo(user)
	svc := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		Secret:            "auth-test-secret",
		Expiration:        time.Hour,
		RefreshExpiration: 24 * time.Hour,
	})
	return svc, repo
}

func TestAuthServiceLoginIssuesTokenPair(t *testing.T) {
	svc, repo := newAuthFixture(t, authTestUser(t, "s3cret", true))

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "staff@gym.local",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.NotEqual(t, res.AccessToken, res.RefreshToken)
	assert.Equal(t, "u1", res.User.ID)
	assert.False(t, repo.lastLogin.IsZero())

	claims, err := svc.ParseToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, models.RoleStaff, claims.Role)
}

func TestAuthServiceLoginRejectsBadPassword(t *testing.T) {
	svc, _ := newAuthFixture(t, authTestUser(t, "s3cret", true))

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "staff@gym.local",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginRejectsInactiveAccount(t *testing.T) {
	svc, _ := newAuthFixture(t, authTestUser(t, "s3cret", false))

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "staff@gym.local",
		Password: "s3cret",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesTokens(t *testing.T) {
	svc, _ := newAuthFixture(t, authTestUser(t, "s3cret", true))

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "staff@gym.local",
		Password: "s3cret",
	})
	require.NoError(t, err)

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)

	claims, err := svc.ParseToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access", claims.TokenType)
}

func TestAuthServiceRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newAuthFixture(t, authTestUser(t, "s3cret", true))

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "staff@gym.local",
		Password: "s3cret",
	})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.AccessToken,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, repo := newAuthFixture(t, authTestUser(t, "s3cret", true))

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "s3cret",
		NewPassword: "n3wpass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, repo.passwordOf["u1"])
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordOf["u1"]), []byte("n3wpass")))
}

func TestAuthServiceChangePasswordRejectsWrongOld(t *testing.T) {
	svc, _ := newAuthFixture(t, authTestUser(t, "s3cret", true))

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "nope",
		NewPassword: "n3wpass",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceParseTokenRejectsTampering(t *testing.T) {
	svc, _ := newAuthFixture(t, authTestUser(t, "s3cret", true))

	_, err := svc.ParseToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
