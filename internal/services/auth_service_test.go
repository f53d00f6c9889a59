package services

import (
	"context"
	"testing"

	"beacon-chat/config"
	"beacon-chat/internal/domain/account"
	beacon_errors "beacon-chat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService() (*AuthService, *fakeAccountRepo) {
	repo := newFakeAccountRepo()
	cfg := &config.Config{
		JWTSecret:         "test-secret",
		JWTExpiryMin:      60,
		AdminJWTExpiryMin: 10,
		MaxFailedLogins:   5,
		LockoutMin:        15,
	}
	return NewAuthService(repo, cfg), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, account.KindUser, res.Account.Kind)
	assert.Equal(t, "alice@example.com", res.Account.Email)
	assert.Equal(t, "alice", res.Account.DisplayName) // defaults to username
	assert.Empty(t, res.Account.Role)                 // role hidden for users

	claims, err := svc.ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.Account.ID, claims.AccountID)
	assert.Equal(t, account.KindUser, claims.Kind)

	byEmail, err := svc.Login(ctx, LoginInput{Identity: "alice@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, res.Account.ID, byEmail.Account.ID)

	byUsername, err := svc.Login(ctx, LoginInput{Identity: "alice", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, res.Account.ID, byUsername.Account.ID)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "supersecret"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "bob2", Email: "bob@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, beacon_errors.ErrAlreadyExists)

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Email: "other@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, beacon_errors.ErrAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "carol", Email: "carol@example.com", Password: "short"})
	assert.ErrorIs(t, err, beacon_errors.ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterInput{Username: "carol", Email: "not-an-email", Password: "supersecret"})
	assert.ErrorIs(t, err, beacon_errors.ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterInput{Username: "carol", Email: "carol@example.com", Password: "supersecret", Kind: "ROBOT"})
	assert.ErrorIs(t, err, beacon_errors.ErrInvalidInput)
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "dave", Email: "dave@example.com", Password: "supersecret"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := svc.Login(ctx, LoginInput{Identity: "dave", Password: "wrongpassword"})
		assert.ErrorIs(t, err, beacon_errors.ErrUnauthorized)
	}

	// The fifth failure locks the account; even the right password is
	// rejected until the lockout elapses.
	_, err = svc.Login(ctx, LoginInput{Identity: "dave", Password: "supersecret"})
	assert.ErrorIs(t, err, beacon_errors.ErrAccountLocked)

	a, err := repo.GetByEmail(ctx, "dave@example.com")
	require.NoError(t, err)
	assert.Equal(t, 5, a.FailedLoginAttempts)
	assert.True(t, a.LockedUntil.Valid)
}

func TestLoginSuccessResetsFailureCount(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "erin", Email: "erin@example.com", Password: "supersecret"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, LoginInput{Identity: "erin", Password: "wrongpassword"})
		assert.ErrorIs(t, err, beacon_errors.ErrUnauthorized)
	}

	_, err = svc.Login(ctx, LoginInput{Identity: "erin", Password: "supersecret"})
	require.NoError(t, err)

	a, err := repo.GetByEmail(ctx, "erin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, a.FailedLoginAttempts)
	assert.False(t, a.LockedUntil.Valid)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "frank", Email: "frank@example.com", Password: "supersecret"})
	require.NoError(t, err)

	a, err := repo.GetByEmail(ctx, "frank@example.com")
	require.NoError(t, err)
	require.NoError(t, repo.Deactivate(ctx, a.ID))

	_, err = svc.Login(ctx, LoginInput{Identity: "frank", Password: "supersecret"})
	assert.ErrorIs(t, err, beacon_errors.ErrAccountInactive)
}

func TestLoginUnknownIdentity(t *testing.T) {
	svc, _ := newTestAuthService()

	// Unknown identities get the same error as a bad password.
	_, err := svc.Login(context.Background(), LoginInput{Identity: "ghost", Password: "supersecret"})
	assert.ErrorIs(t, err, beacon_errors.ErrUnauthorized)
}

func TestAdminTokenUsesShorterTTL(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "grace", Email: "grace@example.com", Password: "supersecret"})
	require.NoError(t, err)

	admin, err := svc.Register(ctx, RegisterInput{
		Username: "root",
		Email:    "root@example.com",
		Password: "supersecret",
		Kind:     account.KindAdmin,
		Role:     account.RoleSuperAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(60*60), user.ExpiresIn)
	assert.Equal(t, int64(10*60), admin.ExpiresIn)
	assert.Equal(t, account.RoleSuperAdmin, admin.Account.Role)

	claims, err := svc.ParseAccessToken(admin.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.KindAdmin, claims.Kind)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.ParseAccessToken("")
	assert.ErrorIs(t, err, beacon_errors.ErrUnauthorized)

	_, err = svc.ParseAccessToken("not.a.token")
	assert.ErrorIs(t, err, beacon_errors.ErrUnauthorized)
}
