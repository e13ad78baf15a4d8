package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shop-service/internal/apperr"
	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type accountFixture struct {
	db        *memory.Store
	sessions  *fakeSessions
	publisher *fakePublisher
	svc       *AccountService
}

func newAccountFixture(t *testing.T, requireActivation bool) *accountFixture {
	t.Helper()
	db := memory.New()
	sessions := newFakeSessions()
	publisher := &fakePublisher{}
	svc := NewAccountService(db, sessions, publisher, AccountOptions{
		Tokens:            auth.NewTokenManager("test-secret", "shop-service", time.Hour),
		Hasher:            auth.NewPasswordHasher(bcrypt.MinCost),
		Activation:        auth.NewActivationCodec("activation-secret"),
		RequireActivation: requireActivation,
	})
	return &accountFixture{db: db, sessions: sessions, publisher: publisher, svc: svc}
}

func registerRequest() *RegisterRequest {
	return &RegisterRequest{
		Name:                 "Jane Doe",
		Email:                "jane@example.com",
		Phone:                "0123456789",
		Address:              "42 Harbour Road",
		Gender:               boolPtr(false),
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	}
}

func TestAccountService_RegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t, false)

	user, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.Verify)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	require.Len(t, f.publisher.registered, 1)
	assert.NotEmpty(t, f.publisher.registered[0].ActivationToken)

	_, err = f.svc.Register(ctx, registerRequest())
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Email has already been taken", e.Message)

	result, err := f.svc.Login(ctx, &LoginRequest{Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)

	principal, err := f.svc.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.False(t, principal.IsAdmin())

	me, err := f.svc.Me(ctx, principal.UserID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", me.Email)

	require.NoError(t, f.svc.Logout(ctx, principal))
	_, err = f.svc.Authenticate(ctx, result.AccessToken)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestAccountService_LoginReplacesPreviousToken(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t, false)
	_, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	first, err := f.svc.Login(ctx, &LoginRequest{Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, &LoginRequest{Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, first.AccessToken)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	_, err = f.svc.Authenticate(ctx, second.AccessToken)
	assert.NoError(t, err)
}

func TestAccountService_BadCredentials(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t, false)
	_, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, &LoginRequest{Email: "jane@example.com", Password: "wrong"})
	assert.Equal(t, errBadCredentials, err)

	_, err = f.svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.Equal(t, errBadCredentials, err)

	_, err = f.svc.Authenticate(ctx, "not-a-token")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestAccountService_ActivationRequired(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t, true)
	_, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, &LoginRequest{Email: "jane@example.com", Password: "secret123"})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ErrForbidden, e.Kind)
	assert.Equal(t, "User is inactive", e.Message)

	token := f.publisher.registered[0].ActivationToken
	require.NoError(t, f.svc.Activate(ctx, token))

	err = f.svc.Activate(ctx, token)
	e, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "User already activated", e.Message)

	_, err = f.svc.Login(ctx, &LoginRequest{Email: "jane@example.com", Password: "secret123"})
	assert.NoError(t, err)
}

func TestAccountService_ActivateRejectsForeignTokens(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t, true)

	assert.Equal(t, errBadActivation, f.svc.Activate(ctx, "garbage"))

	token, err := auth.NewActivationCodec("activation-secret").Seal("ghost@example.com")
	require.NoError(t, err)
	assert.Equal(t, errBadActivation, f.svc.Activate(ctx, token))
}

func TestAccountService_ProfileAndPassword(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t, false)
	user, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	updated, err := f.svc.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{
		Name:    "Jane Smith",
		Phone:   "0111111111",
		Address: "7 Hill Street",
		Gender:  boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", updated.Name)
	assert.Equal(t, "jane@example.com", updated.Email)

	err = f.svc.ChangePassword(ctx, user.ID, &ChangePasswordRequest{Password: "wrong", NewPassword: "newsecret"})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Current password is incorrect", e.Message)

	require.NoError(t, f.svc.ChangePassword(ctx, user.ID, &ChangePasswordRequest{Password: "secret123", NewPassword: "newsecret"}))

	_, err = f.svc.Login(ctx, &LoginRequest{Email: "jane@example.com", Password: "secret123"})
	assert.Equal(t, errBadCredentials, err)
	_, err = f.svc.Login(ctx, &LoginRequest{Email: "jane@example.com", Password: "newsecret"})
	assert.NoError(t, err)
}
