package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shop-service/internal/apperr"
	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

var (
	errBadCredentials = apperr.Unauthorized("Invalid email or password")
	errBadActivation  = apperr.BadRequest("Invalid activation token")
)

// AccountService handles registration, login and the caller's own profile
type AccountService struct {
	store             store.DB
	sessions          SessionStore
	publisher         EventPublisher
	tokens            *auth.TokenManager
	hasher            *auth.PasswordHasher
	activation        *auth.ActivationCodec
	requireActivation bool
	logger            *zap.Logger
}

// AccountOptions bundles the auth collaborators of AccountService
type AccountOptions struct {
	Tokens            *auth.TokenManager
	Hasher            *auth.PasswordHasher
	Activation        *auth.ActivationCodec
	RequireActivation bool
}

// NewAccountService creates a new account service
func NewAccountService(store store.DB, sessions SessionStore, publisher EventPublisher, opts AccountOptions) *AccountService {
	return &AccountService{
		store:             store,
		sessions:          sessions,
		publisher:         publisher,
		tokens:            opts.Tokens,
		hasher:            opts.Hasher,
		activation:        opts.Activation,
		requireActivation: opts.RequireActivation,
		logger:            util.GetLogger(),
	}
}

type RegisterRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Phone                string `json:"phone" binding:"required,phone10"`
	Address              string `json:"address" binding:"required,max=255"`
	Gender               *bool  `json:"gender" binding:"required"`
	Password             string `json:"password" binding:"required,min=6,max=72"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Phone   string `json:"phone" binding:"required,phone10"`
	Address string `json:"address" binding:"required,max=255"`
	Gender  *bool  `json:"gender" binding:"required"`
}

type ChangePasswordRequest struct {
	Password    string `json:"password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// LoginResult is an issued access token and the account it belongs to
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *models.User
}

// Register creates a user account with the default role and queues the activation email
func (s *AccountService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Register")
	defer span.End()

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        strings.TrimSpace(req.Email),
		Phone:        req.Phone,
		Address:      req.Address,
		Gender:       *req.Gender,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUniqueViolation) {
			return nil, apperr.Conflict("Email has already been taken")
		}
		return nil, storeErr(err, "User")
	}

	util.RegistrationsTotal.Inc()
	s.logger.Info("User registered", zap.Int64("user_id", user.ID))

	token, err := s.activation.Seal(user.Email)
	if err != nil {
		s.logger.Error("Failed to seal activation token", zap.Int64("user_id", user.ID), zap.Error(err))
		return user, nil
	}
	event := &models.UserRegisteredEvent{
		BaseEvent:       models.NewBaseEvent(models.EventTypeUserRegistered),
		UserID:          user.ID,
		Name:            user.Name,
		Email:           user.Email,
		ActivationToken: token,
	}
	if err := s.publisher.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Error("Failed to publish UserRegistered event", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

// Login checks the credentials and issues a token. The new token replaces
// any token issued earlier to the same user.
func (s *AccountService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Login")
	defer span.End()

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		util.LoginsTotal.WithLabelValues("bad_credentials").Inc()
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, storeErr(err, "User")
	}

	ok, err := s.hasher.Verify(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		util.LoginsTotal.WithLabelValues("bad_credentials").Inc()
		return nil, errBadCredentials
	}
	if s.requireActivation && !user.Verify {
		util.LoginsTotal.WithLabelValues("inactive").Inc()
		return nil, apperr.Forbidden("User is inactive")
	}

	token, tokenID, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if err := s.sessions.SetSession(ctx, user.ID, tokenID, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	util.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	return &LoginResult{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate resolves a bearer token into the calling principal. Tokens
// replaced by a later login or ended by logout are rejected.
func (s *AccountService) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	principal, err := s.tokens.Parse(token)
	if err != nil {
		return auth.Principal{}, apperr.Unauthorized("Invalid or expired token")
	}

	live, err := s.sessions.GetSession(ctx, principal.UserID)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("load session: %w", err)
	}
	if live != principal.TokenID {
		return auth.Principal{}, apperr.Unauthorized("Session has been revoked")
	}
	return principal, nil
}

// Logout revokes the caller's token
func (s *AccountService) Logout(ctx context.Context, principal auth.Principal) error {
	ctx, span := util.StartSpan(ctx, "AccountService.Logout")
	defer span.End()

	if err := s.sessions.DeleteSession(ctx, principal.UserID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("User logged out", zap.Int64("user_id", principal.UserID))
	return nil
}

// Me returns the caller's account
func (s *AccountService) Me(ctx context.Context, userID int64) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Me")
	defer span.End()

	user, err := s.store.GetUserByID(ctx, userID)
	return user, storeErr(err, "User")
}

// UpdateProfile replaces the caller's profile fields
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.UpdateProfile")
	defer span.End()

	var user *models.User
	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		var err error
		if user, err = tx.GetUserByID(ctx, userID); err != nil {
			return err
		}
		user.Name = req.Name
		user.Phone = req.Phone
		user.Address = req.Address
		user.Gender = *req.Gender
		return tx.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, storeErr(err, "User")
	}

	s.logger.Info("Profile updated", zap.Int64("user_id", userID))
	return user, nil
}

// ChangePassword replaces the caller's password after checking the current one
func (s *AccountService) ChangePassword(ctx context.Context, userID int64, req *ChangePasswordRequest) error {
	ctx, span := util.StartSpan(ctx, "AccountService.ChangePassword")
	defer span.End()

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return storeErr(err, "User")
	}

	ok, err := s.hasher.Verify(user.PasswordHash, req.Password)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateUserPassword(ctx, userID, hash); err != nil {
		return storeErr(err, "User")
	}

	s.logger.Info("Password changed", zap.Int64("user_id", userID))
	return nil
}

// Activate marks the account named by an activation token as verified
func (s *AccountService) Activate(ctx context.Context, token string) error {
	ctx, span := util.StartSpan(ctx, "AccountService.Activate")
	defer span.End()

	email, err := s.activation.Open(token)
	if err != nil {
		return errBadActivation
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return errBadActivation
	}
	if err != nil {
		return storeErr(err, "User")
	}
	if user.Verify {
		return apperr.BadRequest("User already activated")
	}

	if err := s.store.SetUserVerified(ctx, user.ID); err != nil {
		return storeErr(err, "User")
	}

	s.logger.Info("User activated", zap.Int64("user_id", user.ID))
	return nil
}
