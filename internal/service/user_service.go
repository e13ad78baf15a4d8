package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shop-service/internal/apperr"
	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// UserService is the administrator's view of the user accounts
type UserService struct {
	store    store.DB
	sessions SessionStore
	hasher   *auth.PasswordHasher
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(store store.DB, sessions SessionStore, hasher *auth.PasswordHasher) *UserService {
	return &UserService{store: store, sessions: sessions, hasher: hasher, logger: util.GetLogger()}
}

type CreateUserRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Phone                string `json:"phone" binding:"required,phone10"`
	Address              string `json:"address" binding:"required,max=255"`
	Gender               *bool  `json:"gender" binding:"required"`
	Password             string `json:"password" binding:"required,min=6,max=72"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
	Role                 string `json:"role" binding:"omitempty,oneof=admin user"`
	Verify               bool   `json:"verify"`
}

type UpdateUserRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Phone   string `json:"phone" binding:"required,phone10"`
	Address string `json:"address" binding:"required,max=255"`
	Gender  *bool  `json:"gender" binding:"required"`
	Role    string `json:"role" binding:"omitempty,oneof=admin user"`
	Verify  *bool  `json:"verify"`
}

// List returns a page of users
func (s *UserService) List(ctx context.Context, params store.ListParams) (*Page[models.User], error) {
	ctx, span := util.StartSpan(ctx, "UserService.List")
	defer span.End()

	users, total, err := s.store.ListUsers(ctx, params)
	if err != nil {
		return nil, storeErr(err, "User")
	}
	return newPage(users, total, params), nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Get")
	defer span.End()

	user, err := s.store.GetUserByID(ctx, id)
	return user, storeErr(err, "User")
}

// Create adds an account. Role defaults to user.
func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Create")
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
		Verify:       req.Verify,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUniqueViolation) {
			return nil, apperr.Conflict("Email has already been taken")
		}
		return nil, storeErr(err, "User")
	}

	s.logger.Info("User created", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return user, nil
}

// Update overwrites the profile, role and verification flag of a user
func (s *UserService) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Update")
	defer span.End()

	var user *models.User
	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		var err error
		if user, err = tx.GetUserByID(ctx, id); err != nil {
			return err
		}
		user.Name = req.Name
		user.Phone = req.Phone
		user.Address = req.Address
		user.Gender = *req.Gender
		if req.Role != "" {
			user.Role = req.Role
		}
		if req.Verify != nil {
			user.Verify = *req.Verify
		}
		return tx.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, storeErr(err, "User")
	}

	s.logger.Info("User updated", zap.Int64("user_id", id))
	return user, nil
}

// Delete removes a user without orders together with their cart
func (s *UserService) Delete(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "UserService.Delete")
	defer span.End()

	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		if _, err := tx.GetUserByID(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountOrdersByUserID(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.ConstraintViolation("Cannot delete user because they have orders")
		}

		cart, err := tx.GetCartByUserID(ctx, id, true)
		switch {
		case err == nil:
			if err := tx.DeleteCartItems(ctx, cart.ID); err != nil {
				return err
			}
			if err := tx.DeleteCart(ctx, cart.ID); err != nil {
				return err
			}
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		return tx.DeleteUser(ctx, id)
	})
	if err != nil {
		return storeErr(err, "User")
	}

	if err := s.sessions.DeleteSession(ctx, id); err != nil {
		s.logger.Warn("Failed to revoke session of deleted user", zap.Int64("user_id", id), zap.Error(err))
	}
	s.logger.Info("User deleted", zap.Int64("user_id", id))
	return nil
}
