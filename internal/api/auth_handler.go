package api

import (
	"net/http"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
)

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

// register handles account registration
func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.services.Accounts.Register(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "User registered successfully", user)
}

// login handles credential exchange for an access token
func (h *Handler) login(c *gin.Context) {
	var req service.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.services.Accounts.Login(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   result.ExpiresAt,
		User:        result.User,
	})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.services.Accounts.Me(c.Request.Context(), principalFrom(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User retrieved successfully", user)
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.services.Accounts.Logout(c.Request.Context(), principalFrom(c)); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.services.Accounts.UpdateProfile(c.Request.Context(), principalFrom(c).UserID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", user)
}

func (h *Handler) changePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.services.Accounts.ChangePassword(c.Request.Context(), principalFrom(c).UserID, &req); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Password changed successfully", nil)
}

// activate handles the link sent in the activation email
func (h *Handler) activate(c *gin.Context) {
	if err := h.services.Accounts.Activate(c.Request.Context(), c.Param("token")); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User activated successfully", nil)
}
