package api

import (
	"net/http"

	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listUsers(c *gin.Context) {
	page, err := h.services.Users.List(c.Request.Context(), h.listParams(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondPage(c, "Users retrieved successfully", page)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := h.pathID(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.services.Users.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User retrieved successfully", user)
}

func (h *Handler) createUser(c *gin.Context) {
	var req service.CreateUserRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.services.Users.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "User created successfully", user)
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := h.pathID(c, "id", "user")
	if !ok {
		return
	}
	var req service.UpdateUserRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.services.Users.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User updated successfully", user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := h.pathID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.services.Users.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
