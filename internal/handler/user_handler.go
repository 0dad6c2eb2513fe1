package handler

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/service"
	"github.com/jntcloudcod2019/challenge-fiap-api/pkg/response"
)

type userService interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error)
	Search(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error)
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, query string) (*models.User, error)
	Create(ctx context.Context, req service.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, query string, req service.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, query string) error
}

// UserHandler manages user resources.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// Create godoc
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "user created successfully", user)
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.PagedEnvelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	users, pagination, err := h.service.List(c.Request.Context(), models.UserFilter{Page: page, PageSize: size})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, "users retrieved successfully", users, *pagination)
}

// Search godoc
// @Summary Search users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param query query string true "Name, email or document"
// @Success 200 {object} response.PagedEnvelope
// @Router /users/search [get]
func (h *UserHandler) Search(c *gin.Context) {
	page, size := pageParams(c)
	users, pagination, err := h.service.Search(c.Request.Context(), models.UserFilter{Search: searchQuery(c), Page: page, PageSize: size})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, fmt.Sprintf("%d user(s) found", pagination.TotalCount), users, *pagination)
}

// Count godoc
// @Summary Count users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /users/count [get]
func (h *UserHandler) Count(c *gin.Context) {
	total, err := h.service.Count(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, fmt.Sprintf("total of %d user(s)", total), gin.H{"total": total})
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param query path string true "User id, email or document"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{query} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("query"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "user found", user)
}

// Update godoc
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param query path string true "User id, email or document"
// @Param payload body service.UpdateUserRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{query} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.service.Update(c.Request.Context(), c.Param("query"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "user updated successfully", user)
}

// Delete godoc
// @Summary Delete user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param query path string true "User id, email or document"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /users/{query} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("query")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "user deleted successfully", true)
}
