package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/service"
	"github.com/jntcloudcod2019/challenge-fiap-api/pkg/export"
	"github.com/jntcloudcod2019/challenge-fiap-api/pkg/response"
)

type classService interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassView, *models.Pagination, error)
	Search(ctx context.Context, filter models.ClassFilter) ([]models.ClassView, *models.Pagination, error)
	GetByCode(ctx context.Context, code string) (*models.ClassView, error)
	Create(ctx context.Context, req service.CreateClassRequest) (*models.ClassView, error)
	Update(ctx context.Context, code string, req service.UpdateClassRequest) (*models.ClassView, error)
	Delete(ctx context.Context, code string) error
}

type rosterExporter interface {
	ClassRoster(ctx context.Context, code string, format export.Format) (*service.Document, error)
}

// ClassHandler exposes class endpoints.
type ClassHandler struct {
	service  classService
	exporter rosterExporter
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc classService, exporter rosterExporter) *ClassHandler {
	return &ClassHandler{service: svc, exporter: exporter}
}

// Create godoc
// @Summary Create class
// @Description The class code is generated by the server
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if !bindJSON(c, &req) {
		return
	}
	class, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "class created successfully", class)
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.PagedEnvelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	classes, pagination, err := h.service.List(c.Request.Context(), models.ClassFilter{Page: page, PageSize: size})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, "classes retrieved successfully", classes, *pagination)
}

// Search godoc
// @Summary Search classes
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param query query string true "Code, name, description or status"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.PagedEnvelope
// @Failure 400 {object} response.Envelope
// @Router /classes/search [get]
func (h *ClassHandler) Search(c *gin.Context) {
	page, size := pageParams(c)
	classes, pagination, err := h.service.Search(c.Request.Context(), models.ClassFilter{Search: searchQuery(c), Page: page, PageSize: size})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, fmt.Sprintf("%d class(es) found", pagination.TotalCount), classes, *pagination)
}

// GetByCode godoc
// @Summary Get class by code
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param code path string true "Class code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/code/{code} [get]
func (h *ClassHandler) GetByCode(c *gin.Context) {
	class, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "class found", class)
}

// Update godoc
// @Summary Update class
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Class code"
// @Param payload body service.UpdateClassRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/code/{code} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req service.UpdateClassRequest
	if !bindJSON(c, &req) {
		return
	}
	class, err := h.service.Update(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "class updated successfully", class)
}

// Delete godoc
// @Summary Delete class
// @Description Refused while enrollments reference the class
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param code path string true "Class code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /classes/code/{code} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("code")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "class deleted successfully", true)
}

// Roster godoc
// @Summary Download class roster
// @Tags Classes
// @Produce octet-stream
// @Security BearerAuth
// @Param code path string true "Class code"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/code/{code}/roster [get]
func (h *ClassHandler) Roster(c *gin.Context) {
	doc, err := h.exporter.ClassRoster(c.Request.Context(), c.Param("code"), export.Format(c.DefaultQuery("format", string(export.FormatCSV))))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
