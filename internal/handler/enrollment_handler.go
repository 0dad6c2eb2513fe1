package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/service"
	"github.com/jntcloudcod2019/challenge-fiap-api/pkg/response"
)

type enrollmentService interface {
	Create(ctx context.Context, req service.CreateEnrollmentRequest) (*models.EnrollmentView, error)
	Get(ctx context.Context, id string) (*models.EnrollmentView, error)
	List(ctx context.Context) ([]models.EnrollmentView, error)
	ListByStudent(ctx context.Context, term string) ([]models.EnrollmentView, error)
	ListMine(ctx context.Context, userID string) ([]models.EnrollmentView, error)
	ListByClass(ctx context.Context, code string) ([]models.EnrollmentView, error)
	Search(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentView, error)
	Update(ctx context.Context, id string, req service.UpdateEnrollmentRequest) (*models.EnrollmentView, error)
	Delete(ctx context.Context, id string) error
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler constructs an enrollment handler.
func NewEnrollmentHandler(svc enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

func listMessage(total int) string {
	if total == 0 {
		return "no enrollments found"
	}
	return fmt.Sprintf("total of %d enrollment(s) found", total)
}

func (h *EnrollmentHandler) respondList(c *gin.Context, items []models.EnrollmentView, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []models.EnrollmentView{}
	}
	response.OK(c, listMessage(len(items)), items)
}

// Create godoc
// @Summary Enroll student
// @Description Resolves the student by any identifier and optionally links a class by code
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateEnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.CreateEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fmt.Sprintf("enrollment created successfully for %s", enrollment.StudentName), enrollment)
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	h.respondList(c, items, err)
}

// Search godoc
// @Summary Search enrollments
// @Description At least one filter is required
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param enrollmentId query string false "Enrollment id"
// @Param studentId query string false "Student id"
// @Param classId query string false "Class id"
// @Param status query string false "Active, Suspended or Cancelled"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /enrollments/search [get]
func (h *EnrollmentHandler) Search(c *gin.Context) {
	filter := models.EnrollmentFilter{
		EnrollmentID: strings.TrimSpace(c.Query("enrollmentId")),
		StudentID:    strings.TrimSpace(c.Query("studentId")),
		ClassID:      strings.TrimSpace(c.Query("classId")),
		Status:       models.EnrollmentStatus(strings.TrimSpace(c.Query("status"))),
	}
	items, err := h.service.Search(c.Request.Context(), filter)
	h.respondList(c, items, err)
}

// Me godoc
// @Summary Own enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/me [get]
func (h *EnrollmentHandler) Me(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	items, err := h.service.ListMine(c.Request.Context(), claims.UserID)
	h.respondList(c, items, err)
}

// ByStudent godoc
// @Summary Enrollments of a student
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param query path string true "Student lookup term"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/student/{query} [get]
func (h *EnrollmentHandler) ByStudent(c *gin.Context) {
	items, err := h.service.ListByStudent(c.Request.Context(), c.Param("query"))
	h.respondList(c, items, err)
}

// ByClass godoc
// @Summary Enrollments of a class
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param code path string true "Class code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/class/{code} [get]
func (h *EnrollmentHandler) ByClass(c *gin.Context) {
	items, err := h.service.ListByClass(c.Request.Context(), c.Param("code"))
	h.respondList(c, items, err)
}

// Get godoc
// @Summary Get enrollment
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "enrollment found", enrollment)
}

// Update godoc
// @Summary Update enrollment status
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment id"
// @Param payload body service.UpdateEnrollmentRequest true "Status change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id} [put]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	var req service.UpdateEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "enrollment updated successfully", enrollment)
}

// Delete godoc
// @Summary Delete enrollment
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "enrollment deleted successfully", true)
}
