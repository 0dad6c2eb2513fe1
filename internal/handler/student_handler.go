package handler

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/service"
	"github.com/jntcloudcod2019/challenge-fiap-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentView, *models.Pagination, error)
	Search(ctx context.Context, filter models.StudentFilter) ([]models.StudentView, *models.Pagination, error)
	GetByRegistrationNumber(ctx context.Context, ra string) (*models.StudentView, error)
	GetByUserID(ctx context.Context, userID string) (*models.StudentView, error)
	FindByTerm(ctx context.Context, term string) (*models.StudentView, error)
	Create(ctx context.Context, req service.CreateStudentRequest) (*service.CreateStudentResult, error)
	Update(ctx context.Context, term string, req service.UpdateStudentRequest) (*models.StudentView, error)
	DeleteByQuery(ctx context.Context, term string) error
	Statistics(ctx context.Context) (*models.StudentStatistics, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(svc studentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// Create godoc
// @Summary Create student
// @Description Creates the student and its login account. The generated password is returned once.
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "student created successfully", result)
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.PagedEnvelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	students, pagination, err := h.service.List(c.Request.Context(), models.StudentFilter{Page: page, PageSize: size})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, "students retrieved successfully", students, *pagination)
}

// Search godoc
// @Summary Search students
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param query query string true "Name, registration number or CPF"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.PagedEnvelope
// @Failure 400 {object} response.Envelope
// @Router /students/search [get]
func (h *StudentHandler) Search(c *gin.Context) {
	page, size := pageParams(c)
	students, pagination, err := h.service.Search(c.Request.Context(), models.StudentFilter{Search: searchQuery(c), Page: page, PageSize: size})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, fmt.Sprintf("%d student(s) found", pagination.TotalCount), students, *pagination)
}

// Statistics godoc
// @Summary Student statistics
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /students/statistics [get]
func (h *StudentHandler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "statistics retrieved successfully", stats)
}

// Me godoc
// @Summary Own student profile
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/me [get]
func (h *StudentHandler) Me(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	student, err := h.service.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "student found", student)
}

// GetByRegistrationNumber godoc
// @Summary Get student by registration number
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param ra path string true "Registration number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/ra/{ra} [get]
func (h *StudentHandler) GetByRegistrationNumber(c *gin.Context) {
	student, err := h.service.GetByRegistrationNumber(c.Request.Context(), c.Param("ra"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "student found", student)
}

// Find godoc
// @Summary Find student
// @Description Resolves a student by registration number, CPF, document, email or name
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param term path string true "Lookup term"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/find/{term} [get]
func (h *StudentHandler) Find(c *gin.Context) {
	student, err := h.service.FindByTerm(c.Request.Context(), c.Param("term"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "student found", student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param query path string true "Lookup term"
// @Param payload body service.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{query} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.service.Update(c.Request.Context(), c.Param("query"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "student updated successfully", student)
}

// Delete godoc
// @Summary Delete student
// @Description Removes the student and its account. Refused while active enrollments exist.
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param query path string true "Lookup term"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /students/{query} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteByQuery(c.Request.Context(), c.Param("query")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "student deleted successfully", true)
}
