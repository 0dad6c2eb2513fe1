package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/repository"
	appErrors "github.com/jntcloudcod2019/challenge-fiap-api/pkg/errors"
	appValidator "github.com/jntcloudcod2019/challenge-fiap-api/pkg/validator"
)

type classRepository interface {
	ListCodes(ctx context.Context, prefix string) ([]string, error)
	FindByCode(ctx context.Context, code string) (*models.ClassView, error)
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassView, int, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
}

// CreateClassRequest captures creation payload.
type CreateClassRequest struct {
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Room        *string `json:"room" validate:"omitempty,max=50"`
}

// UpdateClassRequest modifies class fields. Absent fields are left untouched.
type UpdateClassRequest struct {
	Room   *string             `json:"room" validate:"omitempty,max=50"`
	Status *models.ClassStatus `json:"status" validate:"omitempty,oneof=Open Closed Cancelled"`
}

// Patch converts the request into a ClassPatch.
func (r UpdateClassRequest) Patch() models.ClassPatch {
	return models.ClassPatch{Room: r.Room, Status: r.Status}
}

// ClassService coordinates class operations.
type ClassService struct {
	repo      classRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = appValidator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, validator: validate, logger: logger}
}

// List returns classes in numeric code order with pagination metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassView, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list classes", zap.Error(err))
		return nil, nil, appErrors.Storage(err, "failed to list classes")
	}
	pagination := models.NewPagination(filter.Page, filter.PageSize, total)
	return classes, &pagination, nil
}

// Search matches classes by code, name, description or status.
func (s *ClassService) Search(ctx context.Context, filter models.ClassFilter) ([]models.ClassView, *models.Pagination, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Search == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "search query is required")
	}
	return s.List(ctx, filter)
}

// GetByCode returns a class with its occupancy.
func (s *ClassService) GetByCode(ctx context.Context, code string) (*models.ClassView, error) {
	class, err := s.repo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		s.logger.Error("find class", zap.String("class_code", code), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to load class")
	}
	return class, nil
}

// Create adds a new open class under the next free code.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.ClassView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid class payload")
	}

	class := &models.Class{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Room:        req.Room,
		Capacity:    models.DefaultClassCapacity,
		Status:      models.ClassStatusOpen,
	}

	for attempt := 1; ; attempt++ {
		codes, err := s.repo.ListCodes(ctx, classCodePrefix)
		if err != nil {
			s.logger.Error("list class codes", zap.Error(err))
			return nil, appErrors.Storage(err, "error generating class code")
		}
		class.ID = ""
		class.ClassCode = NextClassCode(codes)

		err = s.repo.Create(ctx, class)
		if err == nil {
			break
		}
		if !repository.IsUniqueViolation(err) {
			s.logger.Error("create class", zap.String("class_code", class.ClassCode), zap.Error(err))
			return nil, appErrors.Storage(err, "failed to create class")
		}
		if attempt >= classCodeAttempts {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "could not allocate a unique class code")
		}
		s.logger.Warn("class code taken, retrying", zap.String("class_code", class.ClassCode), zap.Int("attempt", attempt))
	}

	view := models.ClassView{Class: *class}.WithOccupancy()
	return &view, nil
}

// Update applies the patch to the class identified by code.
func (s *ClassService) Update(ctx context.Context, code string, req UpdateClassRequest) (*models.ClassView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid class payload")
	}

	current, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	updated := req.Patch().Apply(current.Class)
	if err := s.repo.Update(ctx, &updated); err != nil {
		s.logger.Error("update class", zap.String("class_id", updated.ID), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to update class")
	}

	view := models.ClassView{Class: updated, TotalEnrollments: current.TotalEnrollments}.WithOccupancy()
	return &view, nil
}

// Delete removes a class that has no linked enrollments.
func (s *ClassService) Delete(ctx context.Context, code string) error {
	current, err := s.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if current.TotalEnrollments > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("cannot delete class: %d enrollment(s) linked", current.TotalEnrollments))
	}
	if err := s.repo.Delete(ctx, current.ID); err != nil {
		s.logger.Error("delete class", zap.String("class_id", current.ID), zap.Error(err))
		return appErrors.Storage(err, "failed to delete class")
	}
	return nil
}
