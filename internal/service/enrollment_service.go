package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/repository"
	appErrors "github.com/jntcloudcod2019/challenge-fiap-api/pkg/errors"
	appValidator "github.com/jntcloudcod2019/challenge-fiap-api/pkg/validator"
)

type enrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.EnrollmentView, error)
	List(ctx context.Context) ([]models.EnrollmentView, error)
	Search(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentView, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentView, error)
	ListByClass(ctx context.Context, classID string) ([]models.EnrollmentView, error)
	ExistsOpen(ctx context.Context, studentID, classID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id string) error
}

type enrollmentStudentFinder interface {
	FindByTerm(ctx context.Context, term string) (*models.StudentView, error)
	FindByUserID(ctx context.Context, userID string) (*models.StudentView, error)
}

type enrollmentClassFinder interface {
	FindByCode(ctx context.Context, code string) (*models.ClassView, error)
}

// EnrollmentConfig tunes enrollment admission rules.
type EnrollmentConfig struct {
	EnforceCapacity bool
}

// CreateEnrollmentRequest captures the payload for enrolling a student.
type CreateEnrollmentRequest struct {
	StudentIdentifier string  `json:"studentIdentifier" validate:"required,min=3,max=50"`
	ClassCode         *string `json:"classCode" validate:"omitempty,max=20"`
}

// UpdateEnrollmentRequest changes the enrollment status.
type UpdateEnrollmentRequest struct {
	Status *models.EnrollmentStatus `json:"status" validate:"omitempty,oneof=Active Suspended Cancelled"`
}

// EnrollmentService coordinates enrollment workflows.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  enrollmentStudentFinder
	classes   enrollmentClassFinder
	validator *validator.Validate
	logger    *zap.Logger
	cfg       EnrollmentConfig
	now       func() time.Time
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentRepository, students enrollmentStudentFinder, classes enrollmentClassFinder, validate *validator.Validate, logger *zap.Logger, cfg EnrollmentConfig) *EnrollmentService {
	if validate == nil {
		validate = appValidator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		students:  students,
		classes:   classes,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create enrolls the student identified by req.StudentIdentifier, optionally into a class.
// New enrollments always start Active.
func (s *EnrollmentService) Create(ctx context.Context, req CreateEnrollmentRequest) (*models.EnrollmentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid enrollment payload")
	}

	student, err := s.resolveStudent(ctx, req.StudentIdentifier)
	if err != nil {
		return nil, err
	}

	var class *models.ClassView
	if req.ClassCode != nil && strings.TrimSpace(*req.ClassCode) != "" {
		class, err = s.resolveClass(ctx, *req.ClassCode)
		if err != nil {
			return nil, err
		}
		if err := s.checkAdmission(ctx, student, class); err != nil {
			return nil, err
		}
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	enrollment := &models.Enrollment{
		StudentID:      student.ID,
		EnrollmentDate: today,
		Status:         models.EnrollmentStatusActive,
	}
	if class != nil {
		classID := class.ID
		enrollment.ClassID = &classID
	}

	if err := s.repo.Create(ctx, enrollment); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "student is already enrolled in this class")
		}
		s.logger.Error("create enrollment", zap.String("student_id", student.ID), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to create enrollment")
	}

	view := &models.EnrollmentView{
		Enrollment:         *enrollment,
		StudentName:        student.FullName,
		RegistrationNumber: student.RegistrationNumber,
	}
	if class != nil {
		code, name := class.ClassCode, class.Name
		view.ClassCode = &code
		view.ClassName = &name
	}
	return view, nil
}

func (s *EnrollmentService) checkAdmission(ctx context.Context, student *models.StudentView, class *models.ClassView) error {
	exists, err := s.repo.ExistsOpen(ctx, student.ID, class.ID)
	if err != nil {
		s.logger.Error("check open enrollment", zap.String("student_id", student.ID), zap.String("class_id", class.ID), zap.Error(err))
		return appErrors.Storage(err, "failed to check enrollment")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this class")
	}
	if class.Status != models.ClassStatusOpen {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "class is not open for enrollment")
	}
	if s.cfg.EnforceCapacity && class.AvailableSeats <= 0 {
		return appErrors.Clone(appErrors.ErrConflict, "class has no available seats")
	}
	return nil
}

func (s *EnrollmentService) resolveStudent(ctx context.Context, term string) (*models.StudentView, error) {
	student, err := s.students.FindByTerm(ctx, strings.TrimSpace(term))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		s.logger.Error("find student", zap.String("term", term), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to load student")
	}
	return student, nil
}

func (s *EnrollmentService) resolveClass(ctx context.Context, code string) (*models.ClassView, error) {
	class, err := s.classes.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		s.logger.Error("find class", zap.String("class_code", code), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to load class")
	}
	return class, nil
}

// Get returns an enrollment by id.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.EnrollmentView, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		s.logger.Error("find enrollment", zap.String("enrollment_id", id), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to load enrollment")
	}
	return enrollment, nil
}

// List returns every enrollment.
func (s *EnrollmentService) List(ctx context.Context) ([]models.EnrollmentView, error) {
	enrollments, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("list enrollments", zap.Error(err))
		return nil, appErrors.Storage(err, "failed to list enrollments")
	}
	return enrollments, nil
}

// ListByStudent returns the enrollments of the student resolved by term.
func (s *EnrollmentService) ListByStudent(ctx context.Context, term string) ([]models.EnrollmentView, error) {
	student, err := s.resolveStudent(ctx, term)
	if err != nil {
		return nil, err
	}
	return s.listFor(ctx, "student_id", student.ID, s.repo.ListByStudent)
}

// ListMine returns the enrollments of the student bound to userID.
func (s *EnrollmentService) ListMine(ctx context.Context, userID string) ([]models.EnrollmentView, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		s.logger.Error("find student by user", zap.String("user_id", userID), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to load student")
	}
	return s.listFor(ctx, "student_id", student.ID, s.repo.ListByStudent)
}

// ListByClass returns the enrollments of the class with code.
func (s *EnrollmentService) ListByClass(ctx context.Context, code string) ([]models.EnrollmentView, error) {
	class, err := s.resolveClass(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.listFor(ctx, "class_id", class.ID, s.repo.ListByClass)
}

func (s *EnrollmentService) listFor(ctx context.Context, field, id string, list func(context.Context, string) ([]models.EnrollmentView, error)) ([]models.EnrollmentView, error) {
	enrollments, err := list(ctx, id)
	if err != nil {
		s.logger.Error("list enrollments", zap.String(field, id), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to list enrollments")
	}
	return enrollments, nil
}

// Search filters enrollments conjunctively. At least one filter is required.
func (s *EnrollmentService) Search(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentView, error) {
	if filter.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "provide at least one search parameter")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be one of: Active, Suspended, Cancelled")
	}
	enrollments, err := s.repo.Search(ctx, filter)
	if err != nil {
		s.logger.Error("search enrollments", zap.Error(err))
		return nil, appErrors.Storage(err, "failed to search enrollments")
	}
	return enrollments, nil
}

// Update applies the request to the enrollment with id.
func (s *EnrollmentService) Update(ctx context.Context, id string, req UpdateEnrollmentRequest) (*models.EnrollmentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid enrollment payload")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := models.EnrollmentPatch{Status: req.Status}.Apply(current.Enrollment)
	if err := s.repo.Update(ctx, &updated); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "student is already enrolled in this class")
		}
		s.logger.Error("update enrollment", zap.String("enrollment_id", id), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to update enrollment")
	}

	view := *current
	view.Enrollment = updated
	return &view, nil
}

// Delete removes an existing enrollment.
func (s *EnrollmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete enrollment", zap.String("enrollment_id", id), zap.Error(err))
		return appErrors.Storage(err, "failed to delete enrollment")
	}
	return nil
}
