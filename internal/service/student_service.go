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

type studentRepository interface {
	FindByRegistrationNumber(ctx context.Context, ra string) (*models.StudentView, error)
	FindByUserID(ctx context.Context, userID string) (*models.StudentView, error)
	FindByTerm(ctx context.Context, term string) (*models.StudentView, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
	ExistsByRegistrationNumber(ctx context.Context, ra string) (bool, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentView, int, error)
	CreateWithUser(ctx context.Context, user *models.User, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
	Statistics(ctx context.Context) (*models.StudentStatistics, error)
}

type emailChecker interface {
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
}

type passwordGenerator interface {
	Generate() string
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// CreateStudentRequest captures the payload for registering a student.
type CreateStudentRequest struct {
	RegistrationNumber string  `json:"registrationNumber" validate:"required,min=5,max=20"`
	FullName           string  `json:"fullName" validate:"required,min=3,max=200"`
	CPF                string  `json:"cpf" validate:"required,cpf"`
	Email              string  `json:"email" validate:"required,email,max=200"`
	BirthDate          *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Address            *string `json:"address" validate:"omitempty,max=200"`
	PhoneNumber        *string `json:"phoneNumber" validate:"omitempty,min=10,max=15"`
}

// UpdateStudentRequest carries optional profile changes.
type UpdateStudentRequest struct {
	FullName    *string `json:"fullName" validate:"omitempty,min=3,max=200"`
	BirthDate   *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Address     *string `json:"address" validate:"omitempty,max=200"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,min=10,max=15"`
}

// CreateStudentResult returns the stored student and the one-time password of its account.
type CreateStudentResult struct {
	Student           models.StudentView `json:"student"`
	GeneratedPassword string             `json:"generatedPassword"`
}

// StudentService handles student workflows.
type StudentService struct {
	repo      studentRepository
	users     emailChecker
	passwords passwordGenerator
	hasher    passwordHasher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService creates a new student service.
func NewStudentService(repo studentRepository, users emailChecker, passwords passwordGenerator, hasher passwordHasher, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = appValidator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if passwords == nil {
		passwords = NewPasswordGenerator(0)
	}
	if hasher == nil {
		hasher = NewBcryptHasher(0)
	}
	return &StudentService{repo: repo, users: users, passwords: passwords, hasher: hasher, validator: validate, logger: logger}
}

// List returns a page of students.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentView, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list students", zap.Error(err))
		return nil, nil, appErrors.Storage(err, "failed to list students")
	}
	pagination := models.NewPagination(filter.Page, filter.PageSize, total)
	return students, &pagination, nil
}

// Search matches students by name, registration number or CPF.
func (s *StudentService) Search(ctx context.Context, filter models.StudentFilter) ([]models.StudentView, *models.Pagination, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Search == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "search query is required")
	}
	return s.List(ctx, filter)
}

// GetByRegistrationNumber returns the student holding ra.
func (s *StudentService) GetByRegistrationNumber(ctx context.Context, ra string) (*models.StudentView, error) {
	return s.load(ctx, "registration_number", ra, s.repo.FindByRegistrationNumber)
}

// GetByUserID returns the student profile bound to a user account.
func (s *StudentService) GetByUserID(ctx context.Context, userID string) (*models.StudentView, error) {
	return s.load(ctx, "user_id", userID, s.repo.FindByUserID)
}

// FindByTerm resolves a student by RA, CPF, document, email or name.
func (s *StudentService) FindByTerm(ctx context.Context, term string) (*models.StudentView, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "search query is required")
	}
	return s.load(ctx, "term", term, s.repo.FindByTerm)
}

func (s *StudentService) load(ctx context.Context, field, value string, find func(context.Context, string) (*models.StudentView, error)) (*models.StudentView, error) {
	student, err := find(ctx, strings.TrimSpace(value))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		s.logger.Error("find student", zap.String(field, value), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to load student")
	}
	return student, nil
}

// Create registers a student together with its login account.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*CreateStudentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid student payload")
	}
	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "birthDate must use the YYYY-MM-DD format")
	}

	cpf := appValidator.NormalizeCPF(req.CPF)
	ra := strings.TrimSpace(req.RegistrationNumber)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.ExistsByCPF(ctx, cpf)
	if err != nil {
		s.logger.Error("check student cpf", zap.String("cpf", cpf), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to check CPF")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "CPF already registered")
	}
	exists, err = s.repo.ExistsByRegistrationNumber(ctx, ra)
	if err != nil {
		s.logger.Error("check student registration number", zap.String("registration_number", ra), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to check registration number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "registration number already registered")
	}
	exists, err = s.users.ExistsByEmail(ctx, email, "")
	if err != nil {
		s.logger.Error("check user email", zap.String("email", email), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	password := s.passwords.Generate()
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	fullName := strings.TrimSpace(req.FullName)
	user := &models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Document:     cpf,
		Role:         models.RoleStudent,
		Active:       true,
	}
	student := &models.Student{
		RegistrationNumber: ra,
		FullName:           fullName,
		CPF:                cpf,
		BirthDate:          birthDate,
		Address:            req.Address,
		PhoneNumber:        req.PhoneNumber,
	}
	if err := s.repo.CreateWithUser(ctx, user, student); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, studentConflict(err)
		}
		s.logger.Error("create student", zap.String("registration_number", ra), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to create student")
	}

	view := models.StudentView{
		Student:      *student,
		UserFullName: user.FullName,
		Email:        user.Email,
		Document:     user.Document,
		UserActive:   user.Active,
	}
	return &CreateStudentResult{Student: view, GeneratedPassword: password}, nil
}

func studentConflict(err error) *appErrors.Error {
	message := "student already registered"
	switch repository.ViolatedConstraint(err) {
	case "uq_students_cpf", "uq_users_document":
		message = "CPF already registered"
	case "uq_students_registration_number":
		message = "registration number already registered"
	case "uq_users_email":
		message = "email already registered"
	}
	return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message)
}

// Update merges the request into the student resolved by term.
func (s *StudentService) Update(ctx context.Context, term string, req UpdateStudentRequest) (*models.StudentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid student payload")
	}
	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "birthDate must use the YYYY-MM-DD format")
	}

	current, err := s.FindByTerm(ctx, term)
	if err != nil {
		return nil, err
	}

	patch := models.StudentPatch{FullName: req.FullName, BirthDate: birthDate, Address: req.Address, PhoneNumber: req.PhoneNumber}
	updated := patch.Apply(current.Student)
	if err := s.repo.Update(ctx, &updated); err != nil {
		s.logger.Error("update student", zap.String("student_id", updated.ID), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to update student")
	}

	view := *current
	view.Student = updated
	return &view, nil
}

// DeleteByQuery removes the student resolved by term and its account.
func (s *StudentService) DeleteByQuery(ctx context.Context, term string) error {
	current, err := s.FindByTerm(ctx, term)
	if err != nil {
		return err
	}
	if current.ActiveEnrollments > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("cannot delete student with %d active enrollment(s)", current.ActiveEnrollments))
	}
	if err := s.repo.Delete(ctx, current.ID); err != nil {
		s.logger.Error("delete student", zap.String("student_id", current.ID), zap.Error(err))
		return appErrors.Storage(err, "failed to delete student")
	}
	return nil
}

// Statistics returns enrollment counters aggregated over all students.
func (s *StudentService) Statistics(ctx context.Context) (*models.StudentStatistics, error) {
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		s.logger.Error("student statistics", zap.Error(err))
		return nil, appErrors.Storage(err, "failed to load student statistics")
	}
	return stats, nil
}
