package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/repository"
	appErrors "github.com/jntcloudcod2019/challenge-fiap-api/pkg/errors"
	appValidator "github.com/jntcloudcod2019/challenge-fiap-api/pkg/validator"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByQuery(ctx context.Context, term string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsByDocument(ctx context.Context, document, excludeID string) (bool, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

type studentProfileFinder interface {
	FindByUserID(ctx context.Context, userID string) (*models.StudentView, error)
}

// CreateUserRequest represents payload for creating users.
type CreateUserRequest struct {
	FullName string          `json:"fullName" validate:"required,min=3,max=200"`
	Email    string          `json:"email" validate:"required,email,max=200"`
	Password string          `json:"password" validate:"required,min=6,max=100"`
	Document string          `json:"document" validate:"required,max=20"`
	Role     models.UserRole `json:"role" validate:"required,oneof=Admin Student User"`
	Active   *bool           `json:"active"`
}

// UpdateUserRequest payload for updating users. Absent fields are left untouched.
type UpdateUserRequest struct {
	FullName *string          `json:"fullName" validate:"omitempty,min=3,max=200"`
	Email    *string          `json:"email" validate:"omitempty,email,max=200"`
	Password *string          `json:"password" validate:"omitempty,min=6,max=100"`
	Document *string          `json:"document" validate:"omitempty,max=20"`
	Role     *models.UserRole `json:"role" validate:"omitempty,oneof=Admin Student User"`
	Active   *bool            `json:"active"`
}

// UserService handles user management workflows.
type UserService struct {
	repo      userRepository
	students  studentProfileFinder
	hasher    passwordHasher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, students studentProfileFinder, hasher passwordHasher, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = appValidator.New()
	}
	if hasher == nil {
		hasher = NewBcryptHasher(0)
	}
	return &UserService{repo: repo, students: students, hasher: hasher, validator: validate, logger: logger}
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list users", zap.Error(err))
		return nil, nil, appErrors.Storage(err, "failed to list users")
	}
	pagination := models.NewPagination(filter.Page, filter.PageSize, total)
	return users, &pagination, nil
}

// Search matches users by name, email or document.
func (s *UserService) Search(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Search == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "search query is required")
	}
	return s.List(ctx, filter)
}

// Count returns the number of users.
func (s *UserService) Count(ctx context.Context) (int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("count users", zap.Error(err))
		return 0, appErrors.Storage(err, "failed to count users")
	}
	return total, nil
}

// Get returns a user by id, email or document.
func (s *UserService) Get(ctx context.Context, query string) (*models.User, error) {
	user, err := s.repo.FindByQuery(ctx, appValidator.NormalizeCPF(query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		s.logger.Error("find user", zap.String("query", query), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to load user")
	}
	return user, nil
}

// Create adds a new user.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid create user payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	document := appValidator.NormalizeCPF(req.Document)
	if err := s.ensureUnique(ctx, email, document, ""); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	user := &models.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PasswordHash: hash,
		Document:     document,
		Role:         req.Role,
		Active:       active,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, userConflict(err)
		}
		s.logger.Error("create user", zap.String("email", email), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to create user")
	}
	return user, nil
}

// Update merges the request into the user resolved by query.
func (s *UserService) Update(ctx context.Context, query string, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid update payload")
	}

	user, err := s.Get(ctx, query)
	if err != nil {
		return nil, err
	}

	patch := models.UserPatch{FullName: req.FullName, Role: req.Role, Active: req.Active}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		patch.Email = &email
	}
	if req.Document != nil {
		document := appValidator.NormalizeCPF(*req.Document)
		patch.Document = &document
	}

	email, document := "", ""
	if patch.Email != nil && *patch.Email != strings.ToLower(user.Email) {
		email = *patch.Email
	}
	if patch.Document != nil && *patch.Document != user.Document {
		document = *patch.Document
	}
	if err := s.ensureUnique(ctx, email, document, user.ID); err != nil {
		return nil, err
	}

	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		patch.PasswordHash = &hash
	}

	updated := patch.Apply(*user)
	if err := s.repo.Update(ctx, &updated); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, userConflict(err)
		}
		s.logger.Error("update user", zap.String("user_id", user.ID), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to update user")
	}
	return &updated, nil
}

// Delete removes the user resolved by query unless its student profile has active enrollments.
func (s *UserService) Delete(ctx context.Context, query string) error {
	user, err := s.Get(ctx, query)
	if err != nil {
		return err
	}

	if s.students != nil {
		student, err := s.students.FindByUserID(ctx, user.ID)
		switch {
		case err == nil && student.ActiveEnrollments > 0:
			return appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("cannot delete user: linked student has %d active enrollment(s)", student.ActiveEnrollments))
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			s.logger.Error("find student by user", zap.String("user_id", user.ID), zap.Error(err))
			return appErrors.Storage(err, "failed to load student")
		}
	}

	if err := s.repo.Delete(ctx, user.ID); err != nil {
		s.logger.Error("delete user", zap.String("user_id", user.ID), zap.Error(err))
		return appErrors.Storage(err, "failed to delete user")
	}
	return nil
}

// ensureUnique rejects an email or document already held by a user other than excludeID.
// Empty values are skipped.
func (s *UserService) ensureUnique(ctx context.Context, email, document, excludeID string) error {
	if email != "" {
		exists, err := s.repo.ExistsByEmail(ctx, email, excludeID)
		if err != nil {
			s.logger.Error("check user email", zap.String("email", email), zap.String("exclude_id", excludeID), zap.Error(err))
			return appErrors.Storage(err, "failed to check email uniqueness")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
	}
	if document != "" {
		exists, err := s.repo.ExistsByDocument(ctx, document, excludeID)
		if err != nil {
			s.logger.Error("check user document", zap.String("document", document), zap.String("exclude_id", excludeID), zap.Error(err))
			return appErrors.Storage(err, "failed to check document uniqueness")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, "document already registered")
		}
	}
	return nil
}

func userConflict(err error) *appErrors.Error {
	message := "user already registered"
	switch repository.ViolatedConstraint(err) {
	case "uq_users_email":
		message = "email already registered"
	case "uq_users_document":
		message = "document already registered"
	}
	return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message)
}
