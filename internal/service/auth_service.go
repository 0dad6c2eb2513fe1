package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/repository"
	appErrors "github.com/jntcloudcod2019/challenge-fiap-api/pkg/errors"
	appValidator "github.com/jntcloudcod2019/challenge-fiap-api/pkg/validator"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsByDocument(ctx context.Context, document, excludeID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

type loginThrottle interface {
	Allowed(ctx context.Context, email, ip string) bool
	RecordFailure(ctx context.Context, email, ip string)
	Reset(ctx context.Context, email, ip string)
}

type loginObserver interface {
	ObserveLogin(outcome string)
}

// Login outcomes reported to the observer.
const (
	LoginSucceeded = "success"
	LoginFailed    = "failure"
	LoginThrottled = "throttled"
)

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	Audience          []string
}

// AuthService provides authentication use cases.
type AuthService struct {
	repo      authUserRepository
	throttle  loginThrottle
	hasher    passwordHasher
	observer  loginObserver
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance. A nil throttle disables login throttling.
func NewAuthService(repo authUserRepository, throttle loginThrottle, hasher passwordHasher, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = appValidator.New()
	}
	if hasher == nil {
		hasher = NewBcryptHasher(0)
	}
	return &AuthService{repo: repo, throttle: throttle, hasher: hasher, validator: validate, logger: logger, config: config}
}

// SetLoginObserver registers a sink for login outcomes.
func (s *AuthService) SetLoginObserver(observer loginObserver) {
	s.observer = observer
}

func (s *AuthService) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveLogin(outcome)
	}
}

// Register creates an account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid register payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	document := appValidator.NormalizeCPF(req.Document)

	exists, err := s.repo.ExistsByEmail(ctx, email, "")
	if err != nil {
		s.logger.Error("check user email", zap.String("email", email), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to check email uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}
	exists, err = s.repo.ExistsByDocument(ctx, document, "")
	if err != nil {
		s.logger.Error("check user document", zap.String("document", document), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to check document uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "document already registered")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	user := &models.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PasswordHash: hash,
		Document:     document,
		Role:         role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, userConflict(err)
		}
		s.logger.Error("register user", zap.String("email", email), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to create user")
	}

	return s.issue(user)
}

// Login authenticates a user and returns an access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid login payload")
	}

	if s.throttle != nil && !s.throttle.Allowed(ctx, req.Email, req.IP) {
		s.observe(LoginThrottled)
		return nil, appErrors.Clone(appErrors.ErrTooManyRequests, "too many login attempts")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.fail(ctx, req)
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		s.logger.Error("find user by email", zap.Error(err))
		return nil, appErrors.Storage(err, "failed to fetch user")
	}

	if !s.hasher.Verify(user.PasswordHash, req.Password) {
		s.fail(ctx, req)
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	if !user.Active {
		s.observe(LoginFailed)
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	if s.throttle != nil {
		s.throttle.Reset(ctx, req.Email, req.IP)
	}
	s.observe(LoginSucceeded)
	return s.issue(user)
}

func (s *AuthService) fail(ctx context.Context, req models.LoginRequest) {
	s.observe(LoginFailed)
	if s.throttle != nil {
		s.throttle.RecordFailure(ctx, req.Email, req.IP)
	}
}

// Me returns the profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		s.logger.Error("find user by id", zap.String("user_id", userID), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to load user")
	}
	info := models.NewUserInfo(*user)
	return &info, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	if len(s.config.Audience) > 0 {
		opts = append(opts, jwt.WithAudience(s.config.Audience[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	token, expiresAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	return &models.AuthResponse{Token: token, ExpiresAt: expiresAt, User: models.NewUserInfo(*user)}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Email:    user.Email,
		FullName: user.FullName,
		Document: user.Document,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			Audience:  s.config.Audience,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
