package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	appErrors "github.com/jntcloudcod2019/challenge-fiap-api/pkg/errors"
	appValidator "github.com/jntcloudcod2019/challenge-fiap-api/pkg/validator"
)

type mockThrottle struct {
	blocked  bool
	failures int
	resets   int
}

func (m *mockThrottle) Allowed(ctx context.Context, email, ip string) bool { return !m.blocked }

func (m *mockThrottle) RecordFailure(ctx context.Context, email, ip string) { m.failures++ }

func (m *mockThrottle) Reset(ctx context.Context, email, ip string) { m.resets++ }

type mockLoginObserver struct {
	outcomes []string
}

func (m *mockLoginObserver) ObserveLogin(outcome string) { m.outcomes = append(m.outcomes, outcome) }

var testAuthConfig = AuthConfig{
	AccessTokenSecret: "test_secret_test_secret_test_secret",
	AccessTokenExpiry: 240 * time.Minute,
	Issuer:            "challenge-fiap-api",
	Audience:          []string{"challenge-fiap-clients"},
}

func newAuthServiceForTest(store *fakeStore, throttle loginThrottle) *AuthService {
	return NewAuthService(fakeUserRepo{store}, throttle, NewBcryptHasher(bcrypt.MinCost), appValidator.New(), zap.NewNop(), testAuthConfig)
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	store := newFakeStore()
	throttle := &mockThrottle{}
	observer := &mockLoginObserver{}
	svc := newAuthServiceForTest(store, throttle)
	svc.SetLoginObserver(observer)

	registered, err := svc.Register(context.Background(), models.RegisterRequest{FullName: "Admin User", Email: "admin@school.com", Password: "secret1", Document: "111", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, models.RoleAdmin, registered.User.Role)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "ADMIN@school.com", Password: "secret1", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, 1, throttle.resets)
	assert.Equal(t, []string{LoginSucceeded}, observer.outcomes)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, registered.User.ID, claims.Subject)
	assert.Equal(t, "111", claims.Document)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(240*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestAuthServiceRegisterDefaultsRoleAndRejectsDuplicates(t *testing.T) {
	store := newFakeStore()
	svc := newAuthServiceForTest(store, nil)

	res, err := svc.Register(context.Background(), models.RegisterRequest{FullName: "Plain User", Email: "user@school.com", Password: "secret1", Document: "222"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, res.User.Role)

	_, err = svc.Register(context.Background(), models.RegisterRequest{FullName: "Plain User", Email: "user@school.com", Password: "secret1", Document: "333"})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Register(context.Background(), models.RegisterRequest{FullName: "Sneaky", Email: "s@school.com", Password: "secret1", Document: "444", Role: models.RoleStudent})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	store := newFakeStore()
	throttle := &mockThrottle{}
	svc := newAuthServiceForTest(store, throttle)
	_, err := svc.Register(context.Background(), models.RegisterRequest{FullName: "Admin User", Email: "admin@school.com", Password: "secret1", Document: "111"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.com", Password: "wrong"})
	assert.Equal(t, "invalid email or password", appErrors.FromError(err).Message)
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ghost@school.com", Password: "wrong"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 2, throttle.failures)

	for id, u := range store.users {
		u.Active = false
		store.users[id] = u
	}
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.com", Password: "secret1"})
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)

	throttle.blocked = true
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "admin@school.com", Password: "secret1"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, 429, appErr.Status)
	assert.Equal(t, "too many login attempts", appErr.Message)
}

func TestAuthServiceValidateTokenRejectsForeignTokens(t *testing.T) {
	store := newFakeStore()
	svc := newAuthServiceForTest(store, nil)
	res, err := svc.Register(context.Background(), models.RegisterRequest{FullName: "Admin User", Email: "admin@school.com", Password: "secret1", Document: "111"})
	require.NoError(t, err)

	other := testAuthConfig
	other.Audience = []string{"someone-else"}
	foreign := NewAuthService(fakeUserRepo{store}, nil, nil, nil, nil, other)
	_, err = foreign.ValidateToken(res.Token)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.ValidateToken(res.Token + "x")
	assert.Error(t, err)

	me, err := svc.Me(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@school.com", me.Email)
}
