package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	appErrors "github.com/jntcloudcod2019/challenge-fiap-api/pkg/errors"
	appValidator "github.com/jntcloudcod2019/challenge-fiap-api/pkg/validator"
)

func newUserServiceForTest(store *fakeStore) *UserService {
	return NewUserService(fakeUserRepo{store}, fakeStudentRepo{store}, NewBcryptHasher(bcrypt.MinCost), appValidator.New(), zap.NewNop())
}

func TestUserServiceCreate(t *testing.T) {
	store := newFakeStore()
	svc := newUserServiceForTest(store)

	user, err := svc.Create(context.Background(), CreateUserRequest{FullName: "Admin User", Email: "Admin@School.com", Password: "secret1", Document: "111", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "admin@school.com", user.Email)
	assert.True(t, user.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))

	_, err = svc.Create(context.Background(), CreateUserRequest{FullName: "Other", Email: "admin@school.com", Password: "secret1", Document: "222", Role: models.RoleUser})
	assert.Equal(t, "email already registered", appErrors.FromError(err).Message)

	_, err = svc.Create(context.Background(), CreateUserRequest{FullName: "Other", Email: "other@school.com", Password: "secret1", Document: "111", Role: models.RoleUser})
	assert.Equal(t, "document already registered", appErrors.FromError(err).Message)

	_, err = svc.Create(context.Background(), CreateUserRequest{FullName: "Other", Email: "x@school.com", Password: "secret1", Document: "333", Role: "Root"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

type failingUserRepo struct {
	fakeUserRepo
	err error
}

func (r failingUserRepo) ExistsByDocument(ctx context.Context, document, excludeID string) (bool, error) {
	return false, r.err
}

func TestUserServiceCreateLogsDocumentCheckFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	store := newFakeStore()
	repo := failingUserRepo{fakeUserRepo: fakeUserRepo{store}, err: errors.New("connection reset")}
	svc := NewUserService(repo, fakeStudentRepo{store}, NewBcryptHasher(bcrypt.MinCost), appValidator.New(), zap.New(core))

	_, err := svc.Create(context.Background(), CreateUserRequest{FullName: "Admin User", Email: "admin@school.com", Password: "secret1", Document: "123.456.789-00", Role: models.RoleAdmin})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStorage.Code, appErr.Code)
	assert.Equal(t, "failed to check document uniqueness", appErr.Message)

	entries := logs.FilterMessage("check user document").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "12345678900", entries[0].ContextMap()["document"])
	assert.Equal(t, "connection reset", entries[0].ContextMap()["error"])
}

func TestUserServiceUpdate(t *testing.T) {
	store := newFakeStore()
	svc := newUserServiceForTest(store)
	first, err := svc.Create(context.Background(), CreateUserRequest{FullName: "First User", Email: "first@school.com", Password: "secret1", Document: "111", Role: models.RoleUser})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateUserRequest{FullName: "Second User", Email: "second@school.com", Password: "secret1", Document: "222", Role: models.RoleUser})
	require.NoError(t, err)

	taken := "second@school.com"
	_, err = svc.Update(context.Background(), first.ID, UpdateUserRequest{Email: &taken})
	assert.Equal(t, "email already registered", appErrors.FromError(err).Message)

	same := "FIRST@school.com"
	password := "newsecret"
	inactive := false
	updated, err := svc.Update(context.Background(), "111", UpdateUserRequest{Email: &same, Password: &password, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "first@school.com", updated.Email)
	assert.False(t, updated.Active)
	assert.Equal(t, "First User", updated.FullName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("newsecret")))
}

func TestUserServiceDeleteGuardsLinkedStudent(t *testing.T) {
	store := newFakeStore()
	students := NewStudentService(fakeStudentRepo{store}, fakeUserRepo{store}, fixedPasswords{}, NewBcryptHasher(bcrypt.MinCost), appValidator.New(), zap.NewNop())
	created, err := students.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)
	store.enrollments["e1"] = models.Enrollment{ID: "e1", StudentID: created.Student.ID, Status: models.EnrollmentStatusActive}

	svc := newUserServiceForTest(store)
	err = svc.Delete(context.Background(), "ana@example.com")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	delete(store.enrollments, "e1")
	require.NoError(t, svc.Delete(context.Background(), "ana@example.com"))
	assert.Empty(t, store.students)

	err = svc.Delete(context.Background(), "ana@example.com")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestUserServiceListSearchCount(t *testing.T) {
	store := newFakeStore()
	svc := newUserServiceForTest(store)
	for _, name := range []string{"Carla", "Bruno", "Alice"} {
		_, err := svc.Create(context.Background(), CreateUserRequest{FullName: name + " Souza", Email: name + "@school.com", Password: "secret1", Document: name, Role: models.RoleUser})
		require.NoError(t, err)
	}

	users, pagination, err := svc.List(context.Background(), models.UserFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Alice Souza", users[0].FullName)
	assert.Equal(t, 2, pagination.TotalPages())

	found, _, err := svc.Search(context.Background(), models.UserFilter{Search: "brun"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, _, err = svc.Search(context.Background(), models.UserFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	total, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}
