package handler

import (
	"context"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/service"
	"github.com/jntcloudcod2019/challenge-fiap-api/pkg/export"
)

type tokenStub map[string]*models.JWTClaims

func (t tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, errUnauthorizedToken
}

type authServiceMock struct {
	loginReq  models.LoginRequest
	loginResp *models.AuthResponse
	loginErr  error
	meID      string
}

func (m *authServiceMock) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	return &models.AuthResponse{Token: "t", User: models.UserInfo{Email: req.Email}}, nil
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	m.loginReq = req
	return m.loginResp, m.loginErr
}

func (m *authServiceMock) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	m.meID = userID
	return &models.UserInfo{ID: userID}, nil
}

type userServiceMock struct {
	lastFilter models.UserFilter
	total      int
	err        error
}

func (m *userServiceMock) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	m.lastFilter = filter
	page := models.NewPagination(filter.Page, filter.PageSize, m.total)
	return []models.User{{ID: "u-1"}}, &page, m.err
}

func (m *userServiceMock) Search(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.List(ctx, filter)
}

func (m *userServiceMock) Count(ctx context.Context) (int, error) { return m.total, m.err }

func (m *userServiceMock) Get(ctx context.Context, query string) (*models.User, error) {
	return &models.User{ID: query}, m.err
}

func (m *userServiceMock) Create(ctx context.Context, req service.CreateUserRequest) (*models.User, error) {
	return &models.User{Email: req.Email}, m.err
}

func (m *userServiceMock) Update(ctx context.Context, query string, req service.UpdateUserRequest) (*models.User, error) {
	return &models.User{ID: query}, m.err
}

func (m *userServiceMock) Delete(ctx context.Context, query string) error { return m.err }

type classServiceMock struct {
	created service.CreateClassRequest
	err     error
}

func (m *classServiceMock) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassView, *models.Pagination, error) {
	page := models.NewPagination(filter.Page, filter.PageSize, 1)
	return []models.ClassView{{Class: models.Class{ClassCode: "CLS01"}}}, &page, m.err
}

func (m *classServiceMock) Search(ctx context.Context, filter models.ClassFilter) ([]models.ClassView, *models.Pagination, error) {
	return m.List(ctx, filter)
}

func (m *classServiceMock) GetByCode(ctx context.Context, code string) (*models.ClassView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.ClassView{Class: models.Class{ClassCode: code}}, nil
}

func (m *classServiceMock) Create(ctx context.Context, req service.CreateClassRequest) (*models.ClassView, error) {
	m.created = req
	return &models.ClassView{Class: models.Class{ClassCode: "CLS01", Name: req.Name}}, m.err
}

func (m *classServiceMock) Update(ctx context.Context, code string, req service.UpdateClassRequest) (*models.ClassView, error) {
	return m.GetByCode(ctx, code)
}

func (m *classServiceMock) Delete(ctx context.Context, code string) error { return m.err }

type rosterMock struct {
	format export.Format
}

func (m *rosterMock) ClassRoster(ctx context.Context, code string, format export.Format) (*service.Document, error) {
	m.format = format
	return &service.Document{Filename: "roster_" + code + ".csv", ContentType: "text/csv", Data: []byte("a,b\n")}, nil
}

type studentServiceMock struct {
	userID string
	err    error
}

func (m *studentServiceMock) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentView, *models.Pagination, error) {
	page := models.NewPagination(filter.Page, filter.PageSize, 0)
	return []models.StudentView{}, &page, m.err
}

func (m *studentServiceMock) Search(ctx context.Context, filter models.StudentFilter) ([]models.StudentView, *models.Pagination, error) {
	return m.List(ctx, filter)
}

func (m *studentServiceMock) GetByRegistrationNumber(ctx context.Context, ra string) (*models.StudentView, error) {
	return &models.StudentView{Student: models.Student{RegistrationNumber: ra}}, m.err
}

func (m *studentServiceMock) GetByUserID(ctx context.Context, userID string) (*models.StudentView, error) {
	m.userID = userID
	return &models.StudentView{Student: models.Student{UserID: userID}}, m.err
}

func (m *studentServiceMock) FindByTerm(ctx context.Context, term string) (*models.StudentView, error) {
	return &models.StudentView{Student: models.Student{FullName: term}}, m.err
}

func (m *studentServiceMock) Create(ctx context.Context, req service.CreateStudentRequest) (*service.CreateStudentResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &service.CreateStudentResult{
		Student:           models.StudentView{Student: models.Student{RegistrationNumber: req.RegistrationNumber}},
		GeneratedPassword: "Str0ng!Passw",
	}, nil
}

func (m *studentServiceMock) Update(ctx context.Context, term string, req service.UpdateStudentRequest) (*models.StudentView, error) {
	return m.FindByTerm(ctx, term)
}

func (m *studentServiceMock) DeleteByQuery(ctx context.Context, term string) error { return m.err }

func (m *studentServiceMock) Statistics(ctx context.Context) (*models.StudentStatistics, error) {
	return &models.StudentStatistics{TotalStudents: 3}, m.err
}

type enrollmentServiceMock struct {
	items      []models.EnrollmentView
	lastFilter models.EnrollmentFilter
	mineUserID string
	err        error
}

func (m *enrollmentServiceMock) Create(ctx context.Context, req service.CreateEnrollmentRequest) (*models.EnrollmentView, error) {
	return &models.EnrollmentView{ClassCode: req.ClassCode, StudentName: "Ana Lima"}, m.err
}

func (m *enrollmentServiceMock) Get(ctx context.Context, id string) (*models.EnrollmentView, error) {
	return &models.EnrollmentView{Enrollment: models.Enrollment{ID: id}}, m.err
}

func (m *enrollmentServiceMock) List(ctx context.Context) ([]models.EnrollmentView, error) {
	return m.items, m.err
}

func (m *enrollmentServiceMock) ListByStudent(ctx context.Context, term string) ([]models.EnrollmentView, error) {
	return m.items, m.err
}

func (m *enrollmentServiceMock) ListMine(ctx context.Context, userID string) ([]models.EnrollmentView, error) {
	m.mineUserID = userID
	return m.items, m.err
}

func (m *enrollmentServiceMock) ListByClass(ctx context.Context, code string) ([]models.EnrollmentView, error) {
	return m.items, m.err
}

func (m *enrollmentServiceMock) Search(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentView, error) {
	m.lastFilter = filter
	return m.items, m.err
}

func (m *enrollmentServiceMock) Update(ctx context.Context, id string, req service.UpdateEnrollmentRequest) (*models.EnrollmentView, error) {
	return m.Get(ctx, id)
}

func (m *enrollmentServiceMock) Delete(ctx context.Context, id string) error { return m.err }
