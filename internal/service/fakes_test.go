package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	appValidator "github.com/jntcloudcod2019/challenge-fiap-api/pkg/validator"
)

// fakeStore is an in-memory school database shared by the repository fakes below.
type fakeStore struct {
	users       map[string]models.User
	students    map[string]models.Student
	classes     map[string]models.Class
	enrollments map[string]models.Enrollment
	seq         int

	listCodesErr      error
	beforeClassCreate func(class *models.Class)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[string]models.User{},
		students:    map[string]models.Student{},
		classes:     map[string]models.Class{},
		enrollments: map[string]models.Enrollment{},
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func uniqueErr(constraint string) error {
	return fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: constraint})
}

func (f *fakeStore) studentView(s models.Student) models.StudentView {
	u := f.users[s.UserID]
	view := models.StudentView{Student: s, UserFullName: u.FullName, Email: u.Email, Document: u.Document, UserActive: u.Active}
	for _, e := range f.enrollments {
		if e.StudentID != s.ID {
			continue
		}
		view.TotalEnrollments++
		if e.Status == models.EnrollmentStatusActive {
			view.ActiveEnrollments++
		}
	}
	return view
}

func (f *fakeStore) classView(c models.Class) models.ClassView {
	view := models.ClassView{Class: c}
	for _, e := range f.enrollments {
		if e.ClassID != nil && *e.ClassID == c.ID {
			view.TotalEnrollments++
		}
	}
	return view.WithOccupancy()
}

func (f *fakeStore) enrollmentView(e models.Enrollment) models.EnrollmentView {
	s := f.students[e.StudentID]
	view := models.EnrollmentView{Enrollment: e, StudentName: s.FullName, RegistrationNumber: s.RegistrationNumber}
	if e.ClassID != nil {
		if c, ok := f.classes[*e.ClassID]; ok {
			code, name := c.ClassCode, c.Name
			view.ClassCode = &code
			view.ClassName = &name
		}
	}
	return view
}

func (f *fakeStore) deleteUser(id string) {
	delete(f.users, id)
	for sid, s := range f.students {
		if s.UserID != id {
			continue
		}
		delete(f.students, sid)
		for eid, e := range f.enrollments {
			if e.StudentID == sid {
				delete(f.enrollments, eid)
			}
		}
	}
}

func page[T any](items []T, p, size int) ([]T, int) {
	pagination := models.NewPagination(p, size, len(items))
	start := pagination.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + pagination.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], len(items)
}

func contains(value, term string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(term))
}

type fakeUserRepo struct{ *fakeStore }

func (r fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			user := u
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (r fakeUserRepo) FindByQuery(ctx context.Context, term string) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == term || strings.EqualFold(u.Email, term) || u.Document == term {
			user := u
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r fakeUserRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeUserRepo) ExistsByDocument(ctx context.Context, document, excludeID string) (bool, error) {
	for _, u := range r.users {
		if u.Document == document && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	users := []models.User{}
	for _, u := range r.users {
		if filter.Search == "" || contains(u.FullName, filter.Search) || contains(u.Email, filter.Search) || contains(u.Document, filter.Search) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].FullName < users[j].FullName })
	items, total := page(users, filter.Page, filter.PageSize)
	return items, total, nil
}

func (r fakeUserRepo) Count(ctx context.Context) (int, error) {
	return len(r.users), nil
}

func (r fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if exists, _ := r.ExistsByEmail(ctx, user.Email, ""); exists {
		return uniqueErr("uq_users_email")
	}
	if user.ID == "" {
		user.ID = r.nextID("user")
	}
	user.CreatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}

func (r fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.UpdatedAt = &now
	r.users[user.ID] = *user
	return nil
}

func (r fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.deleteUser(id)
	return nil
}

type fakeStudentRepo struct{ *fakeStore }

func (r fakeStudentRepo) find(match func(models.Student, models.User) bool) (*models.StudentView, error) {
	students := make([]models.Student, 0, len(r.students))
	for _, s := range r.students {
		students = append(students, s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].FullName < students[j].FullName })
	for _, s := range students {
		if match(s, r.users[s.UserID]) {
			view := r.studentView(s)
			return &view, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r fakeStudentRepo) FindByRegistrationNumber(ctx context.Context, ra string) (*models.StudentView, error) {
	return r.find(func(s models.Student, _ models.User) bool { return s.RegistrationNumber == ra })
}

func (r fakeStudentRepo) FindByUserID(ctx context.Context, userID string) (*models.StudentView, error) {
	return r.find(func(s models.Student, _ models.User) bool { return s.UserID == userID })
}

func (r fakeStudentRepo) FindByTerm(ctx context.Context, term string) (*models.StudentView, error) {
	document := appValidator.NormalizeCPF(term)
	view, err := r.find(func(s models.Student, u models.User) bool {
		return s.RegistrationNumber == term || s.CPF == document || u.Document == document || strings.EqualFold(u.Email, term)
	})
	if err == nil {
		return view, nil
	}
	return r.find(func(s models.Student, u models.User) bool {
		return contains(s.FullName, term) || contains(u.FullName, term)
	})
}

func (r fakeStudentRepo) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	_, err := r.find(func(s models.Student, _ models.User) bool { return s.CPF == cpf })
	return err == nil, nil
}

func (r fakeStudentRepo) ExistsByRegistrationNumber(ctx context.Context, ra string) (bool, error) {
	_, err := r.FindByRegistrationNumber(ctx, ra)
	return err == nil, nil
}

func (r fakeStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentView, int, error) {
	views := []models.StudentView{}
	for _, s := range r.students {
		if filter.Search == "" || contains(s.FullName, filter.Search) || contains(s.RegistrationNumber, filter.Search) || contains(s.CPF, filter.Search) {
			views = append(views, r.studentView(s))
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].UserFullName < views[j].UserFullName })
	items, total := page(views, filter.Page, filter.PageSize)
	return items, total, nil
}

func (r fakeStudentRepo) CreateWithUser(ctx context.Context, user *models.User, student *models.Student) error {
	if exists, _ := r.ExistsByCPF(ctx, student.CPF); exists {
		return uniqueErr("uq_students_cpf")
	}
	if err := (fakeUserRepo{r.fakeStore}).Create(ctx, user); err != nil {
		return err
	}
	student.ID = r.nextID("student")
	student.UserID = user.ID
	student.CreatedAt = time.Now().UTC()
	r.students[student.ID] = *student
	return nil
}

func (r fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	student.UpdatedAt = &now
	r.students[student.ID] = *student
	return nil
}

func (r fakeStudentRepo) Delete(ctx context.Context, id string) error {
	if s, ok := r.students[id]; ok {
		r.deleteUser(s.UserID)
	}
	return nil
}

func (r fakeStudentRepo) Statistics(ctx context.Context) (*models.StudentStatistics, error) {
	stats := &models.StudentStatistics{}
	for _, s := range r.students {
		view := r.studentView(s)
		stats.TotalStudents++
		stats.TotalEnrollments += view.TotalEnrollments
		stats.TotalActiveEnrollments += view.ActiveEnrollments
		if view.ActiveEnrollments > 0 {
			stats.StudentsWithActiveEnrollments++
		}
		if view.TotalEnrollments == 0 {
			stats.StudentsWithoutEnrollments++
		}
	}
	return stats, nil
}

type fakeClassRepo struct{ *fakeStore }

func (r fakeClassRepo) ListCodes(ctx context.Context, prefix string) ([]string, error) {
	if r.listCodesErr != nil {
		return nil, r.listCodesErr
	}
	codes := []string{}
	for _, c := range r.classes {
		if strings.HasPrefix(c.ClassCode, prefix) {
			codes = append(codes, c.ClassCode)
		}
	}
	return codes, nil
}

func (r fakeClassRepo) FindByCode(ctx context.Context, code string) (*models.ClassView, error) {
	for _, c := range r.classes {
		if c.ClassCode == code {
			view := r.classView(c)
			return &view, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r fakeClassRepo) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassView, int, error) {
	views := []models.ClassView{}
	for _, c := range r.classes {
		description := ""
		if c.Description != nil {
			description = *c.Description
		}
		if filter.Search == "" || contains(c.ClassCode, filter.Search) || contains(c.Name, filter.Search) || contains(description, filter.Search) || contains(string(c.Status), filter.Search) {
			views = append(views, r.classView(c))
		}
	}
	sort.Slice(views, func(i, j int) bool {
		if len(views[i].ClassCode) != len(views[j].ClassCode) {
			return len(views[i].ClassCode) < len(views[j].ClassCode)
		}
		return views[i].ClassCode < views[j].ClassCode
	})
	items, total := page(views, filter.Page, filter.PageSize)
	return items, total, nil
}

func (r fakeClassRepo) Create(ctx context.Context, class *models.Class) error {
	if hook := r.beforeClassCreate; hook != nil {
		r.beforeClassCreate = nil
		hook(class)
	}
	for _, c := range r.classes {
		if c.ClassCode == class.ClassCode {
			return uniqueErr("uq_classes_class_code")
		}
	}
	class.ID = r.nextID("class")
	class.CreatedAt = time.Now().UTC()
	r.classes[class.ID] = *class
	return nil
}

func (r fakeClassRepo) Update(ctx context.Context, class *models.Class) error {
	now := time.Now().UTC()
	class.UpdatedAt = &now
	r.classes[class.ID] = *class
	return nil
}

func (r fakeClassRepo) Delete(ctx context.Context, id string) error {
	delete(r.classes, id)
	for eid, e := range r.enrollments {
		if e.ClassID != nil && *e.ClassID == id {
			e.ClassID = nil
			r.enrollments[eid] = e
		}
	}
	return nil
}

type fakeEnrollmentRepo struct{ *fakeStore }

func (r fakeEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.EnrollmentView, error) {
	if e, ok := r.enrollments[id]; ok {
		view := r.enrollmentView(e)
		return &view, nil
	}
	return nil, sql.ErrNoRows
}

func (r fakeEnrollmentRepo) List(ctx context.Context) ([]models.EnrollmentView, error) {
	return r.Search(ctx, models.EnrollmentFilter{})
}

func (r fakeEnrollmentRepo) Search(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentView, error) {
	views := []models.EnrollmentView{}
	for _, e := range r.enrollments {
		if filter.EnrollmentID != "" && e.ID != filter.EnrollmentID {
			continue
		}
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		if filter.ClassID != "" && (e.ClassID == nil || *e.ClassID != filter.ClassID) {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		views = append(views, r.enrollmentView(e))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].StudentName < views[j].StudentName })
	return views, nil
}

func (r fakeEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentView, error) {
	return r.Search(ctx, models.EnrollmentFilter{StudentID: studentID})
}

func (r fakeEnrollmentRepo) ListByClass(ctx context.Context, classID string) ([]models.EnrollmentView, error) {
	return r.Search(ctx, models.EnrollmentFilter{ClassID: classID})
}

func (r fakeEnrollmentRepo) ExistsOpen(ctx context.Context, studentID, classID string) (bool, error) {
	for _, e := range r.enrollments {
		if e.StudentID == studentID && e.ClassID != nil && *e.ClassID == classID && e.Status != models.EnrollmentStatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ClassID != nil && enrollment.Status != models.EnrollmentStatusCancelled {
		if open, _ := r.ExistsOpen(ctx, enrollment.StudentID, *enrollment.ClassID); open {
			return uniqueErr("uq_enrollments_student_class_open")
		}
	}
	enrollment.ID = r.nextID("enrollment")
	enrollment.CreatedAt = time.Now().UTC()
	r.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (r fakeEnrollmentRepo) Update(ctx context.Context, enrollment *models.Enrollment) error {
	now := time.Now().UTC()
	enrollment.UpdatedAt = &now
	r.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (r fakeEnrollmentRepo) Delete(ctx context.Context, id string) error {
	delete(r.enrollments, id)
	return nil
}

// fixedPasswords always hands out the same strong password.
type fixedPasswords struct{}

func (fixedPasswords) Generate() string { return "Str0ng!Passw" }
