package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
)

var enrollmentView = psql.Select(
	"e.id", "e.student_id", "e.class_id", "e.enrollment_date", "e.status", "e.created_at", "e.updated_at",
	"s.full_name AS student_name", "s.registration_number", "c.class_code", "c.name AS class_name",
).
	From("enrollments e").
	Join("students s ON s.id = e.student_id").
	LeftJoin("classes c ON c.id = e.class_id")

// EnrollmentRepository exposes persistence helpers for enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID returns an enrollment with student and class details.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.EnrollmentView, error) {
	query, args, err := enrollmentView.Where(squirrel.Eq{"e.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find enrollment: %w", err)
	}
	var enrollment models.EnrollmentView
	if err := r.db.GetContext(ctx, &enrollment, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// List returns every enrollment, newest first.
func (r *EnrollmentRepository) List(ctx context.Context) ([]models.EnrollmentView, error) {
	return r.selectViews(ctx, enrollmentView.OrderBy("e.enrollment_date DESC", "e.id ASC"), "list enrollments")
}

// Search applies the non-empty filter fields conjunctively and orders by student name.
func (r *EnrollmentRepository) Search(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentView, error) {
	where := squirrel.Eq{}
	if filter.EnrollmentID != "" {
		where["e.id"] = filter.EnrollmentID
	}
	if filter.StudentID != "" {
		where["e.student_id"] = filter.StudentID
	}
	if filter.ClassID != "" {
		where["e.class_id"] = filter.ClassID
	}
	if filter.Status != "" {
		where["e.status"] = filter.Status
	}
	builder := enrollmentView
	if len(where) > 0 {
		builder = builder.Where(where)
	}
	return r.selectViews(ctx, builder.OrderBy("s.full_name ASC", "e.enrollment_date ASC"), "search enrollments")
}

// ListByStudent returns all enrollments of a student.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentView, error) {
	return r.Search(ctx, models.EnrollmentFilter{StudentID: studentID})
}

// ListByClass returns all enrollments of a class.
func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID string) ([]models.EnrollmentView, error) {
	return r.Search(ctx, models.EnrollmentFilter{ClassID: classID})
}

func (r *EnrollmentRepository) selectViews(ctx context.Context, builder squirrel.SelectBuilder, op string) ([]models.EnrollmentView, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	enrollments := []models.EnrollmentView{}
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return enrollments, nil
}

// ExistsOpen reports whether the student holds a non-cancelled enrollment in the class.
func (r *EnrollmentRepository) ExistsOpen(ctx context.Context, studentID, classID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND class_id = $2 AND status <> $3 LIMIT 1`
	var found int
	if err := r.db.GetContext(ctx, &found, query, studentID, classID, models.EnrollmentStatusCancelled); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check open enrollment: %w", err)
	}
	return true, nil
}

// Create inserts a new enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.EnrollmentDate.IsZero() {
		enrollment.EnrollmentDate = now
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	const query = `INSERT INTO enrollments (id, student_id, class_id, enrollment_date, status, created_at, updated_at) VALUES (:id, :student_id, :class_id, :enrollment_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Update writes the enrollment status.
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	now := time.Now().UTC()
	enrollment.UpdatedAt = &now
	const query = `UPDATE enrollments SET status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return nil
}

// Delete removes an enrollment by id.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}
