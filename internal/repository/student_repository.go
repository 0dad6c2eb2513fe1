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
	appValidator "github.com/jntcloudcod2019/challenge-fiap-api/pkg/validator"
)

// studentView selects a student joined with its user and per-student enrollment counters.
var studentView = psql.Select(
	"s.id", "s.user_id", "s.registration_number", "s.full_name", "s.cpf", "s.birth_date", "s.address", "s.phone_number", "s.created_at", "s.updated_at",
	"u.full_name AS user_full_name", "u.email", "u.document", "u.active AS user_active",
	"COALESCE(ec.total, 0) AS total_enrollments", "COALESCE(ec.active, 0) AS active_enrollments",
).
	From("students s").
	Join("users u ON u.id = s.user_id").
	LeftJoin("(SELECT student_id, COUNT(*) AS total, COUNT(*) FILTER (WHERE status = 'Active') AS active FROM enrollments GROUP BY student_id) ec ON ec.student_id = s.id")

// StudentRepository manages persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) getView(ctx context.Context, builder squirrel.SelectBuilder, op string) (*models.StudentView, error) {
	query, args, err := builder.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	var view models.StudentView
	if err := r.db.GetContext(ctx, &view, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &view, nil
}

// FindByRegistrationNumber returns a student view by RA.
func (r *StudentRepository) FindByRegistrationNumber(ctx context.Context, ra string) (*models.StudentView, error) {
	return r.getView(ctx, studentView.Where(squirrel.Eq{"s.registration_number": ra}), "find student by registration number")
}

// FindByUserID returns the student bound to a user.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.StudentView, error) {
	return r.getView(ctx, studentView.Where(squirrel.Eq{"s.user_id": userID}), "find student by user")
}

// FindByTerm resolves the first student whose identifiers equal term or whose name contains it.
// Identifier matches sort ahead of name matches.
func (r *StudentRepository) FindByTerm(ctx context.Context, term string) (*models.StudentView, error) {
	document := appValidator.NormalizeCPF(term)
	exact := squirrel.Or{
		squirrel.Eq{"s.registration_number": term},
		squirrel.Eq{"s.cpf": document},
		squirrel.Eq{"u.document": document},
		squirrel.Expr("LOWER(u.email) = LOWER(?)", term),
	}
	pattern := likePattern(term)
	builder := studentView.
		Where(squirrel.Or{exact, squirrel.ILike{"s.full_name": pattern}, squirrel.ILike{"u.full_name": pattern}}).
		OrderByClause("CASE WHEN s.registration_number = ? OR s.cpf = ? OR u.document = ? OR LOWER(u.email) = LOWER(?) THEN 0 ELSE 1 END", term, document, document, term).
		OrderBy("s.full_name ASC")
	return r.getView(ctx, builder, "find student by term")
}

// ExistsByCPF reports whether a student already holds the CPF.
func (r *StudentRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	return r.exists(ctx, "cpf", cpf)
}

// ExistsByRegistrationNumber reports whether a student already holds the RA.
func (r *StudentRepository) ExistsByRegistrationNumber(ctx context.Context, ra string) (bool, error) {
	return r.exists(ctx, "registration_number", ra)
}

func (r *StudentRepository) exists(ctx context.Context, column, value string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM students WHERE %s = $1 LIMIT 1", column)
	var found int
	if err := r.db.GetContext(ctx, &found, query, value); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student %s: %w", column, err)
	}
	return true, nil
}

// List returns one page of students ordered by user name. Search matches name, RA or CPF.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentView, int, error) {
	where := squirrel.And{}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"s.full_name": pattern},
			squirrel.ILike{"s.registration_number": pattern},
			squirrel.ILike{"s.cpf": pattern},
		})
	}

	page := models.NewPagination(filter.Page, filter.PageSize, 0)
	query, args, err := studentView.Where(where).
		OrderBy("u.full_name ASC", "s.id ASC").
		Limit(uint64(page.PageSize)).Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list students: %w", err)
	}
	students := []models.StudentView{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("students s").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count students: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// CreateWithUser inserts the backing user and the student in one transaction.
func (r *StudentRepository) CreateWithUser(ctx context.Context, user *models.User, student *models.Student) (err error) {
	prepareUser(user)
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	student.UserID = user.ID
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create student: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, insertUser, user); err != nil {
		return fmt.Errorf("create student user: %w", err)
	}
	const query = `INSERT INTO students (id, user_id, registration_number, full_name, cpf, birth_date, address, phone_number, created_at, updated_at) VALUES (:id, :user_id, :registration_number, :full_name, :cpf, :birth_date, :address, :phone_number, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create student: %w", err)
	}
	return nil
}

// Update writes the mutable student columns.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	student.UpdatedAt = &now
	const query = `UPDATE students SET full_name = :full_name, birth_date = :birth_date, address = :address, phone_number = :phone_number, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes the student's user; the student row and its enrollments cascade.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id IN (SELECT user_id FROM students WHERE id = $1)`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// Statistics aggregates enrollment counters across all students.
func (r *StudentRepository) Statistics(ctx context.Context) (*models.StudentStatistics, error) {
	const query = `SELECT
		COUNT(*) AS total_students,
		COALESCE(SUM(ec.total), 0) AS total_enrollments,
		COALESCE(SUM(ec.active), 0) AS total_active_enrollments,
		COUNT(*) FILTER (WHERE COALESCE(ec.active, 0) > 0) AS students_with_active_enrollments,
		COUNT(*) FILTER (WHERE COALESCE(ec.total, 0) = 0) AS students_without_enrollments
		FROM students s
		LEFT JOIN (SELECT student_id, COUNT(*) AS total, COUNT(*) FILTER (WHERE status = 'Active') AS active FROM enrollments GROUP BY student_id) ec ON ec.student_id = s.id`
	var stats models.StudentStatistics
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("student statistics: %w", err)
	}
	return &stats, nil
}
