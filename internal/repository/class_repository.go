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

var classView = psql.Select(
	"c.id", "c.class_code", "c.name", "c.description", "c.capacity", "c.room", "c.status", "c.created_at", "c.updated_at",
	"(SELECT COUNT(*) FROM enrollments e WHERE e.class_id = c.id) AS total_enrollments",
).From("classes c")

// ClassRepository handles persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// ListCodes returns every stored class code starting with prefix.
func (r *ClassRepository) ListCodes(ctx context.Context, prefix string) ([]string, error) {
	codes := []string{}
	if err := r.db.SelectContext(ctx, &codes, `SELECT class_code FROM classes WHERE class_code LIKE $1`, prefix+"%"); err != nil {
		return nil, fmt.Errorf("list class codes: %w", err)
	}
	return codes, nil
}

// FindByCode returns a class with its enrollment count.
func (r *ClassRepository) FindByCode(ctx context.Context, code string) (*models.ClassView, error) {
	query, args, err := classView.Where(squirrel.Eq{"c.class_code": code}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find class: %w", err)
	}
	var class models.ClassView
	if err := r.db.GetContext(ctx, &class, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class by code: %w", err)
	}
	view := class.WithOccupancy()
	return &view, nil
}

// List returns one page of classes in numeric code order. Search matches code, name, description or status.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassView, int, error) {
	where := squirrel.And{}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"c.class_code": pattern},
			squirrel.ILike{"c.name": pattern},
			squirrel.ILike{"c.description": pattern},
			squirrel.ILike{"c.status": pattern},
		})
	}

	page := models.NewPagination(filter.Page, filter.PageSize, 0)
	query, args, err := classView.Where(where).
		OrderBy("LENGTH(c.class_code) ASC", "c.class_code ASC").
		Limit(uint64(page.PageSize)).Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list classes: %w", err)
	}
	classes := []models.ClassView{}
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}
	for i := range classes {
		classes[i] = classes[i].WithOccupancy()
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("classes c").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count classes: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// Create inserts a new class. Unique violations on class_code are returned wrapped.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO classes (id, class_code, name, description, capacity, room, status, created_at, updated_at) VALUES (:id, :class_code, :name, :description, :capacity, :room, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update writes the mutable class columns.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	now := time.Now().UTC()
	class.UpdatedAt = &now
	const query = `UPDATE classes SET name = :name, description = :description, capacity = :capacity, room = :room, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class by id.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}
