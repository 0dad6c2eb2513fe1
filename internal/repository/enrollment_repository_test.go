package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
)

var enrollmentRowColumns = []string{"id", "student_id", "class_id", "enrollment_date", "status", "created_at", "updated_at", "student_name", "registration_number", "class_code", "class_name"}

func TestEnrollmentSearchByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(enrollmentRowColumns).
		AddRow("e1", "s1", "c1", now, "Active", now, nil, "Ana", "RA001", "CLS01", "Math").
		AddRow("e2", "s2", nil, now, "Active", now, nil, "Bruno", "RA002", nil, nil)
	mock.ExpectQuery("FROM enrollments e JOIN students s ON s.id = e.student_id LEFT JOIN classes c ON c.id = e.class_id WHERE e.status = \\$1 ORDER BY s.full_name ASC").
		WithArgs("Active").
		WillReturnRows(rows)

	enrollments, err := repo.Search(context.Background(), models.EnrollmentFilter{Status: models.EnrollmentStatusActive})
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	assert.Equal(t, "CLS01", *enrollments[0].ClassCode)
	assert.Nil(t, enrollments[1].ClassID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentExistsOpen(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments WHERE student_id = $1 AND class_id = $2 AND status <> $3 LIMIT 1")).
		WithArgs("s1", "c1", "Cancelled").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsOpen(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentCreateDefaultsDates(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").WillReturnResult(sqlmock.NewResult(1, 1))

	classID := "c1"
	enrollment := &models.Enrollment{StudentID: "s1", ClassID: &classID, Status: models.EnrollmentStatusActive}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	assert.NotEmpty(t, enrollment.ID)
	assert.False(t, enrollment.EnrollmentDate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("WHERE e.id = \\$1 LIMIT 1").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
