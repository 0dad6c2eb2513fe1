package repository

import (
	"context"
	"math"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
)

var classRowColumns = []string{"id", "class_code", "name", "description", "capacity", "room", "status", "created_at", "updated_at", "total_enrollments"}

func TestClassListCodes(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT class_code FROM classes WHERE class_code LIKE $1")).
		WithArgs("CLS%").
		WillReturnRows(sqlmock.NewRows([]string{"class_code"}).AddRow("CLS09").AddRow("CLS10"))

	codes, err := repo.ListCodes(context.Background(), "CLS")
	require.NoError(t, err)
	assert.Equal(t, []string{"CLS09", "CLS10"}, codes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassFindByCodeComputesSeats(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows(classRowColumns).
		AddRow("c1", "CLS01", "Math", nil, 50, nil, string(models.ClassStatusOpen), time.Now(), nil, 3)
	mock.ExpectQuery("FROM classes c WHERE c.class_code = \\$1 LIMIT 1").
		WithArgs("CLS01").
		WillReturnRows(rows)

	class, err := repo.FindByCode(context.Background(), "CLS01")
	require.NoError(t, err)
	assert.Equal(t, 3, class.TotalEnrollments)
	assert.Equal(t, 47, class.AvailableSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassListOrdersNumerically(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows(classRowColumns).
		AddRow("c9", "CLS99", "A", nil, 50, nil, "Open", time.Now(), nil, 0).
		AddRow("c10", "CLS100", "B", nil, 50, nil, "Open", time.Now(), nil, 50)
	mock.ExpectQuery("ORDER BY LENGTH\\(c.class_code\\) ASC, c.class_code ASC LIMIT 10 OFFSET 0").WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM classes c").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{})
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, 2, total)
	assert.Equal(t, 0, classes[1].AvailableSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassCreateSurfacesUniqueViolation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO classes").WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_classes_class_code"})

	err := repo.Create(context.Background(), &models.Class{ClassCode: "CLS01", Name: "Math"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.Equal(t, "uq_classes_class_code", ViolatedConstraint(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePatternEscapes(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern(" 50%_off "))
	assert.False(t, IsUniqueViolation(assert.AnError))
}

func TestClassListClampsHugePage(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery("LIMIT 10 OFFSET 999990").WillReturnRows(sqlmock.NewRows(classRowColumns))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM classes c").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{Page: math.MaxInt, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, classes)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
