package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	appErrors "github.com/jntcloudcod2019/challenge-fiap-api/pkg/errors"
	"github.com/jntcloudcod2019/challenge-fiap-api/pkg/export"
)

type rosterClassFinder interface {
	FindByCode(ctx context.Context, code string) (*models.ClassView, error)
}

type rosterEnrollmentLister interface {
	ListByClass(ctx context.Context, classID string) ([]models.EnrollmentView, error)
}

// Document is a rendered export ready for download.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

var rosterHeaders = []string{"Registration Number", "Student", "Status", "Enrollment Date"}

// ExportService renders class rosters through pkg/export.
type ExportService struct {
	classes     rosterClassFinder
	enrollments rosterEnrollmentLister
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(classes rosterClassFinder, enrollments rosterEnrollmentLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{classes: classes, enrollments: enrollments, logger: logger, now: time.Now}
}

// ClassRoster renders the enrollments of the class with code in the requested format.
func (s *ExportService) ClassRoster(ctx context.Context, code string, format export.Format) (*Document, error) {
	renderer, err := export.ForFormat(export.Format(strings.ToLower(string(format))))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be one of: csv, pdf")
	}

	class, err := s.classes.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, notFoundOrStorage(err, "class not found", "failed to load class")
	}
	enrollments, err := s.enrollments.ListByClass(ctx, class.ID)
	if err != nil {
		s.logger.Error("list roster", zap.String("class_id", class.ID), zap.Error(err))
		return nil, appErrors.Storage(err, "failed to list enrollments")
	}

	table := export.Table{
		Title:   fmt.Sprintf("%s - %s", class.ClassCode, class.Name),
		Headers: rosterHeaders,
		Rows:    make([][]string, 0, len(enrollments)),
	}
	for _, e := range enrollments {
		table.Rows = append(table.Rows, []string{
			e.RegistrationNumber,
			e.StudentName,
			string(e.Status),
			e.EnrollmentDate.Format(dateLayout),
		})
	}

	data, err := renderer.Render(table)
	if err != nil {
		s.logger.Error("render roster", zap.String("class_code", class.ClassCode), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	filename := fmt.Sprintf("roster_%s_%s.%s", sanitizeFilename(class.ClassCode), s.now().UTC().Format("20060102_150405"), renderer.Extension())
	return &Document{Filename: filename, ContentType: renderer.ContentType(), Data: data}, nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
