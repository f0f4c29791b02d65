package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/academyhq/academy-api/internal/models"
	appErrors "github.com/academyhq/academy-api/pkg/errors"
	"github.com/academyhq/academy-api/pkg/export"
)

// RosterRepository abstracts the roster query behind the export endpoint.
type RosterRepository interface {
	ListRoster(ctx context.Context) ([]models.RosterRow, error)
}

// ExportService renders the student roster as CSV or PDF.
type ExportService struct {
	repo   RosterRepository
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(repo RosterRepository, logger *zap.Logger) *ExportService {
	return &ExportService{
		repo:   repo,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// ExportFile is a rendered export ready to be served.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

var rosterHeaders = []string{"Student No", "Username", "Email", "Status"}

// StudentRoster renders the full roster in the requested format ("csv" or
// "pdf").
func (s *ExportService) StudentRoster(ctx context.Context, format string) (*ExportFile, error) {
	rows, err := s.repo.ListRoster(ctx)
	if err != nil {
		s.logger.Error("roster query failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student roster")
	}

	data := export.Dataset{Headers: rosterHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"Student No": row.StudentNo,
			"Username":   stringValue(row.Username),
			"Email":      stringValue(row.Email),
			"Status":     string(row.Status),
		})
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case "csv":
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportFile{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("student-roster-%s.csv", stamp),
		}, nil
	case "pdf":
		content, err := s.pdf.Render(data, "Student Roster")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportFile{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("student-roster-%s.pdf", stamp),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "unsupported export format, use csv or pdf")
	}
}
