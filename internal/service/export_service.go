package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/classhub/classroom-api/internal/models"
	appErrors "github.com/classhub/classroom-api/pkg/errors"
	"github.com/classhub/classroom-api/pkg/export"
)

// RosterExport is a rendered roster document ready for download.
type RosterExport struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportService renders the approved roster of a class as CSV or PDF.
type ExportService struct {
	store  ClassStore
	logger *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(store ClassStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{store: store, logger: logger}
}

// Roster produces the approved-student roster for the class in the requested
// format. Only the owner or an admin may export.
func (s *ExportService) Roster(ctx context.Context, classID, format string, caller *models.JWTClaims) (*RosterExport, error) {
	record, err := s.store.Get(ctx, classID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if !CanMutate(record, caller) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the class owner or an admin may export the roster")
	}

	roster := export.Roster{
		ClassName: record.Name,
		Headers:   []string{"Student ID", "Name", "Email", "Approved At"},
	}
	for i := range record.Enrollments {
		e := &record.Enrollments[i]
		if e.Status != models.EnrollmentApproved {
			continue
		}
		approvedAt := ""
		if e.ApprovedAt != nil {
			approvedAt = e.ApprovedAt.Format("2006-01-02 15:04")
		}
		roster.Rows = append(roster.Rows, []string{e.StudentID, e.StudentName, e.StudentEmail, approvedAt})
	}

	switch strings.ToLower(format) {
	case "csv", "":
		content, err := export.RenderCSV(roster)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
		}
		return &RosterExport{
			FileName:    fmt.Sprintf("roster-%s.csv", classID),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case "pdf":
		content, err := export.RenderPDF(roster)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
		}
		return &RosterExport{
			FileName:    fmt.Sprintf("roster-%s.pdf", classID),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
