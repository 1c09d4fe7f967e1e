package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Nandakumartc/sonarqube/internal/dto"
	"github.com/Nandakumartc/sonarqube/internal/models"
	appErrors "github.com/Nandakumartc/sonarqube/pkg/errors"
	"github.com/Nandakumartc/sonarqube/pkg/export"
)

// Export columns, in output order.
const (
	exportColumnDate        = "date"
	exportColumnAction      = "action"
	exportColumnAuthor      = "author"
	exportColumnRule        = "rule"
	exportColumnSeverity    = "severity"
	exportColumnInheritance = "inheritance"
	exportColumnChanges     = "changes"
)

var exportHeaders = []string{
	exportColumnDate,
	exportColumnAction,
	exportColumnAuthor,
	exportColumnRule,
	exportColumnSeverity,
	exportColumnInheritance,
	exportColumnChanges,
}

type profileChangeSource interface {
	Changes(ctx context.Context, req dto.ProfileChangelogRequest) ([]*models.Change, error)
}

// ExportFile is a rendered changelog ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders profile changelogs as CSV or PDF documents.
type ExportService struct {
	changes   profileChangeSource
	diffs     *DiffFormatter
	renderers func(format string) (export.Renderer, error)
	location  *time.Location
	logger    *zap.Logger
}

// NewExportService constructs an ExportService. A nil location renders dates in UTC.
func NewExportService(changes profileChangeSource, diffs *DiffFormatter, location *time.Location, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if diffs == nil {
		diffs = NewDiffFormatter(DiffFormatterParams{Logger: logger})
	}
	if location == nil {
		location = time.UTC
	}
	return &ExportService{
		changes:   changes,
		diffs:     diffs,
		renderers: export.ForFormat,
		location:  location,
		logger:    logger,
	}
}

// Export renders every change matching the request filters, newest first. Paging is ignored.
func (s *ExportService) Export(ctx context.Context, req dto.ProfileChangelogRequest, format, locale string) (*ExportFile, error) {
	renderer, err := s.renderers(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format")
	}
	changes, err := s.changes.Changes(ctx, req)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Changelog %s", req.ProfileKey),
		Headers: exportHeaders,
		Rows:    s.rows(ctx, locale, changes),
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render changelog export")
	}
	s.logger.Info("profile changelog exported",
		zap.String("profile", req.ProfileKey),
		zap.String("format", renderer.Extension()),
		zap.Int("changes", len(changes)),
	)
	return &ExportFile{
		Filename:    fmt.Sprintf("changelog-%s.%s", sanitizeFilename(req.ProfileKey), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}

func (s *ExportService) rows(ctx context.Context, locale string, changes []*models.Change) []map[string]string {
	rendered := s.diffs.FormatAll(ctx, locale, changes)
	rows := make([]map[string]string, 0, len(changes))
	for i, change := range changes {
		author := change.ActorDisplayName
		if author == "" {
			author = change.Actor
		}
		rule := change.RuleName
		if rule == "" {
			rule = change.RuleKey
		}
		rows = append(rows, map[string]string{
			exportColumnDate:        change.Time().In(s.location).Format(ChangelogDateTimeLayout),
			exportColumnAction:      string(change.Type),
			exportColumnAuthor:      author,
			exportColumnRule:        rule,
			exportColumnSeverity:    change.Severity,
			exportColumnInheritance: change.Inheritance,
			exportColumnChanges:     strings.Join(rendered[i], "; "),
		})
	}
	return rows
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
