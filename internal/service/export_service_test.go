package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nandakumartc/sonarqube/internal/dto"
	"github.com/Nandakumartc/sonarqube/internal/models"
	appErrors "github.com/Nandakumartc/sonarqube/pkg/errors"
)

type changeSourceStub struct {
	changes []*models.Change
	err     error
	reqs    []dto.ProfileChangelogRequest
}

func (s *changeSourceStub) Changes(ctx context.Context, req dto.ProfileChangelogRequest) ([]*models.Change, error) {
	s.reqs = append(s.reqs, req)
	return s.changes, s.err
}

func exportChange(t *testing.T) *models.Change {
	t.Helper()
	change, err := models.NewChange("C1", models.ChangeTypeActivated, aDate)
	require.NoError(t, err)
	change.Actor = "marcel"
	change.ActorDisplayName = "Marcel"
	change.RuleKey = "xoo:x1"
	change.RuleName = "X One"
	change.Severity = models.SeverityMajor
	require.NoError(t, change.Params.Set("max", models.Set("10")))
	change.Freeze()
	return change
}

func TestExportServiceCSV(t *testing.T) {
	source := &changeSourceStub{changes: []*models.Change{exportChange(t)}}
	svc := NewExportService(source, nil, nil, nil)

	file, err := svc.Export(context.Background(), dto.ProfileChangelogRequest{ProfileKey: "xoo/P1"}, "csv", "en")
	require.NoError(t, err)
	assert.Equal(t, "changelog-xoo_P1.csv", file.Filename)
	assert.True(t, strings.HasPrefix(file.ContentType, "text/csv"))

	lines := strings.Split(strings.TrimSpace(string(file.Payload)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "date,action,author,rule,severity,inheritance,changes", lines[0])
	assert.Equal(t, "2016-09-01T10:30:00+0000,ACTIVATED,Marcel,X One,MAJOR,,Parameter max set to 10", lines[1])
}

func TestExportServiceCSVQuotesFormulaRuleNames(t *testing.T) {
	change, err := models.NewChange("C1", models.ChangeTypeDeactivated, aDate)
	require.NoError(t, err)
	change.RuleKey = "xoo:x2"
	change.RuleName = "=1+2"
	change.Freeze()
	svc := NewExportService(&changeSourceStub{changes: []*models.Change{change}}, nil, nil, nil)

	file, err := svc.Export(context.Background(), dto.ProfileChangelogRequest{ProfileKey: xooP1}, "csv", "en")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(file.Payload)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], ",'=1+2,")
}

func TestExportServicePDF(t *testing.T) {
	source := &changeSourceStub{changes: []*models.Change{exportChange(t)}}
	svc := NewExportService(source, nil, nil, nil)

	file, err := svc.Export(context.Background(), dto.ProfileChangelogRequest{ProfileKey: xooP1}, "pdf", "en")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Payload, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	source := &changeSourceStub{}
	svc := NewExportService(source, nil, nil, nil)

	_, err := svc.Export(context.Background(), dto.ProfileChangelogRequest{ProfileKey: xooP1}, "xlsx", "en")
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
	assert.Empty(t, source.reqs)
}

func TestExportServicePropagatesLoadErrors(t *testing.T) {
	source := &changeSourceStub{err: appErrors.Clone(appErrors.ErrNotFound, "quality profile missing")}
	svc := NewExportService(source, nil, nil, nil)

	_, err := svc.Export(context.Background(), dto.ProfileChangelogRequest{ProfileKey: "missing"}, "csv", "en")
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}
