package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nandakumartc/sonarqube/internal/dto"
	"github.com/Nandakumartc/sonarqube/internal/middleware"
	"github.com/Nandakumartc/sonarqube/internal/models"
	"github.com/Nandakumartc/sonarqube/internal/service"
	appErrors "github.com/Nandakumartc/sonarqube/pkg/errors"
)

type fakeIssueShow struct {
	viewer models.Viewer
	key    string
	err    error
}

func (f *fakeIssueShow) Show(_ context.Context, key string, viewer models.Viewer) (*dto.IssueShowResponse, error) {
	f.key, f.viewer = key, viewer
	if f.err != nil {
		return nil, f.err
	}
	return &dto.IssueShowResponse{Issue: dto.IssueDetail{
		Key:         key,
		Status:      "OPEN",
		Transitions: service.IssueTransitions(&models.Issue{Status: "OPEN"}, viewer),
		Actions:     []string{},
		Comments:    []dto.IssueCommentEntry{},
		Changelog:   []dto.IssueChangelogEntry{{CreationDate: "2014-01-22T19:10:03+0000", FCreationDate: "Jan 22, 2014 7:10 PM", Diffs: []string{"Created"}}},
	}}, nil
}

type fakeIssueRecorder struct {
	req     dto.RecordIssueChangeRequest
	comment string
	viewer  models.Viewer
	err     error
}

func (f *fakeIssueRecorder) RecordIssueChange(_ context.Context, req dto.RecordIssueChangeRequest, viewer models.Viewer) (*dto.RecordedChange, error) {
	f.req, f.viewer = req, viewer
	if f.err != nil {
		return nil, f.err
	}
	return &dto.RecordedChange{Key: "D1", Action: "DIFF"}, nil
}

func (f *fakeIssueRecorder) AddIssueComment(_ context.Context, issueKey, markdown string, viewer models.Viewer) (*dto.RecordedChange, error) {
	f.comment, f.viewer = markdown, viewer
	if f.err != nil {
		return nil, f.err
	}
	return &dto.RecordedChange{Key: "COM1", Action: "COMMENT"}, nil
}

func TestIssueHandlerShowAnonymous(t *testing.T) {
	show := &fakeIssueShow{}
	handler := NewIssueHandler(show, nil, "en")

	c, rec := newTestContext(http.MethodGet, "/issues/show?key=ABCD", nil)
	handler.Show(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ABCD", show.key)
	assert.False(t, show.viewer.IsLoggedIn())
	assert.Equal(t, "en", show.viewer.Locale)

	envelope := decodeEnvelope(t, rec)
	assert.JSONEq(t, `{"issue":{"key":"ABCD","component":"","rule":"","status":"OPEN","severity":"",`+
		`"creationDate":"","fCreationDate":"","transitions":[],"actions":[],"comments":[],`+
		`"changelog":[{"creationDate":"2014-01-22T19:10:03+0000","fCreationDate":"Jan 22, 2014 7:10 PM","diffs":["Created"]}]}}`,
		string(envelope.Data))
}

func TestIssueHandlerShowLoggedIn(t *testing.T) {
	show := &fakeIssueShow{}
	handler := NewIssueHandler(show, nil, "en")

	c, rec := newTestContext(http.MethodGet, "/issues/show?key=ABCD", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Login: "marcel", Role: models.RoleUser})
	c.Set(middleware.ContextLocaleKey, "fr")
	handler.Show(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "marcel", show.viewer.Login)
	assert.Equal(t, "fr", show.viewer.Locale)
}

func TestIssueHandlerShowErrors(t *testing.T) {
	handler := NewIssueHandler(&fakeIssueShow{}, nil, "en")
	c, rec := newTestContext(http.MethodGet, "/issues/show", nil)
	handler.Show(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	handler = NewIssueHandler(&fakeIssueShow{err: appErrors.Clone(appErrors.ErrNotFound, "issue missing")}, nil, "en")
	c, rec = newTestContext(http.MethodGet, "/issues/show?key=NOPE", nil)
	handler.Show(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	handler = NewIssueHandler(&fakeIssueShow{err: errors.New("boom")}, nil, "en")
	c, rec = newTestContext(http.MethodGet, "/issues/show?key=ABCD", nil)
	handler.Show(c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeEnvelope(t, rec).Error.Code)
}

func TestIssueHandlerRecordChange(t *testing.T) {
	recorder := &fakeIssueRecorder{}
	handler := NewIssueHandler(nil, recorder, "en")

	body := []byte(`{"issueKey":"ABCD","diffs":[{"field":"severity","old":"MINOR","new":"MAJOR"},{"field":"assignee","old":null,"new":"simon"}]}`)
	c, rec := newTestContext(http.MethodPost, "/issues/changes", body)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Login: "marcel"})
	handler.RecordChange(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, recorder.req.Diffs, 2)
	assert.Equal(t, "MINOR", recorder.req.Diffs[0].Old.String())
	assert.False(t, recorder.req.Diffs[1].Old.IsPresent())
	assert.Equal(t, "marcel", recorder.viewer.Login)
}

func TestIssueHandlerAddComment(t *testing.T) {
	recorder := &fakeIssueRecorder{}
	handler := NewIssueHandler(nil, recorder, "en")

	c, rec := newTestContext(http.MethodPost, "/issues/comments", []byte(`{"issueKey":"ABCD","text":"*fine*"}`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Login: "marcel"})
	handler.AddComment(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "*fine*", recorder.comment)

	handler = NewIssueHandler(nil, &fakeIssueRecorder{err: appErrors.ErrUnauthorized}, "en")
	c, rec = newTestContext(http.MethodPost, "/issues/comments", []byte(`{"issueKey":"ABCD","text":"*fine*"}`))
	handler.AddComment(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
