package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Nandakumartc/sonarqube/pkg/errors"
)

func millis(t time.Time) int64 { return t.UnixMilli() }

func TestBuildChangelogQueryToIncludesWholeDay(t *testing.T) {
	q, err := BuildChangelogQuery("P1", "", "2016-09-01", time.UTC)
	require.NoError(t, err)
	assert.Nil(t, q.FromIncluded)
	require.NotNil(t, q.ToExcluded)
	assert.Equal(t, millis(time.Date(2016, 9, 2, 0, 0, 0, 0, time.UTC)), *q.ToExcluded)

	lastInstant := time.Date(2016, 9, 1, 23, 59, 59, 999000000, time.UTC).UnixMilli()
	assert.Less(t, lastInstant, *q.ToExcluded)
	assert.False(t, millis(time.Date(2016, 9, 2, 0, 0, 0, 0, time.UTC)) < *q.ToExcluded)
}

func TestBuildChangelogQuerySinceStartsAtMidnight(t *testing.T) {
	q, err := BuildChangelogQuery("P1", "2016-09-01", "", time.UTC)
	require.NoError(t, err)
	require.NotNil(t, q.FromIncluded)
	assert.Equal(t, millis(time.Date(2016, 9, 1, 0, 0, 0, 0, time.UTC)), *q.FromIncluded)
	assert.Nil(t, q.ToExcluded)
}

func TestBuildChangelogQueryUsesReferenceZone(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	q, err := BuildChangelogQuery("P1", "2016-09-01", "2016-09-01", paris)
	require.NoError(t, err)
	assert.Equal(t, millis(time.Date(2016, 8, 31, 22, 0, 0, 0, time.UTC)), *q.FromIncluded)
	assert.Equal(t, millis(time.Date(2016, 9, 1, 22, 0, 0, 0, time.UTC)), *q.ToExcluded)
}

func TestBuildChangelogQueryOpenRange(t *testing.T) {
	q, err := BuildChangelogQuery("P1", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "P1", q.EntityRef)
	assert.Nil(t, q.FromIncluded)
	assert.Nil(t, q.ToExcluded)
}

func TestBuildChangelogQueryRejectsInvalidInput(t *testing.T) {
	cases := map[string][3]string{
		"inverted range":  {"P1", "2016-09-02", "2016-09-01"},
		"malformed since": {"P1", "09/01/2016", ""},
		"malformed to":    {"P1", "", "2016-13-01"},
		"missing entity":  {"", "", ""},
	}
	for name, tc := range cases {
		_, err := BuildChangelogQuery(tc[0], tc[1], tc[2], time.UTC)
		require.Error(t, err, name)
		assert.True(t, appErrors.IsValidation(err), name)
	}
}

func TestBuildChangelogQuerySameDayIsValid(t *testing.T) {
	q, err := BuildChangelogQuery("P1", "2016-09-01", "2016-09-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(24*time.Hour/time.Millisecond), *q.ToExcluded-*q.FromIncluded)
}
