package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChangeValidatesMandatoryFields(t *testing.T) {
	_, err := NewChange("", ChangeTypeActivated, 1)
	assert.Error(t, err)
	_, err = NewChange("C1", "", 1)
	assert.Error(t, err)
	_, err = NewChange("C1", ChangeTypeActivated, 0)
	assert.Error(t, err)

	change, err := NewChange("C1", ChangeTypeActivated, 1472688000000)
	require.NoError(t, err)
	assert.False(t, change.HasActor())
	assert.Equal(t, time.Date(2016, 9, 1, 0, 0, 0, 0, time.UTC), change.Time())
	assert.Equal(t, 0, change.Params.Len())
	assert.Equal(t, 0, change.FieldDiffs.Len())
}

func TestChangeFreezeSealsContainers(t *testing.T) {
	change, err := NewChange("C1", ChangeTypeUpdated, 1)
	require.NoError(t, err)
	require.NoError(t, change.Params.Set("max", Changed("10", "20")))

	change.Freeze()
	assert.ErrorIs(t, change.Params.Set("min", Set("1")), ErrFrozenDiffs)
	assert.ErrorIs(t, change.FieldDiffs.Set("status", Set("OPEN")), ErrFrozenDiffs)
}

func TestChangelogQueryOffset(t *testing.T) {
	assert.Equal(t, 0, ChangelogQuery{}.Offset())
	assert.Equal(t, 0, ChangelogQuery{Page: 1, PageSize: 50}.Offset())
	assert.Equal(t, 100, ChangelogQuery{Page: 3, PageSize: 50}.Offset())
	assert.Equal(t, 0, ChangelogQuery{Page: 3}.Offset())
}

func TestChangeTypeIsProfileChange(t *testing.T) {
	assert.True(t, ChangeTypeActivated.IsProfileChange())
	assert.True(t, ChangeTypeUpdated.IsProfileChange())
	assert.False(t, ChangeTypeIssueDiff.IsProfileChange())
}
