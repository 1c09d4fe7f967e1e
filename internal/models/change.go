package models

import (
	"errors"
	"strings"
	"time"
)

// ChangeType enumerates the recorded event kinds.
type ChangeType string

const (
	ChangeTypeActivated   ChangeType = "ACTIVATED"
	ChangeTypeDeactivated ChangeType = "DEACTIVATED"
	ChangeTypeUpdated     ChangeType = "UPDATED"
	ChangeTypeIssueDiff   ChangeType = "DIFF"
)

// IsProfileChange reports whether t is a rule activation event.
func (t ChangeType) IsProfileChange() bool {
	switch t {
	case ChangeTypeActivated, ChangeTypeDeactivated, ChangeTypeUpdated:
		return true
	}
	return false
}

// Change is one recorded mutation of a quality profile or an issue. The profile group
// (Severity, Inheritance, RuleKey, RuleName, Params) is empty for issue changes and FieldDiffs
// is empty for profile changes. Empty strings mean "absent".
type Change struct {
	ID        string
	Type      ChangeType
	Timestamp int64

	Actor            string
	ActorDisplayName string

	Severity    string
	Inheritance string
	RuleKey     string
	RuleName    string
	Params      *DiffMap

	FieldDiffs *DiffMap
}

// NewChange validates the mandatory fields and returns a Change with empty diff containers.
func NewChange(id string, changeType ChangeType, timestamp int64) (*Change, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("change id is required")
	}
	if changeType == "" {
		return nil, errors.New("change type is required")
	}
	if timestamp <= 0 {
		return nil, errors.New("change timestamp is required")
	}
	return &Change{
		ID:         id,
		Type:       changeType,
		Timestamp:  timestamp,
		Params:     NewDiffMap(),
		FieldDiffs: NewDiffMap(),
	}, nil
}

// HasActor reports whether a user caused the change.
func (c *Change) HasActor() bool {
	return c.Actor != ""
}

// Time converts Timestamp to a time.Time in UTC.
func (c *Change) Time() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}

// Freeze seals the diff containers once the loader has finished attaching data.
func (c *Change) Freeze() {
	c.Params.Freeze()
	c.FieldDiffs.Freeze()
}

// Changelog is a loaded page of changes plus the count of all matching changes. Total is
// independent from len(Changes): storage may return a single page of a larger set.
type Changelog struct {
	Total   int
	Changes []*Change
}

// ChangelogQuery is the normalised read filter for one entity. Bounds are epoch milliseconds;
// FromIncluded is inclusive and ToExcluded is exclusive. Page and PageSize come from the boundary
// layer and are applied by storage only when PageSize is positive.
type ChangelogQuery struct {
	EntityRef    string
	FromIncluded *int64
	ToExcluded   *int64
	Page         int
	PageSize     int
}

// Offset returns the row offset for the requested page.
func (q ChangelogQuery) Offset() int {
	if q.Page <= 1 || q.PageSize <= 0 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// ProfileChangeRow is a qprofile_changes row.
type ProfileChangeRow struct {
	Key        string  `db:"kee"`
	ProfileKey string  `db:"qprofile_key"`
	ChangeType string  `db:"change_type"`
	UserLogin  *string `db:"user_login"`
	Data       []byte  `db:"change_data"`
	CreatedAt  int64   `db:"created_at"`
}

// ProfileChangeData is the JSON document stored in qprofile_changes.change_data. Params keep
// their recording order.
type ProfileChangeData struct {
	Severity    string        `json:"severity,omitempty"`
	Inheritance string        `json:"inheritance,omitempty"`
	RuleKey     string        `json:"ruleKey,omitempty"`
	Params      []ParamChange `json:"params,omitempty"`
}

// ParamChange is one rule parameter transition.
type ParamChange struct {
	Name string `json:"name" validate:"required"`
	Old  Value  `json:"old"`
	New  Value  `json:"new"`
}
