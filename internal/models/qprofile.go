package models

import "time"

// QualityProfile is a named set of activated rules for one language.
type QualityProfile struct {
	Key       string    `db:"kee" json:"key"`
	Name      string    `db:"name" json:"name"`
	Language  string    `db:"language" json:"language"`
	ParentKey *string   `db:"parent_kee" json:"parentKey,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Rule activation severities, from least to most severe.
const (
	SeverityInfo     = "INFO"
	SeverityMinor    = "MINOR"
	SeverityMajor    = "MAJOR"
	SeverityCritical = "CRITICAL"
	SeverityBlocker  = "BLOCKER"
)

// Severities lists the accepted severity values.
var Severities = []string{SeverityInfo, SeverityMinor, SeverityMajor, SeverityCritical, SeverityBlocker}

// Activation inheritance values.
const (
	InheritanceNone      = "NONE"
	InheritanceInherited = "INHERITED"
	InheritanceOverrides = "OVERRIDES"
)
