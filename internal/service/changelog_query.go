package service

import (
	"strings"
	"time"

	"github.com/Nandakumartc/sonarqube/internal/models"
	appErrors "github.com/Nandakumartc/sonarqube/pkg/errors"
)

// ChangelogDateLayout is the accepted format for the since and to request parameters.
const ChangelogDateLayout = "2006-01-02"

// BuildChangelogQuery converts the inclusive user date range [since, to] into storage bounds at
// day granularity in loc: fromIncluded is the start of since, toExcluded the start of the day after
// to. Empty strings leave the bound open.
func BuildChangelogQuery(entityRef, since, to string, loc *time.Location) (models.ChangelogQuery, error) {
	if loc == nil {
		loc = time.UTC
	}
	query := models.ChangelogQuery{EntityRef: entityRef}
	if strings.TrimSpace(entityRef) == "" {
		return query, appErrors.Clone(appErrors.ErrValidation, "entity reference is required")
	}

	var sinceDay, toDay time.Time
	if since != "" {
		day, err := parseDay(since, loc)
		if err != nil {
			return query, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid since date, expected format "+ChangelogDateLayout)
		}
		sinceDay = day
		from := day.UnixMilli()
		query.FromIncluded = &from
	}
	if to != "" {
		day, err := parseDay(to, loc)
		if err != nil {
			return query, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid to date, expected format "+ChangelogDateLayout)
		}
		toDay = day
		next := day.AddDate(0, 0, 1).UnixMilli()
		query.ToExcluded = &next
	}
	if query.FromIncluded != nil && query.ToExcluded != nil && sinceDay.After(toDay) {
		return query, appErrors.Clone(appErrors.ErrValidation, "since date must not be after to date")
	}
	return query, nil
}

func parseDay(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(ChangelogDateLayout, strings.TrimSpace(value), loc)
}
