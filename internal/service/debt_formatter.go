package service

import (
	"strconv"
	"strings"
)

const defaultHoursPerDay = 8

// DebtFormatter renders technical debt, stored in minutes, as a localized work duration such as
// "1d 2h 30min". A working day lasts hoursPerDay hours.
type DebtFormatter struct {
	localizer   Localizer
	hoursPerDay int64
}

// NewDebtFormatter constructs a DebtFormatter.
func NewDebtFormatter(localizer Localizer, hoursPerDay int) *DebtFormatter {
	if hoursPerDay <= 0 {
		hoursPerDay = defaultHoursPerDay
	}
	return &DebtFormatter{localizer: defaultLocalizer(localizer), hoursPerDay: int64(hoursPerDay)}
}

// Format renders minutes for locale. Zero renders as "0min".
func (f *DebtFormatter) Format(locale string, minutes int64) string {
	if minutes < 0 {
		minutes = -minutes
	}
	minutesPerDay := f.hoursPerDay * 60
	days := minutes / minutesPerDay
	hours := (minutes % minutesPerDay) / 60
	mins := minutes % 60

	var parts []string
	if days > 0 {
		parts = append(parts, f.localizer.Message(locale, "work_duration.x_days", strconv.FormatInt(days, 10)))
	}
	if hours > 0 {
		parts = append(parts, f.localizer.Message(locale, "work_duration.x_hours", strconv.FormatInt(hours, 10)))
	}
	if mins > 0 || len(parts) == 0 {
		parts = append(parts, f.localizer.Message(locale, "work_duration.x_minutes", strconv.FormatInt(mins, 10)))
	}
	return strings.Join(parts, " ")
}

// FormatValue renders a raw minutes value, returning it unchanged when it is not a number.
func (f *DebtFormatter) FormatValue(locale, raw string) string {
	minutes, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return raw
	}
	return f.Format(locale, minutes)
}
