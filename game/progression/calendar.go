package progression

import (
	"time"

	"github.com/kasuganosora/lifeos/model"
)

// DateLayout is the calendar-date format used by habit logs and deadlines.
const DateLayout = "2006-01-02"

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateKey formats t's local calendar date as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// IsYesterday reports whether last falls on the calendar day before now,
// in now's location. Elapsed hours do not matter: 23:59 to 00:01 counts.
func IsYesterday(last, now time.Time) bool {
	loc := now.Location()
	yesterday := Midnight(now).AddDate(0, 0, -1)
	return DateKey(last.In(loc)) == DateKey(yesterday)
}

// NextDeadline returns the next occurrence of rule strictly after ref,
// normalized to midnight in ref's location.
//
//   - weekly with a day of week: the next such weekday; if ref already is
//     that weekday, one week later
//   - weekly without: ref + 7 days
//   - monthly: ref + 1 calendar month
//   - quarterly: ref + 3 calendar months
//
// A nil rule or an unknown frequency returns ref's own midnight, which
// callers treat as "does not recur".
func NextDeadline(rule *model.RecurrenceRule, ref time.Time) time.Time {
	day := Midnight(ref)
	if rule == nil {
		return day
	}
	switch rule.Frequency {
	case model.FrequencyWeekly:
		if rule.DayOfWeek != nil {
			target := ((*rule.DayOfWeek)%7 + 7) % 7
			offset := (target - int(day.Weekday()) + 7) % 7
			if offset == 0 {
				offset = 7
			}
			return day.AddDate(0, 0, offset)
		}
		return day.AddDate(0, 0, 7)
	case model.FrequencyMonthly:
		return day.AddDate(0, 1, 0)
	case model.FrequencyQuarterly:
		return day.AddDate(0, 3, 0)
	}
	return day
}
