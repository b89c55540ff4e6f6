package progression

import (
	"testing"
	"time"

	"github.com/kasuganosora/lifeos/model"
	"github.com/stretchr/testify/assert"
)

// 2024-05-15 is a Wednesday.
var wednesday = time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)

func weekly(dow int) *model.RecurrenceRule {
	return &model.RecurrenceRule{Frequency: model.FrequencyWeekly, DayOfWeek: &dow}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDeadline_WeeklySameWeekdayIsOneWeekLater(t *testing.T) {
	got := NextDeadline(weekly(3), wednesday)
	assert.Equal(t, date(2024, 5, 22), got)
	assert.Equal(t, time.Wednesday, got.Weekday())
}

func TestNextDeadline_WeeklyUpcomingWeekday(t *testing.T) {
	assert.Equal(t, date(2024, 5, 17), NextDeadline(weekly(5), wednesday)) // Friday
	assert.Equal(t, date(2024, 5, 19), NextDeadline(weekly(0), wednesday)) // Sunday
	assert.Equal(t, date(2024, 5, 20), NextDeadline(weekly(1), wednesday)) // Monday
}

func TestNextDeadline_Frequencies(t *testing.T) {
	assert.Equal(t, date(2024, 5, 22), NextDeadline(&model.RecurrenceRule{Frequency: model.FrequencyWeekly}, wednesday))
	assert.Equal(t, date(2024, 6, 15), NextDeadline(&model.RecurrenceRule{Frequency: model.FrequencyMonthly}, wednesday))
	assert.Equal(t, date(2024, 8, 15), NextDeadline(&model.RecurrenceRule{Frequency: model.FrequencyQuarterly}, wednesday))
}

func TestNextDeadline_NoRuleIsTodaySentinel(t *testing.T) {
	assert.Equal(t, date(2024, 5, 15), NextDeadline(nil, wednesday))
	assert.Equal(t, date(2024, 5, 15), NextDeadline(&model.RecurrenceRule{Frequency: "yearly"}, wednesday))
}

func TestNextDeadline_MonthEndNormalizes(t *testing.T) {
	// Jan 31 + 1 month overflows into March, matching calendar arithmetic.
	assert.Equal(t, date(2024, 3, 2), NextDeadline(&model.RecurrenceRule{Frequency: model.FrequencyMonthly}, date(2024, 1, 31)))
}

func TestNextDeadline_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	ref := time.Date(2024, 5, 15, 23, 0, 0, 0, loc)
	got := NextDeadline(&model.RecurrenceRule{Frequency: model.FrequencyWeekly}, ref)
	assert.Equal(t, time.Date(2024, 5, 22, 0, 0, 0, 0, loc), got)
}

func TestIsYesterday_CalendarNotElapsed(t *testing.T) {
	now := time.Date(2024, 5, 15, 0, 1, 0, 0, time.UTC)
	assert.True(t, IsYesterday(time.Date(2024, 5, 14, 23, 59, 0, 0, time.UTC), now))
	assert.True(t, IsYesterday(time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC), now))
	assert.False(t, IsYesterday(time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), now))
	assert.False(t, IsYesterday(time.Date(2024, 5, 13, 23, 59, 0, 0, time.UTC), now))
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, "2024-05-15", DateKey(wednesday))
}
