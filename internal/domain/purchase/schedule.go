package purchase

import "time"

// BuildSchedule returns count due dates, one calendar month apart,
// anchored on the first due date's day-of-month. When the anchor day
// does not exist in a target month (day 31 into a 30-day month), the
// date is clamped to the last day of that month; later months that do
// contain the anchor day use it again (Jan 31, Feb 28, Mar 31).
// Returns an empty slice when count <= 0 or the first date is zero.
func BuildSchedule(firstDueDate time.Time, count int) []time.Time {
	if count <= 0 || firstDueDate.IsZero() {
		return []time.Time{}
	}

	year, month, day := firstDueDate.Date()
	loc := firstDueDate.Location()

	dates := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		y, m := year, time.Month(int(month)+i)
		d := day
		if last := lastDayOfMonth(y, m, loc); d > last {
			d = last
		}
		dates = append(dates, time.Date(y, m, d, 0, 0, 0, 0, loc))
	}

	return dates
}

// lastDayOfMonth returns the number of days in the given month.
// time.Date normalizes out-of-range months, so month may exceed December.
func lastDayOfMonth(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
