package schedule

import (
	"time"

	"linkflowd/internal/model"
)

// NextOccurrence computes the due date of the next occurrence of a recurring
// task, given the date of the occurrence that was just completed. It is pure:
// the result depends only on its inputs, never on the clock.
//
// Rules:
//   - daily: the following day.
//   - weekly: the smallest target weekday strictly after prev's weekday,
//     wrapping to the smallest target weekday of the next week.
//   - monthly: the smallest target day strictly after prev's day within the
//     same month, else the smallest target day of the following month; days
//     past the end of a month clamp to that month's last day.
//
// The rule is canonicalized first; a rule that degrades to nothing (empty day
// set) falls back to daily. Callers should reject empty day sets at the edit
// boundary rather than rely on that fallback.
func NextOccurrence(prev time.Time, rule model.RepeatRule) time.Time {
	y, m, d := prev.Date()
	prev = time.Date(y, m, d, 0, 0, 0, 0, prev.Location())

	norm := rule.Normalize()
	if norm == nil {
		return prev.AddDate(0, 0, 1)
	}

	switch norm.Kind {
	case model.RepeatWeekly:
		return nextWeekly(prev, norm.DaysOfWeek)
	case model.RepeatMonthly:
		return nextMonthly(prev, norm.DaysOfMonth)
	default:
		return prev.AddDate(0, 0, 1)
	}
}

func nextWeekly(prev time.Time, days []int) time.Time {
	w := int(prev.Weekday())
	for _, d := range days {
		if d > w {
			return prev.AddDate(0, 0, d-w)
		}
	}
	// Wrap to the earliest target weekday of next week.
	return prev.AddDate(0, 0, 7-w+days[0])
}

func nextMonthly(prev time.Time, days []int) time.Time {
	y, m, today := prev.Date()
	loc := prev.Location()

	for _, d := range days {
		if d <= today {
			continue
		}
		c := clampDay(y, m, d)
		// Clamping can pull the candidate back onto (or before) prev's day;
		// in that case the occurrence belongs to the next month.
		if c > today {
			return time.Date(y, m, c, 0, 0, 0, 0, loc)
		}
	}

	first := time.Date(y, m, 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
	ny, nm, _ := first.Date()
	return time.Date(ny, nm, clampDay(ny, nm, days[0]), 0, 0, 0, 0, loc)
}

// clampDay bounds d to the number of days in the given month.
func clampDay(y int, m time.Month, d int) int {
	last := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
	if d > last {
		return last
	}
	return d
}
