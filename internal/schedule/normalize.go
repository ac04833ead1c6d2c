package schedule

import (
	"time"

	"linkflowd/internal/model"
)

// Layouts for the two schedule fields. Parsing is strict: anything that does
// not round-trip the layout exactly is treated as unset.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// placeholderDate stands in for the missing due date when normalizing a
// recurring task; it never leaves this package.
const placeholderDate = "2001-01-01"

// ValidDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	t, err := time.Parse(DateLayout, s)
	return err == nil && t.Format(DateLayout) == s
}

// ValidTime reports whether s is a well-formed HH:mm wall-clock time.
func ValidTime(s string) bool {
	if len(s) != len(TimeLayout) {
		return false
	}
	t, err := time.Parse(TimeLayout, s)
	return err == nil && t.Format(TimeLayout) == s
}

// Normalize enforces the cross-field schedule invariants:
//
//	time set  => due date set
//	reminder  => due date and time set
//
// It is pure, never fails, and is idempotent. Invalid input degrades:
// a malformed date clears everything, a malformed time clears the time and
// reminder, a reminder that is not the relative kind is dropped, and a
// negative offset floors to zero.
func Normalize(due, tm string, rem *model.Reminder) (string, string, *model.Reminder) {
	if !ValidDate(due) {
		return "", "", nil
	}
	if !ValidTime(tm) {
		return due, "", nil
	}
	if rem == nil || rem.Validate() != nil {
		return due, tm, nil
	}
	n := rem.Normalize()
	return due, tm, &n
}

// NormalizeForRecurring relaxes the due-date requirement for tasks with an
// active repeat rule: the rule computes concrete dates at completion time, so
// time and reminder may be kept without a date. Implemented by normalizing
// against a placeholder date and discarding it afterwards.
func NormalizeForRecurring(due, tm string, rem *model.Reminder) (string, string, *model.Reminder) {
	if ValidDate(due) {
		return Normalize(due, tm, rem)
	}
	_, tm, rem = Normalize(placeholderDate, tm, rem)
	return "", tm, rem
}

// DueAt combines a task's due date and time into one instant in loc.
// Both fields must be valid; loc nil means time.Local.
func DueAt(due, tm string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout+" "+TimeLayout, due+" "+tm, loc)
}
