package schedule

import (
	"testing"
	"time"

	"linkflowd/internal/model"
)

func rel(min int64) *model.Reminder {
	return &model.Reminder{Kind: model.ReminderRelative, OffsetMinutes: min}
}

func TestNormalizeDropsTimeWithoutDate(t *testing.T) {
	due, tm, rem := Normalize("", "09:30", rel(10))
	if due != "" || tm != "" || rem != nil {
		t.Fatalf("expected everything cleared, got (%q, %q, %v)", due, tm, rem)
	}
}

func TestNormalizeDropsReminderWithoutTime(t *testing.T) {
	due, tm, rem := Normalize("2026-03-01", "", rel(10))
	if due != "2026-03-01" || tm != "" || rem != nil {
		t.Fatalf("expected date only, got (%q, %q, %v)", due, tm, rem)
	}
}

func TestNormalizeKeepsFullSchedule(t *testing.T) {
	due, tm, rem := Normalize("2026-03-01", "09:30", rel(15))
	if due != "2026-03-01" || tm != "09:30" {
		t.Fatalf("schedule changed: (%q, %q)", due, tm)
	}
	if rem == nil || rem.OffsetMinutes != 15 {
		t.Fatalf("reminder changed: %v", rem)
	}
}

func TestNormalizeFloorsNegativeOffset(t *testing.T) {
	_, _, rem := Normalize("2026-03-01", "09:30", rel(-5))
	if rem == nil || rem.OffsetMinutes != 0 {
		t.Fatalf("expected offset floored to 0, got %v", rem)
	}
}

func TestNormalizeRejectsMalformedInput(t *testing.T) {
	cases := []struct{ due, tm string }{
		{"2026-3-01", "09:30"},
		{"2026-13-01", "09:30"},
		{"2026-02-30", "09:30"},
		{"garbage", "09:30"},
	}
	for _, c := range cases {
		due, tm, rem := Normalize(c.due, c.tm, rel(5))
		if due != "" || tm != "" || rem != nil {
			t.Fatalf("Normalize(%q, %q) accepted malformed date: (%q, %q, %v)", c.due, c.tm, due, tm, rem)
		}
	}
	due, tm, rem := Normalize("2026-03-01", "9:30", rel(5))
	if due != "2026-03-01" || tm != "" || rem != nil {
		t.Fatalf("malformed time should clear time+reminder, got (%q, %q, %v)", due, tm, rem)
	}
}

func TestNormalizeDropsNonRelativeReminder(t *testing.T) {
	_, _, rem := Normalize("2026-03-01", "09:30", &model.Reminder{Kind: "", OffsetMinutes: 10})
	if rem != nil {
		t.Fatalf("expected untyped reminder dropped, got %v", rem)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []struct {
		due, tm string
		rem     *model.Reminder
	}{
		{"2026-03-01", "09:30", rel(-1)},
		{"bad", "09:30", rel(5)},
		{"2026-03-01", "bad", rel(5)},
		{"", "", nil},
	}
	for _, in := range inputs {
		d1, t1, r1 := Normalize(in.due, in.tm, in.rem)
		d2, t2, r2 := Normalize(d1, t1, r1)
		if d1 != d2 || t1 != t2 {
			t.Fatalf("not idempotent: (%q,%q) vs (%q,%q)", d1, t1, d2, t2)
		}
		if (r1 == nil) != (r2 == nil) || (r1 != nil && *r1 != *r2) {
			t.Fatalf("reminder not idempotent: %v vs %v", r1, r2)
		}
	}
}

func TestNormalizeForRecurringKeepsTimeWithoutDate(t *testing.T) {
	due, tm, rem := NormalizeForRecurring("", "07:00", rel(10))
	if due != "" {
		t.Fatalf("expected empty date, got %q", due)
	}
	if tm != "07:00" {
		t.Fatalf("expected time kept, got %q", tm)
	}
	if rem == nil || rem.OffsetMinutes != 10 {
		t.Fatalf("expected reminder kept, got %v", rem)
	}
}

func TestNormalizeForRecurringWithValidDate(t *testing.T) {
	due, tm, rem := NormalizeForRecurring("2026-03-01", "07:00", rel(10))
	if due != "2026-03-01" || tm != "07:00" || rem == nil {
		t.Fatalf("got (%q, %q, %v)", due, tm, rem)
	}
}

func TestDueAt(t *testing.T) {
	loc := time.FixedZone("X", 8*3600)
	at, err := DueAt("2026-03-01", "09:30", loc)
	if err != nil {
		t.Fatalf("DueAt: %v", err)
	}
	want := time.Date(2026, 3, 1, 9, 30, 0, 0, loc)
	if !at.Equal(want) {
		t.Fatalf("got %v, want %v", at, want)
	}
}
