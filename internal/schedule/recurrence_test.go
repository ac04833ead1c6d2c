package schedule

import (
	"testing"
	"time"

	"linkflowd/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrenceDaily(t *testing.T) {
	got := NextOccurrence(date(2026, 3, 31), model.RepeatRule{Kind: model.RepeatDaily})
	if want := date(2026, 4, 1); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNextOccurrenceDailyIgnoresTimeOfDay(t *testing.T) {
	prev := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	got := NextOccurrence(prev, model.RepeatRule{Kind: model.RepeatDaily})
	if want := date(2026, 3, 11); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNextOccurrenceWeekly(t *testing.T) {
	// 2026-03-06 is a Friday (weekday 5). Targets Mon/Wed/Fri wrap to Monday.
	prev := date(2026, 3, 6)
	if prev.Weekday() != time.Friday {
		t.Fatalf("fixture broken: %v", prev.Weekday())
	}
	rule := model.RepeatRule{Kind: model.RepeatWeekly, DaysOfWeek: []int{1, 3, 5}}
	got := NextOccurrence(prev, rule)
	if want := date(2026, 3, 9); !got.Equal(want) {
		t.Fatalf("got %v, want %v (Monday)", got, want)
	}
}

func TestNextOccurrenceWeeklySameWeek(t *testing.T) {
	// Monday with targets Mon/Wed: next is Wednesday of the same week.
	prev := date(2026, 3, 9)
	rule := model.RepeatRule{Kind: model.RepeatWeekly, DaysOfWeek: []int{1, 3}}
	got := NextOccurrence(prev, rule)
	if want := date(2026, 3, 11); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNextOccurrenceWeeklySingleDayWrapsFullWeek(t *testing.T) {
	prev := date(2026, 3, 9) // Monday
	rule := model.RepeatRule{Kind: model.RepeatWeekly, DaysOfWeek: []int{1}}
	got := NextOccurrence(prev, rule)
	if want := date(2026, 3, 16); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNextOccurrenceMonthlySameMonth(t *testing.T) {
	rule := model.RepeatRule{Kind: model.RepeatMonthly, DaysOfMonth: []int{5, 20}}
	got := NextOccurrence(date(2026, 3, 7), rule)
	if want := date(2026, 3, 20); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNextOccurrenceMonthlyWrapsToNextMonth(t *testing.T) {
	rule := model.RepeatRule{Kind: model.RepeatMonthly, DaysOfMonth: []int{5, 20}}
	got := NextOccurrence(date(2026, 3, 25), rule)
	if want := date(2026, 4, 5); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNextOccurrenceMonthlyClampsToMonthEnd(t *testing.T) {
	rule := model.RepeatRule{Kind: model.RepeatMonthly, DaysOfMonth: []int{31}}
	// Completing on April 1 with target day 31: April has 30 days, clamp.
	got := NextOccurrence(date(2026, 4, 1), rule)
	if want := date(2026, 4, 30); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	// February in a non-leap year clamps 31 -> 28.
	got = NextOccurrence(date(2026, 2, 1), rule)
	if want := date(2026, 2, 28); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNextOccurrenceMonthlyClampCannotStall(t *testing.T) {
	// Completing on the clamped day itself must move to next month, not
	// produce the same date again.
	rule := model.RepeatRule{Kind: model.RepeatMonthly, DaysOfMonth: []int{31}}
	got := NextOccurrence(date(2026, 4, 30), rule)
	if want := date(2026, 5, 31); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNextOccurrenceEmptyDaySetFallsBackDaily(t *testing.T) {
	rule := model.RepeatRule{Kind: model.RepeatWeekly}
	got := NextOccurrence(date(2026, 3, 9), rule)
	if want := date(2026, 3, 10); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNextOccurrenceAlwaysAdvances(t *testing.T) {
	rules := []model.RepeatRule{
		{Kind: model.RepeatDaily},
		{Kind: model.RepeatWeekly, DaysOfWeek: []int{0, 2, 4, 6}},
		{Kind: model.RepeatMonthly, DaysOfMonth: []int{1, 15, 29, 31}},
	}
	prev := date(2026, 1, 1)
	for _, rule := range rules {
		cur := prev
		for i := 0; i < 400; i++ {
			next := NextOccurrence(cur, rule)
			if !next.After(cur) {
				t.Fatalf("rule %v stalled at %v -> %v", rule, cur, next)
			}
			cur = next
		}
	}
}
