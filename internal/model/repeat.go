package model

import (
	"errors"
	"fmt"
	"sort"
)

type RepeatKind string

const (
	RepeatDaily   RepeatKind = "daily"
	RepeatWeekly  RepeatKind = "weekly"
	RepeatMonthly RepeatKind = "monthly"
)

var (
	ErrInvalidRepeatKind = errors.New("model: invalid repeat kind")
	ErrEmptyDaySet       = errors.New("model: repeat rule requires at least one day")
	ErrDayOutOfRange     = errors.New("model: repeat day out of range")
)

// RepeatRule describes when the next occurrence of a task falls.
//
// Weekday indices follow time.Weekday (Sunday=0). Days of month are 1-31;
// days that do not exist in a target month clamp to that month's last day at
// rollover time.
type RepeatRule struct {
	Kind        RepeatKind `json:"type"`
	DaysOfWeek  []int      `json:"dayOfWeek,omitempty"`
	DaysOfMonth []int      `json:"dayOfMonth,omitempty"`
}

func (r RepeatRule) Validate() error {
	switch r.Kind {
	case RepeatDaily:
		return nil
	case RepeatWeekly:
		if len(r.DaysOfWeek) == 0 {
			return fmt.Errorf("%w: weekly", ErrEmptyDaySet)
		}
		for _, d := range r.DaysOfWeek {
			if d < 0 || d > 6 {
				return fmt.Errorf("%w: weekday %d", ErrDayOutOfRange, d)
			}
		}
		return nil
	case RepeatMonthly:
		if len(r.DaysOfMonth) == 0 {
			return fmt.Errorf("%w: monthly", ErrEmptyDaySet)
		}
		for _, d := range r.DaysOfMonth {
			if d < 1 || d > 31 {
				return fmt.Errorf("%w: day-of-month %d", ErrDayOutOfRange, d)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRepeatKind, r.Kind)
	}
}

// Normalize returns a canonical copy of the rule: day sets sorted and
// deduplicated, out-of-range days dropped. A weekly or monthly rule whose day
// set ends up empty (a state certain edit paths can produce) degrades to no
// repeat and Normalize returns nil.
func (r *RepeatRule) Normalize() *RepeatRule {
	if r == nil {
		return nil
	}
	switch r.Kind {
	case RepeatDaily:
		return &RepeatRule{Kind: RepeatDaily}
	case RepeatWeekly:
		days := canonDays(r.DaysOfWeek, 0, 6)
		if len(days) == 0 {
			return nil
		}
		return &RepeatRule{Kind: RepeatWeekly, DaysOfWeek: days}
	case RepeatMonthly:
		days := canonDays(r.DaysOfMonth, 1, 31)
		if len(days) == 0 {
			return nil
		}
		return &RepeatRule{Kind: RepeatMonthly, DaysOfMonth: days}
	default:
		return nil
	}
}

func canonDays(in []int, lo, hi int) []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(in))
	for _, d := range in {
		if d < lo || d > hi || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}
