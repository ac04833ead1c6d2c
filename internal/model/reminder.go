package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

type ReminderKind string

// ReminderRelative is the only supported reminder kind: fire the
// notification OffsetMinutes before the task's due time.
const ReminderRelative ReminderKind = "relative"

var ErrInvalidReminderKind = errors.New("model: invalid reminder kind")

// legacyReminderOffset is the offset assumed when decoding the old boolean
// reminder form.
const legacyReminderOffset = 10

type Reminder struct {
	Kind          ReminderKind `json:"type"`
	OffsetMinutes int64        `json:"offsetMinutes"`
}

func (r Reminder) Validate() error {
	if r.Kind != ReminderRelative {
		return fmt.Errorf("%w: %q", ErrInvalidReminderKind, r.Kind)
	}
	return nil
}

// Normalize clamps the offset to a non-negative whole minute count.
func (r Reminder) Normalize() Reminder {
	out := Reminder{Kind: ReminderRelative, OffsetMinutes: r.OffsetMinutes}
	if out.OffsetMinutes < 0 {
		out.OffsetMinutes = 0
	}
	return out
}

// UnmarshalJSON accepts three historical encodings of a reminder:
//
//   - null / absent       -> no reminder (handled by the caller's pointer)
//   - true / false        -> legacy boolean form, true means relative/10min
//   - {"type":"relative","offsetMinutes":N} with N possibly fractional;
//     fractional minutes round down, negatives floor to zero.
func (r *Reminder) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*r = Reminder{Kind: ReminderRelative, OffsetMinutes: legacyReminderOffset}
		} else {
			// Leave the kind empty; normalization drops reminders that are
			// not tagged relative, which is exactly what "false" meant.
			*r = Reminder{}
		}
		return nil
	}

	var raw struct {
		Kind          ReminderKind `json:"type"`
		OffsetMinutes float64      `json:"offsetMinutes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	off := int64(math.Floor(raw.OffsetMinutes))
	if off < 0 {
		off = 0
	}
	*r = Reminder{Kind: raw.Kind, OffsetMinutes: off}
	return nil
}
