package model

import (
	"encoding/json"
	"testing"
)

func TestReminderDecodeLegacyTrue(t *testing.T) {
	var r Reminder
	if err := json.Unmarshal([]byte(`true`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Kind != ReminderRelative || r.OffsetMinutes != 10 {
		t.Fatalf("got %+v, want relative/10", r)
	}
}

func TestReminderDecodeLegacyFalse(t *testing.T) {
	var r Reminder
	if err := json.Unmarshal([]byte(`false`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Kind != "" {
		t.Fatalf("false should decode to an untyped reminder, got %+v", r)
	}
	if r.Validate() == nil {
		t.Fatal("untyped reminder must fail validation so normalization drops it")
	}
}

func TestReminderDecodeObject(t *testing.T) {
	var r Reminder
	if err := json.Unmarshal([]byte(`{"type":"relative","offsetMinutes":30}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Kind != ReminderRelative || r.OffsetMinutes != 30 {
		t.Fatalf("got %+v", r)
	}
}

func TestReminderDecodeFlooring(t *testing.T) {
	var r Reminder
	if err := json.Unmarshal([]byte(`{"type":"relative","offsetMinutes":9.7}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.OffsetMinutes != 9 {
		t.Fatalf("fractional minutes should floor, got %d", r.OffsetMinutes)
	}

	if err := json.Unmarshal([]byte(`{"type":"relative","offsetMinutes":-3}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.OffsetMinutes != 0 {
		t.Fatalf("negative minutes should floor to 0, got %d", r.OffsetMinutes)
	}
}

func TestReminderNormalize(t *testing.T) {
	n := Reminder{Kind: ReminderRelative, OffsetMinutes: -5}.Normalize()
	if n.OffsetMinutes != 0 {
		t.Fatalf("got %d", n.OffsetMinutes)
	}
}
