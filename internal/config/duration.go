package config

import (
	"fmt"
	"strings"
	"time"
)

// ParseDuration reads an optional Go duration string field. ok is false
// when the field is empty, meaning the caller should fall back to its
// default. Negative durations are rejected; field names the offending
// key in the error.
func ParseDuration(field, raw string) (d time.Duration, ok bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	d, err = time.ParseDuration(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, false, fmt.Errorf("%s: must not be negative", field)
	}
	return d, true, nil
}

// ParseDurationDefault substitutes def for empty or zero fields.
func ParseDurationDefault(field, raw string, def time.Duration) (time.Duration, error) {
	d, ok, err := ParseDuration(field, raw)
	if err != nil {
		return 0, err
	}
	if !ok || d == 0 {
		return def, nil
	}
	return d, nil
}
