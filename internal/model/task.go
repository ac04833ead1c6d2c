package model

import (
	"errors"
	"strings"
)

var (
	ErrTitleRequired = errors.New("model: task title is required")
	ErrIDRequired    = errors.New("model: id is required")
)

// Task is one (possibly recurring) todo item.
//
// DueDate is a calendar date ("2006-01-02") with no time component and Time is
// a wall-clock ("15:04") with no timezone; both use the empty string for
// "unset". The schedule package owns the consistency rules between DueDate,
// Time and Reminder.
type Task struct {
	ID        string          `json:"id"`
	ListID    string          `json:"listId,omitempty"`
	Title     string          `json:"title"`
	Detail    string          `json:"detail,omitempty"`
	Completed bool            `json:"completed"`
	DueDate   string          `json:"dueDate,omitempty"`
	Time      string          `json:"time,omitempty"`
	Reminder  *Reminder       `json:"reminder,omitempty"`
	Repeat    *RepeatRule     `json:"repeat,omitempty"`
	Actions   []ActionBinding `json:"actions,omitempty"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrIDRequired
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}
	if t.Repeat != nil {
		if err := t.Repeat.Validate(); err != nil {
			return err
		}
	}
	if t.Reminder != nil {
		if err := t.Reminder.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Recurring reports whether the task carries an active repeat rule.
func (t Task) Recurring() bool {
	return t.Repeat != nil && t.Repeat.Normalize() != nil
}

// ActionBinding ties a task to a scheme plus concrete positional parameter
// values. A binding is owned by exactly one task; it is removed with the task
// or when the referenced scheme is deleted.
type ActionBinding struct {
	SchemeID string   `json:"schemeId"`
	Params   []string `json:"params"`
}

func (b ActionBinding) Validate() error {
	if strings.TrimSpace(b.SchemeID) == "" {
		return errors.New("model: action binding scheme id is required")
	}
	return nil
}

// List is a named task bucket.
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (l List) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return ErrIDRequired
	}
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("model: list name is required")
	}
	return nil
}
