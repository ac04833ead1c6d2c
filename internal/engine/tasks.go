package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"linkflowd/internal/eventbus"
	"linkflowd/internal/model"
	"linkflowd/internal/schedule"
	logx "linkflowd/pkg/logx"
)

// normalizeSchedule applies the schedule rules to a task in place. An
// active repeat rule relaxes the date requirement so time and reminder
// survive a cleared date.
func normalizeSchedule(t *model.Task) {
	if t.Repeat != nil {
		t.Repeat = t.Repeat.Normalize()
	}
	if t.Repeat != nil {
		t.DueDate, t.Time, t.Reminder = schedule.NormalizeForRecurring(t.DueDate, t.Time, t.Reminder)
	} else {
		t.DueDate, t.Time, t.Reminder = schedule.Normalize(t.DueDate, t.Time, t.Reminder)
	}
}

func (e *Engine) ListTasks(ctx context.Context) ([]model.Task, error) {
	return e.store.LoadTasks(ctx)
}

func (e *Engine) GetTask(ctx context.Context, id string) (model.Task, error) {
	return e.store.GetTask(ctx, id)
}

func (e *Engine) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.ID == "" {
		t.ID = e.newID("task")
	}
	if err := t.Validate(); err != nil {
		return model.Task{}, err
	}
	normalizeSchedule(&t)
	if err := e.store.CreateTask(ctx, t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (e *Engine) SaveTask(ctx context.Context, t model.Task) (model.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if err := t.Validate(); err != nil {
		return model.Task{}, err
	}
	normalizeSchedule(&t)
	if err := e.store.SaveTask(ctx, t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (e *Engine) DeleteTask(ctx context.Context, id string) error {
	return e.store.DeleteTask(ctx, id)
}

// OnScheduleFieldsChanged replaces a task's due date, time and reminder
// as one unit and persists the normalized result.
func (e *Engine) OnScheduleFieldsChanged(ctx context.Context, taskID, due, tm string, rem *model.Reminder) (model.Task, error) {
	t, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}
	t.DueDate, t.Time, t.Reminder = due, tm, rem
	normalizeSchedule(&t)
	if err := e.store.SaveTask(ctx, t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// OnTaskCompletionChanged persists the completion flag. Completing a
// task with an active repeat rule spawns its next occurrence as a fresh
// task; the completed row stays behind as history.
func (e *Engine) OnTaskCompletionChanged(ctx context.Context, taskID string, completed bool, now time.Time) (model.Task, error) {
	t, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}
	rollover := !t.Completed && completed && t.Recurring()
	t.Completed = completed
	if err := e.store.SaveTask(ctx, t); err != nil {
		return model.Task{}, err
	}
	if !rollover {
		return model.Task{}, nil
	}

	base := now
	if schedule.ValidDate(t.DueDate) {
		if d, err := time.ParseInLocation(schedule.DateLayout, t.DueDate, now.Location()); err == nil {
			base = d
		}
	}
	next := schedule.NextOccurrence(base, *t.Repeat.Normalize())

	spawned := model.Task{
		ID:       e.newID("task"),
		ListID:   t.ListID,
		Title:    t.Title,
		Detail:   t.Detail,
		DueDate:  next.Format(schedule.DateLayout),
		Time:     t.Time,
		Reminder: t.Reminder,
		Repeat:   t.Repeat,
		Actions:  t.Actions,
	}
	normalizeSchedule(&spawned)
	if err := e.store.CreateTask(ctx, spawned); err != nil {
		return model.Task{}, fmt.Errorf("rollover: %w", err)
	}

	e.log.Info("recurring task rolled over",
		logx.String("task_id", t.ID),
		logx.String("new_task_id", spawned.ID),
		logx.String("next_due", spawned.DueDate),
	)
	e.publish(eventbus.TypeTaskRolledOver, eventbus.TaskRolledOver{
		CompletedTaskID: t.ID,
		NewTaskID:       spawned.ID,
		NextDueDate:     spawned.DueDate,
	})
	return spawned, nil
}
