package poller

import (
	"context"
	"time"

	"linkflowd/internal/dedupe"
	"linkflowd/internal/eventbus"
	"linkflowd/internal/model"
	"linkflowd/internal/schedule"
	logx "linkflowd/pkg/logx"
)

// RunPass performs one scan against a single clock reading. Every task
// in the pass is judged against the same now, so a pass straddling a
// minute boundary stays internally consistent.
func (s *Service) RunPass(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	cfg := s.cfg
	loc := s.loc
	s.mu.Unlock()
	if loc == nil {
		loc = now.Location()
	}

	tasks, err := s.store.LoadTasks(ctx)
	if err != nil {
		return err
	}
	schemes, err := s.store.ListSchemes(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]model.Scheme, len(schemes))
	for _, sc := range schemes {
		byID[sc.ID] = sc
	}

	fired := 0
	for i := range tasks {
		t := tasks[i]
		if t.Completed || !schedule.ValidDate(t.DueDate) || !schedule.ValidTime(t.Time) {
			continue
		}
		dueAt, err := schedule.DueAt(t.DueDate, t.Time, loc)
		if err != nil {
			continue
		}

		if t.Reminder != nil {
			s.fireReminder(ctx, t, dueAt, now)
		}

		if now.Before(dueAt) {
			continue
		}
		if cfg.GraceWindow > 0 && now.Sub(dueAt) > cfg.GraceWindow {
			continue
		}
		fired += s.fireActions(ctx, t, byID, now)
	}

	if fired > 0 {
		s.log.Info("pass complete", logx.Int("dispatched", fired), logx.Int("tasks", len(tasks)))
	}
	return nil
}

// fireActions dispatches the task's script bindings that have not fired
// for this schedule yet. URL bindings never auto-fire; opening foreign
// apps without a user gesture is the manual path's job.
func (s *Service) fireActions(ctx context.Context, t model.Task, schemes map[string]model.Scheme, now time.Time) int {
	fired := 0
	for i, b := range t.Actions {
		sc, ok := schemes[b.SchemeID]
		if !ok {
			s.log.Warn("binding references missing scheme",
				logx.String("task_id", t.ID),
				logx.String("scheme_id", b.SchemeID),
				logx.Int("position", i),
			)
			continue
		}
		if sc.Kind != model.SchemeScript {
			continue
		}

		key := dedupe.Key("action", t.ID, t.DueDate, t.Time, sc.ID)
		seen, err := s.dedupe.Seen(ctx, key)
		if err != nil {
			s.log.Warn("dedupe check failed", logx.Err(err), logx.String("key", key))
			continue
		}
		if seen {
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return fired
		}

		tgt, derr := s.dispatcher.DispatchBinding(ctx, sc, b)
		res := eventbus.ActionResult{
			TaskID:   t.ID,
			SchemeID: sc.ID,
			Kind:     string(sc.Kind),
			Target:   tgt.Value,
		}
		if derr != nil {
			// Mark failures too. A binding that fails will fail the same
			// way next pass; retrying forever helps no one.
			res.Error = derr.Error()
			s.log.Warn("action dispatch failed",
				logx.String("task_id", t.ID),
				logx.String("scheme_id", sc.ID),
				logx.Err(derr),
			)
			s.publish(eventbus.TypeActionFailed, res)
		} else {
			fired++
			s.log.Info("action dispatched",
				logx.String("task_id", t.ID),
				logx.String("scheme_id", sc.ID),
				logx.String("due", t.DueDate+" "+t.Time),
			)
			s.publish(eventbus.TypeActionDispatched, res)
		}
		if err := s.dedupe.Mark(ctx, key, now); err != nil {
			s.log.Warn("dedupe mark failed", logx.Err(err), logx.String("key", key))
		}
	}
	return fired
}

// fireReminder emits at most one notification per schedule, within the
// grace window around remindAt.
func (s *Service) fireReminder(ctx context.Context, t model.Task, dueAt, now time.Time) {
	remindAt := dueAt.Add(-time.Duration(t.Reminder.OffsetMinutes) * time.Minute)
	if now.Before(remindAt) || now.Sub(remindAt) > reminderGrace {
		return
	}

	key := dedupe.Key("reminder", t.ID, t.DueDate, t.Time)
	seen, err := s.dedupe.Seen(ctx, key)
	if err != nil || seen {
		return
	}

	ev := eventbus.ReminderFired{
		TaskID:   t.ID,
		Title:    t.Title,
		DueDate:  t.DueDate,
		Time:     t.Time,
		RemindAt: remindAt.Format(time.RFC3339),
	}
	s.notifier.Notify(ctx, ev)
	s.publish(eventbus.TypeReminderFired, ev)
	if err := s.dedupe.Mark(ctx, key, now); err != nil {
		s.log.Warn("dedupe mark failed", logx.Err(err), logx.String("key", key))
	}
}

func (s *Service) publish(typ string, data any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{Type: typ, Data: data})
}
