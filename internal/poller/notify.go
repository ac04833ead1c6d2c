package poller

import (
	"context"

	"linkflowd/internal/eventbus"
	logx "linkflowd/pkg/logx"
)

// Notifier receives reminder notifications. The daemon is headless, so
// the default sink is the log; a desktop or push integration plugs in
// here without touching the pass logic.
type Notifier interface {
	Notify(ctx context.Context, r eventbus.ReminderFired)
}

// LogNotifier writes reminders to the structured log.
type LogNotifier struct {
	Log logx.Logger
}

func (n LogNotifier) Notify(_ context.Context, r eventbus.ReminderFired) {
	n.Log.Info("reminder",
		logx.String("task_id", r.TaskID),
		logx.String("title", r.Title),
		logx.String("due", r.DueDate+" "+r.Time),
		logx.String("remind_at", r.RemindAt),
	)
}
