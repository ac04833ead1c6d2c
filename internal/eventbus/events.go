package eventbus

// Event types published by the engine and the poller.
const (
	TypeTaskRolledOver   = "task.rolled_over"
	TypeActionDispatched = "action.dispatched"
	TypeActionFailed     = "action.failed"
	TypeReminderFired    = "reminder.fired"
	TypeBackupWritten    = "backup.written"
)

// TaskRolledOver is the payload for TypeTaskRolledOver.
type TaskRolledOver struct {
	CompletedTaskID string `json:"completedTaskId"`
	NewTaskID       string `json:"newTaskId"`
	NextDueDate     string `json:"nextDueDate"`
}

// ActionResult is the payload for TypeActionDispatched and TypeActionFailed.
type ActionResult struct {
	TaskID   string `json:"taskId"`
	SchemeID string `json:"schemeId"`
	Kind     string `json:"kind"`
	Target   string `json:"target,omitempty"`
	Manual   bool   `json:"manual"`
	Error    string `json:"error,omitempty"`
}

// ReminderFired is the payload for TypeReminderFired.
type ReminderFired struct {
	TaskID   string `json:"taskId"`
	Title    string `json:"title"`
	DueDate  string `json:"dueDate"`
	Time     string `json:"time,omitempty"`
	RemindAt string `json:"remindAt"`
}

// BackupWritten is the payload for TypeBackupWritten.
type BackupWritten struct {
	Path  string `json:"path"`
	Tasks int    `json:"tasks"`
}
