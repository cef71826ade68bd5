package notify

import (
	"time"

	"github.com/eventloom/eventloom/internal/plan"
)

// Event is one delivered reminder.
type Event struct {
	TaskID  string
	Kind    plan.Kind
	Content string
	FiredAt time.Time
}

// Scheduler registers and cancels reminder requests. Applying a request
// supersedes any previously applied request sharing its (TaskID, Kind)
// key; CancelAll drops every live request for a task. Failures are
// best-effort from the engine's point of view: a task-state transition
// never rolls back because a reminder could not be scheduled.
type Scheduler interface {
	Apply(reqs []plan.Request) error
	CancelAll(taskID string)
}
