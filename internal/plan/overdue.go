package plan

import (
	"sync"
	"time"
)

// OverdueLog remembers which tasks already received an overdue reminder
// on a given calendar day, so periodic re-evaluation does not re-deliver
// the same overdue notice. Keyed by task id plus the local day of the
// evaluation instant.
type OverdueLog struct {
	mu   sync.Mutex
	seen map[string]bool
}

func NewOverdueLog() *OverdueLog {
	return &OverdueLog{seen: make(map[string]bool)}
}

func overdueKey(taskID string, now time.Time) string {
	return taskID + "@" + now.Format("2006-01-02")
}

// MarkNotified records an overdue delivery and reports whether it was the
// first one for this task today.
func (l *OverdueLog) MarkNotified(taskID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := overdueKey(taskID, now)
	if l.seen[key] {
		return false
	}
	l.seen[key] = true
	return true
}

// Notified reports whether an overdue reminder already went out for the
// task on the day of now.
func (l *OverdueLog) Notified(taskID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[overdueKey(taskID, now)]
}

// Forget drops all records for a task, e.g. after it is deleted or
// leaves the Pending state.
func (l *OverdueLog) Forget(taskID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.seen {
		if len(key) > len(taskID) && key[:len(taskID)] == taskID && key[len(taskID)] == '@' {
			delete(l.seen, key)
		}
	}
}
