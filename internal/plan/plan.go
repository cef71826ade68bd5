package plan

import (
	"fmt"
	"time"

	"github.com/eventloom/eventloom/internal/model"
)

type Kind string

const (
	KindDue       Kind = "Due"
	KindWarning   Kind = "Warning"
	KindOverdue   Kind = "Overdue"
	KindRecurring Kind = "Recurring"
)

// WarningLead is how far before the due instant the pre-due warning fires.
const WarningLead = 30 * time.Minute

// Key identifies a request within a plan. Recomputing a plan supersedes
// any previously applied request with the same key.
type Key struct {
	TaskID string
	Kind   Kind
}

// String renders the key in the platform notification id form.
func (k Key) String() string {
	return fmt.Sprintf("%s-%s", k.TaskID, k.Kind)
}

// Request is one reminder the scheduler should hold for a task. A
// non-none Repeat marks a standing reminder that re-arms itself one
// interval after each firing.
type Request struct {
	TaskID  string
	Kind    Kind
	FireAt  time.Time
	Repeat  model.Interval
	Content string
}

func (r Request) Key() Key {
	return Key{TaskID: r.TaskID, Kind: r.Kind}
}

// Compute derives the full set of reminder requests that should exist
// for the task at the given instant. Pure: the clock is an argument.
//
// Non-pending tasks get an empty plan. A pending task due in the future
// gets a Due request at the due instant plus a Warning request if the
// warning instant is still ahead of now. A pending task already past due
// gets a single immediate Overdue request; callers dedup delivery with
// an OverdueLog. Recurring tasks additionally get a standing Recurring
// request anchored at the due instant, repeating per the interval.
func Compute(task model.Task, now time.Time) []Request {
	if task.Status != model.StatusPending {
		return nil
	}

	out := make([]Request, 0, 3)
	due := task.DueDate
	if due.After(now) {
		out = append(out, Request{
			TaskID:  task.ID,
			Kind:    KindDue,
			FireAt:  due,
			Content: fmt.Sprintf("%s is due!", task.Title),
		})
		if warnAt := due.Add(-WarningLead); warnAt.After(now) {
			out = append(out, Request{
				TaskID:  task.ID,
				Kind:    KindWarning,
				FireAt:  warnAt,
				Content: fmt.Sprintf("%s is due in 30 minutes", task.Title),
			})
		}
	} else {
		out = append(out, Request{
			TaskID:  task.ID,
			Kind:    KindOverdue,
			FireAt:  now,
			Content: fmt.Sprintf("%s is overdue", task.Title),
		})
	}

	if task.Recurring {
		out = append(out, Request{
			TaskID:  task.ID,
			Kind:    KindRecurring,
			FireAt:  nextFiring(due, task.Interval, now),
			Repeat:  task.Interval,
			Content: fmt.Sprintf("%s is due!", task.Title),
		})
	}
	return out
}

// nextFiring rolls the standing-reminder anchor forward to the first
// instant after now, keeping the due date's time-of-day. Without this an
// overdue series would replay every missed firing on (re)schedule.
func nextFiring(anchor time.Time, interval model.Interval, now time.Time) time.Time {
	at := anchor
	for !at.After(now) {
		next, err := model.NextOccurrence(at, interval)
		if err != nil {
			return anchor
		}
		at = next
	}
	return at
}
