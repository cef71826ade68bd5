package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidStatus = errors.New("model: invalid task status")
	ErrEmptyTitle    = errors.New("model: task title is required")
	ErrIntervalRule  = errors.New("model: recurring flag and interval disagree")
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusDone      Status = "Done"
	StatusArchived  Status = "Archived"
	StatusCancelled Status = "Cancelled"
)

// StatusDeleted is a pseudo-status: it never appears on a task row, only
// as the new status of the history entry written when a task is removed.
const StatusDeleted Status = "Deleted"

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusDone, StatusArchived, StatusCancelled:
		return true
	default:
		return false
	}
}

// Scope selects how a mutating action treats a recurring series.
type Scope string

const (
	ScopeSingleOccurrence Scope = "single"
	ScopeThisAndFuture    Scope = "this_and_future"
)

func (s Scope) IsValid() bool {
	return s == ScopeSingleOccurrence || s == ScopeThisAndFuture
}

// Task is one unit of work. For recurring tasks SeriesID groups the
// occurrences; a freshly created recurring task is its own series root
// (SeriesID == ID). Non-recurring tasks carry an empty SeriesID.
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     time.Time
	Recurring   bool
	Interval    Interval
	Status      Status
	SeriesID    string
	CreatedAt   time.Time
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !t.Interval.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidInterval, t.Interval)
	}
	if t.Recurring != (t.Interval != IntervalNone) {
		return ErrIntervalRule
	}
	if t.Recurring && strings.TrimSpace(t.SeriesID) == "" {
		return errors.New("model: recurring task requires a series id")
	}
	if t.DueDate.IsZero() {
		return errors.New("model: task due date is required")
	}
	return nil
}

// Overdue reports whether the task should be treated as past due at the
// given instant. Derived, never stored.
func (t Task) Overdue(now time.Time) bool {
	return t.Status == StatusPending && !t.DueDate.After(now)
}
