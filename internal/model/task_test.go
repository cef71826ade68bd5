package model

import (
	"errors"
	"testing"
	"time"
)

func validTask() Task {
	return Task{
		ID:        "task-1",
		Title:     "Water the plants",
		DueDate:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Status:    StatusPending,
		Interval:  IntervalNone,
		CreatedAt: time.Date(2024, 5, 30, 8, 0, 0, 0, time.UTC),
	}
}

func TestTaskValidateRequiresTitle(t *testing.T) {
	task := validTask()
	task.Title = "   "
	if err := task.Validate(); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestTaskValidateRecurringNeedsInterval(t *testing.T) {
	task := validTask()
	task.Recurring = true
	task.SeriesID = task.ID
	if err := task.Validate(); !errors.Is(err, ErrIntervalRule) {
		t.Fatalf("expected ErrIntervalRule for recurring without interval, got %v", err)
	}

	task.Recurring = false
	task.Interval = IntervalDaily
	if err := task.Validate(); !errors.Is(err, ErrIntervalRule) {
		t.Fatalf("expected ErrIntervalRule for interval without recurring, got %v", err)
	}
}

func TestTaskValidateRejectsBadStatus(t *testing.T) {
	task := validTask()
	task.Status = Status("Paused")
	if err := task.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestTaskValidateAcceptsRecurringSeries(t *testing.T) {
	task := validTask()
	task.Recurring = true
	task.Interval = IntervalWeekly
	task.SeriesID = task.ID
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid recurring task, got %v", err)
	}
}

func TestTaskOverdueIsDerivedFromStatusAndDue(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	task := validTask()
	task.DueDate = now.Add(-time.Hour)
	if !task.Overdue(now) {
		t.Fatalf("pending task past due should be overdue")
	}

	task.Status = StatusDone
	if task.Overdue(now) {
		t.Fatalf("done task must never be overdue")
	}

	task.Status = StatusPending
	task.DueDate = now.Add(time.Minute)
	if task.Overdue(now) {
		t.Fatalf("future-due task must not be overdue")
	}
}

func TestHistoryEntryValidate(t *testing.T) {
	entry := HistoryEntry{
		ID:         "hist-1",
		TaskID:     "task-1",
		OldStatus:  StatusPending,
		NewStatus:  StatusDeleted,
		ChangeType: ChangeDeleted,
		ChangedAt:  time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := entry.Validate(); err != nil {
		t.Fatalf("deletion entry should validate: %v", err)
	}

	entry.ChangeType = ChangeType("Renamed")
	if err := entry.Validate(); !errors.Is(err, ErrInvalidChangeType) {
		t.Fatalf("expected ErrInvalidChangeType, got %v", err)
	}
}
