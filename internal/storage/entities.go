package storage

import "time"

type Task struct {
	ID          string
	Title       string
	Description string
	DueAt       time.Time
	Recurring   bool
	Interval    string
	Status      string
	SeriesID    string
	CreatedAt   time.Time
}

type HistoryEntry struct {
	ID         string
	TaskID     string
	OldStatus  string
	NewStatus  string
	ChangeType string
	ChangedAt  time.Time
}

type TaskListFilter struct {
	Status string
	Limit  int
	Offset int
}

type HistoryFilter struct {
	TaskID string
	Limit  int
	Offset int
}
