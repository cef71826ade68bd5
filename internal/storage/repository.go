package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// Repository is the narrow store surface the lifecycle engine needs.
// History is append-only; nothing ever updates or deletes a history row,
// and history rows survive deletion of the task they reference.
type Repository interface {
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error)
	GetSeries(ctx context.Context, seriesID string) ([]Task, error)
	SaveTask(ctx context.Context, in Task) error
	DeleteTask(ctx context.Context, id string) error

	AppendHistory(ctx context.Context, in HistoryEntry) error
	ListHistory(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, error)
}
