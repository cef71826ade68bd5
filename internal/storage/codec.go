package storage

import (
	"fmt"

	"github.com/eventloom/eventloom/internal/model"
)

// The engine works in model types; rows cross this boundary through a
// deserialize-and-validate step so a malformed row (unknown status,
// interval that disagrees with the recurring flag) is rejected instead
// of flowing into the state machine.

func (t Task) ToModel() (model.Task, error) {
	out := model.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueAt,
		Recurring:   t.Recurring,
		Interval:    model.Interval(t.Interval),
		Status:      model.Status(t.Status),
		SeriesID:    t.SeriesID,
		CreatedAt:   t.CreatedAt,
	}
	if out.Interval == "" {
		out.Interval = model.IntervalNone
	}
	if err := out.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("storage: malformed task row %s: %w", t.ID, err)
	}
	return out, nil
}

func TaskRow(in model.Task) Task {
	return Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		DueAt:       in.DueDate,
		Recurring:   in.Recurring,
		Interval:    string(in.Interval),
		Status:      string(in.Status),
		SeriesID:    in.SeriesID,
		CreatedAt:   in.CreatedAt,
	}
}

func (h HistoryEntry) ToModel() (model.HistoryEntry, error) {
	out := model.HistoryEntry{
		ID:         h.ID,
		TaskID:     h.TaskID,
		OldStatus:  model.Status(h.OldStatus),
		NewStatus:  model.Status(h.NewStatus),
		ChangeType: model.ChangeType(h.ChangeType),
		ChangedAt:  h.ChangedAt,
	}
	if err := out.Validate(); err != nil {
		return model.HistoryEntry{}, fmt.Errorf("storage: malformed history row %s: %w", h.ID, err)
	}
	return out, nil
}

func HistoryRow(in model.HistoryEntry) HistoryEntry {
	return HistoryEntry{
		ID:         in.ID,
		TaskID:     in.TaskID,
		OldStatus:  string(in.OldStatus),
		NewStatus:  string(in.NewStatus),
		ChangeType: string(in.ChangeType),
		ChangedAt:  in.ChangedAt,
	}
}
