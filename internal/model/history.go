package model

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidChangeType = errors.New("model: invalid history change type")

type ChangeType string

const (
	ChangeCreated      ChangeType = "Created"
	ChangeEdited       ChangeType = "Edited"
	ChangeStatusChange ChangeType = "StatusChange"
	ChangeDeleted      ChangeType = "Deleted"
)

func (c ChangeType) IsValid() bool {
	switch c {
	case ChangeCreated, ChangeEdited, ChangeStatusChange, ChangeDeleted:
		return true
	default:
		return false
	}
}

// HistoryEntry is an immutable audit record of one lifecycle transition.
// Entries are append-only and outlive the task they reference; a row
// whose TaskID no longer resolves renders as a deleted task.
type HistoryEntry struct {
	ID         string
	TaskID     string
	OldStatus  Status // empty on creation entries
	NewStatus  Status
	ChangeType ChangeType
	ChangedAt  time.Time
}

func (h HistoryEntry) Validate() error {
	if strings.TrimSpace(h.ID) == "" {
		return errors.New("model: history id is required")
	}
	if strings.TrimSpace(h.TaskID) == "" {
		return errors.New("model: history task_id is required")
	}
	if !h.ChangeType.IsValid() {
		return ErrInvalidChangeType
	}
	if !h.NewStatus.IsValid() && h.NewStatus != StatusDeleted {
		return ErrInvalidStatus
	}
	if h.OldStatus != "" && !h.OldStatus.IsValid() {
		return ErrInvalidStatus
	}
	if h.ChangedAt.IsZero() {
		return errors.New("model: history change date is required")
	}
	return nil
}
