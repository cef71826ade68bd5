package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/notify"
	"github.com/eventloom/eventloom/internal/plan"
	"github.com/eventloom/eventloom/internal/storage"
)

// Engine is the task lifecycle state machine. Every mutating operation
// reads current state from the store, writes the new state plus history,
// and recomputes the notification plan of each task whose pending-ness
// or due date changed. Reminder scheduling is best effort: a scheduler
// failure is logged and never rolls back the state transition.
//
// The clock and id generator are injected; the engine never reads
// ambient globals.
type Engine struct {
	store     storage.Repository
	scheduler notify.Scheduler
	overdue   *plan.OverdueLog
	now       func() time.Time
	newID     func() string
	logf      func(format string, args ...any)
}

func New(store storage.Repository, scheduler notify.Scheduler) *Engine {
	return &Engine{
		store:     store,
		scheduler: scheduler,
		overdue:   plan.NewOverdueLog(),
		now:       time.Now,
		newID:     uuid.NewString,
		logf:      log.Printf,
	}
}

type CreateInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Recurring   bool
	Interval    model.Interval
}

// Create validates the input, persists a new Pending task (a recurring
// task becomes its own series root), records a Created history entry and
// schedules its notification plan.
func (e *Engine) Create(ctx context.Context, in CreateInput) (model.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return model.Task{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Recurring && (in.Interval == "" || in.Interval == model.IntervalNone) {
		return model.Task{}, fmt.Errorf("%w: recurring task requires an interval", ErrValidation)
	}
	if in.Recurring && !in.Interval.IsValid() {
		return model.Task{}, fmt.Errorf("%w: unknown interval %q", ErrValidation, in.Interval)
	}
	if in.DueDate.IsZero() {
		return model.Task{}, fmt.Errorf("%w: due date is required", ErrValidation)
	}

	now := e.now()
	task := model.Task{
		ID:          e.newID(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		DueDate:     in.DueDate,
		Recurring:   in.Recurring,
		Interval:    model.IntervalNone,
		Status:      model.StatusPending,
		CreatedAt:   now,
	}
	if in.Recurring {
		task.Interval = in.Interval
		task.SeriesID = task.ID
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := e.store.SaveTask(ctx, storage.TaskRow(task)); err != nil {
		return model.Task{}, err
	}
	if err := e.appendHistory(ctx, task.ID, "", model.StatusPending, model.ChangeCreated, now); err != nil {
		return model.Task{}, err
	}
	e.applyPlan(task, now)
	return task, nil
}

type EditChanges struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Recurring   *bool
	Interval    *model.Interval
}

// Edit mutates the target task and, with ScopeThisAndFuture on a
// recurring task, every later-dated occurrence of its series. Series
// edits rebase the schedule: the target takes the new due date and
// sibling k takes the new interval applied k times from that base.
// One Edited history entry is written per affected task.
func (e *Engine) Edit(ctx context.Context, taskID string, changes EditChanges, scope model.Scope) ([]model.Task, error) {
	row, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	target, err := row.ToModel()
	if err != nil {
		return nil, err
	}

	if scope == model.ScopeThisAndFuture && target.Recurring {
		return e.editSeries(ctx, target, changes)
	}
	updated, err := e.editSingle(ctx, target, changes)
	if err != nil {
		return nil, err
	}
	return []model.Task{updated}, nil
}

func (e *Engine) editSingle(ctx context.Context, task model.Task, changes EditChanges) (model.Task, error) {
	wasSeries := task.SeriesID != "" && task.SeriesID != task.ID

	if changes.Title != nil {
		task.Title = strings.TrimSpace(*changes.Title)
	}
	if changes.Description != nil {
		task.Description = *changes.Description
	}
	if changes.DueDate != nil {
		task.DueDate = *changes.DueDate
	}
	if changes.Recurring != nil {
		task.Recurring = *changes.Recurring
	}
	if changes.Interval != nil {
		task.Interval = *changes.Interval
	}

	switch {
	case !task.Recurring:
		// Turning recurrence off detaches the occurrence from its series.
		task.Interval = model.IntervalNone
		task.SeriesID = ""
	case changes.Interval != nil && wasSeries:
		// An interval change on a single occurrence detaches it from its
		// siblings; it keeps recurring as its own series root.
		task.SeriesID = task.ID
	case task.SeriesID == "":
		task.SeriesID = task.ID
	}

	if err := task.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := e.now()
	if err := e.store.SaveTask(ctx, storage.TaskRow(task)); err != nil {
		return model.Task{}, err
	}
	if err := e.appendHistory(ctx, task.ID, task.Status, task.Status, model.ChangeEdited, now); err != nil {
		return model.Task{}, err
	}
	e.replan(task, now)
	return task, nil
}

func (e *Engine) editSeries(ctx context.Context, target model.Task, changes EditChanges) ([]model.Task, error) {
	affected, err := e.futureOccurrences(ctx, target)
	if err != nil {
		return nil, err
	}

	newBase := target.DueDate
	if changes.DueDate != nil {
		newBase = *changes.DueDate
	}
	newInterval := target.Interval
	if changes.Interval != nil {
		newInterval = *changes.Interval
	}
	newRecurring := true
	if changes.Recurring != nil {
		newRecurring = *changes.Recurring
	}
	if newRecurring && !newInterval.IsValid() {
		return nil, fmt.Errorf("%w: unknown interval %q", ErrValidation, newInterval)
	}

	now := e.now()
	due := newBase
	out := make([]model.Task, 0, len(affected))
	for k, task := range affected {
		if changes.Title != nil {
			task.Title = strings.TrimSpace(*changes.Title)
		}
		if changes.Description != nil {
			task.Description = *changes.Description
		}
		if newRecurring {
			if k > 0 {
				next, stepErr := model.NextOccurrence(due, newInterval)
				if stepErr != nil {
					return nil, stepErr
				}
				due = next
			}
			task.DueDate = due
			task.Recurring = true
			task.Interval = newInterval
		} else {
			// Dissolving the series: every future occurrence becomes a
			// standalone task and keeps its current due date, except the
			// target which takes the supplied one.
			if k == 0 {
				task.DueDate = newBase
			}
			task.Recurring = false
			task.Interval = model.IntervalNone
			task.SeriesID = ""
		}

		if err := task.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if err := e.store.SaveTask(ctx, storage.TaskRow(task)); err != nil {
			return nil, err
		}
		if err := e.appendHistory(ctx, task.ID, task.Status, task.Status, model.ChangeEdited, now); err != nil {
			return nil, err
		}
		e.replan(task, now)
		out = append(out, task)
	}
	return out, nil
}

// Complete marks a Pending task Done and, for recurring tasks, spawns the
// successor occurrence one interval later in the same series. Returns the
// completed task and the successor (nil for non-recurring tasks).
func (e *Engine) Complete(ctx context.Context, taskID string) (model.Task, *model.Task, error) {
	row, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, nil, err
	}
	task, err := row.ToModel()
	if err != nil {
		return model.Task{}, nil, err
	}
	if task.Status != model.StatusPending {
		return model.Task{}, nil, fmt.Errorf("%w: cannot complete %s task %s", ErrInvalidTransition, task.Status, task.ID)
	}

	now := e.now()
	task.Status = model.StatusDone
	if err := e.store.SaveTask(ctx, storage.TaskRow(task)); err != nil {
		return model.Task{}, nil, err
	}
	if err := e.appendHistory(ctx, task.ID, model.StatusPending, model.StatusDone, model.ChangeStatusChange, now); err != nil {
		return model.Task{}, nil, err
	}
	e.clearPlan(task.ID)

	if !task.Recurring {
		return task, nil, nil
	}

	nextDue, err := model.NextOccurrence(task.DueDate, task.Interval)
	if err != nil {
		// recurring==true guarantees a valid interval; a failure here is a
		// corrupted row, not a user error.
		return model.Task{}, nil, err
	}
	successor := model.Task{
		ID:          e.newID(),
		Title:       task.Title,
		Description: task.Description,
		DueDate:     nextDue,
		Recurring:   true,
		Interval:    task.Interval,
		Status:      model.StatusPending,
		SeriesID:    task.SeriesID,
		CreatedAt:   now,
	}
	if err := e.store.SaveTask(ctx, storage.TaskRow(successor)); err != nil {
		return model.Task{}, nil, err
	}
	if err := e.appendHistory(ctx, successor.ID, "", model.StatusPending, model.ChangeCreated, now); err != nil {
		return model.Task{}, nil, err
	}
	e.applyPlan(successor, now)
	return task, &successor, nil
}

// Archive moves the target (and, with ScopeThisAndFuture, its later
// series siblings) to Archived from any non-archived status and clears
// their notification plans.
func (e *Engine) Archive(ctx context.Context, taskID string, scope model.Scope) ([]model.Task, error) {
	targets, err := e.resolveScope(ctx, taskID, scope)
	if err != nil {
		return nil, err
	}
	if targets[0].Status == model.StatusArchived {
		return nil, fmt.Errorf("%w: task %s is already archived", ErrInvalidTransition, taskID)
	}

	now := e.now()
	out := make([]model.Task, 0, len(targets))
	for _, task := range targets {
		if task.Status == model.StatusArchived {
			continue
		}
		old := task.Status
		task.Status = model.StatusArchived
		if err := e.store.SaveTask(ctx, storage.TaskRow(task)); err != nil {
			return nil, err
		}
		if err := e.appendHistory(ctx, task.ID, old, model.StatusArchived, model.ChangeStatusChange, now); err != nil {
			return nil, err
		}
		e.clearPlan(task.ID)
		out = append(out, task)
	}
	return out, nil
}

// Cancel moves a Pending task to Cancelled. Cancellation is always a
// single-occurrence action; series scope is deliberately unsupported.
func (e *Engine) Cancel(ctx context.Context, taskID string) (model.Task, error) {
	row, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}
	task, err := row.ToModel()
	if err != nil {
		return model.Task{}, err
	}
	if task.Status != model.StatusPending {
		return model.Task{}, fmt.Errorf("%w: cannot cancel %s task %s", ErrInvalidTransition, task.Status, task.ID)
	}

	now := e.now()
	task.Status = model.StatusCancelled
	if err := e.store.SaveTask(ctx, storage.TaskRow(task)); err != nil {
		return model.Task{}, err
	}
	if err := e.appendHistory(ctx, task.ID, model.StatusPending, model.StatusCancelled, model.ChangeStatusChange, now); err != nil {
		return model.Task{}, err
	}
	e.clearPlan(task.ID)
	return task, nil
}

// Delete removes the target task row (and, with ScopeThisAndFuture, its
// later series siblings), writing one Deleted history entry per removed
// task. Earlier history rows stay queryable; they will reference a task
// that no longer exists.
func (e *Engine) Delete(ctx context.Context, taskID string, scope model.Scope) ([]string, error) {
	targets, err := e.resolveScope(ctx, taskID, scope)
	if err != nil {
		return nil, err
	}

	now := e.now()
	removed := make([]string, 0, len(targets))
	for _, task := range targets {
		if err := e.appendHistory(ctx, task.ID, task.Status, model.StatusDeleted, model.ChangeDeleted, now); err != nil {
			return removed, err
		}
		if err := e.store.DeleteTask(ctx, task.ID); err != nil {
			return removed, err
		}
		e.clearPlan(task.ID)
		removed = append(removed, task.ID)
	}
	return removed, nil
}

// Restore returns an Archived or Done task to Pending and reschedules its
// notifications; a task whose due date has passed comes back overdue.
func (e *Engine) Restore(ctx context.Context, taskID string) (model.Task, error) {
	row, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}
	task, err := row.ToModel()
	if err != nil {
		return model.Task{}, err
	}
	if task.Status != model.StatusArchived && task.Status != model.StatusDone {
		return model.Task{}, fmt.Errorf("%w: cannot restore %s task %s", ErrInvalidTransition, task.Status, task.ID)
	}

	now := e.now()
	old := task.Status
	task.Status = model.StatusPending
	if err := e.store.SaveTask(ctx, storage.TaskRow(task)); err != nil {
		return model.Task{}, err
	}
	if err := e.appendHistory(ctx, task.ID, old, model.StatusPending, model.ChangeStatusChange, now); err != nil {
		return model.Task{}, err
	}
	e.applyPlan(task, now)
	return task, nil
}

// Reevaluate refreshes the notification plan of every Pending task that
// has slipped past its due date. The overdue log keeps a task from being
// re-notified more than once per day. Driven on a cadence by an external
// scheduler and once at startup.
func (e *Engine) Reevaluate(ctx context.Context, now time.Time) error {
	rows, err := e.store.ListTasks(ctx, storage.TaskListFilter{Status: string(model.StatusPending)})
	if err != nil {
		return err
	}
	for _, row := range rows {
		task, convErr := row.ToModel()
		if convErr != nil {
			e.logf("reevaluate: skipping malformed row %s: %v", row.ID, convErr)
			continue
		}
		if task.Overdue(now) {
			e.applyPlan(task, now)
		}
	}
	return nil
}

// History lists audit entries, newest first, optionally scoped to a task.
func (e *Engine) History(ctx context.Context, taskID string) ([]model.HistoryEntry, error) {
	rows, err := e.store.ListHistory(ctx, storage.HistoryFilter{TaskID: taskID})
	if err != nil {
		return nil, err
	}
	out := make([]model.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry, convErr := row.ToModel()
		if convErr != nil {
			return nil, convErr
		}
		out = append(out, entry)
	}
	return out, nil
}

// Tasks lists tasks, optionally filtered to one status.
func (e *Engine) Tasks(ctx context.Context, status model.Status) ([]model.Task, error) {
	rows, err := e.store.ListTasks(ctx, storage.TaskListFilter{Status: string(status)})
	if err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		task, convErr := row.ToModel()
		if convErr != nil {
			return nil, convErr
		}
		out = append(out, task)
	}
	return out, nil
}

// resolveScope loads the target and, for ScopeThisAndFuture on a
// recurring task, its series siblings with dueDate >= target's, target
// first. Non-recurring targets always resolve to just themselves.
func (e *Engine) resolveScope(ctx context.Context, taskID string, scope model.Scope) ([]model.Task, error) {
	row, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	target, err := row.ToModel()
	if err != nil {
		return nil, err
	}
	if scope != model.ScopeThisAndFuture || !target.Recurring {
		return []model.Task{target}, nil
	}
	return e.futureOccurrences(ctx, target)
}

// futureOccurrences returns the target plus every series sibling whose
// due date is on or after the target's, ordered by due date with the
// target first.
func (e *Engine) futureOccurrences(ctx context.Context, target model.Task) ([]model.Task, error) {
	rows, err := e.store.GetSeries(ctx, target.SeriesID)
	if err != nil {
		return nil, err
	}
	out := []model.Task{target}
	for _, row := range rows {
		task, convErr := row.ToModel()
		if convErr != nil {
			return nil, convErr
		}
		if task.ID == target.ID || task.DueDate.Before(target.DueDate) {
			continue
		}
		out = append(out, task)
	}
	sort.SliceStable(out[1:], func(i, j int) bool {
		return out[i+1].DueDate.Before(out[j+1].DueDate)
	})
	return out, nil
}

func (e *Engine) appendHistory(ctx context.Context, taskID string, from, to model.Status, change model.ChangeType, at time.Time) error {
	entry := model.HistoryEntry{
		ID:         e.newID(),
		TaskID:     taskID,
		OldStatus:  from,
		NewStatus:  to,
		ChangeType: change,
		ChangedAt:  at,
	}
	return e.store.AppendHistory(ctx, storage.HistoryRow(entry))
}

// applyPlan recomputes and applies the task's notification plan,
// suppressing a repeat overdue notice for a task already notified today.
func (e *Engine) applyPlan(task model.Task, now time.Time) {
	requests := plan.Compute(task, now)
	filtered := requests[:0]
	for _, req := range requests {
		if req.Kind == plan.KindOverdue && !e.overdue.MarkNotified(task.ID, now) {
			continue
		}
		filtered = append(filtered, req)
	}

	e.scheduler.CancelAll(task.ID)
	if len(filtered) == 0 {
		return
	}
	if err := e.scheduler.Apply(filtered); err != nil {
		e.logf("notify: scheduling reminders for task %s: %v", task.ID, err)
	}
}

// replan is applyPlan plus forgetting overdue-dedup state, for edits that
// may move the due date back into the future.
func (e *Engine) replan(task model.Task, now time.Time) {
	if !task.Overdue(now) {
		e.overdue.Forget(task.ID)
	}
	e.applyPlan(task, now)
}

func (e *Engine) clearPlan(taskID string) {
	e.scheduler.CancelAll(taskID)
	e.overdue.Forget(taskID)
}
