package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/eventloom/eventloom/internal/model"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "eventloom-test.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	if err := MigrateUp(repo.DB()); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	return repo
}

func taskRow(id string, due time.Time) Task {
	return Task{
		ID:        id,
		Title:     "Task " + id,
		DueAt:     due,
		Interval:  "none",
		Status:    "Pending",
		CreatedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestSaveTaskInsertsAndUpdates(t *testing.T) {
	repo := openTestRepo(t)
	due := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	in := taskRow("task-1", due)
	if err := repo.SaveTask(t.Context(), in); err != nil {
		t.Fatalf("insert: %v", err)
	}

	in.Title = "Renamed"
	in.Status = "Done"
	if err := repo.SaveTask(t.Context(), in); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.GetTask(t.Context(), "task-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Renamed" || got.Status != "Done" {
		t.Fatalf("upsert did not stick: %+v", got)
	}
	if !got.DueAt.Equal(due) {
		t.Fatalf("due roundtrip: got %s, want %s", got.DueAt, due)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	repo := openTestRepo(t)
	if _, err := repo.GetTask(t.Context(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteTask(t.Context(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete of missing task should be ErrNotFound, got %v", err)
	}
}

func TestGetSeriesOrdersByDueDate(t *testing.T) {
	repo := openTestRepo(t)
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"occ-c", "occ-a", "occ-b"} {
		row := taskRow(id, base.AddDate(0, 0, []int{2, 0, 1}[i]))
		row.Recurring = true
		row.Interval = "daily"
		row.SeriesID = "occ-a"
		if err := repo.SaveTask(t.Context(), row); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	series, err := repo.GetSeries(t.Context(), "occ-a")
	if err != nil {
		t.Fatalf("get series: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(series))
	}
	for i := 1; i < len(series); i++ {
		if series[i].DueAt.Before(series[i-1].DueAt) {
			t.Fatalf("series not ordered by due date: %+v", series)
		}
	}
}

func TestHistorySurvivesTaskDeletion(t *testing.T) {
	repo := openTestRepo(t)
	due := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	if err := repo.SaveTask(t.Context(), taskRow("task-1", due)); err != nil {
		t.Fatalf("save: %v", err)
	}
	entry := HistoryEntry{
		ID:         "hist-1",
		TaskID:     "task-1",
		NewStatus:  "Pending",
		ChangeType: "Created",
		ChangedAt:  due,
	}
	if err := repo.AppendHistory(t.Context(), entry); err != nil {
		t.Fatalf("append history: %v", err)
	}

	if err := repo.DeleteTask(t.Context(), "task-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := repo.ListHistory(t.Context(), HistoryFilter{TaskID: "task-1"})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(got) != 1 || got[0].ID != "hist-1" {
		t.Fatalf("history should survive task deletion, got %+v", got)
	}
	if got[0].OldStatus != "" {
		t.Fatalf("creation entry should have empty old status, got %q", got[0].OldStatus)
	}
}

func TestListTasksFiltersByStatus(t *testing.T) {
	repo := openTestRepo(t)
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	pending := taskRow("task-p", base)
	done := taskRow("task-d", base.Add(time.Hour))
	done.Status = "Done"
	for _, row := range []Task{pending, done} {
		if err := repo.SaveTask(t.Context(), row); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := repo.ListTasks(t.Context(), TaskListFilter{Status: "Pending"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "task-p" {
		t.Fatalf("status filter broken: %+v", got)
	}
}

func TestCodecRejectsMalformedRows(t *testing.T) {
	row := taskRow("task-1", time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	row.Status = "Snoozed"
	if _, err := row.ToModel(); err == nil {
		t.Fatalf("unknown status must be rejected at the store boundary")
	}

	row = taskRow("task-2", time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	row.Recurring = true // interval still "none"
	if _, err := row.ToModel(); err == nil {
		t.Fatalf("recurring flag without interval must be rejected")
	}
}

func TestCodecRoundTrip(t *testing.T) {
	in := model.Task{
		ID:        "task-1",
		Title:     "Stretch",
		DueDate:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Recurring: true,
		Interval:  model.IntervalWeekly,
		Status:    model.StatusPending,
		SeriesID:  "task-1",
		CreatedAt: time.Date(2024, 5, 30, 8, 0, 0, 0, time.UTC),
	}
	out, err := TaskRow(in).ToModel()
	if err != nil {
		t.Fatalf("roundtrip: %v", err)
	}
	if out != in {
		t.Fatalf("roundtrip mismatch:\n got %+v\nwant %+v", out, in)
	}
}
