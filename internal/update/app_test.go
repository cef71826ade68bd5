package update

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/notify"
	"github.com/eventloom/eventloom/internal/plan"
)

func newTestModel() Model {
	return NewModel(nil, nil)
}

func asModel(t *testing.T, m tea.Model) Model {
	t.Helper()
	typed, ok := m.(Model)
	if !ok {
		t.Fatalf("update returned %T, want Model", m)
	}
	return typed
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSetStatusMsgUpdatesStatusBar(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	got := asModel(t, updated)
	if got.Status.Text != "ready" || got.Status.IsError {
		t.Fatalf("status = %+v", got.Status)
	}
}

func TestTasksLoadedPopulatesListAndTitles(t *testing.T) {
	m := newTestModel()
	tasks := []model.Task{
		{ID: "t-1", Title: "water plants", DueDate: time.Now().Add(time.Hour), Status: model.StatusPending},
		{ID: "t-2", Title: "standup", DueDate: time.Now().Add(2 * time.Hour), Status: model.StatusPending, Recurring: true, Interval: model.IntervalDaily, SeriesID: "t-2"},
	}
	got := asModel(t, first(m.Update(tasksLoadedMsg{tasks: tasks})))
	if len(got.Tasks) != 2 {
		t.Fatalf("tasks = %d", len(got.Tasks))
	}
	if got.titles["t-1"] != "water plants" {
		t.Fatalf("title cache = %+v", got.titles)
	}
	if len(got.taskList.Items()) != 2 {
		t.Fatalf("list items = %d", len(got.taskList.Items()))
	}
}

func TestHistoryRowsFallBackToDeletedTask(t *testing.T) {
	m := newTestModel()
	entries := []model.HistoryEntry{
		{ID: "h-1", TaskID: "gone", NewStatus: model.StatusDeleted, ChangeType: model.ChangeDeleted, ChangedAt: time.Now()},
	}
	got := asModel(t, first(m.Update(historyLoadedMsg{entries: entries, titles: map[string]string{}})))
	rows := got.historyTable.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0][1] != "Deleted Task" {
		t.Fatalf("task column = %q", rows[0][1])
	}
}

func TestReminderDueAppendsToLogAndStatus(t *testing.T) {
	m := newTestModel()
	ev := notify.Event{TaskID: "t-1", Kind: plan.KindDue, Content: "water plants is due!", FiredAt: time.Now()}
	got := asModel(t, first(m.Update(ReminderDueMsg{Event: ev})))
	if len(got.ReminderLog) != 1 {
		t.Fatalf("reminder log = %d", len(got.ReminderLog))
	}
	if got.Status.Text != "water plants is due!" {
		t.Fatalf("status = %q", got.Status.Text)
	}
}

func TestReminderLogIsBounded(t *testing.T) {
	m := newTestModel()
	for i := 0; i < maxReminderLog+5; i++ {
		m = asModel(t, first(m.Update(ReminderDueMsg{Event: notify.Event{TaskID: "t", Content: "x"}})))
	}
	if len(m.ReminderLog) != maxReminderLog {
		t.Fatalf("reminder log = %d, want %d", len(m.ReminderLog), maxReminderLog)
	}
}

func TestSlashOpensPaletteAndEscCloses(t *testing.T) {
	m := newTestModel()
	got := asModel(t, first(m.Update(keyMsg("/"))))
	if !got.paletteOpen {
		t.Fatalf("palette should be open")
	}
	got = asModel(t, first(got.Update(tea.KeyMsg{Type: tea.KeyEsc})))
	if got.paletteOpen {
		t.Fatalf("esc should close the palette")
	}
}

func TestPaletteParseErrorSetsErrorStatus(t *testing.T) {
	m := newTestModel()
	m.paletteOpen = true
	m.commandInput.SetValue("snooze t-1")
	got := asModel(t, first(m.Update(tea.KeyMsg{Type: tea.KeyEnter})))
	if got.paletteOpen {
		t.Fatalf("enter should close the palette")
	}
	if !got.Status.IsError || !strings.Contains(got.Status.Text, "unknown command") {
		t.Fatalf("status = %+v", got.Status)
	}
}

func TestQuickActionWithoutSelection(t *testing.T) {
	m := newTestModel()
	got := asModel(t, first(m.Update(keyMsg("d"))))
	if !got.Status.IsError || got.Status.Text != "no task selected" {
		t.Fatalf("status = %+v", got.Status)
	}
}

func TestViewSwitchKeys(t *testing.T) {
	m := newTestModel()
	got := asModel(t, first(m.Update(keyMsg("h"))))
	if got.CurrentView != ViewHistory {
		t.Fatalf("view = %s", got.CurrentView)
	}
	got = asModel(t, first(got.Update(keyMsg("t"))))
	if got.CurrentView != ViewTasks {
		t.Fatalf("view = %s", got.CurrentView)
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel()
	got := asModel(t, first(m.Update(keyMsg("?"))))
	if !got.HelpVisible {
		t.Fatalf("help should be visible")
	}
	if !strings.Contains(got.View(), "command palette") {
		t.Fatalf("help view missing palette docs")
	}
}

func TestQuitSetsQuitting(t *testing.T) {
	m := newTestModel()
	got := asModel(t, first(m.Update(keyMsg("q"))))
	if !got.Quitting {
		t.Fatalf("q should quit")
	}
}

func first(m tea.Model, _ tea.Cmd) tea.Model { return m }
