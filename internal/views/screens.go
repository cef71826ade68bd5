package views

import (
	"fmt"
	"strings"

	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/notify"
)

// RenderTaskDetail formats the full record of one task for the detail
// pane.
func RenderTaskDetail(task model.Task) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(task.Title))
	b.WriteString("\n")
	if task.Description != "" {
		b.WriteString(task.Description)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "due      %s\n", task.DueDate.Format("Mon Jan 2 2006 15:04"))
	fmt.Fprintf(&b, "status   %s\n", task.Status)
	if task.Recurring {
		fmt.Fprintf(&b, "repeats  every %s\n", task.Interval)
		fmt.Fprintf(&b, "series   %s\n", task.SeriesID)
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("id %s, created %s", task.ID, task.CreatedAt.Format("Jan 2 15:04"))))
	return b.String()
}

// RenderReminderLog formats recent notification firings, newest first.
func RenderReminderLog(events []notify.Event) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Reminders"))
	b.WriteString("\n")
	if len(events) == 0 {
		b.WriteString(dimStyle.Render("none yet"))
		return b.String()
	}
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		fmt.Fprintf(&b, "%s  %-8s %s\n", ev.FiredAt.Format("15:04"), ev.Kind, ev.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
