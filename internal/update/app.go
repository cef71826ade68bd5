package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eventloom/eventloom/internal/commands"
	"github.com/eventloom/eventloom/internal/engine"
	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/notify"
)

// runCommand parses palette input and executes it against the engine.
// Show and history are view changes, so they are handled here instead of
// going through the handler table; everything else mutates tasks and is
// followed by a task list reload.
func (m Model) runCommand(input string) (Model, tea.Cmd) {
	cmd, err := commands.Parse(input)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	switch cmd.Type {
	case commands.TypeShow:
		m.CurrentView = ViewTasks
		m.Filter = cmd.Show.Status
		m.Status = StatusBar{Text: showMessage(cmd.Show.Status)}
		return m, m.loadTasksCmd()
	case commands.TypeHistory:
		m.CurrentView = ViewHistory
		m.HistoryTarget = cmd.History.Target
		m.Status = StatusBar{Text: "history loaded"}
		return m, m.loadHistoryCmd(cmd.History.Target)
	}

	res, err := commands.Execute(cmd, m.handlers())
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, m.loadTasksCmd()
}

func showMessage(status model.Status) string {
	if status == "" {
		return "showing all tasks"
	}
	return fmt.Sprintf("showing %s tasks", status)
}

func (m Model) handlers() commands.Handlers {
	ctx := context.Background()
	eng := m.engine
	return commands.Handlers{
		Add: func(args commands.AddArgs) (commands.Result, error) {
			task, err := eng.Create(ctx, engine.CreateInput{
				Title:       args.Title,
				Description: args.Description,
				DueDate:     args.Due,
				Recurring:   args.Interval != model.IntervalNone,
				Interval:    args.Interval,
			})
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added %s, due %s", task.Title, task.DueDate.Format("Jan 2 15:04"))}, nil
		},
		Edit: func(args commands.EditArgs) (commands.Result, error) {
			updated, err := eng.Edit(ctx, args.Target, engine.EditChanges{
				Title:       args.Title,
				Description: args.Description,
				DueDate:     args.Due,
				Recurring:   args.Recurring,
				Interval:    args.Interval,
			}, args.Scope)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("updated %d task(s)", len(updated))}, nil
		},
		Done: func(args commands.TargetArgs) (commands.Result, error) {
			done, next, err := eng.Complete(ctx, args.Target)
			if err != nil {
				return commands.Result{}, err
			}
			msg := fmt.Sprintf("completed %s", done.Title)
			if next != nil {
				msg = fmt.Sprintf("%s, next occurrence due %s", msg, next.DueDate.Format("Jan 2 15:04"))
			}
			return commands.Result{Message: msg}, nil
		},
		Archive: func(args commands.TargetArgs) (commands.Result, error) {
			archived, err := eng.Archive(ctx, args.Target, args.Scope)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("archived %d task(s)", len(archived))}, nil
		},
		Cancel: func(args commands.TargetArgs) (commands.Result, error) {
			cancelled, err := eng.Cancel(ctx, args.Target)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("cancelled %s", cancelled.Title)}, nil
		},
		Delete: func(args commands.TargetArgs) (commands.Result, error) {
			removed, err := eng.Delete(ctx, args.Target, args.Scope)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("deleted %d task(s)", len(removed))}, nil
		},
		Restore: func(args commands.TargetArgs) (commands.Result, error) {
			restored, err := eng.Restore(ctx, args.Target)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("restored %s", restored.Title)}, nil
		},
	}
}

func (m Model) loadTasksCmd() tea.Cmd {
	eng := m.engine
	filter := m.Filter
	if eng == nil {
		return nil
	}
	return func() tea.Msg {
		tasks, err := eng.Tasks(context.Background(), filter)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return tasksLoadedMsg{tasks: tasks}
	}
}

func (m Model) loadHistoryCmd(target string) tea.Cmd {
	eng := m.engine
	if eng == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		entries, err := eng.History(ctx, target)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		// History rows name tasks by title, so fetch the survivors.
		tasks, err := eng.Tasks(ctx, "")
		if err != nil {
			return loadFailedMsg{err: err}
		}
		titles := make(map[string]string, len(tasks))
		for _, task := range tasks {
			titles[task.ID] = task.Title
		}
		return historyLoadedMsg{target: target, entries: entries, titles: titles}
	}
}

func waitForReminderCmd(ch <-chan notify.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

func reminderText(ev notify.Event) string {
	content := strings.TrimSpace(ev.Content)
	if content == "" {
		content = fmt.Sprintf("%s notification for %s", ev.Kind, ev.TaskID)
	}
	return content
}
