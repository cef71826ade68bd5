package update

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/eventloom/eventloom/internal/engine"
	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/notify"
)

type View string

const (
	ViewTasks   View = "Tasks"
	ViewHistory View = "History"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks   string
	History string
	Help    string
	Quit    string
}

const maxReminderLog = 20

type Model struct {
	CurrentView View
	// Filter narrows the task list to one status; empty shows all.
	Filter model.Status
	Tasks  []model.Task
	// History holds the entries currently on screen; HistoryTarget is
	// the task they are scoped to, empty for all tasks.
	History       []model.HistoryEntry
	HistoryTarget string
	ReminderLog   []notify.Event
	Status        StatusBar
	HelpVisible   bool
	Keys          GlobalKeyMap
	Quitting      bool

	engine *engine.Engine
	events <-chan notify.Event
	// titles maps task id to title for history rows. Entries outlive
	// their task, so a missing id renders as a deleted task.
	titles map[string]string

	taskList     list.Model
	historyTable table.Model
	commandInput textinput.Model
	paletteOpen  bool
	width        int
	height       int
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ReminderDueMsg struct {
	Event notify.Event
}

type tasksLoadedMsg struct {
	tasks []model.Task
}

type historyLoadedMsg struct {
	target  string
	entries []model.HistoryEntry
	titles  map[string]string
}

type loadFailedMsg struct {
	err error
}

// taskItem adapts a task for the bubbles list delegate.
type taskItem struct {
	task model.Task
	now  time.Time
}

func (i taskItem) Title() string {
	title := i.task.Title
	if i.task.Recurring {
		title = fmt.Sprintf("%s (every %s)", title, i.task.Interval)
	}
	return title
}

func (i taskItem) Description() string {
	due := i.task.DueDate.Format("Mon Jan 2 15:04")
	status := string(i.task.Status)
	if i.task.Overdue(i.now) {
		status = "overdue"
	}
	return fmt.Sprintf("%s  due %s  [%s]", i.task.ID, due, status)
}

func (i taskItem) FilterValue() string { return i.task.Title }

func NewModel(eng *engine.Engine, events <-chan notify.Event) Model {
	taskList := list.New(nil, list.NewDefaultDelegate(), 60, 16)
	taskList.Title = "Tasks"
	taskList.SetShowHelp(false)
	taskList.SetShowStatusBar(false)

	historyTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "When", Width: 16},
			{Title: "Task", Width: 24},
			{Title: "Change", Width: 13},
			{Title: "From", Width: 9},
			{Title: "To", Width: 9},
		}),
		table.WithHeight(14),
	)

	commandInput := textinput.New()
	commandInput.Prompt = "/ "
	commandInput.Placeholder = `add "title" --due 2024-06-01 09:00 --every daily`
	commandInput.CharLimit = 256

	return Model{
		CurrentView: ViewTasks,
		Keys: GlobalKeyMap{
			Tasks:   "t",
			History: "h",
			Help:    "?",
			Quit:    "q",
		},
		engine:       eng,
		events:       events,
		titles:       make(map[string]string),
		taskList:     taskList,
		historyTable: historyTable,
		commandInput: commandInput,
	}
}

func (m *Model) syncBubbleData() {
	now := time.Now()
	items := make([]list.Item, 0, len(m.Tasks))
	for _, task := range m.Tasks {
		items = append(items, taskItem{task: task, now: now})
	}
	m.taskList.SetItems(items)

	rows := make([]table.Row, 0, len(m.History))
	for _, entry := range m.History {
		title, ok := m.titles[entry.TaskID]
		if !ok {
			title = "Deleted Task"
		}
		rows = append(rows, table.Row{
			entry.ChangedAt.Format("Jan 2 15:04"),
			title,
			string(entry.ChangeType),
			string(entry.OldStatus),
			string(entry.NewStatus),
		})
	}
	m.historyTable.SetRows(rows)
}

// selectedTaskID returns the id under the cursor in the task list.
func (m Model) selectedTaskID() string {
	item, ok := m.taskList.SelectedItem().(taskItem)
	if !ok {
		return ""
	}
	return item.task.ID
}

func (m *Model) logReminder(ev notify.Event) {
	m.ReminderLog = append(m.ReminderLog, ev)
	if len(m.ReminderLog) > maxReminderLog {
		m.ReminderLog = m.ReminderLog[len(m.ReminderLog)-maxReminderLog:]
	}
}
