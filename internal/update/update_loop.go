package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eventloom/eventloom/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadTasksCmd(), waitForReminderCmd(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)

	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.taskList.SetSize(typed.Width-6, typed.Height-8)
		return m, nil

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil

	case tasksLoadedMsg:
		m.Tasks = typed.tasks
		for _, task := range typed.tasks {
			m.titles[task.ID] = task.Title
		}
		m.syncBubbleData()
		return m, nil

	case historyLoadedMsg:
		m.History = typed.entries
		m.HistoryTarget = typed.target
		for id, title := range typed.titles {
			m.titles[id] = title
		}
		m.syncBubbleData()
		return m, nil

	case loadFailedMsg:
		m.Status = StatusBar{Text: typed.err.Error(), IsError: true}
		return m, nil

	case ReminderDueMsg:
		m.logReminder(typed.Event)
		m.Status = StatusBar{Text: reminderText(typed.Event)}
		// Firing can change what counts as overdue, so reload.
		return m, tea.Batch(m.loadTasksCmd(), waitForReminderCmd(m.events))
	}

	return m, nil
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.paletteOpen {
		return m.handlePaletteKey(key)
	}

	switch key.String() {
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case "/":
		m.paletteOpen = true
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Tasks:
		m.CurrentView = ViewTasks
		return m, m.loadTasksCmd()
	case m.Keys.History:
		m.CurrentView = ViewHistory
		return m, m.loadHistoryCmd(m.HistoryTarget)
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case "d":
		return m.quickAction("done")
	case "a":
		return m.quickAction("archive")
	case "x":
		return m.quickAction("delete")
	case "c":
		return m.quickAction("cancel")
	case "r":
		return m.quickAction("restore")
	}

	var cmd tea.Cmd
	switch m.CurrentView {
	case ViewHistory:
		m.historyTable, cmd = m.historyTable.Update(key)
	default:
		m.taskList, cmd = m.taskList.Update(key)
	}
	return m, cmd
}

func (m Model) handlePaletteKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.paletteOpen = false
		m.commandInput.Blur()
		m.Status = StatusBar{}
		return m, nil
	case "enter":
		input := m.commandInput.Value()
		m.paletteOpen = false
		m.commandInput.Blur()
		m.commandInput.SetValue("")
		return m.runCommand(input)
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(key)
	return m, cmd
}

// quickAction applies a single-occurrence command to the selected task.
func (m Model) quickAction(verb string) (tea.Model, tea.Cmd) {
	if m.CurrentView != ViewTasks {
		return m, nil
	}
	id := m.selectedTaskID()
	if id == "" {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return m, nil
	}
	return m.runCommand(fmt.Sprintf("%s %s", verb, id))
}

func (m Model) View() string {
	if m.Quitting {
		return "bye\n"
	}
	if m.HelpVisible {
		return views.RenderMarkdown(helpMarkdown)
	}

	var left string
	switch m.CurrentView {
	case ViewHistory:
		left = m.historyTable.View()
	default:
		left = m.taskList.View()
	}

	right := m.detailPane()
	statusLine := m.Status.Text
	if m.Status.IsError {
		statusLine = "error: " + statusLine
	}

	footer := fmt.Sprintf("/ command  %s tasks  %s history  d done  a archive  %s help  %s quit",
		m.Keys.Tasks, m.Keys.History, m.Keys.Help, m.Keys.Quit)

	data := views.AppData{
		Header:     fmt.Sprintf("eventloom  [%s]", m.CurrentView),
		LeftPane:   left,
		RightPane:  right,
		StatusLine: statusLine,
		Footer:     footer,
	}
	if m.paletteOpen {
		data.Notification = m.commandInput.View()
	}
	return views.RenderApp(data)
}

func (m Model) detailPane() string {
	var b strings.Builder
	if item, ok := m.taskList.SelectedItem().(taskItem); ok && m.CurrentView == ViewTasks {
		b.WriteString(views.RenderTaskDetail(item.task))
		b.WriteString("\n")
	}
	b.WriteString(views.RenderReminderLog(m.ReminderLog))
	return b.String()
}
