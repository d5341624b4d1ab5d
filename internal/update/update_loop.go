package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/tasklist/internal/commands"
	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/reminder"
	"github.com/sandeepkv93/tasklist/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.engine != nil {
		return waitForTickCmd(m.engine.C())
	}
	return nil
}

func waitForTickCmd(ch <-chan time.Time) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		at, ok := <-ch
		if !ok {
			return TicksClosedMsg{}
		}
		return TickMsg{At: at}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Palette.Active {
			return m.handlePaletteKey(typed), nil
		}
		if m.ConfirmDelete {
			return m.handleDeleteConfirm(typed.String()), nil
		}
		return m.handleListKey(typed)
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.commandInput.Width = max(typed.Width-10, 20)
		return m, nil
	case TickMsg:
		m = m.onTick(typed.At)
		if m.engine != nil {
			return m, waitForTickCmd(m.engine.C())
		}
		return m, nil
	case TicksClosedMsg:
		m.logger.Debug("tick channel closed")
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if msg.Type == tea.KeySpace {
		key = " "
	}
	switch key {
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case m.Keys.Down, "down":
		m.Cursor++
		m.clampCursor()
	case m.Keys.Up, "up":
		m.Cursor--
		m.clampCursor()
	case m.Keys.MoveDown:
		m = m.run(func(m *Model) (commands.Result, error) {
			return m.runMove(commands.MoveArgs{Delta: 1})
		})
	case m.Keys.MoveUp:
		m = m.run(func(m *Model) (commands.Result, error) {
			return m.runMove(commands.MoveArgs{Delta: -1})
		})
	case m.Keys.Toggle, "x":
		m = m.run(func(m *Model) (commands.Result, error) {
			return m.runToggle(commands.TargetArgs{})
		})
	case m.Keys.Delete:
		task, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		m.ConfirmDelete = true
		m.pendingDelete = task.ID
		m.Status = StatusBar{Text: fmt.Sprintf("Delete %q? y/n", task.Title)}
	case m.Keys.Clear:
		m = m.run(func(m *Model) (commands.Result, error) { return m.runClear() })
	case m.Keys.Sort:
		next := m.SortKey.Next()
		m = m.run(func(m *Model) (commands.Result, error) {
			return m.runSort(commands.SortArgs{Key: string(next)})
		})
	case m.Keys.Add:
		return m.openPalette("add "), nil
	case m.Keys.Search:
		return m.openPalette("search " + m.Query), nil
	case m.Keys.Palette, ":":
		return m.openPalette(""), nil
	case "esc":
		if m.Query != "" {
			m.Query = ""
			m.Cursor = 0
			m.Status = StatusBar{Text: "search cleared"}
		}
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
	}
	return m, nil
}

// run executes op against m and reports the outcome in the status bar,
// preferring feedback the store recorded over the op's own message.
func (m Model) run(op func(*Model) (commands.Result, error)) Model {
	seq := m.feedback.Count()
	res, err := op(&m)
	m.clampCursor()
	if m.statusFromFeedback(seq) {
		if err != nil {
			m.LastError = err
		}
		return m
	}
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: res.Message}
	return m
}

func (m Model) handleDeleteConfirm(key string) Model {
	id := m.pendingDelete
	m.ConfirmDelete = false
	m.pendingDelete = ""
	switch key {
	case "y", "Y":
		return m.run(func(m *Model) (commands.Result, error) {
			task, err := m.store.Get(id)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.store.Delete(m.ctx, id); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("deleted: %s", task.Title)}, nil
		})
	default:
		m.Status = StatusBar{Text: "delete cancelled"}
		return m
	}
}

func (m Model) onTick(at time.Time) Model {
	if m.reminders == nil {
		return m
	}
	events := m.reminders.Tick(at)
	if len(events) == 0 {
		return m
	}
	m.ReminderLog = append(m.ReminderLog, events...)
	if len(m.ReminderLog) > reminderLogLimit {
		m.ReminderLog = m.ReminderLog[len(m.ReminderLog)-reminderLogLimit:]
	}
	last := events[len(events)-1]
	m.Status = StatusBar{Text: fmt.Sprintf("%s %s", last.Icon, last.Title), IsError: last.Urgent}
	return m
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		status = "status: " + m.Status.Text
	}

	side := []string{m.renderProgress()}
	if palette := views.RenderCommandPalette(m.Palette.Active, m.commandInput.View()); palette != "" {
		side = append(side, palette)
	}
	if help := m.renderHelpIfVisible(); help != "" {
		side = append(side, help)
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("tasklist | %d tasks | sort: %s", m.store.Len(), m.SortKey.Label()),
		MainPane:     m.renderTaskList(),
		SidePane:     strings.Join(side, "\n\n"),
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotifications(),
		Footer: fmt.Sprintf("keys: %s/%s move | space done | %s delete | %s clear | %s sort | %s add | %s search | %s cmd | %s help | %s quit",
			m.Keys.Up, m.Keys.Down, m.Keys.Delete, m.Keys.Clear, m.Keys.Sort, m.Keys.Add, m.Keys.Search, m.Keys.Palette, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderTaskList() string {
	now := m.now()
	w := m.windows()
	tasks := m.visibleTasks()
	rows := make([]views.TaskRowData, 0, len(tasks))
	for i, t := range tasks {
		kind := reminder.Classify(t, now, w)
		rows = append(rows, views.TaskRowData{
			Number:    i + 1,
			Title:     t.Title,
			Category:  string(t.Category),
			Priority:  string(t.Priority),
			Due:       m.formatDue(t),
			Completed: t.Completed,
			Overdue:   kind == reminder.KindOverdue,
			DueSoon:   kind == reminder.KindDueSoon,
			Selected:  i == m.Cursor,
		})
	}
	label := ""
	if m.SortKey != model.SortByCreatedAt {
		label = m.SortKey.Label()
	}
	return views.RenderTaskList(views.TaskListData{
		Rows:      rows,
		Query:     m.Query,
		SortLabel: label,
		Total:     m.store.Len(),
	})
}

func (m Model) renderProgress() string {
	p := m.store.Progress()
	return views.RenderProgress(views.ProgressData{
		Completed: p.Completed,
		Total:     p.Total,
		Percent:   int(p.Percent()),
		Bar:       m.progressBar.ViewAs(p.Percent() / 100),
	})
}

func (m Model) renderNotifications() string {
	entries := m.feedback.Entries()
	if len(entries) > 5 {
		entries = entries[len(entries)-5:]
	}
	items := make([]views.NotificationData, 0, len(entries))
	for _, e := range entries {
		items = append(items, views.NotificationData{
			Severity: string(e.Severity),
			Title:    e.Title,
			Message:  e.Message,
			At:       formatClock(e.At),
		})
	}
	return views.RenderNotifications(items)
}
