package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/tasklist/internal/commands"
	"github.com/sandeepkv93/tasklist/internal/model"
)

func (m Model) openPalette(prefill string) Model {
	m.Palette.Active = true
	m.Palette.Input = prefill
	m.commandInput.SetValue(prefill)
	m.commandInput.CursorEnd()
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active"}
	return m
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		m.commandInput, _ = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	seq := m.feedback.Count()
	res, err := commands.Execute(cmd, m.handlers())
	if err != nil {
		m.LastError = err
		if !m.statusFromFeedback(seq) {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
		}
		m.logger.Debug("command failed", "input", raw, "err", err)
		return m
	}
	m.clampCursor()
	if !m.statusFromFeedback(seq) {
		m.Status = StatusBar{Text: res.Message}
	}
	return m
}

// handlers binds palette commands to store operations; they mutate m.
func (m *Model) handlers() commands.Handlers {
	return commands.Handlers{
		Add:    m.runAdd,
		Edit:   m.runEdit,
		Done:   m.runToggle,
		Delete: m.runDelete,
		Clear:  m.runClear,
		Sort:   m.runSort,
		Search: m.runSearch,
		Move:   m.runMove,
		Help: func() (commands.Result, error) {
			m.HelpVisible = true
			return commands.Result{Message: "help shown"}, nil
		},
	}
}

func (m *Model) runAdd(a commands.AddArgs) (commands.Result, error) {
	in := model.TaskInput{
		Title:         a.Title,
		DueDate:       a.Due,
		Category:      model.Category(normalizeField(a.Category)),
		Priority:      model.Priority(normalizeField(a.Priority)),
		AllowPastDate: a.Force,
	}
	if in.Category == "" {
		in.Category = defaultCategory(m.store.Categories())
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	task, _, err := m.store.Add(m.ctx, in)
	if err != nil {
		return commands.Result{}, err
	}
	m.armReminders(task)
	m.selectTask(task.ID)
	return commands.Result{Message: fmt.Sprintf("added: %s", task.Title)}, nil
}

func (m *Model) runEdit(e commands.EditArgs) (commands.Result, error) {
	target, err := m.resolveTarget(e.Target)
	if err != nil {
		return commands.Result{}, err
	}
	patch := model.TaskPatch{Title: e.Title, DueDate: e.Due, AllowPastDate: e.Force}
	if e.Category != nil {
		c := model.Category(normalizeField(*e.Category))
		patch.Category = &c
	}
	if e.Priority != nil {
		p := model.Priority(normalizeField(*e.Priority))
		patch.Priority = &p
	}
	task, _, err := m.store.Update(m.ctx, target.ID, patch)
	if err != nil {
		return commands.Result{}, err
	}
	if e.Due != nil {
		m.armReminders(task)
	}
	m.selectTask(task.ID)
	return commands.Result{Message: fmt.Sprintf("updated: %s", task.Title)}, nil
}

func (m *Model) runToggle(a commands.TargetArgs) (commands.Result, error) {
	target, err := m.resolveTarget(a.Target)
	if err != nil {
		return commands.Result{}, err
	}
	task, err := m.store.ToggleComplete(m.ctx, target.ID)
	if err != nil {
		return commands.Result{}, err
	}
	if !task.Completed {
		m.armReminders(task)
	}
	return commands.Result{Message: fmt.Sprintf("toggled: %s", task.Title)}, nil
}

func (m *Model) runDelete(a commands.TargetArgs) (commands.Result, error) {
	target, err := m.resolveTarget(a.Target)
	if err != nil {
		return commands.Result{}, err
	}
	if err := m.store.Delete(m.ctx, target.ID); err != nil {
		return commands.Result{}, err
	}
	return commands.Result{Message: fmt.Sprintf("deleted: %s", target.Title)}, nil
}

func (m *Model) runClear() (commands.Result, error) {
	n, err := m.store.ClearCompleted(m.ctx)
	if err != nil {
		return commands.Result{}, err
	}
	return commands.Result{Message: fmt.Sprintf("cleared %d completed", n)}, nil
}

func (m *Model) runSort(a commands.SortArgs) (commands.Result, error) {
	key, err := model.ParseSortKey(a.Key)
	if err != nil {
		return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
	}
	if err := m.store.SortBy(m.ctx, key); err != nil {
		return commands.Result{}, err
	}
	m.SortKey = key
	return commands.Result{Message: "sorted by " + key.Label()}, nil
}

func (m *Model) runSearch(a commands.SearchArgs) (commands.Result, error) {
	m.Query = a.Term
	m.Cursor = 0
	if a.Term == "" {
		return commands.Result{Message: "search cleared"}, nil
	}
	n := len(m.visibleTasks())
	return commands.Result{Message: fmt.Sprintf("%d %s matching %q", n, plural(n, "task", "tasks"), a.Term)}, nil
}

func (m *Model) runMove(a commands.MoveArgs) (commands.Result, error) {
	if m.Query != "" {
		return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "clear the search before reordering"}
	}
	target, err := m.resolveTarget(a.Target)
	if err != nil {
		return commands.Result{}, err
	}
	if err := m.store.Move(m.ctx, target.ID, a.Delta); err != nil {
		return commands.Result{}, err
	}
	m.selectTask(target.ID)
	return commands.Result{Message: fmt.Sprintf("moved: %s", target.Title)}, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
