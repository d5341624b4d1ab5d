package update

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sandeepkv93/tasklist/internal/commands"
	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/notify"
)

// visibleTasks is the list the cursor and task numbers refer to.
func (m Model) visibleTasks() []model.Task {
	if m.Query == "" {
		return m.store.Tasks()
	}
	return slices.Collect(m.store.Query(m.Query))
}

func (m Model) selectedTask() (model.Task, bool) {
	rows := m.visibleTasks()
	if m.Cursor < 0 || m.Cursor >= len(rows) {
		return model.Task{}, false
	}
	return rows[m.Cursor], true
}

func (m Model) resolveTarget(target commands.Target) (model.Task, error) {
	rows := m.visibleTasks()
	idx := m.Cursor
	if !target.Selected() {
		idx = target.Index - 1
	}
	if idx < 0 || idx >= len(rows) {
		if target.Selected() {
			return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task selected"}
		}
		return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task #%d", target.Index)}
	}
	return rows[idx], nil
}

func (m *Model) clampCursor() {
	n := len(m.visibleTasks())
	switch {
	case n == 0:
		m.Cursor = 0
	case m.Cursor >= n:
		m.Cursor = n - 1
	case m.Cursor < 0:
		m.Cursor = 0
	}
}

func (m *Model) selectTask(id string) {
	if i := slices.IndexFunc(m.visibleTasks(), func(t model.Task) bool { return t.ID == id }); i >= 0 {
		m.Cursor = i
	}
}

// statusFromFeedback shows the newest feedback entry if one was recorded
// since seq.
func (m *Model) statusFromFeedback(seq uint64) bool {
	if m.feedback.Count() == seq {
		return false
	}
	last, ok := m.feedback.Last()
	if !ok {
		return false
	}
	text := last.Title
	if last.Message != "" {
		text += " " + last.Message
	}
	m.Status = StatusBar{Text: text, IsError: last.Severity == notify.SeverityError}
	return true
}

func (m *Model) armReminders(t model.Task) {
	if m.reminders == nil || m.engine == nil {
		return
	}
	m.reminders.ArmTask(m.engine, t, m.now())
}

func (m Model) formatDue(t model.Task) string {
	if !t.HasDueDate() {
		return ""
	}
	return t.DueDate.In(m.loc).Format("2006-01-02 15:04")
}

func formatClock(at time.Time) string {
	return at.Local().Format("15:04:05")
}

func defaultCategory(cats []model.Category) model.Category {
	if len(cats) == 0 {
		return model.CategoryPersonal
	}
	return cats[0]
}

func normalizeField(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
