package update

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/notify"
	"github.com/sandeepkv93/tasklist/internal/reminder"
	"github.com/sandeepkv93/tasklist/internal/scheduler"
	"github.com/sandeepkv93/tasklist/internal/store"
)

var base = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

type harness struct {
	store    *store.Store
	feedback *notify.Log
	sched    *reminder.Scheduler
}

func newHarness(t *testing.T) (Model, harness) {
	t.Helper()
	clock := func() time.Time { return base }
	log := notify.NewLog(50)
	n := 0
	s, err := store.New(context.Background(), nil,
		store.WithClock(clock),
		store.WithFeedback(log),
		store.WithLocation(time.UTC),
		store.WithIDGenerator(func() string { n++; return fmt.Sprintf("t%d", n) }),
	)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	sched := reminder.NewScheduler(s, reminder.Config{Fallback: log})
	s.Observe(sched)
	m := NewModel(context.Background(), Deps{
		Store:     s,
		Reminders: sched,
		Feedback:  log,
		Location:  time.UTC,
		Now:       clock,
	})
	return m, harness{store: s, feedback: log, sched: sched}
}

func press(m Model, msg tea.Msg) Model {
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func command(m Model, line string) Model {
	m = press(m, runes("/"))
	m = press(m, runes(line))
	return press(m, tea.KeyMsg{Type: tea.KeyEnter})
}

func titles(s *store.Store) []string {
	var out []string
	for _, t := range s.Tasks() {
		out = append(out, t.Title)
	}
	return out
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := newHarness(t)
	if m.SortKey != model.SortByCreatedAt {
		t.Fatalf("expected default sort %q, got %q", model.SortByCreatedAt, m.SortKey)
	}
	if m.Keys.Quit != "q" || m.Keys.Palette != "/" {
		t.Fatalf("unexpected key map: %+v", m.Keys)
	}
	if m.Init() != nil {
		t.Fatal("expected no init command without an engine")
	}
}

func TestPaletteAddSelectsNewTask(t *testing.T) {
	m, h := newHarness(t)
	m = command(m, "add Buy milk")
	m = command(m, "add Write report cat:work pri:high")

	if m.Palette.Active {
		t.Fatal("palette should close after a command")
	}
	if got := titles(h.store); len(got) != 2 || got[1] != "Write report" {
		t.Fatalf("unexpected tasks: %v", got)
	}
	if m.Cursor != 1 {
		t.Fatalf("expected cursor on new task, got %d", m.Cursor)
	}
	if !strings.HasPrefix(m.Status.Text, "Task added!") || m.Status.IsError {
		t.Fatalf("unexpected status: %+v", m.Status)
	}

	first := h.store.Tasks()[0]
	if first.Category != model.CategoryPersonal || first.Priority != model.PriorityMedium {
		t.Fatalf("expected host defaults, got %s/%s", first.Category, first.Priority)
	}
}

func TestPaletteAddRejectedShowsError(t *testing.T) {
	m, h := newHarness(t)
	m = command(m, "add Late one due:2026-02-09T11:00")

	if h.store.Len() != 0 {
		t.Fatalf("past date should be rejected without force")
	}
	if !m.Status.IsError || m.LastError == nil {
		t.Fatalf("expected error status, got %+v", m.Status)
	}

	m = command(m, "add Late one due:2026-02-09T11:00 force")
	if h.store.Len() != 1 || m.Status.IsError {
		t.Fatalf("forced add should succeed, status %+v", m.Status)
	}
}

func TestPaletteParseErrorAndEscape(t *testing.T) {
	m, _ := newHarness(t)
	m = command(m, "frobnicate")
	if !m.Status.IsError {
		t.Fatalf("expected parse error, got %+v", m.Status)
	}

	m = press(m, runes("/"))
	if !m.Palette.Active {
		t.Fatal("expected palette to open")
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Palette.Active || m.Status.Text != "command palette closed" {
		t.Fatalf("expected palette closed, got %+v", m.Status)
	}
}

func TestEditSelectedTask(t *testing.T) {
	m, h := newHarness(t)
	m = command(m, "add Draft due:2026-02-09T12:10")
	h.sched.Evaluate(base)
	if !h.sched.Tracked("t1", reminder.KindDueSoon) {
		t.Fatal("expected due-soon reminder to be tracked")
	}

	m = command(m, "edit . due:2026-02-09T12:20 pri:low")
	task, err := h.store.Get("t1")
	if err != nil {
		t.Fatal(err)
	}
	if task.Priority != model.PriorityLow || task.DueDate.Minute() != 20 {
		t.Fatalf("unexpected task after edit: %+v", task)
	}
	if h.sched.Tracked("t1", reminder.KindDueSoon) {
		t.Fatal("due date edit should reset reminder tracking")
	}
	if m.Status.Text != "Task updated! Your task has been successfully updated." {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}
}

func TestToggleAndClearKeys(t *testing.T) {
	m, h := newHarness(t)
	m = command(m, "add One")
	m = command(m, "add Two")
	m = press(m, runes("k"))
	if m.Cursor != 0 {
		t.Fatalf("expected cursor 0, got %d", m.Cursor)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if p := h.store.Progress(); p.Completed != 1 {
		t.Fatalf("expected one completed task, got %+v", p)
	}
	if !strings.HasPrefix(m.Status.Text, "Task Completed!") {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}

	m = press(m, runes("c"))
	if got := titles(h.store); len(got) != 1 || got[0] != "Two" {
		t.Fatalf("unexpected tasks after clear: %v", got)
	}
	if m.Cursor != 0 {
		t.Fatalf("cursor should be clamped, got %d", m.Cursor)
	}

	m = press(m, runes("c"))
	if !strings.HasPrefix(m.Status.Text, "No completed tasks") {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, h := newHarness(t)
	m = command(m, "add Keep me")

	m = press(m, runes("d"))
	if !m.ConfirmDelete {
		t.Fatal("expected delete confirmation")
	}
	m = press(m, runes("n"))
	if h.store.Len() != 1 || m.Status.Text != "delete cancelled" {
		t.Fatalf("delete should be cancelled, status %q", m.Status.Text)
	}

	m = press(m, runes("d"))
	m = press(m, runes("y"))
	if h.store.Len() != 0 || m.ConfirmDelete {
		t.Fatalf("expected task deleted, got %d", h.store.Len())
	}

	m = press(m, runes("d"))
	if m.ConfirmDelete {
		t.Fatal("nothing to delete on an empty list")
	}
}

func TestSortCommandAndKey(t *testing.T) {
	m, h := newHarness(t)
	m = command(m, "add Low pri:low")
	m = command(m, "add High pri:high")

	m = command(m, "sort priority")
	if m.SortKey != model.SortByPriority {
		t.Fatalf("expected priority sort, got %q", m.SortKey)
	}
	if got := titles(h.store); got[0] != "High" {
		t.Fatalf("expected high first, got %v", got)
	}
	if m.Status.Text != "Tasks sorted! Tasks are now sorted by priority level." {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}

	m = press(m, runes("s"))
	if m.SortKey != model.SortByCategory {
		t.Fatalf("expected sort to cycle to category, got %q", m.SortKey)
	}

	m = command(m, "sort sideways")
	if !m.Status.IsError || m.SortKey != model.SortByCategory {
		t.Fatalf("unknown key should be rejected, got %+v", m.Status)
	}
}

func TestSearchFiltersAndEscClears(t *testing.T) {
	m, _ := newHarness(t)
	m = command(m, "add Buy milk")
	m = command(m, "add Call plumber")

	m = command(m, "search MILK")
	if m.Query != "MILK" || len(m.visibleTasks()) != 1 {
		t.Fatalf("expected one match, got %d", len(m.visibleTasks()))
	}
	if m.Status.Text != `1 task matching "MILK"` {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}
	if view := m.View(); !strings.Contains(view, `search: "MILK" (1 of 2)`) {
		t.Fatalf("view should show the search summary:\n%s", view)
	}

	m = press(m, runes("J"))
	if !m.Status.IsError {
		t.Fatal("reordering during a search should be refused")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Query != "" || len(m.visibleTasks()) != 2 {
		t.Fatalf("expected search cleared, query %q", m.Query)
	}
}

func TestMoveKeysReorder(t *testing.T) {
	m, h := newHarness(t)
	m = command(m, "add A")
	m = command(m, "add B")
	m = command(m, "add C")

	m = press(m, runes("K"))
	if got := strings.Join(titles(h.store), ""); got != "ACB" {
		t.Fatalf("expected ACB, got %s", got)
	}
	if m.Cursor != 1 {
		t.Fatalf("cursor should follow the moved task, got %d", m.Cursor)
	}

	m = command(m, "move top")
	if got := strings.Join(titles(h.store), ""); got != "CAB" {
		t.Fatalf("expected CAB, got %s", got)
	}
	if m.Cursor != 0 {
		t.Fatalf("expected cursor 0, got %d", m.Cursor)
	}

	m = command(m, "move #3 up")
	if got := strings.Join(titles(h.store), ""); got != "CBA" {
		t.Fatalf("expected CBA, got %s", got)
	}
}

func TestTickRecordsReminders(t *testing.T) {
	m, h := newHarness(t)
	m = command(m, "add Standup due:2026-02-09T12:10")
	m = command(m, "add Retro due:2026-02-09T12:40")

	m = press(m, TickMsg{At: base})
	if len(m.ReminderLog) != 2 {
		t.Fatalf("expected two reminders, got %d", len(m.ReminderLog))
	}
	if m.ReminderLog[0].Kind != reminder.KindDueSoon || m.ReminderLog[1].Kind != reminder.KindDueLater {
		t.Fatalf("unexpected kinds: %s, %s", m.ReminderLog[0].Kind, m.ReminderLog[1].Kind)
	}
	if !strings.Contains(m.Status.Text, "Upcoming Task: Retro") {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}
	last, _ := h.feedback.Last()
	if last.Title != "Upcoming Task: Retro" || last.Severity != notify.SeverityWarning {
		t.Fatalf("expected in-app fallback, got %+v", last)
	}

	m = press(m, TickMsg{At: base.Add(time.Minute)})
	if len(m.ReminderLog) != 2 {
		t.Fatalf("reminders should not repeat, got %d", len(m.ReminderLog))
	}

	m = press(m, TickMsg{At: base.Add(11 * time.Minute)})
	if got := m.ReminderLog[len(m.ReminderLog)-1]; got.Kind != reminder.KindOverdue || !m.Status.IsError {
		t.Fatalf("expected overdue reminder, got %s", got.Kind)
	}
}

func TestReminderLogIsCapped(t *testing.T) {
	m, h := newHarness(t)
	for i := range reminderLogLimit + 5 {
		due := base.Add(-time.Duration(i+1) * time.Minute)
		m = command(m, fmt.Sprintf("add Late %d due:%s force", i, due.Format("2006-01-02T15:04")))
	}
	if h.store.Len() != reminderLogLimit+5 {
		t.Fatalf("expected %d tasks, got %d", reminderLogLimit+5, h.store.Len())
	}
	m = press(m, TickMsg{At: base})
	if len(m.ReminderLog) != reminderLogLimit {
		t.Fatalf("expected log capped at %d, got %d", reminderLogLimit, len(m.ReminderLog))
	}
}

func TestInitWaitsForEngineTicks(t *testing.T) {
	s, err := store.New(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	engine := scheduler.NewEngine(time.Hour, 4)
	m := NewModel(context.Background(), Deps{Store: s, Engine: engine})
	engine.Start()

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("expected a tick command")
	}
	if _, ok := cmd().(TickMsg); !ok {
		t.Fatal("expected the start tick")
	}

	engine.Stop()
	if _, ok := m.Init()().(TicksClosedMsg); !ok {
		t.Fatal("expected closed message after stop")
	}
}

func TestStatusMessages(t *testing.T) {
	m, _ := newHarness(t)
	m = press(m, SetStatusMsg{Text: "ready"})
	if m.Status.Text != "ready" || m.Status.IsError {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	m = press(m, AppErrorMsg{Err: fmt.Errorf("boom")})
	if m.Status.Text != "boom" || !m.Status.IsError || m.LastError == nil {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	m = press(m, ClearStatusMsg{})
	if m.Status.Text != "" {
		t.Fatalf("expected cleared status, got %q", m.Status.Text)
	}
}

func TestViewShowsTasksAndProgress(t *testing.T) {
	m, _ := newHarness(t)
	if view := m.View(); !strings.Contains(view, "progress: no tasks") {
		t.Fatalf("expected empty progress:\n%s", view)
	}

	m = command(m, "add Pay rent due:2026-02-09T12:05")
	m = command(m, "add Water plants")
	m = press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	view := m.View()
	for _, want := range []string{"Pay rent", "Water plants", "1 of 2 completed (50%)", "SOON", "tasklist | 2 tasks"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	m = press(m, runes("?"))
	if !m.HelpVisible {
		t.Fatal("expected help visible")
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := newHarness(t)
	updated, cmd := m.Update(runes("q"))
	if !updated.(Model).Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
	if updated.(Model).View() != "" {
		t.Fatal("expected empty view after quit")
	}
}
