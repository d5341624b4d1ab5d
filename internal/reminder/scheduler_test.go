package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	mu    sync.Mutex
	tasks []model.Task
}

func (s *staticSource) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *staticSource) set(tasks ...model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
}

type recordingDeliverer struct {
	ok     bool
	titles []string
}

func (d *recordingDeliverer) Deliver(title, _ string, _ bool) bool {
	d.titles = append(d.titles, title)
	return d.ok
}

var base = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func dueTask(id string, due time.Time) model.Task {
	return model.Task{
		ID:        id,
		Title:     "Task " + id,
		DueDate:   &due,
		Category:  model.CategoryWork,
		Priority:  model.PriorityMedium,
		CreatedAt: base.Add(-24 * time.Hour),
	}
}

func kinds(events []Event) []Kind {
	out := make([]Kind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestClassifyWindows(t *testing.T) {
	w := DefaultWindows()
	cases := []struct {
		offset time.Duration
		want   Kind
	}{
		{-time.Hour, KindOverdue},
		{-time.Second, KindOverdue},
		{0, KindNone},
		{time.Second, KindDueSoon},
		{15 * time.Minute, KindDueSoon},
		{15*time.Minute + time.Second, KindDueLater},
		{60 * time.Minute, KindDueLater},
		{61 * time.Minute, KindNone},
	}
	for _, tc := range cases {
		got := Classify(dueTask("a", base.Add(tc.offset)), base, w)
		assert.Equal(t, tc.want, got, "offset %s", tc.offset)
	}

	done := dueTask("a", base.Add(-time.Hour))
	done.Completed = true
	assert.Equal(t, KindNone, Classify(done, base, w))
	assert.Equal(t, KindNone, Classify(model.Task{ID: "b"}, base, w))
}

func TestNewEventText(t *testing.T) {
	overdue := NewEvent(dueTask("a", base.Add(-90*time.Minute)), KindOverdue, base)
	assert.Equal(t, "OVERDUE: Task a", overdue.Title)
	assert.Equal(t, "This task is 1 hour overdue. Please complete it now!", overdue.Body)
	assert.True(t, overdue.Urgent)

	recent := NewEvent(dueTask("a", base.Add(-150*time.Second)), KindOverdue, base)
	assert.Equal(t, "This task is 2 minutes overdue. Please complete it now!", recent.Body)

	soon := NewEvent(dueTask("b", base.Add(9*time.Minute+10*time.Second)), KindDueSoon, base)
	assert.Equal(t, "Task Due Soon: Task b", soon.Title)
	assert.Equal(t, "Due in 10 minutes. Get ready to complete it!", soon.Body)
	assert.False(t, soon.Urgent)

	later := NewEvent(dueTask("c", base.Add(time.Hour)), KindDueLater, base)
	assert.Equal(t, "Due in 1 hour. Start preparing!", later.Body)
	assert.NotEmpty(t, later.Icon)
}

func TestOverdueReArmsAfterCooldown(t *testing.T) {
	src := &staticSource{}
	src.set(dueTask("late", base.Add(-time.Hour)))
	s := NewScheduler(src, Config{})

	assert.Equal(t, []Kind{KindOverdue}, kinds(s.Tick(base)))
	assert.Empty(t, s.Tick(base.Add(29*time.Minute)))
	assert.Equal(t, []Kind{KindOverdue}, kinds(s.Tick(base.Add(31*time.Minute))))
	assert.Empty(t, s.Tick(base.Add(32*time.Minute)))
}

func TestDueSoonFiresOnceAndNeverDueLater(t *testing.T) {
	src := &staticSource{}
	src.set(dueTask("soon", base.Add(10*time.Minute)))
	s := NewScheduler(src, Config{})

	var all []Event
	for i := 0; i < 20; i++ {
		all = append(all, s.Tick(base.Add(time.Duration(i)*30*time.Second))...)
	}
	assert.Equal(t, []Kind{KindDueSoon}, kinds(all))
}

func TestDueLaterThenDueSoonThenOverdue(t *testing.T) {
	src := &staticSource{}
	src.set(dueTask("x", base.Add(40*time.Minute)))
	s := NewScheduler(src, Config{})

	assert.Equal(t, []Kind{KindDueLater}, kinds(s.Tick(base)))
	assert.Empty(t, s.Tick(base.Add(10*time.Minute)))
	assert.Equal(t, []Kind{KindDueSoon}, kinds(s.Tick(base.Add(30*time.Minute))))
	assert.Equal(t, []Kind{KindOverdue}, kinds(s.Tick(base.Add(41*time.Minute))))
}

func TestCompletedTaskEmitsNothingAfterForget(t *testing.T) {
	src := &staticSource{}
	task := dueTask("done", base.Add(-time.Hour))
	src.set(task)
	s := NewScheduler(src, Config{})
	require.Len(t, s.Tick(base), 1)
	require.True(t, s.Tracked("done", KindOverdue))

	task.Completed = true
	src.set(task)
	s.Forget("done")
	assert.False(t, s.Tracked("done", KindOverdue))
	assert.Empty(t, s.Tick(base.Add(time.Hour)))
}

func TestForgetAllowsRescheduledTaskToFireAgain(t *testing.T) {
	src := &staticSource{}
	src.set(dueTask("moved", base.Add(10*time.Minute)))
	s := NewScheduler(src, Config{})
	require.Len(t, s.Tick(base), 1)

	src.set(dueTask("moved", base.Add(12*time.Minute)))
	assert.Empty(t, s.Tick(base.Add(time.Minute)), "still tracked without forget")

	s.Forget("moved")
	assert.Equal(t, []Kind{KindDueSoon}, kinds(s.Tick(base.Add(2*time.Minute))))
}

func TestDeletedTasksArePruned(t *testing.T) {
	src := &staticSource{}
	src.set(dueTask("gone", base.Add(-time.Minute)))
	s := NewScheduler(src, Config{})
	require.Len(t, s.Tick(base), 1)

	src.set()
	s.Tick(base.Add(time.Minute))
	assert.False(t, s.Tracked("gone", KindOverdue))
}

func TestTickFallsBackWhenDeliveryFails(t *testing.T) {
	src := &staticSource{}
	src.set(dueTask("a", base.Add(-time.Hour)), dueTask("b", base.Add(5*time.Minute)))

	fallback := notify.NewLog(10)
	failing := &recordingDeliverer{ok: false}
	s := NewScheduler(src, Config{Deliverer: failing, Fallback: fallback})
	s.Tick(base)

	entries := fallback.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, notify.SeverityError, entries[0].Severity)
	assert.Equal(t, notify.SeverityWarning, entries[1].Severity)
	assert.Len(t, failing.titles, 2)

	src.set(dueTask("c", base.Add(-time.Hour)))
	delivered := notify.NewLog(10)
	ok := &recordingDeliverer{ok: true}
	s2 := NewScheduler(src, Config{Deliverer: ok, Fallback: delivered})
	s2.Tick(base)
	assert.Empty(t, delivered.Entries())
	assert.Equal(t, []string{"OVERDUE: Task c"}, ok.titles)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	src := &staticSource{}
	src.set(dueTask("a", base.Add(-time.Hour)))
	fallback := notify.NewLog(10)
	s := NewScheduler(src, Config{Fallback: fallback})

	ticks := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, ticks)
		close(done)
	}()

	ticks <- base
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Len(t, fallback.Entries(), 1)
}

func TestBoundaries(t *testing.T) {
	w := DefaultWindows()
	task := dueTask("a", base.Add(30*time.Minute))

	got := Boundaries(task, base, w)
	require.Len(t, got, 2)
	assert.Equal(t, base.Add(15*time.Minute), got[0])
	assert.Equal(t, base.Add(30*time.Minute+time.Millisecond), got[1])
	for _, at := range got {
		assert.NotEqual(t, Classify(task, at.Add(-time.Millisecond), w), Classify(task, at.Add(time.Millisecond), w))
	}

	assert.Len(t, Boundaries(dueTask("b", base.Add(2*time.Hour)), base, w), 3)
	assert.Empty(t, Boundaries(dueTask("c", base.Add(-time.Hour)), base, w))

	task.Completed = true
	assert.Empty(t, Boundaries(task, base, w))
}

type wakeRecorder struct {
	at []time.Time
}

func (w *wakeRecorder) WakeAt(at time.Time) error {
	w.at = append(w.at, at)
	return nil
}

func TestArmRequestsBoundaryWakes(t *testing.T) {
	src := &staticSource{}
	done := dueTask("done", base.Add(20*time.Minute))
	done.Completed = true
	src.set(dueTask("a", base.Add(30*time.Minute)), done, model.Task{ID: "undated"})
	s := NewScheduler(src, Config{})

	w := &wakeRecorder{}
	s.Arm(w, base)
	assert.Equal(t, []time.Time{base.Add(15 * time.Minute), base.Add(30*time.Minute + time.Millisecond)}, w.at)

	s.ArmTask(nil, dueTask("b", base.Add(time.Hour)), base)
}
