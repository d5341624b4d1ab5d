package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/notify"
)

// TaskSource is the read-only view of the task collection.
type TaskSource interface {
	Tasks() []model.Task
}

type Config struct {
	Windows   Windows
	Deliverer notify.Deliverer
	Fallback  notify.Feedback
	Logger    *slog.Logger
}

// Scheduler evaluates tasks on each tick and emits at most one reminder
// per (task, kind) until that pair is re-armed or forgotten. It never
// mutates tasks.
type Scheduler struct {
	mu       sync.Mutex
	source   TaskSource
	windows  Windows
	tracker  *Tracker
	deliver  notify.Deliverer
	fallback notify.Feedback
	logger   *slog.Logger
}

func NewScheduler(source TaskSource, cfg Config) *Scheduler {
	w := cfg.Windows
	def := DefaultWindows()
	if w.DueSoon <= 0 {
		w.DueSoon = def.DueSoon
	}
	if w.DueLater <= w.DueSoon {
		w.DueLater = max(def.DueLater, w.DueSoon)
	}
	if w.OverdueCooldown <= 0 {
		w.OverdueCooldown = def.OverdueCooldown
	}
	s := &Scheduler{
		source:   source,
		windows:  w,
		tracker:  NewTracker(w.OverdueCooldown),
		deliver:  cfg.Deliverer,
		fallback: cfg.Fallback,
		logger:   cfg.Logger,
	}
	if s.deliver == nil {
		s.deliver = notify.Disabled{}
	}
	if s.fallback == nil {
		s.fallback = notify.Discard{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

func (s *Scheduler) Windows() Windows {
	return s.windows
}

// Evaluate returns the reminders due at now and records them as fired,
// without delivering anything.
func (s *Scheduler) Evaluate(now time.Time) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := s.source.Tasks()

	live := make(map[string]bool, len(tasks))
	var out []Event
	for _, t := range tasks {
		live[t.ID] = true
		kind := Classify(t, now, s.windows)
		if kind == KindNone || !s.tracker.Armed(t.ID, kind, now) {
			continue
		}
		s.tracker.Record(t.ID, kind, now)
		out = append(out, NewEvent(t, kind, now))
	}
	s.tracker.Prune(live)
	return out
}

// Tick evaluates and delivers. Reminders the deliverer cannot show are
// surfaced through the fallback feedback instead.
func (s *Scheduler) Tick(now time.Time) []Event {
	events := s.Evaluate(now)
	for _, ev := range events {
		if s.deliver.Deliver(ev.Title, ev.Body, ev.Urgent) {
			s.logger.Debug("reminder delivered", "task", ev.TaskID, "kind", ev.Kind)
			continue
		}
		severity := notify.SeverityWarning
		if ev.Urgent {
			severity = notify.SeverityError
		}
		s.logger.Debug("reminder fallback", "task", ev.TaskID, "kind", ev.Kind)
		s.fallback.Notify(ev.Title, ev.Body, severity)
	}
	return events
}

// Forget discards all tracked state for taskID immediately.
func (s *Scheduler) Forget(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Forget(taskID)
}

func (s *Scheduler) Tracked(taskID string, kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Tracked(taskID, kind)
}

// Run calls Tick for every value received on ticks until ctx is done or
// ticks is closed.
func (s *Scheduler) Run(ctx context.Context, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case at, ok := <-ticks:
			if !ok {
				return
			}
			s.Tick(at)
		}
	}
}

// Waker accepts extra evaluation instants. *scheduler.Engine satisfies it.
type Waker interface {
	WakeAt(at time.Time) error
}

// ArmTask requests a wake at each of t's upcoming window boundaries.
func (s *Scheduler) ArmTask(w Waker, t model.Task, now time.Time) {
	if w == nil {
		return
	}
	for _, at := range Boundaries(t, now, s.windows) {
		if err := w.WakeAt(at); err != nil {
			s.logger.Debug("reminder wake rejected", "task", t.ID, "at", at, "err", err)
			return
		}
	}
}

// Arm calls ArmTask for every task in the source.
func (s *Scheduler) Arm(w Waker, now time.Time) {
	for _, t := range s.source.Tasks() {
		s.ArmTask(w, t, now)
	}
}
