package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/notify"
)

var ErrNotFound = errors.New("store: task not found")

// Repository is the persistence collaborator. LoadAll is called once when
// the Store is built; SaveAll after every successful mutation.
type Repository interface {
	LoadAll(ctx context.Context) ([]model.Task, error)
	SaveAll(ctx context.Context, tasks []model.Task) error
}

// Forgetter is told when a task's reminder state must be discarded:
// on completion, on deletion and when its due date changes.
type Forgetter interface {
	Forget(taskID string)
}

// Store owns the canonical ordered task collection. Every operation holds
// the store lock for its whole duration, so a reminder tick reading Tasks
// never observes a half-applied mutation.
type Store struct {
	mu    sync.Mutex
	tasks []model.Task

	repo       Repository
	feedback   notify.Feedback
	forgetters []Forgetter
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
	categories []model.Category
	loc        *time.Location
}

type Option func(*Store)

func WithFeedback(f notify.Feedback) Option {
	return func(s *Store) {
		if f != nil {
			s.feedback = f
		}
	}
}

func WithForgetter(f Forgetter) Option {
	return func(s *Store) {
		if f != nil {
			s.forgetters = append(s.forgetters, f)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func WithCategories(categories []model.Category) Option {
	return func(s *Store) {
		if len(categories) > 0 {
			s.categories = slices.Clone(categories)
		}
	}
}

// WithLocation sets the zone used to read due dates typed without an
// offset.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New builds a Store and loads the persisted collection. A nil repo keeps
// tasks in memory only.
func New(ctx context.Context, repo Repository, opts ...Option) (*Store, error) {
	s := &Store{
		repo:       repo,
		feedback:   notify.Discard{},
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
		newID:      uuid.NewString,
		categories: slices.Clone(model.DefaultCategories),
		loc:        time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if repo == nil {
		return s, nil
	}
	loaded, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	seen := make(map[string]bool, len(loaded))
	for _, t := range loaded {
		if seen[t.ID] {
			s.logger.Warn("dropping duplicate task id on load", "id", t.ID)
			continue
		}
		if err := t.Validate(); err != nil {
			s.logger.Warn("loaded task failed validation", "id", t.ID, "err", err)
		}
		seen[t.ID] = true
		s.tasks = append(s.tasks, t.Clone())
	}
	return s, nil
}

// Observe registers a Forgetter after construction. The reminder scheduler
// reads from the store, so it is usually built second and attached here.
func (s *Store) Observe(f Forgetter) {
	if f == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forgetters = append(s.forgetters, f)
}

func (s *Store) Categories() []model.Category {
	return slices.Clone(s.categories)
}

func (s *Store) Add(ctx context.Context, in model.TaskInput) (model.Task, []model.Warning, error) {
	s.mu.Lock()
	task, warnings, err := s.rulesLocked().NewTask(in)
	if err != nil {
		s.mu.Unlock()
		s.apply(effects{rejected: err})
		return model.Task{}, nil, err
	}
	if s.hasDuplicateLocked("", task.Title, task.Category) {
		warnings = append(warnings, duplicateWarning())
	}
	task.ID = s.nextIDLocked()
	task.CreatedAt = s.now()
	task.Completed = false
	s.tasks = append(s.tasks, task)
	saveErr := s.saveLocked(ctx)
	s.mu.Unlock()

	fx := effects{saveErr: saveErr}
	fx.warn(warnings)
	fx.note("Task added!", fmt.Sprintf("Task %q has been successfully created.", task.Title), notify.SeveritySuccess)
	s.apply(fx)
	return task.Clone(), warnings, nil
}

func (s *Store) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, []model.Warning, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		err := fmt.Errorf("%w: %s", ErrNotFound, id)
		s.apply(effects{rejected: err})
		return model.Task{}, nil, err
	}
	current := s.tasks[idx]
	if patch.IsEmpty() {
		s.mu.Unlock()
		return current.Clone(), nil, nil
	}
	updated, warnings, err := s.rulesLocked().ApplyPatch(current, patch)
	if err != nil {
		s.mu.Unlock()
		s.apply(effects{rejected: err})
		return model.Task{}, nil, err
	}
	if (patch.Title != nil || patch.Category != nil) && s.hasDuplicateLocked(id, updated.Title, updated.Category) {
		warnings = append(warnings, duplicateWarning())
	}
	s.tasks[idx] = updated
	saveErr := s.saveLocked(ctx)
	s.mu.Unlock()

	fx := effects{saveErr: saveErr}
	if !sameDueDate(current.DueDate, updated.DueDate) {
		fx.forget = append(fx.forget, id)
	}
	fx.warn(warnings)
	fx.note("Task updated!", "Your task has been successfully updated.", notify.SeveritySuccess)
	s.apply(fx)
	return updated.Clone(), warnings, nil
}

func (s *Store) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		err := fmt.Errorf("%w: %s", ErrNotFound, id)
		s.apply(effects{rejected: err})
		return model.Task{}, err
	}
	s.tasks[idx].Completed = !s.tasks[idx].Completed
	task := s.tasks[idx].Clone()
	saveErr := s.saveLocked(ctx)
	s.mu.Unlock()

	fx := effects{saveErr: saveErr}
	if task.Completed {
		fx.forget = append(fx.forget, id)
		fx.note("Task Completed!", fmt.Sprintf("%q has been marked as complete.", task.Title), notify.SeveritySuccess)
	} else {
		fx.note("Task Reopened!", fmt.Sprintf("%q has been marked as incomplete.", task.Title), notify.SeverityInfo)
	}
	s.apply(fx)
	return task, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		err := fmt.Errorf("%w: %s", ErrNotFound, id)
		s.apply(effects{rejected: err})
		return err
	}
	removed := s.tasks[idx]
	s.tasks = slices.Delete(s.tasks, idx, idx+1)
	saveErr := s.saveLocked(ctx)
	s.mu.Unlock()

	fx := effects{saveErr: saveErr, forget: []string{id}}
	fx.note("Task deleted!", fmt.Sprintf("%q has been removed.", removed.Title), notify.SeveritySuccess)
	s.apply(fx)
	return nil
}

// ClearCompleted removes every completed task and returns how many were
// removed. Nothing is written when there is nothing to clear.
func (s *Store) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	var removed []string
	for _, t := range s.tasks {
		if t.Completed {
			removed = append(removed, t.ID)
		}
	}
	if len(removed) == 0 {
		s.mu.Unlock()
		s.apply(effects{notes: []note{{"No completed tasks", "There are no completed tasks to clear.", notify.SeverityInfo}}})
		return 0, nil
	}
	s.tasks = slices.DeleteFunc(s.tasks, func(t model.Task) bool { return t.Completed })
	saveErr := s.saveLocked(ctx)
	s.mu.Unlock()

	fx := effects{saveErr: saveErr, forget: removed}
	fx.note("Tasks cleared!", fmt.Sprintf("Removed %d completed %s.", len(removed), plural(len(removed), "task", "tasks")), notify.SeveritySuccess)
	s.apply(fx)
	return len(removed), nil
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.tasks[idx].Clone(), nil
}

// Tasks returns a snapshot of the collection in canonical order.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

type Progress struct {
	Completed int
	Total     int
}

func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

func (s *Store) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Progress{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			p.Completed++
		}
	}
	return p
}

func (s *Store) rulesLocked() model.Rules {
	return model.Rules{Now: s.now(), Location: s.loc, Categories: s.categories}
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

func (s *Store) nextIDLocked() string {
	for {
		id := s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
}

func (s *Store) hasDuplicateLocked(excludeID, title string, category model.Category) bool {
	for _, t := range s.tasks {
		if t.ID == excludeID || t.Completed {
			continue
		}
		if t.Category == category && strings.EqualFold(t.Title, title) {
			return true
		}
	}
	return false
}

func (s *Store) snapshotLocked() []model.Task {
	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) saveLocked(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.SaveAll(ctx, s.snapshotLocked())
}

func sameDueDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func duplicateWarning() model.Warning {
	return model.Warning{
		Code:    model.WarnDuplicate,
		Message: "A task with the same title and category already exists.",
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
