package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/notify"
)

var ErrOrderMismatch = errors.New("store: reorder input does not match task set")

// Reconciliation describes how a requested order differed from the
// authoritative id set.
type Reconciliation struct {
	// Missing ids were absent from the request and were appended at the end
	// in their prior relative order.
	Missing []string
	// Unknown ids matched no task and were ignored.
	Unknown []string
	// Duplicate ids appeared more than once; only the first was used.
	Duplicate []string
}

func (r Reconciliation) Mismatch() bool {
	return len(r.Missing) > 0 || len(r.Unknown) > 0 || len(r.Duplicate) > 0
}

// Err classifies a mismatch as ErrOrderMismatch. The reconciled order has
// already been applied when this is non-nil.
func (r Reconciliation) Err() error {
	if !r.Mismatch() {
		return nil
	}
	return fmt.Errorf("%w: missing=%d unknown=%d duplicate=%d", ErrOrderMismatch, len(r.Missing), len(r.Unknown), len(r.Duplicate))
}

// Reorder replaces the manual order with ids. Stale or partial input from a
// view is reconciled against the current task set rather than trusted.
func (s *Store) Reorder(ctx context.Context, ids []string) Reconciliation {
	s.mu.Lock()
	byID := make(map[string]model.Task, len(s.tasks))
	for _, t := range s.tasks {
		byID[t.ID] = t
	}

	var rec Reconciliation
	placed := make(map[string]bool, len(s.tasks))
	next := make([]model.Task, 0, len(s.tasks))
	for _, id := range ids {
		t, ok := byID[id]
		switch {
		case !ok:
			rec.Unknown = append(rec.Unknown, id)
		case placed[id]:
			rec.Duplicate = append(rec.Duplicate, id)
		default:
			placed[id] = true
			next = append(next, t)
		}
	}
	for _, t := range s.tasks {
		if !placed[t.ID] {
			rec.Missing = append(rec.Missing, t.ID)
			next = append(next, t)
		}
	}
	s.tasks = next
	saveErr := s.saveLocked(ctx)
	s.mu.Unlock()

	fx := effects{saveErr: saveErr}
	if rec.Mismatch() {
		s.logger.Warn("reorder reconciled", "missing", rec.Missing, "unknown", rec.Unknown, "duplicate", rec.Duplicate)
		fx.note("Order adjusted", "Some tasks were out of date in the view and have been kept in place.", notify.SeverityWarning)
	}
	s.apply(fx)
	return rec
}

// Move shifts the task with id by delta positions, clamped to the
// collection bounds. It is Reorder for hosts that move one item at a time.
func (s *Store) Move(ctx context.Context, id string, delta int) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	ids := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		ids[i] = t.ID
	}
	s.mu.Unlock()

	target := min(max(idx+delta, 0), len(ids)-1)
	if target == idx {
		return nil
	}
	ids = slices.Delete(ids, idx, idx+1)
	ids = slices.Insert(ids, target, id)
	return s.Reorder(ctx, ids).Err()
}

// SortBy reorders the collection by key. The result replaces the manual
// order. Equal keys keep their previous relative order.
func (s *Store) SortBy(ctx context.Context, key model.SortKey) error {
	compare, ok := comparators[key]
	if !ok {
		return fmt.Errorf("store: unknown sort key %q", key)
	}
	s.mu.Lock()
	slices.SortStableFunc(s.tasks, compare)
	saveErr := s.saveLocked(ctx)
	s.mu.Unlock()

	fx := effects{saveErr: saveErr}
	if key != model.SortByCreatedAt {
		fx.note("Tasks sorted!", fmt.Sprintf("Tasks are now sorted by %s.", key.Label()), notify.SeveritySuccess)
	}
	s.apply(fx)
	return nil
}

var comparators = map[model.SortKey]func(a, b model.Task) int{
	model.SortByDueDate: func(a, b model.Task) int {
		switch {
		case !a.HasDueDate() && !b.HasDueDate():
			return 0
		case !a.HasDueDate():
			return 1
		case !b.HasDueDate():
			return -1
		}
		return a.DueDate.Compare(*b.DueDate)
	},
	model.SortByPriority: func(a, b model.Task) int {
		return cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
	},
	model.SortByCategory: func(a, b model.Task) int {
		return strings.Compare(string(a.Category), string(b.Category))
	},
	model.SortByCreatedAt: func(a, b model.Task) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	},
}

// Query yields tasks whose title or category contains term, ignoring case,
// in canonical order. An empty term yields every task. The sequence reads
// from a snapshot taken when Query is called.
func (s *Store) Query(term string) iter.Seq[model.Task] {
	snapshot := s.Tasks()
	needle := strings.ToLower(term)
	return func(yield func(model.Task) bool) {
		for _, t := range snapshot {
			if needle != "" && !matches(t, needle) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

func matches(t model.Task, needle string) bool {
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(string(t.Category)), needle)
}
