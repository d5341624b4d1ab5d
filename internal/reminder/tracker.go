package reminder

import "time"

type trackKey struct {
	TaskID string
	Kind   Kind
}

type trackEntry struct {
	FiredAt time.Time
	// RearmAt is when the key may fire again. Zero means never.
	RearmAt time.Time
}

// Tracker remembers which (task, kind) pairs have already fired.
// It is not safe for concurrent use; Scheduler guards it.
type Tracker struct {
	entries  map[trackKey]trackEntry
	cooldown time.Duration
}

func NewTracker(overdueCooldown time.Duration) *Tracker {
	return &Tracker{
		entries:  make(map[trackKey]trackEntry),
		cooldown: overdueCooldown,
	}
}

// Armed reports whether a reminder of kind may fire for taskID at now.
func (t *Tracker) Armed(taskID string, kind Kind, now time.Time) bool {
	e, ok := t.entries[trackKey{taskID, kind}]
	if !ok {
		return true
	}
	return !e.RearmAt.IsZero() && !now.Before(e.RearmAt)
}

// Record marks the pair as fired. Only overdue reminders re-arm; a task
// cannot re-enter a due-soon or due-later window without a due date edit,
// which goes through Forget.
func (t *Tracker) Record(taskID string, kind Kind, now time.Time) {
	e := trackEntry{FiredAt: now}
	if kind == KindOverdue && t.cooldown > 0 {
		e.RearmAt = now.Add(t.cooldown)
	}
	t.entries[trackKey{taskID, kind}] = e
}

func (t *Tracker) Forget(taskID string) {
	for k := range t.entries {
		if k.TaskID == taskID {
			delete(t.entries, k)
		}
	}
}

// Prune drops entries whose task is not in live.
func (t *Tracker) Prune(live map[string]bool) {
	for k := range t.entries {
		if !live[k.TaskID] {
			delete(t.entries, k)
		}
	}
}

func (t *Tracker) Len() int {
	return len(t.entries)
}

func (t *Tracker) Tracked(taskID string, kind Kind) bool {
	_, ok := t.entries[trackKey{taskID, kind}]
	return ok
}
