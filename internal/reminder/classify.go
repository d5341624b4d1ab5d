package reminder

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/tasklist/internal/model"
)

type Kind string

const (
	KindNone     Kind = "none"
	KindOverdue  Kind = "overdue"
	KindDueSoon  Kind = "due_soon"
	KindDueLater Kind = "due_later"
)

type Windows struct {
	DueSoon         time.Duration
	DueLater        time.Duration
	OverdueCooldown time.Duration
}

func DefaultWindows() Windows {
	return Windows{
		DueSoon:         15 * time.Minute,
		DueLater:        time.Hour,
		OverdueCooldown: 30 * time.Minute,
	}
}

// Classify places an incomplete, dated task into its reminder window.
// A task due exactly at now is in no window until the next evaluation.
func Classify(t model.Task, now time.Time, w Windows) Kind {
	if t.Completed || !t.HasDueDate() {
		return KindNone
	}
	remaining := t.DueDate.Sub(now)
	switch {
	case remaining < 0:
		return KindOverdue
	case remaining > 0 && remaining <= w.DueSoon:
		return KindDueSoon
	case remaining > w.DueSoon && remaining <= w.DueLater:
		return KindDueLater
	default:
		return KindNone
	}
}

type Event struct {
	TaskID string
	Kind   Kind
	Title  string
	Body   string
	Urgent bool
	Icon   string
	At     time.Time
}

// NewEvent renders the reminder for t. Elapsed time rounds down and
// remaining time rounds up, each in whole hours when at least one hour and
// whole minutes otherwise.
func NewEvent(t model.Task, kind Kind, now time.Time) Event {
	ev := Event{TaskID: t.ID, Kind: kind, At: now}
	var delta time.Duration
	if t.HasDueDate() {
		delta = t.DueDate.Sub(now)
	}
	switch kind {
	case KindOverdue:
		ev.Title = "OVERDUE: " + t.Title
		ev.Body = fmt.Sprintf("This task is %s overdue. Please complete it now!", wholeUnits(-delta, false))
		ev.Urgent = true
		ev.Icon = "🚨"
	case KindDueSoon:
		ev.Title = "Task Due Soon: " + t.Title
		ev.Body = fmt.Sprintf("Due in %s. Get ready to complete it!", wholeUnits(delta, true))
		ev.Icon = "⏰"
	case KindDueLater:
		ev.Title = "Upcoming Task: " + t.Title
		ev.Body = fmt.Sprintf("Due in %s. Start preparing!", wholeUnits(delta, true))
		ev.Icon = "📋"
	}
	return ev
}

func wholeUnits(d time.Duration, roundUp bool) string {
	if d < 0 {
		d = 0
	}
	if d >= time.Hour {
		h := int(d / time.Hour)
		if roundUp && d%time.Hour != 0 {
			h++
		}
		return countNoun(h, "hour")
	}
	m := int(d / time.Minute)
	if roundUp && d%time.Minute != 0 {
		m++
	}
	return countNoun(m, "minute")
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Boundaries lists the instants after now at which t moves into a new
// reminder window. Hosts use them to evaluate exactly on the edge rather
// than on the next periodic tick.
func Boundaries(t model.Task, now time.Time, w Windows) []time.Time {
	if t.Completed || !t.HasDueDate() {
		return nil
	}
	due := *t.DueDate
	candidates := []time.Time{
		due.Add(-w.DueLater),
		due.Add(-w.DueSoon),
		due.Add(time.Millisecond),
	}
	out := candidates[:0]
	for _, at := range candidates {
		if at.After(now) {
			out = append(out, at)
		}
	}
	return out
}
