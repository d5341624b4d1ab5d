package storage

import (
	"time"

	"github.com/sandeepkv93/tasklist/internal/model"
)

// taskRow is the persisted shape of a task. Position records list order.
type taskRow struct {
	ID        string
	Position  int
	Title     string
	DueAt     *time.Time
	Category  string
	Priority  string
	Completed bool
	CreatedAt time.Time
}

func rowFromTask(t model.Task, position int) taskRow {
	return taskRow{
		ID:        t.ID,
		Position:  position,
		Title:     t.Title,
		DueAt:     t.DueDate,
		Category:  string(t.Category),
		Priority:  string(t.Priority),
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
	}
}

func (r taskRow) task() model.Task {
	return model.Task{
		ID:        r.ID,
		Title:     r.Title,
		DueDate:   r.DueAt,
		Category:  model.Category(r.Category),
		Priority:  model.Priority(r.Priority),
		Completed: r.Completed,
		CreatedAt: r.CreatedAt,
	}
}
