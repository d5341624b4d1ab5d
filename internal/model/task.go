package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	MaxTitleLength = 100
	MinDueYear     = 2024
	MaxDueYear     = 2099

	// PastDateGrace is how far behind "now" a due date may be before it is
	// reported as a past date.
	PastDateGrace = time.Minute
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Rank orders priorities for sorting: high=3, medium=2, low=1, unknown=0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", newValidationError(CodeInvalidPriority, "priority", fmt.Sprintf("unknown priority %q", raw))
	}
	return p, nil
}

type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
	CategoryOther    Category = "other"
)

var DefaultCategories = []Category{
	CategoryPersonal,
	CategoryWork,
	CategoryShopping,
	CategoryHealth,
	CategoryOther,
}

type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Category  Category   `json:"category"`
	Priority  Priority   `json:"priority"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (t Task) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	return out
}

// Validate checks a task loaded from storage. Input validation for new or
// edited tasks lives in ValidateInput and ValidatePatch.
func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("model: task id is required")
	}
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	if !t.Priority.IsValid() {
		return newValidationError(CodeInvalidPriority, "priority", fmt.Sprintf("unknown priority %q", t.Priority))
	}
	if t.CreatedAt.IsZero() {
		return fmt.Errorf("model: task created_at is required")
	}
	return nil
}

// TaskInput carries the fields of the add form. DueDate is raw user text
// and is parsed during validation.
type TaskInput struct {
	Title    string
	DueDate  string
	Category Category
	Priority Priority

	// AllowPastDate accepts a due date in the past instead of failing with
	// ErrPastDate. The acceptance is reported as a warning.
	AllowPastDate bool
}

// TaskPatch is a partial update. nil fields are left unchanged; an empty
// DueDate clears the due date.
type TaskPatch struct {
	Title    *string
	DueDate  *string
	Category *Category
	Priority *Priority

	AllowPastDate bool
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.DueDate == nil && p.Category == nil && p.Priority == nil
}
