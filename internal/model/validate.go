package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

var dueDateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDueDate parses user-entered due date text. Blank input yields nil.
// Layouts without a zone are interpreted in loc.
func ParseDueDate(raw string, loc *time.Location) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if tm, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &tm, nil
	}
	for _, layout := range dueDateLayouts {
		if tm, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return &tm, nil
		}
	}
	return nil, newValidationError(CodeInvalidDate, "dueDate", fmt.Sprintf("cannot parse %q", trimmed))
}

// Rules carries what validation needs from its surroundings.
type Rules struct {
	Now        time.Time
	Location   *time.Location
	Categories []Category
}

// NewTask validates in and returns a task with every field except ID and
// CreatedAt populated. Checks run in a fixed order and the first failure
// wins.
func (r Rules) NewTask(in TaskInput) (Task, []Warning, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return Task{}, nil, err
	}
	if !in.Priority.IsValid() {
		return Task{}, nil, newValidationError(CodeInvalidPriority, "priority", fmt.Sprintf("unknown priority %q", in.Priority))
	}
	due, warnings, err := r.dueDate(in.DueDate, in.AllowPastDate)
	if err != nil {
		return Task{}, nil, err
	}
	if err := r.category(in.Category); err != nil {
		return Task{}, nil, err
	}
	return Task{
		Title:    title,
		DueDate:  due,
		Category: in.Category,
		Priority: in.Priority,
	}, warnings, nil
}

// ApplyPatch validates the fields present in p and returns t with them
// applied. t itself is not modified.
func (r Rules) ApplyPatch(t Task, p TaskPatch) (Task, []Warning, error) {
	out := t.Clone()
	if p.Title != nil {
		title, err := normalizeTitle(*p.Title)
		if err != nil {
			return Task{}, nil, err
		}
		out.Title = title
	}
	if p.Priority != nil {
		if !p.Priority.IsValid() {
			return Task{}, nil, newValidationError(CodeInvalidPriority, "priority", fmt.Sprintf("unknown priority %q", *p.Priority))
		}
		out.Priority = *p.Priority
	}
	var warnings []Warning
	if p.DueDate != nil {
		due, w, err := r.dueDate(*p.DueDate, p.AllowPastDate)
		if err != nil {
			return Task{}, nil, err
		}
		out.DueDate = due
		warnings = w
	}
	if p.Category != nil {
		if err := r.category(*p.Category); err != nil {
			return Task{}, nil, err
		}
		out.Category = *p.Category
	}
	return out, warnings, nil
}

func (r Rules) dueDate(raw string, allowPast bool) (*time.Time, []Warning, error) {
	due, err := ParseDueDate(raw, r.Location)
	if err != nil || due == nil {
		return nil, nil, err
	}
	var warnings []Warning
	if due.Before(r.Now.Add(-PastDateGrace)) {
		if !allowPast {
			return nil, nil, newValidationError(CodePastDate, "dueDate", "due date cannot be in the past")
		}
		warnings = append(warnings, Warning{Code: WarnPastDateOverride, Message: "due date is in the past"})
	}
	year := due.Year()
	if r.Location != nil {
		year = due.In(r.Location).Year()
	}
	if year < MinDueYear || year > MaxDueYear {
		return nil, nil, newValidationError(CodeInvalidDateRange, "dueDate", fmt.Sprintf("year %d outside %d-%d", year, MinDueYear, MaxDueYear))
	}
	return due, warnings, nil
}

func (r Rules) category(c Category) error {
	allowed := r.Categories
	if len(allowed) == 0 {
		allowed = DefaultCategories
	}
	if !slices.Contains(allowed, c) {
		return newValidationError(CodeInvalidCategory, "category", fmt.Sprintf("unknown category %q", c))
	}
	return nil
}

func normalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if err := validateTitle(title); err != nil {
		return "", err
	}
	return title, nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return newValidationError(CodeEmptyTitle, "title", "task title is required")
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return newValidationError(CodeTitleTooLong, "title", fmt.Sprintf("%d characters, limit is %d", n, MaxTitleLength))
	}
	return nil
}
