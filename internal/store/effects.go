package store

import (
	"errors"
	"slices"

	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/notify"
)

type note struct {
	title    string
	message  string
	severity notify.Severity
}

// effects collects what an operation must do once the store lock is
// released: forget reminder state, report the outcome, and surface a
// failed save.
type effects struct {
	forget   []string
	notes    []note
	saveErr  error
	rejected error
}

func (e *effects) note(title, message string, severity notify.Severity) {
	e.notes = append(e.notes, note{title: title, message: message, severity: severity})
}

func (e *effects) warn(warnings []model.Warning) {
	for _, w := range warnings {
		switch w.Code {
		case model.WarnDuplicate:
			e.note("Similar task exists!", w.Message+" Creating anyway.", notify.SeverityWarning)
		default:
			e.note("Warning", w.Message, notify.SeverityWarning)
		}
	}
}

func (s *Store) apply(e effects) {
	if len(e.forget) > 0 {
		s.mu.Lock()
		forgetters := slices.Clone(s.forgetters)
		s.mu.Unlock()
		for _, id := range e.forget {
			for _, f := range forgetters {
				f.Forget(id)
			}
		}
	}
	if e.rejected != nil {
		title, message := describe(e.rejected)
		s.logger.Debug("operation rejected", "err", e.rejected)
		s.feedback.Notify(title, message, notify.SeverityError)
	}
	if e.saveErr != nil {
		s.logger.Error("persist tasks", "err", e.saveErr)
		s.feedback.Notify("Save failed!", "Changes are kept for this session but could not be saved: "+e.saveErr.Error(), notify.SeverityError)
	}
	for _, n := range e.notes {
		s.feedback.Notify(n.title, n.message, n.severity)
	}
}

func describe(err error) (string, string) {
	if errors.Is(err, ErrNotFound) {
		return "Task not found!", "Could not find the task. It may have been removed."
	}
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		return "Something went wrong!", err.Error()
	}
	switch ve.Code {
	case model.CodeEmptyTitle:
		return "Task title is required!", "Please enter a title for your task."
	case model.CodeTitleTooLong:
		return "Title too long!", "Task title must be 100 characters or less."
	case model.CodeInvalidPriority:
		return "Priority not selected!", "Please select a priority level for your task."
	case model.CodeInvalidDate:
		return "Invalid date format!", "Please select a valid date and time."
	case model.CodePastDate:
		return "Past date selected!", "The due date cannot be in the past. Please select a future date and time."
	case model.CodeInvalidDateRange:
		return "Invalid year!", "Please select a year between 2024 and 2099."
	case model.CodeInvalidCategory:
		return "Unknown category!", ve.Message
	default:
		return "Invalid task!", ve.Error()
	}
}
