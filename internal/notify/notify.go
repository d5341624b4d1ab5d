package notify

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Feedback is the in-app feedback channel. It is used for mutation
// outcomes and as the fallback when a reminder cannot be delivered.
type Feedback interface {
	Notify(title, message string, severity Severity)
}

// Deliverer hands a reminder to an out-of-app channel such as the desktop
// notification daemon. It reports false when the reminder was not shown.
type Deliverer interface {
	Deliver(title, body string, urgent bool) bool
}

type Entry struct {
	Title    string
	Message  string
	Severity Severity
	At       time.Time
}

const defaultLogLimit = 40

// Log keeps the most recent feedback entries for display.
type Log struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
	total   uint64
	now     func() time.Time
}

func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = defaultLogLimit
	}
	return &Log{limit: limit, now: time.Now}
}

func (l *Log) Notify(title, message string, severity Severity) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(message) == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{
		Title:    title,
		Message:  message,
		Severity: severity,
		At:       l.now().UTC(),
	})
	l.total++
	if len(l.entries) > l.limit {
		l.entries = l.entries[len(l.entries)-l.limit:]
	}
}

// Count is the number of entries ever recorded, including evicted ones.
func (l *Log) Count() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Entries returns a copy, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Last() (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// SlogFeedback writes feedback as log records. Used by the headless host.
type SlogFeedback struct {
	Logger *slog.Logger
}

func (s SlogFeedback) Notify(title, message string, severity Severity) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	switch severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	logger.Log(context.Background(), level, title, "message", message, "severity", string(severity))
}

// Fanout sends every notification to each non-nil target.
type Fanout []Feedback

func (f Fanout) Notify(title, message string, severity Severity) {
	for _, target := range f {
		if target != nil {
			target.Notify(title, message, severity)
		}
	}
}

// Discard drops all feedback.
type Discard struct{}

func (Discard) Notify(string, string, Severity) {}
