package model

import (
	"fmt"
	"strings"
)

type SortKey string

const (
	SortByDueDate   SortKey = "dueDate"
	SortByPriority  SortKey = "priority"
	SortByCategory  SortKey = "category"
	SortByCreatedAt SortKey = "createdAt"
)

var SortKeys = []SortKey{SortByCreatedAt, SortByDueDate, SortByPriority, SortByCategory}

// ParseSortKey accepts the canonical key names, case-insensitively, plus a
// few aliases. "default" and the empty string mean SortByCreatedAt.
func ParseSortKey(raw string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "default", "createdat", "created", "created_at":
		return SortByCreatedAt, nil
	case "duedate", "due", "due_date":
		return SortByDueDate, nil
	case "priority", "pri":
		return SortByPriority, nil
	case "category", "cat":
		return SortByCategory, nil
	default:
		return "", fmt.Errorf("model: unknown sort key %q", raw)
	}
}

// Label is the human-readable name used in feedback messages.
func (k SortKey) Label() string {
	switch k {
	case SortByDueDate:
		return "due date"
	case SortByPriority:
		return "priority level"
	case SortByCategory:
		return "category"
	default:
		return "creation date"
	}
}

// Next cycles through SortKeys.
func (k SortKey) Next() SortKey {
	for i, key := range SortKeys {
		if key == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortKeys[0]
}
