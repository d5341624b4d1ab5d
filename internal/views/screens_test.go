package views

import (
	"strings"
	"testing"
)

func TestRenderTaskListEmptyStates(t *testing.T) {
	if got := RenderTaskList(TaskListData{}); !strings.Contains(got, "no tasks yet") {
		t.Fatalf("unexpected empty list: %q", got)
	}
	got := RenderTaskList(TaskListData{Query: "milk", Total: 3})
	if !strings.Contains(got, `search: "milk" (0 of 3)`) || !strings.Contains(got, "no matching tasks") {
		t.Fatalf("unexpected empty search: %q", got)
	}
}

func TestRenderTaskRowBadges(t *testing.T) {
	got := RenderTaskList(TaskListData{
		SortLabel: "priority level",
		Rows: []TaskRowData{
			{Number: 1, Title: "Pay rent", Category: "personal", Priority: "high", Due: "2026-02-09 12:05", Overdue: true},
			{Number: 2, Title: "Water plants", Category: "personal", Priority: "low", DueSoon: true, Completed: true},
		},
	})
	lines := strings.Split(got, "\n")
	if len(lines) != 3 || lines[0] != "tasks: sorted by priority level" {
		t.Fatalf("unexpected list:\n%s", got)
	}
	if !strings.Contains(lines[1], "[HIGH]") || !strings.Contains(lines[1], "due:2026-02-09 12:05") || !strings.Contains(lines[1], "OVERDUE") {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "[x]") || strings.Contains(lines[2], "SOON") {
		t.Fatalf("completed rows carry no urgency badge: %q", lines[2])
	}
}

func TestRenderProgress(t *testing.T) {
	if got := RenderProgress(ProgressData{}); got != "progress: no tasks" {
		t.Fatalf("unexpected empty progress: %q", got)
	}
	got := RenderProgress(ProgressData{Completed: 1, Total: 4, Percent: 25, Bar: "##"})
	if got != "progress: 1 of 4 completed (25%)\n##" {
		t.Fatalf("unexpected progress: %q", got)
	}
}
