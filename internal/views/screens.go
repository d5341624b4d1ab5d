package views

import (
	"fmt"
	"strings"
)

type TaskRowData struct {
	Number    int
	Title     string
	Category  string
	Priority  string
	Due       string
	Completed bool
	Overdue   bool
	DueSoon   bool
	Selected  bool
}

type TaskListData struct {
	Rows      []TaskRowData
	Query     string
	SortLabel string
	Total     int
}

type ProgressData struct {
	Completed int
	Total     int
	Percent   int
	Bar       string
}

type NotificationData struct {
	Severity string
	Title    string
	Message  string
	At       string
}

type HelpPanelData struct {
	Bindings []string
	Grammar  string
	HelpView string
}

func RenderTaskList(data TaskListData) string {
	var b strings.Builder
	b.WriteString("tasks:")
	if data.SortLabel != "" {
		b.WriteString(" sorted by " + data.SortLabel)
	}
	b.WriteString("\n")
	if data.Query != "" {
		b.WriteString(fmt.Sprintf("search: %q (%d of %d)\n", data.Query, len(data.Rows), data.Total))
	}
	if len(data.Rows) == 0 {
		if data.Query != "" {
			b.WriteString("(no matching tasks)")
		} else {
			b.WriteString("(no tasks yet, press a to add one)")
		}
		return b.String()
	}
	for _, row := range data.Rows {
		b.WriteString(renderTaskRow(row))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderTaskRow(row TaskRowData) string {
	cursor := " "
	if row.Selected {
		cursor = cursorStyle.Render(">")
	}
	check := "[ ]"
	if row.Completed {
		check = "[x]"
	}
	title := row.Title
	if row.Completed {
		title = doneStyle.Render(title)
	}
	line := fmt.Sprintf("%s %2d %s %s %s #%s", cursor, row.Number, check, priorityBadge(row.Priority), title, row.Category)
	if row.Due != "" {
		line += " due:" + row.Due
	}
	if badge := urgencyBadge(row); badge != "" {
		line += " " + badge
	}
	return line
}

func priorityBadge(p string) string {
	switch strings.ToLower(p) {
	case "high":
		return highStyle.Render("[HIGH]")
	case "medium":
		return mediumStyle.Render("[MED] ")
	case "low":
		return lowStyle.Render("[LOW] ")
	default:
		return "[?]   "
	}
}

func urgencyBadge(row TaskRowData) string {
	if row.Completed {
		return ""
	}
	if row.Overdue {
		return errorStyle.Render("OVERDUE")
	}
	if row.DueSoon {
		return mediumStyle.Render("SOON")
	}
	return ""
}

func RenderProgress(data ProgressData) string {
	if data.Total == 0 {
		return "progress: no tasks"
	}
	out := fmt.Sprintf("progress: %d of %d completed (%d%%)", data.Completed, data.Total, data.Percent)
	if data.Bar != "" {
		out += "\n" + data.Bar
	}
	return out
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", input)
}

func RenderNotifications(items []NotificationData) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("notifications:\n")
	for _, n := range items {
		line := fmt.Sprintf("%s [%s] %s", n.At, strings.ToUpper(n.Severity), n.Title)
		if n.Message != "" {
			line += ": " + n.Message
		}
		if n.Severity == "error" {
			line = errorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderHelpPanel(data HelpPanelData) string {
	var b strings.Builder
	b.WriteString("help:\n")
	b.WriteString(strings.Join(data.Bindings, "\n"))
	if data.Grammar != "" {
		b.WriteString("\n\n")
		b.WriteString(RenderMarkdown(data.Grammar))
	}
	if data.HelpView != "" {
		b.WriteString("\n")
		b.WriteString(data.HelpView)
	}
	return b.String()
}
