// Package output renders tasks as Telegram HTML replies.
package output

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"taskbot/internal/locale"
	"taskbot/internal/service"
)

const (
	// TaskSeparator closes every task block.
	TaskSeparator = "─────────────"
)

// Field icons, in block order.
const (
	iconNote     = "📝"
	iconDueDate  = "📅"
	iconAssignee = "👤"
)

// FormatTaskBlock writes one numbered task.
//
//	<b>1. Name</b>
//	📝 Note: ...
//	📅 Due Date: ...   (only when withDue)
//	👤 Related Person: ...
//	─────────────
func FormatTaskBlock(w io.Writer, cat *locale.Catalog, num int, task service.Task, withDue bool) {
	fmt.Fprintf(w, "<b>%d. %s</b>\n", num, Escape(normalizeName(task.Name)))
	fmt.Fprintf(w, "%s %s: %s\n", iconNote, cat.Labels.Note, Escape(normalizeField(task.Note)))
	if withDue {
		fmt.Fprintf(w, "%s %s: %s\n", iconDueDate, cat.Labels.DueDate, Escape(normalizeField(task.DueDate)))
	}
	fmt.Fprintf(w, "%s %s: %s\n", iconAssignee, cat.Labels.Assignee, Escape(normalizeField(task.Assignee)))
	fmt.Fprintln(w, TaskSeparator)
}

// FormatTaskList writes a title line, a blank line, then one block per task.
func FormatTaskList(w io.Writer, cat *locale.Catalog, title string, tasks []service.Task, withDue bool) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w)
	for i, task := range tasks {
		FormatTaskBlock(w, cat, i+1, task, withDue)
	}
}

// FormatAdded writes the add confirmation echoing the stored fields.
func FormatAdded(w io.Writer, cat *locale.Catalog, task service.Task) {
	fmt.Fprintln(w, cat.Messages.Added)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "<b>%s</b>\n", Escape(normalizeName(task.Name)))
	fmt.Fprintf(w, "%s %s: %s\n", iconNote, cat.Labels.Note, Escape(normalizeField(task.Note)))
	fmt.Fprintf(w, "%s %s: %s\n", iconDueDate, cat.Labels.DueDate, Escape(task.DueDate))
	fmt.Fprintf(w, "%s %s: %s\n", iconAssignee, cat.Labels.Assignee, Escape(normalizeField(task.Assignee)))
}

// Escape makes user text safe inside an HTML-mode message.
func Escape(s string) string {
	return html.EscapeString(s)
}

var tag = regexp.MustCompile(`</?(b|code)>`)

// PlainText strips the markup written by this package and the catalogs,
// for resending a reply without a parse mode.
func PlainText(s string) string {
	return html.UnescapeString(tag.ReplaceAllString(s, ""))
}

// normalizeName normalizes a task name for display.
// - Empty or whitespace-only names become "(untitled)"
// - Newlines are replaced with spaces
func normalizeName(name string) string {
	name = flattenLines(name)
	if strings.TrimSpace(name) == "" {
		return "(untitled)"
	}
	return name
}

// normalizeField flattens multi-line cell values and marks empty ones with "-".
func normalizeField(v string) string {
	v = flattenLines(v)
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func flattenLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
