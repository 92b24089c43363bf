package tasks

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Name() }

// ItemDelegate implements list.ItemDelegate for rendering task rows.
type ItemDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	t := ti.Task

	prefix := "○"
	if t.Status == model.TaskCompleted {
		prefix = "✓"
	}

	status := theme.StatusStyle(string(t.Status)).Render(string(t.Status))
	priority := theme.PriorityStyle(t.Priority).Render(priorityLabel(t.Priority))

	due := ""
	if !t.DueDate.IsZero() {
		now := d.now()
		if t.IsOverdue(now) {
			due = theme.ErrorStyle.Render(" overdue " + humanize.RelTime(t.DueDate.Time, now, "ago", "from now"))
		} else {
			due = theme.MutedStyle.Render(" due " + t.DueDate.Format("Jan 02"))
		}
	}

	progress := ""
	if t.CompletedPercentage > 0 && t.Status != model.TaskCompleted {
		progress = theme.MutedStyle.Render(fmt.Sprintf(" %.0f%%", t.CompletedPercentage))
	}

	line := fmt.Sprintf("%s %s %s %s%s%s", prefix, priority, status, t.Name(), progress, due)
	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(line))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(line))
}

func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "H"
	case model.PriorityMedium:
		return "M"
	case model.PriorityLow:
		return "L"
	default:
		return "-"
	}
}
