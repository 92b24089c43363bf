package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/theme"
)

// Layout manages the terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// Tab is one entry of the header's view switcher.
type Tab struct {
	Label  string
	Active bool
}

// RenderHeader renders the top bar: title, view tabs, the unread badge
// and the signed-in user on the right.
func (l Layout) RenderHeader(title string, tabs []Tab, unread int, user string) string {
	left := []string{theme.HeaderStyle.Render(title)}
	for _, t := range tabs {
		if t.Active {
			left = append(left, theme.ActiveTabStyle.Render(t.Label))
		} else {
			left = append(left, theme.TabStyle.Render(t.Label))
		}
	}

	var right []string
	if unread > 0 {
		right = append(right, theme.BadgeStyle.Render(fmt.Sprintf("%d unread", unread)))
	}
	if user != "" {
		right = append(right, theme.MutedStyle.Padding(0, 1).Render(user))
	}

	leftRendered := lipgloss.JoinHorizontal(lipgloss.Top, left...)
	rightRendered := lipgloss.JoinHorizontal(lipgloss.Top, right...)

	gap := l.Width - lipgloss.Width(leftRendered) - lipgloss.Width(rightRendered)
	if gap < 0 {
		gap = 0
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftRendered,
		strings.Repeat(" ", gap),
		rightRendered,
	)
}

// RenderStatusBar renders the bottom bar. A toast replaces the key hints
// until it is cleared.
func (l Layout) RenderStatusBar(hints string, toast *state.Toast) string {
	var rendered string
	if toast != nil {
		rendered = theme.StatusBarStyle.Render(theme.ToastStyle(toast.Level).Render(toast.Text))
	} else {
		rendered = theme.StatusBarStyle.Render(hints)
	}

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.StatusBarStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
