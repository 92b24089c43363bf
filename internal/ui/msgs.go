package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/state"
)

// ToastMsg asks the root model to show a status-bar toast.
type ToastMsg struct {
	Toast *state.Toast
}

// SessionExpiredMsg tells the root model the backend rejected the token.
type SessionExpiredMsg struct{}

// ShowToast returns a command emitting t. A nil toast yields nil.
func ShowToast(t *state.Toast) tea.Cmd {
	if t == nil {
		return nil
	}
	return func() tea.Msg { return ToastMsg{Toast: t} }
}

// Failure turns a backend error into the message the root model needs:
// a session expiry for 401s, an error toast otherwise.
func Failure(err error, fallback string) tea.Msg {
	if api.IsAuthError(err) {
		return SessionExpiredMsg{}
	}
	return ToastMsg{Toast: state.ErrorToast(api.Message(err, fallback))}
}

// FailureCmd is Failure wrapped in a command.
func FailureCmd(err error, fallback string) tea.Cmd {
	return func() tea.Msg { return Failure(err, fallback) }
}

// DateLayout is the format used by date fields in forms.
const DateLayout = "2006-01-02"

// FormSize returns the width and height for a huh form inside a view of
// the given size.
func FormSize(width, height int) (int, int) {
	w := width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	h := height - 4
	if h < 10 {
		h = 10
	}
	return w, h
}

// Required returns a huh validator rejecting blank input.
func Required(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

// OptionalDate validates an empty string or a YYYY-MM-DD date.
func OptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD form value, returning the zero time for
// blank or malformed input.
func ParseDate(s string) time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
