package state

import "github.com/nhle/matchbox/internal/model"

// Theme is the active colour scheme.
type Theme struct {
	Current model.ThemeName
}

// NewTheme returns name, falling back to DARK for unknown values.
func NewTheme(name model.ThemeName) Theme {
	return Theme{}.Set(name)
}

// Toggle flips between LIGHT and DARK.
func (t Theme) Toggle() Theme {
	if t.Current == model.ThemeLight {
		return Theme{Current: model.ThemeDark}
	}
	return Theme{Current: model.ThemeLight}
}

// Set selects name.
func (t Theme) Set(name model.ThemeName) Theme {
	if name == model.ThemeLight {
		return Theme{Current: model.ThemeLight}
	}
	return Theme{Current: model.ThemeDark}
}

// IsDark reports whether the dark scheme is active.
func (t Theme) IsDark() bool {
	return t.Current != model.ThemeLight
}
