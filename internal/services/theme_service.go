package services

import (
	"context"
	"fmt"

	"fintrack/internal/events"
	"fintrack/internal/store"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	themePreferenceKey = "theme"
)

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("invalid theme %q: must be light or dark", s)
}

// ThemeService persists the light/dark display preference.
type ThemeService struct {
	prefs    store.PreferenceStore
	bus      events.Publisher
	fallback Theme
}

func NewThemeService(prefs store.PreferenceStore, bus events.Publisher, fallback Theme) *ThemeService {
	if bus == nil {
		bus = events.NoOpPublisher{}
	}
	if fallback != ThemeDark {
		fallback = ThemeLight
	}
	return &ThemeService{prefs: prefs, bus: bus, fallback: fallback}
}

// Current returns the stored theme, or the fallback when none is stored.
func (s *ThemeService) Current(ctx context.Context) (Theme, error) {
	v, ok, err := s.prefs.GetPreference(ctx, themePreferenceKey)
	if err != nil {
		return "", fmt.Errorf("read theme: %w", err)
	}
	if !ok {
		return s.fallback, nil
	}
	theme, err := ParseTheme(v)
	if err != nil {
		return s.fallback, nil
	}
	return theme, nil
}

func (s *ThemeService) Set(ctx context.Context, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	if err := s.prefs.SetPreference(ctx, themePreferenceKey, string(theme)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	s.bus.Publish(events.New(events.PreferenceChanged, 0, ""))
	return nil
}

// Toggle flips between light and dark and returns the new theme.
func (s *ThemeService) Toggle(ctx context.Context) (Theme, error) {
	cur, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if cur == ThemeDark {
		next = ThemeLight
	}
	if err := s.Set(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
